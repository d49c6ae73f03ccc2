// Package recognize implements the per-unit escalation ladder that
// turns one page or audio segment into text: an inline attempt first,
// a staged upload with transient-only backoff retries as the robust
// fallback, and reframed requests when the service refuses on content
// policy grounds. Every unit ends in a terminal outcome; failures are
// recorded, never propagated.
package recognize
