// Package gemini implements a thin client for the generative language
// REST API: inline and file-backed content generation plus the raw file
// upload lifecycle. Each call performs a single attempt and classifies
// failures with the service error markers; retry and escalation policy
// is owned by the caller.
package gemini
