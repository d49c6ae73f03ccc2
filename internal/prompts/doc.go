// Package prompts holds the instruction templates sent to the recognition
// model and the reframed requests used when a request is refused on content
// policy grounds. Templates are embedded and may be overridden per file
// from a configured prompts directory.
package prompts
