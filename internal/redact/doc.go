// Package redact strips credentials from text.
//
// [Secrets] runs regex heuristics over diff content before it reaches a
// model provider. [Scrub] removes known values (the caller's API key) from
// error messages before they are logged or posted.
package redact
