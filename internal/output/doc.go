// Package output formats analysis results for display or machine consumption.
//
// Three formats are supported:
//   - text: terminal output (default)
//   - json: the full result; request secrets are never serialized
//   - markdown: the PR comment body
//
// Use [GetWriter] to obtain a [Writer] for a format string. [StreamSink]
// adapts a Writer to review.Sink.
package output
