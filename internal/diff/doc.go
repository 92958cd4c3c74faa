// Package diff turns a raw unified diff into per-file change records.
//
// Sections are split on "diff --git" headers (or on ---/+++ header pairs for
// plain unified diffs) and each section is parsed independently with
// sourcegraph/go-diff, so one malformed section produces a [ParseWarning]
// instead of failing the whole diff. Binary, rename-only and mode-only
// sections still yield a [ChangedFile] with empty line slices.
//
// [Filter] removes files matching gitignore-style patterns before they reach
// the rest of the pipeline.
package diff
