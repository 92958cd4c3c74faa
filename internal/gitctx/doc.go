// Package gitctx collects diffs from a local git working tree: staged or
// unstaged changes, a revision range, or a single commit.
package gitctx
