// Package github fetches pull request diffs and posts results as comments
// through the GitHub REST API.
//
// [PRSource] and [CommentSink] adapt a [Client] to the review package's
// DiffSource and Sink interfaces. Comments are tagged with a hidden
// per-agent [Marker] and edited in place on later runs.
package github
