package diff

import (
	ignore "github.com/sabhiram/go-gitignore"
)

// DefaultIgnore lists generated or vendored paths that never carry
// reviewable changes.
var DefaultIgnore = []string{
	"vendor/",
	"node_modules/",
	"*.lock",
	"package-lock.json",
	"go.sum",
	"*.min.js",
	"*.min.css",
}

// Filter returns the files whose paths do not match any of the gitignore-style
// patterns. Order is preserved; the input slice is not modified.
func Filter(files []ChangedFile, patterns []string) []ChangedFile {
	if len(patterns) == 0 {
		return files
	}
	matcher := ignore.CompileIgnoreLines(patterns...)
	kept := make([]ChangedFile, 0, len(files))
	for _, f := range files {
		if matcher.MatchesPath(f.Path) {
			continue
		}
		kept = append(kept, f)
	}
	return kept
}
