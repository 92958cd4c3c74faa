package standards

import (
	"sort"
	"strings"
)

// GlobalKey is the key of the document applied to every diff.
const GlobalKey = "global"

// Table maps a file extension (with leading dot, lower case) to a document key.
type Table struct {
	entries map[string]string
}

// DefaultTable is the built-in extension table.
var DefaultTable = NewTable(map[string]string{
	".py":    "python",
	".js":    "javascript",
	".mjs":   "javascript",
	".jsx":   "react",
	".tsx":   "react",
	".ts":    "typescript",
	".css":   "style",
	".scss":  "style",
	".cs":    "csharp",
	".go":    "go",
	".rb":    "ruby",
	".java":  "java",
	".kt":    "kotlin",
	".rs":    "rust",
	".php":   "php",
	".swift": "swift",
	".sql":   "sql",
	".sh":    "shell",
	".tf":    "terraform",
})

// NewTable builds a table, normalizing extensions to ".ext" in lower case.
func NewTable(entries map[string]string) Table {
	t := Table{entries: make(map[string]string, len(entries))}
	for ext, key := range entries {
		if ext = normalizeExt(ext); ext != "" && key != "" {
			t.entries[ext] = strings.ToLower(key)
		}
	}
	return t
}

// Lookup returns the document key for ext.
func (t Table) Lookup(ext string) (string, bool) {
	key, ok := t.entries[normalizeExt(ext)]
	return key, ok
}

// With returns a copy of t with overrides applied. An empty key removes the
// extension.
func (t Table) With(overrides map[string]string) Table {
	out := Table{entries: make(map[string]string, len(t.entries)+len(overrides))}
	for ext, key := range t.entries {
		out.entries[ext] = key
	}
	for ext, key := range overrides {
		ext = normalizeExt(ext)
		if ext == "" {
			continue
		}
		if key == "" {
			delete(out.entries, ext)
			continue
		}
		out.entries[ext] = strings.ToLower(key)
	}
	return out
}

// Extensions returns the mapped extensions in sorted order.
func (t Table) Extensions() []string {
	exts := make([]string, 0, len(t.entries))
	for ext := range t.entries {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || ext == "." {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
