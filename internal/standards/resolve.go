package standards

import (
	"fmt"
	"strings"

	"github.com/dshills/canon/internal/diff"
)

// Document is one standards file.
type Document struct {
	Key        string
	Content    string
	SourcePath string
}

// ResolvedContext is the ordered set of documents that apply to a diff.
type ResolvedContext struct {
	Documents  []Document
	MergedText string
}

// Keys returns the document keys in resolved order.
func (rc ResolvedContext) Keys() []string {
	keys := make([]string, len(rc.Documents))
	for i, d := range rc.Documents {
		keys[i] = d.Key
	}
	return keys
}

// Resolve picks the documents applying to files: global first, then one
// document per mapped extension in order of first appearance. Extensions with
// no table entry or no loaded document are skipped.
func Resolve(files []diff.ChangedFile, docs map[string]Document, table Table) ResolvedContext {
	var selected []Document
	seen := make(map[string]bool)

	if g, ok := docs[GlobalKey]; ok {
		selected = append(selected, g)
		seen[GlobalKey] = true
	}

	for _, f := range files {
		key, ok := table.Lookup(f.Extension)
		if !ok || seen[key] {
			continue
		}
		doc, ok := docs[key]
		if !ok {
			continue
		}
		seen[key] = true
		selected = append(selected, doc)
	}

	return ResolvedContext{
		Documents:  selected,
		MergedText: Merge(selected),
	}
}

// Merge concatenates documents in order, each preceded by a boundary marker.
func Merge(docs []Document) string {
	var b strings.Builder
	for _, d := range docs {
		b.WriteString("\n")
		b.WriteString(Marker(d.Key))
		b.WriteString("\n")
		b.WriteString(d.Content)
		b.WriteString("\n")
	}
	return b.String()
}

// Marker returns the boundary line written before a document.
func Marker(key string) string {
	if key == GlobalKey {
		return "--- GLOBAL STANDARDS ---"
	}
	return fmt.Sprintf("--- SPECIFIC STANDARDS (%s) ---", strings.ToUpper(key))
}
