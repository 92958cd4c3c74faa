package standards

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dshills/canon/internal/diff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func files(paths ...string) []diff.ChangedFile {
	out := make([]diff.ChangedFile, len(paths))
	for i, p := range paths {
		out[i] = diff.ChangedFile{Path: p, Extension: diff.Extension(p)}
	}
	return out
}

func store(keys ...string) map[string]Document {
	docs := make(map[string]Document, len(keys))
	for _, k := range keys {
		docs[k] = Document{Key: k, Content: k + " rules", SourcePath: k + ".md"}
	}
	return docs
}

func TestResolve_PythonAndReact(t *testing.T) {
	rc := Resolve(files("src/app.py", "src/Widget.tsx"), store("global", "python", "react"), DefaultTable)
	assert.Equal(t, []string{"global", "python", "react"}, rc.Keys())
}

func TestResolve_GlobalAlwaysFirst(t *testing.T) {
	rc := Resolve(files("b.tsx", "a.py", "c.tsx"), store("react", "python", "global"), DefaultTable)
	assert.Equal(t, []string{"global", "react", "python"}, rc.Keys())
}

func TestResolve_UnmappedExtension(t *testing.T) {
	rc := Resolve(files("data.csv"), store("global", "python"), DefaultTable)
	assert.Equal(t, []string{"global"}, rc.Keys())

	rc = Resolve(files("data.csv"), store("python"), DefaultTable)
	assert.Empty(t, rc.Documents)
	assert.Equal(t, "", rc.MergedText)
}

func TestResolve_MappedButMissingDocument(t *testing.T) {
	rc := Resolve(files("main.go", "app.py"), store("python"), DefaultTable)
	assert.Equal(t, []string{"python"}, rc.Keys())
}

func TestResolve_NoDuplicateKeys(t *testing.T) {
	rc := Resolve(files("a.jsx", "b.tsx", "c.jsx", "d.py", "e.py", "Makefile"), store("global", "react", "python"), DefaultTable)
	seen := map[string]bool{}
	for _, d := range rc.Documents {
		require.False(t, seen[d.Key], "duplicate key %s", d.Key)
		seen[d.Key] = true
	}
	assert.Equal(t, []string{"global", "react", "python"}, rc.Keys())
}

func TestResolve_Deterministic(t *testing.T) {
	docs := store("global", "python", "react", "go", "typescript", "style", "csharp")
	in := files("x.cs", "y.css", "z.ts", "w.go", "v.tsx", "u.py")
	first := Resolve(in, docs, DefaultTable)
	for i := 0; i < 50; i++ {
		again := Resolve(in, docs, DefaultTable)
		require.Equal(t, first.MergedText, again.MergedText)
	}
	assert.Equal(t, []string{"global", "csharp", "style", "typescript", "go", "react", "python"}, first.Keys())
}

func TestMerge_Markers(t *testing.T) {
	text := Merge([]Document{
		{Key: "global", Content: "G"},
		{Key: "python", Content: "P"},
	})
	assert.Equal(t, "\n--- GLOBAL STANDARDS ---\nG\n\n--- SPECIFIC STANDARDS (PYTHON) ---\nP\n", text)
}

func TestTable_With(t *testing.T) {
	custom := DefaultTable.With(map[string]string{
		"CSV":  "Data",
		".py":  "",
		".vue": "react",
	})

	key, ok := custom.Lookup(".csv")
	require.True(t, ok)
	assert.Equal(t, "data", key)

	_, ok = custom.Lookup(".py")
	assert.False(t, ok)

	_, ok = DefaultTable.Lookup(".csv")
	assert.False(t, ok, "default table must not change")
	key, _ = DefaultTable.Lookup(".py")
	assert.Equal(t, "python", key)
}

func TestTable_LookupEmpty(t *testing.T) {
	_, ok := DefaultTable.Lookup("")
	assert.False(t, ok)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	write("global.md", "be kind")
	write("Python.md", "pep8")
	write("python.txt", "ignored")
	write("react.txt", "hooks")
	write("notes.json", "{}")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	docs, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "pep8", docs["python"].Content)
	assert.Equal(t, "hooks", docs["react"].Content)
	assert.Equal(t, filepath.Join(dir, "global.md"), docs["global"].SourcePath)
}

func TestLoadDir_Missing(t *testing.T) {
	docs, err := LoadDir(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, docs)
}
