//go:build cgo

package signatures

import (
	"testing"

	"github.com/dshills/canon/internal/diff"
	"github.com/stretchr/testify/assert"
)

func added(path string, lines ...string) diff.ChangedFile {
	return diff.ChangedFile{Path: path, Extension: diff.Extension(path), AddedLines: lines}
}

func texts(sigs []Signature) []string {
	out := make([]string, len(sigs))
	for i, s := range sigs {
		out[i] = s.Text
	}
	return out
}

func TestExtract_TreeSitterLanguages(t *testing.T) {
	tests := []struct {
		name string
		file diff.ChangedFile
		want []string
	}{
		{
			name: "go function and method",
			file: added("server.go",
				"func Add(a, b int) int {",
				"\treturn a + b",
				"}",
				"",
				"func (s *Server) Start(ctx context.Context) error {",
				"\treturn nil",
				"}",
			),
			want: []string{"func Add(a, b int) int", "func (s *Server) Start(ctx context.Context) error"},
		},
		{
			name: "python indented method",
			file: added("app.py",
				"    def add(self, a, b):",
				"        return a + b",
			),
			want: []string{"def add(self, a, b)"},
		},
		{
			name: "typescript export",
			file: added("greet.ts",
				"export function greet(name: string): string {",
				"  return `hi ${name}`;",
				"}",
			),
			want: []string{"function greet(name: string): string"},
		},
		{
			name: "rust",
			file: added("shape.rs",
				"pub fn area(w: f64, h: f64) -> f64 {",
				"    w * h",
				"}",
			),
			want: []string{"pub fn area(w: f64, h: f64) -> f64"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract([]diff.ChangedFile{tt.file})
			assert.Equal(t, tt.want, texts(got))
			for _, s := range got {
				assert.Equal(t, tt.file.Path, s.Path)
			}
		})
	}
}

func TestExtract_FallbackPatterns(t *testing.T) {
	files := []diff.ChangedFile{
		added("Calc.java",
			"    public int sum(int a, int b) {",
			"        return a + b;",
			"    }",
		),
		added("lib/thing.rb",
			"def shout(msg)",
			"  msg.upcase",
			"end",
		),
	}
	got := Extract(files)
	assert.Equal(t, []string{"public int sum(int a, int b)", "def shout(msg)"}, texts(got))
}

func TestExtract_NoAddedLines(t *testing.T) {
	files := []diff.ChangedFile{{Path: "gone.go", Extension: ".go", RemovedLines: []string{"func X() {}"}}}
	assert.Empty(t, Extract(files))
}

func TestExtract_Deduplicates(t *testing.T) {
	files := []diff.ChangedFile{
		added("a.rb", "def x", "end", "def x", "end"),
	}
	assert.Len(t, Extract(files), 1)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "(no new functions detected)", Format(nil))
	assert.Equal(t, "- a.go: func A()\n", Format([]Signature{{Path: "a.go", Text: "func A()"}}))
}
