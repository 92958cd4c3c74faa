package signatures

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

type language string

const (
	langGo         language = "go"
	langPython     language = "python"
	langTypeScript language = "typescript"
	langTSX        language = "tsx"
	langRust       language = "rust"
)

var extToLanguage = map[string]language{
	".go":  langGo,
	".py":  langPython,
	".ts":  langTypeScript,
	".tsx": langTSX,
	".js":  langTSX,
	".jsx": langTSX,
	".mjs": langTSX,
	".rs":  langRust,
}

// functionKinds lists, per grammar, the node kinds that declare a function.
var functionKinds = map[language]map[string]bool{
	langGo:         {"function_declaration": true, "method_declaration": true},
	langPython:     {"function_definition": true},
	langTypeScript: {"function_declaration": true, "generator_function_declaration": true, "method_definition": true},
	langTSX:        {"function_declaration": true, "generator_function_declaration": true, "method_definition": true},
	langRust:       {"function_item": true},
}

func languageFor(ext string) (language, bool) {
	l, ok := extToLanguage[ext]
	return l, ok
}

type parser struct {
	languages map[language]*tree_sitter.Language
}

func newParser() *parser {
	return &parser{
		languages: map[language]*tree_sitter.Language{
			langGo:         tree_sitter.NewLanguage(tree_sitter_go.Language()),
			langPython:     tree_sitter.NewLanguage(tree_sitter_python.Language()),
			langTypeScript: tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
			langTSX:        tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX()),
			langRust:       tree_sitter.NewLanguage(tree_sitter_rust.Language()),
		},
	}
}

// functions returns the header text of every function node in source. When
// the grammar cannot be loaded the keyword patterns are used instead.
func (p *parser) functions(lang language, source []byte) []string {
	tsLang, ok := p.languages[lang]
	if !ok {
		return matchPatterns(string(source))
	}

	ts := tree_sitter.NewParser()
	defer ts.Close()
	if err := ts.SetLanguage(tsLang); err != nil {
		return matchPatterns(string(source))
	}

	tree := ts.Parse(source, nil)
	if tree == nil {
		return matchPatterns(string(source))
	}
	defer tree.Close()

	cursor := tree.RootNode().Walk()
	defer cursor.Close()

	var out []string
	walk(cursor, source, functionKinds[lang], &out)
	return out
}

func walk(cursor *tree_sitter.TreeCursor, source []byte, kinds map[string]bool, out *[]string) {
	node := cursor.Node()
	if kinds[node.Kind()] {
		if sig := header(node, source); sig != "" {
			*out = append(*out, sig)
		}
	}

	if cursor.GotoFirstChild() {
		walk(cursor, source, kinds, out)
		for cursor.GotoNextSibling() {
			walk(cursor, source, kinds, out)
		}
		cursor.GotoParent()
	}
}

// header is the node text up to its body, or its first line when it has none.
func header(node *tree_sitter.Node, source []byte) string {
	body := node.ChildByFieldName("body")
	if body == nil {
		text, _, _ := strings.Cut(string(source[node.StartByte():node.EndByte()]), "\n")
		return cleanSignature(text)
	}
	return cleanSignature(string(source[node.StartByte():body.StartByte()]))
}
