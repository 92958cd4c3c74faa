// Package signatures finds the functions a diff introduces.
//
// Added lines of Go, Python, TypeScript/JavaScript and Rust files are parsed
// with tree-sitter; tree-sitter tolerates the partial source a hunk provides
// and still reports complete function nodes. Other languages fall back to
// keyword patterns.
package signatures

import (
	"regexp"
	"strings"

	"github.com/dshills/canon/internal/diff"
)

// Signature is a function header found in added lines.
type Signature struct {
	Path string
	Text string
}

func (s Signature) String() string {
	return s.Path + ": " + s.Text
}

// Extract returns the signatures of functions defined in the added lines of
// files, in file order then source order, without duplicates.
func Extract(files []diff.ChangedFile) []Signature {
	p := newParser()
	var out []Signature
	seen := make(map[Signature]bool)

	for _, f := range files {
		if len(f.AddedLines) == 0 {
			continue
		}
		source := dedent(f.AddedLines)

		var found []string
		if lang, ok := languageFor(f.Extension); ok {
			found = p.functions(lang, []byte(source))
		} else {
			found = matchPatterns(source)
		}

		for _, text := range found {
			sig := Signature{Path: f.Path, Text: text}
			if seen[sig] {
				continue
			}
			seen[sig] = true
			out = append(out, sig)
		}
	}
	return out
}

// Format renders signatures one per line for prompt placeholders.
func Format(sigs []Signature) string {
	if len(sigs) == 0 {
		return "(no new functions detected)"
	}
	var b strings.Builder
	for _, s := range sigs {
		b.WriteString("- ")
		b.WriteString(s.String())
		b.WriteString("\n")
	}
	return b.String()
}

var fallbackPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\s*def\s+\w+[!?]?\s*(\(.*)?$`),
	regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s*\w+\s*\(.*$`),
	regexp.MustCompile(`^\s*(?:(?:public|private|protected|static|final|abstract)\s+)*function\s+&?\w+\s*\(.*$`),
	regexp.MustCompile(`^\s*(?:(?:public|private|protected|internal|open|override|suspend|inline)\s+)*fun\s+[\w<>.]+\s*\(.*$`),
	regexp.MustCompile(`^\s*(?:(?:public|private|protected|internal|static|final|abstract|virtual|override|async|sealed|synchronized)\s+)+[\w<>\[\],.?]+\s+\w+\s*\([^;=]*$`),
	regexp.MustCompile(`^\s*(?:(?:public|private|fileprivate|internal|open|static|override)\s+)*func\s+\w+.*\(.*$`),
}

func matchPatterns(source string) []string {
	var out []string
	for _, line := range strings.Split(source, "\n") {
		for _, re := range fallbackPatterns {
			if re.MatchString(line) {
				out = append(out, cleanSignature(line))
				break
			}
		}
	}
	return out
}

// cleanSignature collapses whitespace and drops a trailing body opener.
func cleanSignature(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.TrimSuffix(s, "{")
	s = strings.TrimSuffix(s, ":")
	return strings.TrimSpace(s)
}

// dedent joins lines after removing their common leading whitespace so an
// added method body parses as top-level code.
func dedent(lines []string) string {
	prefix := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " \t"))
		if prefix < 0 || n < prefix {
			prefix = n
		}
	}
	if prefix <= 0 {
		return strings.Join(lines, "\n")
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		if len(l) >= prefix {
			out[i] = l[prefix:]
		} else {
			out[i] = strings.TrimLeft(l, " \t")
		}
	}
	return strings.Join(out, "\n")
}
