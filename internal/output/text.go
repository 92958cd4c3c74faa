package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dshills/canon/internal/review"
)

// TextWriter outputs a human-readable text report.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, results ...review.AnalysisResult) error {
	ew := &errWriter{w: w}
	for i, res := range results {
		if i > 0 {
			ew.println("")
		}
		writeText(ew, res)
	}
	return ew.err
}

func writeText(ew *errWriter, res review.AnalysisResult) {
	ew.printf("Canon %s (model: %s)\n", res.AgentType, res.ModelName)
	if len(res.Standards) > 0 {
		ew.printf("Standards: %s\n", strings.Join(res.Standards, ", "))
	}
	ew.printf("Files: %d\n", len(res.Files))
	ew.println(strings.Repeat("─", 60))

	switch {
	case res.Error != nil:
		ew.printf("ERROR [%s] %s\n", res.Error.Kind, res.Error.Message)
	default:
		ew.println(strings.TrimRight(res.Text, "\n"))
	}

	if res.Truncation != nil && res.Truncation.Any() {
		ew.println("")
		ew.println("Truncated:")
		writeTruncation(ew, *res.Truncation, "  ")
	}
	for _, warn := range res.Warnings {
		ew.printf("warning: %s\n", warn)
	}

	ew.println(strings.Repeat("─", 60))
	ew.printf("Completed in %dms", res.Duration.Milliseconds())
	if res.TokensUsed > 0 {
		ew.printf(" (%d tokens)", res.TokensUsed)
	}
	ew.println("")
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}
