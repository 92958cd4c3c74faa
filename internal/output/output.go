package output

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dshills/canon/internal/review"
)

// Formats lists the supported output formats.
var Formats = []string{"markdown", "text", "json"}

// Writer writes analysis results in a specific format.
type Writer interface {
	Write(w io.Writer, results ...review.AnalysisResult) error
}

// GetWriter returns a writer for the specified format.
func GetWriter(format string) (Writer, error) {
	switch strings.ToLower(format) {
	case "text", "":
		return &TextWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	case "markdown", "md":
		return &MarkdownWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// Render formats a single result as a string. Write errors cannot occur on
// a strings.Builder, so they are ignored.
func Render(wr Writer, res review.AnalysisResult) string {
	var sb strings.Builder
	_ = wr.Write(&sb, res)
	return sb.String()
}

// WriteResults writes the results to the specified output (file path or stdout).
func WriteResults(format, outPath string, results ...review.AnalysisResult) error {
	writer, err := GetWriter(format)
	if err != nil {
		return err
	}

	var w io.Writer
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	} else {
		w = os.Stdout
	}

	return writer.Write(w, results...)
}

// StreamSink is a review.Sink that writes each result to W.
type StreamSink struct {
	W      io.Writer
	Writer Writer
}

// Post implements review.Sink.
func (s *StreamSink) Post(_ context.Context, res review.AnalysisResult) error {
	return s.Writer.Write(s.W, res)
}
