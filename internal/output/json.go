package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dshills/canon/internal/review"
)

// JSONWriter outputs results as JSON: a single object for one result, an
// array otherwise.
type JSONWriter struct{}

func (j *JSONWriter) Write(w io.Writer, results ...review.AnalysisResult) error {
	var v any = results
	if len(results) == 1 {
		v = results[0]
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("writing JSON: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}
