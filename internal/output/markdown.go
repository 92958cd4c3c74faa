package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dshills/canon/internal/review"
)

var agentTitles = map[string]string{
	"reviewer":   "Code Review",
	"security":   "Security Scan",
	"documenter": "Release Notes",
	"tester":     "Suggested Unit Tests",
}

// MarkdownWriter outputs a PR-comment-friendly markdown report.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, results ...review.AnalysisResult) error {
	ew := &errWriter{w: w}
	for i, res := range results {
		if i > 0 {
			ew.println("\n---\n")
		}
		writeMarkdown(ew, res)
	}
	return ew.err
}

func writeMarkdown(ew *errWriter, res review.AnalysisResult) {
	ew.printf("## %s\n\n", title(res.AgentType))

	switch {
	case res.Error != nil:
		ew.printf("> :x: **Analysis failed** (%s)\n>\n> %s\n\n",
			res.Error.Kind, strings.ReplaceAll(res.Error.Message, "\n", "\n> "))
	case res.Empty:
		ew.printf("%s :white_check_mark:\n\n", res.Text)
	default:
		ew.printf("%s\n\n", strings.TrimSpace(res.Text))
	}

	if res.Truncation != nil && res.Truncation.Any() {
		ew.println("<details>\n<summary>:warning: Prompt was truncated</summary>\n")
		writeTruncation(ew, *res.Truncation, "- ")
		ew.println("\n</details>\n")
	}

	if len(res.Standards) > 0 {
		ew.printf("<sub>Standards applied: %s</sub>  \n", strings.Join(res.Standards, ", "))
	}
	ew.printf("<sub>Model: `%s` | %d file(s) | %dms</sub>\n",
		res.ModelName, len(res.Files), res.Duration.Milliseconds())
}

func writeTruncation(ew *errWriter, t review.Truncation, bullet string) {
	if len(t.StandardsDropped) > 0 {
		ew.printf("%sstandards dropped: %s\n", bullet, strings.Join(t.StandardsDropped, ", "))
	}
	if t.StandardsCut {
		ew.printf("%sglobal standards cut to fit\n", bullet)
	}
	if len(t.FilesOmitted) > 0 {
		ew.printf("%sfiles omitted: %s\n", bullet, strings.Join(t.FilesOmitted, ", "))
	}
	if t.DiffCut {
		ew.printf("%sdiff cut at a line boundary\n", bullet)
	}
}

func title(agent string) string {
	if t, ok := agentTitles[agent]; ok {
		return "Canon " + t
	}
	if agent == "" {
		return "Canon"
	}
	return fmt.Sprintf("Canon %s", strings.ToUpper(agent[:1])+agent[1:])
}
