package review

import (
	"fmt"
	"strings"

	"github.com/dshills/canon/internal/diff"
	"github.com/dshills/canon/internal/standards"
)

// DefaultMaxPromptBytes bounds the standards text plus the diff text.
const DefaultMaxPromptBytes = 100000

const truncatedMarker = "\n[truncated]\n"

// The omission notice lists at most maxNoticePaths paths and never takes
// more than maxNoticeBytes of the diff budget.
const (
	maxNoticePaths = 20
	maxNoticeBytes = 1024
)

type fitted struct {
	standards string
	keys      []string
	diff      string
	trunc     Truncation
}

// fitPrompt shrinks the standards and diff to limit bytes, omission notice
// included. Standards take at most half; the diff takes whatever remains.
// Documents and file sections are kept whole and in order until the next
// would overflow. Only global standards and a lone first file section are
// ever cut mid-way, and always at a line boundary.
func fitPrompt(docs []standards.Document, sections []diff.Section, limit int) fitted {
	if limit <= 0 {
		limit = DefaultMaxPromptBytes
	}
	var out fitted

	stdBudget := limit / 2
	var kept []standards.Document
	used := 0
	for i, doc := range docs {
		piece := standards.Merge([]standards.Document{doc})
		if used+len(piece) <= stdBudget {
			kept = append(kept, doc)
			used += len(piece)
			continue
		}
		if i == 0 && doc.Key == standards.GlobalKey {
			room := stdBudget - len(standards.Merge([]standards.Document{{Key: doc.Key}})) - len(truncatedMarker)
			cut := doc
			cut.Content = cutAtLine(doc.Content, room) + truncatedMarker
			kept = append(kept, cut)
			used += len(standards.Merge([]standards.Document{cut}))
			out.trunc.StandardsCut = true
			continue
		}
		out.trunc.StandardsDropped = append(out.trunc.StandardsDropped, doc.Key)
	}
	out.standards = standards.Merge(kept)
	for _, d := range kept {
		out.keys = append(out.keys, d.Key)
	}

	out.diff = fitDiff(sections, limit-len(out.standards), &out.trunc)
	return out
}

// fitDiff keeps whole sections in order until the next would overflow
// budget. When files are left out, part of the budget is held back for the
// omission notice so the result never exceeds budget.
func fitDiff(sections []diff.Section, budget int, trunc *Truncation) string {
	if budget < 0 {
		budget = 0
	}
	total := 0
	for _, sec := range sections {
		total += len(sec.Text)
	}

	var sb strings.Builder
	if total <= budget {
		for _, sec := range sections {
			sb.WriteString(sec.Text)
		}
		return sb.String()
	}

	room := budget
	if len(sections) > 1 {
		room -= min(maxNoticeBytes, budget/4)
	}
	kept := 0
	for _, sec := range sections {
		if sb.Len()+len(sec.Text) > room {
			break
		}
		sb.WriteString(sec.Text)
		kept++
	}
	if kept == 0 && room > len(truncatedMarker) {
		sb.WriteString(cutAtLine(sections[0].Text, room-len(truncatedMarker)))
		sb.WriteString(truncatedMarker)
		trunc.DiffCut = true
		kept = 1
	}
	for _, sec := range sections[kept:] {
		trunc.FilesOmitted = append(trunc.FilesOmitted, sec.Path)
	}
	sb.WriteString(omittedNotice(trunc.FilesOmitted, budget-sb.Len()))
	return sb.String()
}

// omittedNotice names as many of paths as fit in limit bytes, at most
// maxNoticePaths, and counts the rest.
func omittedNotice(paths []string, limit int) string {
	if len(paths) == 0 {
		return ""
	}
	for n := min(len(paths), maxNoticePaths); n >= 0; n-- {
		var b strings.Builder
		fmt.Fprintf(&b, "\n[diff truncated: %d file(s) omitted to fit the prompt budget", len(paths))
		if n > 0 {
			b.WriteString(": ")
			b.WriteString(strings.Join(paths[:n], ", "))
			if rest := len(paths) - n; rest > 0 {
				fmt.Fprintf(&b, " and %d more", rest)
			}
		}
		b.WriteString("]\n")
		if b.Len() <= limit {
			return b.String()
		}
	}
	return ""
}

// cutAtLine returns the longest prefix of s no longer than n bytes that
// ends at a newline.
func cutAtLine(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 0 {
		return ""
	}
	i := strings.LastIndexByte(s[:n], '\n')
	if i < 0 {
		return ""
	}
	return s[:i+1]
}
