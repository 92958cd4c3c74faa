package diff

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	godiff "github.com/sourcegraph/go-diff/diff"
)

const devNull = "/dev/null"

// ChangedFile is one file touched by a diff.
type ChangedFile struct {
	Path         string
	OldPath      string
	Extension    string
	AddedLines   []string
	RemovedLines []string
	Binary       bool
	Renamed      bool
}

// ParseWarning describes a diff section that was skipped.
type ParseWarning struct {
	Section int
	Reason  string
}

func (w ParseWarning) String() string {
	return fmt.Sprintf("section %d: %s", w.Section, w.Reason)
}

// Parse splits raw into per-file records in order of first appearance.
// A path seen twice keeps its first position but takes the later content.
func Parse(raw string) ([]ChangedFile, []ParseWarning) {
	sections := splitSections(raw)
	if len(sections) == 0 {
		return []ChangedFile{}, nil
	}

	files := make([]ChangedFile, 0, len(sections))
	index := make(map[string]int, len(sections))
	var warnings []ParseWarning

	for i, sec := range sections {
		cf, err := parseSection(sec)
		if err != nil {
			warnings = append(warnings, ParseWarning{Section: i, Reason: err.Error()})
			continue
		}
		if pos, ok := index[cf.Path]; ok {
			files[pos] = cf
			continue
		}
		index[cf.Path] = len(files)
		files = append(files, cf)
	}
	return files, warnings
}

// Paths returns the paths of files in order.
func Paths(files []ChangedFile) []string {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	return paths
}

// Extension returns the lower-cased extension of path, including the dot.
func Extension(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

func parseSection(sec string) (ChangedFile, error) {
	headerOld, headerNew := gitHeaderPaths(sec)

	fd, err := godiff.ParseFileDiff([]byte(sec))
	if err != nil {
		// Header-only sections (mode changes, pure renames, binaries) are
		// still useful for standards resolution.
		if headerNew != "" && !strings.Contains(sec, "\n@@") {
			return newChangedFile(headerOld, headerNew, nil, extendedFrom(sec)), nil
		}
		return ChangedFile{}, fmt.Errorf("parsing section: %w", err)
	}

	oldPath := stripPrefix(fd.OrigName, "a/")
	newPath := stripPrefix(fd.NewName, "b/")
	if oldPath == "" {
		oldPath = headerOld
	}
	if newPath == "" {
		newPath = headerNew
	}
	if newPath == "" && oldPath == "" {
		return ChangedFile{}, fmt.Errorf("no file path in section header")
	}

	return newChangedFile(oldPath, newPath, fd.Hunks, append(fd.Extended, extendedFrom(sec)...)), nil
}

func newChangedFile(oldPath, newPath string, hunks []*godiff.Hunk, extended []string) ChangedFile {
	path := newPath
	if path == "" || path == devNull {
		path = oldPath
	}

	cf := ChangedFile{
		Path:         path,
		Extension:    Extension(path),
		AddedLines:   []string{},
		RemovedLines: []string{},
	}
	if oldPath != "" && oldPath != devNull && oldPath != path {
		cf.OldPath = oldPath
		cf.Renamed = true
	}
	for _, ext := range extended {
		switch {
		case strings.HasPrefix(ext, "rename from "), strings.HasPrefix(ext, "rename to "):
			cf.Renamed = true
		case strings.HasPrefix(ext, "Binary files "), ext == "GIT binary patch":
			cf.Binary = true
		}
	}

	for _, h := range hunks {
		for _, line := range strings.Split(string(bytes.TrimSuffix(h.Body, []byte("\n"))), "\n") {
			if line == "" {
				continue
			}
			switch line[0] {
			case '+':
				cf.AddedLines = append(cf.AddedLines, line[1:])
			case '-':
				cf.RemovedLines = append(cf.RemovedLines, line[1:])
			}
		}
	}
	return cf
}

// splitSections cuts raw into one chunk per file. Text before the first file
// header is dropped.
func splitSections(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	lines := strings.SplitAfter(raw, "\n")
	gitStyle := strings.HasPrefix(raw, "diff --git ") || strings.Contains(raw, "\ndiff --git ")

	var sections []string
	var current strings.Builder
	started := false
	flush := func() {
		if started && strings.TrimSpace(current.String()) != "" {
			sections = append(sections, current.String())
		}
		current.Reset()
	}

	for i, line := range lines {
		if gitStyle {
			if strings.HasPrefix(line, "diff --git ") {
				flush()
				started = true
			}
		} else if strings.HasPrefix(line, "--- ") && i+1 < len(lines) && strings.HasPrefix(lines[i+1], "+++ ") {
			flush()
			started = true
		}
		if started {
			current.WriteString(line)
		}
	}
	flush()
	return sections
}

// gitHeaderPaths reads "diff --git a/x b/y". Paths containing " b/" are
// ambiguous and resolved by splitting at the last occurrence.
func gitHeaderPaths(sec string) (oldPath, newPath string) {
	first, _, _ := strings.Cut(sec, "\n")
	if !strings.HasPrefix(first, "diff --git ") {
		return "", ""
	}
	args := strings.TrimSpace(strings.TrimPrefix(first, "diff --git "))
	i := strings.LastIndex(args, " b/")
	if i < 0 || !strings.HasPrefix(args, "a/") {
		return "", ""
	}
	return strings.TrimPrefix(args[:i], "a/"), args[i+3:]
}

func extendedFrom(sec string) []string {
	var out []string
	for _, line := range strings.Split(sec, "\n") {
		if strings.HasPrefix(line, "@@") || strings.HasPrefix(line, "--- ") {
			break
		}
		if strings.HasPrefix(line, "rename ") || strings.HasPrefix(line, "Binary files ") || line == "GIT binary patch" {
			out = append(out, line)
		}
	}
	return out
}

func stripPrefix(name, prefix string) string {
	if name == devNull {
		return name
	}
	return strings.TrimPrefix(name, prefix)
}
