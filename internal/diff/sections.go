package diff

// Section is the raw diff text for one file.
type Section struct {
	Path string
	Text string
}

// Sections splits raw into per-file sections with the same skipping and
// de-duplication rules as Parse, so Sections(raw)[i].Path equals
// Parse(raw)[i].Path.
func Sections(raw string) []Section {
	parts := splitSections(raw)
	out := make([]Section, 0, len(parts))
	index := make(map[string]int, len(parts))
	for _, part := range parts {
		cf, err := parseSection(part)
		if err != nil {
			continue
		}
		if pos, ok := index[cf.Path]; ok {
			out[pos].Text = part
			continue
		}
		index[cf.Path] = len(out)
		out = append(out, Section{Path: cf.Path, Text: part})
	}
	return out
}

// Keep returns the sections whose path belongs to one of files, in order.
func Keep(sections []Section, files []ChangedFile) []Section {
	allowed := make(map[string]bool, len(files))
	for _, f := range files {
		allowed[f.Path] = true
	}
	out := make([]Section, 0, len(files))
	for _, s := range sections {
		if allowed[s.Path] {
			out = append(out, s)
		}
	}
	return out
}
