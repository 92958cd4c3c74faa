package standards

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
)

var logger = log.WithField("package", "standards")

var docExtensions = map[string]int{
	".md":  0,
	".txt": 1,
}

// LoadDir reads every *.md and *.txt file in dir (non-recursive) into a map
// keyed by lower-cased file stem. When two files share a stem the .md file
// wins. A missing directory yields an empty map.
func LoadDir(dir string) (map[string]Document, error) {
	docs := make(map[string]Document)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			logger.WithField("dir", dir).Debug("standards directory not found")
			return docs, nil
		}
		return nil, fmt.Errorf("reading standards directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := docExtensions[strings.ToLower(filepath.Ext(e.Name()))]; ok {
			names = append(names, e.Name())
		}
	}
	sort.Slice(names, func(i, j int) bool {
		ri := docExtensions[strings.ToLower(filepath.Ext(names[i]))]
		rj := docExtensions[strings.ToLower(filepath.Ext(names[j]))]
		if ri != rj {
			return ri < rj
		}
		return names[i] < names[j]
	})

	for _, name := range names {
		key := strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))
		if _, dup := docs[key]; dup {
			logger.WithField("file", name).Debug("skipping duplicate standards key")
			continue
		}
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading standards file %s: %w", name, err)
		}
		docs[key] = Document{
			Key:        key,
			Content:    string(data),
			SourcePath: path,
		}
	}

	logger.WithField("count", len(docs)).Debug("loaded standards documents")
	return docs, nil
}
