package diff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSections_MatchParse(t *testing.T) {
	secs := Sections(twoFileDiff)
	files, _ := Parse(twoFileDiff)
	require.Len(t, secs, len(files))
	for i := range secs {
		assert.Equal(t, files[i].Path, secs[i].Path)
	}
	assert.True(t, strings.HasPrefix(secs[1].Text, "diff --git a/src/Widget.tsx"))
	assert.Equal(t, twoFileDiff, secs[0].Text+secs[1].Text)
}

func TestKeep_OnlyListedFiles(t *testing.T) {
	secs := Sections(twoFileDiff)
	got := Keep(secs, []ChangedFile{{Path: "src/Widget.tsx"}})
	require.Len(t, got, 1)
	assert.Equal(t, secs[1], got[0])

	assert.Empty(t, Keep(secs, nil))
}
