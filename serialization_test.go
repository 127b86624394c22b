package latimes

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerialization_MetadataRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), metadataFile)

	docs := map[uint32]DocInfo{
		0: {DocNo: "LA010189-0001", Date: "010189", Length: 42, Headline: "Plain Headline"},
		1: {DocNo: "LA010289-0007", Date: "010289", Length: 7, Headline: "Tabs\tand \"quotes\" survive"},
		2: {DocNo: "LA031589-0100", Date: "031589", Length: 0, Headline: ""},
	}

	require.NoError(t, writeMetadata(path, docs))

	got, err := loadMetadata(path)
	require.NoError(t, err)
	assert.Equal(t, docs, got)
}

func TestSerialization_LexiconRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), lexiconFile)

	lexicon := map[string]uint32{"fox": 0, "quick": 1, "brown": 2, "1989": 3}
	require.NoError(t, writeLexicon(path, lexicon))

	got, err := loadLexicon(path)
	require.NoError(t, err)
	assert.Equal(t, lexicon, got)
}

func TestSerialization_PostingsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), postingsFile)

	postings := map[uint32][]Posting{
		0: {{DocID: 0, Count: 3}, {DocID: 5, Count: 1}},
		1: {{DocID: 2, Count: 1}},
		2: {{DocID: 0, Count: 1}, {DocID: 1, Count: 2}, {DocID: 9, Count: 4}},
	}
	require.NoError(t, writePostings(path, postings))

	got, err := loadPostings(path)
	require.NoError(t, err)
	assert.Equal(t, postings, got)
}

func TestSerialization_ChecksumDetectsTampering(t *testing.T) {
	path := filepath.Join(t.TempDir(), lexiconFile)
	require.NoError(t, writeLexicon(path, map[string]uint32{"fox": 0}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// Flip one payload byte and rewrite.
	data[len(data)-2] ^= 0x01
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err = loadLexicon(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checksum mismatch")
}

func TestSerialization_TruncatedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), postingsFile)
	require.NoError(t, os.WriteFile(path, []byte("no checksum line here"), 0o644))

	_, err := loadPostings(path)
	assert.Error(t, err)
}

func TestSerialization_ByteStableOutput(t *testing.T) {
	dir := t.TempDir()
	lexicon := map[string]uint32{"alpha": 0, "beta": 1, "gamma": 2}

	pathA := filepath.Join(dir, "a.txt")
	pathB := filepath.Join(dir, "b.txt")
	require.NoError(t, writeLexicon(pathA, lexicon))
	require.NoError(t, writeLexicon(pathB, lexicon))

	a, err := os.ReadFile(pathA)
	require.NoError(t, err)
	b, err := os.ReadFile(pathB)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
