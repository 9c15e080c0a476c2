package chunkfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseName(t *testing.T) {
	cases := []struct {
		name   string
		parent string
		index  int
	}{
		{"cbbd3dc0-6a39_0.txt", "cbbd3dc0-6a39.pdf", 0},
		{"/data/processed/label_12.txt", "label.pdf", 12},
		{"my_doc_3.txt", "my.pdf", 3},
		{"report_final.txt", "report.pdf", NoIndex},
		{"label_.txt", "label.pdf", NoIndex},
		{"label_-1.txt", "label.pdf", NoIndex},
	}
	for _, tc := range cases {
		parent, index, err := ParseName(tc.name, ".pdf")
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.parent, parent, tc.name)
		assert.Equal(t, tc.index, index, tc.name)
	}
}

func TestParseName_Malformed(t *testing.T) {
	for _, name := range []string{"label.txt", "_3.txt", "noseparator"} {
		_, _, err := ParseName(name, ".pdf")
		assert.ErrorIs(t, err, ErrMalformedChunkName, name)
	}
}

func TestChunkName_RoundTrip(t *testing.T) {
	parent, index, err := ParseName(ChunkName("label", 4), ".pdf")
	require.NoError(t, err)
	assert.Equal(t, "label.pdf", parent)
	assert.Equal(t, 4, index)
}

func TestLoadDir_SkipsBadFiles(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, data []byte) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}
	write("b_1.txt", []byte("second chunk of b"))
	write("a_0.txt", []byte("first chunk of a"))
	write("b_0.txt", []byte("first chunk of b"))
	write("nounderscore.txt", []byte("orphan"))
	write("c_0.txt", []byte{0xff, 0xfe, 0xfd})
	write("metrics.json", []byte("[]"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub_0.txt"), 0o755))

	report, err := NewLoader("").LoadDir(dir)
	require.NoError(t, err)

	require.Len(t, report.Chunks, 3)
	assert.Equal(t, "a_0.txt", report.Chunks[0].Filename)
	assert.Equal(t, "a.pdf", report.Chunks[0].ParentID)
	assert.Equal(t, "b.pdf", report.Chunks[1].ParentID)
	assert.Equal(t, 0, report.Chunks[1].Index)
	assert.Equal(t, 1, report.Chunks[2].Index)
	assert.Equal(t, "second chunk of b", report.Chunks[2].Text)

	require.Len(t, report.Skipped, 2)
	assert.ErrorIs(t, report.Skipped[1].Err, ErrMalformedChunkName)
}

func TestLoadDir_MissingDir(t *testing.T) {
	_, err := NewLoader(".pdf").LoadDir(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestLoadDir_NonNumericSuffixKeepsParent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report_final.txt"), []byte("final section"), 0o644))

	report, err := NewLoader("").LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, report.Chunks, 1)
	assert.Empty(t, report.Skipped)
	assert.Equal(t, "report.pdf", report.Chunks[0].ParentID)
	assert.Equal(t, NoIndex, report.Chunks[0].Index)
}
