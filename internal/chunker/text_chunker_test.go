package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trustrag/internal/chunkfile"
	"trustrag/internal/domain"
)

func TestTextChunker_ShortDocument(t *testing.T) {
	c := NewTextChunker(800, 100, "")
	chunks, err := c.Chunk(domain.Document{ID: "label", Content: "  Hello world.\n"})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, domain.Chunk{ParentID: "label.pdf", Index: 0, Filename: "label_0.txt", Text: "Hello world."}, chunks[0])

	chunks, err = c.Chunk(domain.Document{ID: "empty", Content: " \n "})
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestTextChunker_BreaksAtWords(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("alpha ", 400))
	chunks, err := NewTextChunker(800, 100, "").Chunk(domain.Document{ID: "doc", Content: text})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(chunks), 3)
	total := 0
	for i, ch := range chunks {
		assert.Equal(t, i, ch.Index)
		assert.LessOrEqual(t, utf8.RuneCountInString(ch.Text), 800)
		for _, w := range strings.Fields(ch.Text) {
			assert.Equal(t, "alpha", w, "chunk %d has a split word", i)
		}
		total += len(strings.Fields(ch.Text))
	}
	// Overlap repeats some words across neighbouring chunks.
	assert.Greater(t, total, 400)
	assert.True(t, strings.HasSuffix(text, chunks[len(chunks)-1].Text))
}

func TestTextChunker_PrefersParagraphBreak(t *testing.T) {
	para := strings.Repeat("a", 500)
	text := para + "\n\n" + strings.Repeat("b ", 300)
	chunks, err := NewTextChunker(800, 100, "").Chunk(domain.Document{ID: "doc", Content: text})
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	assert.Equal(t, para, chunks[0].Text)
}

func TestTextChunker_HardCutCountsRunes(t *testing.T) {
	text := strings.Repeat("é", 1000)
	chunks, err := NewTextChunker(800, 100, ".doc").Chunk(domain.Document{ID: "x", Content: text})
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, 800, utf8.RuneCountInString(chunks[0].Text))
	assert.Equal(t, 300, utf8.RuneCountInString(chunks[1].Text))
	assert.Equal(t, "x.doc", chunks[1].ParentID)
}

func TestWriteChunks_RoundTripsThroughLoader(t *testing.T) {
	dir := t.TempDir()
	text := strings.TrimSpace(strings.Repeat("dose ", 300))
	chunks, err := NewTextChunker(800, 100, "").Chunk(domain.Document{ID: "label", Content: text})
	require.NoError(t, err)
	require.NoError(t, WriteChunks(dir, chunks))

	report, err := chunkfile.NewLoader("").LoadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, report.Skipped)
	require.Len(t, report.Chunks, len(chunks))
	for _, ch := range report.Chunks {
		assert.Equal(t, "label.pdf", ch.ParentID)
		assert.Equal(t, chunks[ch.Index].Text, ch.Text)
	}
}
