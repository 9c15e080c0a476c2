// Package chunker splits plain-text documents into overlapping chunks and
// writes them as {stem}_{index}.txt chunk files.
package chunker

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"trustrag/internal/chunkfile"
	"trustrag/internal/domain"
)

// separators are tried in order when looking for a place to cut a window.
var separators = []string{"\n\n", "\n", " "}

// TextChunker cuts text into windows of at most size runes. Each window ends
// at the last paragraph, line or word break in its second half when there is
// one, and the next window starts overlap runes before the cut.
type TextChunker struct {
	size      int
	overlap   int
	parentExt string
}

// NewTextChunker creates a chunker. Out-of-range arguments fall back to
// 800 runes with 100 runes of overlap.
func NewTextChunker(size, overlap int, parentExt string) *TextChunker {
	if size <= 0 {
		size = 800
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	if parentExt == "" {
		parentExt = chunkfile.DefaultParentExt
	}
	return &TextChunker{size: size, overlap: overlap, parentExt: parentExt}
}

// Chunk splits document into chunks whose ParentID is the document id plus
// the parent extension.
func (c *TextChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	text := []rune(strings.TrimSpace(document.Content))
	if len(text) == 0 {
		return nil, nil
	}
	parent := document.ID + c.parentExt
	var chunks []domain.Chunk
	start := 0
	for start < len(text) {
		end := start + c.size
		if end >= len(text) {
			end = len(text)
		} else {
			end = c.cut(text, start, end)
		}
		if piece := strings.TrimSpace(string(text[start:end])); piece != "" {
			idx := len(chunks)
			chunks = append(chunks, domain.Chunk{
				ParentID: parent,
				Index:    idx,
				Filename: chunkfile.ChunkName(document.ID, idx),
				Text:     piece,
			})
		}
		if end == len(text) {
			break
		}
		next := end - c.overlap
		if next <= start {
			next = end
		}
		start = wordStart(text, next, end)
	}
	return chunks, nil
}

// cut returns the window end, preferring the last separator in the second
// half of text[start:end].
func (c *TextChunker) cut(text []rune, start, end int) int {
	window := string(text[start:end])
	half := len(string(text[start : start+(end-start)/2]))
	for _, sep := range separators {
		if i := strings.LastIndex(window, sep); i >= half {
			return start + len([]rune(window[:i+len(sep)]))
		}
	}
	return end
}

// wordStart moves pos forward past a partial word, never beyond limit.
func wordStart(text []rune, pos, limit int) int {
	if pos == 0 || isSpace(text[pos-1]) {
		return pos
	}
	for i := pos; i < limit; i++ {
		if isSpace(text[i]) {
			return i + 1
		}
	}
	return pos
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t' || r == '\r'
}

// WriteChunks writes each chunk to dir under its Filename.
func WriteChunks(dir string, chunks []domain.Chunk) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create chunk dir: %w", err)
	}
	for _, ch := range chunks {
		if err := os.WriteFile(filepath.Join(dir, ch.Filename), []byte(ch.Text), 0o644); err != nil {
			return fmt.Errorf("write chunk %s: %w", ch.Filename, err)
		}
	}
	return nil
}
