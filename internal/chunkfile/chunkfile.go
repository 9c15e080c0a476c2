// Package chunkfile reads chunk files named {parent_stem}_{chunk_index}.txt
// and resolves each one's parent document once, at load time.
package chunkfile

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"trustrag/internal/domain"
)

// DefaultParentExt is appended to a chunk's stem to name its parent document.
const DefaultParentExt = ".pdf"

// ErrMalformedChunkName is returned for chunk filenames with no underscore
// separator or an empty parent stem.
var ErrMalformedChunkName = errors.New("malformed chunk name")

// NoIndex is the chunk index of a file whose suffix after the last
// underscore is not a non-negative number, e.g. report_final.txt.
const NoIndex = -1

// ParseName recovers the parent document id and chunk index from a chunk
// filename. The stem is everything before the first underscore. A suffix
// that is not a number still names the parent and yields NoIndex.
func ParseName(filename, parentExt string) (parentID string, index int, err error) {
	base := filepath.Base(filename)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	parent, rest, ok := strings.Cut(stem, "_")
	if !ok || parent == "" {
		return "", 0, fmt.Errorf("%w: %q has no parent stem", ErrMalformedChunkName, base)
	}
	idxStr := rest
	if i := strings.LastIndex(rest, "_"); i >= 0 {
		idxStr = rest[i+1:]
	}
	index, err = strconv.Atoi(idxStr)
	if err != nil || index < 0 {
		return parent + parentExt, NoIndex, nil
	}
	return parent + parentExt, index, nil
}

// ChunkName is the inverse of ParseName for a parent stem.
func ChunkName(stem string, index int) string {
	return fmt.Sprintf("%s_%d.txt", stem, index)
}

// Skipped records a file that was not loaded and why.
type Skipped struct {
	Path string
	Err  error
}

// LoadReport lists the chunks loaded from a directory and the files skipped.
type LoadReport struct {
	Chunks  []domain.Chunk
	Skipped []Skipped
}

// Loader reads chunk files from a directory.
type Loader struct {
	ParentExt string
}

// NewLoader creates a loader; an empty parentExt selects DefaultParentExt.
func NewLoader(parentExt string) *Loader {
	if parentExt == "" {
		parentExt = DefaultParentExt
	}
	return &Loader{ParentExt: parentExt}
}

// LoadDir loads every .txt file in dir in name order. Unreadable, non-UTF-8
// or badly named files are skipped with a warning; only a failure to list
// the directory is returned as an error.
func (l *Loader) LoadDir(dir string) (*LoadReport, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read chunk dir: %w", err)
	}
	report := &LoadReport{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".txt") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		ch, err := l.LoadFile(path)
		if err != nil {
			slog.Warn("skipping chunk file", "path", path, "error", err)
			report.Skipped = append(report.Skipped, Skipped{Path: path, Err: err})
			continue
		}
		report.Chunks = append(report.Chunks, ch)
	}
	return report, nil
}

// LoadFile loads a single chunk file.
func (l *Loader) LoadFile(path string) (domain.Chunk, error) {
	parent, index, err := ParseName(path, l.ParentExt)
	if err != nil {
		return domain.Chunk{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Chunk{}, err
	}
	if !utf8.Valid(data) {
		return domain.Chunk{}, fmt.Errorf("%s: not valid UTF-8 text", filepath.Base(path))
	}
	return domain.Chunk{
		ParentID: parent,
		Index:    index,
		Filename: filepath.Base(path),
		Text:     string(data),
	}, nil
}
