// Package scorestore persists per-document trust records: the metrics.json
// artifact consumed by the tier and chat commands, and an optional archive
// of past scoring runs.
package scorestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"trustrag/internal/domain"
)

// ErrNoScores is returned by Read when the metrics file does not exist.
var ErrNoScores = errors.New("no scores found; run `trustrag score` first")

// Write stores records as a 2-space indented JSON array. Records are written
// in the order given. The file is replaced atomically.
func Write(path string, records []domain.DocumentScore) error {
	if records == nil {
		records = []domain.DocumentScore{}
	}
	data, err := Encode(records)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace metrics: %w", err)
	}
	return nil
}

// Encode renders records exactly as Write stores them.
func Encode(records []domain.DocumentScore) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("encode metrics: %w", err)
	}
	return buf.Bytes(), nil
}

// Read loads records written by Write.
func Read(path string) ([]domain.DocumentScore, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w (%s)", ErrNoScores, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read metrics: %w", err)
	}
	var records []domain.DocumentScore
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode metrics %s: %w", path, err)
	}
	return records, nil
}

// Run is one completed scoring run.
type Run struct {
	ID         string
	StartedAt  time.Time
	Duration   time.Duration
	ChunkCount int
	Skipped    int
	Scores     []domain.DocumentScore
}

// RunSummary describes an archived run without its scores.
type RunSummary struct {
	ID            string
	StartedAt     time.Time
	Duration      time.Duration
	ChunkCount    int
	Skipped       int
	DocumentCount int
	AverageScore  float64
}

// Archive records scoring runs.
type Archive interface {
	SaveRun(ctx context.Context, run Run) (string, error)
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)
	RunScores(ctx context.Context, id string) ([]domain.DocumentScore, error)
	Close() error
}
