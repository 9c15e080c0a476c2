package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"trustrag/internal/chunkfile"
	"trustrag/internal/domain"
	"trustrag/internal/scorestore"
	"trustrag/internal/scoring"
)

// ScoringService turns a chunk directory into metrics.json.
type ScoringService struct {
	loader      *chunkfile.Loader
	pipeline    *scoring.Pipeline
	chunkDir    string
	metricsFile string
	archive     scorestore.Archive
}

// NewScoringService wires a scoring run. archive may be nil.
func NewScoringService(loader *chunkfile.Loader, pipeline *scoring.Pipeline, chunkDir, metricsFile string, archive scorestore.Archive) *ScoringService {
	return &ScoringService{
		loader:      loader,
		pipeline:    pipeline,
		chunkDir:    chunkDir,
		metricsFile: metricsFile,
		archive:     archive,
	}
}

// ScoreResult describes a completed scoring run.
type ScoreResult struct {
	Records []domain.DocumentScore
	Chunks  int
	Skipped []chunkfile.Skipped
	RunID   string
}

// Score loads every chunk, scores and aggregates them, and writes the
// records. Nothing is written when no chunk could be loaded.
func (s *ScoringService) Score(ctx context.Context) (*ScoreResult, error) {
	started := time.Now()
	report, err := s.loader.LoadDir(s.chunkDir)
	if err != nil {
		return nil, err
	}
	records, err := s.pipeline.Run(ctx, report.Chunks)
	if err != nil {
		return nil, fmt.Errorf("score %s: %w", s.chunkDir, err)
	}
	if err := scorestore.Write(s.metricsFile, records); err != nil {
		return nil, err
	}
	res := &ScoreResult{Records: records, Chunks: len(report.Chunks), Skipped: report.Skipped}
	slog.Info("scored corpus",
		"documents", len(records), "chunks", res.Chunks, "skipped", len(res.Skipped),
		"output", s.metricsFile, "elapsed", time.Since(started).Round(time.Millisecond))
	if s.archive != nil {
		id, err := s.archive.SaveRun(ctx, scorestore.Run{
			StartedAt:  started,
			Duration:   time.Since(started),
			ChunkCount: res.Chunks,
			Skipped:    len(res.Skipped),
			Scores:     records,
		})
		if err != nil {
			return nil, fmt.Errorf("archive run: %w", err)
		}
		res.RunID = id
		slog.Debug("archived run", "id", id)
	}
	return res, nil
}
