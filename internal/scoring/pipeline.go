package scoring

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"trustrag/internal/domain"
)

// ChunkScorer computes metrics for one chunk.
type ChunkScorer interface {
	Compute(text, filename string) domain.ChunkMetrics
}

// Pipeline scores chunks in parallel and aggregates them into documents.
type Pipeline struct {
	scorer  ChunkScorer
	workers int
}

// NewPipeline creates a pipeline. workers <= 0 uses GOMAXPROCS.
func NewPipeline(scorer ChunkScorer, workers int) *Pipeline {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pipeline{scorer: scorer, workers: workers}
}

// ScoreChunks computes metrics for every chunk. Output order matches input
// order regardless of worker scheduling.
func (p *Pipeline) ScoreChunks(ctx context.Context, chunks []domain.Chunk) ([]domain.ScoredChunk, error) {
	out := make([]domain.ScoredChunk, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i := range chunks {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c := chunks[i]
			out[i] = domain.ScoredChunk{
				ParentID: c.ParentID,
				Index:    c.Index,
				Metrics:  p.scorer.Compute(c.Text, c.Filename),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Run scores and aggregates chunks. It returns ErrEmptyCorpus when chunks
// is empty.
func (p *Pipeline) Run(ctx context.Context, chunks []domain.Chunk) ([]domain.DocumentScore, error) {
	if len(chunks) == 0 {
		return nil, ErrEmptyCorpus
	}
	slog.Debug("scoring chunks", "chunks", len(chunks), "workers", p.workers)
	scored, err := p.ScoreChunks(ctx, chunks)
	if err != nil {
		return nil, err
	}
	return Aggregate(scored)
}
