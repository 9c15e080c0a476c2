package service

import (
	"context"
	"fmt"

	"trustrag/internal/cohesion"
	"trustrag/internal/domain"
	"trustrag/internal/tier"
)

// ValidationService measures embedding cohesion of high- and low-trust chunks.
type ValidationService struct {
	embedder domain.Embedder
	bands    tier.Bands
}

func NewValidationService(embedder domain.Embedder, bands tier.Bands) *ValidationService {
	return &ValidationService{embedder: embedder, bands: bands}
}

// Validate prepares the embedder on the whole corpus and reports per-band
// cohesion.
func (s *ValidationService) Validate(ctx context.Context, corpus *Corpus) (*cohesion.Report, error) {
	texts := make([]string, len(corpus.Chunks))
	for i, c := range corpus.Chunks {
		texts[i] = c.Text
	}
	if err := s.embedder.Prepare(texts); err != nil {
		return nil, fmt.Errorf("prepare %s embedder: %w", s.embedder.Name(), err)
	}
	return cohesion.NewValidator(s.embedder, s.bands).Run(ctx, corpus.Chunks, corpus.Scores)
}
