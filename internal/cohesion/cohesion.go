// Package cohesion measures how semantically consistent a trust band is, as
// a sanity check on the trust score. It is diagnostic only.
package cohesion

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"trustrag/internal/domain"
	"trustrag/internal/tier"
)

// Cosine returns the cosine similarity of a and b, or 0 when either has zero
// norm. Vectors of different length are compared over the shorter prefix.
func Cosine(a, b []float64) float64 {
	n := min(len(a), len(b))
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// AvgCosineSimilarity is the mean cosine similarity over all unordered pairs
// of vectors. Fewer than two vectors yield 0, meaning "not enough data".
func AvgCosineSimilarity(vectors [][]float64) float64 {
	m := len(vectors)
	if m < 2 {
		return 0
	}
	sum := 0.0
	for i := 1; i < m; i++ {
		for j := 0; j < i; j++ {
			sum += Cosine(vectors[i], vectors[j])
		}
	}
	return sum / float64(m*(m-1)/2)
}

// Report is the side-by-side cohesion of the high and low bands.
type Report struct {
	Bands          tier.Bands
	HighCount      int
	LowCount       int
	GapCount       int
	HighSimilarity float64
	LowSimilarity  float64
}

// Validator embeds chunks and measures per-band cohesion.
type Validator struct {
	embedder domain.Embedder
	bands    tier.Bands
}

// NewValidator creates a validator.
func NewValidator(embedder domain.Embedder, bands tier.Bands) *Validator {
	return &Validator{embedder: embedder, bands: bands}
}

// Run buckets chunks of scored documents by their parent's band and averages
// pairwise similarity within the high and low bands. Chunks of unscored
// parents are ignored. The embedder must already be prepared.
func (v *Validator) Run(ctx context.Context, chunks []domain.Chunk, scores tier.ScoreIndex) (*Report, error) {
	if err := v.bands.Validate(); err != nil {
		return nil, err
	}
	var high, low [][]float64
	gap := 0
	for _, c := range chunks {
		score, ok := scores.Lookup(c.ParentID)
		if !ok {
			continue
		}
		band := v.bands.Band(score)
		if band == tier.BandGap {
			gap++
			continue
		}
		vec, err := v.embedder.Embed(ctx, c.Text)
		if err != nil {
			return nil, fmt.Errorf("embed %s: %w", c.Filename, err)
		}
		if band == tier.BandHigh {
			high = append(high, vec)
		} else {
			low = append(low, vec)
		}
	}
	slog.Debug("cohesion bands", "high", len(high), "low", len(low), "gap", gap)
	return &Report{
		Bands:          v.bands,
		HighCount:      len(high),
		LowCount:       len(low),
		GapCount:       gap,
		HighSimilarity: AvgCosineSimilarity(high),
		LowSimilarity:  AvgCosineSimilarity(low),
	}, nil
}
