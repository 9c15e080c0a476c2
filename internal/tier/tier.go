// Package tier maps trust scores to discrete trust tiers and splits corpora
// by readiness.
package tier

import (
	"fmt"

	"trustrag/internal/domain"
)

// Tier is the three-level trust classification.
type Tier int

const (
	Low Tier = iota
	Medium
	High
)

func (t Tier) String() string {
	switch t {
	case High:
		return "High"
	case Medium:
		return "Medium"
	default:
		return "Low"
	}
}

// Thresholds are the inclusive lower bounds of the High and Medium tiers.
type Thresholds struct {
	High float64
	Low  float64
}

// DefaultThresholds are 0.75 for High and 0.5 for Medium.
var DefaultThresholds = Thresholds{High: 0.75, Low: 0.5}

// Classify returns High for score >= High, Medium for score >= Low and Low
// otherwise.
func Classify(score float64, th Thresholds) Tier {
	switch {
	case score >= th.High:
		return High
	case score >= th.Low:
		return Medium
	default:
		return Low
	}
}

// Readiness is the binary partition used to build the two retrieval indexes.
type Readiness int

const (
	NonAIReady Readiness = iota
	AIReady
)

func (r Readiness) String() string {
	if r == AIReady {
		return "AI-ready"
	}
	return "non-AI-ready"
}

// DefaultPartitionThreshold is the readiness cutoff.
const DefaultPartitionThreshold = 0.75

// ClassifyBinary returns AIReady for score >= threshold.
func ClassifyBinary(score, threshold float64) Readiness {
	if score >= threshold {
		return AIReady
	}
	return NonAIReady
}

// Band is a cohesion-validation bucket.
type Band int

const (
	BandLow Band = iota
	BandGap
	BandHigh
)

func (b Band) String() string {
	switch b {
	case BandHigh:
		return "high"
	case BandGap:
		return "gap"
	default:
		return "low"
	}
}

// Bands are the validation cutoffs. Scores >= High are high, scores <= Low
// are low; when High > Low the scores strictly between fall in neither.
type Bands struct {
	High float64
	Low  float64
}

// DefaultBands leave (0.75, 0.76) out of both bands.
var DefaultBands = Bands{High: 0.76, Low: 0.75}

// Validate checks the band ordering.
func (b Bands) Validate() error {
	if b.Low > b.High {
		return fmt.Errorf("validation low threshold %.2f is above high threshold %.2f", b.Low, b.High)
	}
	return nil
}

// Band places score in a validation band.
func (b Bands) Band(score float64) Band {
	switch {
	case score >= b.High:
		return BandHigh
	case score <= b.Low:
		return BandLow
	default:
		return BandGap
	}
}

// Partition splits items by readiness, keeping input order in both halves.
// Every item lands in exactly one of the two results.
func Partition[T any](items []T, score func(T) float64, threshold float64) (ready, notReady []T) {
	for _, it := range items {
		if ClassifyBinary(score(it), threshold) == AIReady {
			ready = append(ready, it)
		} else {
			notReady = append(notReady, it)
		}
	}
	return ready, notReady
}

// ScoreIndex looks up document scores by file name.
type ScoreIndex map[string]float64

// NewScoreIndex indexes records by their File field.
func NewScoreIndex(records []domain.DocumentScore) ScoreIndex {
	idx := make(ScoreIndex, len(records))
	for _, r := range records {
		idx[r.File] = float64(r.AITrustScore)
	}
	return idx
}

// Lookup returns the score for parent and whether it was scored.
func (s ScoreIndex) Lookup(parent string) (float64, bool) {
	v, ok := s[parent]
	return v, ok
}

// ChunkScore returns the score of c's parent document, or 0 when the parent
// was never scored.
func (s ScoreIndex) ChunkScore(c domain.Chunk) float64 {
	return s[c.ParentID]
}

// Summary is the corpus-level view shown next to the chat.
type Summary struct {
	Documents int
	Average   float64
	Tier      Tier
}

// Summarize averages document scores and classifies the average. The
// average's tier says nothing about any single document's tier.
func Summarize(records []domain.DocumentScore, th Thresholds) Summary {
	if len(records) == 0 {
		return Summary{Tier: Low}
	}
	sum := 0.0
	for _, r := range records {
		sum += float64(r.AITrustScore)
	}
	avg := sum / float64(len(records))
	return Summary{Documents: len(records), Average: avg, Tier: Classify(avg, th)}
}
