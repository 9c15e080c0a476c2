// Package scoring turns per-chunk metrics into per-document trust scores.
package scoring

import (
	"errors"
	"sort"

	"trustrag/internal/domain"
)

// ErrEmptyCorpus is returned when there are no chunks to aggregate.
var ErrEmptyCorpus = errors.New("empty corpus: no chunks to score")

// Aggregate groups chunks by parent document, in first-seen order, and
// computes one DocumentScore per parent.
//
// Each signal is averaged and rounded to two decimals. The trust score is
// the mean of those rounded averages, rounded again.
func Aggregate(chunks []domain.ScoredChunk) ([]domain.DocumentScore, error) {
	if len(chunks) == 0 {
		return nil, ErrEmptyCorpus
	}
	var order []string
	groups := make(map[string][]domain.ScoredChunk)
	for _, c := range chunks {
		if _, ok := groups[c.ParentID]; !ok {
			order = append(order, c.ParentID)
		}
		groups[c.ParentID] = append(groups[c.ParentID], c)
	}

	out := make([]domain.DocumentScore, 0, len(order))
	for _, parent := range order {
		out = append(out, aggregateDocument(parent, groups[parent]))
	}
	return out, nil
}

func aggregateDocument(parent string, group []domain.ScoredChunk) domain.DocumentScore {
	// Sum in index order so the result does not depend on arrival order.
	sorted := make([]domain.ScoredChunk, len(group))
	copy(sorted, group)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	var c, a, s, q, t float64
	tokens := 0
	for _, sc := range sorted {
		m := sc.Metrics
		c += m.Completeness
		a += m.Accuracy
		s += m.Secure
		q += m.Quality
		t += m.Timeliness
		tokens += m.TokenCount
	}
	n := float64(len(sorted))
	doc := domain.DocumentScore{
		File:         parent,
		Completeness: domain.Score(Round2(c / n)),
		Accuracy:     domain.Score(Round2(a / n)),
		Secure:       domain.Score(Round2(s / n)),
		Quality:      domain.Score(Round2(q / n)),
		Timeliness:   domain.Score(Round2(t / n)),
		TokenCount:   tokens,
	}
	doc.AITrustScore = domain.Score(TrustScore(doc))
	return doc
}

// TrustScore is the two-decimal mean of a record's five rounded signals.
func TrustScore(d domain.DocumentScore) float64 {
	sum := float64(d.Completeness) + float64(d.Accuracy) + float64(d.Secure) +
		float64(d.Quality) + float64(d.Timeliness)
	return Round2(sum / 5.0)
}
