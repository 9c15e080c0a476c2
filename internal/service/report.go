package service

import (
	"trustrag/internal/domain"
	"trustrag/internal/tier"
)

// DocumentTier is one document's place in every classification.
type DocumentTier struct {
	Record    domain.DocumentScore
	Tier      tier.Tier
	Readiness tier.Readiness
	Band      tier.Band
}

// TierReport is the per-document and corpus-level tier view.
type TierReport struct {
	Documents []DocumentTier
	Summary   tier.Summary
	Ready     int
	NotReady  int
}

// ClassifyDocuments places every record in its tier, readiness and
// validation band, keeping record order.
func ClassifyDocuments(records []domain.DocumentScore, th tier.Thresholds, partition float64, bands tier.Bands) TierReport {
	rep := TierReport{Summary: tier.Summarize(records, th)}
	for _, r := range records {
		score := float64(r.AITrustScore)
		d := DocumentTier{
			Record:    r,
			Tier:      tier.Classify(score, th),
			Readiness: tier.ClassifyBinary(score, partition),
			Band:      bands.Band(score),
		}
		if d.Readiness == tier.AIReady {
			rep.Ready++
		} else {
			rep.NotReady++
		}
		rep.Documents = append(rep.Documents, d)
	}
	return rep
}
