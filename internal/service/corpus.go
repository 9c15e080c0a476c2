package service

import (
	"log/slog"

	"trustrag/internal/chunkfile"
	"trustrag/internal/domain"
	"trustrag/internal/scorestore"
	"trustrag/internal/tier"
)

// Corpus is a scored chunk directory: the chunks on disk plus the document
// records from the last scoring run.
type Corpus struct {
	Chunks  []domain.Chunk
	Skipped []chunkfile.Skipped
	Records []domain.DocumentScore
	Scores  tier.ScoreIndex
}

// LoadCorpus reads chunkDir and the metrics file. Chunks whose parent has no
// record are kept; they rank as unscored.
func LoadCorpus(chunkDir, parentExt, metricsFile string) (*Corpus, error) {
	records, err := scorestore.Read(metricsFile)
	if err != nil {
		return nil, err
	}
	report, err := chunkfile.NewLoader(parentExt).LoadDir(chunkDir)
	if err != nil {
		return nil, err
	}
	scores := tier.NewScoreIndex(records)
	unscored := 0
	for _, c := range report.Chunks {
		if _, ok := scores.Lookup(c.ParentID); !ok {
			unscored++
		}
	}
	if unscored > 0 {
		slog.Warn("chunks without a document score", "count", unscored, "metrics", metricsFile)
	}
	return &Corpus{
		Chunks:  report.Chunks,
		Skipped: report.Skipped,
		Records: records,
		Scores:  scores,
	}, nil
}
