package cli

import (
	"github.com/spf13/cobra"

	"trustrag/internal/chunkfile"
	"trustrag/internal/scoring"
	"trustrag/internal/service"
	"trustrag/internal/tier"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score every chunk and write per-document trust scores",
	Long: `Computes completeness, accuracy, secure, quality and timeliness for each
chunk file, averages them per document and writes metrics.json.`,
	Args: cobra.NoArgs,
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	ext, err := service.NewExtractor(cfg.Scoring)
	if err != nil {
		return err
	}
	archive, err := service.OpenArchive(cfg.Archive)
	if err != nil {
		return err
	}
	if archive != nil {
		defer archive.Close()
	}
	svc := service.NewScoringService(
		chunkfile.NewLoader(cfg.Paths.ParentExt),
		scoring.NewPipeline(ext, cfg.Scoring.Workers),
		cfg.Paths.ChunkDir, cfg.Paths.MetricsFile, archive,
	)
	res, err := svc.Score(cmd.Context())
	if err != nil {
		return err
	}
	th := service.Thresholds(cfg.Tiers)
	cmd.Printf("%-30s %6s  %s\n", "FILE", "SCORE", "TIER")
	for _, r := range res.Records {
		score := float64(r.AITrustScore)
		cmd.Printf("%-30s %6.2f  %s\n", r.File, score, tier.Classify(score, th))
	}
	cmd.Printf("\nScored %d chunks into %d documents (%d skipped) -> %s\n",
		res.Chunks, len(res.Records), len(res.Skipped), cfg.Paths.MetricsFile)
	if res.RunID != "" {
		cmd.Printf("Archived as run %s\n", res.RunID)
	}
	return nil
}
