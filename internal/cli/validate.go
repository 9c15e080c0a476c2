package cli

import (
	"github.com/spf13/cobra"

	"trustrag/internal/embedding"
	"trustrag/internal/service"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Compare embedding cohesion of high- and low-trust chunks",
	Long: `Embeds the chunks of high-trust and low-trust documents and reports the
average pairwise cosine similarity of each group. Documents between the two
validation thresholds are left out.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	corpus, err := service.LoadCorpus(cfg.Paths.ChunkDir, cfg.Paths.ParentExt, cfg.Paths.MetricsFile)
	if err != nil {
		return err
	}
	emb, err := embedding.New(cfg.Embedder)
	if err != nil {
		return err
	}
	rep, err := service.NewValidationService(emb, service.Bands(cfg.Tiers)).Validate(cmd.Context(), corpus)
	if err != nil {
		return err
	}
	cmd.Println("Embedding quality validation (by trust score ranges):")
	cmd.Printf("High-trust chunks (>= %.2f): %d\n", rep.Bands.High, rep.HighCount)
	cmd.Printf("Low-trust chunks (<= %.2f):  %d\n", rep.Bands.Low, rep.LowCount)
	if rep.GapCount > 0 {
		cmd.Printf("Chunks between thresholds:  %d (excluded)\n", rep.GapCount)
	}
	cmd.Printf("High trust avg cosine similarity: %.3f\n", rep.HighSimilarity)
	cmd.Printf("Low trust avg cosine similarity:  %.3f\n", rep.LowSimilarity)
	return nil
}
