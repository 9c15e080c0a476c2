package cli

import (
	"github.com/spf13/cobra"

	"trustrag/internal/scorestore"
	"trustrag/internal/service"
)

var tiersCmd = &cobra.Command{
	Use:   "tiers",
	Short: "Show each document's trust tier and readiness",
	Args:  cobra.NoArgs,
	RunE:  runTiers,
}

func init() {
	rootCmd.AddCommand(tiersCmd)
}

func runTiers(cmd *cobra.Command, _ []string) error {
	records, err := scorestore.Read(cfg.Paths.MetricsFile)
	if err != nil {
		return err
	}
	rep := service.ClassifyDocuments(records, service.Thresholds(cfg.Tiers), cfg.Tiers.Partition, service.Bands(cfg.Tiers))
	cmd.Printf("%-30s %6s  %-7s %-13s %s\n", "FILE", "SCORE", "TIER", "READINESS", "BAND")
	for _, d := range rep.Documents {
		cmd.Printf("%-30s %6.2f  %-7s %-13s %s\n", d.Record.File, float64(d.Record.AITrustScore), d.Tier, d.Readiness, d.Band)
	}
	cmd.Printf("\n%d AI-ready, %d non-AI-ready\n", rep.Ready, rep.NotReady)
	cmd.Printf("Average trust score %.2f (%s)\n", rep.Summary.Average, rep.Summary.Tier)
	return nil
}
