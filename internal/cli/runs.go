package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"trustrag/internal/service"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs [run-id]",
	Short: "List archived scoring runs, or show one run's scores",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 10, "maximum number of runs to list")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	archive, err := service.OpenArchive(cfg.Archive)
	if err != nil {
		return err
	}
	if archive == nil {
		return errors.New("run archive is disabled; set archive.type to sqlite")
	}
	defer archive.Close()

	if len(args) == 1 {
		scores, err := archive.RunScores(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		for _, s := range scores {
			cmd.Printf("%-30s %6.2f\n", s.File, float64(s.AITrustScore))
		}
		return nil
	}
	runs, err := archive.ListRuns(cmd.Context(), runsLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		cmd.Println("No runs archived yet.")
		return nil
	}
	for _, r := range runs {
		cmd.Printf("%s  %s  %3d docs  avg %.2f  %d chunks  %d skipped  %s\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.DocumentCount, r.AverageScore,
			r.ChunkCount, r.Skipped, r.Duration.Round(time.Millisecond))
	}
	return nil
}
