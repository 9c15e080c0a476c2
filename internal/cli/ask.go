package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"trustrag/internal/service"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a question from both trust tiers and compare",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	svc, cleanup, err := buildRAG(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()
	cmp, err := svc.Ask(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}
	printTierAnswer(cmd, "AI-Ready Bot Response", cmp.Ready)
	printTierAnswer(cmd, "Non-AI-Ready Bot Response", cmp.NotReady)
	if cmp.Similarity != nil {
		cmd.Printf("Response similarity score: %.2f (%s)\n", cmp.Similarity.Ratio, cmp.Similarity.Verdict)
	}
	return nil
}

func printTierAnswer(cmd *cobra.Command, title string, ta service.TierAnswer) {
	cmd.Printf("== %s ==\n", title)
	if ta.Err != nil {
		cmd.Println(tierErr(ta.Err))
		cmd.Println()
		return
	}
	cmd.Println(ta.Answer)
	cmd.Println("Sources:")
	for _, src := range ta.Sources {
		if src.Scored {
			cmd.Printf("- %s [%s] trust score %.2f\n", src.Filename, src.Badge, src.Score)
		} else {
			cmd.Printf("- %s\n", src.Filename)
		}
	}
	cmd.Println()
}
