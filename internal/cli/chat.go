package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"trustrag/internal/service"
	"trustrag/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive side-by-side chat over both trust tiers",
	Args:  cobra.NoArgs,
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	svc, cleanup, err := buildRAG(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()
	m := tui.New(cmd.Context(), svc, service.Thresholds(cfg.Tiers))
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
	return err
}
