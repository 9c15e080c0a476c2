// Package cli implements the trustrag command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"trustrag/internal/config"
)

var (
	configPath string
	verbose    bool

	// cfg is loaded before every command runs.
	cfg *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "trustrag",
	Short: "Score document trust and compare answers from trusted and untrusted data",
	Long: `trustrag scores chunked documents on completeness, accuracy, security,
quality and timeliness, splits the corpus into AI-ready and non-AI-ready
tiers, and answers questions from both tiers side by side.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config (default ./config.yaml or ~/.config/trustrag/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// ExecuteContext runs the root command with ctx.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	var (
		loaded *config.AppConfig
		err    error
	)
	if configPath == "" {
		var path string
		loaded, path, err = config.LoadDefault()
		slog.Debug("using config", "path", path)
	} else {
		loaded, err = config.Load(configPath)
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg = loaded
	return nil
}

func setupLogging(cmd *cobra.Command) {
	level := slog.LevelInfo
	if v := os.Getenv(config.EnvPrefix + "LOG_LEVEL"); v != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(strings.ToUpper(v))); err == nil {
			level = l
		}
	}
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}
