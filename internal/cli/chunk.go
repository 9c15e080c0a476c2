package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"trustrag/internal/chunker"
	"trustrag/internal/domain"
)

var chunkOut string

var chunkCmd = &cobra.Command{
	Use:   "chunk <file.txt>...",
	Short: "Split plain-text documents into chunk files",
	Long: `Splits each document into overlapping windows and writes them as
{stem}_{index}.txt into the chunk directory, ready for scoring.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runChunk,
}

func init() {
	chunkCmd.Flags().StringVarP(&chunkOut, "out", "o", "", "output directory (default paths.chunk_dir)")
	rootCmd.AddCommand(chunkCmd)
}

func runChunk(cmd *cobra.Command, args []string) error {
	out := chunkOut
	if out == "" {
		out = cfg.Paths.ChunkDir
	}
	ch := chunker.NewTextChunker(cfg.Chunker.ChunkSize, cfg.Chunker.ChunkOverlap, cfg.Paths.ParentExt)
	total := 0
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		base := filepath.Base(path)
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		if strings.Contains(stem, "_") {
			return fmt.Errorf("%s: document names must not contain '_'", base)
		}
		chunks, err := ch.Chunk(domain.Document{ID: stem, Path: path, Content: string(data)})
		if err != nil {
			return err
		}
		if err := chunker.WriteChunks(out, chunks); err != nil {
			return err
		}
		cmd.Printf("%s: %d chunks\n", base, len(chunks))
		total += len(chunks)
	}
	cmd.Printf("Wrote %d chunks to %s\n", total, out)
	return nil
}
