package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var indexTimeout time.Duration

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index <dir>",
	Short: "Ingest a literature directory into the snippet index",
	Long: `Index extracts plain text from every supported document under <dir>
(txt, md, html, pdf), writes extracted text sidecars, chunks them into
line-window snippets, and builds the search index plus the citation
key -> source mapping table.

Citation keys are derived from the filename pattern
"Author - Year - Title", e.g. "Leek - 2010 - Tackling batch effects.pdf"
maps to Leek2010.

Example:
  citewell index ~/literature
  citewell index ./papers --timeout 10m`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().DurationVar(&indexTimeout, "timeout", 10*time.Minute, "overall ingest timeout")
}

func runIndex(cmd *cobra.Command, args []string) error {
	ws, logger, err := openWorkspace()
	if err != nil {
		return err
	}
	defer func() {
		_ = ws.Close()
		_ = logger.Sync()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), indexTimeout)
	defer cancel()

	stats, err := ws.Ingestor().IngestDir(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "indexed %d snippet(s) from %d file(s), %d source(s) mapped",
		stats.Snippets, stats.Files-stats.Failed, stats.Sources)
	if stats.Failed > 0 {
		fmt.Fprintf(os.Stderr, ", %d failed", stats.Failed)
	}
	fmt.Fprintln(os.Stderr)
	return nil
}
