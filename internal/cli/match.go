package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	matchThreshold float64
	matchTopN      int
	matchBatchFile string
	matchJSON      string
	matchTimeout   time.Duration
)

// matchCmd represents the match command
var matchCmd = &cobra.Command{
	Use:   "match [sentence]",
	Short: "Rank stored claims against a manuscript sentence",
	Long: `Match embeds the sentence and ranks every stored claim by cosine
similarity, keeping matches at or above the threshold (top 20 at most).

With --batch, sentences are read from a file (one per line) and ranked
concurrently; results are keyed sentence_0, sentence_1, ... by input
position.

Example:
  citewell match "Batch correction improves prediction"
  citewell match "..." --threshold 0.6 --top 5
  citewell match --batch sentences.txt --json matches.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().Float64Var(&matchThreshold, "threshold", 0.5, "similarity floor in [0,1]")
	matchCmd.Flags().IntVar(&matchTopN, "top", 0, "return only the top N matches (0 = all up to 20)")
	matchCmd.Flags().StringVar(&matchBatchFile, "batch", "", "file of sentences, one per line")
	matchCmd.Flags().StringVar(&matchJSON, "json", "", "write results to a JSON file")
	matchCmd.Flags().DurationVar(&matchTimeout, "timeout", 2*time.Minute, "overall matching timeout")
}

func runMatch(cmd *cobra.Command, args []string) error {
	if matchBatchFile == "" && len(args) != 1 {
		return fmt.Errorf("provide a sentence or --batch <file>")
	}

	ws, logger, err := openWorkspace()
	if err != nil {
		return err
	}
	defer func() {
		_ = ws.Close()
		_ = logger.Sync()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), matchTimeout)
	defer cancel()

	if matchBatchFile != "" {
		sentences, err := readLines(matchBatchFile)
		if err != nil {
			return err
		}
		results := ws.Matching.BatchFindSimilarClaims(ctx, sentences)
		return printJSON(results, matchJSON)
	}

	matches := ws.Matching.FindSimilarClaims(ctx, args[0], matchThreshold)
	if matchTopN > 0 && len(matches) > matchTopN {
		matches = matches[:matchTopN]
	}

	if len(matches) == 0 {
		fmt.Fprintln(os.Stderr, "no similar claims")
	}
	return printJSON(matches, matchJSON)
}

// readLines reads non-empty, non-comment lines from a file.
func readLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return lines, nil
}
