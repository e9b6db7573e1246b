package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/avetisyan-lab/citewell/internal/verify"
)

var (
	verifyClaimID   string
	verifyRounds    int
	verifyTarget    int
	verifyFresh     bool
	verifyJSON      string
	verifyTimeout   time.Duration
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify [claim text]",
	Short: "Search the literature for quotations supporting a claim",
	Long: `Verify runs the iterative search-and-verify loop for a claim:
- Each round searches the literature index for candidate snippets
- Every candidate is judged for evidentiary support concurrently
- The loop stops when enough supporting snippets accumulate, the round
  cap is reached, or it is cancelled (Ctrl-C)

With --claim, the stored claim's text is verified and stale quote
provenance on the claim is healed from the index.

Example:
  citewell verify "Batch correction improves cross-study prediction"
  citewell verify --claim 1f2d... --rounds 4 --target 3
  citewell verify --claim 1f2d... --fresh --json result.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVar(&verifyClaimID, "claim", "", "verify a stored claim by ID")
	verifyCmd.Flags().IntVar(&verifyRounds, "rounds", 0, "maximum search-verify rounds (0 = configured default)")
	verifyCmd.Flags().IntVar(&verifyTarget, "target", 0, "supporting snippets needed to stop early (0 = configured default)")
	verifyCmd.Flags().BoolVar(&verifyFresh, "fresh", false, "skip the validation cache")
	verifyCmd.Flags().StringVar(&verifyJSON, "json", "", "write the aggregate result to a JSON file")
	verifyCmd.Flags().DurationVar(&verifyTimeout, "timeout", 5*time.Minute, "overall verification timeout")
}

func runVerify(cmd *cobra.Command, args []string) error {
	ws, logger, err := openWorkspace()
	if err != nil {
		return err
	}
	defer func() {
		_ = ws.Close()
		_ = logger.Sync()
	}()

	claimText := ""
	if verifyClaimID != "" {
		claim, err := ws.Claims.GetClaim(verifyClaimID)
		if err != nil {
			return err
		}
		claimText = claim.Text
	} else if len(args) == 1 {
		claimText = args[0]
	} else {
		return fmt.Errorf("provide claim text or --claim <id>")
	}

	ctx, cancel := context.WithTimeout(context.Background(), verifyTimeout)
	defer cancel()

	// Ctrl-C cancels the session, it does not error out
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	sess := ws.Sessions.Start(ctx, claimText, verify.Options{
		ClaimID:           verifyClaimID,
		MaxRounds:         verifyRounds,
		SufficiencyTarget: verifyTarget,
		SkipCache:         verifyFresh,
	})

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\ncancelled")
		sess.Cancel()
	}()

	for ev := range sess.Events() {
		switch ev.Type {
		case verify.EventCandidatesFound:
			fmt.Fprintf(os.Stderr, "round %d: %d candidate(s)\n", ev.Round, len(ev.Candidates))
		case verify.EventVerificationUpdate:
			if verbose {
				mark := "-"
				if ev.Verification.Supports {
					mark = "+"
				}
				fmt.Fprintf(os.Stderr, "  [%s] %s (%.2f)\n", mark, ev.SnippetID, ev.Verification.Confidence)
			}
		case verify.EventRoundComplete:
			fmt.Fprintf(os.Stderr, "round %d complete: %d supporting\n",
				ev.Round, len(ev.RoundRecord.SupportingSnippets))
		}
	}

	result, err := sess.Result()
	if err != nil {
		return err
	}
	if result == nil {
		// Cancelled: deliberate supersession, not a failure
		return nil
	}

	if result.IsCached {
		fmt.Fprintln(os.Stderr, "(cached validation; use --fresh to re-run)")
	}
	if result.Supported {
		fmt.Fprintf(os.Stderr, "claim supported by %d snippet(s)\n", len(result.SupportingSnippets))
	} else {
		fmt.Fprintln(os.Stderr, "no supporting evidence found")
	}

	return printJSON(result, verifyJSON)
}
