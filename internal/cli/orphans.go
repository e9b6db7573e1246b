package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/avetisyan-lab/citewell/internal/model"
	"github.com/avetisyan-lab/citewell/internal/orphan"
)

var (
	orphansClaimID string
	orphansCited   []string
	orphansFix     bool
	orphansJSON    string
	orphansTimeout time.Duration
)

// orphansCmd represents the orphans command
var orphansCmd = &cobra.Command{
	Use:   "orphans",
	Short: "Classify citation health and detect orphan citations",
	Long: `Orphans classifies every citation on a claim (or on all claims) as:
- verified:         a verified quote from that source backs the claim
- unsupported:      quotes exist but none meets the verification threshold
- orphan-citation:  the key is cited with zero quotes from the source

With --fix, each orphan citation is resolved by searching the mapped
source's extracted text and attaching the best candidate quote.

Example:
  citewell orphans
  citewell orphans --claim 1f2d... --cited Leek2010 --cited Johnson2007
  citewell orphans --claim 1f2d... --fix`,
	RunE: runOrphans,
}

func init() {
	rootCmd.AddCommand(orphansCmd)

	orphansCmd.Flags().StringVar(&orphansClaimID, "claim", "", "validate a single claim by ID (default: all claims)")
	orphansCmd.Flags().StringArrayVar(&orphansCited, "cited", nil, "citation keys asserted by prose for the claim")
	orphansCmd.Flags().BoolVar(&orphansFix, "fix", false, "attach the best candidate quote for each orphan citation")
	orphansCmd.Flags().StringVar(&orphansJSON, "json", "", "write the validation report to a JSON file")
	orphansCmd.Flags().DurationVar(&orphansTimeout, "timeout", 2*time.Minute, "overall validation timeout")
}

func runOrphans(cmd *cobra.Command, args []string) error {
	ws, logger, err := openWorkspace()
	if err != nil {
		return err
	}
	defer func() {
		_ = ws.Close()
		_ = logger.Sync()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), orphansTimeout)
	defer cancel()

	// Source mappings must be loaded before validation queries
	if err := ws.Sources.LoadSourceMappings(); err != nil {
		return err
	}

	var claimIDs []string
	if orphansClaimID != "" {
		claimIDs = []string{orphansClaimID}
	} else {
		for _, c := range ws.Claims.ListClaims() {
			claimIDs = append(claimIDs, c.ID)
		}
	}

	var all []model.CitationValidation
	for _, id := range claimIDs {
		validations, err := ws.Orphans.ValidateClaimCitations(id, orphansCited...)
		if err != nil {
			return err
		}
		all = append(all, validations...)

		if orphansFix {
			if err := fixOrphans(ctx, ws.Orphans, validations); err != nil {
				return err
			}
		}
	}

	health := orphan.Summarize(all)
	fmt.Fprintf(os.Stderr, "citations: %d  verified: %d  unsupported: %d  orphans: %d  index: %d/100 (%s)\n",
		health.Total, health.Verified, health.Unsupported, health.Orphans, health.Index, health.Confidence)

	report := struct {
		Health      orphan.Health              `json:"health"`
		Validations []model.CitationValidation `json:"validations"`
	}{Health: health, Validations: all}

	return printJSON(report, orphansJSON)
}

// fixOrphans attaches the top candidate quote for every orphan citation.
func fixOrphans(ctx context.Context, validator *orphan.Validator, validations []model.CitationValidation) error {
	for _, v := range validations {
		if v.Status != model.CitationOrphan {
			continue
		}

		quotes, err := validator.FindQuotesFromPaper(ctx, v.ClaimID, v.AuthorYear, 1)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %s: cannot search source: %v\n", v.AuthorYear, err)
			continue
		}
		if len(quotes) == 0 {
			fmt.Fprintf(os.Stderr, "  %s: no candidate quotes found\n", v.AuthorYear)
			continue
		}

		if err := validator.AttachQuoteToClaim(v.ClaimID, quotes[0]); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "  %s: attached quote (confidence %.2f)\n", v.AuthorYear, quotes[0].Confidence)
	}
	return nil
}
