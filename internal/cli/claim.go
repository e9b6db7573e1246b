package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/avetisyan-lab/citewell/internal/model"
)

var (
	claimCategory string
	claimSections []string
	claimJSON     bool
)

var claimCmd = &cobra.Command{
	Use:   "claim",
	Short: "Manage claims in the workspace",
}

var claimAddCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Add a new claim",
	Long: `Add creates a claim with the given text and prints its ID.

Example:
  citewell claim add "Batch correction improves downstream prediction" --category result`,
	Args: cobra.ExactArgs(1),
	RunE: runClaimAdd,
}

var claimListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all claims",
	RunE:  runClaimList,
}

var claimShowCmd = &cobra.Command{
	Use:   "show <claim-id>",
	Short: "Show a claim with its quotes",
	Args:  cobra.ExactArgs(1),
	RunE:  runClaimShow,
}

var claimDeleteCmd = &cobra.Command{
	Use:   "delete <claim-id>",
	Short: "Delete a claim and remove it from all sentence mappings",
	Args:  cobra.ExactArgs(1),
	RunE:  runClaimDelete,
}

func init() {
	rootCmd.AddCommand(claimCmd)
	claimCmd.AddCommand(claimAddCmd, claimListCmd, claimShowCmd, claimDeleteCmd)

	claimAddCmd.Flags().StringVar(&claimCategory, "category", string(model.CategoryResult), "claim category (method|result|background|contrast)")
	claimAddCmd.Flags().StringArrayVar(&claimSections, "section", nil, "manuscript section the claim belongs to (repeatable)")
	claimListCmd.Flags().BoolVar(&claimJSON, "json", false, "print claims as JSON")
	claimShowCmd.Flags().BoolVar(&claimJSON, "json", false, "print claim as JSON")
}

func runClaimAdd(cmd *cobra.Command, args []string) error {
	ws, logger, err := openWorkspace()
	if err != nil {
		return err
	}
	defer func() {
		_ = ws.Close()
		_ = logger.Sync()
	}()

	claim, err := ws.Claims.CreateClaim(args[0], model.ClaimCategory(claimCategory))
	if err != nil {
		return err
	}
	if len(claimSections) > 0 {
		claim, err = ws.Claims.UpdateClaim(claim.ID, func(c *model.Claim) error {
			c.Sections = claimSections
			return nil
		})
		if err != nil {
			return err
		}
	}
	fmt.Println(claim.ID)
	return nil
}

func runClaimList(cmd *cobra.Command, args []string) error {
	ws, logger, err := openWorkspace()
	if err != nil {
		return err
	}
	defer func() {
		_ = ws.Close()
		_ = logger.Sync()
	}()

	claims := ws.Claims.ListClaims()
	if claimJSON {
		return printJSON(claims, "")
	}
	for _, c := range claims {
		mark := " "
		if c.Verified {
			mark = "*"
		}
		fmt.Printf("%s %s [%s] %s\n", mark, c.ID, c.Category, c.Text)
	}
	fmt.Fprintf(os.Stderr, "%d claim(s)\n", len(claims))
	return nil
}

func runClaimShow(cmd *cobra.Command, args []string) error {
	ws, logger, err := openWorkspace()
	if err != nil {
		return err
	}
	defer func() {
		_ = ws.Close()
		_ = logger.Sync()
	}()

	claim, err := ws.Claims.GetClaim(args[0])
	if err != nil {
		return err
	}
	if claimJSON {
		return printJSON(claim, "")
	}

	fmt.Printf("ID:       %s\n", claim.ID)
	fmt.Printf("Category: %s\n", claim.Category)
	fmt.Printf("Verified: %t\n", claim.Verified)
	fmt.Printf("Text:     %s\n", claim.Text)
	for _, q := range claim.AllQuotes() {
		loc := ""
		if q.Metadata != nil {
			loc = fmt.Sprintf(" (%s:%d-%d)", q.Metadata.SourceFile, q.Metadata.StartLine, q.Metadata.EndLine)
		}
		fmt.Printf("  quote [%s conf=%.2f verified=%t]%s\n    %s\n", q.Source, q.Confidence, q.Verified, loc, q.Text)
	}
	return nil
}

func runClaimDelete(cmd *cobra.Command, args []string) error {
	ws, logger, err := openWorkspace()
	if err != nil {
		return err
	}
	defer func() {
		_ = ws.Close()
		_ = logger.Sync()
	}()

	if err := ws.DeleteClaim(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "deleted %s\n", args[0])
	return nil
}
