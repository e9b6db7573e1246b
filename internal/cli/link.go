package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var linkCmd = &cobra.Command{
	Use:   "link <sentence-id> <claim-id>",
	Short: "Link a manuscript sentence to a claim",
	Long: `Link records that a manuscript sentence is backed by a claim.
Linking the same pair twice is a no-op apart from refreshing the
mapping timestamp.

Example:
  citewell link S_12 3f1c9a`,
	Args: cobra.ExactArgs(2),
	RunE: runLink,
}

var unlinkCmd = &cobra.Command{
	Use:   "unlink <sentence-id> <claim-id>",
	Short: "Remove a sentence-claim link",
	Args:  cobra.ExactArgs(2),
	RunE:  runUnlink,
}

var sentencesCmd = &cobra.Command{
	Use:   "sentences <claim-id>",
	Short: "List sentences linked to a claim",
	Args:  cobra.ExactArgs(1),
	RunE:  runSentences,
}

func init() {
	rootCmd.AddCommand(linkCmd, unlinkCmd, sentencesCmd)
}

func runLink(cmd *cobra.Command, args []string) error {
	ws, logger, err := openWorkspace()
	if err != nil {
		return err
	}
	defer func() {
		_ = ws.Close()
		_ = logger.Sync()
	}()

	if _, err := ws.Claims.GetClaim(args[1]); err != nil {
		return err
	}
	ws.Mapper.LinkSentenceToClaim(args[0], args[1])
	claims := ws.Mapper.GetClaimsForSentence(args[0])
	fmt.Fprintf(os.Stderr, "%s -> %d claim(s)\n", args[0], len(claims))
	return nil
}

func runUnlink(cmd *cobra.Command, args []string) error {
	ws, logger, err := openWorkspace()
	if err != nil {
		return err
	}
	defer func() {
		_ = ws.Close()
		_ = logger.Sync()
	}()

	ws.Mapper.UnlinkSentenceFromClaim(args[0], args[1])
	fmt.Fprintf(os.Stderr, "unlinked %s from %s\n", args[0], args[1])
	return nil
}

func runSentences(cmd *cobra.Command, args []string) error {
	ws, logger, err := openWorkspace()
	if err != nil {
		return err
	}
	defer func() {
		_ = ws.Close()
		_ = logger.Sync()
	}()

	sentences := ws.Mapper.GetSentencesForClaim(args[0])
	for _, s := range sentences {
		fmt.Println(s)
	}
	fmt.Fprintf(os.Stderr, "%d sentence(s)\n", len(sentences))
	return nil
}
