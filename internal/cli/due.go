package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newDueCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "due <deck-id>",
		Short: "List the cards due for review, most urgent first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deckID, err := parseDeckID(args[0])
			if err != nil {
				return err
			}
			limit, _ := cmd.Flags().GetInt("limit")

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			cards, err := a.deckService.DueCards(cmd.Context(), deckID, limit)
			if err != nil {
				return err
			}
			if len(cards) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing is due.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDIFFICULTY\tNEXT REVIEW\tREVIEWS\tFRONT")
			for _, c := range cards {
				next := "new"
				if c.NextReview != nil {
					next = c.NextReview.Local().Format("2006-01-02 15:04")
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", c.ID, c.Difficulty, next, c.TimesReviewed, truncate(c.Front, 48))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().Int("limit", 20, "Maximum number of cards to list (0 for all)")
	return cmd
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
