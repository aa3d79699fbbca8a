package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <deck-id>",
		Short: "Show review statistics for a deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deckID, err := parseDeckID(args[0])
			if err != nil {
				return err
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			deck, err := a.deckService.GetDeck(ctx, deckID)
			if err != nil {
				return err
			}
			stats, err := a.deckService.DeckStats(ctx, deckID)
			if err != nil {
				return err
			}
			report, err := a.deckService.Performance(ctx, deckID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Deck:           %s (#%d)\n", deck.Name, deck.ID)
			fmt.Fprintf(out, "Total cards:    %d\n", stats.TotalCards)
			fmt.Fprintf(out, "Due now:        %d\n", stats.DueCards)
			fmt.Fprintf(out, "New:            %d\n", stats.NewCards)
			fmt.Fprintf(out, "Overdue:        %d\n", stats.OverdueCards)
			fmt.Fprintf(out, "Estimated time: %d min\n", stats.EstimatedTimeMinutes)
			fmt.Fprintf(out, "Mastered:       %d\n", report.Summary.CardsMastered)
			fmt.Fprintf(out, "Struggling:     %d\n", report.Summary.CardsStruggling)
			fmt.Fprintf(out, "Accuracy:       %.1f%%\n", report.Summary.OverallAccuracy)
			return nil
		},
	}
}

func parseDeckID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid deck id %q", s)
	}
	return id, nil
}
