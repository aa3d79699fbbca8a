package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/vytor/flashdeck/internal/models"
)

func newImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json|->",
		Short: "Import a deck from an exported JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			export, err := readExport(cmd, args[0])
			if err != nil {
				return err
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			deck, err := a.deckService.Import(cmd.Context(), export)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported deck %q as #%d with %d cards\n", deck.Name, deck.ID, len(export.Cards))
			return nil
		},
	}
}

func readExport(cmd *cobra.Command, path string) (models.DeckExport, error) {
	var export models.DeckExport

	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return export, err
		}
		defer f.Close()
		r = f
	}

	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return export, fmt.Errorf("decode %s: %w", path, err)
	}
	return export, nil
}

func newExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <deck-id>",
		Short: "Write a deck and its cards as one JSON document",
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

			export, err := a.deckService.Export(cmd.Context(), deckID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if path, _ := cmd.Flags().GetString("output"); path != "" {
				f, err := os.Create(path)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(export)
		},
	}
	cmd.Flags().StringP("output", "o", "", "Write to a file instead of stdout")
	return cmd
}
