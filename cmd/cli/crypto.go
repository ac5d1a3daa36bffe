package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"marketintel/internal/ingest"
)

func newCryptoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crypto [asset]",
		Short: "Run the fast crypto-feed variant for a single asset (e.g. BTC)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asset := args[0]

			a, err := loadApp()
			if err != nil {
				return err
			}

			var sources []ingest.Source
			for _, feed := range a.CryptoFeeds {
				sources = append(sources, ingest.CryptoSource(feed, asset))
			}
			tiers := ingest.Tiers{Tier1: sources}

			result, err := a.Orchestrator.RunCryptoQuery(context.Background(), asset, tiers)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}
