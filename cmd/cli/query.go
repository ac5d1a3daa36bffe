package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"marketintel/internal/ingest"
	"marketintel/internal/orchestrator"
)

func newQueryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query [text]",
		Short: "Run a full narrative-conflict analysis for a query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := args[0]

			a, err := loadApp()
			if err != nil {
				return err
			}

			tier1 := []ingest.Source{ingest.NewsAPISource(a.NewsAPI, query)}
			for _, feed := range a.Tier1Feeds {
				tier1 = append(tier1, ingest.FeedSource(feed))
			}
			var tier2 []ingest.Source
			for _, feed := range a.Tier2Feeds {
				tier2 = append(tier2, ingest.FeedSource(feed))
			}
			tiers := ingest.Tiers{Tier1: tier1, Tier2: tier2}

			result, err := a.Orchestrator.RunQuery(context.Background(), query, tiers)
			switch {
			case err == orchestrator.ErrNoData:
				fmt.Fprintln(os.Stderr, "no signals found for query")
				return nil
			case err == orchestrator.ErrFiltered:
				fmt.Fprintln(os.Stderr, "all signals were filtered as near-duplicates")
				return nil
			case err != nil:
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
