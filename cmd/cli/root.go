// Package cli wires the cobra command tree for the marketintel binary: a
// thin layer over internal/app and internal/orchestrator.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"marketintel/internal/app"
	"marketintel/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "marketintel",
	Short: "Cross-source narrative-conflict detection for market news",
	Long: `marketintel fetches signals about a query from wire services and RSS
feeds, scores how much the sources agree or contradict each other, and
reports a winning narrative with a conflict/credibility breakdown.

Examples:
  marketintel query "oil prices"
  marketintel crypto BTC`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: environment + .env)")
	rootCmd.AddCommand(newQueryCmd())
	rootCmd.AddCommand(newCryptoCmd())
}

func loadApp() (*app.App, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return app.New(cfg)
}
