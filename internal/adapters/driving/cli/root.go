// Package cli implements the oppscan command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/veridian-labs/oppscan-cli/internal/core/ports/driven"
	"github.com/veridian-labs/oppscan-cli/internal/core/ports/driving"
	"github.com/veridian-labs/oppscan-cli/internal/logger"
	"github.com/veridian-labs/oppscan-cli/internal/providers/serp"
)

// version is overridden at build time via -ldflags.
var version = "dev"

// Services injected by main before Execute.
var (
	aggregationService driving.AggregationService
	scoringService     driving.ScoringService
	serpClient         *serp.Client
	runStore           driven.RunStore
	configStore        driven.ConfigStore
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "oppscan",
	Short: "Scan public sources for micro-SaaS opportunity evidence",
	Long: `oppscan aggregates complaints, feature requests, and workaround
signals from public sources (forums, review sites, app stores) and
scores business-opportunity candidates against them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Dependencies carries the wired services from main.
type Dependencies struct {
	Aggregation driving.AggregationService
	Scoring     driving.ScoringService
	SerpClient  *serp.Client
	RunStore    driven.RunStore
	ConfigStore driven.ConfigStore
}

// Execute wires the dependencies and runs the command tree.
func Execute(deps Dependencies) error {
	aggregationService = deps.Aggregation
	scoringService = deps.Scoring
	serpClient = deps.SerpClient
	runStore = deps.RunStore
	configStore = deps.ConfigStore
	return rootCmd.Execute()
}
