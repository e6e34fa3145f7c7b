package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/veridian-labs/oppscan-cli/internal/adapters/driven/config/file"
	"github.com/veridian-labs/oppscan-cli/internal/adapters/driven/fetch"
	"github.com/veridian-labs/oppscan-cli/internal/adapters/driven/storage/sqlite"
	"github.com/veridian-labs/oppscan-cli/internal/adapters/driving/cli"
	"github.com/veridian-labs/oppscan-cli/internal/core/services"
	"github.com/veridian-labs/oppscan-cli/internal/logger"
	"github.com/veridian-labs/oppscan-cli/internal/providers"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Optional .env for local development; absence is not an error.
	_ = godotenv.Load()

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}

	store, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close database: %v", err)
		}
	}()

	fetcher := fetch.New()
	feeds, serpClient := providers.BuildFeeds(configStore, fetcher, store.QuotaStore())

	aggregation := services.NewAggregationService(feeds, providers.QuickSearchProvider(), store.RunStore())
	scoring := services.NewScoringService()

	return cli.Execute(cli.Dependencies{
		Aggregation: aggregation,
		Scoring:     scoring,
		SerpClient:  serpClient,
		RunStore:    store.RunStore(),
		ConfigStore: configStore,
	})
}
