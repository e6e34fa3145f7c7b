package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/veridian-labs/oppscan-cli/internal/core/domain"
	"github.com/veridian-labs/oppscan-cli/internal/topics"
)

var (
	aggregateKeywords []string
	aggregateOptional bool
	aggregateMaxItems int
	aggregateTimeout  time.Duration
	aggregatePack     string
	aggregateJSON     bool
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate [topic]",
	Short: "Collect evidence for a topic from all sources",
	Long: `Runs the full evidence aggregation: every admissible source is
queried in waves, partial failures are absorbed, and the merged
evidence bundle is printed.

Pass a topic name from the topic pack, or --keywords for an ad-hoc
topic.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAggregate,
}

func init() {
	aggregateCmd.Flags().StringSliceVarP(&aggregateKeywords, "keywords", "k", nil, "ad-hoc keywords instead of a pack topic")
	aggregateCmd.Flags().BoolVar(&aggregateOptional, "optional", false, "include quota-gated providers (metered search, YouTube)")
	aggregateCmd.Flags().IntVar(&aggregateMaxItems, "max-items", 0, "cap items per source (0 = provider default)")
	aggregateCmd.Flags().DurationVar(&aggregateTimeout, "timeout", 5*time.Minute, "overall run timeout")
	aggregateCmd.Flags().StringVar(&aggregatePack, "pack", "", "path to a custom topic pack YAML")
	aggregateCmd.Flags().BoolVar(&aggregateJSON, "json", false, "output the full bundle as JSON")
	rootCmd.AddCommand(aggregateCmd)
}

func runAggregate(cmd *cobra.Command, args []string) error {
	if aggregationService == nil {
		return errors.New("aggregation service not configured")
	}

	topic, err := resolveTopic(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), aggregateTimeout)
	defer cancel()

	data, err := aggregationService.Aggregate(ctx, topic, domain.AggregateOptions{
		UseOptionalProviders: aggregateOptional,
		MaxItemsPerSource:    aggregateMaxItems,
	})
	if err != nil {
		return fmt.Errorf("aggregate %q: %w", topic.Name, err)
	}

	if aggregateJSON {
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal bundle: %w", err)
		}
		cmd.Println(string(out))
		return nil
	}

	printBundle(cmd, topic, data)
	return nil
}

func resolveTopic(args []string) (domain.Topic, error) {
	if len(aggregateKeywords) > 0 {
		return topics.AdHoc(aggregateKeywords)
	}
	if len(args) == 0 {
		return domain.Topic{}, errors.New("pass a topic name or --keywords")
	}
	pack, err := topics.Load(aggregatePack)
	if err != nil {
		return domain.Topic{}, err
	}
	return pack.Find(args[0])
}

func printBundle(cmd *cobra.Command, topic domain.Topic, data *domain.AggregatedData) {
	cmd.Printf("Topic: %s\n", topic.Name)
	cmd.Printf("Sources: %d attempted, %d items total\n\n", len(data.SourcesUsed), data.TotalItems)

	printBucket(cmd, "Pain points", data.PainPoints)
	printBucket(cmd, "Lead-user signals", data.LeadUserSignals)
	printBucket(cmd, "Competitors", data.Competitors)
	printBucket(cmd, "Trending topics", data.TrendingTopics)
}

func printBucket(cmd *cobra.Command, label string, items []domain.EvidenceItem) {
	cmd.Printf("%s (%d):\n", label, len(items))
	limit := 10
	if len(items) < limit {
		limit = len(items)
	}
	for _, it := range items[:limit] {
		cmd.Printf("  [%d] %s (%s)\n", it.Score, it.Title, it.Source)
		if it.URL != "" {
			cmd.Printf("      %s\n", it.URL)
		}
	}
	if len(items) > limit {
		cmd.Printf("  ... and %d more\n", len(items)-limit)
	}
	cmd.Println()
}
