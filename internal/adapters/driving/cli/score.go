package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/veridian-labs/oppscan-cli/internal/core/domain"
	"github.com/veridian-labs/oppscan-cli/internal/core/ports/driven"
)

var (
	scoreProfile string
	scoreJSON    bool
)

var scoreCmd = &cobra.Command{
	Use:   "score [ideas.json]",
	Short: "Score and rank opportunity candidates",
	Long: `Reads a JSON array of idea candidates, computes each one's
opportunity score with the selected weight preset, and prints the
ranked list.

Profiles: solo (default), small-team, agency.`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().StringVarP(&scoreProfile, "profile", "p", string(domain.ProfileSolo), "developer profile weight preset")
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "output ranked ideas as JSON")
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	if scoringService == nil {
		return errors.New("scoring service not configured")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read ideas: %w", err)
	}

	var ideas []domain.Idea
	if err := json.Unmarshal(data, &ideas); err != nil {
		return fmt.Errorf("parse ideas: %w", err)
	}
	if len(ideas) == 0 {
		cmd.Println("No ideas to score.")
		return nil
	}

	weights := resolveWeights(scoreProfile)
	ranked := scoringService.RankIdeas(ideas, weights)

	if scoreJSON {
		out, err := json.MarshalIndent(ranked, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal ideas: %w", err)
		}
		cmd.Println(string(out))
		return nil
	}

	for i, idea := range ranked {
		result := scoringService.Score(idea, weights)
		cmd.Printf("  [%d] %s (score %d, confidence %.2f)\n", i+1, idea.Title, idea.PotentialScore, result.Confidence)
		if idea.Problem != "" {
			cmd.Printf("      %s\n", idea.Problem)
		}
	}
	return nil
}

// resolveWeights starts from the profile preset and applies any
// per-dimension overrides present in configuration.
func resolveWeights(profile string) domain.ScoringWeights {
	weights := domain.PresetWeights(domain.DeveloperProfile(profile))
	if configStore == nil {
		return weights
	}

	override := func(key string, dst *float64) {
		if _, ok := configStore.Get(key); ok {
			*dst = configStore.GetFloat(key)
		}
	}
	override(driven.KeyWeightAccessibility, &weights.Accessibility)
	override(driven.KeyWeightPaymentPotential, &weights.PaymentPotential)
	override(driven.KeyWeightMarketSize, &weights.MarketSize)
	override(driven.KeyWeightCompetitionLevel, &weights.CompetitionLevel)
	override(driven.KeyWeightImplementationSpeed, &weights.ImplementationSpeed)
	return weights
}
