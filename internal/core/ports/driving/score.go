package driving

import "github.com/veridian-labs/oppscan-cli/internal/core/domain"

// ScoringService ranks opportunity candidates.
type ScoringService interface {
	// Score computes the final 0-100 opportunity score and 0-1
	// confidence for one idea. Pure and deterministic: fixed inputs
	// and weights always produce identical output. Never fails;
	// missing optional fields take permissive defaults.
	Score(idea domain.Idea, weights domain.ScoringWeights) domain.ScoringResult

	// RankIdeas scores a batch, overwrites each idea's
	// PotentialScore with the computed total, and returns the ideas
	// sorted descending by score.
	RankIdeas(ideas []domain.Idea, weights domain.ScoringWeights) []domain.Idea
}
