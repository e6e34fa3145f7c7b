package services

import (
	"math"
	"sort"
	"strings"

	"github.com/veridian-labs/oppscan-cli/internal/core/domain"
	"github.com/veridian-labs/oppscan-cli/internal/core/ports/driving"
)

// Ensure ScoringService implements the interface.
var _ driving.ScoringService = (*ScoringService)(nil)

const (
	// defaultBaseScore stands in when the model supplied no
	// potential score of its own.
	defaultBaseScore = 50.0

	// Blend ratio between the model's base score and the computed
	// weighted dimension sum.
	baseBlendWeight      = 0.4
	dimensionBlendWeight = 0.6

	importOpportunityBonus = 10.0
	revenueVerifiedBonus   = 10.0
)

// Friction-severity multipliers. Critical pain amplifies the score,
// minor bugs dampen it, workflow gaps are neutral.
var frictionMultipliers = map[domain.FrictionSeverity]float64{
	domain.FrictionCriticalPain: 1.3,
	domain.FrictionWorkflowGap:  1.0,
	domain.FrictionMinorBug:     0.7,
}

// sophisticationBonuses maps a lead-user sophistication level (1-5)
// to its flat bonus. Custom scripts are the strongest demand signal,
// manual processes the weakest.
var sophisticationBonuses = map[int]float64{
	5: 25, 4: 20, 3: 15, 2: 10, 1: 5,
}

// MRR tiers, ascending and non-overlapping. An idea lands in the
// highest tier whose floor it clears.
var mrrTiers = []struct {
	floor float64
	bonus float64
}{
	{50000, 15}, // scale
	{10000, 10}, // established
	{1000, 5},   // growing
}

// Keyword lexicons driving the five dimension heuristics. Matching
// is case-insensitive substring search over the idea's combined text
// fields. Every dimension starts at a neutral 50 and moves by a
// fixed step per matched term.
var (
	soloBuildableTerms = []string{
		"web app", "saas", "dashboard", "browser extension", "api",
		"crud", "form", "chrome extension", "plugin", "template",
	}
	heavyBuildTerms = []string{
		"machine learning", " ml ", "hardware", "iot", "embedded",
		"robotics", "computer vision", "mobile app",
	}
	paymentTerms = []string{
		"b2b", "business", "invoice", "billing", "accounting",
		"compliance", "payroll", "losing money", "expensive",
		"paying for", "revenue",
	}
	nicheTerms = []string{
		"niche", "freelancer", "independent", "specialized", "local",
		"small business", "solo", "vertical",
	}
	broadMarketTerms = []string{
		"enterprise", "global", "all industries", "everyone",
		"mass market", "consumers",
	}
	crowdedTerms = []string{
		"competitor", "alternative to", "existing tools", "crowded",
		"saturated", "similar to", "many options",
	}
	fastBuildTerms = []string{
		"no-code", "template", "crud", "simple", "mvp", "spreadsheet",
		"form", "checklist",
	}
	slowBuildTerms = []string{
		"real-time", "machine learning", "blockchain", "video",
		"distributed", "integration with", "marketplace",
	}

	// importSignalTerms is a text-level fallback for ideas whose
	// import-opportunity flag was never set upstream. The adapters
	// run their own independent market-term heuristic; the two
	// signals are deliberately not reconciled.
	importSignalTerms = []string{
		"proven in the us", "successful abroad", "no local alternative",
		"not available in spanish", "only in english",
	}
)

// ScoringService computes opportunity scores. It is stateless: both
// operations are pure functions of their arguments.
type ScoringService struct{}

// NewScoringService creates the scoring engine.
func NewScoringService() *ScoringService {
	return &ScoringService{}
}

// Score computes the final 0-100 score and 0-1 confidence for one
// idea. Deterministic: no I/O, no randomness, no clock reads.
func (s *ScoringService) Score(idea domain.Idea, weights domain.ScoringWeights) domain.ScoringResult {
	text := ideaText(idea)

	dims := domain.DimensionScores{
		Accessibility:       scoreAccessibility(text),
		PaymentPotential:    scorePaymentPotential(text, idea),
		MarketSize:          scoreMarketSize(text),
		CompetitionLevel:    scoreCompetitionLevel(text, idea),
		ImplementationSpeed: scoreImplementationSpeed(text),
	}

	return domain.ScoringResult{
		TotalScore: int(math.Round(clamp(composeTotal(idea, dims, weights)))),
		Breakdown:  dims,
		Confidence: confidence(idea),
	}
}

// composeTotal runs the blend, multiplier, and bonus phases over
// already-computed dimension scores.
func composeTotal(idea domain.Idea, dims domain.DimensionScores, weights domain.ScoringWeights) float64 {
	weighted := dims.Accessibility*weights.Accessibility +
		dims.PaymentPotential*weights.PaymentPotential +
		dims.MarketSize*weights.MarketSize +
		dims.CompetitionLevel*weights.CompetitionLevel +
		dims.ImplementationSpeed*weights.ImplementationSpeed

	base := float64(idea.PotentialScore)
	if base <= 0 {
		base = defaultBaseScore
	}

	blended := base*baseBlendWeight + weighted*dimensionBlendWeight

	multiplier, ok := frictionMultipliers[idea.FrictionSeverity]
	if !ok {
		multiplier = 1.0
	}
	total := blended * multiplier

	total += leadUserBonus(idea.LeadUserIndicators)
	if idea.IsImportOpportunity || matchesAny(ideaText(idea), importSignalTerms) {
		total += importOpportunityBonus
	}
	if idea.RevenueVerified {
		total += revenueVerifiedBonus
	}
	total += mrrBonus(idea.EstimatedMRR)

	return total
}

// RankIdeas scores each idea, overwrites its PotentialScore with the
// computed total, and returns the batch sorted descending by score
// with ID as a deterministic tiebreak.
func (s *ScoringService) RankIdeas(ideas []domain.Idea, weights domain.ScoringWeights) []domain.Idea {
	ranked := make([]domain.Idea, len(ideas))
	copy(ranked, ideas)
	for i := range ranked {
		ranked[i].PotentialScore = s.Score(ranked[i], weights).TotalScore
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].PotentialScore != ranked[j].PotentialScore {
			return ranked[i].PotentialScore > ranked[j].PotentialScore
		}
		return ranked[i].ID < ranked[j].ID
	})
	return ranked
}

// ideaText joins every free-text field into one lowercase haystack
// for the keyword heuristics.
func ideaText(idea domain.Idea) string {
	return strings.ToLower(strings.Join([]string{
		idea.Title,
		idea.Problem,
		idea.JobToBeDone,
		idea.Vertical,
		idea.Evidence,
		idea.TechnicalApproach,
	}, " "))
}

// scoreAccessibility asks: can one person build this? Common web
// stacks score up, ML/hardware territory scores down.
func scoreAccessibility(text string) float64 {
	score := 50.0
	score += 10 * float64(countMatches(text, soloBuildableTerms))
	score -= 15 * float64(countMatches(text, heavyBuildTerms))
	return clamp(score)
}

// scorePaymentPotential rewards B2B language and financial-pain
// vocabulary, plus a small bonus per lead-user indicator: someone
// who built a workaround has already demonstrated willingness to
// invest in a solution.
func scorePaymentPotential(text string, idea domain.Idea) float64 {
	score := 50.0
	score += 8 * float64(countMatches(text, paymentTerms))
	bonus := 4.0 * float64(len(idea.LeadUserIndicators))
	if bonus > 20 {
		bonus = 20
	}
	score += bonus
	return clamp(score)
}

// scoreMarketSize rewards niche-market language and penalises broad
// markets. Broad is worse for this product class: a solo builder
// cannot outspend incumbents chasing "everyone".
func scoreMarketSize(text string) float64 {
	score := 50.0
	score += 10 * float64(countMatches(text, nicheTerms))
	score -= 12 * float64(countMatches(text, broadMarketTerms))
	return clamp(score)
}

// scoreCompetitionLevel: higher means less crowded. Lead-user
// workarounds and critical pain imply the market is underserved.
func scoreCompetitionLevel(text string, idea domain.Idea) float64 {
	score := 50.0
	score += 6 * float64(len(idea.LeadUserIndicators))
	if idea.FrictionSeverity == domain.FrictionCriticalPain {
		score += 15
	}
	score -= 10 * float64(countMatches(text, crowdedTerms))
	return clamp(score)
}

// scoreImplementationSpeed rewards rapid-development stacks and
// penalises complexity markers.
func scoreImplementationSpeed(text string) float64 {
	score := 50.0
	score += 8 * float64(countMatches(text, fastBuildTerms))
	score -= 12 * float64(countMatches(text, slowBuildTerms))
	return clamp(score)
}

// leadUserBonus sums the per-indicator sophistication bonuses.
// Unknown levels contribute nothing.
func leadUserBonus(indicators []domain.LeadUserIndicator) float64 {
	var total float64
	for _, ind := range indicators {
		total += sophisticationBonuses[ind.Sophistication]
	}
	return total
}

// mrrBonus returns the flat bonus for the highest tier the estimate
// clears. Zero or unknown MRR earns nothing.
func mrrBonus(mrr float64) float64 {
	for _, tier := range mrrTiers {
		if mrr >= tier.floor {
			return tier.bonus
		}
	}
	return 0
}

// confidence measures how much supporting structure the idea
// carries. Each signal adds a capped increment to the 0.5 base.
func confidence(idea domain.Idea) float64 {
	c := 0.5
	if len(strings.TrimSpace(idea.Evidence)) >= 20 {
		c += 0.1
	}
	if len(idea.LeadUserIndicators) > 0 {
		c += 0.1
	}
	if idea.FrictionSeverity.Valid() {
		c += 0.1
	}
	if wellFormedJTBD(idea.JobToBeDone) {
		c += 0.1
	}
	if idea.RevenueVerified {
		c += 0.1
	}
	if idea.EstimatedMRR > 0 {
		c += 0.1
	}
	if c > 1.0 {
		c = 1.0
	}
	return c
}

// wellFormedJTBD checks for both clauses of a jobs-to-be-done
// statement: a motivation clause ("when I ...") and an outcome
// clause ("so I can ..." / "so that ...").
func wellFormedJTBD(jtbd string) bool {
	lower := strings.ToLower(jtbd)
	motivation := strings.Contains(lower, "when i") || strings.Contains(lower, "when a")
	outcome := strings.Contains(lower, "so i can") || strings.Contains(lower, "so that") ||
		strings.Contains(lower, "so i ")
	return motivation && outcome
}

func matchesAny(text string, terms []string) bool {
	return countMatches(text, terms) > 0
}

func countMatches(text string, terms []string) int {
	n := 0
	for _, t := range terms {
		if strings.Contains(text, t) {
			n++
		}
	}
	return n
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
