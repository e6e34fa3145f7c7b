package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridian-labs/oppscan-cli/internal/core/domain"
)

// neutralIdea returns an idea whose text matches none of the
// dimension lexicons, so every heuristic stays at its 50 baseline.
func neutralIdea() domain.Idea {
	return domain.Idea{
		ID:      "idea-1",
		Title:   "Widget tracker",
		Problem: "People misplace widgets",
	}
}

func TestScore_Deterministic(t *testing.T) {
	svc := NewScoringService()
	idea := domain.Idea{
		ID:               "idea-x",
		Title:            "Invoice reconciliation for freelancers",
		Problem:          "Freelancers lose hours matching payments to invoices",
		JobToBeDone:      "When I receive a payment, match it automatically so I can close my books",
		Evidence:         "Multiple reddit threads describe spreadsheet workarounds",
		PotentialScore:   72,
		FrictionSeverity: domain.FrictionWorkflowGap,
		LeadUserIndicators: []domain.LeadUserIndicator{
			{Type: "spreadsheet_macro", Sophistication: 3},
		},
		EstimatedMRR: 4000,
	}
	weights := domain.PresetWeights(domain.ProfileSolo)

	first := svc.Score(idea, weights)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, svc.Score(idea, weights))
	}
}

func TestComposeTotal_FrictionMultiplier(t *testing.T) {
	idea := neutralIdea()
	idea.PotentialScore = 60
	idea.FrictionSeverity = domain.FrictionCriticalPain

	dims := domain.DimensionScores{
		Accessibility:       50,
		PaymentPotential:    50,
		MarketSize:          50,
		CompetitionLevel:    50,
		ImplementationSpeed: 50,
	}
	weights := domain.PresetWeights(domain.ProfileSolo) // sums to 1

	// blended = 0.4*60 + 0.6*50 = 54; critical pain x1.3 = 70.2
	total := composeTotal(idea, dims, weights)
	assert.InDelta(t, 70.2, total, 1e-9)

	idea.FrictionSeverity = domain.FrictionMinorBug
	assert.InDelta(t, 54*0.7, composeTotal(idea, dims, weights), 1e-9)

	idea.FrictionSeverity = domain.FrictionWorkflowGap
	assert.InDelta(t, 54.0, composeTotal(idea, dims, weights), 1e-9)

	// Unclassified behaves like the neutral multiplier.
	idea.FrictionSeverity = ""
	assert.InDelta(t, 54.0, composeTotal(idea, dims, weights), 1e-9)
}

func TestScore_MissingBaseScoreDefaultsTo50(t *testing.T) {
	idea := neutralIdea()
	dims := domain.DimensionScores{
		Accessibility: 50, PaymentPotential: 50, MarketSize: 50,
		CompetitionLevel: 50, ImplementationSpeed: 50,
	}
	// 0.4*50 + 0.6*50 = 50
	assert.InDelta(t, 50.0, composeTotal(idea, dims, domain.PresetWeights(domain.ProfileSolo)), 1e-9)
}

func TestMRRBonus_Tiers(t *testing.T) {
	assert.Equal(t, 0.0, mrrBonus(0))
	assert.Equal(t, 0.0, mrrBonus(999))
	assert.Equal(t, 5.0, mrrBonus(1000))
	assert.Equal(t, 10.0, mrrBonus(10000))
	// 15000 lands in established, not growing or scale.
	assert.Equal(t, 10.0, mrrBonus(15000))
	assert.Equal(t, 15.0, mrrBonus(50000))
	assert.Equal(t, 15.0, mrrBonus(250000))
}

func TestLeadUserBonus_SumsPerIndicator(t *testing.T) {
	indicators := []domain.LeadUserIndicator{
		{Type: "custom_script", Sophistication: 5},
		{Type: "spreadsheet_macro", Sophistication: 3},
		{Type: "manual_process", Sophistication: 1},
	}
	assert.Equal(t, 45.0, leadUserBonus(indicators))

	// Out-of-range levels contribute nothing.
	assert.Equal(t, 0.0, leadUserBonus([]domain.LeadUserIndicator{{Sophistication: 9}}))
	assert.Equal(t, 0.0, leadUserBonus(nil))
}

func TestScore_ClampsToHundred(t *testing.T) {
	svc := NewScoringService()
	idea := neutralIdea()
	idea.PotentialScore = 95
	idea.FrictionSeverity = domain.FrictionCriticalPain
	idea.RevenueVerified = true
	idea.IsImportOpportunity = true
	idea.EstimatedMRR = 80000
	idea.LeadUserIndicators = []domain.LeadUserIndicator{
		{Sophistication: 5}, {Sophistication: 5}, {Sophistication: 5},
	}

	res := svc.Score(idea, domain.PresetWeights(domain.ProfileSolo))
	assert.Equal(t, 100, res.TotalScore)
}

func TestScore_NeverFailsOnZeroValueIdea(t *testing.T) {
	svc := NewScoringService()
	res := svc.Score(domain.Idea{}, domain.ScoringWeights{})

	assert.GreaterOrEqual(t, res.TotalScore, 0)
	assert.LessOrEqual(t, res.TotalScore, 100)
	assert.Equal(t, 0.5, res.Confidence)
}

func TestConfidence_Accumulates(t *testing.T) {
	base := neutralIdea()
	assert.Equal(t, 0.5, confidence(base))

	withEvidence := base
	withEvidence.Evidence = "Dozens of forum posts describe this exact workaround"
	assert.InDelta(t, 0.6, confidence(withEvidence), 1e-9)

	full := domain.Idea{
		Evidence:           "Dozens of forum posts describe this exact workaround",
		JobToBeDone:        "When I import bank statements, categorise them so I can file taxes",
		FrictionSeverity:   domain.FrictionCriticalPain,
		LeadUserIndicators: []domain.LeadUserIndicator{{Sophistication: 4}},
		RevenueVerified:    true,
		EstimatedMRR:       2500,
	}
	// Six increments would exceed 1.0; capped.
	assert.Equal(t, 1.0, confidence(full))
}

func TestWellFormedJTBD(t *testing.T) {
	assert.True(t, wellFormedJTBD("When I onboard a client, send the contract so I can start work"))
	assert.True(t, wellFormedJTBD("when a deadline nears, remind me so that nothing slips"))
	assert.False(t, wellFormedJTBD("Track invoices automatically"))
	assert.False(t, wellFormedJTBD("When I get paid, record it")) // no outcome clause
	assert.False(t, wellFormedJTBD(""))
}

func TestScore_ImportOpportunityBonus(t *testing.T) {
	idea := neutralIdea()
	dims := domain.DimensionScores{
		Accessibility: 50, PaymentPotential: 50, MarketSize: 50,
		CompetitionLevel: 50, ImplementationSpeed: 50,
	}
	weights := domain.PresetWeights(domain.ProfileSolo)

	plain := composeTotal(idea, dims, weights)

	flagged := idea
	flagged.IsImportOpportunity = true
	assert.InDelta(t, plain+importOpportunityBonus, composeTotal(flagged, dims, weights), 1e-9)

	// The text-level fallback fires without the flag.
	textual := idea
	textual.Problem = "A tool proven in the US with no local alternative"
	assert.InDelta(t, plain+importOpportunityBonus, composeTotal(textual, dims, weights), 1e-9)
}

func TestRankIdeas_SortsAndOverwritesScores(t *testing.T) {
	svc := NewScoringService()
	weights := domain.PresetWeights(domain.ProfileSolo)

	weak := neutralIdea()
	weak.ID = "idea-weak"
	weak.PotentialScore = 20
	weak.FrictionSeverity = domain.FrictionMinorBug

	strong := neutralIdea()
	strong.ID = "idea-strong"
	strong.PotentialScore = 80
	strong.FrictionSeverity = domain.FrictionCriticalPain
	strong.RevenueVerified = true

	ranked := svc.RankIdeas([]domain.Idea{weak, strong}, weights)
	require.Len(t, ranked, 2)
	assert.Equal(t, "idea-strong", ranked[0].ID)
	assert.Greater(t, ranked[0].PotentialScore, ranked[1].PotentialScore)

	expected := svc.Score(strong, weights).TotalScore
	assert.Equal(t, expected, ranked[0].PotentialScore)

	// Input slice must not be reordered.
	assert.Equal(t, "idea-weak", weak.ID)
}
