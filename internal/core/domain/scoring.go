package domain

// ScoringWeights is the caller-adjustable weight vector over the five
// scoring dimensions. Callers are expected to supply normalised
// weights (summing to 1); the engine does not renormalise.
type ScoringWeights struct {
	Accessibility       float64 `json:"accessibility"`
	PaymentPotential    float64 `json:"paymentPotential"`
	MarketSize          float64 `json:"marketSize"`
	CompetitionLevel    float64 `json:"competitionLevel"`
	ImplementationSpeed float64 `json:"implementationSpeed"`
}

// DeveloperProfile selects a weight preset.
type DeveloperProfile string

// Weight presets by who is going to build the product.
const (
	ProfileSolo      DeveloperProfile = "solo"
	ProfileSmallTeam DeveloperProfile = "small-team"
	ProfileAgency    DeveloperProfile = "agency"
)

// PresetWeights returns the weight vector for a developer profile.
// Unknown profiles fall back to the solo preset, which maximises the
// accessibility weight: a one-person builder cares most about whether
// they can ship at all.
func PresetWeights(profile DeveloperProfile) ScoringWeights {
	switch profile {
	case ProfileSmallTeam:
		return ScoringWeights{
			Accessibility:       0.15,
			PaymentPotential:    0.30,
			MarketSize:          0.20,
			CompetitionLevel:    0.20,
			ImplementationSpeed: 0.15,
		}
	case ProfileAgency:
		return ScoringWeights{
			Accessibility:       0.10,
			PaymentPotential:    0.35,
			MarketSize:          0.25,
			CompetitionLevel:    0.20,
			ImplementationSpeed: 0.10,
		}
	default:
		return ScoringWeights{
			Accessibility:       0.30,
			PaymentPotential:    0.25,
			MarketSize:          0.15,
			CompetitionLevel:    0.15,
			ImplementationSpeed: 0.15,
		}
	}
}

// DimensionScores holds the five clamped [0,100] sub-scores.
type DimensionScores struct {
	Accessibility       float64 `json:"accessibility"`
	PaymentPotential    float64 `json:"paymentPotential"`
	MarketSize          float64 `json:"marketSize"`
	CompetitionLevel    float64 `json:"competitionLevel"`
	ImplementationSpeed float64 `json:"implementationSpeed"`
}

// ScoringResult is the output of scoring one idea.
type ScoringResult struct {
	// TotalScore is the final opportunity score, clamped to [0,100]
	// and rounded to the nearest integer.
	TotalScore int `json:"totalScore"`

	// Breakdown exposes the per-dimension sub-scores that fed the
	// weighted sum.
	Breakdown DimensionScores `json:"breakdown"`

	// Confidence is 0-1: how much supporting structure the idea
	// carries (citations, indicators, classification, MRR data).
	Confidence float64 `json:"confidence"`
}
