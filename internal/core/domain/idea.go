package domain

// FrictionSeverity classifies how painful a described problem is.
type FrictionSeverity string

// Friction severity levels, mildest first.
const (
	FrictionMinorBug     FrictionSeverity = "minor_bug"
	FrictionWorkflowGap  FrictionSeverity = "workflow_gap"
	FrictionCriticalPain FrictionSeverity = "critical_pain"
)

// Valid reports whether s is one of the known severity levels.
func (s FrictionSeverity) Valid() bool {
	switch s {
	case FrictionMinorBug, FrictionWorkflowGap, FrictionCriticalPain:
		return true
	}
	return false
}

// LeadUserIndicator records evidence that a user built their own
// workaround for an unmet need. Sophistication runs 1 (manual
// process) to 5 (custom scripts); higher levels are stronger
// predictors of product-market demand.
type LeadUserIndicator struct {
	Type           string `json:"type"`
	Sophistication int    `json:"sophistication"`
}

// Idea is one business-opportunity candidate synthesised by the
// external language model from aggregated evidence. The scoring
// engine overwrites PotentialScore; every other field is treated as
// immutable once the idea enters the core.
type Idea struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Problem string `json:"problem"`

	// JobToBeDone is the "jobs to be done" statement. A well-formed
	// statement contains both a motivation clause and an outcome
	// clause ("When I ..., so I can ...").
	JobToBeDone string `json:"jobToBeDone"`

	// Vertical is the business vertical tag (opaque to the core).
	Vertical string `json:"vertical"`

	// Evidence cites the aggregated signals the model drew from.
	Evidence string `json:"evidence"`

	// PotentialScore is the model-supplied base score (0-100). The
	// scoring engine replaces it with the final computed score.
	PotentialScore int `json:"potentialScore"`

	// TechnicalApproach is the model's suggested build approach.
	TechnicalApproach string `json:"technicalApproach,omitempty"`

	// FrictionSeverity is optional; empty means unclassified.
	FrictionSeverity FrictionSeverity `json:"frictionSeverity,omitempty"`

	LeadUserIndicators []LeadUserIndicator `json:"leadUserIndicators,omitempty"`

	IsImportOpportunity bool `json:"isImportOpportunity,omitempty"`

	// RevenueVerified means a comparable product with confirmed
	// revenue was found in the evidence.
	RevenueVerified bool `json:"revenueVerified,omitempty"`

	// EstimatedMRR is the estimated monthly recurring revenue of
	// comparable products, in USD. Zero means unknown.
	EstimatedMRR float64 `json:"estimatedMRR,omitempty"`
}
