package models

// Stage names a downstream consumer with its own required-field set.
type Stage string

const (
	StageScoring   Stage = "scoring"
	StageValuation Stage = "valuation"
)

// Reliability grades how much a consumer should trust derived results.
type Reliability string

const (
	ReliabilityFull    Reliability = "full"
	ReliabilityReduced Reliability = "reduced"
	ReliabilityLow     Reliability = "low"
)

// CompletenessReport is the gap analyzer verdict for one stage.
// It is rebuilt after every fetch tier and discarded once the next fetch
// decision is made; the final one surfaces on the analysis report.
type CompletenessReport struct {
	Stage          Stage       `json:"stage"`
	Required       int         `json:"required"`
	Present        int         `json:"present"`
	Coverage       float64     `json:"coverage"` // Present / Required
	Missing        []string    `json:"missing,omitempty"`
	AnnualPeriods  int         `json:"annual_periods"`
	ShallowHistory bool        `json:"shallow_history"`
	Sufficient     bool        `json:"sufficient"`
	Reliability    Reliability `json:"reliability"`
}
