package models

// Valuation method identifiers. Every blended fair value is attributed to
// one of these.
const (
	MethodPE         = "pe"
	MethodPB         = "pb"
	MethodPS         = "ps"
	MethodEVEBITDA   = "ev_ebitda"
	MethodPEG        = "peg"
	MethodDCF        = "dcf"
	MethodDDM        = "ddm"
	MethodGraham     = "graham"
	MethodPeterLynch = "peter_lynch"
	MethodAnalyst    = "analyst"
)

// ValuationMethods lists every method in blend order.
var ValuationMethods = []string{
	MethodPE, MethodPB, MethodPS, MethodEVEBITDA, MethodPEG,
	MethodDCF, MethodDDM, MethodGraham, MethodPeterLynch, MethodAnalyst,
}

// ValuationModelResult is one method's fair value estimate. FairValue is nil
// when the method's inputs were unavailable or out of range; such results are
// excluded from the blend and their weight redistributed.
type ValuationModelResult struct {
	Method        string   `json:"method"`
	FairValue     *float64 `json:"fair_value,omitempty"`
	BaseWeight    float64  `json:"base_weight"`
	BlendWeight   float64  `json:"blend_weight"` // renormalized over available methods
	Excluded      bool     `json:"excluded,omitempty"`
	ExcludeReason string   `json:"exclude_reason,omitempty"`
}

// CompositeValuation is the weighted blend of all available methods.
type CompositeValuation struct {
	Symbol       string                 `json:"symbol"`
	Sector       string                 `json:"sector"`
	CurrentPrice *float64               `json:"current_price,omitempty"`
	FairValue    *float64               `json:"fair_value,omitempty"` // nil when no method produced a value
	DeviationPct *float64               `json:"deviation_pct,omitempty"`
	Verdict      string                 `json:"verdict,omitempty"` // undervalued / fair / overvalued
	Methods      []ValuationModelResult `json:"methods"`
	Warnings     []string               `json:"warnings,omitempty"`
}

// Valuation verdict labels derived from deviation thresholds.
const (
	VerdictUndervalued = "undervalued"
	VerdictFair        = "fair"
	VerdictOvervalued  = "overvalued"
)
