package models

// Breakpoint is one synthesized percentile of a sector distribution.
type Breakpoint struct {
	Percentile int     `json:"percentile"` // 10, 25, 50, 75, 90
	Value      float64 `json:"value"`
}

// SectorBenchmarkDistribution is a reconstructed percentile curve for one
// (industry, metric) pair, derived from a mean and a coefficient of
// variation. Immutable once built; cached per industry for the run.
type SectorBenchmarkDistribution struct {
	Industry string       `json:"industry"`
	Metric   string       `json:"metric"`
	Mean     float64      `json:"mean"`
	CV       float64      `json:"cv"`
	Damping  float64      `json:"damping"`
	Sigma    float64      `json:"sigma"` // mean * cv * damping
	Curve    []Breakpoint `json:"curve"` // ascending percentiles
}

// ValueAt returns the breakpoint value for a percentile, and whether the
// percentile exists on the curve.
func (d *SectorBenchmarkDistribution) ValueAt(percentile int) (float64, bool) {
	for _, bp := range d.Curve {
		if bp.Percentile == percentile {
			return bp.Value, true
		}
	}
	return 0, false
}

// ValuationMultiples carries industry-average pricing multiples used by the
// multiple-based valuation methods.
type ValuationMultiples struct {
	PECurrent     float64 `json:"pe_current,omitempty"`
	PEForward     float64 `json:"pe_forward,omitempty"`
	PB            float64 `json:"pb,omitempty"`
	PS            float64 `json:"ps,omitempty"`
	EVEBITDA      float64 `json:"ev_ebitda,omitempty"`
	DividendYield float64 `json:"dividend_yield,omitempty"`
}

// IndustryStats is the raw per-sector input to the benchmark synthesizer:
// metric means, one shared dispersion estimate, and pricing multiples.
type IndustryStats struct {
	Sector    string             `json:"sector"`
	Means     map[string]float64 `json:"means"` // metric -> industry mean
	CV        float64            `json:"cv"`    // coefficient of variation of operating income
	Beta      float64            `json:"beta"`
	Multiples ValuationMultiples `json:"multiples"`
}
