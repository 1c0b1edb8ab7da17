package models

// CategoryWeights defines one scoring category: its share of the composite
// and the relative weight of each metric inside it. Metric weights are
// fractions summing to 1.0 within the category.
type CategoryWeights struct {
	MaxPoints float64            `json:"max_points" toml:"max_points"`
	Metrics   map[string]float64 `json:"metrics" toml:"metrics"`
}

// ScoringWeightConfig is the full weight tree: base category weights plus
// per-sector overrides that replace a category wholesale. Loaded once and
// never mutated at runtime.
type ScoringWeightConfig struct {
	Categories      map[string]CategoryWeights            `json:"categories" toml:"categories"`
	SectorOverrides map[string]map[string]CategoryWeights `json:"sector_overrides" toml:"sector_overrides"`
}

// ForSector returns the effective category weights for a sector, applying
// overrides on top of the base table. The returned maps are fresh copies.
func (c *ScoringWeightConfig) ForSector(sector string) map[string]CategoryWeights {
	out := make(map[string]CategoryWeights, len(c.Categories))
	for name, cat := range c.Categories {
		out[name] = cat.clone()
	}
	if overrides, ok := c.SectorOverrides[sector]; ok {
		for name, cat := range overrides {
			out[name] = cat.clone()
		}
	}
	return out
}

func (c CategoryWeights) clone() CategoryWeights {
	metrics := make(map[string]float64, len(c.Metrics))
	for k, v := range c.Metrics {
		metrics[k] = v
	}
	return CategoryWeights{MaxPoints: c.MaxPoints, Metrics: metrics}
}

// SanityBound is the accepted range for a metric's raw value; values outside
// it are discarded as outliers and treated as missing.
type SanityBound struct {
	Min float64 `json:"min" toml:"min"`
	Max float64 `json:"max" toml:"max"`
}

// Contains reports whether v falls inside the bound.
func (b SanityBound) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// MetricScore is the scored result for one metric.
type MetricScore struct {
	Metric          string   `json:"metric"`
	RawValue        *float64 `json:"raw_value,omitempty"`
	RawScore        float64  `json:"raw_score"` // 0-100 before weighting
	Percentile      int      `json:"percentile,omitempty"`
	BaseWeight      float64  `json:"base_weight"`
	EffectiveWeight float64  `json:"effective_weight"` // after redistribution
	Points          float64  `json:"points"`
	MaxPoints       float64  `json:"max_points"`
	Rule            string   `json:"rule"` // "percentile" or "threshold"
	Excluded        bool     `json:"excluded,omitempty"`
	ExcludeReason   string   `json:"exclude_reason,omitempty"`
}

// CategoryScore is one category subtotal with its metric breakdown.
type CategoryScore struct {
	Category  string        `json:"category"`
	Points    float64       `json:"points"`
	MaxPoints float64       `json:"max_points"`
	Metrics   []MetricScore `json:"metrics"`
	Excluded  bool          `json:"excluded,omitempty"` // every metric unavailable
}

// CompositeScore is the final 0-100 verdict with full explainability.
type CompositeScore struct {
	Symbol     string          `json:"symbol"`
	Sector     string          `json:"sector"`
	Score      float64         `json:"score"` // clamped to [0, 100]
	Categories []CategoryScore `json:"categories"`
	Excluded   []string        `json:"excluded,omitempty"` // metrics dropped, with category prefix
	Warnings   []string        `json:"warnings,omitempty"`
}
