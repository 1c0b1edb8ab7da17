// Package scoring turns normalized records into composite quality scores.
package scoring

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/bobmcallan/verdict/internal/common"
	"github.com/bobmcallan/verdict/internal/models"
)

// zSpread maps a z-score onto the 0-100 scale: score = 50 + z*zSpread,
// clamped. One sigma of sector outperformance is worth 37 points.
const zSpread = 37.0

// Category names used by the default weight tree.
const (
	CategoryProfitability = "profitability"
	CategoryGrowth        = "growth"
	CategoryCapital       = "capital_allocation"
)

// percentileMetrics score against the synthesized sector curve; everything
// else uses an absolute threshold table.
var percentileMetrics = map[string]bool{
	MetricROIC:            true,
	MetricROE:             true,
	MetricOperatingMargin: true,
	MetricNetMargin:       true,
	MetricGrossMargin:     true,
}

// PercentileMetricNames lists the metrics scored against sector curves, in
// stable order.
func PercentileMetricNames() []string {
	names := make([]string, 0, len(percentileMetrics))
	for name := range percentileMetrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultWeights is the base scoring weight tree: 40/35/25 across
// profitability, growth, and capital allocation.
func DefaultWeights() *models.ScoringWeightConfig {
	return &models.ScoringWeightConfig{
		Categories: map[string]models.CategoryWeights{
			CategoryProfitability: {
				MaxPoints: 40,
				Metrics: map[string]float64{
					MetricROIC:            0.30,
					MetricROE:             0.20,
					MetricOperatingMargin: 0.20,
					MetricNetMargin:       0.15,
					MetricGrossMargin:     0.15,
				},
			},
			CategoryGrowth: {
				MaxPoints: 35,
				Metrics: map[string]float64{
					MetricRevenueCAGR:   0.35,
					MetricNetIncomeCAGR: 0.35,
					MetricFCFCAGR:       0.30,
				},
			},
			CategoryCapital: {
				MaxPoints: 25,
				Metrics: map[string]float64{
					MetricEarningsQuality: 0.25,
					MetricFCFToDebt:       0.25,
					MetricShareDilution:   0.20,
					MetricSBCImpact:       0.15,
					MetricCapexIntensity:  0.15,
				},
			},
		},
		SectorOverrides: map[string]map[string]models.CategoryWeights{
			"Technology": {
				CategoryGrowth: {
					MaxPoints: 40,
					Metrics: map[string]float64{
						MetricRevenueCAGR:   0.40,
						MetricNetIncomeCAGR: 0.30,
						MetricFCFCAGR:       0.30,
					},
				},
				CategoryProfitability: {
					MaxPoints: 35,
					Metrics: map[string]float64{
						MetricROIC:            0.30,
						MetricROE:             0.20,
						MetricOperatingMargin: 0.20,
						MetricNetMargin:       0.15,
						MetricGrossMargin:     0.15,
					},
				},
			},
			"Utilities": {
				CategoryProfitability: {
					MaxPoints: 45,
					Metrics: map[string]float64{
						MetricROIC:            0.35,
						MetricROE:             0.25,
						MetricOperatingMargin: 0.25,
						MetricNetMargin:       0.15,
					},
				},
				CategoryGrowth: {
					MaxPoints: 25,
					Metrics: map[string]float64{
						MetricRevenueCAGR:   0.40,
						MetricNetIncomeCAGR: 0.35,
						MetricFCFCAGR:       0.25,
					},
				},
				CategoryCapital: {
					MaxPoints: 30,
					Metrics: map[string]float64{
						MetricEarningsQuality: 0.30,
						MetricFCFToDebt:       0.35,
						MetricShareDilution:   0.20,
						MetricCapexIntensity:  0.15,
					},
				},
			},
		},
	}
}

// DefaultBounds are the sanity ranges for raw metric values. Values outside
// their bound are discarded as outliers and treated as missing.
func DefaultBounds() map[string]models.SanityBound {
	return map[string]models.SanityBound{
		MetricROIC:            {Min: -100, Max: 200},
		MetricROE:             {Min: -300, Max: 300},
		MetricOperatingMargin: {Min: -200, Max: 100},
		MetricNetMargin:       {Min: -300, Max: 100},
		MetricGrossMargin:     {Min: -100, Max: 100},
		MetricRevenueCAGR:     {Min: -80, Max: 300},
		MetricNetIncomeCAGR:   {Min: -90, Max: 500},
		MetricFCFCAGR:         {Min: -90, Max: 500},
		MetricEarningsQuality: {Min: -5, Max: 10},
		MetricFCFToDebt:       {Min: -10, Max: 10},
		MetricShareDilution:   {Min: -50, Max: 100},
		MetricSBCImpact:       {Min: 0, Max: 100},
		MetricCapexIntensity:  {Min: 0, Max: 100},
	}
}

// BenchmarkSource supplies synthesized distributions for percentile scoring.
type BenchmarkSource interface {
	Synthesize(industry, metric string) (*models.SectorBenchmarkDistribution, error)
}

// Engine scores records against the weight tree. Construction captures the
// immutable config; Score itself holds no shared mutable state.
type Engine struct {
	weights *models.ScoringWeightConfig
	bounds  map[string]models.SanityBound
	bench   BenchmarkSource
	logger  *common.Logger
}

// NewEngine creates a scoring engine. Nil weights or bounds select the
// defaults.
func NewEngine(weights *models.ScoringWeightConfig, bounds map[string]models.SanityBound, bench BenchmarkSource, logger *common.Logger) *Engine {
	if weights == nil {
		weights = DefaultWeights()
	}
	if bounds == nil {
		bounds = DefaultBounds()
	}
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Engine{weights: weights, bounds: bounds, bench: bench, logger: logger}
}

// Score evaluates every category, redistributes the weight of unavailable
// metrics, and blends category subtotals into a clamped 0-100 composite.
func (e *Engine) Score(ctx context.Context, record *models.StandardizedRecord) (*models.CompositeScore, error) {
	if record == nil {
		return nil, fmt.Errorf("score: nil record")
	}

	sector := record.Sector()
	metrics := ComputeMetrics(record)
	categories := e.weights.ForSector(sector)

	result := &models.CompositeScore{
		Symbol: record.Symbol,
		Sector: sector,
	}

	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Strings(names)

	var totalMax, availableMax, points float64
	for _, name := range names {
		cat := e.scoreCategory(name, categories[name], metrics, record, result)
		result.Categories = append(result.Categories, cat)
		totalMax += cat.MaxPoints
		if !cat.Excluded {
			availableMax += cat.MaxPoints
			points += cat.Points
		}
	}

	// a fully-missing category hands its allotment to the others so the
	// composite stays comparable across coverage levels
	if availableMax > 0 && availableMax < totalMax {
		points *= totalMax / availableMax
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("score rescaled: %.0f of %.0f category points had data", availableMax, totalMax))
	}

	result.Score = math.Max(0, math.Min(points, 100))

	e.logger.Debug().
		Str("symbol", record.Symbol).
		Str("sector", sector).
		Float64("score", result.Score).
		Int("excluded", len(result.Excluded)).
		Msg("scored record")
	return result, nil
}

// scoreCategory evaluates one category with adaptive weight redistribution:
// unavailable metric weight is reallocated proportionally across the
// available peers so the category can still reach its full allotment.
func (e *Engine) scoreCategory(name string, cat models.CategoryWeights, metrics MetricSet, record *models.StandardizedRecord, composite *models.CompositeScore) models.CategoryScore {
	out := models.CategoryScore{Category: name, MaxPoints: cat.MaxPoints}

	keys := make([]string, 0, len(cat.Metrics))
	for key := range cat.Metrics {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	available := make(map[string]float64)
	var availableWeight float64

	for _, key := range keys {
		ms := models.MetricScore{
			Metric:     key,
			BaseWeight: cat.Metrics[key],
			MaxPoints:  cat.MaxPoints,
		}

		raw, reason := e.rawScore(key, metrics, record)
		if reason != "" {
			ms.Excluded = true
			ms.ExcludeReason = reason
			composite.Excluded = append(composite.Excluded, name+"."+key)
		} else {
			mv := metrics[key]
			ms.RawValue = &mv.Value
			ms.RawScore = raw
			available[key] = cat.Metrics[key]
			availableWeight += cat.Metrics[key]
		}
		out.Metrics = append(out.Metrics, ms)
	}

	if availableWeight == 0 {
		out.Excluded = true
		return out
	}

	for i := range out.Metrics {
		ms := &out.Metrics[i]
		if ms.Excluded {
			continue
		}
		ms.EffectiveWeight = available[ms.Metric] / availableWeight
		ms.Points = ms.EffectiveWeight * cat.MaxPoints * ms.RawScore / 100
		out.Points += ms.Points
	}

	return out
}

// rawScore computes a metric's 0-100 raw score, or an exclusion reason.
func (e *Engine) rawScore(key string, metrics MetricSet, record *models.StandardizedRecord) (float64, string) {
	mv, ok := metrics[key]
	if !ok {
		return 0, "unavailable"
	}
	if mv.LowConfidence {
		// unconverted or inferred inputs count as missing
		return 0, "low_confidence"
	}
	if bound, ok := e.bounds[key]; ok && !bound.Contains(mv.Value) {
		return 0, fmt.Sprintf("outlier: %.2f outside [%g, %g]", mv.Value, bound.Min, bound.Max)
	}

	if percentileMetrics[key] {
		industry := record.Industry()
		if industry == "" {
			industry = record.Sector()
		}
		dist, err := e.bench.Synthesize(industry, key)
		if err != nil {
			return 0, "no_benchmark"
		}
		if dist.Sigma <= 0 {
			return 0, "no_benchmark"
		}
		z := (mv.Value - dist.Mean) / dist.Sigma
		return math.Max(0, math.Min(50+z*zSpread, 100)), ""
	}

	if score, ok := thresholdScore(key, mv.Value); ok {
		return score, ""
	}
	return 0, "no_rule"
}
