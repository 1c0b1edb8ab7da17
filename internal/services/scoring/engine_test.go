package scoring

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/verdict/internal/models"
)

// stubBench returns a fixed distribution for every metric.
type stubBench struct {
	mean  float64
	sigma float64
	err   error
}

func (s *stubBench) Synthesize(industry, metric string) (*models.SectorBenchmarkDistribution, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.SectorBenchmarkDistribution{
		Industry: industry,
		Metric:   metric,
		Mean:     s.mean,
		Sigma:    s.sigma,
	}, nil
}

func sectorRecord() *models.StandardizedRecord {
	record := fiveYearRecord()
	record.Profile = &models.CompanyProfile{
		Sector:   &models.TextField{Value: "Industrials", Source: models.SourceEODHD},
		Industry: &models.TextField{Value: "Machinery", Source: models.SourceEODHD},
	}
	return record
}

func TestScore_ClampedRange(t *testing.T) {
	engine := NewEngine(nil, nil, &stubBench{mean: 10, sigma: 3}, nil)

	score, err := engine.Score(context.Background(), sectorRecord())
	require.NoError(t, err)

	assert.GreaterOrEqual(t, score.Score, 0.0)
	assert.LessOrEqual(t, score.Score, 100.0)
	assert.Len(t, score.Categories, 3)
}

func TestScore_EffectiveWeightsRenormalize(t *testing.T) {
	// category with 3 metrics weighted [0.5, 0.3, 0.2]; the 0.2 metric has
	// no data, so the rest renormalize to [0.625, 0.375]
	weights := &models.ScoringWeightConfig{
		Categories: map[string]models.CategoryWeights{
			"growth": {
				MaxPoints: 100,
				Metrics: map[string]float64{
					MetricRevenueCAGR:   0.5,
					MetricNetIncomeCAGR: 0.3,
					MetricFCFCAGR:       0.2,
				},
			},
		},
	}
	engine := NewEngine(weights, nil, &stubBench{mean: 10, sigma: 3}, nil)

	record := sectorRecord()
	for _, flow := range record.CashFlow {
		flow.FreeCashFlow = nil // kills fcf_cagr_5y
	}

	score, err := engine.Score(context.Background(), record)
	require.NoError(t, err)
	require.Len(t, score.Categories, 1)

	byMetric := map[string]models.MetricScore{}
	var effectiveSum float64
	for _, ms := range score.Categories[0].Metrics {
		byMetric[ms.Metric] = ms
		effectiveSum += ms.EffectiveWeight
	}

	assert.InDelta(t, 0.625, byMetric[MetricRevenueCAGR].EffectiveWeight, 1e-9)
	assert.InDelta(t, 0.375, byMetric[MetricNetIncomeCAGR].EffectiveWeight, 1e-9)
	assert.True(t, byMetric[MetricFCFCAGR].Excluded)
	assert.Zero(t, byMetric[MetricFCFCAGR].EffectiveWeight)
	assert.InDelta(t, 1.0, effectiveSum, 1e-9, "effective weights must renormalize to the category total")
	assert.Contains(t, score.Excluded, "growth."+MetricFCFCAGR)
}

func TestScore_EffectiveWeightsSumForAnySubset(t *testing.T) {
	base := map[string]float64{
		MetricRevenueCAGR:   0.5,
		MetricNetIncomeCAGR: 0.3,
		MetricFCFCAGR:       0.2,
	}

	// every subset of missing metrics, except all-missing
	for mask := 0; mask < 7; mask++ {
		weights := &models.ScoringWeightConfig{
			Categories: map[string]models.CategoryWeights{
				"growth": {MaxPoints: 100, Metrics: base},
			},
		}
		engine := NewEngine(weights, nil, &stubBench{mean: 10, sigma: 3}, nil)

		record := sectorRecord()
		if mask&1 != 0 {
			for _, inc := range record.Income {
				inc.Revenue = nil
			}
		}
		if mask&2 != 0 {
			for _, inc := range record.Income {
				inc.NetIncome = nil
			}
		}
		if mask&4 != 0 {
			for _, flow := range record.CashFlow {
				flow.FreeCashFlow = nil
			}
		}

		score, err := engine.Score(context.Background(), record)
		require.NoError(t, err)

		var sum float64
		for _, ms := range score.Categories[0].Metrics {
			sum += ms.EffectiveWeight
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "subset mask %d", mask)
	}
}

func TestScore_AllMissingCategoryRedistributes(t *testing.T) {
	engine := NewEngine(nil, nil, &stubBench{mean: 10, sigma: 3}, nil)

	record := sectorRecord()
	// wipe growth inputs entirely: only 3 periods of history
	record.Income = record.Income[:3]
	record.CashFlow = record.CashFlow[:3]

	score, err := engine.Score(context.Background(), record)
	require.NoError(t, err)

	var growth models.CategoryScore
	for _, cat := range score.Categories {
		if cat.Category == CategoryGrowth {
			growth = cat
		}
	}
	assert.True(t, growth.Excluded)
	assert.Zero(t, growth.Points)
	assert.NotEmpty(t, score.Warnings, "rescaling must be surfaced")
	assert.LessOrEqual(t, score.Score, 100.0)
}

func TestScore_AllCategoriesMissing(t *testing.T) {
	engine := NewEngine(nil, nil, &stubBench{mean: 10, sigma: 3}, nil)

	score, err := engine.Score(context.Background(), &models.StandardizedRecord{Symbol: "EMPTY"})
	require.NoError(t, err)
	assert.Zero(t, score.Score)
}

func TestScore_PercentileRule(t *testing.T) {
	// operating margin 30 against mean 30, sigma 5: z=0 -> raw 50
	weights := &models.ScoringWeightConfig{
		Categories: map[string]models.CategoryWeights{
			"profitability": {
				MaxPoints: 100,
				Metrics:   map[string]float64{MetricOperatingMargin: 1.0},
			},
		},
	}
	engine := NewEngine(weights, nil, &stubBench{mean: 30, sigma: 5}, nil)

	score, err := engine.Score(context.Background(), sectorRecord())
	require.NoError(t, err)
	assert.InDelta(t, 50.0, score.Score, 1e-9)

	// one sigma above the mean is worth 37 extra points
	engine = NewEngine(weights, nil, &stubBench{mean: 25, sigma: 5}, nil)
	score, err = engine.Score(context.Background(), sectorRecord())
	require.NoError(t, err)
	assert.InDelta(t, 87.0, score.Score, 1e-9)
}

func TestScore_NoBenchmarkExcludesMetric(t *testing.T) {
	weights := &models.ScoringWeightConfig{
		Categories: map[string]models.CategoryWeights{
			"profitability": {
				MaxPoints: 100,
				Metrics: map[string]float64{
					MetricOperatingMargin: 0.5,
					MetricEarningsQuality: 0.5,
				},
			},
		},
	}
	engine := NewEngine(weights, nil, &stubBench{err: fmt.Errorf("no stats")}, nil)

	score, err := engine.Score(context.Background(), sectorRecord())
	require.NoError(t, err)

	// earnings quality (threshold rule) absorbs the full category
	require.Len(t, score.Categories, 1)
	cat := score.Categories[0]
	assert.False(t, cat.Excluded)
	for _, ms := range cat.Metrics {
		if ms.Metric == MetricOperatingMargin {
			assert.True(t, ms.Excluded)
			assert.Equal(t, "no_benchmark", ms.ExcludeReason)
		} else {
			assert.InDelta(t, 1.0, ms.EffectiveWeight, 1e-9)
		}
	}
}

func TestScore_OutlierTreatedAsMissing(t *testing.T) {
	weights := &models.ScoringWeightConfig{
		Categories: map[string]models.CategoryWeights{
			"profitability": {
				MaxPoints: 100,
				Metrics: map[string]float64{
					MetricROE:       0.5,
					MetricNetMargin: 0.5,
				},
			},
		},
	}
	engine := NewEngine(weights, nil, &stubBench{mean: 20, sigma: 5}, nil)

	record := sectorRecord()
	record.Balance[0].ShareholderEquity = field(0.001) // ROE explodes past the bound

	score, err := engine.Score(context.Background(), record)
	require.NoError(t, err)

	for _, ms := range score.Categories[0].Metrics {
		if ms.Metric == MetricROE {
			assert.True(t, ms.Excluded)
			assert.Contains(t, ms.ExcludeReason, "outlier")
		}
	}
}

func TestScore_LowConfidenceTreatedAsMissing(t *testing.T) {
	weights := &models.ScoringWeightConfig{
		Categories: map[string]models.CategoryWeights{
			"growth": {
				MaxPoints: 100,
				Metrics: map[string]float64{
					MetricRevenueCAGR:   0.5,
					MetricNetIncomeCAGR: 0.5,
				},
			},
		},
	}
	engine := NewEngine(weights, nil, &stubBench{mean: 10, sigma: 3}, nil)

	record := sectorRecord()
	record.Income[0].Revenue.LowConfidence = true

	score, err := engine.Score(context.Background(), record)
	require.NoError(t, err)

	for _, ms := range score.Categories[0].Metrics {
		if ms.Metric == MetricRevenueCAGR {
			assert.True(t, ms.Excluded)
			assert.Equal(t, "low_confidence", ms.ExcludeReason)
		}
	}
}

func TestScore_SectorOverrideApplies(t *testing.T) {
	engine := NewEngine(nil, nil, &stubBench{mean: 10, sigma: 3}, nil)

	record := sectorRecord()
	record.Profile.Sector.Value = "Technology"

	score, err := engine.Score(context.Background(), record)
	require.NoError(t, err)

	for _, cat := range score.Categories {
		if cat.Category == CategoryGrowth {
			assert.Equal(t, 40.0, cat.MaxPoints, "Technology override lifts growth allotment")
		}
	}
}

func TestThresholdScore_Tables(t *testing.T) {
	cases := []struct {
		metric string
		value  float64
		want   float64
	}{
		{MetricRevenueCAGR, 25, 100},
		{MetricRevenueCAGR, 9, 70},
		{MetricRevenueCAGR, -20, 10},
		{MetricEarningsQuality, 1.25, 100},
		{MetricEarningsQuality, 0.1, 10},
		{MetricSBCImpact, 0.5, 100},
		{MetricSBCImpact, 20, 10},
		{MetricShareDilution, -5, 100}, // heavy buybacks
		{MetricShareDilution, 8, 10},
		{MetricCapexIntensity, 5, 100},  // sweet band
		{MetricCapexIntensity, 12, 70},  // elevated
		{MetricCapexIntensity, 0.1, 20}, // starving the business
		{MetricCapexIntensity, 40, 20},  // burning cash
	}
	for _, tc := range cases {
		got, ok := thresholdScore(tc.metric, tc.value)
		require.True(t, ok, "%s should have a rule", tc.metric)
		assert.Equal(t, tc.want, got, "%s(%v)", tc.metric, tc.value)
	}

	_, ok := thresholdScore(MetricOperatingMargin, 10)
	assert.False(t, ok, "percentile metrics have no threshold table")
}
