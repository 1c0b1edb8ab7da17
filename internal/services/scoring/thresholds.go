package scoring

// Threshold tables award an absolute 0-100 raw score for metrics that have
// no meaningful sector-relative distribution: growth rates, balance sheet
// quality, and capital discipline.

// thresholdStep is one descending bucket: values at or above Min score
// Score.
type thresholdStep struct {
	Min   float64
	Score float64
}

// descending tables, first matching bucket wins
var thresholdTables = map[string][]thresholdStep{
	MetricRevenueCAGR: {
		{20, 100}, {12, 85}, {8, 70}, {4, 55}, {0, 40}, {-5, 25},
	},
	MetricNetIncomeCAGR: {
		{25, 100}, {15, 85}, {10, 70}, {5, 55}, {0, 40}, {-10, 25},
	},
	MetricFCFCAGR: {
		{20, 100}, {12, 85}, {8, 70}, {4, 55}, {0, 40}, {-10, 25},
	},
	MetricEarningsQuality: {
		{1.2, 100}, {1.0, 85}, {0.8, 65}, {0.6, 45}, {0.4, 25},
	},
	MetricFCFToDebt: {
		{1.0, 100}, {0.5, 85}, {0.25, 70}, {0.1, 50}, {0.05, 30},
	},
}

// inverse tables: values at or below Max score Score
type inverseStep struct {
	Max   float64
	Score float64
}

var inverseTables = map[string][]inverseStep{
	// stock comp as % of revenue: less is better
	MetricSBCImpact: {
		{1, 100}, {3, 85}, {5, 70}, {8, 50}, {12, 30},
	},
	// annualized share count growth: buybacks reward, dilution punishes
	MetricShareDilution: {
		{-2, 100}, {0, 85}, {1, 70}, {2.5, 50}, {5, 30},
	},
}

const tableFloor = 10.0

// capex intensity scores on a U-curve: too little spend starves the
// business, too much burns cash. The sweet band sits at 3-10% of revenue.
var capexBands = []struct {
	Lo, Hi, Score float64
}{
	{3, 10, 100},
	{1, 15, 70},
	{0.5, 25, 45},
}

const capexFloor = 20.0

// thresholdScore looks a raw metric value up in its absolute table.
// The second return is false for metrics without a table.
func thresholdScore(metric string, value float64) (float64, bool) {
	if steps, ok := thresholdTables[metric]; ok {
		for _, step := range steps {
			if value >= step.Min {
				return step.Score, true
			}
		}
		return tableFloor, true
	}
	if steps, ok := inverseTables[metric]; ok {
		for _, step := range steps {
			if value <= step.Max {
				return step.Score, true
			}
		}
		return tableFloor, true
	}
	if metric == MetricCapexIntensity {
		for _, band := range capexBands {
			if value >= band.Lo && value <= band.Hi {
				return band.Score, true
			}
		}
		return capexFloor, true
	}
	return 0, false
}
