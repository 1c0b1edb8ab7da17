package valuation

import (
	"math"

	"github.com/bobmcallan/verdict/internal/models"
)

// Capital market assumptions shared by the intrinsic-value methods.
const (
	riskFreeRate   = 0.04
	marketReturn   = 0.10
	terminalGrowth = 0.03
	projectionYrs  = 5

	// growth assumptions are capped before compounding 5 years out
	maxProjectedGrowth = 0.25

	// PEG ratios outside this band are treated as data errors
	pegFloor = 0.2
	pegCap   = 5.0
)

// A method computes one fair value estimate per share. Returning nil means
// the method is structurally inapplicable for this record.
type method func(in *inputs, stats *models.IndustryStats) *float64

var methodTable = map[string]method{
	models.MethodPE:         fairValuePE,
	models.MethodPB:         fairValuePB,
	models.MethodPS:         fairValuePS,
	models.MethodEVEBITDA:   fairValueEVEBITDA,
	models.MethodPEG:        fairValuePEG,
	models.MethodDCF:        fairValueDCF,
	models.MethodDDM:        fairValueDDM,
	models.MethodGraham:     fairValueGraham,
	models.MethodPeterLynch: fairValuePeterLynch,
	models.MethodAnalyst:    fairValueAnalyst,
}

func fairValuePE(in *inputs, stats *models.IndustryStats) *float64 {
	if in.eps == nil || *in.eps <= 0 || stats == nil || stats.Multiples.PECurrent <= 0 {
		return nil
	}
	return ptr(*in.eps * stats.Multiples.PECurrent)
}

func fairValuePB(in *inputs, stats *models.IndustryStats) *float64 {
	if in.bvps == nil || *in.bvps <= 0 || stats == nil || stats.Multiples.PB <= 0 {
		return nil
	}
	return ptr(*in.bvps * stats.Multiples.PB)
}

func fairValuePS(in *inputs, stats *models.IndustryStats) *float64 {
	if in.revenuePerShare == nil || *in.revenuePerShare <= 0 || stats == nil || stats.Multiples.PS <= 0 {
		return nil
	}
	return ptr(*in.revenuePerShare * stats.Multiples.PS)
}

// fairValueEVEBITDA prices the enterprise at the industry multiple, then
// backs out equity value per share.
func fairValueEVEBITDA(in *inputs, stats *models.IndustryStats) *float64 {
	if in.ebitda == nil || *in.ebitda <= 0 || in.shares <= 0 ||
		stats == nil || stats.Multiples.EVEBITDA <= 0 {
		return nil
	}
	ev := *in.ebitda * stats.Multiples.EVEBITDA
	debt, cash := 0.0, 0.0
	if in.debt != nil {
		debt = *in.debt
	}
	if in.cash != nil {
		cash = *in.cash
	}
	equity := ev - debt + cash
	if equity <= 0 {
		return nil
	}
	return ptr(equity / in.shares)
}

// fairValuePEG treats PEG = 1 as fairly priced: fair value is the current
// price scaled down by the observed PEG.
func fairValuePEG(in *inputs, stats *models.IndustryStats) *float64 {
	if in.pegRatio == nil || in.price == nil || *in.price <= 0 {
		return nil
	}
	peg := *in.pegRatio
	if peg < pegFloor || peg > pegCap {
		return nil
	}
	return ptr(*in.price / peg)
}

// fairValueDCF projects free cash flow per share forward and discounts at
// the CAPM rate with a Gordon terminal value.
func fairValueDCF(in *inputs, stats *models.IndustryStats) *float64 {
	if in.fcfPerShare == nil || *in.fcfPerShare <= 0 {
		return nil
	}

	growth := terminalGrowth
	if in.fcfGrowth != nil {
		growth = math.Min(*in.fcfGrowth, maxProjectedGrowth)
	} else if in.earningsGrowth != nil {
		growth = math.Min(*in.earningsGrowth, maxProjectedGrowth)
	}
	if growth < 0 {
		growth = 0
	}

	r := discountRate(in, stats)
	if r <= terminalGrowth {
		return nil
	}

	fcf := *in.fcfPerShare
	var value float64
	for year := 1; year <= projectionYrs; year++ {
		fcf *= 1 + growth
		value += fcf / math.Pow(1+r, float64(year))
	}
	terminal := fcf * (1 + terminalGrowth) / (r - terminalGrowth)
	value += terminal / math.Pow(1+r, projectionYrs)

	return ptr(value)
}

// fairValueDDM is the Gordon growth model on the trailing dividend.
// Non-payers are structurally inapplicable.
func fairValueDDM(in *inputs, stats *models.IndustryStats) *float64 {
	if in.dividendPerShare == nil || *in.dividendPerShare <= 0 {
		return nil
	}
	r := discountRate(in, stats)
	if r <= terminalGrowth {
		return nil
	}
	d1 := *in.dividendPerShare * (1 + terminalGrowth)
	return ptr(d1 / (r - terminalGrowth))
}

// fairValueGraham is Graham's square-root formula: sqrt(22.5 * EPS * BVPS).
func fairValueGraham(in *inputs, stats *models.IndustryStats) *float64 {
	if in.eps == nil || *in.eps <= 0 || in.bvps == nil || *in.bvps <= 0 {
		return nil
	}
	return ptr(math.Sqrt(22.5 * *in.eps * *in.bvps))
}

// fairValuePeterLynch prices earnings at their growth rate: fair P/E equals
// the growth percentage.
func fairValuePeterLynch(in *inputs, stats *models.IndustryStats) *float64 {
	if in.eps == nil || *in.eps <= 0 {
		return nil
	}
	var growth float64
	switch {
	case in.epsCAGR != nil && *in.epsCAGR > 0:
		growth = *in.epsCAGR
	case in.earningsGrowth != nil && *in.earningsGrowth > 0:
		growth = *in.earningsGrowth
	default:
		return nil
	}
	growthPct := math.Min(growth, maxProjectedGrowth) * 100
	if growthPct < 5 {
		// sub-5% growers are outside the formula's working range
		return nil
	}
	return ptr(*in.eps * growthPct)
}

func fairValueAnalyst(in *inputs, stats *models.IndustryStats) *float64 {
	if in.targetConsensus == nil || *in.targetConsensus <= 0 {
		return nil
	}
	return ptr(*in.targetConsensus)
}

// discountRate is CAPM with the industry beta as fallback when the company
// has none.
func discountRate(in *inputs, stats *models.IndustryStats) float64 {
	beta := 1.0
	if in.beta != nil && *in.beta > 0 {
		beta = *in.beta
	} else if stats != nil && stats.Beta > 0 {
		beta = stats.Beta
	}
	return riskFreeRate + beta*(marketReturn-riskFreeRate)
}

func ptr(v float64) *float64 { return &v }
