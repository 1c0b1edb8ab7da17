package scoring

import (
	"math"

	"github.com/bobmcallan/verdict/internal/models"
)

// MetricValue is one derived fundamental metric. Percent-shaped metrics
// (margins, returns, CAGRs) are expressed in percentage points; the rest are
// plain ratios.
type MetricValue struct {
	Value         float64
	LowConfidence bool
}

// MetricSet maps metric keys to derived values. Absent keys mean the metric
// could not be computed for this record.
type MetricSet map[string]MetricValue

// Metric keys shared between the weight tables, sanity bounds, and the
// threshold tables.
const (
	MetricROIC            = "roic"
	MetricROE             = "roe"
	MetricOperatingMargin = "operating_margin"
	MetricNetMargin       = "net_margin"
	MetricGrossMargin     = "gross_margin"
	MetricRevenueCAGR     = "revenue_cagr_5y"
	MetricNetIncomeCAGR   = "net_income_cagr_5y"
	MetricFCFCAGR         = "fcf_cagr_5y"
	MetricEarningsQuality = "earnings_quality_3y"
	MetricFCFToDebt       = "fcf_to_debt_ratio"
	MetricShareDilution   = "share_dilution_3y"
	MetricSBCImpact       = "sbc_impact_3y"
	MetricCapexIntensity  = "capex_intensity"
)

// ComputeMetrics derives every scoring input from a normalized record.
// A metric built from any low-confidence field is itself low confidence.
func ComputeMetrics(record *models.StandardizedRecord) MetricSet {
	out := MetricSet{}

	income := annualIncome(record)
	balance := annualBalance(record)
	cashflow := annualCashFlow(record)

	if len(income) > 0 && len(balance) > 0 {
		addReturnsAndMargins(out, income[0], balance[0])
	}

	addCAGR(out, MetricRevenueCAGR, series(income, func(s *models.IncomeStatement) *models.Field { return s.Revenue }), 5)
	addCAGR(out, MetricNetIncomeCAGR, series(income, func(s *models.IncomeStatement) *models.Field { return s.NetIncome }), 5)
	addCAGR(out, MetricFCFCAGR, flowSeries(cashflow, func(s *models.CashFlowStatement) *models.Field { return s.FreeCashFlow }), 5)

	addEarningsQuality(out, income, cashflow)
	addFCFToDebt(out, balance, cashflow)
	addShareDilution(out, income)
	addCapexIntensity(out, income, cashflow)
	addSBCImpact(out, income, cashflow)

	return out
}

func addReturnsAndMargins(out MetricSet, inc *models.IncomeStatement, bal *models.BalanceSheet) {
	rev := inc.Revenue
	if rev != nil && rev.Value != 0 {
		if inc.OperatingIncome != nil {
			put(out, MetricOperatingMargin, inc.OperatingIncome.Value/rev.Value*100, rev, inc.OperatingIncome)
		}
		if inc.NetIncome != nil {
			put(out, MetricNetMargin, inc.NetIncome.Value/rev.Value*100, rev, inc.NetIncome)
		}
		if inc.GrossProfit != nil {
			put(out, MetricGrossMargin, inc.GrossProfit.Value/rev.Value*100, rev, inc.GrossProfit)
		}
	}

	if bal.ShareholderEquity != nil && bal.ShareholderEquity.Value > 0 && inc.NetIncome != nil {
		put(out, MetricROE, inc.NetIncome.Value/bal.ShareholderEquity.Value*100, inc.NetIncome, bal.ShareholderEquity)
	}

	// ROIC = NOPAT / (debt + equity), with the effective tax rate clamped
	// to a credible band
	if inc.OperatingIncome != nil && bal.ShareholderEquity != nil && bal.TotalDebt != nil {
		invested := bal.ShareholderEquity.Value + bal.TotalDebt.Value
		if invested > 0 {
			taxRate := 0.25
			if inc.PretaxIncome != nil && inc.PretaxIncome.Value > 0 && inc.IncomeTaxExpense != nil {
				taxRate = inc.IncomeTaxExpense.Value / inc.PretaxIncome.Value
				taxRate = math.Max(0, math.Min(taxRate, 0.5))
			}
			nopat := inc.OperatingIncome.Value * (1 - taxRate)
			put(out, MetricROIC, nopat/invested*100, inc.OperatingIncome, bal.ShareholderEquity, bal.TotalDebt)
		}
	}
}

// addCAGR computes compound annual growth over up to maxYears annual
// periods, requiring at least 4 periods and a positive starting value.
func addCAGR(out MetricSet, key string, values []*models.Field, maxYears int) {
	if len(values) < 4 {
		return
	}
	if len(values) > maxYears+1 {
		values = values[:maxYears+1]
	}
	latest, oldest := values[0], values[len(values)-1]
	if latest == nil || oldest == nil || oldest.Value <= 0 || latest.Value <= 0 {
		return
	}
	years := float64(len(values) - 1)
	cagr := (math.Pow(latest.Value/oldest.Value, 1/years) - 1) * 100
	put(out, key, cagr, latest, oldest)
}

// addEarningsQuality compares cash generation to reported earnings over up
// to 3 years. Persistently earning more cash than profit signals clean
// accounting.
func addEarningsQuality(out MetricSet, income []*models.IncomeStatement, cashflow []*models.CashFlowStatement) {
	var ocfSum, niSum float64
	var lowConf bool
	n := 0
	for i := 0; i < len(income) && i < len(cashflow) && n < 3; i++ {
		ocf, ni := cashflow[i].OperatingCashFlow, income[i].NetIncome
		if ocf == nil || ni == nil {
			continue
		}
		ocfSum += ocf.Value
		niSum += ni.Value
		lowConf = lowConf || ocf.LowConfidence || ni.LowConfidence
		n++
	}
	if n < 2 || niSum <= 0 {
		return
	}
	out[MetricEarningsQuality] = MetricValue{Value: ocfSum / niSum, LowConfidence: lowConf}
}

func addFCFToDebt(out MetricSet, balance []*models.BalanceSheet, cashflow []*models.CashFlowStatement) {
	if len(balance) == 0 || len(cashflow) == 0 {
		return
	}
	fcf := cashflow[0].FreeCashFlow
	debt := balance[0].TotalDebt
	if fcf == nil || debt == nil {
		return
	}
	if debt.Value <= 0 {
		// debt-free with positive cash flow pins the best bucket
		if fcf.Value > 0 {
			put(out, MetricFCFToDebt, 10, fcf, debt)
		}
		return
	}
	put(out, MetricFCFToDebt, fcf.Value/debt.Value, fcf, debt)
}

// addShareDilution measures annualized share count growth over up to 3
// years. Negative values mean net buybacks.
func addShareDilution(out MetricSet, income []*models.IncomeStatement) {
	shares := series(income, func(s *models.IncomeStatement) *models.Field { return s.SharesOutstanding })
	if len(shares) < 2 {
		return
	}
	if len(shares) > 4 {
		shares = shares[:4]
	}
	latest, oldest := shares[0], shares[len(shares)-1]
	if latest == nil || oldest == nil || oldest.Value <= 0 || latest.Value <= 0 {
		return
	}
	years := float64(len(shares) - 1)
	dilution := (math.Pow(latest.Value/oldest.Value, 1/years) - 1) * 100
	put(out, MetricShareDilution, dilution, latest, oldest)
}

// addCapexIntensity averages capital spending as a share of revenue over up
// to 3 years.
func addCapexIntensity(out MetricSet, income []*models.IncomeStatement, cashflow []*models.CashFlowStatement) {
	var capexSum, revSum float64
	var lowConf bool
	n := 0
	for i := 0; i < len(income) && i < len(cashflow) && n < 3; i++ {
		capex, rev := cashflow[i].CapEx, income[i].Revenue
		if capex == nil || rev == nil || rev.Value <= 0 {
			continue
		}
		capexSum += math.Abs(capex.Value)
		revSum += rev.Value
		lowConf = lowConf || capex.LowConfidence || rev.LowConfidence
		n++
	}
	if n == 0 || revSum <= 0 {
		return
	}
	out[MetricCapexIntensity] = MetricValue{Value: capexSum / revSum * 100, LowConfidence: lowConf}
}

// addSBCImpact measures stock compensation as a share of revenue over up to
// 3 years.
func addSBCImpact(out MetricSet, income []*models.IncomeStatement, cashflow []*models.CashFlowStatement) {
	var sbcSum, revSum float64
	var lowConf bool
	n := 0
	for i := 0; i < len(income) && i < len(cashflow) && n < 3; i++ {
		sbc, rev := cashflow[i].StockBasedComp, income[i].Revenue
		if sbc == nil || rev == nil || rev.Value <= 0 {
			continue
		}
		sbcSum += math.Abs(sbc.Value)
		revSum += rev.Value
		lowConf = lowConf || sbc.LowConfidence || rev.LowConfidence
		n++
	}
	if n == 0 || revSum <= 0 {
		return
	}
	out[MetricSBCImpact] = MetricValue{Value: sbcSum / revSum * 100, LowConfidence: lowConf}
}

func put(out MetricSet, key string, value float64, inputs ...*models.Field) {
	mv := MetricValue{Value: value}
	for _, f := range inputs {
		if f != nil && f.LowConfidence {
			mv.LowConfidence = true
		}
	}
	out[key] = mv
}

func annualIncome(record *models.StandardizedRecord) []*models.IncomeStatement {
	var out []*models.IncomeStatement
	for _, s := range record.Income {
		if s.Annual {
			out = append(out, s)
		}
	}
	return out
}

func annualBalance(record *models.StandardizedRecord) []*models.BalanceSheet {
	var out []*models.BalanceSheet
	for _, s := range record.Balance {
		if s.Annual {
			out = append(out, s)
		}
	}
	return out
}

func annualCashFlow(record *models.StandardizedRecord) []*models.CashFlowStatement {
	var out []*models.CashFlowStatement
	for _, s := range record.CashFlow {
		if s.Annual {
			out = append(out, s)
		}
	}
	return out
}

// series extracts one field across annual periods, stopping at the first
// period where the field is missing so CAGR endpoints stay aligned.
func series(stmts []*models.IncomeStatement, get func(*models.IncomeStatement) *models.Field) []*models.Field {
	var out []*models.Field
	for _, s := range stmts {
		f := get(s)
		if f == nil {
			break
		}
		out = append(out, f)
	}
	return out
}

func flowSeries(stmts []*models.CashFlowStatement, get func(*models.CashFlowStatement) *models.Field) []*models.Field {
	var out []*models.Field
	for _, s := range stmts {
		f := get(s)
		if f == nil {
			break
		}
		out = append(out, f)
	}
	return out
}
