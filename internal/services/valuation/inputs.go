package valuation

import (
	"math"

	"github.com/bobmcallan/verdict/internal/models"
)

// inputs gathers everything the valuation methods read from a record, with
// per-share figures resolved once. Nil pointers mean unavailable.
type inputs struct {
	price  *float64
	shares float64

	eps        *float64
	forwardEPS *float64
	bvps       *float64

	revenuePerShare  *float64
	dividendPerShare *float64

	ebitda *float64
	debt   *float64
	cash   *float64

	beta           *float64
	pegRatio       *float64
	earningsGrowth *float64 // fraction, e.g. 0.12
	epsCAGR        *float64 // fraction
	fcfPerShare    *float64
	fcfGrowth      *float64 // fraction

	targetConsensus *float64
}

func gather(record *models.StandardizedRecord) *inputs {
	in := &inputs{}

	p := record.Profile
	if p != nil {
		in.price = confident(p.Price)
		if f := confident(p.SharesOutstanding); f != nil {
			in.shares = *f
		}
		in.beta = confident(p.Beta)
		in.pegRatio = confident(p.PEGRatio)
		in.earningsGrowth = confident(p.EarningsGrowth)
		in.bvps = confident(p.BookValuePerShare)
	}
	if f := record.Forecast; f != nil {
		in.targetConsensus = confident(f.TargetConsensus)
		in.forwardEPS = confident(f.ForwardEPS)
	}

	income := firstAnnualIncome(record)
	if income != nil {
		if in.shares == 0 {
			if f := confident(income.SharesOutstanding); f != nil {
				in.shares = *f
			}
		}
		if f := confident(income.EPSDiluted); f != nil {
			in.eps = f
		} else if f := confident(income.EPS); f != nil {
			in.eps = f
		}
		in.ebitda = confident(income.EBITDA)
		if in.shares > 0 {
			if f := confident(income.Revenue); f != nil {
				v := *f / in.shares
				in.revenuePerShare = &v
			}
		}
	}

	if bal := firstAnnualBalance(record); bal != nil {
		in.debt = confident(bal.TotalDebt)
		in.cash = confident(bal.Cash)
		if in.bvps == nil && in.shares > 0 {
			if f := confident(bal.ShareholderEquity); f != nil && *f > 0 {
				v := *f / in.shares
				in.bvps = &v
			}
		}
	}

	flows := annualFlows(record)
	if len(flows) > 0 {
		if in.shares > 0 {
			if f := confident(flows[0].DividendsPaid); f != nil {
				v := math.Abs(*f) / in.shares
				in.dividendPerShare = &v
			}
			if f := confident(flows[0].FreeCashFlow); f != nil {
				v := *f / in.shares
				in.fcfPerShare = &v
			}
		}
		in.fcfGrowth = growthRate(fcfSeries(flows), 5)
	}
	in.epsCAGR = growthRate(epsSeries(record), 5)

	return in
}

// confident unwraps a field value, treating low-confidence slots as missing.
func confident(f *models.Field) *float64 {
	if f == nil || f.LowConfidence {
		return nil
	}
	v := f.Value
	return &v
}

// growthRate computes a fractional CAGR over up to maxYears periods,
// requiring positive endpoints and at least 3 periods.
func growthRate(values []float64, maxYears int) *float64 {
	if len(values) < 3 {
		return nil
	}
	if len(values) > maxYears+1 {
		values = values[:maxYears+1]
	}
	latest, oldest := values[0], values[len(values)-1]
	if latest <= 0 || oldest <= 0 {
		return nil
	}
	years := float64(len(values) - 1)
	g := math.Pow(latest/oldest, 1/years) - 1
	return &g
}

func firstAnnualIncome(record *models.StandardizedRecord) *models.IncomeStatement {
	for _, s := range record.Income {
		if s.Annual {
			return s
		}
	}
	return nil
}

func firstAnnualBalance(record *models.StandardizedRecord) *models.BalanceSheet {
	for _, s := range record.Balance {
		if s.Annual {
			return s
		}
	}
	return nil
}

func annualFlows(record *models.StandardizedRecord) []*models.CashFlowStatement {
	var out []*models.CashFlowStatement
	for _, s := range record.CashFlow {
		if s.Annual {
			out = append(out, s)
		}
	}
	return out
}

func fcfSeries(flows []*models.CashFlowStatement) []float64 {
	var out []float64
	for _, s := range flows {
		f := confident(s.FreeCashFlow)
		if f == nil {
			break
		}
		out = append(out, *f)
	}
	return out
}

func epsSeries(record *models.StandardizedRecord) []float64 {
	var out []float64
	for _, s := range record.Income {
		if !s.Annual {
			continue
		}
		f := confident(s.EPS)
		if f == nil {
			break
		}
		out = append(out, *f)
	}
	return out
}
