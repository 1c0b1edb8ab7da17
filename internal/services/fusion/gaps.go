package fusion

import (
	"github.com/bobmcallan/verdict/internal/models"
)

// DefaultRequirements lists the canonical fields each downstream stage needs.
// Statement fields are checked against the most recent annual period, the
// rest against the profile and forecast.
var DefaultRequirements = map[models.Stage][]string{
	models.StageScoring: {
		"revenue",
		"gross_profit",
		"operating_income",
		"net_income",
		"total_assets",
		"total_debt",
		"shareholder_equity",
		"current_liabilities",
		"operating_cash_flow",
		"capex",
		"shares_outstanding",
		"sector",
	},
	models.StageValuation: {
		"revenue",
		"net_income",
		"eps",
		"ebitda",
		"shareholder_equity",
		"total_debt",
		"cash",
		"market_cap",
		"price",
		"shares_outstanding_current",
		"sector",
	},
}

// Analyzer scores record completeness against stage requirement sets. It is
// pure computation: no I/O, no record mutation.
type Analyzer struct {
	requirements   map[models.Stage][]string
	minAnnualYears int
}

// NewAnalyzer builds a gap analyzer. A nil requirements map selects the
// defaults.
func NewAnalyzer(requirements map[models.Stage][]string, minAnnualYears int) *Analyzer {
	if requirements == nil {
		requirements = DefaultRequirements
	}
	if minAnnualYears < 2 {
		minAnnualYears = 4
	}
	return &Analyzer{requirements: requirements, minAnnualYears: minAnnualYears}
}

// Assess computes the completeness verdict for one stage. A record is
// sufficient when every required field is present; reliability degrades with
// coverage and shallow statement history.
func (a *Analyzer) Assess(record *models.StandardizedRecord, stage models.Stage) *models.CompletenessReport {
	required := a.requirements[stage]
	report := &models.CompletenessReport{
		Stage:    stage,
		Required: len(required),
	}

	for _, name := range required {
		if fieldPresent(record, name) {
			report.Present++
		} else {
			report.Missing = append(report.Missing, name)
		}
	}
	if report.Required > 0 {
		report.Coverage = float64(report.Present) / float64(report.Required)
	}

	income, _, _ := record.AnnualPeriods()
	report.AnnualPeriods = income
	report.ShallowHistory = income < a.minAnnualYears

	report.Sufficient = len(report.Missing) == 0
	switch {
	case report.Sufficient && !report.ShallowHistory:
		report.Reliability = models.ReliabilityFull
	case report.Coverage >= 0.7:
		report.Reliability = models.ReliabilityReduced
	default:
		report.Reliability = models.ReliabilityLow
	}

	return report
}

// fieldPresent reports whether a canonical field holds a usable value. Low
// confidence values still count as present here; they are discounted at the
// scoring stage instead.
func fieldPresent(record *models.StandardizedRecord, name string) bool {
	switch name {
	case "sector":
		return record.Sector() != ""
	case "industry":
		return record.Industry() != ""
	}

	if record.Profile != nil {
		switch name {
		case "market_cap":
			return record.Profile.MarketCap != nil
		case "price":
			return record.Profile.Price != nil
		case "beta":
			return record.Profile.Beta != nil
		case "shares_outstanding_current":
			return record.Profile.SharesOutstanding != nil
		case "book_value_per_share":
			return record.Profile.BookValuePerShare != nil
		}
	}

	if record.Forecast != nil {
		switch name {
		case "target_consensus":
			return record.Forecast.TargetConsensus != nil
		case "forward_eps":
			return record.Forecast.ForwardEPS != nil
		}
	}

	if stmt := latestAnnualIncome(record); stmt != nil {
		switch name {
		case "revenue":
			return stmt.Revenue != nil
		case "cost_of_revenue":
			return stmt.CostOfRevenue != nil
		case "gross_profit":
			return stmt.GrossProfit != nil
		case "operating_income":
			return stmt.OperatingIncome != nil
		case "net_income":
			return stmt.NetIncome != nil
		case "eps":
			return stmt.EPS != nil || stmt.EPSDiluted != nil
		case "ebitda":
			return stmt.EBITDA != nil
		case "shares_outstanding":
			return stmt.SharesOutstanding != nil
		}
	}

	if stmt := latestAnnualBalance(record); stmt != nil {
		switch name {
		case "total_assets":
			return stmt.TotalAssets != nil
		case "total_debt":
			return stmt.TotalDebt != nil
		case "shareholder_equity":
			return stmt.ShareholderEquity != nil
		case "current_liabilities":
			return stmt.CurrentLiabilities != nil
		case "current_assets":
			return stmt.CurrentAssets != nil
		case "cash":
			return stmt.Cash != nil
		}
	}

	if stmt := latestAnnualCashFlow(record); stmt != nil {
		switch name {
		case "operating_cash_flow":
			return stmt.OperatingCashFlow != nil
		case "capex":
			return stmt.CapEx != nil
		case "free_cash_flow":
			return stmt.FreeCashFlow != nil
		case "dividends_paid":
			return stmt.DividendsPaid != nil
		}
	}

	return false
}

func latestAnnualIncome(record *models.StandardizedRecord) *models.IncomeStatement {
	for _, stmt := range record.Income {
		if stmt.Annual {
			return stmt
		}
	}
	return nil
}

func latestAnnualBalance(record *models.StandardizedRecord) *models.BalanceSheet {
	for _, stmt := range record.Balance {
		if stmt.Annual {
			return stmt
		}
	}
	return nil
}

func latestAnnualCashFlow(record *models.StandardizedRecord) *models.CashFlowStatement {
	for _, stmt := range record.CashFlow {
		if stmt.Annual {
			return stmt
		}
	}
	return nil
}
