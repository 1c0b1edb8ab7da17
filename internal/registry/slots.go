package registry

import "github.com/bobmcallan/verdict/internal/models"

// Slot accessors map canonical names onto record struct fields. The double
// pointer lets merge code both read the occupant and replace it in place.

// IncomeSlots addresses income statement fields by canonical name.
var IncomeSlots = map[string]func(*models.IncomeStatement) **models.Field{
	"revenue":            func(s *models.IncomeStatement) **models.Field { return &s.Revenue },
	"cost_of_revenue":    func(s *models.IncomeStatement) **models.Field { return &s.CostOfRevenue },
	"gross_profit":       func(s *models.IncomeStatement) **models.Field { return &s.GrossProfit },
	"operating_expenses": func(s *models.IncomeStatement) **models.Field { return &s.OperatingExpenses },
	"operating_income":   func(s *models.IncomeStatement) **models.Field { return &s.OperatingIncome },
	"pretax_income":      func(s *models.IncomeStatement) **models.Field { return &s.PretaxIncome },
	"income_tax_expense": func(s *models.IncomeStatement) **models.Field { return &s.IncomeTaxExpense },
	"interest_expense":   func(s *models.IncomeStatement) **models.Field { return &s.InterestExpense },
	"net_income":         func(s *models.IncomeStatement) **models.Field { return &s.NetIncome },
	"eps":                func(s *models.IncomeStatement) **models.Field { return &s.EPS },
	"eps_diluted":        func(s *models.IncomeStatement) **models.Field { return &s.EPSDiluted },
	"shares_outstanding": func(s *models.IncomeStatement) **models.Field { return &s.SharesOutstanding },
	"ebitda":             func(s *models.IncomeStatement) **models.Field { return &s.EBITDA },
}

// BalanceSlots addresses balance sheet fields by canonical name.
var BalanceSlots = map[string]func(*models.BalanceSheet) **models.Field{
	"total_assets":        func(s *models.BalanceSheet) **models.Field { return &s.TotalAssets },
	"current_assets":      func(s *models.BalanceSheet) **models.Field { return &s.CurrentAssets },
	"cash":                func(s *models.BalanceSheet) **models.Field { return &s.Cash },
	"inventory":           func(s *models.BalanceSheet) **models.Field { return &s.Inventory },
	"total_liabilities":   func(s *models.BalanceSheet) **models.Field { return &s.TotalLiabilities },
	"current_liabilities": func(s *models.BalanceSheet) **models.Field { return &s.CurrentLiabilities },
	"total_debt":          func(s *models.BalanceSheet) **models.Field { return &s.TotalDebt },
	"shareholder_equity":  func(s *models.BalanceSheet) **models.Field { return &s.ShareholderEquity },
}

// CashFlowSlots addresses cash flow statement fields by canonical name.
var CashFlowSlots = map[string]func(*models.CashFlowStatement) **models.Field{
	"operating_cash_flow": func(s *models.CashFlowStatement) **models.Field { return &s.OperatingCashFlow },
	"investing_cash_flow": func(s *models.CashFlowStatement) **models.Field { return &s.InvestingCashFlow },
	"financing_cash_flow": func(s *models.CashFlowStatement) **models.Field { return &s.FinancingCashFlow },
	"capex":               func(s *models.CashFlowStatement) **models.Field { return &s.CapEx },
	"free_cash_flow":      func(s *models.CashFlowStatement) **models.Field { return &s.FreeCashFlow },
	"stock_based_comp":    func(s *models.CashFlowStatement) **models.Field { return &s.StockBasedComp },
	"dividends_paid":      func(s *models.CashFlowStatement) **models.Field { return &s.DividendsPaid },
}

// ProfileSlots addresses numeric profile fields by canonical name.
var ProfileSlots = map[string]func(*models.CompanyProfile) **models.Field{
	"market_cap":                 func(p *models.CompanyProfile) **models.Field { return &p.MarketCap },
	"price":                      func(p *models.CompanyProfile) **models.Field { return &p.Price },
	"beta":                       func(p *models.CompanyProfile) **models.Field { return &p.Beta },
	"shares_outstanding_current": func(p *models.CompanyProfile) **models.Field { return &p.SharesOutstanding },
	"forward_pe":                 func(p *models.CompanyProfile) **models.Field { return &p.ForwardPE },
	"peg_ratio":                  func(p *models.CompanyProfile) **models.Field { return &p.PEGRatio },
	"earnings_growth":            func(p *models.CompanyProfile) **models.Field { return &p.EarningsGrowth },
	"book_value_per_share":       func(p *models.CompanyProfile) **models.Field { return &p.BookValuePerShare },
}

// ProfileTextSlots addresses text profile fields by canonical name.
var ProfileTextSlots = map[string]func(*models.CompanyProfile) **models.TextField{
	"name":               func(p *models.CompanyProfile) **models.TextField { return &p.Name },
	"sector":             func(p *models.CompanyProfile) **models.TextField { return &p.Sector },
	"industry":           func(p *models.CompanyProfile) **models.TextField { return &p.Industry },
	"reporting_currency": func(p *models.CompanyProfile) **models.TextField { return &p.ReportingCurrency },
	"listing_currency":   func(p *models.CompanyProfile) **models.TextField { return &p.ListingCurrency },
	"security_type":      func(p *models.CompanyProfile) **models.TextField { return &p.SecurityType },
}

// ForecastSlots addresses analyst forecast fields by canonical name.
var ForecastSlots = map[string]func(*models.Forecast) **models.Field{
	"target_consensus": func(f *models.Forecast) **models.Field { return &f.TargetConsensus },
	"target_high":      func(f *models.Forecast) **models.Field { return &f.TargetHigh },
	"target_low":       func(f *models.Forecast) **models.Field { return &f.TargetLow },
	"forward_eps":      func(f *models.Forecast) **models.Field { return &f.ForwardEPS },
}
