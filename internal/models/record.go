// Package models defines data structures for Verdict
package models

import "time"

// Source identifies a data provider tier or a derived origin.
type Source string

const (
	SourceEODHD        Source = "eodhd"
	SourceFMP          Source = "fmp"
	SourceAlphaVantage Source = "alphavantage"

	// SourceNormalized marks fields rewritten by the currency normalizer.
	SourceNormalized Source = "normalized"
	// SourceDerived marks fields recomputed from other canonical fields.
	SourceDerived Source = "derived"
)

// TierOrder is the fixed fetch cascade, most authoritative first.
var TierOrder = []Source{SourceEODHD, SourceFMP, SourceAlphaVantage}

// Field is a numeric canonical slot with provenance.
// A nil *Field means the value is missing; a non-nil Field always carries
// exactly one source tag.
type Field struct {
	Value         float64 `json:"value"`
	Source        Source  `json:"source"`
	Currency      string  `json:"currency,omitempty"`
	LowConfidence bool    `json:"low_confidence,omitempty"`
}

// TextField is a string canonical slot with provenance.
type TextField struct {
	Value  string `json:"value"`
	Source Source `json:"source"`
}

// NewField builds a sourced numeric field.
func NewField(value float64, source Source) *Field {
	return &Field{Value: value, Source: source}
}

// Val returns the field value, or nil when the field is missing.
func (f *Field) Val() *float64 {
	if f == nil {
		return nil
	}
	v := f.Value
	return &v
}

// IncomeStatement holds canonical income fields for one fiscal period.
type IncomeStatement struct {
	Period            string `json:"period"` // ISO date, e.g. "2024-12-31"
	Annual            bool   `json:"annual"`
	Revenue           *Field `json:"revenue,omitempty"`
	CostOfRevenue     *Field `json:"cost_of_revenue,omitempty"`
	GrossProfit       *Field `json:"gross_profit,omitempty"`
	OperatingExpenses *Field `json:"operating_expenses,omitempty"`
	OperatingIncome   *Field `json:"operating_income,omitempty"`
	PretaxIncome      *Field `json:"pretax_income,omitempty"`
	IncomeTaxExpense  *Field `json:"income_tax_expense,omitempty"`
	InterestExpense   *Field `json:"interest_expense,omitempty"`
	NetIncome         *Field `json:"net_income,omitempty"`
	EPS               *Field `json:"eps,omitempty"`
	EPSDiluted        *Field `json:"eps_diluted,omitempty"`
	SharesOutstanding *Field `json:"shares_outstanding,omitempty"`
	EBITDA            *Field `json:"ebitda,omitempty"`
}

// BalanceSheet holds canonical balance fields for one fiscal period.
type BalanceSheet struct {
	Period             string `json:"period"`
	Annual             bool   `json:"annual"`
	TotalAssets        *Field `json:"total_assets,omitempty"`
	CurrentAssets      *Field `json:"current_assets,omitempty"`
	Cash               *Field `json:"cash,omitempty"`
	Inventory          *Field `json:"inventory,omitempty"`
	TotalLiabilities   *Field `json:"total_liabilities,omitempty"`
	CurrentLiabilities *Field `json:"current_liabilities,omitempty"`
	TotalDebt          *Field `json:"total_debt,omitempty"`
	ShareholderEquity  *Field `json:"shareholder_equity,omitempty"`
}

// CashFlowStatement holds canonical cash flow fields for one fiscal period.
type CashFlowStatement struct {
	Period            string `json:"period"`
	Annual            bool   `json:"annual"`
	OperatingCashFlow *Field `json:"operating_cash_flow,omitempty"`
	InvestingCashFlow *Field `json:"investing_cash_flow,omitempty"`
	FinancingCashFlow *Field `json:"financing_cash_flow,omitempty"`
	CapEx             *Field `json:"capex,omitempty"`
	FreeCashFlow      *Field `json:"free_cash_flow,omitempty"`
	StockBasedComp    *Field `json:"stock_based_comp,omitempty"`
	DividendsPaid     *Field `json:"dividends_paid,omitempty"`
}

// CompanyProfile holds descriptive and market snapshot fields.
type CompanyProfile struct {
	Name              *TextField `json:"name,omitempty"`
	Sector            *TextField `json:"sector,omitempty"`
	Industry          *TextField `json:"industry,omitempty"`
	ReportingCurrency *TextField `json:"reporting_currency,omitempty"` // currency of the financial statements
	ListingCurrency   *TextField `json:"listing_currency,omitempty"`   // currency the stock trades in
	SecurityType      *TextField `json:"security_type,omitempty"`      // "Common Stock", "ADR", ...
	MarketCap         *Field     `json:"market_cap,omitempty"`
	Price             *Field     `json:"price,omitempty"`
	Beta              *Field     `json:"beta,omitempty"`
	SharesOutstanding *Field     `json:"shares_outstanding,omitempty"`
	ForwardPE         *Field     `json:"forward_pe,omitempty"`
	PEGRatio          *Field     `json:"peg_ratio,omitempty"`
	EarningsGrowth    *Field     `json:"earnings_growth,omitempty"`
	BookValuePerShare *Field     `json:"book_value_per_share,omitempty"`
}

// Forecast holds analyst estimate fields.
type Forecast struct {
	TargetConsensus *Field `json:"target_consensus,omitempty"`
	TargetHigh      *Field `json:"target_high,omitempty"`
	TargetLow       *Field `json:"target_low,omitempty"`
	ForwardEPS      *Field `json:"forward_eps,omitempty"`
}

// StandardizedRecord is the fused, provider-independent view of one company.
// Statements are ordered most recent period first. The record is owned by the
// fusion orchestrator while it is being built and is read-only afterwards.
type StandardizedRecord struct {
	Symbol   string               `json:"symbol"`
	Income   []*IncomeStatement   `json:"income"`
	Balance  []*BalanceSheet      `json:"balance"`
	CashFlow []*CashFlowStatement `json:"cashflow"`
	Profile  *CompanyProfile      `json:"profile,omitempty"`
	Forecast *Forecast            `json:"forecast,omitempty"`

	Tiers   []Source  `json:"tiers"` // tiers that contributed, in fetch order
	FusedAt time.Time `json:"fused_at"`

	// Currency normalization state
	Normalized    bool    `json:"normalized,omitempty"`
	FXRate        float64 `json:"fx_rate,omitempty"`
	ImpliedShares float64 `json:"implied_shares,omitempty"`
	FXUnavailable bool    `json:"fx_unavailable,omitempty"` // conversion needed but no rate found
}

// IsDepositaryReceipt reports whether the security trades as an ADR/GDR style
// depositary receipt.
func (r *StandardizedRecord) IsDepositaryReceipt() bool {
	if r.Profile == nil || r.Profile.SecurityType == nil {
		return false
	}
	switch r.Profile.SecurityType.Value {
	case "ADR", "GDR", "Depositary Receipt", "American Depositary Receipt":
		return true
	}
	return false
}

// Sector returns the profile sector, or empty string when missing.
func (r *StandardizedRecord) Sector() string {
	if r.Profile == nil || r.Profile.Sector == nil {
		return ""
	}
	return r.Profile.Sector.Value
}

// Industry returns the profile industry, or empty string when missing.
func (r *StandardizedRecord) Industry() string {
	if r.Profile == nil || r.Profile.Industry == nil {
		return ""
	}
	return r.Profile.Industry.Value
}

// CurrentPrice returns the latest listed price, or nil when missing.
func (r *StandardizedRecord) CurrentPrice() *float64 {
	if r.Profile == nil {
		return nil
	}
	return r.Profile.Price.Val()
}

// AnnualPeriods counts annual statements per section. Used by the gap
// analyzer's history-depth check.
func (r *StandardizedRecord) AnnualPeriods() (income, balance, cashflow int) {
	for _, s := range r.Income {
		if s.Annual {
			income++
		}
	}
	for _, s := range r.Balance {
		if s.Annual {
			balance++
		}
	}
	for _, s := range r.CashFlow {
		if s.Annual {
			cashflow++
		}
	}
	return
}
