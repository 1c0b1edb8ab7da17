// Package normalize converts fused records into a single working currency
// and repairs depositary receipt share counts.
package normalize

import (
	"context"
	"strings"
	"time"

	"github.com/bobmcallan/verdict/internal/common"
	"github.com/bobmcallan/verdict/internal/interfaces"
	"github.com/bobmcallan/verdict/internal/models"
)

// Implied share counts are only trusted when they disagree enough with the
// provider figure. Within the ballpark band the provider count stands; past
// the replace ratio the implied count wins.
const (
	ballparkLow  = 0.5
	ballparkHigh = 1.5
	replaceRatio = 2.0
)

// Service normalizes monetary fields to the listing currency.
type Service struct {
	fx     interfaces.FXClient
	logger *common.Logger
}

// NewService creates a normalizer. fx may be nil, in which case records
// needing conversion degrade to low confidence instead of converting.
func NewService(fx interfaces.FXClient, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{fx: fx, logger: logger}
}

// Normalize rewrites monetary fields from the reporting currency into the
// listing currency and, for depositary receipts, re-derives per-share values
// from an implied share count. Calling it on an already-normalized record is
// a no-op.
func (s *Service) Normalize(ctx context.Context, record *models.StandardizedRecord) error {
	if record == nil || record.Normalized {
		return nil
	}

	reporting := currencyOf(record.Profile, true)
	listing := currencyOf(record.Profile, false)

	if reporting != "" && listing != "" && reporting != listing {
		if err := s.convert(ctx, record, reporting, listing); err != nil {
			return err
		}
	}

	if record.IsDepositaryReceipt() {
		s.repairShareCount(record)
	}

	record.Normalized = true
	return nil
}

func currencyOf(p *models.CompanyProfile, reporting bool) string {
	if p == nil {
		return ""
	}
	var f *models.TextField
	if reporting {
		f = p.ReportingCurrency
	} else {
		f = p.ListingCurrency
	}
	if f == nil {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(f.Value))
}

// convert applies the FX rate to every monetary field still carrying the
// reporting currency. A missing rate downgrades those fields to low
// confidence rather than failing the record.
func (s *Service) convert(ctx context.Context, record *models.StandardizedRecord, from, to string) error {
	var rate float64
	var err error
	if s.fx != nil {
		rate, err = s.fx.Rate(ctx, from, to, time.Time{})
	}
	if s.fx == nil || err != nil || rate <= 0 {
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("symbol", record.Symbol).
				Str("from", from).
				Str("to", to).
				Msg("FX rate unavailable, leaving fields unconverted")
		}
		record.FXUnavailable = true
		forEachMonetary(record, func(f *models.Field) {
			if strings.EqualFold(f.Currency, from) {
				f.LowConfidence = true
			}
		})
		return nil
	}

	record.FXRate = rate
	converted := 0
	forEachMonetary(record, func(f *models.Field) {
		if !strings.EqualFold(f.Currency, from) {
			return
		}
		f.Value *= rate
		f.Currency = to
		f.Source = models.SourceNormalized
		converted++
	})

	s.logger.Debug().
		Str("symbol", record.Symbol).
		Str("from", from).
		Str("to", to).
		Float64("rate", rate).
		Int("fields", converted).
		Msg("converted monetary fields")
	return nil
}

// repairShareCount infers shares outstanding from market cap and price for
// depositary receipts, where provider share counts routinely refer to the
// underlying listing instead of the receipt.
func (s *Service) repairShareCount(record *models.StandardizedRecord) {
	p := record.Profile
	if p == nil || p.MarketCap == nil || p.Price == nil || p.Price.Value <= 0 {
		return
	}

	implied := p.MarketCap.Value / p.Price.Value
	if implied <= 0 {
		return
	}
	record.ImpliedShares = implied

	provider := 0.0
	if p.SharesOutstanding != nil {
		provider = p.SharesOutstanding.Value
	}

	useImplied := true
	if provider > 0 {
		ratio := implied / provider
		if ratio >= ballparkLow && ratio <= ballparkHigh {
			useImplied = false
		} else if ratio < replaceRatio && ratio > 1/replaceRatio {
			// between the ballpark band and the replace ratio the
			// provider figure is suspect but not clearly wrong
			useImplied = false
			p.SharesOutstanding.LowConfidence = true
		}
	}

	if useImplied {
		p.SharesOutstanding = models.NewField(implied, models.SourceDerived)
		s.logger.Debug().
			Str("symbol", record.Symbol).
			Float64("implied", implied).
			Float64("provider", provider).
			Msg("using implied share count for depositary receipt")
	}

	s.recomputePerShare(record, p.SharesOutstanding.Value)
}

// recomputePerShare re-derives per-share fields from absolute figures and
// the trusted share count.
func (s *Service) recomputePerShare(record *models.StandardizedRecord, shares float64) {
	if shares <= 0 {
		return
	}

	for _, stmt := range record.Income {
		if stmt.NetIncome == nil {
			continue
		}
		f := models.NewField(stmt.NetIncome.Value/shares, models.SourceDerived)
		f.Currency = stmt.NetIncome.Currency
		f.LowConfidence = stmt.NetIncome.LowConfidence
		stmt.EPS = f
	}

	if p := record.Profile; p != nil {
		if equity := latestEquity(record); equity != nil {
			f := models.NewField(equity.Value/shares, models.SourceDerived)
			f.Currency = equity.Currency
			f.LowConfidence = equity.LowConfidence
			p.BookValuePerShare = f
		}
	}
}

func latestEquity(record *models.StandardizedRecord) *models.Field {
	for _, stmt := range record.Balance {
		if stmt.Annual && stmt.ShareholderEquity != nil {
			return stmt.ShareholderEquity
		}
	}
	return nil
}

// forEachMonetary visits every monetary field on the record. Per-share
// fields are included: they scale with FX like any other monetary amount.
func forEachMonetary(record *models.StandardizedRecord, fn func(*models.Field)) {
	visit := func(f *models.Field) {
		if f != nil {
			fn(f)
		}
	}

	for _, stmt := range record.Income {
		visit(stmt.Revenue)
		visit(stmt.CostOfRevenue)
		visit(stmt.GrossProfit)
		visit(stmt.OperatingExpenses)
		visit(stmt.OperatingIncome)
		visit(stmt.PretaxIncome)
		visit(stmt.IncomeTaxExpense)
		visit(stmt.InterestExpense)
		visit(stmt.NetIncome)
		visit(stmt.EPS)
		visit(stmt.EPSDiluted)
		visit(stmt.EBITDA)
	}
	for _, stmt := range record.Balance {
		visit(stmt.TotalAssets)
		visit(stmt.CurrentAssets)
		visit(stmt.Cash)
		visit(stmt.Inventory)
		visit(stmt.TotalLiabilities)
		visit(stmt.CurrentLiabilities)
		visit(stmt.TotalDebt)
		visit(stmt.ShareholderEquity)
	}
	for _, stmt := range record.CashFlow {
		visit(stmt.OperatingCashFlow)
		visit(stmt.InvestingCashFlow)
		visit(stmt.FinancingCashFlow)
		visit(stmt.CapEx)
		visit(stmt.FreeCashFlow)
		visit(stmt.StockBasedComp)
		visit(stmt.DividendsPaid)
	}
	if p := record.Profile; p != nil {
		visit(p.MarketCap)
		visit(p.BookValuePerShare)
	}
	if f := record.Forecast; f != nil {
		visit(f.ForwardEPS)
	}
}
