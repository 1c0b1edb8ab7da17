// Package fusion assembles standardized records from the provider cascade.
package fusion

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/bobmcallan/verdict/internal/common"
	"github.com/bobmcallan/verdict/internal/interfaces"
	"github.com/bobmcallan/verdict/internal/models"
	"github.com/bobmcallan/verdict/internal/registry"
)

// Service runs the tier cascade and merges provider payloads through the
// field registry.
type Service struct {
	clients  []interfaces.SourceClient // tier order, most authoritative first
	registry *registry.Registry
	analyzer *Analyzer
	logger   *common.Logger
}

// NewService creates a fusion service. Clients are consulted in the order
// given.
func NewService(reg *registry.Registry, analyzer *Analyzer, logger *common.Logger, clients ...interfaces.SourceClient) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		clients:  clients,
		registry: reg,
		analyzer: analyzer,
		logger:   logger,
	}
}

// Fuse builds a standardized record for a symbol. Each tier is fetched,
// mapped, and merged; the cascade stops early once the gap analyzer declares
// the record sufficient for both downstream stages. A tier failing
// transiently is skipped; a symbol unknown to every tier aborts the run.
func (s *Service) Fuse(ctx context.Context, symbol string) (*models.StandardizedRecord, error) {
	record := &models.StandardizedRecord{Symbol: symbol}

	notFound := 0
	for i, client := range s.clients {
		if i > 0 && s.sufficient(record) {
			s.logger.Debug().
				Str("symbol", symbol).
				Int("tiers_used", len(record.Tiers)).
				Msg("record sufficient, skipping remaining tiers")
			break
		}

		payload, err := client.FetchRaw(ctx, symbol)
		switch {
		case err == nil:
			// fallthrough to merge
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, err
		case errors.Is(err, interfaces.ErrSymbolNotFound):
			notFound++
			s.logger.Debug().
				Str("symbol", symbol).
				Str("source", string(client.Source())).
				Msg("symbol unknown to tier")
			continue
		case interfaces.IsTransient(err):
			s.logger.Warn().
				Err(err).
				Str("symbol", symbol).
				Str("source", string(client.Source())).
				Msg("tier unavailable, continuing cascade")
			continue
		default:
			s.logger.Warn().
				Err(err).
				Str("symbol", symbol).
				Str("source", string(client.Source())).
				Msg("tier fetch failed, continuing cascade")
			continue
		}

		if payload == nil || payload.Empty() {
			continue
		}
		s.absorb(record, payload)
		record.Tiers = append(record.Tiers, client.Source())
		if payload.Currency != "" {
			// remember the statement currency of the first contributing tier
			setReportingCurrency(record, payload.Currency, client.Source())
		}
	}

	if len(record.Tiers) == 0 {
		if notFound == len(s.clients) && len(s.clients) > 0 {
			return nil, fmt.Errorf("fuse %s: %w", symbol, interfaces.ErrSymbolNotFound)
		}
		return nil, fmt.Errorf("fuse %s: no tier produced data", symbol)
	}

	s.derive(record)
	record.FusedAt = time.Now().UTC()

	return record, nil
}

// Assess exposes the gap analyzer verdict for callers that need the final
// completeness report.
func (s *Service) Assess(record *models.StandardizedRecord, stage models.Stage) *models.CompletenessReport {
	return s.analyzer.Assess(record, stage)
}

func (s *Service) sufficient(record *models.StandardizedRecord) bool {
	return s.analyzer.Assess(record, models.StageScoring).Sufficient &&
		s.analyzer.Assess(record, models.StageValuation).Sufficient
}

func setReportingCurrency(record *models.StandardizedRecord, currency string, src models.Source) {
	if record.Profile == nil {
		record.Profile = &models.CompanyProfile{}
	}
	if record.Profile.ReportingCurrency == nil {
		record.Profile.ReportingCurrency = &models.TextField{Value: currency, Source: src}
	}
}

// derive fills arithmetic identities the providers left blank. Derived
// values never overwrite fetched ones.
func (s *Service) derive(record *models.StandardizedRecord) {
	for _, stmt := range record.Income {
		if stmt.GrossProfit == nil && stmt.Revenue != nil && stmt.CostOfRevenue != nil {
			f := models.NewField(stmt.Revenue.Value-stmt.CostOfRevenue.Value, models.SourceDerived)
			f.Currency = stmt.Revenue.Currency
			stmt.GrossProfit = f
		}
		if stmt.EPS == nil && stmt.NetIncome != nil && stmt.SharesOutstanding != nil && stmt.SharesOutstanding.Value > 0 {
			f := models.NewField(stmt.NetIncome.Value/stmt.SharesOutstanding.Value, models.SourceDerived)
			f.Currency = stmt.NetIncome.Currency
			stmt.EPS = f
		}
	}
	for _, stmt := range record.CashFlow {
		if stmt.FreeCashFlow == nil && stmt.OperatingCashFlow != nil && stmt.CapEx != nil {
			// providers disagree on capex sign, so take the magnitude
			f := models.NewField(stmt.OperatingCashFlow.Value-math.Abs(stmt.CapEx.Value), models.SourceDerived)
			f.Currency = stmt.OperatingCashFlow.Currency
			stmt.FreeCashFlow = f
		}
	}
	if record.Profile != nil {
		p := record.Profile
		if p.MarketCap == nil && p.Price != nil && p.SharesOutstanding != nil {
			f := models.NewField(p.Price.Value*p.SharesOutstanding.Value, models.SourceDerived)
			f.Currency = p.Price.Currency
			p.MarketCap = f
		}
	}
}
