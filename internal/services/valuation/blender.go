// Package valuation estimates fair value through a weighted blend of
// independent models.
package valuation

import (
	"context"
	"fmt"

	"github.com/bobmcallan/verdict/internal/common"
	"github.com/bobmcallan/verdict/internal/models"
)

// StatsProvider supplies industry multiples and betas.
type StatsProvider interface {
	IndustryStats(industry string) (*models.IndustryStats, bool)
}

// Service runs every valuation method and blends the available results with
// sector weights.
type Service struct {
	tables      map[string]MethodWeights
	stats       StatsProvider
	fairBandPct float64
	logger      *common.Logger
}

// NewService creates a valuation service. Nil tables select the defaults;
// fairBandPct is the absolute deviation below which a price is "fair".
func NewService(tables map[string]MethodWeights, stats StatsProvider, fairBandPct float64, logger *common.Logger) *Service {
	if tables == nil {
		tables = DefaultWeightTables()
	}
	if fairBandPct <= 0 {
		fairBandPct = 0.10
	}
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{tables: tables, stats: stats, fairBandPct: fairBandPct, logger: logger}
}

// Value computes each method's fair value, excludes the inapplicable ones,
// renormalizes the remaining weights to 1.0, and blends. If every method is
// null the composite fair value is null and valuation is not assessable.
func (s *Service) Value(ctx context.Context, record *models.StandardizedRecord) (*models.CompositeValuation, error) {
	if record == nil {
		return nil, fmt.Errorf("value: nil record")
	}

	sector := record.Sector()
	weights := weightsFor(s.tables, sector)
	in := gather(record)

	var stats *models.IndustryStats
	if s.stats != nil {
		industry := record.Industry()
		if industry == "" {
			industry = sector
		}
		stats, _ = s.stats.IndustryStats(industry)
	}

	out := &models.CompositeValuation{
		Symbol:       record.Symbol,
		Sector:       sector,
		CurrentPrice: in.price,
	}

	results := make([]models.ValuationModelResult, 0, len(models.ValuationMethods))
	var availableWeight float64
	for _, name := range models.ValuationMethods {
		r := models.ValuationModelResult{
			Method:     name,
			BaseWeight: weights[name],
		}
		if fv := methodTable[name](in, stats); fv != nil {
			r.FairValue = fv
			availableWeight += r.BaseWeight
		} else {
			r.Excluded = true
			r.ExcludeReason = "inputs unavailable or inapplicable"
		}
		results = append(results, r)
	}

	var fair float64
	blended := false
	if availableWeight > 0 {
		for i := range results {
			r := &results[i]
			if r.Excluded {
				continue
			}
			r.BlendWeight = r.BaseWeight / availableWeight
			fair += r.BlendWeight * *r.FairValue
		}
		blended = fair > 0
	}
	out.Methods = results

	if !blended {
		out.Warnings = append(out.Warnings, "no valuation method applicable")
		s.logger.Debug().Str("symbol", record.Symbol).Msg("valuation not assessable")
		return out, nil
	}

	out.FairValue = &fair
	if in.price != nil && fair > 0 {
		dev := (*in.price - fair) / fair
		out.DeviationPct = &dev
		switch {
		case dev <= -s.fairBandPct:
			out.Verdict = models.VerdictUndervalued
		case dev >= s.fairBandPct:
			out.Verdict = models.VerdictOvervalued
		default:
			out.Verdict = models.VerdictFair
		}
	}

	s.logger.Debug().
		Str("symbol", record.Symbol).
		Str("sector", sector).
		Float64("fair_value", fair).
		Str("verdict", out.Verdict).
		Msg("blended valuation")
	return out, nil
}
