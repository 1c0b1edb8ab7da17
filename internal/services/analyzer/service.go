// Package analyzer runs the full pipeline: fuse, assess, normalize, score,
// value, persist.
package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/verdict/internal/common"
	"github.com/bobmcallan/verdict/internal/interfaces"
	"github.com/bobmcallan/verdict/internal/models"
	"github.com/bobmcallan/verdict/internal/services/scoring"
)

// Service orchestrates one symbol's analysis end to end. Each call owns its
// record, so concurrent calls need no locking beyond the shared caches.
type Service struct {
	fusion      interfaces.FusionService
	gaps        interfaces.GapAnalyzer
	normalizer  interfaces.NormalizerService
	scorer      interfaces.ScoringService
	valuer      interfaces.ValuationService
	bench       interfaces.BenchmarkService
	storage     interfaces.StorageManager
	logger      *common.Logger
	concurrency int
	reportTTL   time.Duration
}

// NewService wires the pipeline services together.
func NewService(
	fusionSvc interfaces.FusionService,
	gaps interfaces.GapAnalyzer,
	normalizer interfaces.NormalizerService,
	scorer interfaces.ScoringService,
	valuer interfaces.ValuationService,
	bench interfaces.BenchmarkService,
	storage interfaces.StorageManager,
	concurrency int,
	logger *common.Logger,
) *Service {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		fusion:      fusionSvc,
		gaps:        gaps,
		normalizer:  normalizer,
		scorer:      scorer,
		valuer:      valuer,
		bench:       bench,
		storage:     storage,
		logger:      logger,
		concurrency: concurrency,
		reportTTL:   common.FreshnessReport,
	}
}

// Analyze runs the pipeline for one symbol. Unless force is set, a fresh
// cached report short-circuits the run.
func (s *Service) Analyze(ctx context.Context, symbol string, force bool) (*models.AnalysisReport, error) {
	if symbol == "" {
		return nil, fmt.Errorf("analyze: empty symbol")
	}

	if !force && s.storage != nil {
		if cached, err := s.storage.ReportStore().GetLatestReport(ctx, symbol); err == nil && cached != nil {
			if common.IsFresh(cached.GeneratedAt, s.reportTTL) {
				s.logger.Debug().Str("symbol", symbol).Msg("returning cached report")
				return cached, nil
			}
		}
	}

	started := time.Now()
	report := &models.AnalysisReport{
		RunID:       uuid.NewString(),
		Symbol:      symbol,
		GeneratedAt: started.UTC(),
	}

	record, err := s.fusion.Fuse(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("fuse %s: %w", symbol, err)
	}
	report.Record = record

	if err := s.normalizer.Normalize(ctx, record); err != nil {
		return nil, fmt.Errorf("normalize %s: %w", symbol, err)
	}
	if record.FXUnavailable {
		report.Warnings = append(report.Warnings, "FX rate unavailable, some fields unconverted")
	}

	// completeness reflects the post-normalization record
	report.Scoring = s.gaps.Assess(record, models.StageScoring)
	report.Valuation = s.gaps.Assess(record, models.StageValuation)
	if report.Scoring.Reliability != models.ReliabilityFull {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("scoring reliability %s: missing %v", report.Scoring.Reliability, report.Scoring.Missing))
	}
	if report.Valuation.Reliability != models.ReliabilityFull {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("valuation reliability %s: missing %v", report.Valuation.Reliability, report.Valuation.Missing))
	}

	score, err := s.scorer.Score(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("score %s: %w", symbol, err)
	}
	report.Score = score
	report.Benchmarks = s.collectBenchmarks(record)

	valuation, err := s.valuer.Value(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("value %s: %w", symbol, err)
	}
	report.FairValue = valuation

	report.Elapsed = time.Since(started)

	if s.storage != nil {
		if err := s.storage.RecordStore().SaveRecord(ctx, record); err != nil {
			s.logger.Warn().Err(err).Str("symbol", symbol).Msg("failed to persist record")
		}
		if err := s.storage.ReportStore().SaveReport(ctx, report); err != nil {
			s.logger.Warn().Err(err).Str("symbol", symbol).Msg("failed to persist report")
		}
	}

	s.logger.Info().
		Str("symbol", symbol).
		Str("run_id", report.RunID).
		Float64("score", score.Score).
		Str("verdict", valuation.Verdict).
		Dur("elapsed", report.Elapsed).
		Msg("analysis complete")
	return report, nil
}

// collectBenchmarks snapshots the sector curves the percentile metrics scored
// against. The synthesizer caches per industry so these lookups are free.
func (s *Service) collectBenchmarks(record *models.StandardizedRecord) []*models.SectorBenchmarkDistribution {
	if s.bench == nil {
		return nil
	}
	industry := record.Industry()
	if industry == "" {
		industry = record.Sector()
	}
	if industry == "" {
		return nil
	}
	var out []*models.SectorBenchmarkDistribution
	for _, metric := range scoring.PercentileMetricNames() {
		dist, err := s.bench.Synthesize(industry, metric)
		if err != nil {
			continue
		}
		out = append(out, dist)
	}
	return out
}
