// Package interfaces defines service contracts for Verdict
package interfaces

import (
	"context"

	"github.com/bobmcallan/verdict/internal/models"
)

// FusionService assembles a standardized record from the provider cascade.
type FusionService interface {
	// Fuse runs the tier cascade for a symbol. Lower tiers are only
	// consulted while the record still has gaps for their fields.
	Fuse(ctx context.Context, symbol string) (*models.StandardizedRecord, error)
}

// GapAnalyzer reports how complete a record is for a pipeline stage.
type GapAnalyzer interface {
	// Assess inspects a record against a stage's required field set.
	Assess(record *models.StandardizedRecord, stage models.Stage) *models.CompletenessReport
}

// NormalizerService converts a record to a single working currency and
// repairs depositary receipt share counts.
type NormalizerService interface {
	// Normalize rewrites monetary fields into the listing currency. It is
	// idempotent: a record already normalized passes through unchanged.
	Normalize(ctx context.Context, record *models.StandardizedRecord) error
}

// BenchmarkService produces sector-relative percentile curves.
type BenchmarkService interface {
	// Synthesize builds (or returns a cached) distribution curve for one
	// metric within an industry.
	Synthesize(industry string, metric string) (*models.SectorBenchmarkDistribution, error)
}

// ScoringService turns a normalized record into a composite quality score.
type ScoringService interface {
	// Score evaluates every metric category and blends them into a 0-100
	// composite with full per-metric breakdown.
	Score(ctx context.Context, record *models.StandardizedRecord) (*models.CompositeScore, error)
}

// ValuationService estimates fair value through a blend of models.
type ValuationService interface {
	// Value runs every applicable valuation method and blends the results
	// with sector weights.
	Value(ctx context.Context, record *models.StandardizedRecord) (*models.CompositeValuation, error)
}

// AnalyzerService runs the full pipeline end to end.
type AnalyzerService interface {
	// Analyze fuses, normalizes, scores, and values one symbol. When force
	// is false a fresh cached report is returned instead.
	Analyze(ctx context.Context, symbol string, force bool) (*models.AnalysisReport, error)

	// Scan analyzes a batch of symbols concurrently. Failed symbols are
	// reported in the result rather than aborting the batch.
	Scan(ctx context.Context, symbols []string, force bool) (*models.ScanResult, error)
}
