package models

import "time"

// AnalysisReport bundles every pipeline stage output for one symbol. This is
// the unit persisted to storage and returned by the analyze endpoint.
type AnalysisReport struct {
	RunID       string                  `json:"run_id" badgerhold:"index"`
	Symbol      string                  `json:"symbol" badgerhold:"index"`
	GeneratedAt time.Time               `json:"generated_at"`
	Record      *StandardizedRecord     `json:"record,omitempty"`
	Scoring     *CompletenessReport     `json:"scoring_completeness,omitempty"`
	Valuation   *CompletenessReport     `json:"valuation_completeness,omitempty"`
	Score       *CompositeScore         `json:"score,omitempty"`
	FairValue   *CompositeValuation     `json:"fair_value,omitempty"`
	Benchmarks  []*SectorBenchmarkDistribution `json:"benchmarks,omitempty"`
	Warnings    []string                `json:"warnings,omitempty"`
	Elapsed     time.Duration           `json:"elapsed"`
}

// ScanFailure records one symbol that could not be analyzed during a batch.
type ScanFailure struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

// ScanResult is the outcome of a batch analysis run.
type ScanResult struct {
	RunID       string            `json:"run_id"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt time.Time         `json:"completed_at"`
	Reports     []*AnalysisReport `json:"reports"`
	Failures    []ScanFailure     `json:"failures,omitempty"`
}
