// Package interfaces defines service contracts for Verdict
package interfaces

import (
	"context"

	"github.com/bobmcallan/verdict/internal/models"
)

// StorageManager coordinates all storage backends
type StorageManager interface {
	RecordStore() RecordStore
	ReportStore() ReportStore

	// Lifecycle
	Close() error
}

// RecordStore persists fused records keyed by symbol.
type RecordStore interface {
	GetRecord(ctx context.Context, symbol string) (*models.StandardizedRecord, error)
	SaveRecord(ctx context.Context, record *models.StandardizedRecord) error
	DeleteRecord(ctx context.Context, symbol string) error
	ListSymbols(ctx context.Context) ([]string, error)
}

// ReportStore persists analysis reports. The latest report per symbol is the
// primary read path; history is kept by run ID.
type ReportStore interface {
	GetLatestReport(ctx context.Context, symbol string) (*models.AnalysisReport, error)
	GetReportByRun(ctx context.Context, runID string) ([]*models.AnalysisReport, error)
	SaveReport(ctx context.Context, report *models.AnalysisReport) error
	DeleteReports(ctx context.Context, symbol string) (int, error)
}
