package badger

import (
	"context"
	"fmt"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/verdict/internal/common"
	"github.com/bobmcallan/verdict/internal/models"
)

type reportStorage struct {
	store  *Store
	logger *common.Logger
}

// NewReportStorage creates a ReportStore backed by BadgerHold. Reports are
// keyed by symbol and run so scan history survives re-analysis.
func NewReportStorage(store *Store, logger *common.Logger) *reportStorage {
	return &reportStorage{store: store, logger: logger}
}

func reportKey(symbol, runID string) string {
	return symbol + "/" + runID
}

func (s *reportStorage) GetLatestReport(_ context.Context, symbol string) (*models.AnalysisReport, error) {
	var reports []models.AnalysisReport
	query := badgerhold.Where("Symbol").Eq(symbol).Index("Symbol").
		SortBy("GeneratedAt").Reverse().Limit(1)
	if err := s.store.db.Find(&reports, query); err != nil {
		return nil, fmt.Errorf("failed to query reports for '%s': %w", symbol, err)
	}
	if len(reports) == 0 {
		return nil, fmt.Errorf("no report for '%s'", symbol)
	}
	return &reports[0], nil
}

func (s *reportStorage) GetReportByRun(_ context.Context, runID string) ([]*models.AnalysisReport, error) {
	var reports []models.AnalysisReport
	query := badgerhold.Where("RunID").Eq(runID).Index("RunID").SortBy("Symbol")
	if err := s.store.db.Find(&reports, query); err != nil {
		return nil, fmt.Errorf("failed to query reports for run '%s': %w", runID, err)
	}
	out := make([]*models.AnalysisReport, len(reports))
	for i := range reports {
		out[i] = &reports[i]
	}
	return out, nil
}

func (s *reportStorage) SaveReport(_ context.Context, report *models.AnalysisReport) error {
	if report == nil || report.Symbol == "" || report.RunID == "" {
		return fmt.Errorf("cannot save report without symbol and run id")
	}
	if err := s.store.db.Upsert(reportKey(report.Symbol, report.RunID), report); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	s.logger.Debug().Str("symbol", report.Symbol).Str("run_id", report.RunID).Msg("Report saved")
	return nil
}

func (s *reportStorage) DeleteReports(_ context.Context, symbol string) (int, error) {
	query := badgerhold.Where("Symbol").Eq(symbol).Index("Symbol")
	var reports []models.AnalysisReport
	if err := s.store.db.Find(&reports, query); err != nil {
		return 0, fmt.Errorf("failed to query reports for '%s': %w", symbol, err)
	}
	if len(reports) == 0 {
		return 0, nil
	}
	if err := s.store.db.DeleteMatching(&models.AnalysisReport{}, query); err != nil {
		return 0, fmt.Errorf("failed to delete reports for '%s': %w", symbol, err)
	}
	s.logger.Debug().Str("symbol", symbol).Int("count", len(reports)).Msg("Reports deleted")
	return len(reports), nil
}
