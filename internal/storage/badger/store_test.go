package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/verdict/internal/common"
	"github.com/bobmcallan/verdict/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(common.NewSilentLogger(), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordStorage_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	records := NewRecordStorage(store, common.NewSilentLogger())
	ctx := context.Background()

	record := &models.StandardizedRecord{
		Symbol:  "AAPL.US",
		FusedAt: time.Now().UTC(),
	}
	require.NoError(t, records.SaveRecord(ctx, record))

	got, err := records.GetRecord(ctx, "AAPL.US")
	require.NoError(t, err)
	assert.Equal(t, "AAPL.US", got.Symbol)

	_, err = records.GetRecord(ctx, "MSFT.US")
	assert.Error(t, err)
}

func TestRecordStorage_UpsertReplaces(t *testing.T) {
	store := newTestStore(t)
	records := NewRecordStorage(store, common.NewSilentLogger())
	ctx := context.Background()

	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	second := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, records.SaveRecord(ctx, &models.StandardizedRecord{Symbol: "NVO.US", FusedAt: first}))
	require.NoError(t, records.SaveRecord(ctx, &models.StandardizedRecord{Symbol: "NVO.US", FusedAt: second}))

	got, err := records.GetRecord(ctx, "NVO.US")
	require.NoError(t, err)
	assert.True(t, got.FusedAt.Equal(second))

	symbols, err := records.ListSymbols(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"NVO.US"}, symbols)
}

func TestRecordStorage_SaveRejectsEmptySymbol(t *testing.T) {
	store := newTestStore(t)
	records := NewRecordStorage(store, common.NewSilentLogger())

	err := records.SaveRecord(context.Background(), &models.StandardizedRecord{})
	assert.Error(t, err)
}

func TestRecordStorage_DeleteIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	records := NewRecordStorage(store, common.NewSilentLogger())
	ctx := context.Background()

	require.NoError(t, records.SaveRecord(ctx, &models.StandardizedRecord{Symbol: "IBM.US"}))
	require.NoError(t, records.DeleteRecord(ctx, "IBM.US"))
	require.NoError(t, records.DeleteRecord(ctx, "IBM.US"))

	symbols, err := records.ListSymbols(ctx)
	require.NoError(t, err)
	assert.Empty(t, symbols)
}

func TestReportStorage_LatestWinsByGeneratedAt(t *testing.T) {
	store := newTestStore(t)
	reports := NewReportStorage(store, common.NewSilentLogger())
	ctx := context.Background()

	older := &models.AnalysisReport{
		RunID:       "run-1",
		Symbol:      "AAPL.US",
		GeneratedAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}
	newer := &models.AnalysisReport{
		RunID:       "run-2",
		Symbol:      "AAPL.US",
		GeneratedAt: time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, reports.SaveReport(ctx, older))
	require.NoError(t, reports.SaveReport(ctx, newer))

	latest, err := reports.GetLatestReport(ctx, "AAPL.US")
	require.NoError(t, err)
	assert.Equal(t, "run-2", latest.RunID)
}

func TestReportStorage_GetReportByRun(t *testing.T) {
	store := newTestStore(t)
	reports := NewReportStorage(store, common.NewSilentLogger())
	ctx := context.Background()

	now := time.Now().UTC()
	for _, symbol := range []string{"MSFT.US", "AAPL.US", "IBM.US"} {
		require.NoError(t, reports.SaveReport(ctx, &models.AnalysisReport{
			RunID:       "scan-1",
			Symbol:      symbol,
			GeneratedAt: now,
		}))
	}
	require.NoError(t, reports.SaveReport(ctx, &models.AnalysisReport{
		RunID:       "scan-2",
		Symbol:      "AAPL.US",
		GeneratedAt: now,
	}))

	batch, err := reports.GetReportByRun(ctx, "scan-1")
	require.NoError(t, err)
	require.Len(t, batch, 3)
	assert.Equal(t, "AAPL.US", batch[0].Symbol)
	assert.Equal(t, "IBM.US", batch[1].Symbol)
	assert.Equal(t, "MSFT.US", batch[2].Symbol)
}

func TestReportStorage_DeleteReportsCounts(t *testing.T) {
	store := newTestStore(t)
	reports := NewReportStorage(store, common.NewSilentLogger())
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, reports.SaveReport(ctx, &models.AnalysisReport{RunID: "r1", Symbol: "NVO.US", GeneratedAt: now}))
	require.NoError(t, reports.SaveReport(ctx, &models.AnalysisReport{RunID: "r2", Symbol: "NVO.US", GeneratedAt: now}))
	require.NoError(t, reports.SaveReport(ctx, &models.AnalysisReport{RunID: "r1", Symbol: "AAPL.US", GeneratedAt: now}))

	count, err := reports.DeleteReports(ctx, "NVO.US")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	_, err = reports.GetLatestReport(ctx, "NVO.US")
	assert.Error(t, err)

	// other symbols untouched
	left, err := reports.GetLatestReport(ctx, "AAPL.US")
	require.NoError(t, err)
	assert.Equal(t, "r1", left.RunID)

	count, err = reports.DeleteReports(ctx, "NVO.US")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestReportStorage_SaveRejectsMissingKeys(t *testing.T) {
	store := newTestStore(t)
	reports := NewReportStorage(store, common.NewSilentLogger())

	assert.Error(t, reports.SaveReport(context.Background(), &models.AnalysisReport{Symbol: "AAPL.US"}))
	assert.Error(t, reports.SaveReport(context.Background(), &models.AnalysisReport{RunID: "r1"}))
}
