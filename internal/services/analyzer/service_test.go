package analyzer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/verdict/internal/interfaces"
	"github.com/bobmcallan/verdict/internal/models"
)

type fakeFusion struct {
	mu       sync.Mutex
	calls    int
	inUse    int
	maxInUse int
	delay    time.Duration
	errFor   map[string]error
}

func (f *fakeFusion) Fuse(ctx context.Context, symbol string) (*models.StandardizedRecord, error) {
	f.mu.Lock()
	f.calls++
	f.inUse++
	if f.inUse > f.maxInUse {
		f.maxInUse = f.inUse
	}
	err := f.errFor[symbol]
	f.mu.Unlock()

	if ctx.Err() != nil {
		f.mu.Lock()
		f.inUse--
		f.mu.Unlock()
		return nil, ctx.Err()
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	f.inUse--
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return &models.StandardizedRecord{Symbol: symbol}, nil
}

type fakeGaps struct {
	reliability models.Reliability
	missing     []string
}

func (f *fakeGaps) Assess(record *models.StandardizedRecord, stage models.Stage) *models.CompletenessReport {
	rel := f.reliability
	if rel == "" {
		rel = models.ReliabilityFull
	}
	return &models.CompletenessReport{
		Stage:       stage,
		Missing:     f.missing,
		Sufficient:  rel == models.ReliabilityFull,
		Reliability: rel,
	}
}

type fakeNormalizer struct {
	calls int
	err   error
}

func (f *fakeNormalizer) Normalize(ctx context.Context, record *models.StandardizedRecord) error {
	f.calls++
	return f.err
}

type fakeScorer struct{ err error }

func (f *fakeScorer) Score(ctx context.Context, record *models.StandardizedRecord) (*models.CompositeScore, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.CompositeScore{Symbol: record.Symbol, Score: 71.5}, nil
}

type fakeValuer struct{ err error }

func (f *fakeValuer) Value(ctx context.Context, record *models.StandardizedRecord) (*models.CompositeValuation, error) {
	if f.err != nil {
		return nil, f.err
	}
	fair := 110.0
	return &models.CompositeValuation{Symbol: record.Symbol, FairValue: &fair, Verdict: models.VerdictFair}, nil
}

type memStorage struct {
	mu      sync.Mutex
	records map[string]*models.StandardizedRecord
	reports map[string]*models.AnalysisReport
}

func newMemStorage() *memStorage {
	return &memStorage{
		records: make(map[string]*models.StandardizedRecord),
		reports: make(map[string]*models.AnalysisReport),
	}
}

func (m *memStorage) RecordStore() interfaces.RecordStore { return m }
func (m *memStorage) ReportStore() interfaces.ReportStore { return m }
func (m *memStorage) Close() error                        { return nil }

func (m *memStorage) GetRecord(ctx context.Context, symbol string) (*models.StandardizedRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.records[symbol]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("record not found: %s", symbol)
}

func (m *memStorage) SaveRecord(ctx context.Context, record *models.StandardizedRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.Symbol] = record
	return nil
}

func (m *memStorage) DeleteRecord(ctx context.Context, symbol string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, symbol)
	return nil
}

func (m *memStorage) ListSymbols(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.records))
	for s := range m.records {
		out = append(out, s)
	}
	return out, nil
}

func (m *memStorage) GetLatestReport(ctx context.Context, symbol string) (*models.AnalysisReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.reports[symbol]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("report not found: %s", symbol)
}

func (m *memStorage) GetReportByRun(ctx context.Context, runID string) ([]*models.AnalysisReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.AnalysisReport
	for _, r := range m.reports {
		if r.RunID == runID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStorage) SaveReport(ctx context.Context, report *models.AnalysisReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports[report.Symbol] = report
	return nil
}

func (m *memStorage) DeleteReports(ctx context.Context, symbol string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reports[symbol]; !ok {
		return 0, nil
	}
	delete(m.reports, symbol)
	return 1, nil
}

func newTestService(fusion *fakeFusion, gaps *fakeGaps, storage interfaces.StorageManager, concurrency int) (*Service, *fakeNormalizer) {
	if fusion == nil {
		fusion = &fakeFusion{}
	}
	if gaps == nil {
		gaps = &fakeGaps{}
	}
	norm := &fakeNormalizer{}
	return NewService(fusion, gaps, norm, &fakeScorer{}, &fakeValuer{}, nil, storage, concurrency, nil), norm
}

func TestAnalyze_FullPipeline(t *testing.T) {
	fusion := &fakeFusion{}
	storage := newMemStorage()
	svc, norm := newTestService(fusion, nil, storage, 1)

	report, err := svc.Analyze(context.Background(), "AAPL.US", false)
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "AAPL.US", report.Symbol)
	require.NotNil(t, report.Record)
	require.NotNil(t, report.Score)
	assert.InDelta(t, 71.5, report.Score.Score, 0.001)
	require.NotNil(t, report.FairValue)
	assert.Equal(t, models.VerdictFair, report.FairValue.Verdict)
	require.NotNil(t, report.Scoring)
	require.NotNil(t, report.Valuation)
	assert.Equal(t, 1, norm.calls)

	// both artifacts persisted
	_, err = storage.GetRecord(context.Background(), "AAPL.US")
	assert.NoError(t, err)
	saved, err := storage.GetLatestReport(context.Background(), "AAPL.US")
	require.NoError(t, err)
	assert.Equal(t, report.RunID, saved.RunID)
}

func TestAnalyze_ReducedReliabilityWarns(t *testing.T) {
	gaps := &fakeGaps{reliability: models.ReliabilityReduced, missing: []string{"ebitda"}}
	svc, _ := newTestService(nil, gaps, newMemStorage(), 1)

	report, err := svc.Analyze(context.Background(), "NVO.US", false)
	require.NoError(t, err)
	require.Len(t, report.Warnings, 2)
	assert.Contains(t, report.Warnings[0], "reduced")
	assert.Contains(t, report.Warnings[0], "ebitda")
}

func TestAnalyze_CachedReportShortCircuits(t *testing.T) {
	fusion := &fakeFusion{}
	storage := newMemStorage()
	svc, _ := newTestService(fusion, nil, storage, 1)

	cached := &models.AnalysisReport{
		RunID:       "cached-run",
		Symbol:      "MSFT.US",
		GeneratedAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, storage.SaveReport(context.Background(), cached))

	report, err := svc.Analyze(context.Background(), "MSFT.US", false)
	require.NoError(t, err)
	assert.Equal(t, "cached-run", report.RunID)
	assert.Equal(t, 0, fusion.calls)
}

func TestAnalyze_ForceBypassesCache(t *testing.T) {
	fusion := &fakeFusion{}
	storage := newMemStorage()
	svc, _ := newTestService(fusion, nil, storage, 1)

	cached := &models.AnalysisReport{
		RunID:       "cached-run",
		Symbol:      "MSFT.US",
		GeneratedAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, storage.SaveReport(context.Background(), cached))

	report, err := svc.Analyze(context.Background(), "MSFT.US", true)
	require.NoError(t, err)
	assert.NotEqual(t, "cached-run", report.RunID)
	assert.Equal(t, 1, fusion.calls)
}

func TestAnalyze_StaleCacheRefetches(t *testing.T) {
	fusion := &fakeFusion{}
	storage := newMemStorage()
	svc, _ := newTestService(fusion, nil, storage, 1)

	stale := &models.AnalysisReport{
		RunID:       "stale-run",
		Symbol:      "IBM.US",
		GeneratedAt: time.Now().Add(-48 * time.Hour),
	}
	require.NoError(t, storage.SaveReport(context.Background(), stale))

	report, err := svc.Analyze(context.Background(), "IBM.US", false)
	require.NoError(t, err)
	assert.NotEqual(t, "stale-run", report.RunID)
	assert.Equal(t, 1, fusion.calls)
}

func TestAnalyze_FusionErrorPropagates(t *testing.T) {
	fusion := &fakeFusion{errFor: map[string]error{
		"BOGUS.US": fmt.Errorf("symbol: %w", interfaces.ErrSymbolNotFound),
	}}
	svc, _ := newTestService(fusion, nil, newMemStorage(), 1)

	_, err := svc.Analyze(context.Background(), "BOGUS.US", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, interfaces.ErrSymbolNotFound))
}

func TestAnalyze_EmptySymbol(t *testing.T) {
	svc, _ := newTestService(nil, nil, newMemStorage(), 1)
	_, err := svc.Analyze(context.Background(), "", false)
	assert.Error(t, err)
}

func TestScan_CollectsFailures(t *testing.T) {
	fusion := &fakeFusion{errFor: map[string]error{
		"BAD.US":  fmt.Errorf("lookup: %w", interfaces.ErrSymbolNotFound),
		"FLAK.US": &interfaces.TransientError{Err: fmt.Errorf("status 502")},
	}}
	svc, _ := newTestService(fusion, nil, newMemStorage(), 2)

	result, err := svc.Scan(context.Background(), []string{"AAPL.US", "BAD.US", "FLAK.US", "MSFT.US"}, false)
	require.NoError(t, err)

	require.Len(t, result.Reports, 2)
	assert.Equal(t, "AAPL.US", result.Reports[0].Symbol)
	assert.Equal(t, "MSFT.US", result.Reports[1].Symbol)

	require.Len(t, result.Failures, 2)
	assert.Equal(t, "BAD.US", result.Failures[0].Symbol)
	assert.Equal(t, "symbol not found", result.Failures[0].Reason)
	assert.Equal(t, "FLAK.US", result.Failures[1].Symbol)
	assert.Equal(t, "transient provider failure", result.Failures[1].Reason)

	assert.NotEmpty(t, result.RunID)
	assert.False(t, result.CompletedAt.Before(result.StartedAt))
}

func TestScan_BoundsConcurrency(t *testing.T) {
	fusion := &fakeFusion{delay: 20 * time.Millisecond}
	svc, _ := newTestService(fusion, nil, newMemStorage(), 2)

	symbols := []string{"A.US", "B.US", "C.US", "D.US", "E.US", "F.US"}
	result, err := svc.Scan(context.Background(), symbols, false)
	require.NoError(t, err)
	assert.Len(t, result.Reports, 6)
	assert.LessOrEqual(t, fusion.maxInUse, 2)
}

func TestScan_EmptyBatch(t *testing.T) {
	svc, _ := newTestService(nil, nil, newMemStorage(), 4)
	result, err := svc.Scan(context.Background(), nil, false)
	require.NoError(t, err)
	assert.Empty(t, result.Reports)
	assert.Empty(t, result.Failures)
}

func TestScan_ContextCancelAborts(t *testing.T) {
	fusion := &fakeFusion{delay: 50 * time.Millisecond}
	svc, _ := newTestService(fusion, nil, newMemStorage(), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Scan(ctx, []string{"A.US", "B.US"}, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
