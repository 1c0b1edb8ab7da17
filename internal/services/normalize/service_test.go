package normalize

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/verdict/internal/models"
)

type fakeFX struct {
	rate  float64
	err   error
	calls int
}

func (f *fakeFX) Rate(ctx context.Context, base, quote string, date time.Time) (float64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.rate, nil
}

func foreignRecord() *models.StandardizedRecord {
	revenue := models.NewField(1_000_000_000, models.SourceEODHD)
	revenue.Currency = "DKK"
	return &models.StandardizedRecord{
		Symbol: "NVO.US",
		Income: []*models.IncomeStatement{
			{Period: "2025-12-31", Annual: true, Revenue: revenue},
		},
		Profile: &models.CompanyProfile{
			ReportingCurrency: &models.TextField{Value: "DKK", Source: models.SourceEODHD},
			ListingCurrency:   &models.TextField{Value: "USD", Source: models.SourceEODHD},
		},
	}
}

func TestNormalize_ConvertsMonetaryFields(t *testing.T) {
	fx := &fakeFX{rate: 0.13}
	svc := NewService(fx, nil)

	record := foreignRecord()
	require.NoError(t, svc.Normalize(context.Background(), record))

	got := record.Income[0].Revenue
	assert.Equal(t, 130_000_000.0, got.Value)
	assert.Equal(t, "USD", got.Currency)
	assert.Equal(t, models.SourceNormalized, got.Source)
	assert.Equal(t, 0.13, record.FXRate)
	assert.True(t, record.Normalized)
}

func TestNormalize_Idempotent(t *testing.T) {
	fx := &fakeFX{rate: 0.13}
	svc := NewService(fx, nil)

	record := foreignRecord()
	require.NoError(t, svc.Normalize(context.Background(), record))
	require.NoError(t, svc.Normalize(context.Background(), record))

	assert.Equal(t, 130_000_000.0, record.Income[0].Revenue.Value, "second pass must not reconvert")
	assert.Equal(t, 1, fx.calls, "FX should only be consulted once")
}

func TestNormalize_SameCurrencyNoop(t *testing.T) {
	fx := &fakeFX{rate: 2.0}
	svc := NewService(fx, nil)

	record := foreignRecord()
	record.Profile.ReportingCurrency.Value = "USD"

	require.NoError(t, svc.Normalize(context.Background(), record))
	assert.Equal(t, 1_000_000_000.0, record.Income[0].Revenue.Value)
	assert.Equal(t, 0, fx.calls)
	assert.True(t, record.Normalized)
}

func TestNormalize_MissingRateDowngradesConfidence(t *testing.T) {
	fx := &fakeFX{err: errors.New("no fix for date")}
	svc := NewService(fx, nil)

	record := foreignRecord()
	require.NoError(t, svc.Normalize(context.Background(), record))

	got := record.Income[0].Revenue
	assert.Equal(t, 1_000_000_000.0, got.Value, "value must stay unconverted")
	assert.Equal(t, "DKK", got.Currency)
	assert.True(t, got.LowConfidence)
	assert.True(t, record.FXUnavailable)
	assert.True(t, record.Normalized, "record still completes the pass")
}

func drRecord(providerShares float64) *models.StandardizedRecord {
	record := &models.StandardizedRecord{
		Symbol: "TSM.US",
		Income: []*models.IncomeStatement{
			{Period: "2025-12-31", Annual: true,
				NetIncome: models.NewField(40_000_000_000, models.SourceEODHD)},
		},
		Balance: []*models.BalanceSheet{
			{Period: "2025-12-31", Annual: true,
				ShareholderEquity: models.NewField(120_000_000_000, models.SourceEODHD)},
		},
		Profile: &models.CompanyProfile{
			SecurityType:      &models.TextField{Value: "ADR", Source: models.SourceEODHD},
			ReportingCurrency: &models.TextField{Value: "USD", Source: models.SourceEODHD},
			ListingCurrency:   &models.TextField{Value: "USD", Source: models.SourceEODHD},
			MarketCap:         models.NewField(1_000_000_000_000, models.SourceEODHD),
			Price:             models.NewField(200, models.SourceEODHD),
		},
	}
	if providerShares > 0 {
		record.Profile.SharesOutstanding = models.NewField(providerShares, models.SourceEODHD)
	}
	return record
}

func TestNormalize_DepositaryReceiptImpliedShares(t *testing.T) {
	svc := NewService(nil, nil)

	// provider count wildly off: 26x the implied 5B shares
	record := drRecord(130_000_000_000)
	require.NoError(t, svc.Normalize(context.Background(), record))

	require.NotNil(t, record.Profile.SharesOutstanding)
	assert.Equal(t, 5_000_000_000.0, record.Profile.SharesOutstanding.Value)
	assert.Equal(t, models.SourceDerived, record.Profile.SharesOutstanding.Source)
	assert.Equal(t, 5_000_000_000.0, record.ImpliedShares)

	// per-share fields re-derived from absolutes
	require.NotNil(t, record.Income[0].EPS)
	assert.Equal(t, 8.0, record.Income[0].EPS.Value)
	require.NotNil(t, record.Profile.BookValuePerShare)
	assert.Equal(t, 24.0, record.Profile.BookValuePerShare.Value)
}

func TestNormalize_DepositaryReceiptBallparkKeepsProvider(t *testing.T) {
	svc := NewService(nil, nil)

	// provider count within 0.5-1.5x of implied: trusted
	record := drRecord(5_200_000_000)
	require.NoError(t, svc.Normalize(context.Background(), record))

	assert.Equal(t, 5_200_000_000.0, record.Profile.SharesOutstanding.Value)
	assert.Equal(t, models.SourceEODHD, record.Profile.SharesOutstanding.Source)
	assert.False(t, record.Profile.SharesOutstanding.LowConfidence)
}

func TestNormalize_CommonStockSharesUntouched(t *testing.T) {
	svc := NewService(nil, nil)

	record := drRecord(130_000_000_000)
	record.Profile.SecurityType.Value = "Common Stock"

	require.NoError(t, svc.Normalize(context.Background(), record))
	assert.Equal(t, 130_000_000_000.0, record.Profile.SharesOutstanding.Value)
	assert.Nil(t, record.Income[0].EPS, "no per-share recompute for common stock")
}
