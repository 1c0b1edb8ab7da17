package fmp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/verdict/internal/interfaces"
	"github.com/bobmcallan/verdict/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-key", WithBaseURL(srv.URL), WithRateLimit(1000))
}

func TestFetchRaw(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		switch {
		case r.URL.Path == "/profile/MSFT":
			w.Write([]byte(`[{"companyName": "Microsoft", "sector": "Technology", "currency": "USD", "mktCap": 3100000000000}]`))
		case r.URL.Path == "/income-statement/MSFT":
			assert.Equal(t, "annual", r.URL.Query().Get("period"))
			w.Write([]byte(`[
				{"date": "2025-06-30", "reportedCurrency": "USD", "revenue": 270000000000, "netIncome": 97000000000},
				{"date": "2024-06-30", "reportedCurrency": "USD", "revenue": 245122000000, "netIncome": 88136000000}
			]`))
		case r.URL.Path == "/balance-sheet-statement/MSFT":
			w.Write([]byte(`[{"date": "2025-06-30", "totalAssets": 520000000000}]`))
		case r.URL.Path == "/cash-flow-statement/MSFT":
			w.Write([]byte(`[]`))
		case r.URL.Path == "/price-target-consensus/MSFT":
			w.Write([]byte(`[{"targetConsensus": 520.0, "targetHigh": 600.0, "targetLow": 440.0}]`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	// exchange suffix gets stripped for FMP
	payload, err := c.FetchRaw(context.Background(), "MSFT.US")
	require.NoError(t, err)

	assert.Equal(t, models.SourceFMP, payload.Source)
	assert.Equal(t, "MSFT.US", payload.Symbol)
	assert.Equal(t, "USD", payload.Currency)

	require.Len(t, payload.Income, 2)
	assert.Equal(t, "2025-06-30", payload.Income[0].Period)
	assert.True(t, payload.Income[0].Annual)

	require.NotNil(t, payload.Forecast)
	assert.Equal(t, 520.0, payload.Forecast["targetConsensus"])
}

func TestFetchRaw_EmptyProfileIsNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	_, err := c.FetchRaw(context.Background(), "GHOST")
	assert.ErrorIs(t, err, interfaces.ErrSymbolNotFound)
}

func TestFetchRaw_ServerErrorIsTransient(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	})

	_, err := c.FetchRaw(context.Background(), "MSFT")
	assert.True(t, interfaces.IsTransient(err))
}

func TestFetchRaw_MissingTargetsTolerated(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/profile/MSFT":
			w.Write([]byte(`[{"companyName": "Microsoft", "currency": "USD"}]`))
		case r.URL.Path == "/price-target-consensus/MSFT":
			http.Error(w, "forbidden", http.StatusForbidden)
		default:
			w.Write([]byte(`[]`))
		}
	})

	payload, err := c.FetchRaw(context.Background(), "MSFT")
	require.NoError(t, err)
	assert.Nil(t, payload.Forecast)
}
