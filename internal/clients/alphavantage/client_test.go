package alphavantage

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
		assert.Equal(t, "/query", r.URL.Path)
		assert.Equal(t, "IBM", r.URL.Query().Get("symbol"))
		switch r.URL.Query().Get("function") {
		case "OVERVIEW":
			w.Write([]byte(`{"Name": "IBM", "Sector": "Technology", "Currency": "USD", "MarketCapitalization": "170000000000"}`))
		case "INCOME_STATEMENT":
			w.Write([]byte(`{
				"symbol": "IBM",
				"annualReports": [
					{"fiscalDateEnding": "2025-12-31", "totalRevenue": "62800000000", "netIncome": "6020000000"},
					{"fiscalDateEnding": "2024-12-31", "totalRevenue": "62753000000", "netIncome": "6023000000"}
				],
				"quarterlyReports": [
					{"fiscalDateEnding": "2026-03-31", "totalRevenue": "14500000000"}
				]
			}`))
		case "BALANCE_SHEET", "CASH_FLOW":
			w.Write([]byte(`{"symbol": "IBM", "annualReports": []}`))
		default:
			t.Errorf("unexpected function %s", r.URL.Query().Get("function"))
		}
	})

	payload, err := c.FetchRaw(context.Background(), "IBM.US")
	require.NoError(t, err)

	assert.Equal(t, models.SourceAlphaVantage, payload.Source)
	assert.Equal(t, "USD", payload.Currency)

	require.Len(t, payload.Income, 3)
	assert.Equal(t, "2025-12-31", payload.Income[0].Period)
	assert.True(t, payload.Income[0].Annual)
	assert.False(t, payload.Income[2].Annual)

	// values stay as strings, coercion is the registry's job
	assert.Equal(t, "62800000000", payload.Income[0].Fields["totalRevenue"])
}

func TestFetchRaw_ErrorMessageIsNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Error Message": "Invalid API call"}`))
	})

	_, err := c.FetchRaw(context.Background(), "GHOST")
	assert.ErrorIs(t, err, interfaces.ErrSymbolNotFound)
}

func TestFetchRaw_ThrottleNoteIsTransient(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Note": "Thank you for using Alpha Vantage! Our standard API rate limit is 5 requests per minute."}`))
	})

	_, err := c.FetchRaw(context.Background(), "IBM")
	assert.True(t, interfaces.IsTransient(err), "throttle note should be transient: %v", err)
}

func TestFetchRaw_EmptyOverviewIsNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	_, err := c.FetchRaw(context.Background(), "GHOST")
	assert.ErrorIs(t, err, interfaces.ErrSymbolNotFound)
}
