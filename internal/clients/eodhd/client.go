// Package eodhd provides a client for the EODHD API
package eodhd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/verdict/internal/common"
	"github.com/bobmcallan/verdict/internal/interfaces"
	"github.com/bobmcallan/verdict/internal/models"
)

const (
	DefaultBaseURL   = "https://eodhd.com/api"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second
)

// Client implements the SourceClient and FXClient interfaces against EODHD.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new EODHD client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Source identifies this client in the tier cascade.
func (c *Client) Source() models.Source {
	return models.SourceEODHD
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("EODHD API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("EODHD API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &interfaces.TransientError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
		switch {
		case resp.StatusCode == http.StatusNotFound:
			return fmt.Errorf("%s: %w", path, interfaces.ErrSymbolNotFound)
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return &interfaces.TransientError{Err: apiErr}
		default:
			return apiErr
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// FetchRaw retrieves the full fundamentals document for a symbol and reshapes
// it into the provider-neutral envelope. Field names stay as EODHD emits
// them; the registry owns the mapping to canonical names.
func (c *Client) FetchRaw(ctx context.Context, symbol string) (*models.RawPayload, error) {
	var doc map[string]any
	if err := c.get(ctx, "/fundamentals/"+url.PathEscape(symbol), nil, &doc); err != nil {
		return nil, err
	}
	if len(doc) == 0 {
		return nil, fmt.Errorf("fundamentals %s: %w", symbol, interfaces.ErrSymbolNotFound)
	}

	payload := &models.RawPayload{
		Source:   models.SourceEODHD,
		Symbol:   symbol,
		Profile:  doc,
		Forecast: subMap(doc, "Highlights"),
		Currency: statementCurrency(doc),
	}

	financials := subMap(doc, "Financials")
	epsByDate := earningsByDate(doc)

	payload.Income = statements(subMap(financials, "Income_Statement"), epsByDate)
	payload.Balance = statements(subMap(financials, "Balance_Sheet"), nil)
	payload.CashFlow = statements(subMap(financials, "Cash_Flow"), nil)

	return payload, nil
}

// statements flattens the yearly and quarterly maps of one statement block
// into a most-recent-first slice. extra values are merged in by period date.
func statements(block map[string]any, extra map[string]map[string]any) []models.RawStatement {
	var out []models.RawStatement
	for _, group := range []struct {
		key    string
		annual bool
	}{
		{"yearly", true},
		{"quarterly", false},
	} {
		byDate := subMap(block, group.key)
		for date, v := range byDate {
			fields, ok := v.(map[string]any)
			if !ok {
				continue
			}
			if more, ok := extra[date]; ok {
				for k, mv := range more {
					if _, exists := fields[k]; !exists {
						fields[k] = mv
					}
				}
			}
			out = append(out, models.RawStatement{
				Period: date,
				Annual: group.annual,
				Fields: fields,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Annual != out[j].Annual {
			return out[i].Annual
		}
		return out[i].Period > out[j].Period
	})
	return out
}

// earningsByDate extracts actual EPS from the Earnings history so income
// statements carry a per-period EPS like other providers.
func earningsByDate(doc map[string]any) map[string]map[string]any {
	history := subMap(subMap(doc, "Earnings"), "History")
	if len(history) == 0 {
		return nil
	}
	out := make(map[string]map[string]any, len(history))
	for date, v := range history {
		entry, ok := v.(map[string]any)
		if !ok {
			continue
		}
		if eps, ok := entry["epsActual"]; ok && eps != nil {
			out[date] = map[string]any{"epsActual": eps}
		}
	}
	return out
}

func statementCurrency(doc map[string]any) string {
	financials := subMap(doc, "Financials")
	for _, section := range []string{"Income_Statement", "Balance_Sheet", "Cash_Flow"} {
		if cur, ok := subMap(financials, section)["currency_symbol"].(string); ok && cur != "" {
			return strings.ToUpper(cur)
		}
	}
	if cur, ok := subMap(doc, "General")["CurrencyCode"].(string); ok {
		return strings.ToUpper(cur)
	}
	return ""
}

func subMap(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	sub, _ := m[key].(map[string]any)
	return sub
}

// Rate returns the latest base→quote FX fix from the FOREX feed.
func (c *Client) Rate(ctx context.Context, base, quote string, date time.Time) (float64, error) {
	base = strings.ToUpper(base)
	quote = strings.ToUpper(quote)
	if base == quote {
		return 1.0, nil
	}

	params := url.Values{}
	params.Set("order", "d")
	params.Set("limit", "1")
	if !date.IsZero() {
		params.Set("to", date.Format("2006-01-02"))
	}

	pair := fmt.Sprintf("%s%s.FOREX", base, quote)
	var bars []struct {
		Date  string  `json:"date"`
		Close float64 `json:"close"`
	}
	if err := c.get(ctx, "/eod/"+pair, params, &bars); err != nil {
		return 0, err
	}
	if len(bars) == 0 || bars[0].Close <= 0 {
		return 0, fmt.Errorf("no FX rate for %s/%s", base, quote)
	}
	return bars[0].Close, nil
}
