// Package fmp provides a client for the Financial Modeling Prep API
package fmp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/verdict/internal/common"
	"github.com/bobmcallan/verdict/internal/interfaces"
	"github.com/bobmcallan/verdict/internal/models"
)

const (
	DefaultBaseURL   = "https://financialmodelingprep.com/api/v3"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// Client implements the SourceClient interface against FMP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
	statements int // annual periods to request
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

// WithStatementLimit sets how many annual periods to request
func WithStatementLimit(limit int) ClientOption {
	return func(c *Client) {
		c.statements = limit
	}
}

// NewClient creates a new FMP client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:     common.NewSilentLogger(),
		statements: 10,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Source identifies this client in the tier cascade.
func (c *Client) Source() models.Source {
	return models.SourceFMP
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("FMP API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("apikey", c.apiKey)

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("FMP API request")

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

// FetchRaw retrieves profile, statements, and price target consensus. FMP
// symbols drop the exchange suffix, so "AAPL.US" is requested as "AAPL".
func (c *Client) FetchRaw(ctx context.Context, symbol string) (*models.RawPayload, error) {
	ticker := strings.SplitN(symbol, ".", 2)[0]

	payload := &models.RawPayload{
		Source: models.SourceFMP,
		Symbol: symbol,
	}

	var profiles []map[string]any
	if err := c.get(ctx, "/profile/"+url.PathEscape(ticker), nil, &profiles); err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("profile %s: %w", symbol, interfaces.ErrSymbolNotFound)
	}
	payload.Profile = profiles[0]
	if cur, ok := profiles[0]["currency"].(string); ok {
		payload.Currency = strings.ToUpper(cur)
	}

	params := url.Values{}
	params.Set("period", "annual")
	params.Set("limit", fmt.Sprintf("%d", c.statements))

	var err error
	if payload.Income, err = c.fetchStatements(ctx, "/income-statement/"+url.PathEscape(ticker), params); err != nil {
		return nil, err
	}
	if payload.Balance, err = c.fetchStatements(ctx, "/balance-sheet-statement/"+url.PathEscape(ticker), params); err != nil {
		return nil, err
	}
	if payload.CashFlow, err = c.fetchStatements(ctx, "/cash-flow-statement/"+url.PathEscape(ticker), params); err != nil {
		return nil, err
	}

	// statement currency beats the listing currency from the profile
	for _, stmts := range [][]models.RawStatement{payload.Income, payload.Balance} {
		if len(stmts) > 0 {
			if cur, ok := stmts[0].Fields["reportedCurrency"].(string); ok && cur != "" {
				payload.Currency = strings.ToUpper(cur)
				break
			}
		}
	}

	// price targets are optional, some plans don't include them
	var targets []map[string]any
	if err := c.get(ctx, "/price-target-consensus/"+url.PathEscape(ticker), nil, &targets); err == nil && len(targets) > 0 {
		payload.Forecast = targets[0]
	}

	return payload, nil
}

// fetchStatements retrieves one statement endpoint. FMP returns most recent
// first already.
func (c *Client) fetchStatements(ctx context.Context, path string, params url.Values) ([]models.RawStatement, error) {
	var rows []map[string]any
	if err := c.get(ctx, path, params, &rows); err != nil {
		return nil, err
	}
	out := make([]models.RawStatement, 0, len(rows))
	for _, row := range rows {
		date, _ := row["date"].(string)
		if date == "" {
			continue
		}
		out = append(out, models.RawStatement{
			Period: date,
			Annual: true,
			Fields: row,
		})
	}
	return out, nil
}
