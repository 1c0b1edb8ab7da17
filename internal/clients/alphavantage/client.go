// Package alphavantage provides a client for the Alpha Vantage API
package alphavantage

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
	DefaultBaseURL = "https://www.alphavantage.co"
	DefaultTimeout = 30 * time.Second

	// Free tier allows 5 requests per minute; one every 13s keeps a margin.
	DefaultRateEvery = 13 * time.Second
)

// Client implements the SourceClient interface against Alpha Vantage.
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
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Alpha Vantage client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Every(DefaultRateEvery), 1),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Source identifies this client in the tier cascade.
func (c *Client) Source() models.Source {
	return models.SourceAlphaVantage
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Function   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Alpha Vantage API error: %s (status: %d, function: %s)", e.Message, e.StatusCode, e.Function)
}

// query performs a rate-limited GET against the single query endpoint.
// Alpha Vantage signals rate limiting inside a 200 body, so the decoded map
// is inspected for the soft error keys.
func (c *Client) query(ctx context.Context, function, symbol string) (map[string]any, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("function", function)
	params.Set("symbol", symbol)
	params.Set("apikey", c.apiKey)

	reqURL := fmt.Sprintf("%s/query?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("function", function).Str("symbol", symbol).Msg("Alpha Vantage API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &interfaces.TransientError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Function:   function,
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, &interfaces.TransientError{Err: apiErr}
		}
		return nil, apiErr
	}

	var doc map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	for _, key := range []string{"Note", "Information"} {
		if msg, ok := doc[key].(string); ok && msg != "" {
			return nil, &interfaces.TransientError{Err: &APIError{
				StatusCode: http.StatusOK,
				Message:    msg,
				Function:   function,
			}}
		}
	}
	if msg, ok := doc["Error Message"].(string); ok && msg != "" {
		return nil, fmt.Errorf("%s %s: %w", function, symbol, interfaces.ErrSymbolNotFound)
	} else if len(doc) == 0 {
		return nil, fmt.Errorf("%s %s: %w", function, symbol, interfaces.ErrSymbolNotFound)
	}

	return doc, nil
}

// FetchRaw retrieves the company overview and the three statement reports.
// Alpha Vantage only covers US listings, so exchange suffixes are stripped.
func (c *Client) FetchRaw(ctx context.Context, symbol string) (*models.RawPayload, error) {
	ticker := strings.SplitN(symbol, ".", 2)[0]

	overview, err := c.query(ctx, "OVERVIEW", ticker)
	if err != nil {
		return nil, err
	}

	payload := &models.RawPayload{
		Source:   models.SourceAlphaVantage,
		Symbol:   symbol,
		Profile:  overview,
		Forecast: overview,
	}
	if cur, ok := overview["Currency"].(string); ok {
		payload.Currency = strings.ToUpper(cur)
	}

	for _, stmt := range []struct {
		function string
		dest     *[]models.RawStatement
	}{
		{"INCOME_STATEMENT", &payload.Income},
		{"BALANCE_SHEET", &payload.Balance},
		{"CASH_FLOW", &payload.CashFlow},
	} {
		doc, err := c.query(ctx, stmt.function, ticker)
		if err != nil {
			return nil, err
		}
		*stmt.dest = reports(doc)
	}

	return payload, nil
}

// reports flattens annualReports and quarterlyReports into the neutral
// envelope. Alpha Vantage orders both most recent first.
func reports(doc map[string]any) []models.RawStatement {
	var out []models.RawStatement
	for _, group := range []struct {
		key    string
		annual bool
	}{
		{"annualReports", true},
		{"quarterlyReports", false},
	} {
		rows, _ := doc[group.key].([]any)
		for _, v := range rows {
			fields, ok := v.(map[string]any)
			if !ok {
				continue
			}
			date, _ := fields["fiscalDateEnding"].(string)
			if date == "" {
				continue
			}
			out = append(out, models.RawStatement{
				Period: date,
				Annual: group.annual,
				Fields: fields,
			})
		}
	}
	return out
}
