// Package eodhd provides a client for the EODHD API, used as the market-data
// provider for historical return series and symbol classification.
package eodhd

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

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

const (
	DefaultBaseURL   = "https://eodhd.com/api"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second
)

// Client implements the MarketDataClient interface
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

	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")
	reqURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("url", path).Msg("EODHD API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return interfaces.ErrSymbolNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

type eodBar struct {
	Date          string  `json:"date"`
	AdjustedClose float64 `json:"adjusted_close"`
	Close         float64 `json:"close"`
}

// GetReturnSeries retrieves daily EOD closes for a symbol and converts them
// to simple daily returns, oldest first.
func (c *Client) GetReturnSeries(ctx context.Context, symbol string, from, to time.Time) (*models.ReturnSeries, error) {
	params := url.Values{}
	params.Set("period", "d")
	params.Set("order", "a")
	params.Set("from", from.Format("2006-01-02"))
	params.Set("to", to.Format("2006-01-02"))

	var bars []eodBar
	if err := c.get(ctx, "/eod/"+url.PathEscape(symbol), params, &bars); err != nil {
		return nil, err
	}

	if len(bars) < 2 {
		return nil, interfaces.ErrSymbolNotFound
	}

	closes := make([]float64, 0, len(bars))
	for _, bar := range bars {
		px := bar.AdjustedClose
		if px == 0 {
			px = bar.Close
		}
		if px > 0 {
			closes = append(closes, px)
		}
	}

	returns := make([]float64, 0, len(closes))
	for i := 1; i < len(closes); i++ {
		returns = append(returns, (closes[i]-closes[i-1])/closes[i-1])
	}

	series := &models.ReturnSeries{
		Symbol:  symbol,
		Returns: returns,
		To:      to,
	}
	if t, err := time.Parse("2006-01-02", bars[0].Date); err == nil {
		series.From = t
	}
	if t, err := time.Parse("2006-01-02", bars[len(bars)-1].Date); err == nil {
		series.To = t
	}
	return series, nil
}

type fundamentalsResponse struct {
	General struct {
		Type   string `json:"Type"`
		Sector string `json:"Sector"`
	} `json:"General"`
}

// GetClassification retrieves the asset class and sector for a symbol from
// the fundamentals endpoint.
func (c *Client) GetClassification(ctx context.Context, symbol string) (*models.Classification, error) {
	params := url.Values{}
	params.Set("filter", "General::Type,General::Sector")

	var resp fundamentalsResponse
	if err := c.get(ctx, "/fundamentals/"+url.PathEscape(symbol), params, &resp); err != nil {
		return nil, err
	}

	if resp.General.Type == "" && resp.General.Sector == "" {
		return nil, interfaces.ErrSymbolNotFound
	}

	return &models.Classification{
		Symbol:     symbol,
		AssetClass: assetClassFromType(resp.General.Type),
		Sector:     resp.General.Sector,
	}, nil
}

// assetClassFromType maps EODHD instrument types to allocation buckets.
func assetClassFromType(instrumentType string) string {
	switch strings.ToLower(instrumentType) {
	case "common stock", "preferred stock":
		return "Equity"
	case "etf":
		return "ETF"
	case "fund", "mutual fund":
		return "Mutual Fund"
	case "bond", "note":
		return "Fixed Income"
	case "currency", "money market":
		return "Cash"
	case "":
		return ""
	default:
		return instrumentType
	}
}

// Ensure Client implements MarketDataClient
var _ interfaces.MarketDataClient = (*Client)(nil)
