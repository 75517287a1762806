// Package plaid provides a client for the Plaid investments API, used as the
// live account-aggregation feed. Token exchange and credential storage happen
// upstream; this client only reads holdings for an already-linked account.
package plaid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

const (
	DefaultBaseURL   = "https://production.plaid.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// Client implements the FeedClient interface
type Client struct {
	baseURL    string
	clientID   string
	secret     string
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

// NewClient creates a new Plaid client
func NewClient(clientID, secret string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:  DefaultBaseURL,
		clientID: clientID,
		secret:   secret,
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
	return fmt.Sprintf("Plaid API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// post performs a rate-limited POST request with the client credentials
// injected into the body.
func (c *Client) post(ctx context.Context, path string, body map[string]any, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	body["client_id"] = c.clientID
	body["secret"] = c.secret

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug().Str("url", path).Msg("Plaid API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// GetHoldings retrieves current holdings for a connected account.
func (c *Client) GetHoldings(ctx context.Context, accessToken string) ([]models.FeedHolding, error) {
	var resp holdingsResponse
	if err := c.post(ctx, "/investments/holdings/get", map[string]any{
		"access_token": accessToken,
	}, &resp); err != nil {
		return nil, err
	}

	// Securities are referenced by id from each holding.
	securities := make(map[string]holdingSecurity, len(resp.Securities))
	for _, sec := range resp.Securities {
		securities[sec.SecurityID] = sec
	}

	holdings := make([]models.FeedHolding, 0, len(resp.Holdings))
	for _, h := range resp.Holdings {
		sec, ok := securities[h.SecurityID]
		if !ok || sec.TickerSymbol == "" {
			// Holdings without a resolvable symbol are dropped, not defaulted.
			c.logger.Debug().Str("security_id", h.SecurityID).Msg("Skipping holding without ticker")
			continue
		}

		asOf := time.Now()
		if h.PriceAsOf != "" {
			if t, err := time.Parse("2006-01-02", h.PriceAsOf); err == nil {
				asOf = t
			}
		}

		holdings = append(holdings, models.FeedHolding{
			Symbol:      sec.TickerSymbol,
			Description: sec.Name,
			Shares:      decimal.NewFromFloat(h.Quantity),
			Price:       decimal.NewFromFloat(h.InstitutionPrice),
			Value:       decimal.NewFromFloat(h.InstitutionValue),
			AsOf:        asOf,
		})
	}

	return holdings, nil
}

type holdingsResponse struct {
	Holdings []struct {
		SecurityID       string  `json:"security_id"`
		Quantity         float64 `json:"quantity"`
		InstitutionPrice float64 `json:"institution_price"`
		InstitutionValue float64 `json:"institution_value"`
		PriceAsOf        string  `json:"institution_price_as_of"`
	} `json:"holdings"`
	Securities []holdingSecurity `json:"securities"`
}

type holdingSecurity struct {
	SecurityID   string `json:"security_id"`
	TickerSymbol string `json:"ticker_symbol"`
	Name         string `json:"name"`
}

// Ensure Client implements FeedClient
var _ interfaces.FeedClient = (*Client)(nil)
