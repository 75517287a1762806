// Package interfaces defines service contracts for Folio
package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/bobmcallan/folio/internal/models"
)

// ErrSymbolNotFound is returned by market-data lookups when the provider has
// no record for a symbol. Soft per-symbol; never fails a whole request.
var ErrSymbolNotFound = errors.New("symbol not found")

// FeedClient provides access to the account-aggregation feed.
type FeedClient interface {
	// GetHoldings retrieves current holdings for a connected account.
	GetHoldings(ctx context.Context, accessToken string) ([]models.FeedHolding, error)
}

// MarketDataClient provides access to the market-data provider. Both lookups
// may return ErrSymbolNotFound for individual symbols without failing the
// whole request.
type MarketDataClient interface {
	// GetReturnSeries retrieves a historical daily return series for a symbol.
	GetReturnSeries(ctx context.Context, symbol string, from, to time.Time) (*models.ReturnSeries, error)

	// GetClassification retrieves the asset class and sector for a symbol.
	GetClassification(ctx context.Context, symbol string) (*models.Classification, error)
}

// SummaryClient generates AI commentary for a report. Optional collaborator:
// a nil client or a failed call degrades the summary to empty.
type SummaryClient interface {
	// GenerateContent generates content from a prompt.
	GenerateContent(ctx context.Context, prompt string) (string, error)
}
