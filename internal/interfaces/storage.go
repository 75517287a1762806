// Package interfaces defines service contracts for Folio
package interfaces

import (
	"context"

	"github.com/bobmcallan/folio/internal/models"
)

// SnapshotStore persists portfolio snapshots and analytics reports.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snapshot *models.PortfolioSnapshot) error
	GetSnapshot(ctx context.Context, id string) (*models.PortfolioSnapshot, error)
	ListSnapshots(ctx context.Context) ([]*models.PortfolioSnapshot, error)
	DeleteSnapshot(ctx context.Context, id string) error

	SaveReport(ctx context.Context, report *models.AnalyticsReport) error
	GetReport(ctx context.Context, snapshotID string) (*models.AnalyticsReport, error)
}

// MarketDataStorage caches classification and return-series data fetched from
// the market-data provider.
type MarketDataStorage interface {
	GetMarketData(ctx context.Context, symbol string) (*models.MarketData, error)
	SaveMarketData(ctx context.Context, data *models.MarketData) error
	PurgeMarketData(ctx context.Context) (int, error)
}

// StorageManager provides access to all storage areas.
type StorageManager interface {
	SnapshotStore() SnapshotStore
	MarketDataStorage() MarketDataStorage
	Close() error
}
