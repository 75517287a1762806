// Package surrealdb provides the SurrealDB-backed market-data cache.
package surrealdb

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

// MarketStore caches classification and return-series data per symbol.
type MarketStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewMarketStore(db *surrealdb.DB, logger *common.Logger) *MarketStore {
	return &MarketStore{
		db:     db,
		logger: logger,
	}
}

// Connect establishes a SurrealDB connection and ensures the market_data
// table exists.
func Connect(logger *common.Logger, config *common.Config) (*surrealdb.DB, error) {
	ctx := context.Background()

	db, err := surrealdb.New(config.Storage.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": config.Storage.Username,
		"pass": config.Storage.Password,
	}); err != nil {
		return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
	}

	if err := db.Use(ctx, config.Storage.Namespace, config.Storage.Database); err != nil {
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	// SurrealDB v3 errors on querying tables that do not exist yet.
	if _, err := surrealdb.Query[any](ctx, db, "DEFINE TABLE IF NOT EXISTS market_data SCHEMALESS", nil); err != nil {
		return nil, fmt.Errorf("failed to define table market_data: %w", err)
	}

	logger.Info().
		Str("address", config.Storage.Address).
		Str("namespace", config.Storage.Namespace).
		Str("database", config.Storage.Database).
		Msg("SurrealDB market-data cache connected")

	return db, nil
}

func (s *MarketStore) GetMarketData(ctx context.Context, symbol string) (*models.MarketData, error) {
	data, err := surrealdb.Select[models.MarketData](ctx, s.db, surrealmodels.NewRecordID("market_data", symbol))
	if err != nil {
		return nil, fmt.Errorf("failed to select market data: %w", err)
	}
	if data == nil {
		return nil, fmt.Errorf("market data not found")
	}
	return data, nil
}

func (s *MarketStore) SaveMarketData(ctx context.Context, data *models.MarketData) error {
	sql := "UPSERT $rid CONTENT $data"
	vars := map[string]any{"rid": surrealmodels.NewRecordID("market_data", data.Symbol), "data": data}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.MarketData](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to save market data after retries: %w", lastErr)
}

func (s *MarketStore) PurgeMarketData(ctx context.Context) (int, error) {
	sql := "DELETE market_data RETURN BEFORE"
	results, err := surrealdb.Query[[]models.MarketData](ctx, s.db, sql, nil)
	if err != nil {
		return 0, err
	}
	if results != nil && len(*results) > 0 {
		return len((*results)[0].Result), nil
	}
	return 0, nil
}

// Compile-time check
var _ interfaces.MarketDataStorage = (*MarketStore)(nil)
