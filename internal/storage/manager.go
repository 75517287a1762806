// Package storage wires the persistence backends together: BadgerHold for
// snapshots and reports, SurrealDB for the market-data cache.
package storage

import (
	"context"
	"fmt"

	surreal "github.com/surrealdb/surrealdb.go"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/storage/portfoliodb"
	"github.com/bobmcallan/folio/internal/storage/surrealdb"
)

// Manager implements interfaces.StorageManager.
type Manager struct {
	snapshots *portfoliodb.Store
	market    *surrealdb.MarketStore
	db        *surreal.DB
	logger    *common.Logger
}

// NewManager opens the snapshot store and connects the market-data cache.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	snapshots, err := portfoliodb.NewStore(logger, config.Storage.PortfolioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}

	db, err := surrealdb.Connect(logger, config)
	if err != nil {
		snapshots.Close()
		return nil, err
	}

	return &Manager{
		snapshots: snapshots,
		market:    surrealdb.NewMarketStore(db, logger),
		db:        db,
		logger:    logger,
	}, nil
}

func (m *Manager) SnapshotStore() interfaces.SnapshotStore {
	return m.snapshots
}

func (m *Manager) MarketDataStorage() interfaces.MarketDataStorage {
	return m.market
}

func (m *Manager) Close() error {
	if m.db != nil {
		m.db.Close(context.Background())
	}
	return m.snapshots.Close()
}

// Compile-time check
var _ interfaces.StorageManager = (*Manager)(nil)
