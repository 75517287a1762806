// Package portfoliodb implements SnapshotStore using BadgerHold.
// It persists portfolio snapshots and their analytics reports.
package portfoliodb

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

// Store implements interfaces.SnapshotStore using BadgerHold.
type Store struct {
	db     *badgerhold.Store
	logger *common.Logger
}

// NewStore creates a new SnapshotStore backed by BadgerHold.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create portfoliodb path %s: %w", path, err)
	}
	opts := badgerhold.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.Logger = nil
	db, err := badgerhold.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open portfoliodb at %s: %w", path, err)
	}
	logger.Info().Str("path", path).Msg("PortfolioDB opened")
	return &Store{db: db, logger: logger}, nil
}

// reportKey namespaces report records away from snapshot ids.
func reportKey(snapshotID string) string {
	return "report\x00" + snapshotID
}

func (s *Store) SaveSnapshot(_ context.Context, snapshot *models.PortfolioSnapshot) error {
	if err := s.db.Upsert(snapshot.ID, snapshot); err != nil {
		return fmt.Errorf("failed to save snapshot '%s': %w", snapshot.ID, err)
	}
	return nil
}

func (s *Store) GetSnapshot(_ context.Context, id string) (*models.PortfolioSnapshot, error) {
	var snapshot models.PortfolioSnapshot
	if err := s.db.Get(id, &snapshot); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("snapshot '%s' not found", id)
		}
		return nil, fmt.Errorf("failed to get snapshot '%s': %w", id, err)
	}
	return &snapshot, nil
}

func (s *Store) ListSnapshots(_ context.Context) ([]*models.PortfolioSnapshot, error) {
	var all []models.PortfolioSnapshot
	if err := s.db.Find(&all, nil); err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	out := make([]*models.PortfolioSnapshot, len(all))
	for i := range all {
		out[i] = &all[i]
	}
	return out, nil
}

func (s *Store) DeleteSnapshot(_ context.Context, id string) error {
	if err := s.db.Delete(id, models.PortfolioSnapshot{}); err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete snapshot '%s': %w", id, err)
	}
	// A report without its snapshot is useless.
	if err := s.db.Delete(reportKey(id), models.AnalyticsReport{}); err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete report for snapshot '%s': %w", id, err)
	}
	return nil
}

func (s *Store) SaveReport(_ context.Context, report *models.AnalyticsReport) error {
	if err := s.db.Upsert(reportKey(report.SnapshotID), report); err != nil {
		return fmt.Errorf("failed to save report for snapshot '%s': %w", report.SnapshotID, err)
	}
	return nil
}

func (s *Store) GetReport(_ context.Context, snapshotID string) (*models.AnalyticsReport, error) {
	var report models.AnalyticsReport
	if err := s.db.Get(reportKey(snapshotID), &report); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("report for snapshot '%s' not found", snapshotID)
		}
		return nil, fmt.Errorf("failed to get report for snapshot '%s': %w", snapshotID, err)
	}
	return &report, nil
}

// Close closes the underlying store.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ensure Store implements SnapshotStore
var _ interfaces.SnapshotStore = (*Store)(nil)
