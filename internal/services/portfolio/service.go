package portfolio

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

// Service implements PortfolioService
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
}

// NewService creates a new portfolio service
func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// BuildSnapshot merges positions from all sources into one immutable
// snapshot and persists it.
func (s *Service) BuildSnapshot(ctx context.Context, name string, positions []models.Position) (*models.PortfolioSnapshot, error) {
	merged := MergePositions(positions)

	snapshot := &models.PortfolioSnapshot{
		ID:         uuid.NewString(),
		Name:       name,
		Positions:  merged,
		TotalValue: TotalValue(merged),
		AsOf:       LatestAsOf(merged),
		CreatedAt:  time.Now(),
	}

	if err := s.storage.SnapshotStore().SaveSnapshot(ctx, snapshot); err != nil {
		// The snapshot is still usable; persistence is best-effort here.
		s.logger.Warn().Err(err).Str("snapshot", snapshot.ID).Msg("Failed to persist snapshot")
	}

	s.logger.Info().
		Str("snapshot", snapshot.ID).
		Str("name", name).
		Int("sources", countSources(positions)).
		Int("positions", len(merged)).
		Str("total_value", snapshot.TotalValue.StringFixed(2)).
		Msg("Snapshot built")

	return snapshot, nil
}

// GetSnapshot retrieves a saved snapshot by id.
func (s *Service) GetSnapshot(ctx context.Context, id string) (*models.PortfolioSnapshot, error) {
	snapshot, err := s.storage.SnapshotStore().GetSnapshot(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot %s: %w", id, err)
	}
	return snapshot, nil
}

// ListSnapshots returns saved snapshots, most recent first.
func (s *Service) ListSnapshots(ctx context.Context) ([]*models.PortfolioSnapshot, error) {
	snapshots, err := s.storage.SnapshotStore().ListSnapshots(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return snapshots, nil
}

func countSources(positions []models.Position) int {
	sources := make(map[string]struct{})
	for _, p := range positions {
		sources[p.Source] = struct{}{}
	}
	return len(sources)
}

// Ensure Service implements PortfolioService
var _ interfaces.PortfolioService = (*Service)(nil)
