// Package interfaces defines service contracts for Folio
package interfaces

import (
	"context"

	"github.com/bobmcallan/folio/internal/models"
)

// StatementService runs the extraction pipeline over statements.
type StatementService interface {
	// ExtractPositions runs layout extraction, format classification, and
	// position extraction over one document. Returns ErrUnreadableDocument
	// when nothing could be decoded and ErrUnknownFormat when no signature
	// matched; all other anomalies are absorbed into the result.
	ExtractPositions(ctx context.Context, doc *models.Document) (*models.ExtractResult, error)
}

// PortfolioService merges positions from multiple sources into snapshots.
type PortfolioService interface {
	// BuildSnapshot merges positions drawn from any number of sources into
	// one deduplicated snapshot. Pure with respect to source order.
	BuildSnapshot(ctx context.Context, name string, positions []models.Position) (*models.PortfolioSnapshot, error)

	// GetSnapshot retrieves a saved snapshot by id.
	GetSnapshot(ctx context.Context, id string) (*models.PortfolioSnapshot, error)

	// ListSnapshots returns saved snapshot ids, most recent first.
	ListSnapshots(ctx context.Context) ([]*models.PortfolioSnapshot, error)
}

// ReportService computes analytics over snapshots.
type ReportService interface {
	// BuildReport merges the given positions into a snapshot and computes the
	// analytics report over it. Per-symbol lookup failures degrade fields;
	// they never fail the report.
	BuildReport(ctx context.Context, name string, positions []models.Position) (*models.PortfolioSnapshot, *models.AnalyticsReport, error)

	// RenderAllocationChart renders the asset-class allocation of a report as
	// a PNG donut chart.
	RenderAllocationChart(report *models.AnalyticsReport) ([]byte, error)
}
