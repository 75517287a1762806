package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

// cacheFreshness is how long a cached classification or return series is
// served without re-fetching from the provider.
const cacheFreshness = 24 * time.Hour

// Service implements ReportService
type Service struct {
	portfolio interfaces.PortfolioService
	market    interfaces.MarketDataClient
	storage   interfaces.StorageManager
	summary   interfaces.SummaryClient // optional; nil disables AI commentary
	config    common.AnalyticsConfig
	logger    *common.Logger
}

// NewService creates a new analytics service
func NewService(
	portfolio interfaces.PortfolioService,
	market interfaces.MarketDataClient,
	storage interfaces.StorageManager,
	summary interfaces.SummaryClient,
	config common.AnalyticsConfig,
	logger *common.Logger,
) *Service {
	return &Service{
		portfolio: portfolio,
		market:    market,
		storage:   storage,
		summary:   summary,
		config:    config,
		logger:    logger,
	}
}

// BuildReport merges the given positions into a snapshot and computes the
// analytics report over it. External lookup failures degrade the relevant
// fields; they never fail the report.
func (s *Service) BuildReport(ctx context.Context, name string, positions []models.Position) (*models.PortfolioSnapshot, *models.AnalyticsReport, error) {
	snapshot, err := s.portfolio.BuildSnapshot(ctx, name, positions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build snapshot: %w", err)
	}

	classifications := make(map[string]*models.Classification)
	series := make(map[string]*models.ReturnSeries)

	for _, pos := range snapshot.Positions {
		data := s.lookupMarketData(ctx, pos.Symbol)
		if data == nil {
			continue
		}
		if data.Classification != nil {
			classifications[pos.Symbol] = data.Classification
		}
		if data.Series != nil {
			series[pos.Symbol] = data.Series
		}
	}

	byClass, bySector := ComputeAllocations(snapshot, classifications)

	benchmark := s.lookupBenchmark(ctx)

	risk := ComputeRisk(RiskInputs{
		Snapshot:   snapshot,
		Series:     series,
		Benchmark:  benchmark,
		MinHistory: s.config.MinHistory,
		Confidence: s.config.VaRConfidence,
	})

	report := &models.AnalyticsReport{
		SnapshotID:             snapshot.ID,
		GeneratedAt:            time.Now(),
		AllocationByAssetClass: byClass,
		AllocationBySector:     bySector,
		Risk:                   risk,
	}

	report.Summary = s.generateSummary(ctx, snapshot, report)

	if err := s.storage.SnapshotStore().SaveReport(ctx, report); err != nil {
		s.logger.Warn().Err(err).Str("snapshot", snapshot.ID).Msg("Failed to persist report")
	}

	s.logger.Info().
		Str("snapshot", snapshot.ID).
		Int("classified", len(classifications)).
		Int("with_history", len(series)).
		Int("excluded", len(risk.ExcludedSymbols)).
		Bool("approximate", risk.Approximate).
		Msg("Report built")

	return snapshot, report, nil
}

// RenderAllocationChart renders the asset-class allocation as a PNG donut.
func (s *Service) RenderAllocationChart(report *models.AnalyticsReport) ([]byte, error) {
	return RenderAllocationChart(report)
}

// lookupMarketData returns cached classification/series for a symbol,
// fetching from the provider when stale. Provider failures or timeouts
// degrade to whatever the cache holds — possibly nothing — and are logged,
// never propagated.
func (s *Service) lookupMarketData(ctx context.Context, symbol string) *models.MarketData {
	cached, err := s.storage.MarketDataStorage().GetMarketData(ctx, symbol)
	if err == nil && cached != nil && time.Since(cached.UpdatedAt) < cacheFreshness {
		return cached
	}
	if s.market == nil {
		return cached
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.config.GetLookupTimeout())
	defer cancel()

	data := &models.MarketData{Symbol: symbol, UpdatedAt: time.Now()}

	classification, err := s.market.GetClassification(lookupCtx, symbol)
	if err != nil {
		s.logger.Debug().Err(err).Str("symbol", symbol).Msg("Classification lookup failed")
	} else {
		data.Classification = classification
	}

	to := time.Now()
	from := to.AddDate(0, 0, -s.config.LookbackDays*2) // calendar days cover the trading-day window
	returnSeries, err := s.market.GetReturnSeries(lookupCtx, symbol, from, to)
	if err != nil {
		s.logger.Debug().Err(err).Str("symbol", symbol).Msg("Return series lookup failed")
	} else {
		data.Series = returnSeries
	}

	if data.Classification == nil && data.Series == nil {
		// Nothing fresh; serve the stale cache if one exists.
		if cached != nil {
			return cached
		}
		return nil
	}

	if err := s.storage.MarketDataStorage().SaveMarketData(ctx, data); err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Failed to cache market data")
	}
	return data
}

func (s *Service) lookupBenchmark(ctx context.Context) *models.ReturnSeries {
	data := s.lookupMarketData(ctx, s.config.BenchmarkSymbol)
	if data == nil {
		return nil
	}
	return data.Series
}

// generateSummary asks the summary client for brief commentary. Absence of a
// client or any failure yields an empty summary.
func (s *Service) generateSummary(ctx context.Context, snapshot *models.PortfolioSnapshot, report *models.AnalyticsReport) string {
	if s.summary == nil {
		return ""
	}

	prompt := buildSummaryPrompt(snapshot, report)
	text, err := s.summary.GenerateContent(ctx, prompt)
	if err != nil {
		s.logger.Debug().Err(err).Msg("Summary generation failed")
		return ""
	}
	return strings.TrimSpace(text)
}

func buildSummaryPrompt(snapshot *models.PortfolioSnapshot, report *models.AnalyticsReport) string {
	var sb strings.Builder

	sb.WriteString("You are a portfolio analyst. Write a concise 2-3 sentence summary of this portfolio.\n\n")
	sb.WriteString(fmt.Sprintf("Total value: %s\n", snapshot.TotalValue.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("Positions: %d\n\n", len(snapshot.Positions)))

	sb.WriteString("Asset allocation:\n")
	for bucket, pct := range report.AllocationByAssetClass {
		sb.WriteString(fmt.Sprintf("- %s: %.1f%%\n", bucket, pct))
	}

	if report.Risk.Volatility != nil {
		sb.WriteString(fmt.Sprintf("\nAnnualized volatility: %.1f%%\n", *report.Risk.Volatility*100))
	}
	if report.Risk.Beta != nil {
		sb.WriteString(fmt.Sprintf("Beta: %.2f\n", *report.Risk.Beta))
	}
	if len(report.Risk.ExcludedSymbols) > 0 {
		sb.WriteString(fmt.Sprintf("Symbols excluded from risk metrics: %s\n", strings.Join(report.Risk.ExcludedSymbols, ", ")))
	}

	sb.WriteString("\nPlain prose only. No markdown, no recommendations, no disclaimers.")
	return sb.String()
}

// Ensure Service implements ReportService
var _ interfaces.ReportService = (*Service)(nil)
