package models

import "time"

// Classification maps a symbol to its asset class and sector.
type Classification struct {
	Symbol     string `json:"symbol"`
	AssetClass string `json:"asset_class"`
	Sector     string `json:"sector"`
}

// UnclassifiedBucket is the allocation bucket for symbols with no known
// classification. Positions are never dropped from the allocation.
const UnclassifiedBucket = "Unclassified"

// ReturnSeries is a historical daily return series for one symbol, oldest
// first. Returns are simple periodic returns as decimals (0.01 = 1%).
type ReturnSeries struct {
	Symbol  string    `json:"symbol"`
	Returns []float64 `json:"returns"`
	From    time.Time `json:"from"`
	To      time.Time `json:"to"`
}

// RiskMetrics holds portfolio-level historical risk measures. Each field is
// nil when insufficient data exists to compute it.
type RiskMetrics struct {
	Volatility    *float64 `json:"volatility"`      // annualized portfolio volatility
	Beta          *float64 `json:"beta"`            // vs. the benchmark series
	ValueAtRisk   *float64 `json:"value_at_risk"`   // parametric VaR in portfolio currency
	VaRConfidence float64  `json:"var_confidence"`  // confidence level used (e.g. 0.95)
	Approximate   bool     `json:"approximate"`     // true when covariance data was unavailable and a weighted-variance approximation was used
	ExcludedSymbols []string `json:"excluded_symbols,omitempty"`
}

// AnalyticsReport is the derived, read-only view over a PortfolioSnapshot.
// Allocation maps are percentages of total value and sum to 100 within
// rounding, or to 0 for a zero-value snapshot.
type AnalyticsReport struct {
	SnapshotID             string             `json:"snapshot_id"`
	GeneratedAt            time.Time          `json:"generated_at"`
	AllocationByAssetClass map[string]float64 `json:"allocation_by_asset_class"`
	AllocationBySector     map[string]float64 `json:"allocation_by_sector"`
	Risk                   RiskMetrics        `json:"risk"`
	Summary                string             `json:"summary,omitempty"` // optional AI-generated commentary
}

// MarketData is the cached per-symbol record in the market-data cache:
// classification plus the most recently fetched return series.
type MarketData struct {
	Symbol         string          `json:"symbol"`
	Classification *Classification `json:"classification,omitempty"`
	Series         *ReturnSeries   `json:"series,omitempty"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
