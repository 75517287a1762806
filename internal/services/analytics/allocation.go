// Package analytics computes allocation breakdowns and historical risk
// metrics over portfolio snapshots.
package analytics

import (
	"math"

	"github.com/bobmcallan/folio/internal/models"
)

// ComputeAllocations derives the asset-class and sector allocation maps for a
// snapshot. Positions without a classification fall into the Unclassified
// bucket rather than being dropped, so each map sums to 100 within rounding,
// or to 0 for a zero-value snapshot.
func ComputeAllocations(snapshot *models.PortfolioSnapshot, classifications map[string]*models.Classification) (byClass, bySector map[string]float64) {
	byClass = make(map[string]float64)
	bySector = make(map[string]float64)

	if snapshot.TotalValue.IsZero() {
		return byClass, bySector
	}

	for _, pos := range snapshot.Positions {
		weight := snapshot.Weight(pos) * 100

		class := models.UnclassifiedBucket
		sector := models.UnclassifiedBucket
		if c := classifications[pos.Symbol]; c != nil {
			if c.AssetClass != "" {
				class = c.AssetClass
			}
			if c.Sector != "" {
				sector = c.Sector
			}
		}

		byClass[class] += weight
		bySector[sector] += weight
	}

	roundMap(byClass)
	roundMap(bySector)
	return byClass, bySector
}

func roundMap(m map[string]float64) {
	for k, v := range m {
		m[k] = math.Round(v*100) / 100
	}
}
