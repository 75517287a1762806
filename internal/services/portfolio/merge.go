// Package portfolio merges positions from documents and the live feed into
// immutable portfolio snapshots.
package portfolio

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/folio/internal/models"
)

// MergePositions folds positions from any number of sources into one
// deduplicated set, grouped by uppercase symbol. The result is a pure
// function of the input multiset: source insertion order never affects it.
func MergePositions(positions []models.Position) []models.MergedPosition {
	groups := make(map[string][]models.Position)
	for _, p := range positions {
		symbol := strings.ToUpper(p.Symbol)
		if symbol == "" {
			continue
		}
		groups[symbol] = append(groups[symbol], p)
	}

	symbols := make([]string, 0, len(groups))
	for symbol := range groups {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	merged := make([]models.MergedPosition, 0, len(symbols))
	for _, symbol := range symbols {
		merged = append(merged, foldGroup(symbol, groups[symbol]))
	}
	return merged
}

// foldGroup combines all same-symbol positions into one MergedPosition:
// shares summed, price value-weighted, value summed directly from source
// values rather than recomputed from the averaged price.
func foldGroup(symbol string, group []models.Position) models.MergedPosition {
	shares := decimal.Zero
	value := decimal.Zero
	weighted := decimal.Zero // sum(price_i * shares_i)
	sources := make(map[string]struct{})
	var asOf time.Time

	for _, p := range group {
		shares = shares.Add(p.Shares)
		value = value.Add(p.Value)
		weighted = weighted.Add(p.Price.Mul(p.Shares))
		sources[p.Source] = struct{}{}
		if p.AsOf.After(asOf) {
			asOf = p.AsOf
		}
	}

	var price *decimal.Decimal
	switch {
	case len(group) == 1:
		p := group[0].Price
		price = &p
	case !shares.IsZero():
		// Full division precision: rounding here would scale the error by
		// total shares and break value consistency on large holdings.
		p := weighted.Div(shares)
		price = &p
	}

	contributing := make([]string, 0, len(sources))
	for s := range sources {
		contributing = append(contributing, s)
	}
	sort.Strings(contributing)

	return models.MergedPosition{
		Symbol:              symbol,
		Description:         resolveDescription(group),
		Shares:              shares,
		Price:               price,
		Value:               value,
		ContributingSources: contributing,
		AsOf:                asOf,
	}
}

// resolveDescription picks the description from the most recently dated
// source. Ties prefer the live feed over documents, then the lexicographically
// smallest source id so the result is independent of input order.
func resolveDescription(group []models.Position) string {
	best := -1
	for i, p := range group {
		if p.Description == "" {
			continue
		}
		if best < 0 || betterDescriptionSource(p, group[best]) {
			best = i
		}
	}
	if best < 0 {
		return ""
	}
	return group[best].Description
}

func betterDescriptionSource(a, b models.Position) bool {
	if !a.AsOf.Equal(b.AsOf) {
		return a.AsOf.After(b.AsOf)
	}
	if a.SourceKind != b.SourceKind {
		return a.SourceKind == models.SourceKindFeed
	}
	return a.Source < b.Source
}

// TotalValue sums the merged position values.
func TotalValue(merged []models.MergedPosition) decimal.Decimal {
	total := decimal.Zero
	for _, m := range merged {
		total = total.Add(m.Value)
	}
	return total
}

// LatestAsOf returns the latest contributing date across merged positions.
func LatestAsOf(merged []models.MergedPosition) time.Time {
	var latest time.Time
	for _, m := range merged {
		if m.AsOf.After(latest) {
			latest = m.AsOf
		}
	}
	return latest
}
