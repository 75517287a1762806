package models

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ValueTolerance is the maximum allowed gap between a reported market value
// and shares*price before the value is recomputed.
var ValueTolerance = decimal.NewFromFloat(0.01)

// SourceKind distinguishes where a position came from.
type SourceKind string

const (
	SourceKindDocument SourceKind = "document"
	SourceKindFeed     SourceKind = "feed"
)

// Position is the canonical security holding used uniformly regardless of
// source. Shares may be fractional; a negative sign indicates a short
// position. Value always satisfies |value - shares*price| <= ValueTolerance —
// NewPosition enforces this once so downstream stages can assume it.
type Position struct {
	Symbol      string          `json:"symbol"`
	Description string          `json:"description,omitempty"`
	Shares      decimal.Decimal `json:"shares"`
	Price       decimal.Decimal `json:"price"`
	Value       decimal.Decimal `json:"value"`
	Source      string          `json:"source"`
	SourceKind  SourceKind      `json:"source_kind"`
	AsOf        time.Time       `json:"as_of"`
}

// NewPosition builds a canonical Position, reconciling value with
// shares*price. When the reported value is zero or disagrees with
// shares*price beyond ValueTolerance, the computed product wins. A missing
// price with a reported value is derived as value/shares instead, preserving
// what the source actually said.
func NewPosition(symbol, description string, shares, price, value decimal.Decimal, source string, kind SourceKind, asOf time.Time) Position {
	computed := shares.Mul(price).Round(2)
	switch {
	case price.IsZero() && !shares.IsZero() && !value.IsZero():
		price = value.Div(shares)
	case value.IsZero() || value.Sub(computed).Abs().GreaterThan(ValueTolerance):
		value = computed
	}
	return Position{
		Symbol:      strings.ToUpper(strings.TrimSpace(symbol)),
		Description: description,
		Shares:      shares,
		Price:       price,
		Value:       value,
		Source:      source,
		SourceKind:  kind,
		AsOf:        asOf,
	}
}

// MergedPosition combines same-symbol Positions across sources.
type MergedPosition struct {
	Symbol              string          `json:"symbol"`
	Description         string          `json:"description,omitempty"`
	Shares              decimal.Decimal `json:"shares"`
	Price               *decimal.Decimal `json:"price"` // value-weighted average; nil when total shares is zero
	Value               decimal.Decimal `json:"value"`
	ContributingSources []string        `json:"contributing_sources"`
	AsOf                time.Time       `json:"as_of"`
}

// PortfolioSnapshot is one immutable merged view of a portfolio's holdings.
// Positions are ordered by symbol. Created fresh per analytics request.
type PortfolioSnapshot struct {
	ID         string           `json:"id"`
	Name       string           `json:"name,omitempty"`
	Positions  []MergedPosition `json:"positions"`
	TotalValue decimal.Decimal  `json:"total_value"`
	AsOf       time.Time        `json:"as_of"`
	CreatedAt  time.Time        `json:"created_at"`
}

// Weight returns the fraction of total value held in the given position,
// or 0 for a zero-value snapshot.
func (s *PortfolioSnapshot) Weight(p MergedPosition) float64 {
	if s.TotalValue.IsZero() {
		return 0
	}
	w, _ := p.Value.Div(s.TotalValue).Float64()
	return w
}

// Symbols returns the snapshot's symbols in order.
func (s *PortfolioSnapshot) Symbols() []string {
	out := make([]string, len(s.Positions))
	for i, p := range s.Positions {
		out[i] = p.Symbol
	}
	sort.Strings(out)
	return out
}

// FeedHolding is one holding tuple from the live account-aggregation feed.
type FeedHolding struct {
	Symbol      string          `json:"symbol"`
	Description string          `json:"description,omitempty"`
	Shares      decimal.Decimal `json:"shares"`
	Price       decimal.Decimal `json:"price"`
	Value       decimal.Decimal `json:"value"`
	AsOf        time.Time       `json:"as_of"`
}

// ToPosition converts a feed holding to a canonical Position attributed to
// the given feed connection.
func (h FeedHolding) ToPosition(connectionID string) Position {
	return NewPosition(h.Symbol, h.Description, h.Shares, h.Price, h.Value, connectionID, SourceKindFeed, h.AsOf)
}
