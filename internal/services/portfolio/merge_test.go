package portfolio

import (
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/folio/internal/models"
)

func pos(symbol string, shares, price, value float64, source string, kind models.SourceKind, asOf time.Time) models.Position {
	return models.NewPosition(
		symbol, "",
		decimal.NewFromFloat(shares),
		decimal.NewFromFloat(price),
		decimal.NewFromFloat(value),
		source, kind, asOf,
	)
}

func TestMergePositions_SameSymbolAcrossSources(t *testing.T) {
	asOf := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	// Case-insensitive symbol match: AAPL from a statement, aapl from the feed.
	positions := []models.Position{
		pos("AAPL", 10, 150.00, 1500.00, "doc-1", models.SourceKindDocument, asOf),
		pos("aapl", 5, 160.00, 800.00, "conn-1", models.SourceKindFeed, asOf),
	}

	merged := MergePositions(positions)
	if len(merged) != 1 {
		t.Fatalf("got %d merged positions, want 1", len(merged))
	}

	m := merged[0]
	if m.Symbol != "AAPL" {
		t.Errorf("symbol = %q, want AAPL", m.Symbol)
	}
	if !m.Shares.Equal(decimal.NewFromInt(15)) {
		t.Errorf("shares = %s, want 15", m.Shares)
	}
	if !m.Value.Equal(decimal.NewFromInt(2300)) {
		t.Errorf("value = %s, want 2300", m.Value)
	}
	// Weighted price: (150*10 + 160*5) / 15, kept at full division precision.
	if m.Price == nil || !m.Price.Round(4).Equal(decimal.NewFromFloat(153.3333)) {
		t.Errorf("price = %v, want 153.3333...", m.Price)
	}
	if !reflect.DeepEqual(m.ContributingSources, []string{"conn-1", "doc-1"}) {
		t.Errorf("sources = %v", m.ContributingSources)
	}

	// Merged value stays consistent with shares*price within a cent.
	product := m.Shares.Mul(*m.Price).Round(2)
	if m.Value.Sub(product).Abs().GreaterThan(decimal.NewFromFloat(0.01)) {
		t.Errorf("value %s vs shares*price %s diverge beyond tolerance", m.Value, product)
	}
}

func TestMergePositions_LargeHoldingValueConsistency(t *testing.T) {
	asOf := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	// Large share counts magnify any rounding of the averaged price, so the
	// value-consistency tolerance must hold here, not just on toy sizes.
	positions := []models.Position{
		pos("BIG", 100000, 150.00, 15000000.00, "doc-1", models.SourceKindDocument, asOf),
		pos("BIG", 50000, 160.00, 8000000.00, "conn-1", models.SourceKindFeed, asOf),
	}

	merged := MergePositions(positions)
	if len(merged) != 1 {
		t.Fatalf("got %d merged positions, want 1", len(merged))
	}

	m := merged[0]
	if !m.Value.Equal(decimal.NewFromInt(23000000)) {
		t.Errorf("value = %s, want 23000000", m.Value)
	}
	if m.Price == nil {
		t.Fatal("price nil for non-zero shares")
	}
	product := m.Shares.Mul(*m.Price)
	if diff := m.Value.Sub(product).Abs(); diff.GreaterThan(decimal.NewFromFloat(0.01)) {
		t.Errorf("value %s vs shares*price %s diverge by %s", m.Value, product, diff)
	}
}

func TestMergePositions_OrderIndependent(t *testing.T) {
	d1 := time.Date(2026, 3, 30, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	a := pos("AAPL", 10, 150.00, 1500.00, "doc-1", models.SourceKindDocument, d1)
	b := pos("AAPL", 5, 160.00, 800.00, "conn-1", models.SourceKindFeed, d2)
	c := pos("MSFT", 2, 300.00, 600.00, "doc-2", models.SourceKindDocument, d1)

	permutations := [][]models.Position{
		{a, b, c}, {a, c, b}, {b, a, c}, {b, c, a}, {c, a, b}, {c, b, a},
	}

	want := MergePositions(permutations[0])
	for i, perm := range permutations[1:] {
		got := MergePositions(perm)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("permutation %d diverges:\n got %+v\nwant %+v", i+1, got, want)
		}
	}
}

func TestMergePositions_DescriptionFromLatestSource(t *testing.T) {
	d1 := time.Date(2026, 3, 30, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	older := models.NewPosition("VAS", "Vanguard Aus Shares (old)",
		decimal.NewFromInt(10), decimal.NewFromInt(95), decimal.NewFromInt(950),
		"doc-1", models.SourceKindDocument, d1)
	newer := models.NewPosition("VAS", "Vanguard Australian Shares ETF",
		decimal.NewFromInt(5), decimal.NewFromInt(96), decimal.NewFromInt(480),
		"doc-2", models.SourceKindDocument, d2)

	merged := MergePositions([]models.Position{older, newer})
	if merged[0].Description != "Vanguard Australian Shares ETF" {
		t.Errorf("description = %q, want the later source's", merged[0].Description)
	}

	// Same date: feed beats document.
	docPos := models.NewPosition("VAS", "From document",
		decimal.NewFromInt(10), decimal.NewFromInt(95), decimal.NewFromInt(950),
		"doc-1", models.SourceKindDocument, d2)
	feedPos := models.NewPosition("VAS", "From feed",
		decimal.NewFromInt(5), decimal.NewFromInt(96), decimal.NewFromInt(480),
		"conn-1", models.SourceKindFeed, d2)

	merged = MergePositions([]models.Position{docPos, feedPos})
	if merged[0].Description != "From feed" {
		t.Errorf("description = %q, want feed's on date tie", merged[0].Description)
	}
}

func TestMergePositions_ZeroSharesLeavesPriceUnset(t *testing.T) {
	asOf := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	// Long and short legs cancel out.
	positions := []models.Position{
		pos("XYZ", 10, 5.00, 50.00, "doc-1", models.SourceKindDocument, asOf),
		pos("XYZ", -10, 5.00, -50.00, "doc-2", models.SourceKindDocument, asOf),
	}

	merged := MergePositions(positions)
	if len(merged) != 1 {
		t.Fatalf("got %d merged positions, want 1", len(merged))
	}
	if merged[0].Price != nil {
		t.Errorf("price = %v, want nil for zero net shares", merged[0].Price)
	}
	if !merged[0].Shares.IsZero() || !merged[0].Value.IsZero() {
		t.Errorf("merged = %+v, want zero shares and value", merged[0])
	}
}

func TestMergePositions_SingleSourceKeepsReportedPrice(t *testing.T) {
	asOf := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	positions := []models.Position{
		pos("BHP", 100, 44.50, 4450.00, "doc-1", models.SourceKindDocument, asOf),
	}

	merged := MergePositions(positions)
	if merged[0].Price == nil || !merged[0].Price.Equal(decimal.NewFromFloat(44.50)) {
		t.Errorf("price = %v, want 44.50", merged[0].Price)
	}
}

func TestMergePositions_SkipsEmptySymbols(t *testing.T) {
	asOf := time.Now()
	positions := []models.Position{
		{Symbol: "", Shares: decimal.NewFromInt(1)},
		pos("AAPL", 1, 1, 1, "doc-1", models.SourceKindDocument, asOf),
	}

	merged := MergePositions(positions)
	if len(merged) != 1 || merged[0].Symbol != "AAPL" {
		t.Errorf("merged = %+v", merged)
	}
}

func TestTotalValueAndLatestAsOf(t *testing.T) {
	d1 := time.Date(2026, 3, 30, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	merged := MergePositions([]models.Position{
		pos("AAPL", 10, 150.00, 1500.00, "doc-1", models.SourceKindDocument, d1),
		pos("MSFT", 5, 300.00, 1500.00, "doc-1", models.SourceKindDocument, d2),
	})

	if !TotalValue(merged).Equal(decimal.NewFromInt(3000)) {
		t.Errorf("total = %s, want 3000", TotalValue(merged))
	}
	if !LatestAsOf(merged).Equal(d2) {
		t.Errorf("latest = %v, want %v", LatestAsOf(merged), d2)
	}
}
