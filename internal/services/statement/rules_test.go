package statement

import (
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/folio/internal/models"
)

func testDoc(id string) *models.Document {
	return &models.Document{
		ID:       id,
		Kind:     models.DocumentKindCSV,
		Received: time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
	}
}

func lineFragments(page int, lines []string) []models.RawFragment {
	var frags []models.RawFragment
	for row, line := range lines {
		frags = append(frags, splitLine(line, row, page)...)
	}
	return frags
}

func findSignature(t *testing.T, id string) *FormatSignature {
	t.Helper()
	for _, sig := range DefaultSignatures() {
		if sig.ID == id {
			return sig
		}
	}
	t.Fatalf("signature %q not registered", id)
	return nil
}

func TestTableRules_HeaderBasedExtraction(t *testing.T) {
	sig := findSignature(t, "generic-positions-csv")
	doc := testDoc("doc-csv")

	frags := fragmentsFromCells([][]string{
		{"Account export", ""},
		{"Symbol", "Name", "Quantity", "Price", "Market Value"},
		{"AAPL", "Apple Inc", "10", "150.00", "1,500.00"},
		{"VAS", "Vanguard Australian Shares", "42.5", "95.20", "4,046.00"},
	})

	positions, skipped, warnings := sig.Rules.Extract(frags, doc)
	if skipped != 0 {
		t.Errorf("skipped = %d (warnings %v), want 0", skipped, warnings)
	}
	if len(positions) != 2 {
		t.Fatalf("got %d positions, want 2", len(positions))
	}

	p := positions[0]
	if p.Symbol != "AAPL" || p.Description != "Apple Inc" {
		t.Errorf("position[0] = %+v", p)
	}
	if !p.Shares.Equal(decimal.NewFromInt(10)) {
		t.Errorf("shares = %s, want 10", p.Shares)
	}
	if !p.Value.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("value = %s, want 1500", p.Value)
	}
	if p.Source != "doc-csv" || p.SourceKind != models.SourceKindDocument {
		t.Errorf("source = %s/%s", p.Source, p.SourceKind)
	}
}

func TestTableRules_SkipsMalformedRowsAndCounts(t *testing.T) {
	sig := findSignature(t, "generic-positions-csv")
	doc := testDoc("doc-csv")

	frags := fragmentsFromCells([][]string{
		{"Symbol", "Name", "Quantity", "Price", "Market Value"},
		{"AAPL", "Apple Inc", "10", "150.00", "1,500.00"},
		{"???", "Broken row", "ten", "1.00", "10.00"},
		{"MSFT", "Microsoft", "1,23", "300.00", "369.00"}, // ambiguous shares
		{"TLT", "Treasury ETF", "5", "N/A", "--"},         // placeholders tolerated
	})

	positions, skipped, warnings := sig.Rules.Extract(frags, doc)
	if len(positions) != 2 {
		t.Fatalf("got %d positions (warnings %v), want 2", len(positions), warnings)
	}
	if skipped != 2 {
		t.Errorf("skipped = %d, want 2", skipped)
	}
	if len(warnings) != 2 {
		t.Errorf("warnings = %v, want 2 entries", warnings)
	}

	// Placeholder price/value parse to zero, not errors.
	tlt := positions[1]
	if tlt.Symbol != "TLT" || !tlt.Price.IsZero() || !tlt.Value.IsZero() {
		t.Errorf("TLT = %+v", tlt)
	}
}

func TestTableRules_ValueReconciledAgainstSharesTimesPrice(t *testing.T) {
	sig := findSignature(t, "generic-positions-csv")
	doc := testDoc("doc-csv")

	// Reported value disagrees with shares*price by more than a cent.
	frags := fragmentsFromCells([][]string{
		{"Symbol", "Quantity", "Price", "Value"},
		{"AAPL", "10", "150.00", "1,400.00"},
	})

	positions, _, _ := sig.Rules.Extract(frags, doc)
	if len(positions) != 1 {
		t.Fatalf("got %d positions, want 1", len(positions))
	}
	if !positions[0].Value.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("value = %s, want recomputed 1500", positions[0].Value)
	}
}

func TestTableRules_NegativePriceRejected(t *testing.T) {
	sig := findSignature(t, "generic-positions-csv")
	doc := testDoc("doc-csv")

	frags := fragmentsFromCells([][]string{
		{"Symbol", "Quantity", "Price", "Value"},
		{"AAPL", "10", "(150.00)", "1,500.00"},
	})

	positions, skipped, _ := sig.Rules.Extract(frags, doc)
	if len(positions) != 0 || skipped != 1 {
		t.Errorf("positions = %d, skipped = %d; want 0/1", len(positions), skipped)
	}
}

func TestTableRules_FixedColumns(t *testing.T) {
	sig := findSignature(t, "simple-positions-csv")
	doc := testDoc("doc-simple")

	frags := fragmentsFromCells([][]string{
		{"AAPL", "10", "150.00", "1500.00"},
		{"VTS", "3.5", "250.00"},
	})

	positions, skipped, warnings := sig.Rules.Extract(frags, doc)
	if skipped != 0 {
		t.Errorf("skipped = %d (warnings %v)", skipped, warnings)
	}
	if len(positions) != 2 {
		t.Fatalf("got %d positions, want 2", len(positions))
	}
	// Missing value column falls back to shares*price.
	if !positions[1].Value.Equal(decimal.NewFromFloat(875.00)) {
		t.Errorf("value = %s, want 875", positions[1].Value)
	}
}

func TestTableRules_MissingHeaderReportsWarning(t *testing.T) {
	sig := findSignature(t, "generic-positions-csv")
	doc := testDoc("doc-csv")

	frags := fragmentsFromCells([][]string{
		{"no", "header", "anywhere"},
		{"AAPL", "10", "150.00"},
	})

	positions, skipped, warnings := sig.Rules.Extract(frags, doc)
	if len(positions) != 0 || skipped != 0 {
		t.Errorf("positions = %d, skipped = %d; want 0/0", len(positions), skipped)
	}
	if len(warnings) != 1 {
		t.Errorf("warnings = %v, want header warning", warnings)
	}
}

func TestLineRules_FidelityStatement(t *testing.T) {
	sig := findSignature(t, "fidelity-statement")
	doc := testDoc("doc-pdf")

	frags := lineFragments(1, []string{
		"Fidelity Investments",
		"Statement Date: March 31, 2026",
		"Your Holdings",
		"AAPL  APPLE INC  10  150.00  1,500.00",
		"VWO  VANGUARD FTSE EMERGING  25.5  41.20  1,050.60",
		"MARKETS ETF",
		"Total  2,550.60",
	})

	positions, skipped, warnings := sig.Rules.Extract(frags, doc)
	if skipped != 0 {
		t.Errorf("skipped = %d (warnings %v)", skipped, warnings)
	}
	if len(positions) != 2 {
		t.Fatalf("got %d positions, want 2", len(positions))
	}

	// Wrapped description folded into the prior position.
	if positions[1].Description != "VANGUARD FTSE EMERGING MARKETS ETF" {
		t.Errorf("description = %q", positions[1].Description)
	}

	// as_of picked up from the statement date marker.
	want := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	if !positions[0].AsOf.Equal(want) {
		t.Errorf("as_of = %v, want %v", positions[0].AsOf, want)
	}
}

func TestLineRules_VanguardDescriptionFirst(t *testing.T) {
	sig := findSignature(t, "vanguard-statement")
	doc := testDoc("doc-pdf")

	frags := lineFragments(1, []string{
		"Vanguard Group",
		"Account balances as of 03/31/2026",
		"Vanguard Total Stock Market Index  VTSAX  120.5  110.00  13,255.00",
		"Total  13,255.00",
	})

	positions, _, warnings := sig.Rules.Extract(frags, doc)
	if len(positions) != 1 {
		t.Fatalf("got %d positions (warnings %v), want 1", len(positions), warnings)
	}
	p := positions[0]
	if p.Symbol != "VTSAX" || p.Description != "Vanguard Total Stock Market Index" {
		t.Errorf("position = %+v", p)
	}
	want := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	if !p.AsOf.Equal(want) {
		t.Errorf("as_of = %v, want %v", p.AsOf, want)
	}
}

func TestLineRules_SkipCounterIgnoresProse(t *testing.T) {
	sig := findSignature(t, "fidelity-statement")
	doc := testDoc("doc-pdf")

	frags := lineFragments(1, []string{
		"Fidelity Holdings",
		"AAPL  APPLE INC  10  150.00  1,500.00",
		"Values shown are as of the close of the last trading day", // prose, no numbers
		"BAD  BROKEN LINE  1.234,56  10.00  12.00",                 // ambiguous shares
		"Total  1,512.00",
	})

	positions, skipped, _ := sig.Rules.Extract(frags, doc)
	if len(positions) != 1 {
		t.Fatalf("got %d positions, want 1", len(positions))
	}
	if skipped != 1 {
		t.Errorf("skipped = %d, want 1 (prose must not count)", skipped)
	}
}

func TestRuleset_ExtractIsIdempotent(t *testing.T) {
	sig := findSignature(t, "generic-positions-csv")
	doc := testDoc("doc-csv")

	frags := fragmentsFromCells([][]string{
		{"Symbol", "Quantity", "Price", "Value"},
		{"AAPL", "10", "150.00", "1,500.00"},
		{"MSFT", "5", "300.00", "1,500.00"},
	})

	first, skipped1, _ := sig.Rules.Extract(frags, doc)
	second, skipped2, _ := sig.Rules.Extract(frags, doc)

	if !reflect.DeepEqual(first, second) || skipped1 != skipped2 {
		t.Errorf("extraction not idempotent: %v vs %v", first, second)
	}
}
