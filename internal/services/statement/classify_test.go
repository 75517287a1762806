package statement

import (
	"errors"
	"regexp"
	"testing"

	"github.com/bobmcallan/folio/internal/models"
)

func fragmentsFromCells(rows [][]string) []models.RawFragment {
	var frags []models.RawFragment
	for r, cells := range rows {
		for c, text := range cells {
			frags = append(frags, models.RawFragment{Text: text, Row: r, Column: c})
		}
	}
	return frags
}

func TestClassify_PriorityOrder(t *testing.T) {
	generic := &FormatSignature{
		ID:         "generic",
		Priority:   80,
		Predicates: []Predicate{{Contains: "symbol"}},
	}
	specific := &FormatSignature{
		ID:       "issuer",
		Priority: 5,
		Predicates: []Predicate{
			{Contains: "symbol"},
			{Contains: "acme brokerage"},
		},
	}

	// Registration order must not matter; priority decides.
	c := NewClassifier([]*FormatSignature{generic, specific})

	frags := fragmentsFromCells([][]string{
		{"ACME Brokerage Statement"},
		{"Symbol", "Shares"},
	})

	sig, err := c.Classify(frags)
	if err != nil {
		t.Fatalf("Classify error: %v", err)
	}
	if sig.ID != "issuer" {
		t.Errorf("classified as %q, want issuer", sig.ID)
	}
}

func TestClassify_AllPredicatesRequired(t *testing.T) {
	sig := &FormatSignature{
		ID:       "both",
		Priority: 5,
		Predicates: []Predicate{
			{Contains: "alpha"},
			{Contains: "beta"},
		},
	}
	c := NewClassifier([]*FormatSignature{sig})

	frags := fragmentsFromCells([][]string{{"alpha only here"}})
	if _, err := c.Classify(frags); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("err = %v, want ErrUnknownFormat", err)
	}

	frags = fragmentsFromCells([][]string{{"alpha"}, {"and beta too"}})
	if _, err := c.Classify(frags); err != nil {
		t.Errorf("Classify error: %v", err)
	}
}

func TestClassify_PatternPredicate(t *testing.T) {
	sig := &FormatSignature{
		ID:         "pat",
		Priority:   10,
		Predicates: []Predicate{{Pattern: regexp.MustCompile(`(?i)^mkt value \(\$\)$`)}},
	}
	c := NewClassifier([]*FormatSignature{sig})

	frags := fragmentsFromCells([][]string{{"Code", "Company", "Mkt Value ($)"}})
	if _, err := c.Classify(frags); err != nil {
		t.Errorf("Classify error: %v", err)
	}

	frags = fragmentsFromCells([][]string{{"Code", "Company", "Some Mkt Value ($) thing"}})
	if _, err := c.Classify(frags); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("anchored pattern matched a partial cell")
	}
}

func TestClassify_Deterministic(t *testing.T) {
	c := NewClassifier(DefaultSignatures())
	frags := fragmentsFromCells([][]string{
		{"Symbol", "Quantity", "Price", "Market Value"},
		{"AAPL", "10", "150.00", "1500.00"},
	})

	first, err := c.Classify(frags)
	if err != nil {
		t.Fatalf("Classify error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := c.Classify(frags)
		if err != nil {
			t.Fatalf("Classify error on repeat: %v", err)
		}
		if again.ID != first.ID {
			t.Fatalf("classification changed across runs: %q then %q", first.ID, again.ID)
		}
	}
}

func TestClassify_HeaderlessSignatureAnchorsToFirstRow(t *testing.T) {
	c := NewClassifier(DefaultSignatures())

	// A short alpha cell and a numeric cell scattered across rows must not
	// claim the headerless layout: that would classify arbitrary CSVs and
	// hide the unknown-format marker behind all-rows-skipped results.
	frags := fragmentsFromCells([][]string{
		{"notes", "quarterly export"},
		{"rows", "2024"},
	})
	if sig, err := c.Classify(frags); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("err = %v (sig=%v), want ErrUnknownFormat", err, sig)
	}

	// A genuine headerless position row still classifies.
	frags = fragmentsFromCells([][]string{
		{"AAPL", "10", "150.00", "1500.00"},
		{"VTS", "3.5", "250.00"},
	})
	sig, err := c.Classify(frags)
	if err != nil {
		t.Fatalf("Classify error: %v", err)
	}
	if sig.ID != "simple-positions-csv" {
		t.Errorf("classified as %q, want simple-positions-csv", sig.ID)
	}
}

func TestClassify_NoMatchGivesUnknown(t *testing.T) {
	c := NewClassifier(DefaultSignatures())
	frags := fragmentsFromCells([][]string{
		{"completely unrelated text"},
		{"nothing resembling holdings here 123"},
	})

	sig, err := c.Classify(frags)
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("err = %v (sig=%v), want ErrUnknownFormat", err, sig)
	}
}
