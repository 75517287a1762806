package statement

import (
	"testing"
)

func TestParseAmount_PlainAndGrouped(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1500", "1500"},
		{"1500.00", "1500"},
		{"1,500.00", "1500"},
		{"1,234,567.89", "1234567.89"},
		{"0.005", "0.005"},
		{"12", "12"},
	}

	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if err != nil {
			t.Errorf("ParseAmount(%q) error: %v", tc.in, err)
			continue
		}
		if got.String() != tc.want {
			t.Errorf("ParseAmount(%q) = %s, want %s", tc.in, got.String(), tc.want)
		}
	}
}

func TestParseAmount_CurrencyPrefixes(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"$1,500.00", "1500"},
		{"A$42.50", "42.5"},
		{"US$1,000", "1000"},
		{"€99.99", "99.99"},
		{"£12.00", "12"},
	}

	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if err != nil {
			t.Errorf("ParseAmount(%q) error: %v", tc.in, err)
			continue
		}
		if got.String() != tc.want {
			t.Errorf("ParseAmount(%q) = %s, want %s", tc.in, got.String(), tc.want)
		}
	}
}

func TestParseAmount_Negatives(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"(1,234.56)", "-1234.56"},
		{"-500.25", "-500.25"},
		{"500.25-", "-500.25"},
		{"($42.00)", "-42"},
	}

	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if err != nil {
			t.Errorf("ParseAmount(%q) error: %v", tc.in, err)
			continue
		}
		if got.String() != tc.want {
			t.Errorf("ParseAmount(%q) = %s, want %s", tc.in, got.String(), tc.want)
		}
	}
}

func TestParseAmount_RejectsAmbiguousLocaleForms(t *testing.T) {
	// Tokens that read differently under a comma-decimal locale must be
	// rejected, never guessed.
	rejected := []string{
		"1,23",       // comma-decimal
		"1.234,56",   // European grouping
		"12,34,567",  // non-three grouping
		"1,2345",     // non-three grouping
		"",           // empty
		"--12",       // double sign
		"twelve",     // words
		"1 500",      // space grouping
		"1..5",       // malformed
	}

	for _, in := range rejected {
		if got, err := ParseAmount(in); err == nil {
			t.Errorf("ParseAmount(%q) = %s, want error", in, got.String())
		}
	}
}

func TestParseSymbol(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"AAPL", "AAPL", false},
		{"aapl", "AAPL", false},
		{" VAS ", "VAS", false},
		{"BRK.B", "BRK.B", false},
		{"BHP*", "BHP", false},
		{"VTS†", "VTS", false},
		{"A", "A", false},
		{"", "", true},
		{"123", "", true},
		{".ABC", "", true},
		{"TOOLONGSYMBOL", "", true},
		{"AB CD", "", true},
	}

	for _, tc := range cases {
		got, err := ParseSymbol(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseSymbol(%q) = %q, want error", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSymbol(%q) error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseSymbol(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestStripFootnotes(t *testing.T) {
	if got := StripFootnotes("1,500.00*"); got != "1,500.00" {
		t.Errorf("StripFootnotes = %q, want 1,500.00", got)
	}
	if got := StripFootnotes("‡42.00"); got != "42.00" {
		t.Errorf("StripFootnotes = %q, want 42.00", got)
	}
}
