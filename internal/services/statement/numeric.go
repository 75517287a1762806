package statement

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Numeric parsing is locale-stable: period is the decimal separator, comma is
// the thousands separator. Tokens that could be read differently under
// another locale ("1,23", "1.234,56") are rejected rather than guessed.

var (
	// Grouped thousands must group in threes; a bare integer or decimal is
	// also fine. Anything else is ambiguous.
	amountPattern = regexp.MustCompile(`^\d{1,3}(,\d{3})*(\.\d+)?$|^\d+(\.\d+)?$`)

	currencyPrefixes = []string{"A$", "US$", "AU$", "NZ$", "C$", "$", "€", "£"}
)

// ParseAmount parses a monetary or share amount from statement text.
// Handles currency symbols, thousands separators, parenthesized negatives,
// and leading/trailing minus signs.
func ParseAmount(token string) (decimal.Decimal, error) {
	s := strings.TrimSpace(token)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	negative := false

	// Parenthesized negatives: (1,234.56)
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	if strings.HasPrefix(s, "-") {
		negative = !negative
		s = strings.TrimSpace(s[1:])
	} else if strings.HasSuffix(s, "-") {
		negative = !negative
		s = strings.TrimSpace(s[:len(s)-1])
	}

	for _, prefix := range currencyPrefixes {
		if strings.HasPrefix(s, prefix) {
			s = strings.TrimSpace(s[len(prefix):])
			break
		}
	}

	if !amountPattern.MatchString(s) {
		return decimal.Zero, fmt.Errorf("unparseable amount %q", token)
	}

	s = strings.ReplaceAll(s, ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unparseable amount %q: %w", token, err)
	}

	if negative {
		d = d.Neg()
	}
	return d, nil
}

var symbolPattern = regexp.MustCompile(`^[A-Z][A-Z0-9.\-]{0,9}$`)

// footnoteMarkers are stripped from symbol and numeric cells before parsing.
var footnoteMarkers = strings.NewReplacer("*", "", "†", "", "‡", "", "#", "")

// ParseSymbol normalizes a ticker cell: footnote markers stripped, result
// uppercased and validated. Returns an error for cells that cannot be a
// ticker so rows without a resolvable symbol are dropped, not defaulted.
func ParseSymbol(token string) (string, error) {
	s := strings.TrimSpace(footnoteMarkers.Replace(token))
	s = strings.ToUpper(s)
	if !symbolPattern.MatchString(s) {
		return "", fmt.Errorf("unparseable symbol %q", token)
	}
	return s, nil
}

// StripFootnotes removes footnote markers from a cell before numeric parsing.
func StripFootnotes(token string) string {
	return strings.TrimSpace(footnoteMarkers.Replace(token))
}
