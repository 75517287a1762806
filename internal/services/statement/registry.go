package statement

import "regexp"

// DefaultSignatures returns the built-in issuer signatures. Priorities keep
// issuer-specific signatures ahead of the generic CSV forms so a generic
// match can never shadow a specific one.
func DefaultSignatures() []*FormatSignature {
	return []*FormatSignature{
		{
			ID:       "fidelity-statement",
			Issuer:   "Fidelity",
			Priority: 5,
			Predicates: []Predicate{
				{Contains: "fidelity"},
				{Contains: "holdings"},
			},
			Rules: &lineRules{
				row: regexp.MustCompile(
					`^(?P<symbol>[A-Za-z][A-Za-z0-9.\-]{0,9}\*?)\s{2,}` +
						`(?P<desc>[A-Za-z][^\s].*?)\s{2,}` +
						`(?P<shares>\(?-?[\d,]+(?:\.\d+)?\)?)\s{2,}` +
						`(?P<price>\$?[\d,]+(?:\.\d+)?)\s{2,}` +
						`(?P<value>\(?\$?[\d,]+(?:\.\d+)?\)?)\s*$`),
				continuation: regexp.MustCompile(`^[A-Za-z][A-Za-z .,&'\-/]{2,60}$`),
				stop:         regexp.MustCompile(`(?i)^total`),
				datePattern:  regexp.MustCompile(`(?i)statement (?:date|period)[: ]+(?:.* to )?([A-Z][a-z]+ \d{1,2}, \d{4})`),
				dateLayouts:  []string{"January 2, 2006"},
			},
		},
		{
			ID:       "vanguard-statement",
			Issuer:   "Vanguard",
			Priority: 5,
			Predicates: []Predicate{
				{Contains: "vanguard"},
				{Contains: "balances"},
			},
			Rules: &lineRules{
				// Vanguard lists the fund name first, then the ticker.
				row: regexp.MustCompile(
					`^(?P<desc>[A-Za-z][A-Za-z0-9 .,&'\-/]+?)\s{2,}` +
						`(?P<symbol>[A-Za-z]{1,5})\s{2,}` +
						`(?P<shares>\(?-?[\d,]+(?:\.\d+)?\)?)\s{2,}` +
						`(?P<price>\$?[\d,]+(?:\.\d+)?)\s{2,}` +
						`(?P<value>\(?\$?[\d,]+(?:\.\d+)?\)?)\s*$`),
				stop:        regexp.MustCompile(`(?i)^total`),
				datePattern: regexp.MustCompile(`(?i)as of (\d{2}/\d{2}/\d{4})`),
				dateLayouts: []string{"01/02/2006"},
			},
		},
		{
			ID:       "commsec-holdings-csv",
			Issuer:   "CommSec",
			Priority: 10,
			Predicates: []Predicate{
				{Pattern: regexp.MustCompile(`(?i)^code$`)},
				{Pattern: regexp.MustCompile(`(?i)^mkt value \(\$\)$`)},
			},
			Rules: &tableRules{
				headerAliases: map[string][]string{
					"symbol":      {"code"},
					"description": {"company"},
					"shares":      {"units", "available units"},
					"price":       {"last ($)", "last price"},
					"value":       {"mkt value ($)"},
				},
			},
		},
		{
			ID:       "schwab-positions-csv",
			Issuer:   "Charles Schwab",
			Priority: 10,
			Predicates: []Predicate{
				{Pattern: regexp.MustCompile(`(?i)^symbol$`)},
				{Pattern: regexp.MustCompile(`(?i)quantity`)},
				{Pattern: regexp.MustCompile(`(?i)market value`)},
			},
			Rules: &tableRules{
				headerAliases: map[string][]string{
					"symbol":      {"symbol"},
					"description": {"description"},
					"shares":      {"quantity", "qty (quantity)", "qty"},
					"price":       {"price"},
					"value":       {"market value", "mkt val (market value)"},
				},
				datePattern: regexp.MustCompile(`(?i)as of (\d{2}/\d{2}/\d{4})`),
				dateLayouts: []string{"01/02/2006"},
			},
		},
		{
			ID:       "generic-positions-csv",
			Issuer:   "Generic",
			Priority: 80,
			Predicates: []Predicate{
				{Pattern: regexp.MustCompile(`(?i)^(symbol|ticker)$`)},
				{Pattern: regexp.MustCompile(`(?i)^(shares|quantity|units)$`)},
			},
			Rules: &tableRules{
				headerAliases: map[string][]string{
					"symbol":      {"symbol", "ticker"},
					"description": {"description", "name", "security"},
					"shares":      {"shares", "quantity", "units"},
					"price":       {"price", "last price", "share price"},
					"value":       {"value", "market value", "total value"},
				},
			},
		},
		{
			ID:       "simple-positions-csv",
			Issuer:   "Generic",
			Priority: 90,
			Predicates: []Predicate{
				// Headerless symbol,shares,price[,value] rows: the first row
				// itself must have the position shape, not just any cells
				// somewhere in the document.
				{RowShape: []*regexp.Regexp{
					regexp.MustCompile(`^[A-Za-z]{1,5}$`),
					regexp.MustCompile(`^-?[\d,]+(\.\d+)?$`),
					regexp.MustCompile(`^-?\$?[\d,]+(\.\d+)?$`),
				}},
			},
			Rules: &tableRules{
				fixedColumns: &columnMap{
					symbol:      0,
					description: -1,
					shares:      1,
					price:       2,
					value:       3,
				},
			},
		},
	}
}
