package statement

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/folio/internal/models"
)

// --- Tabular rulesets (CSV exports) ---

// columnMap names the source column for each canonical field. Value and
// description are optional; symbol and shares are required.
type columnMap struct {
	symbol      int
	description int
	shares      int
	price       int
	value       int
}

// tableRules extracts positions from tabular fragments. When headerAliases is
// set, the header row is located by matching aliases case-insensitively and
// the column map is derived from it; otherwise fixedColumns applies from the
// first row.
type tableRules struct {
	headerAliases map[string][]string
	fixedColumns  *columnMap
	datePattern   *regexp.Regexp
	dateLayouts   []string
}

func (r *tableRules) Extract(fragments []models.RawFragment, doc *models.Document) ([]models.Position, int, []string) {
	rows := assembleRows(fragments)
	asOf := statementDate(rows, r.datePattern, r.dateLayouts, doc.Received)

	cols := r.fixedColumns
	start := 0
	if r.headerAliases != nil {
		headerIdx, mapped := locateHeader(rows, r.headerAliases)
		if mapped == nil {
			return nil, 0, []string{"header row not found"}
		}
		cols = mapped
		start = headerIdx + 1
	}

	var positions []models.Position
	var warnings []string
	skipped := 0

	for _, row := range rows[start:] {
		if len(row.cells) < 2 {
			continue // section labels, totals lines, blank separators
		}

		pos, err := extractCells(row.cells, cols, doc, asOf)
		if err != nil {
			skipped++
			warnings = append(warnings, fmt.Sprintf("row %d: %v", row.row, err))
			continue
		}
		positions = append(positions, pos)
	}

	return positions, skipped, warnings
}

// extractCells maps one row of cells through the column map into a canonical
// Position. Missing symbol or shares fails the row.
func extractCells(cells []string, cols *columnMap, doc *models.Document, asOf time.Time) (models.Position, error) {
	cell := func(idx int) string {
		if idx < 0 || idx >= len(cells) {
			return ""
		}
		return cells[idx]
	}

	symbol, err := ParseSymbol(cell(cols.symbol))
	if err != nil {
		return models.Position{}, err
	}

	shares, err := ParseAmount(StripFootnotes(cell(cols.shares)))
	if err != nil {
		return models.Position{}, fmt.Errorf("shares: %w", err)
	}

	price := decimal.Zero
	if c := cell(cols.price); c != "" && !isPlaceholder(c) {
		price, err = ParseAmount(StripFootnotes(c))
		if err != nil {
			return models.Position{}, fmt.Errorf("price: %w", err)
		}
	}
	if price.IsNegative() {
		return models.Position{}, fmt.Errorf("negative price %s", price)
	}

	value := decimal.Zero
	if cols.value >= 0 {
		if c := cell(cols.value); c != "" && !isPlaceholder(c) {
			value, err = ParseAmount(StripFootnotes(c))
			if err != nil {
				return models.Position{}, fmt.Errorf("value: %w", err)
			}
		}
	}

	description := ""
	if cols.description >= 0 {
		description = strings.TrimSpace(cell(cols.description))
	}

	return models.NewPosition(symbol, description, shares, price, value, doc.ID, models.SourceKindDocument, asOf), nil
}

// isPlaceholder reports cells brokers emit for unavailable figures.
func isPlaceholder(cell string) bool {
	switch strings.ToUpper(strings.TrimSpace(cell)) {
	case "N/A", "NA", "--", "-", "":
		return true
	}
	return false
}

// locateHeader scans for the row containing all required header aliases and
// returns its index plus the derived column map.
func locateHeader(rows []tableRow, aliases map[string][]string) (int, *columnMap) {
	for idx, row := range rows {
		mapped := matchHeader(row.cells, aliases)
		if mapped != nil {
			return idx, mapped
		}
	}
	return -1, nil
}

func matchHeader(cells []string, aliases map[string][]string) *columnMap {
	find := func(field string) int {
		for col, cell := range cells {
			normalized := strings.ToLower(strings.TrimSpace(cell))
			for _, alias := range aliases[field] {
				if normalized == alias {
					return col
				}
			}
		}
		return -1
	}

	cols := &columnMap{
		symbol:      find("symbol"),
		description: find("description"),
		shares:      find("shares"),
		price:       find("price"),
		value:       find("value"),
	}
	if cols.symbol < 0 || cols.shares < 0 {
		return nil
	}
	return cols
}

// --- Line-based rulesets (page-oriented statements) ---

// lineRules extracts positions from page-based statements by matching each
// reconstructed line against a row pattern with named groups (symbol, desc,
// shares, price, value). Lines matching continuation are folded into the
// prior position's description — brokerages wrap long security names across
// lines. Matching stops per-section at lines matching stop.
type lineRules struct {
	row          *regexp.Regexp
	continuation *regexp.Regexp
	stop         *regexp.Regexp
	datePattern  *regexp.Regexp
	dateLayouts  []string
}

func (r *lineRules) Extract(fragments []models.RawFragment, doc *models.Document) ([]models.Position, int, []string) {
	rows := assembleRows(fragments)
	asOf := statementDate(rows, r.datePattern, r.dateLayouts, doc.Received)

	var positions []models.Position
	var warnings []string
	skipped := 0
	inRun := false // true between the first matched row and the section stop

	for _, row := range rows {
		line := row.joined

		if r.stop != nil && r.stop.MatchString(line) {
			inRun = false
			continue
		}

		m := r.row.FindStringSubmatch(line)
		if m == nil {
			if inRun && r.continuation != nil && r.continuation.MatchString(line) {
				// Wrapped description line belonging to the previous row.
				if n := len(positions); n > 0 {
					positions[n-1].Description = strings.TrimSpace(positions[n-1].Description + " " + strings.TrimSpace(line))
				}
				continue
			}
			if inRun && looksLikeRow(line) {
				skipped++
				warnings = append(warnings, fmt.Sprintf("page %d row %d: unparseable position row", row.page, row.row))
			}
			continue
		}

		groups := namedGroups(r.row, m)

		symbol, err := ParseSymbol(groups["symbol"])
		if err != nil {
			skipped++
			warnings = append(warnings, fmt.Sprintf("page %d row %d: %v", row.page, row.row, err))
			continue
		}

		shares, err := ParseAmount(StripFootnotes(groups["shares"]))
		if err != nil {
			skipped++
			warnings = append(warnings, fmt.Sprintf("page %d row %d: shares: %v", row.page, row.row, err))
			continue
		}

		price := decimal.Zero
		if g := groups["price"]; g != "" {
			price, err = ParseAmount(StripFootnotes(g))
			if err != nil || price.IsNegative() {
				skipped++
				warnings = append(warnings, fmt.Sprintf("page %d row %d: price: %v", row.page, row.row, err))
				continue
			}
		}

		value := decimal.Zero
		if g := groups["value"]; g != "" {
			if v, err := ParseAmount(StripFootnotes(g)); err == nil {
				value = v
			}
		}

		positions = append(positions, models.NewPosition(
			symbol, strings.TrimSpace(groups["desc"]), shares, price, value,
			doc.ID, models.SourceKindDocument, asOf))
		inRun = true
	}

	return positions, skipped, warnings
}

func namedGroups(re *regexp.Regexp, match []string) map[string]string {
	groups := make(map[string]string)
	for i, name := range re.SubexpNames() {
		if name != "" && i < len(match) {
			groups[name] = match[i]
		}
	}
	return groups
}

// looksLikeRow guards the skip counter: only lines that carry at least two
// numeric cells are counted as failed position rows, so headings and
// footnotes stay out of the warnings.
var numericCellPattern = regexp.MustCompile(`\(?\$?\d[\d,]*(\.\d+)?\)?`)

func looksLikeRow(line string) bool {
	return len(numericCellPattern.FindAllString(line, 3)) >= 2
}

// statementDate scans rows for the issuer's statement-date marker and falls
// back to the document's received time.
func statementDate(rows []tableRow, pattern *regexp.Regexp, layouts []string, fallback time.Time) time.Time {
	if pattern == nil {
		return fallback
	}
	for _, row := range rows {
		m := pattern.FindStringSubmatch(row.joined)
		if m == nil {
			continue
		}
		raw := m[len(m)-1]
		for _, layout := range layouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t
			}
		}
	}
	return fallback
}
