package statement

import (
	"sort"
	"strings"

	"github.com/bobmcallan/folio/internal/models"
)

// tableRow is one reconstructed row of a statement: its ordered cells plus
// the line rejoined for regex-based rulesets.
type tableRow struct {
	page   int
	row    int
	cells  []string
	joined string
}

// assembleRows groups fragments by (page, row) into ordered rows, preserving
// source order. Cell order follows column index; free-text fragments
// (column -1) become single-cell rows.
func assembleRows(fragments []models.RawFragment) []tableRow {
	type key struct{ page, row int }
	byRow := make(map[key][]models.RawFragment)
	var order []key

	for _, f := range fragments {
		k := key{f.Page, f.Row}
		if _, seen := byRow[k]; !seen {
			order = append(order, k)
		}
		byRow[k] = append(byRow[k], f)
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].page != order[j].page {
			return order[i].page < order[j].page
		}
		return order[i].row < order[j].row
	})

	rows := make([]tableRow, 0, len(order))
	for _, k := range order {
		frags := byRow[k]
		sort.SliceStable(frags, func(i, j int) bool {
			return frags[i].Column < frags[j].Column
		})
		cells := make([]string, len(frags))
		for i, f := range frags {
			cells[i] = f.Text
		}
		rows = append(rows, tableRow{
			page:   k.page,
			row:    k.row,
			cells:  cells,
			joined: strings.Join(cells, "  "),
		})
	}
	return rows
}

// Ruleset applies one issuer's field-mapping rules to raw fragments,
// producing canonical positions. Rows failing required-field extraction are
// skipped and counted, never fatal. Extraction is a pure function of its
// input, so re-running on identical fragments yields an identical list.
type Ruleset interface {
	Extract(fragments []models.RawFragment, doc *models.Document) ([]models.Position, int, []string)
}
