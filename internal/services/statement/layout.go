package statement

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/bobmcallan/folio/internal/models"
)

// ExtractFragments turns a document's byte stream into a sequence of
// RawFragments preserving document order and table structure. Partial
// extraction (some pages or rows failing) is reported through the warning
// list; ErrUnreadableDocument is returned only when nothing could be decoded.
func ExtractFragments(doc *models.Document) ([]models.RawFragment, []string, error) {
	switch doc.Kind {
	case models.DocumentKindCSV:
		return extractCSVFragments(doc.Content)
	case models.DocumentKindPDF:
		return extractPDFFragments(doc.Content)
	default:
		return nil, nil, fmt.Errorf("%w: unsupported document kind %q", ErrUnreadableDocument, doc.Kind)
	}
}

// extractCSVFragments emits one fragment per field with column = field index
// and row = line index.
func extractCSVFragments(content []byte) ([]models.RawFragment, []string, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, nil, fmt.Errorf("%w: empty file", ErrUnreadableDocument)
	}

	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var fragments []models.RawFragment
	var warnings []string

	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("row %d: %v", row, err))
			row++
			continue
		}
		for col, field := range record {
			fragments = append(fragments, models.RawFragment{
				Text:   strings.TrimSpace(field),
				Row:    row,
				Column: col,
				Page:   0,
			})
		}
		row++
	}

	if len(fragments) == 0 {
		return nil, warnings, fmt.Errorf("%w: no rows decoded", ErrUnreadableDocument)
	}
	return fragments, warnings, nil
}

// extractPDFFragments emits per-line fragments for each decodable page.
// Lines with runs of two or more spaces are treated as table rows and split
// into cells with column indexes; other lines become single-column fragments
// with column = -1.
func extractPDFFragments(content []byte) (fragments []models.RawFragment, warnings []string, err error) {
	// The pdf package panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			fragments = nil
			err = fmt.Errorf("%w: %v", ErrUnreadableDocument, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}

	totalPages := reader.NumPage()
	decodedPages := 0

	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			warnings = append(warnings, fmt.Sprintf("page %d: missing page object", pageNum))
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("page %d: %v", pageNum, err))
			continue
		}
		decodedPages++

		row := 0
		for _, line := range strings.Split(text, "\n") {
			line = strings.TrimRight(line, " \t")
			if strings.TrimSpace(line) == "" {
				continue
			}
			fragments = append(fragments, splitLine(line, row, pageNum)...)
			row++
		}
	}

	if decodedPages == 0 {
		return nil, warnings, fmt.Errorf("%w: no pages decoded", ErrUnreadableDocument)
	}
	return fragments, warnings, nil
}

// splitLine breaks a page line into cell fragments on runs of two or more
// spaces (or tabs), preserving cell adjacency. Free text stays whole.
func splitLine(line string, row, page int) []models.RawFragment {
	cells := splitCells(line)
	if len(cells) < 2 {
		return []models.RawFragment{{
			Text:   strings.TrimSpace(line),
			Row:    row,
			Column: -1,
			Page:   page,
		}}
	}

	fragments := make([]models.RawFragment, len(cells))
	for i, cell := range cells {
		fragments[i] = models.RawFragment{
			Text:   cell,
			Row:    row,
			Column: i,
			Page:   page,
		}
	}
	return fragments
}

func splitCells(line string) []string {
	var cells []string
	var current strings.Builder
	spaceRun := 0

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			cells = append(cells, s)
		}
		current.Reset()
	}

	for _, r := range line {
		switch {
		case r == '\t':
			flush()
			spaceRun = 0
		case r == ' ':
			spaceRun++
			current.WriteRune(r)
		default:
			if spaceRun >= 2 {
				// Run of spaces ends the previous cell.
				s := strings.TrimSpace(current.String())
				current.Reset()
				if s != "" {
					cells = append(cells, s)
				}
			}
			spaceRun = 0
			current.WriteRune(r)
		}
	}
	flush()
	return cells
}
