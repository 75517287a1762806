package statement

import (
	"regexp"
	"sort"
	"strings"

	"github.com/bobmcallan/folio/internal/models"
)

// Predicate is one detection rule within a format signature. Exactly one of
// Contains, Pattern, or RowShape is set. Contains and Pattern match any
// fragment, case-insensitively; RowShape matches the document's first row
// cell-by-cell, anchoring headerless layouts to an actual position row.
type Predicate struct {
	Contains string
	Pattern  *regexp.Regexp
	RowShape []*regexp.Regexp
}

func (p Predicate) matches(fragments []models.RawFragment) bool {
	if len(p.RowShape) > 0 {
		return matchesRowShape(p.RowShape, fragments)
	}
	if p.Pattern != nil {
		for _, f := range fragments {
			if p.Pattern.MatchString(f.Text) {
				return true
			}
		}
		return false
	}
	needle := strings.ToLower(p.Contains)
	for _, f := range fragments {
		if strings.Contains(strings.ToLower(f.Text), needle) {
			return true
		}
	}
	return false
}

// matchesRowShape reports whether the document's first row is a cell grid
// with at least len(shape) columns whose leading cells match the patterns in
// column order. Free-text fragments (Column < 0) never form a row shape.
func matchesRowShape(shape []*regexp.Regexp, fragments []models.RawFragment) bool {
	if len(fragments) == 0 {
		return false
	}
	first := fragments[0]
	var cells []string
	for _, f := range fragments {
		if f.Page != first.Page || f.Row != first.Row {
			break
		}
		if f.Column < 0 {
			return false
		}
		cells = append(cells, f.Text)
	}
	if len(cells) < len(shape) {
		return false
	}
	for i, re := range shape {
		if !re.MatchString(cells[i]) {
			return false
		}
	}
	return true
}

// FormatSignature names an issuer ruleset: detection predicates plus the
// extraction rules that apply once it matches. Signatures are immutable and
// registered at process start.
type FormatSignature struct {
	ID         string
	Issuer     string
	Priority   int // lower value is evaluated first; most specific signatures carry the lowest numbers
	Predicates []Predicate
	Rules      Ruleset
}

// matches reports whether every predicate matches the fragment sequence.
func (sig *FormatSignature) matches(fragments []models.RawFragment) bool {
	for _, p := range sig.Predicates {
		if !p.matches(fragments) {
			return false
		}
	}
	return true
}

// Classifier evaluates registered signatures in fixed priority order.
// Classification is a pure function of the fragment sequence.
type Classifier struct {
	signatures []*FormatSignature
}

// NewClassifier builds a classifier over the given signatures, ordered by
// priority so a generic signature can never shadow a specific one.
func NewClassifier(signatures []*FormatSignature) *Classifier {
	ordered := make([]*FormatSignature, len(signatures))
	copy(ordered, signatures)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})
	return &Classifier{signatures: ordered}
}

// Classify returns the first fully-matching signature, or ErrUnknownFormat
// when none matches.
func (c *Classifier) Classify(fragments []models.RawFragment) (*FormatSignature, error) {
	for _, sig := range c.signatures {
		if sig.matches(fragments) {
			return sig, nil
		}
	}
	return nil, ErrUnknownFormat
}

// Signatures returns the registered signatures in evaluation order.
func (c *Classifier) Signatures() []*FormatSignature {
	return c.signatures
}
