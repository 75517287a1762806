// Package models defines data structures for Folio
package models

import "time"

// DocumentKind is the declared kind of an uploaded statement.
type DocumentKind string

const (
	DocumentKindPDF DocumentKind = "pdf"
	DocumentKindCSV DocumentKind = "csv"
)

// Document is one brokerage statement handed to the extraction pipeline.
type Document struct {
	ID       string       `json:"id"`
	Kind     DocumentKind `json:"kind"`
	Name     string       `json:"name,omitempty"`
	Content  []byte       `json:"-"`
	Received time.Time    `json:"received"`
}

// RawFragment is one unit of text recovered from a statement, independent of
// brokerage semantics. Row and Column are -1 when the fragment has no table
// coordinates (free text on a page).
type RawFragment struct {
	Text   string `json:"text"`
	Row    int    `json:"row"`
	Column int    `json:"column"`
	Page   int    `json:"page"`
}

// ExtractResult is the outcome of running the full extraction pipeline on one
// document. Anomalies that did not abort the document are carried here rather
// than raised: per-page decode problems land in Warnings, rows that failed
// required-field extraction are counted in SkippedRows.
type ExtractResult struct {
	DocumentID  string     `json:"document_id"`
	SignatureID string     `json:"signature_id"`
	Positions   []Position `json:"positions"`
	Warnings    []string   `json:"warnings,omitempty"`
	SkippedRows int        `json:"skipped_rows"`
}
