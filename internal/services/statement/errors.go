// Package statement implements the statement normalization pipeline: raw
// layout extraction, format classification, and position extraction.
package statement

import "errors"

var (
	// ErrUnreadableDocument indicates the document bytes could not be decoded
	// at all. Fatal for that document, never for a batch.
	ErrUnreadableDocument = errors.New("document unreadable")

	// ErrUnknownFormat indicates no format signature matched the document.
	// The extraction engine is not invoked; the caller gets zero positions
	// and an explicit marker, never a guess.
	ErrUnknownFormat = errors.New("unknown statement format")
)
