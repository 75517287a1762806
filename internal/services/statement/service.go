package statement

import (
	"context"
	"errors"
	"fmt"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

// Service implements StatementService
type Service struct {
	classifier *Classifier
	logger     *common.Logger
}

// NewService creates a new statement service with the built-in signatures.
func NewService(logger *common.Logger) *Service {
	return NewServiceWithSignatures(DefaultSignatures(), logger)
}

// NewServiceWithSignatures creates a statement service over a custom
// signature set.
func NewServiceWithSignatures(signatures []*FormatSignature, logger *common.Logger) *Service {
	return &Service{
		classifier: NewClassifier(signatures),
		logger:     logger,
	}
}

// ExtractPositions runs layout extraction, classification, and position
// extraction over one document.
func (s *Service) ExtractPositions(ctx context.Context, doc *models.Document) (*models.ExtractResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fragments, warnings, err := ExtractFragments(doc)
	if err != nil {
		if errors.Is(err, ErrUnreadableDocument) {
			s.logger.Warn().Err(err).Str("document", doc.ID).Msg("Document unreadable")
			return nil, err
		}
		return nil, fmt.Errorf("layout extraction failed: %w", err)
	}

	sig, err := s.classifier.Classify(fragments)
	if err != nil {
		s.logger.Info().Str("document", doc.ID).Msg("No format signature matched")
		return &models.ExtractResult{
			DocumentID: doc.ID,
			Warnings:   warnings,
		}, ErrUnknownFormat
	}

	positions, skipped, ruleWarnings := sig.Rules.Extract(fragments, doc)
	warnings = append(warnings, ruleWarnings...)

	s.logger.Info().
		Str("document", doc.ID).
		Str("signature", sig.ID).
		Int("positions", len(positions)).
		Int("skipped", skipped).
		Int("warnings", len(warnings)).
		Msg("Extracted positions")

	return &models.ExtractResult{
		DocumentID:  doc.ID,
		SignatureID: sig.ID,
		Positions:   positions,
		Warnings:    warnings,
		SkippedRows: skipped,
	}, nil
}

// Ensure Service implements StatementService
var _ interfaces.StatementService = (*Service)(nil)
