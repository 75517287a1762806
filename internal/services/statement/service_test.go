package statement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/models"
)

func newTestService() *Service {
	return NewService(common.NewSilentLogger())
}

func TestExtractPositions_CommSecCSV(t *testing.T) {
	content := "Code,Company,Units,Last ($),Mkt Value ($)\n" +
		"BHP,BHP GROUP LIMITED,100,44.50,\"4,450.00\"\n" +
		"VAS,VANGUARD AUSTRALIAN SHARES,42,95.20,\"3,998.40\"\n"

	doc := &models.Document{
		ID:       "stmt-1",
		Kind:     models.DocumentKindCSV,
		Name:     "commsec.csv",
		Content:  []byte(content),
		Received: time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
	}

	result, err := newTestService().ExtractPositions(context.Background(), doc)
	if err != nil {
		t.Fatalf("ExtractPositions error: %v", err)
	}

	if result.SignatureID != "commsec-holdings-csv" {
		t.Errorf("signature = %q, want commsec-holdings-csv", result.SignatureID)
	}
	if len(result.Positions) != 2 {
		t.Fatalf("got %d positions (warnings %v), want 2", len(result.Positions), result.Warnings)
	}
	if result.SkippedRows != 0 {
		t.Errorf("skipped = %d, want 0", result.SkippedRows)
	}

	bhp := result.Positions[0]
	if bhp.Symbol != "BHP" || bhp.Description != "BHP GROUP LIMITED" {
		t.Errorf("position[0] = %+v", bhp)
	}
	if !bhp.Value.Equal(decimal.NewFromFloat(4450.00)) {
		t.Errorf("value = %s, want 4450", bhp.Value)
	}
	if bhp.SourceKind != models.SourceKindDocument || bhp.Source != "stmt-1" {
		t.Errorf("source = %s/%s", bhp.Source, bhp.SourceKind)
	}
}

func TestExtractPositions_UnknownFormat(t *testing.T) {
	doc := &models.Document{
		ID:      "stmt-2",
		Kind:    models.DocumentKindCSV,
		Content: []byte("just,some,random\ncells,with,nothing\n"),
	}

	result, err := newTestService().ExtractPositions(context.Background(), doc)
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("err = %v, want ErrUnknownFormat", err)
	}
	// No positions are ever guessed for an unclassified document.
	if result == nil || len(result.Positions) != 0 {
		t.Errorf("result = %+v, want zero positions", result)
	}
	if result.SignatureID != "" {
		t.Errorf("signature = %q, want empty", result.SignatureID)
	}
}

func TestExtractPositions_UnreadableDocument(t *testing.T) {
	doc := &models.Document{
		ID:      "stmt-3",
		Kind:    models.DocumentKindPDF,
		Content: []byte("not a pdf"),
	}

	_, err := newTestService().ExtractPositions(context.Background(), doc)
	if !errors.Is(err, ErrUnreadableDocument) {
		t.Errorf("err = %v, want ErrUnreadableDocument", err)
	}
}

func TestExtractPositions_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	doc := &models.Document{ID: "stmt-4", Kind: models.DocumentKindCSV, Content: []byte("a,b\n")}
	if _, err := newTestService().ExtractPositions(ctx, doc); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestExtractPositions_CustomSignature(t *testing.T) {
	custom := []*FormatSignature{
		{
			ID:         "inhouse-export",
			Issuer:     "InHouse",
			Priority:   1,
			Predicates: []Predicate{{Contains: "inhouse"}},
			Rules: &tableRules{
				fixedColumns: &columnMap{symbol: 0, description: -1, shares: 1, price: 2, value: -1},
			},
		},
	}
	svc := NewServiceWithSignatures(custom, common.NewSilentLogger())

	doc := &models.Document{
		ID:      "stmt-5",
		Kind:    models.DocumentKindCSV,
		Content: []byte("INHOUSE EXPORT,v2\nAAPL,10,150.00\n"),
	}

	result, err := svc.ExtractPositions(context.Background(), doc)
	if err != nil {
		t.Fatalf("ExtractPositions error: %v", err)
	}
	if result.SignatureID != "inhouse-export" || len(result.Positions) != 1 {
		t.Errorf("result = %+v", result)
	}
}
