package server

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/folio/internal/models"
	"github.com/bobmcallan/folio/internal/services/statement"
)

// --- Statement handlers ---

// handleStatementExtract handles POST /api/statements/extract.
// The document body is base64-encoded so PDF bytes survive JSON transport.
func (s *Server) handleStatementExtract(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Name    string `json:"name"`
		Kind    string `json:"kind"`
		Content string `json:"content"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	kind := models.DocumentKind(strings.ToLower(req.Kind))
	if kind != models.DocumentKindPDF && kind != models.DocumentKindCSV {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("Unsupported document kind: %q", req.Kind))
		return
	}

	content, err := base64.StdEncoding.DecodeString(req.Content)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Content must be base64-encoded")
		return
	}
	if len(content) == 0 {
		WriteError(w, http.StatusBadRequest, "Content is required")
		return
	}

	doc := &models.Document{
		ID:       uuid.NewString(),
		Kind:     kind,
		Name:     req.Name,
		Content:  content,
		Received: time.Now(),
	}

	result, err := s.app.StatementService.ExtractPositions(r.Context(), doc)
	if err != nil {
		switch {
		case errors.Is(err, statement.ErrUnreadableDocument):
			WriteErrorWithCode(w, http.StatusUnprocessableEntity, err.Error(), "unreadable_document")
		case errors.Is(err, statement.ErrUnknownFormat):
			// Result still carries the warnings gathered before classification failed.
			WriteJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error":  err.Error(),
				"code":   "unknown_format",
				"result": result,
			})
		default:
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Extraction error: %v", err))
		}
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// --- Report handlers ---

func (s *Server) handleReportBuild(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Name      string            `json:"name"`
		Positions []models.Position `json:"positions"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if len(req.Positions) == 0 {
		WriteError(w, http.StatusBadRequest, "At least one position is required")
		return
	}

	// Re-canonicalize client-supplied positions so value always reconciles
	// with shares*price.
	positions := make([]models.Position, 0, len(req.Positions))
	for _, p := range req.Positions {
		positions = append(positions, models.NewPosition(
			p.Symbol, p.Description, p.Shares, p.Price, p.Value, p.Source, p.SourceKind, p.AsOf,
		))
	}

	snapshot, report, err := s.app.ReportService.BuildReport(r.Context(), req.Name, positions)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Report error: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"snapshot": snapshot,
		"report":   report,
	})
}

// --- Feed handlers ---

// handleFeedHoldings handles POST /api/feed/holdings: pulls current holdings
// from the aggregation feed and returns them as positions ready for merging.
func (s *Server) handleFeedHoldings(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.FeedClient == nil {
		WriteError(w, http.StatusServiceUnavailable, "Holdings feed not configured")
		return
	}

	var req struct {
		AccessToken  string `json:"access_token"`
		ConnectionID string `json:"connection_id"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.AccessToken == "" {
		WriteError(w, http.StatusBadRequest, "access_token is required")
		return
	}
	if req.ConnectionID == "" {
		req.ConnectionID = "plaid"
	}

	holdings, err := s.app.FeedClient.GetHoldings(r.Context(), req.AccessToken)
	if err != nil {
		WriteError(w, http.StatusBadGateway, fmt.Sprintf("Feed error: %v", err))
		return
	}

	positions := make([]models.Position, 0, len(holdings))
	for _, h := range holdings {
		positions = append(positions, h.ToPosition(req.ConnectionID))
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"positions": positions,
	})
}

// --- Portfolio handlers ---

func (s *Server) handlePortfolioList(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	snapshots, err := s.app.PortfolioService.ListSnapshots(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error listing portfolios: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"portfolios": snapshots,
	})
}

// routePortfolios dispatches /api/portfolios/{id}[/report|/chart].
func (s *Server) routePortfolios(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/portfolios/")
	switch {
	case strings.HasSuffix(rest, "/report"):
		s.handlePortfolioReport(w, r, strings.TrimSuffix(rest, "/report"))
	case strings.HasSuffix(rest, "/chart"):
		s.handlePortfolioChart(w, r, strings.TrimSuffix(rest, "/chart"))
	case rest != "" && !strings.Contains(rest, "/"):
		s.handlePortfolioByID(w, r, rest)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

func (s *Server) handlePortfolioByID(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		snapshot, err := s.app.PortfolioService.GetSnapshot(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusNotFound, fmt.Sprintf("Portfolio not found: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, snapshot)
	case http.MethodDelete:
		if err := s.app.Storage.SnapshotStore().DeleteSnapshot(r.Context(), id); err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Delete error: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"deleted": id})
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodDelete)
	}
}

func (s *Server) handlePortfolioReport(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	report, err := s.app.Storage.SnapshotStore().GetReport(r.Context(), id)
	if err != nil {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("Report not found: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, report)
}

func (s *Server) handlePortfolioChart(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	report, err := s.app.Storage.SnapshotStore().GetReport(r.Context(), id)
	if err != nil {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("Report not found: %v", err))
		return
	}

	png, err := s.app.ReportService.RenderAllocationChart(report)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Chart error: %v", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
