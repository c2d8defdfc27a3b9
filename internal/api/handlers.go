package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pable/go-season-diag/internal/diagnosis"
	"github.com/pable/go-season-diag/internal/report"
	"github.com/pable/go-season-diag/internal/season"
	"github.com/pable/go-season-diag/internal/statcast"
	"github.com/pable/go-season-diag/internal/storage"
	"github.com/pable/go-season-diag/pkg/logger"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

const maxHistoryLimit = 200

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": s.now().UTC(),
	})
}

// diagnosisIDHeader carries the saved run ID on summary responses, which
// have no document body to hold it.
const diagnosisIDHeader = "X-Diagnosis-ID"

// getDiagnosis handles GET /v1/players/{playerID}/seasons/{season}/diagnosis.
// Query params: name, refresh, save, format (json|summary). A save happens
// before rendering either format.
func (s *Server) getDiagnosis(w http.ResponseWriter, r *http.Request) {
	playerID, err := strconv.Atoi(chi.URLParam(r, "playerID"))
	if err != nil || playerID <= 0 {
		s.respondError(w, r, http.StatusBadRequest, "player id must be a positive integer", nil)
		return
	}
	seasonYear := chi.URLParam(r, "season")
	if _, _, err := statcast.SeasonRange(seasonYear); err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}

	q := r.URL.Query()
	format := q.Get("format")
	if format != "" && format != "json" && format != "summary" {
		s.respondError(w, r, http.StatusBadRequest, "format must be json or summary", nil)
		return
	}

	res, err := s.diag.Diagnose(r.Context(), season.Request{
		PlayerID:   playerID,
		PlayerName: q.Get("name"),
		Season:     seasonYear,
		Refresh:    parseBool(q.Get("refresh")),
	})
	if err != nil {
		s.respondError(w, r, statusFor(err), err.Error(), err)
		return
	}

	var runID string
	if parseBool(q.Get("save")) {
		if s.history == nil {
			s.respondError(w, r, http.StatusNotImplemented, "diagnosis history is not configured", nil)
			return
		}
		runID, err = s.history.SaveDiagnosis(r.Context(), res)
		if err != nil {
			s.respondError(w, r, http.StatusInternalServerError, "save diagnosis", err)
			return
		}
	}

	if format == "summary" {
		var buf bytes.Buffer
		if err := report.WriteQuickSummary(&buf, res, s.catalog); err != nil {
			s.respondError(w, r, http.StatusInternalServerError, "render summary", err)
			return
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		if runID != "" {
			w.Header().Set(diagnosisIDHeader, runID)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
		return
	}

	respondJSON(w, http.StatusOK, report.NewDocument(res, runID, s.now()))
}

// listDiagnoses handles GET /v1/diagnoses. Query params: player_id, season, limit.
func (s *Server) listDiagnoses(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.respondError(w, r, http.StatusNotImplemented, "diagnosis history is not configured", nil)
		return
	}
	q := r.URL.Query()
	filter := storage.DiagnosisFilter{
		PlayerID: parseIntParam(q.Get("player_id"), 0),
		Season:   q.Get("season"),
		Limit:    parseIntParam(q.Get("limit"), 50),
	}
	if filter.Limit <= 0 || filter.Limit > maxHistoryLimit {
		filter.Limit = maxHistoryLimit
	}

	recs, err := s.history.ListDiagnoses(r.Context(), filter)
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "list diagnoses", err)
		return
	}
	items := make([]historyItem, 0, len(recs))
	for _, rec := range recs {
		items = append(items, toHistoryItem(rec))
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"diagnoses": items,
		"count":     len(items),
	})
}

// getSavedDiagnosis handles GET /v1/diagnoses/{id}. The id may be a prefix.
func (s *Server) getSavedDiagnosis(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.respondError(w, r, http.StatusNotImplemented, "diagnosis history is not configured", nil)
		return
	}
	rec, err := s.history.GetDiagnosis(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, storage.ErrNotFound) {
		s.respondError(w, r, http.StatusNotFound, "diagnosis not found", nil)
		return
	}
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "get diagnosis", err)
		return
	}
	respondJSON(w, http.StatusOK, report.NewDocument(rec.Result, rec.ID, rec.CreatedAt))
}

type historyItem struct {
	ID           string `json:"id"`
	PlayerID     int    `json:"player_id"`
	PlayerName   string `json:"player_name,omitempty"`
	Season       string `json:"season"`
	TotalGames   int    `json:"total_games"`
	Improved     int    `json:"improved"`
	Declined     int    `json:"declined"`
	Insufficient int    `json:"insufficient"`
	CreatedAt    string `json:"created_at"`
}

func toHistoryItem(rec storage.DiagnosisRecord) historyItem {
	return historyItem{
		ID:           rec.ID,
		PlayerID:     rec.Result.PlayerID,
		PlayerName:   rec.Result.PlayerName,
		Season:       rec.Result.Season,
		TotalGames:   rec.Result.TotalGames,
		Improved:     rec.Improved,
		Declined:     rec.Declined,
		Insufficient: rec.Insufficient,
		CreatedAt:    rec.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// statusFor maps a diagnosis or acquisition failure to an HTTP status.
func statusFor(err error) int {
	switch diagnosis.KindOf(err) {
	case diagnosis.KindInsufficientSample, diagnosis.KindUnorderedLog:
		return http.StatusUnprocessableEntity
	case diagnosis.KindIncompleteResult, diagnosis.KindInvalidPolicy:
		return http.StatusInternalServerError
	}
	switch {
	case errors.Is(err, statcast.ErrNoData), errors.Is(err, statcast.ErrNoRegularSeason):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	if err != nil && status >= http.StatusInternalServerError {
		s.log.Error(r.Context(), message, logger.Error(err), logger.String("path", r.URL.Path))
	}
	resp := ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	}
	if err != nil {
		if k := diagnosis.KindOf(err); k != diagnosis.KindUnknown {
			resp.Kind = string(k)
		}
	}
	respondJSON(w, status, resp)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func parseIntParam(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func parseBool(s string) bool {
	b, _ := strconv.ParseBool(s)
	return b
}
