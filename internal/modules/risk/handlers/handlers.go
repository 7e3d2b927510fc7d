// Package handlers provides HTTP handlers for portfolio risk analysis.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/rainmaker/riskd/internal/domain"
)

// AnalysisService computes risk reports.
type AnalysisService interface {
	Analyze(userID int64) (*domain.RiskReport, error)
}

// SnapshotWriter persists generated reports. Optional: analysis succeeds
// even if persisting the snapshot fails.
type SnapshotWriter interface {
	Save(userID int64, report *domain.RiskReport) (string, error)
}

// Handler handles risk analysis HTTP requests
type Handler struct {
	service   AnalysisService
	snapshots SnapshotWriter
	log       zerolog.Logger
}

// NewHandler creates a new risk analysis handler. snapshots may be nil.
func NewHandler(service AnalysisService, snapshots SnapshotWriter, log zerolog.Logger) *Handler {
	return &Handler{
		service:   service,
		snapshots: snapshots,
		log:       log.With().Str("handler", "risk").Logger(),
	}
}

// HandleAnalyze handles GET /api/risk/users/{userID}/report
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request, userIDParam string) {
	userID, err := strconv.ParseInt(userIDParam, 10, 64)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	report, err := h.service.Analyze(userID)
	if err != nil {
		h.writeAnalysisError(w, userID, err)
		return
	}

	metadata := map[string]interface{}{
		"timestamp": time.Now().Format(time.RFC3339),
	}

	if h.snapshots != nil {
		snapshotID, err := h.snapshots.Save(userID, report)
		if err != nil {
			// The report is already computed; a failed snapshot must not fail the request
			h.log.Warn().Err(err).Int64("user_id", userID).Msg("Failed to persist report snapshot")
		} else {
			metadata["snapshot_id"] = snapshotID
		}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":     report,
		"metadata": metadata,
	})
}

// writeAnalysisError maps the risk pipeline error taxonomy to HTTP status
// codes. Fetch-layer failures stay 500s; domain conditions get 4xx codes the
// caller can act on.
func (h *Handler) writeAnalysisError(w http.ResponseWriter, userID int64, err error) {
	switch {
	case errors.Is(err, domain.ErrMissingProfile):
		h.writeError(w, http.StatusNotFound, "No profile found for user; set up an investment profile first")
	case errors.Is(err, domain.ErrEmptyHoldings):
		h.writeError(w, http.StatusUnprocessableEntity, "No holdings found for user")
	case errors.Is(err, domain.ErrNoPriceData):
		h.writeError(w, http.StatusUnprocessableEntity, "No price data available for the held tickers")
	case errors.Is(err, domain.ErrDegenerateRisk):
		h.writeError(w, http.StatusUnprocessableEntity, "Portfolio risk is not computable from the available data")
	default:
		h.log.Error().Err(err).Int64("user_id", userID).Msg("Risk analysis failed")
		h.writeError(w, http.StatusInternalServerError, "Risk analysis failed")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]interface{}{
		"error": message,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
