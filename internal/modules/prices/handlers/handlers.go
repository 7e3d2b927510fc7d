// Package handlers provides HTTP handlers for price data ingestion and lookup.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/rainmaker/riskd/internal/domain"
	"github.com/rainmaker/riskd/internal/modules/prices"
)

// Handler handles price HTTP requests
type Handler struct {
	repo *prices.Repository
	log  zerolog.Logger
}

// NewHandler creates a new prices handler
func NewHandler(repo *prices.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "prices").Logger(),
	}
}

// RegisterRoutes registers all price routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/prices", func(r chi.Router) {
		r.Post("/", h.HandleUpsertBatch)
		r.Get("/{ticker}", h.HandleGetSeries)
	})
}

// HandleUpsertBatch handles POST /api/prices
func (h *Handler) HandleUpsertBatch(w http.ResponseWriter, r *http.Request) {
	var points []domain.PricePoint
	if err := json.NewDecoder(r.Body).Decode(&points); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(points) == 0 {
		http.Error(w, "No price points provided", http.StatusBadRequest)
		return
	}

	if err := h.repo.UpsertBatch(points); err != nil {
		h.log.Error().Err(err).Int("count", len(points)).Msg("Failed to upsert prices")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"count":  len(points),
	})
}

// HandleGetSeries handles GET /api/prices/{ticker}
func (h *Handler) HandleGetSeries(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	points, err := h.repo.GetByTicker(ticker)
	if err != nil {
		h.log.Error().Err(err).Str("ticker", ticker).Msg("Failed to get price series")
		http.Error(w, "Failed to get price series", http.StatusInternalServerError)
		return
	}
	if points == nil {
		points = []domain.PricePoint{}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": points})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
