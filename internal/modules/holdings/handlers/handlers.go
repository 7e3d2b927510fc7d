// Package handlers provides HTTP handlers for portfolio holdings operations.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/rainmaker/riskd/internal/domain"
	"github.com/rainmaker/riskd/internal/modules/holdings"
)

// Handler handles holdings HTTP requests
type Handler struct {
	repo *holdings.Repository
	log  zerolog.Logger
}

// NewHandler creates a new holdings handler
func NewHandler(repo *holdings.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "holdings").Logger(),
	}
}

// RegisterRoutes registers all holdings routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/users/{userID}/holdings", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Put("/", h.HandlePut)
		r.Delete("/{ticker}", h.HandleDelete)
	})
}

// HandleList handles GET /api/users/{userID}/holdings
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	list, err := h.repo.GetByUserID(userID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("Failed to list holdings")
		http.Error(w, "Failed to list holdings", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []domain.Holding{}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": list})
}

// HandlePut handles PUT /api/users/{userID}/holdings
func (h *Handler) HandlePut(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	var holding domain.Holding
	if err := json.NewDecoder(r.Body).Decode(&holding); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	holding.UserID = userID

	if err := h.repo.Upsert(holding); err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("Failed to upsert holding")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": holding})
}

// HandleDelete handles DELETE /api/users/{userID}/holdings/{ticker}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}
	ticker := chi.URLParam(r, "ticker")

	if err := h.repo.Delete(userID, ticker); err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Str("ticker", ticker).Msg("Failed to delete holding")
		http.Error(w, "Failed to delete holding", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"status": "deleted"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
