// Package handlers provides HTTP handlers for user profile operations.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/rainmaker/riskd/internal/domain"
	"github.com/rainmaker/riskd/internal/modules/profile"
)

// Handler handles profile HTTP requests
type Handler struct {
	repo *profile.Repository
	log  zerolog.Logger
}

// NewHandler creates a new profile handler
func NewHandler(repo *profile.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "profile").Logger(),
	}
}

// RegisterRoutes registers all profile routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/profile", func(r chi.Router) {
		r.Get("/{userID}", h.HandleGet)
		r.Put("/{userID}", h.HandlePut)
	})
}

// HandleGet handles GET /api/profile/{userID}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	p, err := h.repo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, domain.ErrMissingProfile) {
			http.Error(w, "Profile not found", http.StatusNotFound)
			return
		}
		h.log.Error().Err(err).Int64("user_id", userID).Msg("Failed to get profile")
		http.Error(w, "Failed to get profile", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": p})
}

// HandlePut handles PUT /api/profile/{userID}
func (h *Handler) HandlePut(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	var p domain.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	p.UserID = userID

	if err := h.repo.Upsert(p); err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("Failed to upsert profile")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": p})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
