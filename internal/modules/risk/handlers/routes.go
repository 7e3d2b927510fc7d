package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all risk analysis routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/risk", func(r chi.Router) {
		r.Get("/users/{userID}/report", func(w http.ResponseWriter, r *http.Request) {
			h.HandleAnalyze(w, r, chi.URLParam(r, "userID"))
		})
	})
}
