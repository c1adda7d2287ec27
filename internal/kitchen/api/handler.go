package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-pos/internal/kitchen"
	"ms-pos/internal/logger"
)

type Handler struct {
	Projector *kitchen.Projector
	Logger    *logger.Logger
}

func NewHandler(projector *kitchen.Projector, log *logger.Logger) *Handler {
	return &Handler{Projector: projector, Logger: log}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/queues", h.Queues)
}

// Queues returns the pending and cooking views for the preparation station.
func (h *Handler) Queues(w http.ResponseWriter, r *http.Request) {
	queues, err := h.Projector.Project(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Queues: %v", err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(queues); err != nil {
		h.Logger.Error("API", fmt.Sprintf("Queues: encode: %v", err))
	}
}
