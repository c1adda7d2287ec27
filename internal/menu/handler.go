package menu

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	Store *Store
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/ktv", h.ListKTV)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.ListItems(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

// ListKTV returns only the items a KTV room may order.
func (h *Handler) ListKTV(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.ListKTVItems(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}
