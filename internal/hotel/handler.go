package hotel

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-pos/internal/models"
)

type Handler struct {
	Store *Store
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/rooms", h.ListRooms)
	r.Post("/rooms/{roomNumber}/checkin", h.CheckIn)
	r.Post("/rooms/{roomNumber}/checkout", h.CheckOut)
}

func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.Store.ListRooms(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rooms)
}

func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, models.HotelOccupied)
}

func (h *Handler) CheckOut(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, models.HotelVacant)
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request, status models.HotelRoomStatus) {
	roomNumber := chi.URLParam(r, "roomNumber")

	err := h.Store.SetStatus(r.Context(), roomNumber, status)
	switch {
	case errors.Is(err, ErrAlreadySet):
		http.Error(w, err.Error(), http.StatusConflict)
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}
