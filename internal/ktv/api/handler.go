package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-pos/internal/ktv"
	ktvdb "ms-pos/internal/ktv/db"
	"ms-pos/internal/logger"
	"ms-pos/internal/models"
)

type Handler struct {
	KTV    *ktv.Service
	Logger *logger.Logger
}

func NewHandler(svc *ktv.Service, log *logger.Logger) *Handler {
	return &Handler{KTV: svc, Logger: log}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/rooms", h.ListRooms)
	r.Post("/rooms/{roomId}/open", h.OpenRoom)
	r.Post("/rooms/{roomId}/items", h.AddItems)
	r.Get("/rooms/{roomId}/bill", h.PreviewBill)
	r.Post("/rooms/{roomId}/checkout", h.Checkout)
	r.Post("/rooms/{roomId}/clean", h.FinishCleaning)
}

func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.KTV.ListRooms(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rooms)
}

func (h *Handler) OpenRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")

	var req struct {
		GuestName string `json:"guest_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	session, err := h.KTV.OpenRoom(r.Context(), roomID, req.GuestName)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("OpenRoom %s: %v", roomID, err))
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (h *Handler) AddItems(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")

	var req struct {
		Items []models.OrderItemRequest `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	session, err := h.KTV.AddItems(r.Context(), roomID, req.Items)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("AddItems %s: %v", roomID, err))
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *Handler) PreviewBill(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")

	bill, err := h.KTV.PreviewBill(r.Context(), roomID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bill)
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")

	var req models.PayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Method == "" {
		http.Error(w, "Payment method is required", http.StatusBadRequest)
		return
	}

	result, err := h.KTV.ConfirmCheckout(r.Context(), roomID, req.Method)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Checkout %s: %v", roomID, err))
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) FinishCleaning(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")

	if err := h.KTV.FinishCleaning(r.Context(), roomID); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ktv.ErrSessionNotActive):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ktv.ErrRoomUnavailable), errors.Is(err, ktv.ErrRoomBusy),
		errors.Is(err, ktvdb.ErrStatusConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ktv.ErrNotKTVOrderable), errors.Is(err, ktv.ErrEmptyItems):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ktvdb.ErrRoomNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
