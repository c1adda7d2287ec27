package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-pos/internal/logger"
	"ms-pos/internal/models"
	"ms-pos/internal/order"
	orderdb "ms-pos/internal/order/db"
)

type Handler struct {
	Orders *order.Service
	Logger *logger.Logger
}

func NewHandler(orders *order.Service, log *logger.Logger) *Handler {
	return &Handler{Orders: orders, Logger: log}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{orderId}", h.Get)
	r.Post("/{orderId}/accept", h.Accept)
	r.Post("/{orderId}/serve", h.Serve)
	r.Post("/{orderId}/cancel", h.Cancel)
	r.Post("/{orderId}/pay", h.Pay)
	r.Post("/{orderId}/complete", h.Complete)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.Orders.Create(r.Context(), req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Create: %v", err))
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	o, err := h.Orders.Get(r.Context(), orderID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Orders.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.Orders.Accept)
}

func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.Orders.Serve)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.Orders.Cancel)
}

func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.Orders.Complete)
}

func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	var req models.PayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Method == "" {
		http.Error(w, "Payment method is required", http.StatusBadRequest)
		return
	}

	paid, err := h.Orders.Pay(r.Context(), orderID, req.Method)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Pay %s: %v", orderID, err))
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, paid)
}

// mutate runs a single-order lifecycle operation and maps its error.
func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id string) (*models.Order, error)) {
	orderID := chi.URLParam(r, "orderId")

	updated, err := op(r.Context(), orderID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("mutate %s: %v", orderID, err))
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var invalid *order.InvalidTransitionError
	switch {
	case errors.As(err, &invalid):
		http.Error(w, invalid.Error(), http.StatusConflict)
	case errors.Is(err, order.ErrAlreadyPaid),
		errors.Is(err, order.ErrNotReadyForPayment),
		errors.Is(err, order.ErrVersionConflict),
		errors.Is(err, orderdb.ErrVersionConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, order.ErrEmptyOrder):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, order.ErrOrderNotFound), errors.Is(err, orderdb.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
