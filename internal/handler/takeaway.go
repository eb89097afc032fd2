package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/ouiouimanus/api/internal/database"
	"github.com/ouiouimanus/api/internal/enum"
)

// TakeawayStore defines the database methods needed by the takeaway board.
type TakeawayStore interface {
	ListTakeawayOrders(ctx context.Context) ([]database.Order, error)
	ListOrderLinesByOrders(ctx context.Context, orderIDs []uuid.UUID) ([]database.OrderLine, error)
}

// TakeawayHandler serves the open takeaway and online order board.
type TakeawayHandler struct {
	store TakeawayStore
}

// NewTakeawayHandler creates a new TakeawayHandler.
func NewTakeawayHandler(store TakeawayStore) *TakeawayHandler {
	return &TakeawayHandler{store: store}
}

// RegisterRoutes registers takeaway endpoints on the given Chi router.
func (h *TakeawayHandler) RegisterRoutes(r chi.Router) {
	r.Get("/orders", h.List)
}

type takeawayOrderResponse struct {
	orderResponse
	ElapsedSeconds int64 `json:"elapsed_seconds"`
}

type takeawayBoardResponse struct {
	Pending []takeawayOrderResponse `json:"pending"`
	Ready   []takeawayOrderResponse `json:"ready"`
}

// List handles GET /takeaway/orders: open takeaway and online orders split
// into a pending and a ready-for-pickup column, oldest first, each with the
// seconds since it was placed.
func (h *TakeawayHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.store.ListTakeawayOrders(r.Context())
	if err != nil {
		log.Printf("ERROR: list takeaway orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	orderIDs := make([]uuid.UUID, len(orders))
	for i, o := range orders {
		orderIDs[i] = o.ID
	}
	linesByOrder := make(map[uuid.UUID][]database.OrderLine)
	if len(orderIDs) > 0 {
		lines, err := h.store.ListOrderLinesByOrders(r.Context(), orderIDs)
		if err != nil {
			log.Printf("ERROR: list takeaway order lines: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		for _, line := range lines {
			linesByOrder[line.OrderID] = append(linesByOrder[line.OrderID], line)
		}
	}

	now := time.Now()
	resp := takeawayBoardResponse{
		Pending: []takeawayOrderResponse{},
		Ready:   []takeawayOrderResponse{},
	}
	for _, o := range orders {
		entry := takeawayOrderResponse{
			orderResponse:  toOrderResponse(o, linesByOrder[o.ID]),
			ElapsedSeconds: int64(now.Sub(o.CreatedAt).Seconds()),
		}
		if o.KitchenStatus == enum.KitchenStatusReady {
			resp.Ready = append(resp.Ready, entry)
		} else {
			resp.Pending = append(resp.Pending, entry)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
