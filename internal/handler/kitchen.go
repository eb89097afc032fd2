package handler

import (
	"context"
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/ouiouimanus/api/internal/database"
)

// KitchenServicer defines the service methods needed by kitchen handlers.
type KitchenServicer interface {
	MarkReady(ctx context.Context, orderID uuid.UUID) (database.Order, error)
	MarkServed(ctx context.Context, orderID uuid.UUID) (database.Order, error)
	MarkDelivered(ctx context.Context, orderID uuid.UUID) (database.Order, error)
}

// KitchenStore defines the database methods needed by kitchen handlers.
type KitchenStore interface {
	ListKitchenLines(ctx context.Context) ([]database.ListKitchenLinesRow, error)
}

// KitchenHandler serves the kitchen display board.
type KitchenHandler struct {
	svc   KitchenServicer
	store KitchenStore
}

// NewKitchenHandler creates a new KitchenHandler.
func NewKitchenHandler(svc KitchenServicer, store KitchenStore) *KitchenHandler {
	return &KitchenHandler{svc: svc, store: store}
}

// RegisterRoutes registers kitchen endpoints on the given Chi router.
func (h *KitchenHandler) RegisterRoutes(r chi.Router) {
	r.Get("/tickets", h.ListTickets)
	r.Post("/orders/{id}/ready", h.MarkReady)
	r.Post("/orders/{id}/served", h.MarkServed)
	r.Post("/orders/{id}/delivered", h.MarkDelivered)
}

type ticketLineResponse struct {
	ID                  uuid.UUID   `json:"id"`
	ProductName         string      `json:"product_name"`
	Quantity            int32       `json:"quantity"`
	ExcludedIngredients []uuid.UUID `json:"excluded_ingredients"`
	Comment             *string     `json:"comment"`
}

type ticketResponse struct {
	OrderID   uuid.UUID            `json:"order_id"`
	OrderType string               `json:"order_type"`
	TableName *string              `json:"table_name"`
	SentAt    time.Time            `json:"sent_at"`
	Lines     []ticketLineResponse `json:"lines"`
}

// ListTickets handles GET /kitchen/tickets: every fired line grouped into
// one ticket per order, oldest first.
func (h *KitchenHandler) ListTickets(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.ListKitchenLines(r.Context())
	if err != nil {
		log.Printf("ERROR: list kitchen lines: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	byOrder := make(map[uuid.UUID]*ticketResponse)
	for _, row := range rows {
		ticket, ok := byOrder[row.OrderID]
		if !ok {
			ticket = &ticketResponse{
				OrderID:   row.OrderID,
				OrderType: row.OrderType,
				TableName: textOrNil(row.TableName),
			}
			if row.SentAt.Valid {
				ticket.SentAt = row.SentAt.Time
			}
			byOrder[row.OrderID] = ticket
		}
		// A ticket shows its oldest fire time when lines went out in batches.
		if row.SentAt.Valid && row.SentAt.Time.Before(ticket.SentAt) {
			ticket.SentAt = row.SentAt.Time
		}
		ticket.Lines = append(ticket.Lines, ticketLineResponse{
			ID:                  row.ID,
			ProductName:         row.ProductName,
			Quantity:            row.Quantity,
			ExcludedIngredients: row.ExcludedIngredients,
			Comment:             textOrNil(row.Comment),
		})
	}

	tickets := make([]ticketResponse, 0, len(byOrder))
	for _, t := range byOrder {
		tickets = append(tickets, *t)
	}
	sort.Slice(tickets, func(i, j int) bool {
		if tickets[i].SentAt.Equal(tickets[j].SentAt) {
			return tickets[i].OrderID.String() < tickets[j].OrderID.String()
		}
		return tickets[i].SentAt.Before(tickets[j].SentAt)
	})
	writeJSON(w, http.StatusOK, tickets)
}

// MarkReady handles POST /kitchen/orders/{id}/ready.
func (h *KitchenHandler) MarkReady(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.MarkReady, "kitchen mark ready")
}

// MarkServed handles POST /kitchen/orders/{id}/served.
func (h *KitchenHandler) MarkServed(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.MarkServed, "kitchen mark served")
}

// MarkDelivered handles POST /kitchen/orders/{id}/delivered.
func (h *KitchenHandler) MarkDelivered(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.MarkDelivered, "kitchen mark delivered")
}

func (h *KitchenHandler) transition(w http.ResponseWriter, r *http.Request, apply func(context.Context, uuid.UUID) (database.Order, error), op string) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	order, err := apply(r.Context(), id)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"order_id":       order.ID.String(),
		"kitchen_status": order.KitchenStatus,
	})
}
