package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/ouiouimanus/api/internal/database"
	"github.com/ouiouimanus/api/internal/service"
)

// TableServicer defines the service methods needed by table handlers.
type TableServicer interface {
	SeatTable(ctx context.Context, tableID uuid.UUID, covers int32) (*service.TableResult, error)
}

// TableStore defines the database methods needed by table handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type TableStore interface {
	CreateTable(ctx context.Context, arg database.CreateTableParams) (database.RestaurantTable, error)
	GetTable(ctx context.Context, id uuid.UUID) (database.RestaurantTable, error)
	ListTables(ctx context.Context) ([]database.RestaurantTable, error)
	DeleteTable(ctx context.Context, id uuid.UUID) error
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrderLines(ctx context.Context, orderID uuid.UUID) ([]database.OrderLine, error)
}

// TableHandler handles the dining room endpoints.
type TableHandler struct {
	svc   TableServicer
	store TableStore
}

func NewTableHandler(svc TableServicer, store TableStore) *TableHandler {
	return &TableHandler{svc: svc, store: store}
}

// RegisterRoutes registers table endpoints on the given Chi router.
func (h *TableHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/seat", h.Seat)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type createTableRequest struct {
	Name     string `json:"name"`
	Capacity int32  `json:"capacity"`
}

type seatTableRequest struct {
	Covers int32 `json:"covers"`
}

// tableResponse carries the derived status: it is computed from the linked
// order's kitchen state on every read and never stored.
type tableResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Capacity int32     `json:"capacity"`
	Covers   *int32    `json:"covers"`
	OrderID  *string   `json:"order_id"`
	Status   string    `json:"status"`
}

type tableDetailResponse struct {
	tableResponse
	Order *orderResponse `json:"order"`
}

// --- Handlers ---

// List handles GET /tables. Every table's status is derived fresh.
func (h *TableHandler) List(w http.ResponseWriter, r *http.Request) {
	tables, err := h.store.ListTables(r.Context())
	if err != nil {
		log.Printf("ERROR: list tables: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]tableResponse, 0, len(tables))
	for _, table := range tables {
		tr, err := h.toTableResponse(r.Context(), table)
		if err != nil {
			log.Printf("ERROR: derive table status: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		resp = append(resp, tr)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /tables/{id}, returning the table with its open order.
func (h *TableHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table ID"})
		return
	}

	table, err := h.store.GetTable(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "table not found"})
			return
		}
		log.Printf("ERROR: get table: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	tr, err := h.toTableResponse(r.Context(), table)
	if err != nil {
		log.Printf("ERROR: derive table status: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	detail := tableDetailResponse{tableResponse: tr}

	if table.OrderID.Valid {
		order, err := h.store.GetOrder(r.Context(), uuid.UUID(table.OrderID.Bytes))
		if err == nil {
			lines, err := h.store.ListOrderLines(r.Context(), order.ID)
			if err != nil {
				log.Printf("ERROR: list order lines: %v", err)
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
				return
			}
			or := toOrderResponse(order, lines)
			detail.Order = &or
		} else if !errors.Is(err, pgx.ErrNoRows) {
			log.Printf("ERROR: get table order: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
	}
	writeJSON(w, http.StatusOK, detail)
}

// Create handles POST /tables.
func (h *TableHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if req.Capacity <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "capacity must be > 0"})
		return
	}

	table, err := h.store.CreateTable(r.Context(), database.CreateTableParams{
		Name:     req.Name,
		Capacity: req.Capacity,
	})
	if err != nil {
		log.Printf("ERROR: create table: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusCreated, tableResponse{
		ID:       table.ID,
		Name:     table.Name,
		Capacity: table.Capacity,
		Status:   service.DeriveTableStatus(false, ""),
	})
}

// Seat handles POST /tables/{id}/seat: opens an empty dine-in order.
func (h *TableHandler) Seat(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table ID"})
		return
	}

	var req seatTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result, err := h.svc.SeatTable(r.Context(), id, req.Covers)
	if err != nil {
		writeServiceError(w, "seat table", err)
		return
	}

	resp := tableDetailResponse{
		tableResponse: tableResponse{
			ID:       result.Table.ID,
			Name:     result.Table.Name,
			Capacity: result.Table.Capacity,
			Status:   service.DeriveTableStatus(true, result.Order.KitchenStatus),
		},
	}
	if result.Table.Covers.Valid {
		resp.Covers = &result.Table.Covers.Int32
	}
	if result.Table.OrderID.Valid {
		s := uuid.UUID(result.Table.OrderID.Bytes).String()
		resp.OrderID = &s
	}
	or := toOrderResponse(*result.Order, nil)
	resp.Order = &or
	writeJSON(w, http.StatusCreated, resp)
}

// Delete handles DELETE /tables/{id}. A table with an open order cannot be
// removed.
func (h *TableHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table ID"})
		return
	}

	table, err := h.store.GetTable(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "table not found"})
			return
		}
		log.Printf("ERROR: get table: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if table.OrderID.Valid {
		writeServiceError(w, "delete table", service.ErrTableNotFree)
		return
	}

	if err := h.store.DeleteTable(r.Context(), id); err != nil {
		log.Printf("ERROR: delete table: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

func (h *TableHandler) toTableResponse(ctx context.Context, table database.RestaurantTable) (tableResponse, error) {
	resp := tableResponse{
		ID:       table.ID,
		Name:     table.Name,
		Capacity: table.Capacity,
	}
	if table.Covers.Valid {
		resp.Covers = &table.Covers.Int32
	}

	hasOrder := false
	kitchenStatus := ""
	if table.OrderID.Valid {
		orderID := uuid.UUID(table.OrderID.Bytes)
		s := orderID.String()
		resp.OrderID = &s

		order, err := h.store.GetOrder(ctx, orderID)
		switch {
		case err == nil:
			hasOrder = true
			kitchenStatus = order.KitchenStatus
		case errors.Is(err, pgx.ErrNoRows):
			// Stale link; the table still reads as free.
		default:
			return tableResponse{}, err
		}
	}
	resp.Status = service.DeriveTableStatus(hasOrder, kitchenStatus)
	return resp, nil
}
