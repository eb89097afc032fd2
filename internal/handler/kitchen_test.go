package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/ouiouimanus/api/internal/database"
	"github.com/ouiouimanus/api/internal/enum"
	"github.com/ouiouimanus/api/internal/handler"
)

type mockKitchenStore struct {
	rows []database.ListKitchenLinesRow
}

func (m *mockKitchenStore) ListKitchenLines(_ context.Context) ([]database.ListKitchenLinesRow, error) {
	return m.rows, nil
}

func kitchenRow(orderID uuid.UUID, name string, sentAt time.Time, tableName string) database.ListKitchenLinesRow {
	row := database.ListKitchenLinesRow{
		ID:          uuid.New(),
		OrderID:     orderID,
		ProductName: name,
		Quantity:    1,
		Status:      enum.LineStatusSentToKitchen,
		SentAt:      pgtype.Timestamptz{Time: sentAt, Valid: true},
		OrderType:   enum.OrderTypeDineIn,
	}
	if tableName != "" {
		row.TableName = pgtype.Text{String: tableName, Valid: true}
	}
	return row
}

func setupKitchenRouter(svc handler.KitchenServicer, store handler.KitchenStore) *chi.Mux {
	h := handler.NewKitchenHandler(svc, store)
	r := chi.NewRouter()
	r.Route("/kitchen", h.RegisterRoutes)
	return r
}

func TestListTicketsGroupsLinesPerOrder(t *testing.T) {
	older := time.Now().Add(-10 * time.Minute)
	newer := time.Now().Add(-2 * time.Minute)
	orderA := uuid.New()
	orderB := uuid.New()

	store := &mockKitchenStore{rows: []database.ListKitchenLinesRow{
		kitchenRow(orderB, "Tiramisu", newer, "T2"),
		kitchenRow(orderA, "Margherita", older, "T1"),
		kitchenRow(orderA, "Carbonara", newer, "T1"),
	}}
	router := setupKitchenRouter(&mockOrderServicer{}, store)

	req := httptest.NewRequest(http.MethodGet, "/kitchen/tickets", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var tickets []map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&tickets); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(tickets) != 2 {
		t.Fatalf("tickets = %d, want 2", len(tickets))
	}
	// The ticket with the oldest fired line comes first, carrying both of
	// its lines.
	if tickets[0]["order_id"] != orderA.String() {
		t.Errorf("first ticket = %v, want %s", tickets[0]["order_id"], orderA)
	}
	lines := tickets[0]["lines"].([]interface{})
	if len(lines) != 2 {
		t.Errorf("first ticket lines = %d, want 2", len(lines))
	}
	if tickets[0]["table_name"] != "T1" {
		t.Errorf("table_name = %v, want T1", tickets[0]["table_name"])
	}
}

func TestListTicketsEmpty(t *testing.T) {
	router := setupKitchenRouter(&mockOrderServicer{}, &mockKitchenStore{})

	req := httptest.NewRequest(http.MethodGet, "/kitchen/tickets", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var tickets []map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&tickets); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(tickets) != 0 {
		t.Errorf("tickets = %d, want 0", len(tickets))
	}
}

func TestKitchenMarkReady(t *testing.T) {
	order := makeOrder(t, enum.OrderTypeDineIn)
	order.KitchenStatus = enum.KitchenStatusReady

	svc := &mockOrderServicer{
		markReadyFn: func(_ context.Context, orderID uuid.UUID) (database.Order, error) {
			if orderID != order.ID {
				t.Errorf("order ID = %s, want %s", orderID, order.ID)
			}
			return order, nil
		},
	}
	router := setupKitchenRouter(svc, &mockKitchenStore{})

	req := httptest.NewRequest(http.MethodPost, "/kitchen/orders/"+order.ID.String()+"/ready", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	resp := decodeBody(t, rr)
	if resp["kitchen_status"] != enum.KitchenStatusReady {
		t.Errorf("kitchen_status = %v, want READY", resp["kitchen_status"])
	}
}
