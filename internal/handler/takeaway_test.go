package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/ouiouimanus/api/internal/database"
	"github.com/ouiouimanus/api/internal/enum"
	"github.com/ouiouimanus/api/internal/handler"
)

type mockTakeawayStore struct {
	orders []database.Order
}

func (m *mockTakeawayStore) ListTakeawayOrders(_ context.Context) ([]database.Order, error) {
	return m.orders, nil
}

func (m *mockTakeawayStore) ListOrderLinesByOrders(_ context.Context, _ []uuid.UUID) ([]database.OrderLine, error) {
	return nil, nil
}

func TestTakeawayBoardSplitsPendingAndReady(t *testing.T) {
	pending := makeOrder(t, enum.OrderTypeTakeaway)
	pending.Status = enum.OrderStatusPendingValidation
	pending.CreatedAt = time.Now().Add(-5 * time.Minute)

	ready := makeOrder(t, enum.OrderTypeOnline)
	ready.KitchenStatus = enum.KitchenStatusReady
	ready.CreatedAt = time.Now().Add(-20 * time.Minute)

	store := &mockTakeawayStore{orders: []database.Order{pending, ready}}
	h := handler.NewTakeawayHandler(store)
	router := chi.NewRouter()
	router.Route("/takeaway", h.RegisterRoutes)

	req := httptest.NewRequest(http.MethodGet, "/takeaway/orders", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	resp := decodeBody(t, rr)
	pendingList := resp["pending"].([]interface{})
	readyList := resp["ready"].([]interface{})
	if len(pendingList) != 1 || len(readyList) != 1 {
		t.Fatalf("pending = %d, ready = %d, want 1 and 1", len(pendingList), len(readyList))
	}

	entry := readyList[0].(map[string]interface{})
	if entry["id"] != ready.ID.String() {
		t.Errorf("ready entry = %v, want %s", entry["id"], ready.ID)
	}
	// Waited about twenty minutes.
	elapsed := entry["elapsed_seconds"].(float64)
	if elapsed < 19*60 || elapsed > 21*60 {
		t.Errorf("elapsed_seconds = %v, want around 1200", elapsed)
	}
}
