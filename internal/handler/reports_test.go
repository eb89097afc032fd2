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
	"github.com/ouiouimanus/api/internal/database"
	"github.com/ouiouimanus/api/internal/handler"
	"github.com/ouiouimanus/api/internal/service"
)

type mockReportServicer struct {
	dashboardFunc func(ctx context.Context, now time.Time, days int) (*service.DashboardStats, error)
	dailyFunc     func(ctx context.Context, day time.Time) (*service.DailyReport, error)
}

func (m *mockReportServicer) DashboardStats(ctx context.Context, now time.Time, days int) (*service.DashboardStats, error) {
	return m.dashboardFunc(ctx, now, days)
}

func (m *mockReportServicer) DailyReport(ctx context.Context, day time.Time) (*service.DailyReport, error) {
	return m.dailyFunc(ctx, day)
}

type mockReportStore struct {
	finalized []database.Order
	ledger    map[uuid.UUID][]database.SalesLedgerRow

	lastLimit  int32
	lastOffset int32
}

func (m *mockReportStore) ListFinalizedOrders(_ context.Context, arg database.ListFinalizedOrdersParams) ([]database.Order, error) {
	m.lastLimit = arg.Limit
	m.lastOffset = arg.Offset
	return m.finalized, nil
}

func (m *mockReportStore) ListLedgerRowsByOrder(_ context.Context, orderID uuid.UUID) ([]database.SalesLedgerRow, error) {
	return m.ledger[orderID], nil
}

func setupReportRouter(svc handler.ReportServicer, store handler.ReportStore) *chi.Mux {
	h := handler.NewReportHandler(svc, store)
	r := chi.NewRouter()
	r.Route("/reports", h.RegisterRoutes)
	return r
}

func TestDashboardDaysCap(t *testing.T) {
	var gotDays int
	svc := &mockReportServicer{
		dashboardFunc: func(_ context.Context, _ time.Time, days int) (*service.DashboardStats, error) {
			gotDays = days
			return &service.DashboardStats{}, nil
		},
	}
	r := setupReportRouter(svc, &mockReportStore{})

	req := httptest.NewRequest(http.MethodGet, "/reports/dashboard?days=365", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if gotDays != 90 {
		t.Errorf("expected days capped at 90, got %d", gotDays)
	}
}

func TestDashboardInvalidDays(t *testing.T) {
	svc := &mockReportServicer{
		dashboardFunc: func(_ context.Context, _ time.Time, _ int) (*service.DashboardStats, error) {
			t.Fatal("service should not be called for invalid input")
			return nil, nil
		},
	}
	r := setupReportRouter(svc, &mockReportStore{})

	for _, q := range []string{"days=0", "days=abc"} {
		req := httptest.NewRequest(http.MethodGet, "/reports/dashboard?"+q, nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", q, rr.Code)
		}
	}
}

func TestDailyReportBadDate(t *testing.T) {
	svc := &mockReportServicer{
		dailyFunc: func(_ context.Context, _ time.Time) (*service.DailyReport, error) {
			t.Fatal("service should not be called for invalid input")
			return nil, nil
		},
	}
	r := setupReportRouter(svc, &mockReportStore{})

	req := httptest.NewRequest(http.MethodGet, "/reports/daily?date=03-08-2026", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rr.Code)
	}
}

func TestDailyReportPassesParsedDate(t *testing.T) {
	var gotDay time.Time
	svc := &mockReportServicer{
		dailyFunc: func(_ context.Context, day time.Time) (*service.DailyReport, error) {
			gotDay = day
			return &service.DailyReport{BusinessDay: day}, nil
		},
	}
	r := setupReportRouter(svc, &mockReportStore{})

	req := httptest.NewRequest(http.MethodGet, "/reports/daily?date=2026-08-03", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if gotDay.Year() != 2026 || gotDay.Month() != time.August || gotDay.Day() != 3 {
		t.Errorf("expected day 2026-08-03, got %v", gotDay)
	}
}

func TestSalesHistoryLimitCap(t *testing.T) {
	store := &mockReportStore{}
	r := setupReportRouter(&mockReportServicer{}, store)

	req := httptest.NewRequest(http.MethodGet, "/reports/sales?limit=500&offset=40", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if store.lastLimit != 100 {
		t.Errorf("expected limit capped at 100, got %d", store.lastLimit)
	}
	if store.lastOffset != 40 {
		t.Errorf("expected offset 40, got %d", store.lastOffset)
	}
}

func TestSalesHistoryDefaultPageSize(t *testing.T) {
	store := &mockReportStore{}
	r := setupReportRouter(&mockReportServicer{}, store)

	req := httptest.NewRequest(http.MethodGet, "/reports/sales", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if store.lastLimit != 20 {
		t.Errorf("expected default limit 20, got %d", store.lastLimit)
	}
}

func TestSaleDetailNotFound(t *testing.T) {
	store := &mockReportStore{ledger: make(map[uuid.UUID][]database.SalesLedgerRow)}
	r := setupReportRouter(&mockReportServicer{}, store)

	req := httptest.NewRequest(http.MethodGet, "/reports/sales/"+uuid.NewString(), nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
}

func TestSaleDetailReturnsLedgerRows(t *testing.T) {
	orderID := uuid.New()
	store := &mockReportStore{ledger: map[uuid.UUID][]database.SalesLedgerRow{
		orderID: {
			{
				OrderID:      orderID,
				Seq:          1,
				ProductName:  "Ramen",
				Quantity:     2,
				UnitRevenue:  makeNumeric(t, "11.00"),
				TotalRevenue: makeNumeric(t, "22.00"),
				UnitCost:     makeNumeric(t, "4.00"),
				TotalCost:    makeNumeric(t, "8.00"),
				Profit:       makeNumeric(t, "14.00"),
				SoldAt:       time.Now(),
			},
		},
	}}
	r := setupReportRouter(&mockReportServicer{}, store)

	req := httptest.NewRequest(http.MethodGet, "/reports/sales/"+orderID.String(), nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var rows []map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&rows); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 ledger row, got %d", len(rows))
	}
	if rows[0]["total_revenue"] != "22.00" || rows[0]["profit"] != "14.00" {
		t.Errorf("unexpected ledger row: %v", rows[0])
	}
}
