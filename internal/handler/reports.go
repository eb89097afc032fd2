package handler

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/ouiouimanus/api/internal/database"
	"github.com/ouiouimanus/api/internal/service"
)

const (
	defaultDashboardDays = 7
	maxDashboardDays     = 90

	defaultSalesPageSize = 20
	maxSalesPageSize     = 100
)

// ReportServicer defines the service methods needed by report handlers.
type ReportServicer interface {
	DashboardStats(ctx context.Context, now time.Time, days int) (*service.DashboardStats, error)
	DailyReport(ctx context.Context, day time.Time) (*service.DailyReport, error)
}

// ReportStore defines the database methods needed by report handlers.
type ReportStore interface {
	ListFinalizedOrders(ctx context.Context, arg database.ListFinalizedOrdersParams) ([]database.Order, error)
	ListLedgerRowsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.SalesLedgerRow, error)
}

// ReportHandler serves dashboard KPIs, daily summaries and sales history.
type ReportHandler struct {
	svc   ReportServicer
	store ReportStore
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(svc ReportServicer, store ReportStore) *ReportHandler {
	return &ReportHandler{svc: svc, store: store}
}

// RegisterRoutes registers report endpoints on the given Chi router.
func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard", h.Dashboard)
	r.Get("/daily", h.Daily)
	r.Get("/sales", h.SalesHistory)
	r.Get("/sales/{id}", h.SaleDetail)
}

type periodStatsResponse struct {
	Revenue    string `json:"revenue"`
	Profit     string `json:"profit"`
	Covers     int64  `json:"covers"`
	OrderCount int64  `json:"order_count"`
	AvgTicket  string `json:"avg_ticket"`
}

type dayBucketResponse struct {
	Label   string `json:"label"`
	Revenue string `json:"revenue"`
}

type breakdownRowResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Quantity int64     `json:"quantity"`
	Revenue  string    `json:"revenue"`
}

type dashboardResponse struct {
	Current  periodStatsResponse `json:"current"`
	Previous periodStatsResponse `json:"previous"`

	RevenueChangePct   string `json:"revenue_change_pct"`
	ProfitChangePct    string `json:"profit_change_pct"`
	CoversChangePct    string `json:"covers_change_pct"`
	AvgTicketChangePct string `json:"avg_ticket_change_pct"`

	RevenueSeries     []dayBucketResponse    `json:"revenue_series"`
	CategoryBreakdown []breakdownRowResponse `json:"category_breakdown"`
	ProductBreakdown  []breakdownRowResponse `json:"product_breakdown"`
}

type dailyReportResponse struct {
	BusinessDay string              `json:"business_day"`
	Stats       periodStatsResponse `json:"stats"`
	ByPayment   map[string]string   `json:"by_payment"`
}

type ledgerRowResponse struct {
	Seq           int32     `json:"seq"`
	ProductName   string    `json:"product_name"`
	CategoryName  *string   `json:"category_name"`
	Quantity      int32     `json:"quantity"`
	UnitRevenue   string    `json:"unit_revenue"`
	TotalRevenue  string    `json:"total_revenue"`
	UnitCost      string    `json:"unit_cost"`
	TotalCost     string    `json:"total_cost"`
	Profit        string    `json:"profit"`
	PaymentMethod *string   `json:"payment_method"`
	SoldAt        time.Time `json:"sold_at"`
}

// Dashboard handles GET /reports/dashboard?days=N. Window size is capped
// at 90 days; comparisons run against the window of equal length before it.
func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	days := defaultDashboardDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid days"})
			return
		}
		days = parsed
	}
	if days > maxDashboardDays {
		days = maxDashboardDays
	}

	stats, err := h.svc.DashboardStats(r.Context(), time.Now(), days)
	if err != nil {
		log.Printf("ERROR: dashboard stats: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := dashboardResponse{
		Current:            toPeriodStatsResponse(stats.Current),
		Previous:           toPeriodStatsResponse(stats.Previous),
		RevenueChangePct:   stats.RevenueChangePct.StringFixed(1),
		ProfitChangePct:    stats.ProfitChangePct.StringFixed(1),
		CoversChangePct:    stats.CoversChangePct.StringFixed(1),
		AvgTicketChangePct: stats.AvgTicketChangePct.StringFixed(1),
	}
	resp.RevenueSeries = make([]dayBucketResponse, len(stats.RevenueSeries))
	for i, b := range stats.RevenueSeries {
		resp.RevenueSeries[i] = dayBucketResponse{Label: b.Label, Revenue: b.Revenue.StringFixed(2)}
	}
	resp.CategoryBreakdown = toBreakdownResponses(stats.CategoryBreakdown)
	resp.ProductBreakdown = toBreakdownResponses(stats.ProductBreakdown)
	writeJSON(w, http.StatusOK, resp)
}

// Daily handles GET /reports/daily?date=YYYY-MM-DD. Without a date it
// reports the business day in progress.
func (h *ReportHandler) Daily(w http.ResponseWriter, r *http.Request) {
	day := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date, want YYYY-MM-DD"})
			return
		}
		// Noon keeps the parsed date inside its own business day.
		day = parsed.Add(12 * time.Hour)
	}

	report, err := h.svc.DailyReport(r.Context(), day)
	if err != nil {
		log.Printf("ERROR: daily report: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	byPayment := make(map[string]string, len(report.ByPayment))
	for method, amount := range report.ByPayment {
		byPayment[method] = amount.StringFixed(2)
	}
	writeJSON(w, http.StatusOK, dailyReportResponse{
		BusinessDay: report.BusinessDay.Format("2006-01-02"),
		Stats:       toPeriodStatsResponse(report.Stats),
		ByPayment:   byPayment,
	})
}

// SalesHistory handles GET /reports/sales?limit=N&offset=M: finalized
// orders, newest first.
func (h *ReportHandler) SalesHistory(w http.ResponseWriter, r *http.Request) {
	limit := int32(defaultSalesPageSize)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || parsed < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = int32(parsed)
	}
	if limit > maxSalesPageSize {
		limit = maxSalesPageSize
	}
	offset := int32(0)
	if raw := r.URL.Query().Get("offset"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || parsed < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid offset"})
			return
		}
		offset = int32(parsed)
	}

	orders, err := h.store.ListFinalizedOrders(r.Context(), database.ListFinalizedOrdersParams{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		log.Printf("ERROR: list finalized orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o, nil)
	}
	writeJSON(w, http.StatusOK, resp)
}

// SaleDetail handles GET /reports/sales/{id}: the per-line ledger breakdown
// for one finalized order.
func (h *ReportHandler) SaleDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	rows, err := h.store.ListLedgerRowsByOrder(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: list ledger rows: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if len(rows) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no ledger rows for order"})
		return
	}

	resp := make([]ledgerRowResponse, len(rows))
	for i, row := range rows {
		resp[i] = ledgerRowResponse{
			Seq:           row.Seq,
			ProductName:   row.ProductName,
			CategoryName:  textOrNil(row.CategoryName),
			Quantity:      row.Quantity,
			UnitRevenue:   numericToString(row.UnitRevenue),
			TotalRevenue:  numericToString(row.TotalRevenue),
			UnitCost:      numericToString(row.UnitCost),
			TotalCost:     numericToString(row.TotalCost),
			Profit:        numericToString(row.Profit),
			PaymentMethod: textOrNil(row.PaymentMethod),
			SoldAt:        row.SoldAt,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func toPeriodStatsResponse(s service.PeriodStats) periodStatsResponse {
	return periodStatsResponse{
		Revenue:    s.Revenue.StringFixed(2),
		Profit:     s.Profit.StringFixed(2),
		Covers:     s.Covers,
		OrderCount: s.OrderCount,
		AvgTicket:  s.AvgTicket.StringFixed(2),
	}
}

func toBreakdownResponses(rows []service.BreakdownRow) []breakdownRowResponse {
	resp := make([]breakdownRowResponse, len(rows))
	for i, row := range rows {
		resp[i] = breakdownRowResponse{
			ID:       row.ID,
			Name:     row.Name,
			Quantity: row.Quantity,
			Revenue:  row.Revenue.StringFixed(2),
		}
	}
	return resp
}
