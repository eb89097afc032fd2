package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/ouiouimanus/api/internal/database"
	"github.com/shopspring/decimal"
)

// businessDayStartHour is the wall-clock hour a business day begins.
// Sales recorded between midnight and 05:00 belong to the previous day.
const businessDayStartHour = 5

// BusinessDayStart returns the 05:00 boundary that opens the business day
// containing t.
func BusinessDayStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), businessDayStartHour, 0, 0, 0, t.Location())
	if t.Before(day) {
		day = day.AddDate(0, 0, -1)
	}
	return day
}

// PercentChange computes (current-previous)/|previous|*100 with the
// conventional degenerate cases: 0 over 0 is 0%, anything over 0 is 100%.
func PercentChange(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		if current.IsZero() {
			return decimal.Zero
		}
		return decimal.NewFromInt(100)
	}
	return current.Sub(previous).Div(previous.Abs()).Mul(decimal.NewFromInt(100))
}

// ReportsStore defines the DB methods period aggregation needs.
// Satisfied by *database.Queries.
type ReportsStore interface {
	ListFinalizedOrdersBetween(ctx context.Context, arg database.ListFinalizedOrdersBetweenParams) ([]database.Order, error)
	ListOrderLinesByOrders(ctx context.Context, orderIDs []uuid.UUID) ([]database.OrderLine, error)
	ListProductsWithCategoryByIDs(ctx context.Context, ids []uuid.UUID) ([]database.GetProductWithCategoryRow, error)
	ListRecipeLinesByProducts(ctx context.Context, productIDs []uuid.UUID) ([]database.RecipeLine, error)
	ListIngredientsByIDs(ctx context.Context, ids []uuid.UUID) ([]database.Ingredient, error)
}

type PeriodStats struct {
	Revenue    decimal.Decimal
	Profit     decimal.Decimal
	Covers     int64
	OrderCount int64
	AvgTicket  decimal.Decimal
}

type DayBucket struct {
	Label   string
	Revenue decimal.Decimal
}

type BreakdownRow struct {
	ID       uuid.UUID
	Name     string
	Quantity int64
	Revenue  decimal.Decimal
}

type DashboardStats struct {
	Current  PeriodStats
	Previous PeriodStats

	RevenueChangePct   decimal.Decimal
	ProfitChangePct    decimal.Decimal
	CoversChangePct    decimal.Decimal
	AvgTicketChangePct decimal.Decimal

	RevenueSeries     []DayBucket
	CategoryBreakdown []BreakdownRow
	ProductBreakdown  []BreakdownRow
}

type DailyReport struct {
	BusinessDay time.Time
	Stats       PeriodStats
	ByPayment   map[string]decimal.Decimal
}

// Reporter computes comparative KPIs over finalized orders. Revenue and
// profit always come from the per-order financial snapshot plus the recipe
// cost lookup; the reporter never re-derives them along a second path.
type Reporter struct {
	store ReportsStore
}

func NewReporter(store ReportsStore) *Reporter {
	return &Reporter{store: store}
}

// DashboardStats aggregates the window of `days` business days ending now,
// compared against the equal-length window immediately preceding it. The
// window is aligned to business-day boundaries so the current, still-open
// day is included and the series buckets cover exactly the window.
func (r *Reporter) DashboardStats(ctx context.Context, now time.Time, days int) (*DashboardStats, error) {
	if days <= 0 {
		days = 7
	}
	currentStart := BusinessDayStart(now).AddDate(0, 0, -(days - 1))
	previousStart := currentStart.AddDate(0, 0, -days)

	current, err := r.loadWindow(ctx, currentStart, now)
	if err != nil {
		return nil, err
	}
	previous, err := r.loadWindow(ctx, previousStart, currentStart)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		Current:  current.stats(),
		Previous: previous.stats(),
	}
	stats.RevenueChangePct = PercentChange(stats.Current.Revenue, stats.Previous.Revenue)
	stats.ProfitChangePct = PercentChange(stats.Current.Profit, stats.Previous.Profit)
	stats.CoversChangePct = PercentChange(decimal.NewFromInt(stats.Current.Covers), decimal.NewFromInt(stats.Previous.Covers))
	stats.AvgTicketChangePct = PercentChange(stats.Current.AvgTicket, stats.Previous.AvgTicket)

	stats.RevenueSeries = current.revenueSeries(currentStart, days)
	stats.CategoryBreakdown, stats.ProductBreakdown = current.breakdowns()
	return stats, nil
}

// DailyReport aggregates one business day starting at the 05:00 boundary.
func (r *Reporter) DailyReport(ctx context.Context, day time.Time) (*DailyReport, error) {
	start := BusinessDayStart(day)
	end := start.Add(24 * time.Hour)

	w, err := r.loadWindow(ctx, start, end)
	if err != nil {
		return nil, err
	}

	report := &DailyReport{
		BusinessDay: start,
		Stats:       w.stats(),
		ByPayment:   make(map[string]decimal.Decimal),
	}
	for _, order := range w.orders {
		snap := w.cache.Get(order, w.linesByOrder[order.ID])
		method := "UNKNOWN"
		if order.PaymentMethod.Valid {
			method = order.PaymentMethod.String
		}
		report.ByPayment[method] = report.ByPayment[method].Add(snap.TotalRevenue)
	}
	return report, nil
}

// reportWindow is one loaded time bucket: orders, their lines, per-product
// costs and catalog rows, plus a snapshot cache shared across the pass.
type reportWindow struct {
	orders       []database.Order
	linesByOrder map[uuid.UUID][]database.OrderLine
	costs        map[uuid.UUID]decimal.Decimal
	products     map[uuid.UUID]database.GetProductWithCategoryRow
	cache        *SnapshotCache
}

func (r *Reporter) loadWindow(ctx context.Context, start, end time.Time) (*reportWindow, error) {
	orders, err := r.store.ListFinalizedOrdersBetween(ctx, database.ListFinalizedOrdersBetweenParams{
		Start: start,
		End:   end,
	})
	if err != nil {
		return nil, fmt.Errorf("list finalized orders: %w", err)
	}

	w := &reportWindow{
		orders:       orders,
		linesByOrder: make(map[uuid.UUID][]database.OrderLine),
		cache:        NewSnapshotCache(),
	}

	if len(orders) > 0 {
		orderIDs := make([]uuid.UUID, len(orders))
		for i, o := range orders {
			orderIDs[i] = o.ID
		}
		lines, err := r.store.ListOrderLinesByOrders(ctx, orderIDs)
		if err != nil {
			return nil, fmt.Errorf("list order lines: %w", err)
		}
		for _, line := range lines {
			w.linesByOrder[line.OrderID] = append(w.linesByOrder[line.OrderID], line)
		}

		var allLines []database.OrderLine
		for _, ls := range w.linesByOrder {
			allLines = append(allLines, ls...)
		}
		w.costs, w.products, err = buildCostLookup(ctx, r.store, allLines)
		if err != nil {
			return nil, err
		}
	} else {
		w.costs = make(map[uuid.UUID]decimal.Decimal)
		w.products = make(map[uuid.UUID]database.GetProductWithCategoryRow)
	}
	return w, nil
}

func (w *reportWindow) stats() PeriodStats {
	s := PeriodStats{}
	for _, order := range w.orders {
		lines := w.linesByOrder[order.ID]
		snap := w.cache.Get(order, lines)
		s.Revenue = s.Revenue.Add(snap.TotalRevenue)
		for i, line := range lines {
			cost := decimal.Zero
			if line.ProductID.Valid {
				cost = w.costs[uuid.UUID(line.ProductID.Bytes)].Mul(decimal.NewFromInt32(line.Quantity))
			}
			s.Profit = s.Profit.Add(snap.Lines[i].Net.Sub(cost))
		}
		if order.Covers.Valid {
			s.Covers += int64(order.Covers.Int32)
		}
		s.OrderCount++
	}
	if s.OrderCount > 0 {
		s.AvgTicket = s.Revenue.Div(decimal.NewFromInt(s.OrderCount))
	}
	return s
}

// revenueSeries buckets revenue by business day. Seven-day windows are
// labeled with relative offsets (D-6 .. D-0); longer windows use calendar
// dates.
func (w *reportWindow) revenueSeries(start time.Time, days int) []DayBucket {
	byDay := make(map[time.Time]decimal.Decimal)
	for _, order := range w.orders {
		day := BusinessDayStart(order.CreatedAt)
		snap := w.cache.Get(order, w.linesByOrder[order.ID])
		byDay[day] = byDay[day].Add(snap.TotalRevenue)
	}

	firstDay := BusinessDayStart(start)
	series := make([]DayBucket, 0, days)
	for i := 0; i < days; i++ {
		day := firstDay.AddDate(0, 0, i)
		label := day.Format("2006-01-02")
		if days <= 7 {
			label = fmt.Sprintf("D-%d", days-1-i)
		}
		series = append(series, DayBucket{Label: label, Revenue: byDay[day]})
	}
	return series
}

func (w *reportWindow) breakdowns() (byCategory, byProduct []BreakdownRow) {
	type agg struct {
		name     string
		quantity int64
		revenue  decimal.Decimal
	}
	categories := make(map[uuid.UUID]*agg)
	products := make(map[uuid.UUID]*agg)

	for _, order := range w.orders {
		lines := w.linesByOrder[order.ID]
		snap := w.cache.Get(order, lines)
		for i, line := range lines {
			if !line.ProductID.Valid {
				continue
			}
			pid := uuid.UUID(line.ProductID.Bytes)
			p, ok := w.products[pid]
			if !ok {
				continue
			}

			pa := products[pid]
			if pa == nil {
				pa = &agg{name: p.Name}
				products[pid] = pa
			}
			pa.quantity += int64(line.Quantity)
			pa.revenue = pa.revenue.Add(snap.Lines[i].Net)

			ca := categories[p.CategoryID]
			if ca == nil {
				ca = &agg{name: p.CategoryName}
				categories[p.CategoryID] = ca
			}
			ca.quantity += int64(line.Quantity)
			ca.revenue = ca.revenue.Add(snap.Lines[i].Net)
		}
	}

	for id, a := range categories {
		byCategory = append(byCategory, BreakdownRow{ID: id, Name: a.name, Quantity: a.quantity, Revenue: a.revenue})
	}
	for id, a := range products {
		byProduct = append(byProduct, BreakdownRow{ID: id, Name: a.name, Quantity: a.quantity, Revenue: a.revenue})
	}
	sort.Slice(byCategory, func(i, j int) bool { return byCategory[i].Revenue.GreaterThan(byCategory[j].Revenue) })
	sort.Slice(byProduct, func(i, j int) bool { return byProduct[i].Revenue.GreaterThan(byProduct[j].Revenue) })
	return byCategory, byProduct
}
