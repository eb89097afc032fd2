package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/ouiouimanus/api/internal/database"
	"github.com/shopspring/decimal"
)

func orderWithDiscount(subtotal, discount, total string) database.Order {
	return database.Order{
		ID:            uuid.New(),
		Subtotal:      makeNumeric(subtotal),
		TotalDiscount: makeNumeric(discount),
		Total:         makeNumeric(total),
	}
}

func lineFor(price string, qty int32) database.OrderLine {
	return database.OrderLine{
		ID:        uuid.New(),
		UnitPrice: makeNumeric(price),
		Quantity:  qty,
	}
}

func TestComputeFinancialSnapshot_ProportionalAllocation(t *testing.T) {
	order := orderWithDiscount("35.00", "10.00", "25.00")
	lines := []database.OrderLine{
		lineFor("10.00", 1),
		lineFor("20.00", 1),
		lineFor("5.00", 1),
	}

	snap := ComputeFinancialSnapshot(order, lines)

	// Shares must sum to the order discount exactly, rounding residual
	// folded into the last line.
	sum := decimal.Zero
	for _, lf := range snap.Lines {
		sum = sum.Add(lf.Discount)
	}
	if !sum.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("discount shares sum to %s, expected 10.00", sum)
	}
	if !snap.NetRevenueFromItems.Equal(decimal.RequireFromString("25.00")) {
		t.Errorf("net revenue = %s, expected 25.00", snap.NetRevenueFromItems)
	}

	// Each share proportional to its gross: the 20.00 line carries twice
	// the 10.00 line's discount.
	ratio := snap.Lines[1].Discount.Div(snap.Lines[0].Discount)
	if !ratio.Sub(decimal.NewFromInt(2)).Abs().LessThan(decimal.RequireFromString("0.0001")) {
		t.Errorf("share ratio = %s, expected 2", ratio)
	}
}

func TestComputeFinancialSnapshot_DiscountClampedToSubtotal(t *testing.T) {
	order := orderWithDiscount("15.00", "999.00", "0.00")
	lines := []database.OrderLine{
		lineFor("10.00", 1),
		lineFor("5.00", 1),
	}

	snap := ComputeFinancialSnapshot(order, lines)

	if !snap.TotalDiscount.Equal(decimal.RequireFromString("15.00")) {
		t.Errorf("clamped discount = %s, expected 15.00", snap.TotalDiscount)
	}
	// The proportional shares leave sub-unit division dust; the last-line
	// correction must cancel it exactly, not just within a tolerance.
	sum := decimal.Zero
	for _, lf := range snap.Lines {
		sum = sum.Add(lf.Discount)
	}
	if !sum.Equal(decimal.RequireFromString("15.00")) {
		t.Errorf("discount shares sum to %s, expected exactly 15.00", sum)
	}
	for i, lf := range snap.Lines {
		if !lf.Net.IsZero() {
			t.Errorf("line %d net = %s, expected 0 under full discount", i, lf.Net)
		}
	}
}

func TestComputeFinancialSnapshot_NegativeInputsFloored(t *testing.T) {
	order := orderWithDiscount("0", "-5.00", "0")
	lines := []database.OrderLine{
		{ID: uuid.New(), UnitPrice: makeNumeric("-10.00"), Quantity: 2},
		{ID: uuid.New(), UnitPrice: makeNumeric("8.00"), Quantity: -1},
	}

	snap := ComputeFinancialSnapshot(order, lines)

	if !snap.Lines[0].Gross.IsZero() {
		t.Errorf("negative price line gross = %s, expected 0", snap.Lines[0].Gross)
	}
	if !snap.Lines[1].Gross.IsZero() {
		t.Errorf("negative quantity line gross = %s, expected 0", snap.Lines[1].Gross)
	}
	if !snap.TotalDiscount.IsZero() {
		t.Errorf("negative discount floored to %s, expected 0", snap.TotalDiscount)
	}
}

func TestComputeFinancialSnapshot_StoredTotalAuthoritative(t *testing.T) {
	order := orderWithDiscount("30.00", "0", "42.50")
	lines := []database.OrderLine{lineFor("30.00", 1)}

	snap := ComputeFinancialSnapshot(order, lines)

	if !snap.TotalRevenue.Equal(decimal.RequireFromString("42.50")) {
		t.Errorf("total revenue = %s, expected stored 42.50", snap.TotalRevenue)
	}
}

func TestComputeFinancialSnapshot_ShippingWhenNoStoredTotal(t *testing.T) {
	order := orderWithDiscount("30.00", "0", "0")
	order.ShippingCost = makeNumeric("4.00")
	lines := []database.OrderLine{lineFor("30.00", 1)}

	snap := ComputeFinancialSnapshot(order, lines)

	if !snap.TotalRevenue.Equal(decimal.RequireFromString("34.00")) {
		t.Errorf("total revenue = %s, expected 34.00 (net + shipping)", snap.TotalRevenue)
	}
}

func TestComputeFinancialSnapshot_ZeroPriceLinesFallBackToStoredSubtotal(t *testing.T) {
	// Legacy orders can carry lines with no prices; the stored subtotal
	// still bounds the discount.
	order := orderWithDiscount("50.00", "60.00", "0")
	lines := []database.OrderLine{lineFor("0", 3)}

	snap := ComputeFinancialSnapshot(order, lines)

	if !snap.SubtotalBeforeDiscount.Equal(decimal.RequireFromString("50.00")) {
		t.Errorf("subtotal = %s, expected stored 50.00", snap.SubtotalBeforeDiscount)
	}
	if !snap.TotalDiscount.Equal(decimal.RequireFromString("50.00")) {
		t.Errorf("discount = %s, expected clamp at 50.00", snap.TotalDiscount)
	}
}

func TestSnapshotCacheReturnsSameSnapshot(t *testing.T) {
	order := orderWithDiscount("35.00", "10.00", "25.00")
	lines := []database.OrderLine{lineFor("35.00", 1)}

	cache := NewSnapshotCache()
	first := cache.Get(order, lines)
	second := cache.Get(order, nil) // lines ignored on a cache hit

	if first != second {
		t.Error("cache returned a different snapshot for the same order")
	}
}
