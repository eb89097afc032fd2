package service

import (
	"github.com/google/uuid"
	"github.com/ouiouimanus/api/internal/database"
	"github.com/shopspring/decimal"
)

// LineFinancials is the financial effect of one order line after the
// order-level discount has been allocated across lines.
type LineFinancials struct {
	LineID   uuid.UUID
	Gross    decimal.Decimal
	Discount decimal.Decimal
	Net      decimal.Decimal
}

// FinancialSnapshot is the single source of truth for an order's revenue.
// Both ledger generation and period reporting consume it; it must be
// computed once per order and reused within a reporting pass.
type FinancialSnapshot struct {
	Lines                  []LineFinancials
	SubtotalBeforeDiscount decimal.Decimal
	TotalDiscount          decimal.Decimal
	NetRevenueFromItems    decimal.Decimal
	TotalRevenue           decimal.Decimal
}

// ComputeFinancialSnapshot computes gross, allocated discount and net per
// line, plus order-level totals.
//
// The order-level discount is split across lines in proportion to each
// line's gross amount, each share capped at the line's own gross. Any
// rounding residual is folded into the last line, re-clamped to
// [0, gross_last], so the shares sum to the total discount exactly.
func ComputeFinancialSnapshot(order database.Order, lines []database.OrderLine) *FinancialSnapshot {
	snap := &FinancialSnapshot{}

	grossSubtotal := decimal.Zero
	for _, line := range lines {
		price := numericToDecimal(line.UnitPrice)
		if price.IsNegative() {
			price = decimal.Zero
		}
		qty := decimal.NewFromInt32(line.Quantity)
		if qty.IsNegative() {
			qty = decimal.Zero
		}
		gross := price.Mul(qty)
		grossSubtotal = grossSubtotal.Add(gross)
		snap.Lines = append(snap.Lines, LineFinancials{LineID: line.ID, Gross: gross})
	}

	// Legacy orders may carry no line prices; fall back to the stored
	// subtotal so the discount can still be clamped sensibly.
	subtotal := grossSubtotal
	if subtotal.IsZero() {
		subtotal = numericToDecimal(order.Subtotal)
	}
	snap.SubtotalBeforeDiscount = subtotal

	totalDiscount := numericToDecimal(order.TotalDiscount)
	if totalDiscount.IsNegative() {
		totalDiscount = decimal.Zero
	}
	if totalDiscount.GreaterThan(subtotal) {
		totalDiscount = subtotal
	}
	snap.TotalDiscount = totalDiscount

	if !totalDiscount.IsZero() && !subtotal.IsZero() {
		allocated := decimal.Zero
		for i := range snap.Lines {
			share := snap.Lines[i].Gross.Div(subtotal).Mul(totalDiscount)
			if share.GreaterThan(snap.Lines[i].Gross) {
				share = snap.Lines[i].Gross
			}
			snap.Lines[i].Discount = share
			allocated = allocated.Add(share)
		}

		// Fold the rounding residual into the last line unconditionally, so
		// division dust below any threshold still cancels out exactly.
		residual := totalDiscount.Sub(allocated)
		if len(snap.Lines) > 0 {
			last := &snap.Lines[len(snap.Lines)-1]
			corrected := last.Discount.Add(residual)
			if corrected.IsNegative() {
				corrected = decimal.Zero
			}
			if corrected.GreaterThan(last.Gross) {
				corrected = last.Gross
			}
			last.Discount = corrected
		}
	}

	for i := range snap.Lines {
		net := snap.Lines[i].Gross.Sub(snap.Lines[i].Discount)
		if net.IsNegative() {
			net = decimal.Zero
		}
		snap.Lines[i].Net = net
		snap.NetRevenueFromItems = snap.NetRevenueFromItems.Add(net)
	}

	// The stored total is authoritative when present; otherwise revenue is
	// net items plus shipping.
	if stored := numericToDecimal(order.Total); !stored.IsZero() {
		snap.TotalRevenue = stored
	} else {
		snap.TotalRevenue = snap.NetRevenueFromItems.Add(numericToDecimal(order.ShippingCost))
	}

	return snap
}

// SnapshotCache memoizes financial snapshots by order id for the duration of
// one reporting pass, so repeated rounding can never produce two different
// views of the same order.
type SnapshotCache struct {
	snapshots map[uuid.UUID]*FinancialSnapshot
}

func NewSnapshotCache() *SnapshotCache {
	return &SnapshotCache{snapshots: make(map[uuid.UUID]*FinancialSnapshot)}
}

func (c *SnapshotCache) Get(order database.Order, lines []database.OrderLine) *FinancialSnapshot {
	if snap, ok := c.snapshots[order.ID]; ok {
		return snap
	}
	snap := ComputeFinancialSnapshot(order, lines)
	c.snapshots[order.ID] = snap
	return snap
}
