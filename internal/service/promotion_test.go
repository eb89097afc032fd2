package service

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func promoCtx(subtotal string) PromoContext {
	return PromoContext{
		Subtotal:           decimal.RequireFromString(subtotal),
		QuantityByProduct:  map[uuid.UUID]int32{},
		UnitPriceByProduct: map[uuid.UUID]decimal.Decimal{},
	}
}

func TestFixedAmountPromotion(t *testing.T) {
	p := FixedAmountPromotion{Amount: decimal.RequireFromString("5.00")}

	if got := p.DiscountAmount(promoCtx("20.00")); !got.Equal(decimal.RequireFromString("5.00")) {
		t.Errorf("discount = %s, expected 5.00", got)
	}
	// Capped at the subtotal.
	if got := p.DiscountAmount(promoCtx("3.00")); !got.Equal(decimal.RequireFromString("3.00")) {
		t.Errorf("capped discount = %s, expected 3.00", got)
	}
}

func TestPercentagePromotion(t *testing.T) {
	p := PercentagePromotion{Percent: decimal.NewFromInt(25)}
	if got := p.DiscountAmount(promoCtx("80.00")); !got.Equal(decimal.RequireFromString("20.00")) {
		t.Errorf("discount = %s, expected 20.00", got)
	}

	over := PercentagePromotion{Percent: decimal.NewFromInt(150)}
	if got := over.DiscountAmount(promoCtx("80.00")); !got.Equal(decimal.RequireFromString("80.00")) {
		t.Errorf("over-100%% discount = %s, expected 80.00", got)
	}

	neg := PercentagePromotion{Percent: decimal.NewFromInt(-10)}
	if got := neg.DiscountAmount(promoCtx("80.00")); !got.IsZero() {
		t.Errorf("negative percent discount = %s, expected 0", got)
	}
}

func TestBuyXGetYPromotion(t *testing.T) {
	productID := uuid.New()
	p := BuyXGetYPromotion{ProductID: productID, BuyQty: 2, GetQty: 1}

	ctx := promoCtx("100.00")
	ctx.QuantityByProduct[productID] = 7 // two full groups of 3, one left over
	ctx.UnitPriceByProduct[productID] = decimal.RequireFromString("10.00")

	if got := p.DiscountAmount(ctx); !got.Equal(decimal.RequireFromString("20.00")) {
		t.Errorf("discount = %s, expected 20.00 (2 free units)", got)
	}

	// Not enough units for a group.
	ctx.QuantityByProduct[productID] = 2
	if got := p.DiscountAmount(ctx); !got.IsZero() {
		t.Errorf("discount = %s, expected 0 below group size", got)
	}

	// Product absent from the order.
	delete(ctx.QuantityByProduct, productID)
	if got := p.DiscountAmount(ctx); !got.IsZero() {
		t.Errorf("discount = %s, expected 0 when product missing", got)
	}
}

func TestFreeShippingPromotion(t *testing.T) {
	ctx := promoCtx("50.00")
	ctx.ShippingCost = decimal.RequireFromString("6.00")

	p := FreeShippingPromotion{}
	if got := p.DiscountAmount(ctx); !got.Equal(decimal.RequireFromString("6.00")) {
		t.Errorf("discount = %s, expected shipping cost 6.00", got)
	}
}

func TestParsePromotionRule(t *testing.T) {
	rule, err := ParsePromotionRule("FIXED_AMOUNT", []byte(`{"amount":"7.50"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fixed, ok := rule.(FixedAmountPromotion)
	if !ok {
		t.Fatalf("expected FixedAmountPromotion, got %T", rule)
	}
	if !fixed.Amount.Equal(decimal.RequireFromString("7.50")) {
		t.Errorf("amount = %s, expected 7.50", fixed.Amount)
	}

	if _, err := ParsePromotionRule("FREE_SHIPPING", nil); err != nil {
		t.Errorf("free shipping with empty config: %v", err)
	}

	if _, err := ParsePromotionRule("LOYALTY_POINTS", []byte(`{}`)); !errors.Is(err, ErrUnknownPromotionKind) {
		t.Errorf("expected ErrUnknownPromotionKind, got: %v", err)
	}
}
