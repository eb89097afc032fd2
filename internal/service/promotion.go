package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ouiouimanus/api/internal/enum"
	"github.com/shopspring/decimal"
)

var ErrUnknownPromotionKind = errors.New("unknown promotion kind")

// PromoContext is the slice of order state a promotion needs to price
// itself against.
type PromoContext struct {
	Subtotal           decimal.Decimal
	ShippingCost       decimal.Decimal
	QuantityByProduct  map[uuid.UUID]int32
	UnitPriceByProduct map[uuid.UUID]decimal.Decimal
}

// PromotionRule is one promotion kind. Each variant carries only the fields
// its kind needs; DiscountAmount is the common accessor the financial
// snapshot consumes.
type PromotionRule interface {
	Kind() string
	DiscountAmount(ctx PromoContext) decimal.Decimal
}

type FixedAmountPromotion struct {
	Amount decimal.Decimal `json:"amount"`
}

func (p FixedAmountPromotion) Kind() string { return enum.PromotionKindFixedAmount }

func (p FixedAmountPromotion) DiscountAmount(ctx PromoContext) decimal.Decimal {
	if p.Amount.GreaterThan(ctx.Subtotal) {
		return ctx.Subtotal
	}
	if p.Amount.IsNegative() {
		return decimal.Zero
	}
	return p.Amount
}

type PercentagePromotion struct {
	Percent decimal.Decimal `json:"percent"`
}

func (p PercentagePromotion) Kind() string { return enum.PromotionKindPercentage }

func (p PercentagePromotion) DiscountAmount(ctx PromoContext) decimal.Decimal {
	if p.Percent.IsNegative() {
		return decimal.Zero
	}
	pct := p.Percent
	if pct.GreaterThan(decimal.NewFromInt(100)) {
		pct = decimal.NewFromInt(100)
	}
	return ctx.Subtotal.Mul(pct).Div(decimal.NewFromInt(100))
}

type BuyXGetYPromotion struct {
	ProductID uuid.UUID `json:"product_id"`
	BuyQty    int32     `json:"buy_qty"`
	GetQty    int32     `json:"get_qty"`
}

func (p BuyXGetYPromotion) Kind() string { return enum.PromotionKindBuyXGetY }

// DiscountAmount grants GetQty free units of the product for every full
// group of BuyQty+GetQty units in the order.
func (p BuyXGetYPromotion) DiscountAmount(ctx PromoContext) decimal.Decimal {
	if p.BuyQty <= 0 || p.GetQty <= 0 {
		return decimal.Zero
	}
	qty := ctx.QuantityByProduct[p.ProductID]
	group := p.BuyQty + p.GetQty
	freeUnits := (qty / group) * p.GetQty
	if freeUnits <= 0 {
		return decimal.Zero
	}
	unitPrice := ctx.UnitPriceByProduct[p.ProductID]
	discount := unitPrice.Mul(decimal.NewFromInt32(freeUnits))
	if discount.GreaterThan(ctx.Subtotal) {
		return ctx.Subtotal
	}
	return discount
}

type FreeShippingPromotion struct{}

func (p FreeShippingPromotion) Kind() string { return enum.PromotionKindFreeShipping }

func (p FreeShippingPromotion) DiscountAmount(ctx PromoContext) decimal.Decimal {
	return ctx.ShippingCost
}

// ParsePromotionRule decodes the stored config blob for a promotion kind
// into its tagged variant.
func ParsePromotionRule(kind string, config []byte) (PromotionRule, error) {
	if len(config) == 0 {
		config = []byte("{}")
	}
	switch kind {
	case enum.PromotionKindFixedAmount:
		var p FixedAmountPromotion
		if err := json.Unmarshal(config, &p); err != nil {
			return nil, fmt.Errorf("parse fixed amount promotion: %w", err)
		}
		return p, nil
	case enum.PromotionKindPercentage:
		var p PercentagePromotion
		if err := json.Unmarshal(config, &p); err != nil {
			return nil, fmt.Errorf("parse percentage promotion: %w", err)
		}
		return p, nil
	case enum.PromotionKindBuyXGetY:
		var p BuyXGetYPromotion
		if err := json.Unmarshal(config, &p); err != nil {
			return nil, fmt.Errorf("parse buy x get y promotion: %w", err)
		}
		return p, nil
	case enum.PromotionKindFreeShipping:
		return FreeShippingPromotion{}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownPromotionKind, kind)
}
