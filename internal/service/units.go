package service

import (
	"github.com/ouiouimanus/api/internal/enum"
	"github.com/shopspring/decimal"
)

var thousand = decimal.NewFromInt(1000)

// UsageToStorage converts a quantity expressed in an ingredient's usage unit
// (grams, milliliters, pieces) to its storage unit (kilograms, liters,
// pieces). unit is the ingredient's storage unit.
func UsageToStorage(unit string, usageQty decimal.Decimal) decimal.Decimal {
	switch unit {
	case enum.UnitKilogram, enum.UnitLiter:
		return usageQty.Div(thousand)
	default:
		return usageQty
	}
}

// PriceToUsageUnit converts a per-storage-unit price to a per-usage-unit
// price (per-kg → per-gram, per-liter → per-milliliter, per-piece unchanged).
func PriceToUsageUnit(unit string, storagePrice decimal.Decimal) decimal.Decimal {
	switch unit {
	case enum.UnitKilogram, enum.UnitLiter:
		return storagePrice.Div(thousand)
	default:
		return storagePrice
	}
}
