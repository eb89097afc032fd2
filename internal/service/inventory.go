package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/ouiouimanus/api/internal/database"
	"github.com/shopspring/decimal"
)

// stockEpsilon suppresses stock writes whose delta is negligible.
var stockEpsilon = decimal.New(1, -4) // 0.0001

// InventoryStore defines the DB methods stock deduction needs.
// Satisfied by *database.Queries.
type InventoryStore interface {
	ListRecipeLinesByProducts(ctx context.Context, productIDs []uuid.UUID) ([]database.RecipeLine, error)
	ListIngredientsByIDs(ctx context.Context, ids []uuid.UUID) ([]database.Ingredient, error)
	DeductIngredientStock(ctx context.Context, arg database.DeductIngredientStockParams) (database.Ingredient, error)
}

// IsLowStock reports whether an ingredient sits at or below its reorder
// threshold.
func IsLowStock(ing database.Ingredient) bool {
	return numericToDecimal(ing.Stock).LessThanOrEqual(numericToDecimal(ing.MinStock))
}

// ConsumeOrderStock deducts the ingredients consumed by the given order
// lines from stock. Consumption is aggregated per ingredient across lines,
// honoring each line's excluded-ingredient set, converted from usage to
// storage units and floored at zero.
//
// The whole operation is best-effort: a failed ingredient update is logged
// and skipped, never blocking the caller. Stock drift is recoverable by a
// manual correction; a lost sale record is not.
func ConsumeOrderStock(ctx context.Context, store InventoryStore, lines []database.OrderLine) error {
	// Ad hoc lines have no catalog product and therefore no recipe.
	var productIDs []uuid.UUID
	seen := make(map[uuid.UUID]bool)
	for _, line := range lines {
		if !line.ProductID.Valid {
			continue
		}
		id := uuid.UUID(line.ProductID.Bytes)
		if !seen[id] {
			seen[id] = true
			productIDs = append(productIDs, id)
		}
	}
	if len(productIDs) == 0 {
		return nil
	}

	recipeLines, err := store.ListRecipeLinesByProducts(ctx, productIDs)
	if err != nil {
		return fmt.Errorf("fetch recipes: %w", err)
	}
	recipes := make(map[uuid.UUID][]database.RecipeLine)
	for _, rl := range recipeLines {
		recipes[rl.ProductID] = append(recipes[rl.ProductID], rl)
	}

	// usage unit quantities, aggregated per ingredient
	usage := make(map[uuid.UUID]decimal.Decimal)
	for _, line := range lines {
		if !line.ProductID.Valid {
			continue
		}
		excluded := make(map[uuid.UUID]bool, len(line.ExcludedIngredients))
		for _, id := range line.ExcludedIngredients {
			excluded[id] = true
		}
		lineQty := decimal.NewFromInt32(line.Quantity)
		for _, rl := range recipes[uuid.UUID(line.ProductID.Bytes)] {
			if excluded[rl.IngredientID] {
				continue
			}
			usage[rl.IngredientID] = usage[rl.IngredientID].Add(numericToDecimal(rl.Quantity).Mul(lineQty))
		}
	}
	if len(usage) == 0 {
		return nil
	}

	ingredientIDs := make([]uuid.UUID, 0, len(usage))
	for id := range usage {
		ingredientIDs = append(ingredientIDs, id)
	}
	ingredients, err := store.ListIngredientsByIDs(ctx, ingredientIDs)
	if err != nil {
		return fmt.Errorf("fetch ingredients: %w", err)
	}

	if len(ingredients) < len(ingredientIDs) {
		found := make(map[uuid.UUID]bool, len(ingredients))
		for _, ing := range ingredients {
			found[ing.ID] = true
		}
		for _, id := range ingredientIDs {
			if !found[id] {
				log.Printf("ERROR: ingredient %s referenced by recipe not found, skipping deduction", id)
			}
		}
	}

	for _, ing := range ingredients {
		delta := UsageToStorage(ing.Unit, usage[ing.ID])
		if delta.LessThan(stockEpsilon) {
			continue
		}
		// The decrement and the zero floor happen in SQL so concurrent
		// finalizations cannot lose each other's deduction.
		if _, err := store.DeductIngredientStock(ctx, database.DeductIngredientStockParams{
			ID:    ing.ID,
			Delta: decimalToNumericExact(delta),
		}); err != nil {
			log.Printf("ERROR: deduct stock for ingredient %s: %v", ing.ID, err)
		}
	}
	return nil
}
