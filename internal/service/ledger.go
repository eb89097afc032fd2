package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/ouiouimanus/api/internal/database"
	"github.com/shopspring/decimal"
)

// LedgerStore defines the DB methods ledger generation needs.
// Satisfied by *database.Queries.
type LedgerStore interface {
	DeleteLedgerRowsByOrder(ctx context.Context, orderID uuid.UUID) error
	CreateLedgerRow(ctx context.Context, arg database.CreateLedgerRowParams) (database.SalesLedgerRow, error)
	SetOrderProfit(ctx context.Context, arg database.SetOrderProfitParams) error
	ListProductsWithCategoryByIDs(ctx context.Context, ids []uuid.UUID) ([]database.GetProductWithCategoryRow, error)
	ListRecipeLinesByProducts(ctx context.Context, productIDs []uuid.UUID) ([]database.RecipeLine, error)
	ListIngredientsByIDs(ctx context.Context, ids []uuid.UUID) ([]database.Ingredient, error)
}

// GenerateLedgerRows writes one immutable sales-ledger row per order line
// for a finalized order, replacing any prior rows for the order
// (delete-then-insert, never an incremental upsert), and persists the
// order-level profit. Re-running it for the same order and inputs produces
// an identical row set.
//
// Unlike stock deduction this must succeed: an order without ledger rows
// corrupts every downstream report, so any failure propagates and fails the
// caller's transaction.
func GenerateLedgerRows(ctx context.Context, store LedgerStore, order database.Order, lines []database.OrderLine) (decimal.Decimal, error) {
	if err := store.DeleteLedgerRowsByOrder(ctx, order.ID); err != nil {
		return decimal.Zero, fmt.Errorf("delete prior ledger rows: %w", err)
	}

	if len(lines) == 0 {
		if err := store.SetOrderProfit(ctx, database.SetOrderProfitParams{
			ID:     order.ID,
			Profit: decimalToNumeric(decimal.Zero),
		}); err != nil {
			return decimal.Zero, fmt.Errorf("zero order profit: %w", err)
		}
		return decimal.Zero, nil
	}

	snap := ComputeFinancialSnapshot(order, lines)

	costs, products, err := buildCostLookup(ctx, store, lines)
	if err != nil {
		return decimal.Zero, err
	}

	soldAt := order.CreatedAt
	if order.FinalizedAt.Valid {
		soldAt = order.FinalizedAt.Time
	}

	orderProfit := decimal.Zero
	for i, line := range lines {
		unitCost := decimal.Zero
		categoryID := pgtype.UUID{}
		categoryName := pgtype.Text{}
		if line.ProductID.Valid {
			pid := uuid.UUID(line.ProductID.Bytes)
			unitCost = costs[pid]
			if p, ok := products[pid]; ok {
				categoryID = pgtype.UUID{Bytes: p.CategoryID, Valid: true}
				categoryName = pgtype.Text{String: p.CategoryName, Valid: true}
			}
		}
		totalCost := unitCost.Mul(decimal.NewFromInt32(line.Quantity))
		profit := snap.Lines[i].Net.Sub(totalCost)
		orderProfit = orderProfit.Add(profit)

		qty := decimal.NewFromInt32(line.Quantity)
		unitRevenue := decimal.Zero
		if !qty.IsZero() {
			unitRevenue = snap.Lines[i].Net.Div(qty)
		}

		if _, err := store.CreateLedgerRow(ctx, database.CreateLedgerRowParams{
			OrderID:       order.ID,
			Seq:           int32(i),
			ProductID:     line.ProductID,
			ProductName:   line.ProductName,
			CategoryID:    categoryID,
			CategoryName:  categoryName,
			Quantity:      line.Quantity,
			UnitRevenue:   decimalToNumeric(unitRevenue),
			TotalRevenue:  decimalToNumeric(snap.Lines[i].Net),
			UnitCost:      decimalToNumeric(unitCost),
			TotalCost:     decimalToNumeric(totalCost),
			Profit:        decimalToNumeric(profit),
			PaymentMethod: order.PaymentMethod,
			SoldAt:        soldAt,
		}); err != nil {
			return decimal.Zero, fmt.Errorf("insert ledger row %d: %w", i, err)
		}
	}

	if err := store.SetOrderProfit(ctx, database.SetOrderProfitParams{
		ID:     order.ID,
		Profit: decimalToNumeric(orderProfit),
	}); err != nil {
		return decimal.Zero, fmt.Errorf("set order profit: %w", err)
	}
	return orderProfit, nil
}

// productLookup is the catalog/cost subset of LedgerStore, shared with the
// period reporter so both compute cost from the same recipe math.
type productLookup interface {
	ListProductsWithCategoryByIDs(ctx context.Context, ids []uuid.UUID) ([]database.GetProductWithCategoryRow, error)
	ListRecipeLinesByProducts(ctx context.Context, productIDs []uuid.UUID) ([]database.RecipeLine, error)
	ListIngredientsByIDs(ctx context.Context, ids []uuid.UUID) ([]database.Ingredient, error)
}

// buildCostLookup resolves, for every catalog product referenced by the
// lines, its per-unit ingredient cost (recipe usage quantities priced at
// per-usage-unit ingredient prices) and its category.
func buildCostLookup(ctx context.Context, store productLookup, lines []database.OrderLine) (map[uuid.UUID]decimal.Decimal, map[uuid.UUID]database.GetProductWithCategoryRow, error) {
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

	costs := make(map[uuid.UUID]decimal.Decimal)
	products := make(map[uuid.UUID]database.GetProductWithCategoryRow)
	if len(productIDs) == 0 {
		return costs, products, nil
	}

	rows, err := store.ListProductsWithCategoryByIDs(ctx, productIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch products: %w", err)
	}
	for _, p := range rows {
		products[p.ID] = p
	}

	recipeLines, err := store.ListRecipeLinesByProducts(ctx, productIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch recipes: %w", err)
	}

	var ingredientIDs []uuid.UUID
	seenIng := make(map[uuid.UUID]bool)
	for _, rl := range recipeLines {
		if !seenIng[rl.IngredientID] {
			seenIng[rl.IngredientID] = true
			ingredientIDs = append(ingredientIDs, rl.IngredientID)
		}
	}
	usagePrices := make(map[uuid.UUID]decimal.Decimal)
	if len(ingredientIDs) > 0 {
		ingredients, err := store.ListIngredientsByIDs(ctx, ingredientIDs)
		if err != nil {
			return nil, nil, fmt.Errorf("fetch ingredients: %w", err)
		}
		for _, ing := range ingredients {
			usagePrices[ing.ID] = PriceToUsageUnit(ing.Unit, numericToDecimal(ing.UnitPrice))
		}
	}

	for _, rl := range recipeLines {
		lineCost := usagePrices[rl.IngredientID].Mul(numericToDecimal(rl.Quantity))
		costs[rl.ProductID] = costs[rl.ProductID].Add(lineCost)
	}
	return costs, products, nil
}
