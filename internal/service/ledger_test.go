package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/ouiouimanus/api/internal/database"
	"github.com/shopspring/decimal"
)

// mockLedgerStore implements LedgerStore recording the calls it receives.
type mockLedgerStore struct {
	deletedOrders []uuid.UUID
	rows          []database.CreateLedgerRowParams
	profits       []database.SetOrderProfitParams
	deleteErr     error
	createErr     error

	products    []database.GetProductWithCategoryRow
	recipeLines []database.RecipeLine
	ingredients []database.Ingredient
}

func (m *mockLedgerStore) DeleteLedgerRowsByOrder(ctx context.Context, orderID uuid.UUID) error {
	m.deletedOrders = append(m.deletedOrders, orderID)
	return m.deleteErr
}
func (m *mockLedgerStore) CreateLedgerRow(ctx context.Context, arg database.CreateLedgerRowParams) (database.SalesLedgerRow, error) {
	if m.createErr != nil {
		return database.SalesLedgerRow{}, m.createErr
	}
	m.rows = append(m.rows, arg)
	return database.SalesLedgerRow{}, nil
}
func (m *mockLedgerStore) SetOrderProfit(ctx context.Context, arg database.SetOrderProfitParams) error {
	m.profits = append(m.profits, arg)
	return nil
}
func (m *mockLedgerStore) ListProductsWithCategoryByIDs(ctx context.Context, ids []uuid.UUID) ([]database.GetProductWithCategoryRow, error) {
	return m.products, nil
}
func (m *mockLedgerStore) ListRecipeLinesByProducts(ctx context.Context, productIDs []uuid.UUID) ([]database.RecipeLine, error) {
	return m.recipeLines, nil
}
func (m *mockLedgerStore) ListIngredientsByIDs(ctx context.Context, ids []uuid.UUID) ([]database.Ingredient, error) {
	return m.ingredients, nil
}

func finalizedOrder(total string) database.Order {
	return database.Order{
		ID:            uuid.New(),
		Status:        "FINALIZED",
		PaymentStatus: "PAID",
		PaymentMethod: pgtype.Text{String: "CASH", Valid: true},
		Subtotal:      makeNumeric(total),
		Total:         makeNumeric(total),
		CreatedAt:     time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC),
		FinalizedAt:   pgtype.Timestamptz{Time: time.Date(2026, 3, 10, 21, 30, 0, 0, time.UTC), Valid: true},
	}
}

func TestGenerateLedgerRows_DeleteThenInsert(t *testing.T) {
	productID := uuid.New()
	cheeseID := uuid.New()
	categoryID := uuid.New()

	store := &mockLedgerStore{
		products: []database.GetProductWithCategoryRow{
			{ID: productID, CategoryID: categoryID, Name: "Pizza", CategoryName: "Mains"},
		},
		recipeLines: []database.RecipeLine{
			{ProductID: productID, IngredientID: cheeseID, Quantity: makeNumeric("200")},
		},
		ingredients: []database.Ingredient{
			{ID: cheeseID, Unit: "KG", UnitPrice: makeNumeric("10")},
		},
	}

	order := finalizedOrder("24.00")
	lines := []database.OrderLine{
		{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   pgtype.UUID{Bytes: productID, Valid: true},
			ProductName: "Pizza",
			UnitPrice:   makeNumeric("12.00"),
			Quantity:    2,
		},
	}

	profit, err := GenerateLedgerRows(context.Background(), store, order, lines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.deletedOrders) != 1 || store.deletedOrders[0] != order.ID {
		t.Error("prior ledger rows were not deleted first")
	}
	if len(store.rows) != 1 {
		t.Fatalf("expected 1 ledger row, got %d", len(store.rows))
	}

	row := store.rows[0]
	if row.Seq != 0 {
		t.Errorf("seq = %d, expected 0", row.Seq)
	}
	// 200g of cheese at 10/kg = 2.00 per unit, 4.00 for two.
	if !numericEquals(row.UnitCost, "2.00") {
		t.Errorf("unit cost = %s, expected 2.00", numericToDecimal(row.UnitCost))
	}
	if !numericEquals(row.TotalCost, "4.00") {
		t.Errorf("total cost = %s, expected 4.00", numericToDecimal(row.TotalCost))
	}
	if !numericEquals(row.Profit, "20.00") {
		t.Errorf("row profit = %s, expected 20.00", numericToDecimal(row.Profit))
	}
	if row.CategoryName.String != "Mains" {
		t.Errorf("category = %q, expected Mains", row.CategoryName.String)
	}
	if !row.SoldAt.Equal(order.FinalizedAt.Time) {
		t.Errorf("sold at = %s, expected finalized time", row.SoldAt)
	}

	if !profit.Equal(decimal.RequireFromString("20.00")) {
		t.Errorf("order profit = %s, expected 20.00", profit)
	}
	if len(store.profits) != 1 || !numericEquals(store.profits[0].Profit, "20.00") {
		t.Error("order profit was not persisted")
	}
}

func TestGenerateLedgerRows_ZeroLines(t *testing.T) {
	store := &mockLedgerStore{}
	order := finalizedOrder("0")

	profit, err := GenerateLedgerRows(context.Background(), store, order, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !profit.IsZero() {
		t.Errorf("profit = %s, expected 0", profit)
	}
	if len(store.rows) != 0 {
		t.Errorf("expected no ledger rows, got %d", len(store.rows))
	}
	// Prior rows still removed and profit still zeroed.
	if len(store.deletedOrders) != 1 {
		t.Error("prior ledger rows were not deleted")
	}
	if len(store.profits) != 1 || !numericToDecimal(store.profits[0].Profit).IsZero() {
		t.Error("order profit was not zeroed")
	}
}

func TestGenerateLedgerRows_Idempotent(t *testing.T) {
	productID := uuid.New()
	store := &mockLedgerStore{
		products: []database.GetProductWithCategoryRow{
			{ID: productID, CategoryID: uuid.New(), Name: "Salad", CategoryName: "Starters"},
		},
	}

	order := finalizedOrder("9.00")
	lines := []database.OrderLine{
		{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   pgtype.UUID{Bytes: productID, Valid: true},
			ProductName: "Salad",
			UnitPrice:   makeNumeric("9.00"),
			Quantity:    1,
		},
	}

	first, err := GenerateLedgerRows(context.Background(), store, order, lines)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := GenerateLedgerRows(context.Background(), store, order, lines)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if !first.Equal(second) {
		t.Errorf("profit differs between runs: %s vs %s", first, second)
	}
	if len(store.deletedOrders) != 2 {
		t.Errorf("expected delete before each run, got %d deletes", len(store.deletedOrders))
	}
	// Rows from both runs recorded; each run contributes an identical set.
	if len(store.rows) != 2 {
		t.Fatalf("expected 2 recorded inserts, got %d", len(store.rows))
	}
	if !numericToDecimal(store.rows[0].TotalRevenue).Equal(numericToDecimal(store.rows[1].TotalRevenue)) {
		t.Error("re-run produced a different revenue row")
	}
}

func TestGenerateLedgerRows_InsertFailurePropagates(t *testing.T) {
	insertErr := errors.New("disk full")
	store := &mockLedgerStore{createErr: insertErr}

	order := finalizedOrder("5.00")
	lines := []database.OrderLine{
		{ID: uuid.New(), OrderID: order.ID, ProductName: "Coffee", UnitPrice: makeNumeric("5.00"), Quantity: 1},
	}

	if _, err := GenerateLedgerRows(context.Background(), store, order, lines); !errors.Is(err, insertErr) {
		t.Fatalf("expected insert error to propagate, got: %v", err)
	}
	if len(store.profits) != 0 {
		t.Error("profit must not be persisted after a failed insert")
	}
}

func TestGenerateLedgerRows_AdHocLineHasNoCost(t *testing.T) {
	store := &mockLedgerStore{}
	order := finalizedOrder("15.00")
	lines := []database.OrderLine{
		{ID: uuid.New(), OrderID: order.ID, ProductName: "Off-menu special", UnitPrice: makeNumeric("15.00"), Quantity: 1},
	}

	profit, err := GenerateLedgerRows(context.Background(), store, order, lines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.rows) != 1 {
		t.Fatalf("expected 1 ledger row, got %d", len(store.rows))
	}
	if !numericToDecimal(store.rows[0].UnitCost).IsZero() {
		t.Errorf("ad hoc unit cost = %s, expected 0", numericToDecimal(store.rows[0].UnitCost))
	}
	if store.rows[0].CategoryName.Valid {
		t.Error("ad hoc line must carry no category")
	}
	if !profit.Equal(decimal.RequireFromString("15.00")) {
		t.Errorf("profit = %s, expected full revenue 15.00", profit)
	}
}
