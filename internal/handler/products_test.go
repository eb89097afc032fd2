package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/ouiouimanus/api/internal/database"
	"github.com/ouiouimanus/api/internal/handler"
)

type mockProductStore struct {
	products map[uuid.UUID]database.Product
	recipes  map[uuid.UUID][]database.RecipeLine
}

func newMockProductStore() *mockProductStore {
	return &mockProductStore{
		products: make(map[uuid.UUID]database.Product),
		recipes:  make(map[uuid.UUID][]database.RecipeLine),
	}
}

func (m *mockProductStore) CreateProduct(_ context.Context, arg database.CreateProductParams) (database.Product, error) {
	p := database.Product{
		ID:         uuid.New(),
		CategoryID: arg.CategoryID,
		Name:       arg.Name,
		Price:      arg.Price,
		Active:     arg.Active,
	}
	m.products[p.ID] = p
	return p, nil
}

func (m *mockProductStore) GetProduct(_ context.Context, id uuid.UUID) (database.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return database.Product{}, pgx.ErrNoRows
	}
	return p, nil
}

func (m *mockProductStore) ListProducts(_ context.Context) ([]database.Product, error) {
	out := make([]database.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockProductStore) UpdateProduct(_ context.Context, arg database.UpdateProductParams) (database.Product, error) {
	p, ok := m.products[arg.ID]
	if !ok {
		return database.Product{}, pgx.ErrNoRows
	}
	p.CategoryID = arg.CategoryID
	p.Name = arg.Name
	p.Price = arg.Price
	p.Active = arg.Active
	m.products[arg.ID] = p
	return p, nil
}

func (m *mockProductStore) DeleteProduct(_ context.Context, id uuid.UUID) error {
	delete(m.products, id)
	delete(m.recipes, id)
	return nil
}

func (m *mockProductStore) CreateRecipeLine(_ context.Context, arg database.CreateRecipeLineParams) error {
	m.recipes[arg.ProductID] = append(m.recipes[arg.ProductID], database.RecipeLine{
		ProductID:    arg.ProductID,
		IngredientID: arg.IngredientID,
		Quantity:     arg.Quantity,
		Position:     arg.Position,
	})
	return nil
}

func (m *mockProductStore) DeleteRecipeLines(_ context.Context, productID uuid.UUID) error {
	delete(m.recipes, productID)
	return nil
}

func (m *mockProductStore) ListRecipeLines(_ context.Context, productID uuid.UUID) ([]database.RecipeLine, error) {
	return m.recipes[productID], nil
}

func (m *mockProductStore) ListRecipeLinesByProducts(_ context.Context, productIDs []uuid.UUID) ([]database.RecipeLine, error) {
	var out []database.RecipeLine
	for _, id := range productIDs {
		out = append(out, m.recipes[id]...)
	}
	return out, nil
}

func setupProductRouter(store *mockProductStore) *chi.Mux {
	h := handler.NewProductHandler(store)
	r := chi.NewRouter()
	r.Route("/products", h.RegisterRoutes)
	return r
}

func TestCreateProductNotSellable(t *testing.T) {
	store := newMockProductStore()
	r := setupProductRouter(store)

	body := []byte(`{"category_id":"` + uuid.NewString() + `","name":"Margherita","price":"12.50","active":true}`)
	req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeBody(t, rr)
	if resp["sellable"] != false {
		t.Errorf("expected new product without a recipe to not be sellable, got %v", resp["sellable"])
	}
	if resp["price"] != "12.50" {
		t.Errorf("expected price 12.50, got %v", resp["price"])
	}
}

func TestCreateProductValidation(t *testing.T) {
	r := setupProductRouter(newMockProductStore())

	cases := []struct {
		name string
		body string
	}{
		{"missing name", `{"category_id":"` + uuid.NewString() + `","price":"5.00"}`},
		{"bad category", `{"category_id":"nope","name":"Cola","price":"5.00"}`},
		{"negative price", `{"category_id":"` + uuid.NewString() + `","name":"Cola","price":"-1"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewReader([]byte(tc.body)))
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rr.Code)
			}
		})
	}
}

func TestReplaceRecipeMakesSellable(t *testing.T) {
	store := newMockProductStore()
	product := database.Product{
		ID:     uuid.New(),
		Name:   "Carbonara",
		Price:  makeNumeric(t, "14.00"),
		Active: true,
	}
	store.products[product.ID] = product
	r := setupProductRouter(store)

	body := []byte(`{"lines":[` +
		`{"ingredient_id":"` + uuid.NewString() + `","quantity":"120"},` +
		`{"ingredient_id":"` + uuid.NewString() + `","quantity":"30"}]}`)
	req := httptest.NewRequest(http.MethodPut, "/products/"+product.ID.String()+"/recipe", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeBody(t, rr)
	if resp["sellable"] != true {
		t.Errorf("expected product with recipe to be sellable, got %v", resp["sellable"])
	}
	recipe, ok := resp["recipe"].([]interface{})
	if !ok || len(recipe) != 2 {
		t.Fatalf("expected 2 recipe lines, got %v", resp["recipe"])
	}
	first := recipe[0].(map[string]interface{})
	if first["position"] != float64(0) {
		t.Errorf("expected first line at position 0, got %v", first["position"])
	}
}

func TestReplaceRecipeUnknownProduct(t *testing.T) {
	r := setupProductRouter(newMockProductStore())

	body := []byte(`{"lines":[{"ingredient_id":"` + uuid.NewString() + `","quantity":"10"}]}`)
	req := httptest.NewRequest(http.MethodPut, "/products/"+uuid.NewString()+"/recipe", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
}

func TestListProductsIncludesRecipes(t *testing.T) {
	store := newMockProductStore()
	withRecipe := database.Product{ID: uuid.New(), Name: "Ramen", Price: makeNumeric(t, "11.00"), Active: true}
	withoutRecipe := database.Product{ID: uuid.New(), Name: "Gyoza", Price: makeNumeric(t, "6.00"), Active: true}
	store.products[withRecipe.ID] = withRecipe
	store.products[withoutRecipe.ID] = withoutRecipe
	store.recipes[withRecipe.ID] = []database.RecipeLine{
		{ProductID: withRecipe.ID, IngredientID: uuid.New(), Quantity: makeNumeric(t, "200"), Position: 0},
	}
	r := setupProductRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp []map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("expected 2 products, got %d", len(resp))
	}
	sellableByName := make(map[string]bool)
	for _, p := range resp {
		sellableByName[p["name"].(string)] = p["sellable"] == true
	}
	if !sellableByName["Ramen"] {
		t.Error("expected Ramen with recipe to be sellable")
	}
	if sellableByName["Gyoza"] {
		t.Error("expected Gyoza without recipe to not be sellable")
	}
}
