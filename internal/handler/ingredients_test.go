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
	"github.com/ouiouimanus/api/internal/enum"
	"github.com/ouiouimanus/api/internal/handler"
	"github.com/ouiouimanus/api/internal/service"
)

type mockIngredientHandlerStore struct {
	ingredients map[uuid.UUID]database.Ingredient
}

func newMockIngredientHandlerStore() *mockIngredientHandlerStore {
	return &mockIngredientHandlerStore{ingredients: make(map[uuid.UUID]database.Ingredient)}
}

func (m *mockIngredientHandlerStore) CreateIngredient(_ context.Context, arg database.CreateIngredientParams) (database.Ingredient, error) {
	ing := database.Ingredient{
		ID:        uuid.New(),
		Name:      arg.Name,
		Unit:      arg.Unit,
		Stock:     arg.Stock,
		MinStock:  arg.MinStock,
		UnitPrice: arg.UnitPrice,
	}
	m.ingredients[ing.ID] = ing
	return ing, nil
}

func (m *mockIngredientHandlerStore) GetIngredient(_ context.Context, id uuid.UUID) (database.Ingredient, error) {
	ing, ok := m.ingredients[id]
	if !ok {
		return database.Ingredient{}, pgx.ErrNoRows
	}
	return ing, nil
}

func (m *mockIngredientHandlerStore) ListIngredients(_ context.Context) ([]database.Ingredient, error) {
	var result []database.Ingredient
	for _, ing := range m.ingredients {
		result = append(result, ing)
	}
	return result, nil
}

func (m *mockIngredientHandlerStore) ListLowStockIngredients(_ context.Context) ([]database.Ingredient, error) {
	var result []database.Ingredient
	for _, ing := range m.ingredients {
		if service.IsLowStock(ing) {
			result = append(result, ing)
		}
	}
	return result, nil
}

func (m *mockIngredientHandlerStore) UpdateIngredient(_ context.Context, arg database.UpdateIngredientParams) (database.Ingredient, error) {
	ing, ok := m.ingredients[arg.ID]
	if !ok {
		return database.Ingredient{}, pgx.ErrNoRows
	}
	ing.Name = arg.Name
	ing.Unit = arg.Unit
	ing.MinStock = arg.MinStock
	ing.UnitPrice = arg.UnitPrice
	m.ingredients[ing.ID] = ing
	return ing, nil
}

func (m *mockIngredientHandlerStore) UpdateIngredientStock(_ context.Context, arg database.UpdateIngredientStockParams) (database.Ingredient, error) {
	ing, ok := m.ingredients[arg.ID]
	if !ok {
		return database.Ingredient{}, pgx.ErrNoRows
	}
	ing.Stock = arg.Stock
	m.ingredients[ing.ID] = ing
	return ing, nil
}

func (m *mockIngredientHandlerStore) DeleteIngredient(_ context.Context, id uuid.UUID) error {
	delete(m.ingredients, id)
	return nil
}

type captureNotifier struct {
	channel string
	event   string
}

func (c *captureNotifier) Publish(channel, event string, _ any) {
	c.channel = channel
	c.event = event
}

func setupIngredientRouter(store *mockIngredientHandlerStore, notifier service.Notifier) *chi.Mux {
	h := handler.NewIngredientHandler(store, notifier)
	r := chi.NewRouter()
	r.Route("/ingredients", h.RegisterRoutes)
	return r
}

func TestCreateIngredient(t *testing.T) {
	store := newMockIngredientHandlerStore()
	router := setupIngredientRouter(store, nil)

	body := `{"name":"Flour","unit":"KG","stock":"25","min_stock":"5","unit_price":"1.20"}`
	req := httptest.NewRequest(http.MethodPost, "/ingredients", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rr.Code, rr.Body.String())
	}
	resp := decodeBody(t, rr)
	if resp["unit"] != enum.UnitKilogram {
		t.Errorf("unit = %v, want KG", resp["unit"])
	}
	if resp["low_stock"] != false {
		t.Errorf("low_stock = %v, want false", resp["low_stock"])
	}
}

func TestCreateIngredientRejectsUsageUnit(t *testing.T) {
	router := setupIngredientRouter(newMockIngredientHandlerStore(), nil)

	// Stock is held in storage units; G is a usage unit.
	body := `{"name":"Flour","unit":"G","stock":"25","min_stock":"5","unit_price":"1.20"}`
	req := httptest.NewRequest(http.MethodPost, "/ingredients", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestCreateIngredientRejectsNegativeStock(t *testing.T) {
	router := setupIngredientRouter(newMockIngredientHandlerStore(), nil)

	body := `{"name":"Flour","unit":"KG","stock":"-1","min_stock":"5","unit_price":"1.20"}`
	req := httptest.NewRequest(http.MethodPost, "/ingredients", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestListLowStockIngredients(t *testing.T) {
	store := newMockIngredientHandlerStore()
	store.ingredients[uuid.New()] = database.Ingredient{
		ID: uuid.New(), Name: "Flour", Unit: enum.UnitKilogram,
		Stock: makeNumeric(t, "2"), MinStock: makeNumeric(t, "5"),
	}
	store.ingredients[uuid.New()] = database.Ingredient{
		ID: uuid.New(), Name: "Oil", Unit: enum.UnitLiter,
		Stock: makeNumeric(t, "20"), MinStock: makeNumeric(t, "5"),
	}
	router := setupIngredientRouter(store, nil)

	req := httptest.NewRequest(http.MethodGet, "/ingredients/low-stock", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var resp []map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp) != 1 || resp[0]["name"] != "Flour" {
		t.Errorf("low stock = %v, want only Flour", resp)
	}
	if resp[0]["low_stock"] != true {
		t.Errorf("low_stock = %v, want true", resp[0]["low_stock"])
	}
}

func TestSetIngredientStockNotifies(t *testing.T) {
	store := newMockIngredientHandlerStore()
	ing := database.Ingredient{
		ID: uuid.New(), Name: "Flour", Unit: enum.UnitKilogram,
		Stock: makeNumeric(t, "2"), MinStock: makeNumeric(t, "5"),
	}
	store.ingredients[ing.ID] = ing
	notifier := &captureNotifier{}
	router := setupIngredientRouter(store, notifier)

	body := `{"stock":"30.5"}`
	req := httptest.NewRequest(http.MethodPatch, "/ingredients/"+ing.ID.String()+"/stock", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	resp := decodeBody(t, rr)
	if resp["stock"] != "30.5" {
		t.Errorf("stock = %v, want 30.5", resp["stock"])
	}
	if notifier.channel != service.ChannelIngredients || notifier.event != "stock_changed" {
		t.Errorf("notified %s/%s, want ingredients/stock_changed", notifier.channel, notifier.event)
	}
}

func TestSetIngredientStockNotFound(t *testing.T) {
	router := setupIngredientRouter(newMockIngredientHandlerStore(), nil)

	body := `{"stock":"30"}`
	req := httptest.NewRequest(http.MethodPatch, "/ingredients/"+uuid.NewString()+"/stock", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}
