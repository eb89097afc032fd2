package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/ouiouimanus/api/internal/database"
	"github.com/ouiouimanus/api/internal/enum"
	"github.com/ouiouimanus/api/internal/service"
)

// IngredientStore defines the database methods needed by ingredient handlers.
type IngredientStore interface {
	CreateIngredient(ctx context.Context, arg database.CreateIngredientParams) (database.Ingredient, error)
	GetIngredient(ctx context.Context, id uuid.UUID) (database.Ingredient, error)
	ListIngredients(ctx context.Context) ([]database.Ingredient, error)
	ListLowStockIngredients(ctx context.Context) ([]database.Ingredient, error)
	UpdateIngredient(ctx context.Context, arg database.UpdateIngredientParams) (database.Ingredient, error)
	UpdateIngredientStock(ctx context.Context, arg database.UpdateIngredientStockParams) (database.Ingredient, error)
	DeleteIngredient(ctx context.Context, id uuid.UUID) error
}

// IngredientHandler handles stock room endpoints.
type IngredientHandler struct {
	store    IngredientStore
	notifier service.Notifier
}

// NewIngredientHandler creates a new IngredientHandler.
func NewIngredientHandler(store IngredientStore, notifier service.Notifier) *IngredientHandler {
	if notifier == nil {
		notifier = service.NopNotifier{}
	}
	return &IngredientHandler{store: store, notifier: notifier}
}

// RegisterRoutes registers ingredient endpoints on the given Chi router.
func (h *IngredientHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/low-stock", h.ListLowStock)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Patch("/{id}/stock", h.SetStock)
	r.Delete("/{id}", h.Delete)
}

type ingredientRequest struct {
	Name      string `json:"name"`
	Unit      string `json:"unit"`
	Stock     string `json:"stock"`
	MinStock  string `json:"min_stock"`
	UnitPrice string `json:"unit_price"`
}

type setStockRequest struct {
	Stock string `json:"stock"`
}

type ingredientResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Unit      string    `json:"unit"`
	Stock     string    `json:"stock"`
	MinStock  string    `json:"min_stock"`
	UnitPrice string    `json:"unit_price"`
	LowStock  bool      `json:"low_stock"`
}

func toIngredientResponse(ing database.Ingredient) ingredientResponse {
	stock := numericToQuantityString(ing.Stock)
	minStock := numericToQuantityString(ing.MinStock)
	return ingredientResponse{
		ID:        ing.ID,
		Name:      ing.Name,
		Unit:      ing.Unit,
		Stock:     stock,
		MinStock:  minStock,
		UnitPrice: numericToString(ing.UnitPrice),
		LowStock:  service.IsLowStock(ing),
	}
}

// List handles GET /ingredients.
func (h *IngredientHandler) List(w http.ResponseWriter, r *http.Request) {
	ingredients, err := h.store.ListIngredients(r.Context())
	if err != nil {
		log.Printf("ERROR: list ingredients: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	resp := make([]ingredientResponse, len(ingredients))
	for i, ing := range ingredients {
		resp[i] = toIngredientResponse(ing)
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListLowStock handles GET /ingredients/low-stock: everything at or below
// its reorder threshold.
func (h *IngredientHandler) ListLowStock(w http.ResponseWriter, r *http.Request) {
	ingredients, err := h.store.ListLowStockIngredients(r.Context())
	if err != nil {
		log.Printf("ERROR: list low stock ingredients: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	resp := make([]ingredientResponse, len(ingredients))
	for i, ing := range ingredients {
		resp[i] = toIngredientResponse(ing)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /ingredients/{id}.
func (h *IngredientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	ing, err := h.store.GetIngredient(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "ingredient not found"})
			return
		}
		log.Printf("ERROR: get ingredient: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, toIngredientResponse(ing))
}

// Create handles POST /ingredients. Stock is counted in a storage unit;
// G and ML are usage units and are rejected here.
func (h *IngredientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ingredientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if !validStorageUnit(req.Unit) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unit must be KG, L or PIECE"})
		return
	}
	stock, err := parseNumeric(req.Stock)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid stock"})
		return
	}
	minStock, err := parseNumeric(req.MinStock)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid min_stock"})
		return
	}
	unitPrice, err := parseNumeric(req.UnitPrice)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid unit_price"})
		return
	}

	ing, err := h.store.CreateIngredient(r.Context(), database.CreateIngredientParams{
		Name:      req.Name,
		Unit:      req.Unit,
		Stock:     stock,
		MinStock:  minStock,
		UnitPrice: unitPrice,
	})
	if err != nil {
		log.Printf("ERROR: create ingredient: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusCreated, toIngredientResponse(ing))
}

// Update handles PUT /ingredients/{id}: everything except the stock level,
// which moves through its own endpoint so updates never race consumption.
func (h *IngredientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var req ingredientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if !validStorageUnit(req.Unit) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unit must be KG, L or PIECE"})
		return
	}
	minStock, err := parseNumeric(req.MinStock)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid min_stock"})
		return
	}
	unitPrice, err := parseNumeric(req.UnitPrice)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid unit_price"})
		return
	}

	ing, err := h.store.UpdateIngredient(r.Context(), database.UpdateIngredientParams{
		ID:        id,
		Name:      req.Name,
		Unit:      req.Unit,
		MinStock:  minStock,
		UnitPrice: unitPrice,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "ingredient not found"})
			return
		}
		log.Printf("ERROR: update ingredient: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, toIngredientResponse(ing))
}

// SetStock handles PATCH /ingredients/{id}/stock: a manual recount or
// restock, in storage units.
func (h *IngredientHandler) SetStock(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var req setStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	stock, err := parseNumeric(req.Stock)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid stock"})
		return
	}

	ing, err := h.store.UpdateIngredientStock(r.Context(), database.UpdateIngredientStockParams{
		ID:    id,
		Stock: stock,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "ingredient not found"})
			return
		}
		log.Printf("ERROR: set ingredient stock: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.notifier.Publish(service.ChannelIngredients, "stock_changed", map[string]string{
		"ingredient_id": ing.ID.String(),
		"stock":         numericToQuantityString(ing.Stock),
	})
	writeJSON(w, http.StatusOK, toIngredientResponse(ing))
}

// Delete handles DELETE /ingredients/{id}.
func (h *IngredientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	if err := h.store.DeleteIngredient(r.Context(), id); err != nil {
		log.Printf("ERROR: delete ingredient: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func validStorageUnit(unit string) bool {
	switch unit {
	case enum.UnitKilogram, enum.UnitLiter, enum.UnitPiece:
		return true
	}
	return false
}
