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
)

// ProductStore defines the database methods needed by product handlers.
type ProductStore interface {
	CreateProduct(ctx context.Context, arg database.CreateProductParams) (database.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (database.Product, error)
	ListProducts(ctx context.Context) ([]database.Product, error)
	UpdateProduct(ctx context.Context, arg database.UpdateProductParams) (database.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	CreateRecipeLine(ctx context.Context, arg database.CreateRecipeLineParams) error
	DeleteRecipeLines(ctx context.Context, productID uuid.UUID) error
	ListRecipeLines(ctx context.Context, productID uuid.UUID) ([]database.RecipeLine, error)
	ListRecipeLinesByProducts(ctx context.Context, productIDs []uuid.UUID) ([]database.RecipeLine, error)
}

// ProductHandler handles menu product and recipe endpoints.
type ProductHandler struct {
	store ProductStore
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(store ProductStore) *ProductHandler {
	return &ProductHandler{store: store}
}

// RegisterRoutes registers product endpoints on the given Chi router.
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Put("/{id}/recipe", h.ReplaceRecipe)
}

type productRequest struct {
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
	Price      string `json:"price"`
	Active     bool   `json:"active"`
}

type recipeLineRequest struct {
	IngredientID string `json:"ingredient_id"`
	Quantity     string `json:"quantity"`
}

type replaceRecipeRequest struct {
	Lines []recipeLineRequest `json:"lines"`
}

type recipeLineResponse struct {
	IngredientID uuid.UUID `json:"ingredient_id"`
	Quantity     string    `json:"quantity"`
	Position     int32     `json:"position"`
}

type productResponse struct {
	ID         uuid.UUID            `json:"id"`
	CategoryID uuid.UUID            `json:"category_id"`
	Name       string               `json:"name"`
	Price      string               `json:"price"`
	Active     bool                 `json:"active"`
	Sellable   bool                 `json:"sellable"`
	Recipe     []recipeLineResponse `json:"recipe"`
}

func toProductResponse(p database.Product, recipe []database.RecipeLine) productResponse {
	resp := productResponse{
		ID:         p.ID,
		CategoryID: p.CategoryID,
		Name:       p.Name,
		Price:      numericToString(p.Price),
		Active:     p.Active,
		Sellable:   p.Active && len(recipe) > 0,
		Recipe:     make([]recipeLineResponse, len(recipe)),
	}
	for i, line := range recipe {
		resp.Recipe[i] = recipeLineResponse{
			IngredientID: line.IngredientID,
			Quantity:     numericToQuantityString(line.Quantity),
			Position:     line.Position,
		}
	}
	return resp
}

// List handles GET /products: the full menu with recipes, so clients can
// tell at a glance which products can actually be sold.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.ListProducts(r.Context())
	if err != nil {
		log.Printf("ERROR: list products: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	recipeByProduct := make(map[uuid.UUID][]database.RecipeLine)
	if len(products) > 0 {
		ids := make([]uuid.UUID, len(products))
		for i, p := range products {
			ids[i] = p.ID
		}
		lines, err := h.store.ListRecipeLinesByProducts(r.Context(), ids)
		if err != nil {
			log.Printf("ERROR: list recipe lines: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		for _, line := range lines {
			recipeByProduct[line.ProductID] = append(recipeByProduct[line.ProductID], line)
		}
	}

	resp := make([]productResponse, len(products))
	for i, p := range products {
		resp[i] = toProductResponse(p, recipeByProduct[p.ID])
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /products/{id}.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	product, err := h.store.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
			return
		}
		log.Printf("ERROR: get product: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	recipe, err := h.store.ListRecipeLines(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: list recipe lines: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(product, recipe))
}

// Create handles POST /products. A new product has no recipe yet and is
// therefore not sellable until one is attached.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	params, ok := h.productParams(w, req)
	if !ok {
		return
	}

	product, err := h.store.CreateProduct(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: create product: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusCreated, toProductResponse(product, nil))
}

// Update handles PUT /products/{id}.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	params, ok := h.productParams(w, req)
	if !ok {
		return
	}

	product, err := h.store.UpdateProduct(r.Context(), database.UpdateProductParams{
		ID:         id,
		CategoryID: params.CategoryID,
		Name:       params.Name,
		Price:      params.Price,
		Active:     params.Active,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
			return
		}
		log.Printf("ERROR: update product: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	recipe, err := h.store.ListRecipeLines(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: list recipe lines: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(product, recipe))
}

// Delete handles DELETE /products/{id}.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	if err := h.store.DeleteProduct(r.Context(), id); err != nil {
		log.Printf("ERROR: delete product: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReplaceRecipe handles PUT /products/{id}/recipe: swaps the full bill of
// materials. Quantities are in usage units (G, ML or PIECE).
func (h *ProductHandler) ReplaceRecipe(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var req replaceRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	lines := make([]database.CreateRecipeLineParams, len(req.Lines))
	for i, line := range req.Lines {
		ingredientID, err := uuid.Parse(line.IngredientID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid ingredient_id"})
			return
		}
		quantity, err := parseNumeric(line.Quantity)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid quantity"})
			return
		}
		lines[i] = database.CreateRecipeLineParams{
			ProductID:    id,
			IngredientID: ingredientID,
			Quantity:     quantity,
			Position:     int32(i),
		}
	}

	if _, err := h.store.GetProduct(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
			return
		}
		log.Printf("ERROR: get product: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if err := h.store.DeleteRecipeLines(r.Context(), id); err != nil {
		log.Printf("ERROR: delete recipe lines: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	for _, line := range lines {
		if err := h.store.CreateRecipeLine(r.Context(), line); err != nil {
			log.Printf("ERROR: create recipe line: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
	}

	product, err := h.store.GetProduct(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: get product: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	recipe, err := h.store.ListRecipeLines(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: list recipe lines: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(product, recipe))
}

func (h *ProductHandler) productParams(w http.ResponseWriter, req productRequest) (database.CreateProductParams, bool) {
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return database.CreateProductParams{}, false
	}
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category_id"})
		return database.CreateProductParams{}, false
	}
	price, err := parseNumeric(req.Price)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price"})
		return database.CreateProductParams{}, false
	}
	return database.CreateProductParams{
		CategoryID: categoryID,
		Name:       req.Name,
		Price:      price,
		Active:     req.Active,
	}, true
}
