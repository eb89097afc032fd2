package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/ouiouimanus/api/internal/database"
	"github.com/ouiouimanus/api/internal/service"
)

// PromotionStore defines the database methods needed by promotion handlers.
type PromotionStore interface {
	CreatePromotion(ctx context.Context, arg database.CreatePromotionParams) (database.Promotion, error)
	ListPromotions(ctx context.Context) ([]database.Promotion, error)
	SetPromotionActive(ctx context.Context, arg database.SetPromotionActiveParams) error
}

// PromotionHandler handles promo code management endpoints.
type PromotionHandler struct {
	store PromotionStore
}

// NewPromotionHandler creates a new PromotionHandler.
func NewPromotionHandler(store PromotionStore) *PromotionHandler {
	return &PromotionHandler{store: store}
}

// RegisterRoutes registers promotion endpoints on the given Chi router.
func (h *PromotionHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Patch("/{id}/active", h.SetActive)
}

type createPromotionRequest struct {
	Code   string          `json:"code"`
	Name   string          `json:"name"`
	Kind   string          `json:"kind"`
	Config json.RawMessage `json:"config"`
	Active bool            `json:"active"`
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

type promotionResponse struct {
	ID        uuid.UUID       `json:"id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Kind      string          `json:"kind"`
	Config    json.RawMessage `json:"config"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
}

func toPromotionResponse(p database.Promotion) promotionResponse {
	config := json.RawMessage(p.Config)
	if len(config) == 0 {
		config = json.RawMessage("{}")
	}
	return promotionResponse{
		ID:        p.ID,
		Code:      p.Code,
		Name:      p.Name,
		Kind:      p.Kind,
		Config:    config,
		Active:    p.Active,
		CreatedAt: p.CreatedAt,
	}
}

// List handles GET /promotions.
func (h *PromotionHandler) List(w http.ResponseWriter, r *http.Request) {
	promotions, err := h.store.ListPromotions(r.Context())
	if err != nil {
		log.Printf("ERROR: list promotions: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	resp := make([]promotionResponse, len(promotions))
	for i, p := range promotions {
		resp[i] = toPromotionResponse(p)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /promotions. The kind and config pair is parsed up
// front so a broken rule can never reach checkout.
func (h *PromotionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPromotionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Code == "" || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "code and name are required"})
		return
	}
	if _, err := service.ParsePromotionRule(req.Kind, req.Config); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	promotion, err := h.store.CreatePromotion(r.Context(), database.CreatePromotionParams{
		Code:   req.Code,
		Name:   req.Name,
		Kind:   req.Kind,
		Config: req.Config,
		Active: req.Active,
	})
	if err != nil {
		log.Printf("ERROR: create promotion: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusCreated, toPromotionResponse(promotion))
}

// SetActive handles PATCH /promotions/{id}/active.
func (h *PromotionHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var req setActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := h.store.SetPromotionActive(r.Context(), database.SetPromotionActiveParams{ID: id, Active: req.Active}); err != nil {
		log.Printf("ERROR: set promotion active: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"active": req.Active})
}
