package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/ouiouimanus/api/internal/database"
	"github.com/ouiouimanus/api/internal/service"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.OrderResult, error)
	AddItems(ctx context.Context, orderID uuid.UUID, items []service.OrderItemInput) (*service.OrderResult, error)
	UpdateLine(ctx context.Context, orderID, lineID uuid.UUID, input service.UpdateLineInput) (*service.OrderResult, error)
	RemoveLine(ctx context.Context, orderID, lineID uuid.UUID) (*service.OrderResult, error)
	SendToKitchen(ctx context.Context, orderID uuid.UUID, lineIDs []uuid.UUID) (*service.OrderResult, error)
	MarkReady(ctx context.Context, orderID uuid.UUID) (database.Order, error)
	MarkServed(ctx context.Context, orderID uuid.UUID) (database.Order, error)
	MarkDelivered(ctx context.Context, orderID uuid.UUID) (database.Order, error)
	ValidateOrder(ctx context.Context, orderID uuid.UUID) (database.Order, error)
	Finalize(ctx context.Context, orderID uuid.UUID, paymentMethod string) (*service.OrderResult, error)
	CancelUnsentOrder(ctx context.Context, orderID uuid.UUID) error
	ApplyPromoCode(ctx context.Context, orderID uuid.UUID, code string) (*service.OrderResult, error)
}

// OrderReadStore defines the database methods needed by order read handlers.
type OrderReadStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrderLines(ctx context.Context, orderID uuid.UUID) ([]database.OrderLine, error)
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc   OrderServicer
	store OrderReadStore
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer, store OrderReadStore) *OrderHandler {
	return &OrderHandler{svc: svc, store: store}
}

// RegisterRoutes registers order endpoints on the given Chi router.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Delete("/{id}", h.Cancel)
	r.Post("/{id}/items", h.AddItems)
	r.Patch("/{id}/lines/{lineID}", h.UpdateLine)
	r.Delete("/{id}/lines/{lineID}", h.RemoveLine)
	r.Post("/{id}/send", h.SendToKitchen)
	r.Post("/{id}/ready", h.MarkReady)
	r.Post("/{id}/served", h.MarkServed)
	r.Post("/{id}/delivered", h.MarkDelivered)
	r.Post("/{id}/validate", h.Validate)
	r.Post("/{id}/finalize", h.Finalize)
	r.Post("/{id}/promo", h.ApplyPromo)
}

// --- Request / Response types ---

type orderItemRequest struct {
	ProductID           string   `json:"product_id"`
	Name                string   `json:"name"`
	UnitPrice           string   `json:"unit_price"`
	Quantity            int32    `json:"quantity"`
	ExcludedIngredients []string `json:"excluded_ingredients"`
	Comment             string   `json:"comment"`
}

type createOrderRequest struct {
	OrderType     string             `json:"order_type"`
	PromoCode     string             `json:"promo_code"`
	ShippingCost  string             `json:"shipping_cost"`
	ClientName    string             `json:"client_name"`
	ClientPhone   string             `json:"client_phone"`
	ClientAddress string             `json:"client_address"`
	Items         []orderItemRequest `json:"items"`
}

type addItemsRequest struct {
	Items []orderItemRequest `json:"items"`
}

type updateLineRequest struct {
	Quantity            int32    `json:"quantity"`
	ExcludedIngredients []string `json:"excluded_ingredients"`
	Comment             string   `json:"comment"`
}

type sendToKitchenRequest struct {
	LineIDs []string `json:"line_ids"`
}

type finalizeRequest struct {
	PaymentMethod string `json:"payment_method"`
}

type applyPromoRequest struct {
	Code string `json:"code"`
}

type orderLineResponse struct {
	ID                  uuid.UUID   `json:"id"`
	ProductID           *string     `json:"product_id"`
	ProductName         string      `json:"product_name"`
	UnitPrice           string      `json:"unit_price"`
	Quantity            int32       `json:"quantity"`
	ExcludedIngredients []uuid.UUID `json:"excluded_ingredients"`
	Comment             *string     `json:"comment"`
	Status              string      `json:"status"`
	SentAt              *time.Time  `json:"sent_at"`
}

type orderResponse struct {
	ID              uuid.UUID           `json:"id"`
	OrderType       string              `json:"order_type"`
	TableID         *string             `json:"table_id"`
	Covers          *int32              `json:"covers"`
	Status          string              `json:"status"`
	KitchenStatus   string              `json:"kitchen_status"`
	PaymentStatus   string              `json:"payment_status"`
	PaymentMethod   *string             `json:"payment_method"`
	Subtotal        string              `json:"subtotal"`
	TotalDiscount   string              `json:"total_discount"`
	ShippingCost    string              `json:"shipping_cost"`
	Total           string              `json:"total"`
	PromoCode       *string             `json:"promo_code"`
	ClientName      *string             `json:"client_name"`
	ClientPhone     *string             `json:"client_phone"`
	ClientAddress   *string             `json:"client_address"`
	CreatedAt       time.Time           `json:"created_at"`
	SentToKitchenAt *time.Time          `json:"sent_to_kitchen_at"`
	ReadyAt         *time.Time          `json:"ready_at"`
	ServedAt        *time.Time          `json:"served_at"`
	FinalizedAt     *time.Time          `json:"finalized_at"`
	Lines           []orderLineResponse `json:"lines"`
}

// --- Handlers ---

// Create handles POST /orders: takeaway and online checkouts. Dine-in
// orders open through the table seat endpoint instead.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.OrderType == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "order_type is required"})
		return
	}

	result, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		OrderType:     req.OrderType,
		PromoCode:     req.PromoCode,
		ShippingCost:  req.ShippingCost,
		ClientName:    req.ClientName,
		ClientPhone:   req.ClientPhone,
		ClientAddress: req.ClientAddress,
		Items:         toItemInputs(req.Items),
	})
	if err != nil {
		writeServiceError(w, "create order", err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(result.Order, result.Lines))
}

// Get handles GET /orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	order, err := h.store.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	lines, err := h.store.ListOrderLines(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: list order lines: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order, lines))
}

// AddItems handles POST /orders/{id}/items.
func (h *OrderHandler) AddItems(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var req addItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result, err := h.svc.AddItems(r.Context(), id, toItemInputs(req.Items))
	if err != nil {
		writeServiceError(w, "add items", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(result.Order, result.Lines))
}

// UpdateLine handles PATCH /orders/{id}/lines/{lineID}.
func (h *OrderHandler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	lineID, ok := parseID(w, r, "lineID")
	if !ok {
		return
	}

	var req updateLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result, err := h.svc.UpdateLine(r.Context(), id, lineID, service.UpdateLineInput{
		Quantity:            req.Quantity,
		ExcludedIngredients: req.ExcludedIngredients,
		Comment:             req.Comment,
	})
	if err != nil {
		writeServiceError(w, "update line", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(result.Order, result.Lines))
}

// RemoveLine handles DELETE /orders/{id}/lines/{lineID}.
func (h *OrderHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	lineID, ok := parseID(w, r, "lineID")
	if !ok {
		return
	}

	result, err := h.svc.RemoveLine(r.Context(), id, lineID)
	if err != nil {
		writeServiceError(w, "remove line", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(result.Order, result.Lines))
}

// SendToKitchen handles POST /orders/{id}/send.
func (h *OrderHandler) SendToKitchen(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var req sendToKitchenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	lineIDs := make([]uuid.UUID, 0, len(req.LineIDs))
	for _, s := range req.LineIDs {
		lid, err := uuid.Parse(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid line ID"})
			return
		}
		lineIDs = append(lineIDs, lid)
	}

	result, err := h.svc.SendToKitchen(r.Context(), id, lineIDs)
	if err != nil {
		writeServiceError(w, "send to kitchen", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(result.Order, result.Lines))
}

// MarkReady handles POST /orders/{id}/ready.
func (h *OrderHandler) MarkReady(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.MarkReady, "mark ready")
}

// MarkServed handles POST /orders/{id}/served.
func (h *OrderHandler) MarkServed(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.MarkServed, "mark served")
}

// MarkDelivered handles POST /orders/{id}/delivered.
func (h *OrderHandler) MarkDelivered(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.MarkDelivered, "mark delivered")
}

// Validate handles POST /orders/{id}/validate.
func (h *OrderHandler) Validate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.ValidateOrder, "validate order")
}

// Finalize handles POST /orders/{id}/finalize.
func (h *OrderHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var req finalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result, err := h.svc.Finalize(r.Context(), id, req.PaymentMethod)
	if err != nil {
		writeServiceError(w, "finalize order", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(result.Order, result.Lines))
}

// Cancel handles DELETE /orders/{id}: only orders nothing was fired for.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	if err := h.svc.CancelUnsentOrder(r.Context(), id); err != nil {
		writeServiceError(w, "cancel order", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ApplyPromo handles POST /orders/{id}/promo.
func (h *OrderHandler) ApplyPromo(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var req applyPromoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Code == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "code is required"})
		return
	}

	result, err := h.svc.ApplyPromoCode(r.Context(), id, req.Code)
	if err != nil {
		writeServiceError(w, "apply promo", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(result.Order, result.Lines))
}

// --- Helpers ---

func (h *OrderHandler) transition(w http.ResponseWriter, r *http.Request, apply func(context.Context, uuid.UUID) (database.Order, error), op string) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	order, err := apply(r.Context(), id)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}

	lines, err := h.store.ListOrderLines(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: list order lines: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order, lines))
}

func parseID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + param})
		return uuid.Nil, false
	}
	return id, true
}

func toItemInputs(items []orderItemRequest) []service.OrderItemInput {
	inputs := make([]service.OrderItemInput, len(items))
	for i, item := range items {
		inputs[i] = service.OrderItemInput{
			ProductID:           item.ProductID,
			Name:                item.Name,
			UnitPrice:           item.UnitPrice,
			Quantity:            item.Quantity,
			ExcludedIngredients: item.ExcludedIngredients,
			Comment:             item.Comment,
		}
	}
	return inputs
}

func toOrderLineResponse(line database.OrderLine) orderLineResponse {
	resp := orderLineResponse{
		ID:                  line.ID,
		ProductName:         line.ProductName,
		UnitPrice:           numericToString(line.UnitPrice),
		Quantity:            line.Quantity,
		ExcludedIngredients: line.ExcludedIngredients,
		Comment:             textOrNil(line.Comment),
		Status:              line.Status,
	}
	if line.ProductID.Valid {
		s := uuid.UUID(line.ProductID.Bytes).String()
		resp.ProductID = &s
	}
	if line.SentAt.Valid {
		resp.SentAt = &line.SentAt.Time
	}
	return resp
}

func toOrderResponse(o database.Order, lines []database.OrderLine) orderResponse {
	resp := orderResponse{
		ID:            o.ID,
		OrderType:     o.OrderType,
		Status:        o.Status,
		KitchenStatus: o.KitchenStatus,
		PaymentStatus: o.PaymentStatus,
		PaymentMethod: textOrNil(o.PaymentMethod),
		Subtotal:      numericToString(o.Subtotal),
		TotalDiscount: numericToString(o.TotalDiscount),
		ShippingCost:  numericToString(o.ShippingCost),
		Total:         numericToString(o.Total),
		PromoCode:     textOrNil(o.PromoCode),
		ClientName:    textOrNil(o.ClientName),
		ClientPhone:   textOrNil(o.ClientPhone),
		ClientAddress: textOrNil(o.ClientAddress),
		CreatedAt:     o.CreatedAt,
	}
	if o.TableID.Valid {
		s := uuid.UUID(o.TableID.Bytes).String()
		resp.TableID = &s
	}
	if o.Covers.Valid {
		resp.Covers = &o.Covers.Int32
	}
	if o.SentToKitchenAt.Valid {
		resp.SentToKitchenAt = &o.SentToKitchenAt.Time
	}
	if o.ReadyAt.Valid {
		resp.ReadyAt = &o.ReadyAt.Time
	}
	if o.ServedAt.Valid {
		resp.ServedAt = &o.ServedAt.Time
	}
	if o.FinalizedAt.Valid {
		resp.FinalizedAt = &o.FinalizedAt.Time
	}

	resp.Lines = make([]orderLineResponse, len(lines))
	for i, line := range lines {
		resp.Lines[i] = toOrderLineResponse(line)
	}
	return resp
}
