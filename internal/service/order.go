package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/ouiouimanus/api/internal/database"
	"github.com/ouiouimanus/api/internal/enum"
	"github.com/shopspring/decimal"
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods the orchestrator needs.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	GetTableForUpdate(ctx context.Context, id uuid.UUID) (database.RestaurantTable, error)
	LinkTableOrder(ctx context.Context, arg database.LinkTableOrderParams) (database.RestaurantTable, error)
	UnlinkTableOrder(ctx context.Context, id uuid.UUID) (database.RestaurantTable, error)

	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	GetOrderForUpdate(ctx context.Context, id uuid.UUID) (database.Order, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	UpdateOrderTotals(ctx context.Context, arg database.UpdateOrderTotalsParams) (database.Order, error)
	MarkOrderReceived(ctx context.Context, arg database.MarkOrderReceivedParams) (database.Order, error)
	MarkOrderReady(ctx context.Context, arg database.MarkOrderReadyParams) (database.Order, error)
	MarkOrderServed(ctx context.Context, arg database.MarkOrderServedParams) (database.Order, error)
	FinalizeOrder(ctx context.Context, arg database.FinalizeOrderParams) (database.Order, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error

	CreateOrderLine(ctx context.Context, arg database.CreateOrderLineParams) (database.OrderLine, error)
	GetOrderLine(ctx context.Context, id uuid.UUID) (database.OrderLine, error)
	UpdateOrderLine(ctx context.Context, arg database.UpdateOrderLineParams) (database.OrderLine, error)
	DeleteOrderLine(ctx context.Context, id uuid.UUID) error
	ListOrderLines(ctx context.Context, orderID uuid.UUID) ([]database.OrderLine, error)
	MarkOrderLinesSent(ctx context.Context, arg database.MarkOrderLinesSentParams) ([]database.OrderLine, error)

	GetProductWithCategory(ctx context.Context, id uuid.UUID) (database.GetProductWithCategoryRow, error)
	CountRecipeLines(ctx context.Context, productID uuid.UUID) (int64, error)

	GetPromotionByCode(ctx context.Context, code string) (database.Promotion, error)
	CreateAppliedPromotion(ctx context.Context, arg database.CreateAppliedPromotionParams) (database.OrderAppliedPromotion, error)
	ListAppliedPromotionsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderAppliedPromotion, error)
	UpdateAppliedPromotionDiscount(ctx context.Context, arg database.UpdateAppliedPromotionDiscountParams) error
	DeleteAppliedPromotionsByOrder(ctx context.Context, orderID uuid.UUID) error

	LedgerStore
	InventoryStore
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx), so the
// service can run the same queries inside its transactions.
type NewOrderStore func(db database.DBTX) OrderStore

// OrderService sequences the order/table/kitchen state machines and runs
// the finalization side effects (stock deduction, ledger generation) at the
// right transitions.
type OrderService struct {
	pool     TxBeginner
	store    OrderStore // pool-backed, for post-commit side effects
	newStore NewOrderStore
	notifier Notifier
}

func NewOrderService(pool TxBeginner, store OrderStore, newStore NewOrderStore, notifier Notifier) *OrderService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &OrderService{pool: pool, store: store, newStore: newStore, notifier: notifier}
}

// OrderItemInput is one requested line. Either ProductID references the
// catalog, or Name+UnitPrice describe an ad hoc line with no recipe.
type OrderItemInput struct {
	ProductID           string
	Name                string
	UnitPrice           string
	Quantity            int32
	ExcludedIngredients []string
	Comment             string
}

// CreateOrderRequest is the validated input for a takeaway/online checkout.
// Dine-in orders are created through SeatTable instead.
type CreateOrderRequest struct {
	OrderType     string
	PromoCode     string
	ShippingCost  string
	ClientName    string
	ClientPhone   string
	ClientAddress string
	Items         []OrderItemInput
}

// OrderResult is an order with its lines.
type OrderResult struct {
	Order database.Order
	Lines []database.OrderLine
}

// TableResult is a table with its freshly linked order, if any.
type TableResult struct {
	Table database.RestaurantTable
	Order *database.Order
}

// --- Transitions ---

// SeatTable creates an empty dine-in order for the table and links it.
// The table keeps deriving as free until something is sent to the kitchen.
func (s *OrderService) SeatTable(ctx context.Context, tableID uuid.UUID, covers int32) (*TableResult, error) {
	if covers <= 0 {
		return nil, ErrInvalidCovers
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck
	store := s.newStore(tx)

	table, err := store.GetTableForUpdate(ctx, tableID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("get table: %w", err)
	}
	if table.OrderID.Valid {
		return nil, ErrTableOccupied
	}

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		OrderType: enum.OrderTypeDineIn,
		TableID:   pgtype.UUID{Bytes: tableID, Valid: true},
		Covers:    pgtype.Int4{Int32: covers, Valid: true},
		Status:    enum.OrderStatusInProgress,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	table, err = store.LinkTableOrder(ctx, database.LinkTableOrderParams{
		ID:      tableID,
		OrderID: pgtype.UUID{Bytes: order.ID, Valid: true},
		Covers:  pgtype.Int4{Int32: covers, Valid: true},
	})
	if err != nil {
		return nil, fmt.Errorf("link table: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	s.notifier.Publish(ChannelTables, "table_seated", map[string]any{"table_id": tableID, "order_id": order.ID})
	return &TableResult{Table: table, Order: &order}, nil
}

// CreateOrder handles a takeaway/online checkout: it creates the order in
// pending validation, adds the items with catalog snapshots, applies an
// optional promo code, and computes the totals.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResult, error) {
	if req.OrderType != enum.OrderTypeTakeaway && req.OrderType != enum.OrderTypeOnline {
		return nil, ErrInvalidOrderType
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	shipping := decimal.Zero
	if req.ShippingCost != "" {
		var err error
		shipping, err = decimal.NewFromString(req.ShippingCost)
		if err != nil || shipping.IsNegative() {
			return nil, fmt.Errorf("%w: shipping cost", ErrInvalidUnitPrice)
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck
	store := s.newStore(tx)

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		OrderType:     req.OrderType,
		Status:        enum.OrderStatusPendingValidation,
		ShippingCost:  decimalToNumeric(shipping),
		ClientName:    textOrNull(req.ClientName),
		ClientPhone:   textOrNull(req.ClientPhone),
		ClientAddress: textOrNull(req.ClientAddress),
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	for i, item := range req.Items {
		if _, err := s.createLine(ctx, store, order.ID, item); err != nil {
			return nil, fmt.Errorf("item[%d]: %w", i, err)
		}
	}

	if req.PromoCode != "" {
		if err := s.applyPromoTx(ctx, store, &order, req.PromoCode); err != nil {
			return nil, err
		}
	}

	order, lines, err := s.recomputeTotals(ctx, store, order)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	s.notifier.Publish(ChannelOrders, "order_created", map[string]any{"order_id": order.ID})
	return &OrderResult{Order: order, Lines: lines}, nil
}

// AddItems appends lines to an open order and recomputes its totals.
func (s *OrderService) AddItems(ctx context.Context, orderID uuid.UUID, items []OrderItemInput) (*OrderResult, error) {
	if len(items) == 0 {
		return nil, ErrEmptyItems
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck
	store := s.newStore(tx)

	order, err := s.lockOpenOrder(ctx, store, orderID)
	if err != nil {
		return nil, err
	}

	for i, item := range items {
		if _, err := s.createLine(ctx, store, order.ID, item); err != nil {
			return nil, fmt.Errorf("item[%d]: %w", i, err)
		}
	}

	order, lines, err := s.recomputeTotals(ctx, store, order)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	s.notifier.Publish(ChannelOrders, "order_updated", map[string]any{"order_id": order.ID})
	return &OrderResult{Order: order, Lines: lines}, nil
}

// UpdateLineInput mutates a waiting line. Zero quantity is rejected.
type UpdateLineInput struct {
	Quantity            int32
	ExcludedIngredients []string
	Comment             string
}

// UpdateLine changes quantity, exclusions or comment of a line that has not
// left the waiting state.
func (s *OrderService) UpdateLine(ctx context.Context, orderID, lineID uuid.UUID, input UpdateLineInput) (*OrderResult, error) {
	if input.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	excluded, err := parseUUIDs(input.ExcludedIngredients)
	if err != nil {
		return nil, fmt.Errorf("%w: excluded ingredients", ErrInvalidIngredientID)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck
	store := s.newStore(tx)

	order, err := s.lockOpenOrder(ctx, store, orderID)
	if err != nil {
		return nil, err
	}

	line, err := store.GetOrderLine(ctx, lineID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLineNotFound
		}
		return nil, fmt.Errorf("get line: %w", err)
	}
	if line.OrderID != orderID {
		return nil, ErrLineNotFound
	}
	if line.Status != enum.LineStatusWaiting {
		return nil, ErrLineAlreadySent
	}

	if _, err := store.UpdateOrderLine(ctx, database.UpdateOrderLineParams{
		ID:                  lineID,
		Quantity:            input.Quantity,
		ExcludedIngredients: excluded,
		Comment:             textOrNull(input.Comment),
	}); err != nil {
		return nil, fmt.Errorf("update line: %w", err)
	}

	order, lines, err := s.recomputeTotals(ctx, store, order)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	s.notifier.Publish(ChannelOrders, "order_updated", map[string]any{"order_id": order.ID})
	return &OrderResult{Order: order, Lines: lines}, nil
}

// RemoveLine deletes a waiting line and recomputes the order's totals.
func (s *OrderService) RemoveLine(ctx context.Context, orderID, lineID uuid.UUID) (*OrderResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck
	store := s.newStore(tx)

	order, err := s.lockOpenOrder(ctx, store, orderID)
	if err != nil {
		return nil, err
	}

	line, err := store.GetOrderLine(ctx, lineID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLineNotFound
		}
		return nil, fmt.Errorf("get line: %w", err)
	}
	if line.OrderID != orderID {
		return nil, ErrLineNotFound
	}
	if line.Status != enum.LineStatusWaiting {
		return nil, ErrLineAlreadySent
	}

	if err := store.DeleteOrderLine(ctx, lineID); err != nil {
		return nil, fmt.Errorf("delete line: %w", err)
	}

	order, lines, err := s.recomputeTotals(ctx, store, order)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	s.notifier.Publish(ChannelOrders, "order_updated", map[string]any{"order_id": order.ID})
	return &OrderResult{Order: order, Lines: lines}, nil
}

// SendToKitchen flips the selected waiting lines to sent with one shared
// timestamp; the group becomes a kitchen ticket. The order's first send
// flips its kitchen status to received in the same transaction, so a
// received order always has the line updates that justify it.
func (s *OrderService) SendToKitchen(ctx context.Context, orderID uuid.UUID, lineIDs []uuid.UUID) (*OrderResult, error) {
	if len(lineIDs) == 0 {
		return nil, ErrNoLinesSelected
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck
	store := s.newStore(tx)

	order, err := s.lockOpenOrder(ctx, store, orderID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sent, err := store.MarkOrderLinesSent(ctx, database.MarkOrderLinesSentParams{
		OrderID: orderID,
		LineIDs: lineIDs,
		SentAt:  pgtype.Timestamptz{Time: now, Valid: true},
	})
	if err != nil {
		return nil, fmt.Errorf("mark lines sent: %w", err)
	}
	if len(sent) == 0 {
		return nil, ErrNoLinesSelected
	}

	if order.KitchenStatus == enum.KitchenStatusNotSent {
		order, err = store.MarkOrderReceived(ctx, database.MarkOrderReceivedParams{
			ID:              orderID,
			SentToKitchenAt: pgtype.Timestamptz{Time: now, Valid: true},
		})
		if err != nil {
			return nil, fmt.Errorf("mark order received: %w", err)
		}
	}

	lines, err := store.ListOrderLines(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list lines: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	s.notifier.Publish(ChannelOrders, "sent_to_kitchen", map[string]any{"order_id": orderID})
	s.notifier.Publish(ChannelTables, "tables_changed", nil)
	return &OrderResult{Order: order, Lines: lines}, nil
}

// MarkReady signals the kitchen finished the order.
func (s *OrderService) MarkReady(ctx context.Context, orderID uuid.UUID) (database.Order, error) {
	return s.kitchenTransition(ctx, orderID, func(ctx context.Context, store OrderStore, order database.Order) (database.Order, error) {
		if order.KitchenStatus != enum.KitchenStatusReceived {
			return order, ErrInvalidTransition
		}
		return store.MarkOrderReady(ctx, database.MarkOrderReadyParams{
			ID:      orderID,
			ReadyAt: pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true},
		})
	}, "order_ready")
}

// MarkServed records a dine-in order reaching the table.
func (s *OrderService) MarkServed(ctx context.Context, orderID uuid.UUID) (database.Order, error) {
	return s.kitchenTransition(ctx, orderID, func(ctx context.Context, store OrderStore, order database.Order) (database.Order, error) {
		if order.OrderType != enum.OrderTypeDineIn || order.KitchenStatus != enum.KitchenStatusReady {
			return order, ErrInvalidTransition
		}
		return store.MarkOrderServed(ctx, database.MarkOrderServedParams{
			ID:            orderID,
			KitchenStatus: enum.KitchenStatusServed,
			ServedAt:      pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true},
		})
	}, "order_served")
}

// MarkDelivered records a takeaway/online order being handed over.
func (s *OrderService) MarkDelivered(ctx context.Context, orderID uuid.UUID) (database.Order, error) {
	return s.kitchenTransition(ctx, orderID, func(ctx context.Context, store OrderStore, order database.Order) (database.Order, error) {
		if order.OrderType == enum.OrderTypeDineIn || order.KitchenStatus != enum.KitchenStatusReady {
			return order, ErrInvalidTransition
		}
		return store.MarkOrderServed(ctx, database.MarkOrderServedParams{
			ID:            orderID,
			KitchenStatus: enum.KitchenStatusDelivered,
			ServedAt:      pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true},
		})
	}, "order_delivered")
}

// ValidateOrder lets staff accept a takeaway/online order into progress.
func (s *OrderService) ValidateOrder(ctx context.Context, orderID uuid.UUID) (database.Order, error) {
	return s.kitchenTransition(ctx, orderID, func(ctx context.Context, store OrderStore, order database.Order) (database.Order, error) {
		if order.Status != enum.OrderStatusPendingValidation {
			return order, ErrInvalidTransition
		}
		return store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
			ID:     orderID,
			Status: enum.OrderStatusInProgress,
		})
	}, "order_validated")
}

// Finalize captures payment. It finalizes the order, frees a dine-in
// table, generates the sales ledger inside the same transaction (a ledger
// failure fails the whole finalize) and, only after commit, runs the
// best-effort stock deduction.
func (s *OrderService) Finalize(ctx context.Context, orderID uuid.UUID, paymentMethod string) (*OrderResult, error) {
	switch paymentMethod {
	case enum.PaymentMethodCash, enum.PaymentMethodCard, enum.PaymentMethodTransfer:
	default:
		return nil, ErrInvalidPaymentMethod
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck
	store := s.newStore(tx)

	order, err := s.lockOpenOrder(ctx, store, orderID)
	if err != nil {
		return nil, err
	}
	// Payment can only close an order the kitchen has seen; a never-fired
	// order is cancelled, not finalized.
	if order.KitchenStatus == enum.KitchenStatusNotSent {
		return nil, ErrInvalidTransition
	}

	lines, err := store.ListOrderLines(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list lines: %w", err)
	}
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}

	order, err = store.FinalizeOrder(ctx, database.FinalizeOrderParams{
		ID:            orderID,
		PaymentMethod: pgtype.Text{String: paymentMethod, Valid: true},
		FinalizedAt:   pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true},
	})
	if err != nil {
		return nil, fmt.Errorf("finalize order: %w", err)
	}

	if order.OrderType == enum.OrderTypeDineIn && order.TableID.Valid {
		if _, err := store.UnlinkTableOrder(ctx, uuid.UUID(order.TableID.Bytes)); err != nil {
			return nil, fmt.Errorf("free table: %w", err)
		}
	}

	// Ledger rows must exist for every finalized order; reporting depends
	// on them. A failure here aborts the transaction.
	if _, err := GenerateLedgerRows(ctx, store, order, lines); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	// Stock deduction runs after commit: it may not undo a captured
	// payment, and drift is recoverable by a manual correction.
	if err := ConsumeOrderStock(ctx, s.store, lines); err != nil {
		log.Printf("ERROR: stock deduction for order %s: %v", orderID, err)
	}

	s.notifier.Publish(ChannelOrders, "order_finalized", map[string]any{"order_id": orderID})
	s.notifier.Publish(ChannelTables, "tables_changed", nil)
	s.notifier.Publish(ChannelIngredients, "stock_changed", nil)
	return &OrderResult{Order: order, Lines: lines}, nil
}

// CancelUnsentOrder deletes an order nothing has been fired for, freeing
// its table. Once any line reached the kitchen the order can only move
// forward.
func (s *OrderService) CancelUnsentOrder(ctx context.Context, orderID uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck
	store := s.newStore(tx)

	order, err := s.lockOpenOrder(ctx, store, orderID)
	if err != nil {
		return err
	}
	if order.KitchenStatus != enum.KitchenStatusNotSent {
		return ErrOrderAlreadySent
	}
	lines, err := store.ListOrderLines(ctx, orderID)
	if err != nil {
		return fmt.Errorf("list lines: %w", err)
	}
	for _, line := range lines {
		if line.Status != enum.LineStatusWaiting {
			return ErrOrderAlreadySent
		}
	}

	if order.TableID.Valid {
		if _, err := store.UnlinkTableOrder(ctx, uuid.UUID(order.TableID.Bytes)); err != nil {
			return fmt.Errorf("free table: %w", err)
		}
	}
	if err := store.DeleteOrder(ctx, orderID); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	s.notifier.Publish(ChannelOrders, "order_cancelled", map[string]any{"order_id": orderID})
	s.notifier.Publish(ChannelTables, "tables_changed", nil)
	return nil
}

// ApplyPromoCode applies an active promo code to an open order and
// recomputes its totals.
func (s *OrderService) ApplyPromoCode(ctx context.Context, orderID uuid.UUID, code string) (*OrderResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck
	store := s.newStore(tx)

	order, err := s.lockOpenOrder(ctx, store, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.applyPromoTx(ctx, store, &order, code); err != nil {
		return nil, err
	}
	order, lines, err := s.recomputeTotals(ctx, store, order)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	s.notifier.Publish(ChannelOrders, "order_updated", map[string]any{"order_id": orderID})
	return &OrderResult{Order: order, Lines: lines}, nil
}

// --- Internals ---

// lockOpenOrder locks the order row and rejects closed orders, the mutual
// exclusion scope every transition runs under.
func (s *OrderService) lockOpenOrder(ctx context.Context, store OrderStore, orderID uuid.UUID) (database.Order, error) {
	order, err := store.GetOrderForUpdate(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("get order: %w", err)
	}
	if order.Status == enum.OrderStatusFinalized {
		return database.Order{}, ErrOrderFinalized
	}
	return order, nil
}

// kitchenTransition wraps a single-order state change in a locked tx.
func (s *OrderService) kitchenTransition(ctx context.Context, orderID uuid.UUID, apply func(context.Context, OrderStore, database.Order) (database.Order, error), event string) (database.Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck
	store := s.newStore(tx)

	order, err := s.lockOpenOrder(ctx, store, orderID)
	if err != nil {
		return database.Order{}, err
	}
	order, err = apply(ctx, store, order)
	if err != nil {
		return database.Order{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Order{}, fmt.Errorf("commit tx: %w", err)
	}

	s.notifier.Publish(ChannelOrders, event, map[string]any{"order_id": orderID})
	s.notifier.Publish(ChannelTables, "tables_changed", nil)
	return order, nil
}

// createLine validates one item and inserts it with catalog snapshots.
// Product name and unit price are copied onto the line so later catalog
// edits never change an existing order.
func (s *OrderService) createLine(ctx context.Context, store OrderStore, orderID uuid.UUID, item OrderItemInput) (database.OrderLine, error) {
	if item.Quantity <= 0 {
		return database.OrderLine{}, ErrInvalidQuantity
	}
	excluded, err := parseUUIDs(item.ExcludedIngredients)
	if err != nil {
		return database.OrderLine{}, fmt.Errorf("%w: excluded ingredients", ErrInvalidIngredientID)
	}

	productID := pgtype.UUID{}
	name := item.Name
	var price decimal.Decimal

	if item.ProductID != "" {
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return database.OrderLine{}, ErrInvalidProductID
		}
		product, err := store.GetProductWithCategory(ctx, pid)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return database.OrderLine{}, ErrProductNotFound
			}
			return database.OrderLine{}, fmt.Errorf("get product: %w", err)
		}
		if !product.Active {
			return database.OrderLine{}, ErrProductNotFound
		}
		recipeCount, err := store.CountRecipeLines(ctx, pid)
		if err != nil {
			return database.OrderLine{}, fmt.Errorf("count recipe lines: %w", err)
		}
		if recipeCount == 0 {
			return database.OrderLine{}, ErrProductNotSellable
		}
		productID = pgtype.UUID{Bytes: pid, Valid: true}
		name = product.Name
		price = numericToDecimal(product.Price)
	} else {
		// Ad hoc line: legacy/offline items with no catalog entry.
		if name == "" || item.UnitPrice == "" {
			return database.OrderLine{}, ErrMissingLineName
		}
		price, err = decimal.NewFromString(item.UnitPrice)
		if err != nil || price.IsNegative() {
			return database.OrderLine{}, ErrInvalidUnitPrice
		}
	}

	return store.CreateOrderLine(ctx, database.CreateOrderLineParams{
		OrderID:             orderID,
		ProductID:           productID,
		ProductName:         name,
		UnitPrice:           decimalToNumeric(price),
		Quantity:            item.Quantity,
		ExcludedIngredients: excluded,
		Comment:             textOrNull(item.Comment),
	})
}

// applyPromoTx resolves an active promo code, replaces any applied
// promotion rows and leaves the discount recomputation to recomputeTotals.
func (s *OrderService) applyPromoTx(ctx context.Context, store OrderStore, order *database.Order, code string) error {
	promo, err := store.GetPromotionByCode(ctx, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrPromoNotFound
		}
		return fmt.Errorf("get promotion: %w", err)
	}
	if _, err := ParsePromotionRule(promo.Kind, promo.Config); err != nil {
		return err
	}

	if err := store.DeleteAppliedPromotionsByOrder(ctx, order.ID); err != nil {
		return fmt.Errorf("clear applied promotions: %w", err)
	}
	if _, err := store.CreateAppliedPromotion(ctx, database.CreateAppliedPromotionParams{
		OrderID:     order.ID,
		PromotionID: promo.ID,
		Name:        promo.Name,
		Kind:        promo.Kind,
		Discount:    decimalToNumeric(decimal.Zero),
		Config:      promo.Config,
	}); err != nil {
		return fmt.Errorf("apply promotion: %w", err)
	}

	updated, err := store.UpdateOrderTotals(ctx, database.UpdateOrderTotalsParams{
		ID:            order.ID,
		Subtotal:      order.Subtotal,
		TotalDiscount: order.TotalDiscount,
		Total:         order.Total,
		PromoCode:     pgtype.Text{String: promo.Code, Valid: true},
	})
	if err != nil {
		return fmt.Errorf("set promo code: %w", err)
	}
	*order = updated
	return nil
}

// recomputeTotals re-derives subtotal, promotion discounts and total from
// the current lines, clamping the discount to the subtotal.
func (s *OrderService) recomputeTotals(ctx context.Context, store OrderStore, order database.Order) (database.Order, []database.OrderLine, error) {
	lines, err := store.ListOrderLines(ctx, order.ID)
	if err != nil {
		return order, nil, fmt.Errorf("list lines: %w", err)
	}

	subtotal := decimal.Zero
	promoCtx := PromoContext{
		ShippingCost:       numericToDecimal(order.ShippingCost),
		QuantityByProduct:  make(map[uuid.UUID]int32),
		UnitPriceByProduct: make(map[uuid.UUID]decimal.Decimal),
	}
	for _, line := range lines {
		price := numericToDecimal(line.UnitPrice)
		if price.IsNegative() {
			price = decimal.Zero
		}
		subtotal = subtotal.Add(price.Mul(decimal.NewFromInt32(line.Quantity)))
		if line.ProductID.Valid {
			pid := uuid.UUID(line.ProductID.Bytes)
			promoCtx.QuantityByProduct[pid] += line.Quantity
			promoCtx.UnitPriceByProduct[pid] = price
		}
	}
	promoCtx.Subtotal = subtotal

	discount := decimal.Zero
	promos, err := store.ListAppliedPromotionsByOrder(ctx, order.ID)
	if err != nil {
		return order, nil, fmt.Errorf("list applied promotions: %w", err)
	}
	for _, applied := range promos {
		rule, err := ParsePromotionRule(applied.Kind, applied.Config)
		if err != nil {
			return order, nil, err
		}
		amount := rule.DiscountAmount(promoCtx)
		discount = discount.Add(amount)
		// Persist the per-promotion share so the applied row records what
		// this promotion actually took off.
		if err := store.UpdateAppliedPromotionDiscount(ctx, database.UpdateAppliedPromotionDiscountParams{
			ID:       applied.ID,
			Discount: decimalToNumeric(amount),
		}); err != nil {
			return order, nil, fmt.Errorf("update applied promotion discount: %w", err)
		}
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}

	total := subtotal.Sub(discount).Add(numericToDecimal(order.ShippingCost))
	if total.IsNegative() {
		total = decimal.Zero
	}

	order, err = store.UpdateOrderTotals(ctx, database.UpdateOrderTotalsParams{
		ID:            order.ID,
		Subtotal:      decimalToNumeric(subtotal),
		TotalDiscount: decimalToNumeric(discount),
		Total:         decimalToNumeric(total),
		PromoCode:     order.PromoCode,
	})
	if err != nil {
		return order, nil, fmt.Errorf("update totals: %w", err)
	}
	return order, lines, nil
}

func parseUUIDs(raw []string) ([]uuid.UUID, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func textOrNull(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}
