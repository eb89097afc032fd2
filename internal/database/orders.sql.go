package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, order_type, table_id, covers, status, kitchen_status, payment_status, payment_method,
subtotal, total_discount, shipping_cost, total, profit, promo_code,
client_name, client_phone, client_address,
created_at, sent_to_kitchen_at, ready_at, served_at, finalized_at`

func scanOrder(row pgx.Row) (Order, error) {
	var i Order
	err := row.Scan(
		&i.ID, &i.OrderType, &i.TableID, &i.Covers, &i.Status, &i.KitchenStatus, &i.PaymentStatus, &i.PaymentMethod,
		&i.Subtotal, &i.TotalDiscount, &i.ShippingCost, &i.Total, &i.Profit, &i.PromoCode,
		&i.ClientName, &i.ClientPhone, &i.ClientAddress,
		&i.CreatedAt, &i.SentToKitchenAt, &i.ReadyAt, &i.ServedAt, &i.FinalizedAt,
	)
	return i, err
}

const createOrder = `-- name: CreateOrder :one
INSERT INTO orders (order_type, table_id, covers, status, shipping_cost, client_name, client_phone, client_address)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + orderColumns

type CreateOrderParams struct {
	OrderType     string
	TableID       pgtype.UUID
	Covers        pgtype.Int4
	Status        string
	ShippingCost  pgtype.Numeric
	ClientName    pgtype.Text
	ClientPhone   pgtype.Text
	ClientAddress pgtype.Text
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder,
		arg.OrderType, arg.TableID, arg.Covers, arg.Status,
		arg.ShippingCost, arg.ClientName, arg.ClientPhone, arg.ClientAddress,
	)
	return scanOrder(row)
}

const getOrder = `-- name: GetOrder :one
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1
`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrder, id))
}

const getOrderForUpdate = `-- name: GetOrderForUpdate :one
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1
FOR NO KEY UPDATE
`

// GetOrderForUpdate locks the order row to serialize concurrent transitions
// (double-finalize, double-send) against the same order.
func (q *Queries) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrderForUpdate, id))
}

const updateOrderStatus = `-- name: UpdateOrderStatus :one
UPDATE orders
SET status = $2
WHERE id = $1
RETURNING ` + orderColumns

type UpdateOrderStatusParams struct {
	ID     uuid.UUID
	Status string
}

func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, updateOrderStatus, arg.ID, arg.Status))
}

const updateOrderTotals = `-- name: UpdateOrderTotals :one
UPDATE orders
SET subtotal = $2, total_discount = $3, total = $4, promo_code = $5
WHERE id = $1
RETURNING ` + orderColumns

type UpdateOrderTotalsParams struct {
	ID            uuid.UUID
	Subtotal      pgtype.Numeric
	TotalDiscount pgtype.Numeric
	Total         pgtype.Numeric
	PromoCode     pgtype.Text
}

func (q *Queries) UpdateOrderTotals(ctx context.Context, arg UpdateOrderTotalsParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, updateOrderTotals, arg.ID, arg.Subtotal, arg.TotalDiscount, arg.Total, arg.PromoCode))
}

const markOrderReceived = `-- name: MarkOrderReceived :one
UPDATE orders
SET kitchen_status = 'RECEIVED', sent_to_kitchen_at = $2
WHERE id = $1
RETURNING ` + orderColumns

type MarkOrderReceivedParams struct {
	ID              uuid.UUID
	SentToKitchenAt pgtype.Timestamptz
}

func (q *Queries) MarkOrderReceived(ctx context.Context, arg MarkOrderReceivedParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, markOrderReceived, arg.ID, arg.SentToKitchenAt))
}

const markOrderReady = `-- name: MarkOrderReady :one
UPDATE orders
SET kitchen_status = 'READY', ready_at = $2
WHERE id = $1
RETURNING ` + orderColumns

type MarkOrderReadyParams struct {
	ID      uuid.UUID
	ReadyAt pgtype.Timestamptz
}

func (q *Queries) MarkOrderReady(ctx context.Context, arg MarkOrderReadyParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, markOrderReady, arg.ID, arg.ReadyAt))
}

const markOrderServed = `-- name: MarkOrderServed :one
UPDATE orders
SET kitchen_status = $2, served_at = $3
WHERE id = $1
RETURNING ` + orderColumns

type MarkOrderServedParams struct {
	ID            uuid.UUID
	KitchenStatus string
	ServedAt      pgtype.Timestamptz
}

func (q *Queries) MarkOrderServed(ctx context.Context, arg MarkOrderServedParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, markOrderServed, arg.ID, arg.KitchenStatus, arg.ServedAt))
}

const finalizeOrder = `-- name: FinalizeOrder :one
UPDATE orders
SET status = 'FINALIZED', payment_status = 'PAID', payment_method = $2, finalized_at = $3
WHERE id = $1
RETURNING ` + orderColumns

type FinalizeOrderParams struct {
	ID            uuid.UUID
	PaymentMethod pgtype.Text
	FinalizedAt   pgtype.Timestamptz
}

func (q *Queries) FinalizeOrder(ctx context.Context, arg FinalizeOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, finalizeOrder, arg.ID, arg.PaymentMethod, arg.FinalizedAt))
}

const setOrderProfit = `-- name: SetOrderProfit :exec
UPDATE orders
SET profit = $2
WHERE id = $1
`

type SetOrderProfitParams struct {
	ID     uuid.UUID
	Profit pgtype.Numeric
}

func (q *Queries) SetOrderProfit(ctx context.Context, arg SetOrderProfitParams) error {
	_, err := q.db.Exec(ctx, setOrderProfit, arg.ID, arg.Profit)
	return err
}

const deleteOrder = `-- name: DeleteOrder :exec
DELETE FROM orders
WHERE id = $1
`

func (q *Queries) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteOrder, id)
	return err
}

const listTakeawayOrders = `-- name: ListTakeawayOrders :many
SELECT ` + orderColumns + `
FROM orders
WHERE order_type IN ('TAKEAWAY', 'ONLINE') AND status <> 'FINALIZED'
ORDER BY created_at
`

func (q *Queries) ListTakeawayOrders(ctx context.Context) ([]Order, error) {
	rows, err := q.db.Query(ctx, listTakeawayOrders)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Order
	for rows.Next() {
		i, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listFinalizedOrdersBetween = `-- name: ListFinalizedOrdersBetween :many
SELECT ` + orderColumns + `
FROM orders
WHERE status = 'FINALIZED' AND created_at >= $1 AND created_at < $2
ORDER BY created_at
`

type ListFinalizedOrdersBetweenParams struct {
	Start time.Time
	End   time.Time
}

func (q *Queries) ListFinalizedOrdersBetween(ctx context.Context, arg ListFinalizedOrdersBetweenParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listFinalizedOrdersBetween, arg.Start, arg.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Order
	for rows.Next() {
		i, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listFinalizedOrders = `-- name: ListFinalizedOrders :many
SELECT ` + orderColumns + `
FROM orders
WHERE status = 'FINALIZED'
ORDER BY finalized_at DESC
LIMIT $1 OFFSET $2
`

type ListFinalizedOrdersParams struct {
	Limit  int32
	Offset int32
}

func (q *Queries) ListFinalizedOrders(ctx context.Context, arg ListFinalizedOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listFinalizedOrders, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Order
	for rows.Next() {
		i, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
