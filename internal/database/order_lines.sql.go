package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderLineColumns = `id, order_id, product_id, product_name, unit_price, quantity, excluded_ingredients, comment, status, sent_at`

func scanOrderLine(row pgx.Row) (OrderLine, error) {
	var i OrderLine
	err := row.Scan(
		&i.ID, &i.OrderID, &i.ProductID, &i.ProductName, &i.UnitPrice,
		&i.Quantity, &i.ExcludedIngredients, &i.Comment, &i.Status, &i.SentAt,
	)
	return i, err
}

const createOrderLine = `-- name: CreateOrderLine :one
INSERT INTO order_lines (order_id, product_id, product_name, unit_price, quantity, excluded_ingredients, comment)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + orderLineColumns

type CreateOrderLineParams struct {
	OrderID             uuid.UUID
	ProductID           pgtype.UUID
	ProductName         string
	UnitPrice           pgtype.Numeric
	Quantity            int32
	ExcludedIngredients []uuid.UUID
	Comment             pgtype.Text
}

func (q *Queries) CreateOrderLine(ctx context.Context, arg CreateOrderLineParams) (OrderLine, error) {
	row := q.db.QueryRow(ctx, createOrderLine,
		arg.OrderID, arg.ProductID, arg.ProductName, arg.UnitPrice,
		arg.Quantity, arg.ExcludedIngredients, arg.Comment,
	)
	return scanOrderLine(row)
}

const getOrderLine = `-- name: GetOrderLine :one
SELECT ` + orderLineColumns + `
FROM order_lines
WHERE id = $1
`

func (q *Queries) GetOrderLine(ctx context.Context, id uuid.UUID) (OrderLine, error) {
	return scanOrderLine(q.db.QueryRow(ctx, getOrderLine, id))
}

const listOrderLines = `-- name: ListOrderLines :many
SELECT ` + orderLineColumns + `
FROM order_lines
WHERE order_id = $1
ORDER BY id
`

func (q *Queries) ListOrderLines(ctx context.Context, orderID uuid.UUID) ([]OrderLine, error) {
	rows, err := q.db.Query(ctx, listOrderLines, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderLine
	for rows.Next() {
		i, err := scanOrderLine(rows)
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

const listOrderLinesByOrders = `-- name: ListOrderLinesByOrders :many
SELECT ` + orderLineColumns + `
FROM order_lines
WHERE order_id = ANY($1::uuid[])
ORDER BY order_id, id
`

func (q *Queries) ListOrderLinesByOrders(ctx context.Context, orderIDs []uuid.UUID) ([]OrderLine, error) {
	rows, err := q.db.Query(ctx, listOrderLinesByOrders, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderLine
	for rows.Next() {
		i, err := scanOrderLine(rows)
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

const updateOrderLine = `-- name: UpdateOrderLine :one
UPDATE order_lines
SET quantity = $2, excluded_ingredients = $3, comment = $4
WHERE id = $1
RETURNING ` + orderLineColumns

type UpdateOrderLineParams struct {
	ID                  uuid.UUID
	Quantity            int32
	ExcludedIngredients []uuid.UUID
	Comment             pgtype.Text
}

func (q *Queries) UpdateOrderLine(ctx context.Context, arg UpdateOrderLineParams) (OrderLine, error) {
	row := q.db.QueryRow(ctx, updateOrderLine, arg.ID, arg.Quantity, arg.ExcludedIngredients, arg.Comment)
	return scanOrderLine(row)
}

const deleteOrderLine = `-- name: DeleteOrderLine :exec
DELETE FROM order_lines
WHERE id = $1
`

func (q *Queries) DeleteOrderLine(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteOrderLine, id)
	return err
}

const markOrderLinesSent = `-- name: MarkOrderLinesSent :many
UPDATE order_lines
SET status = 'SENT_TO_KITCHEN', sent_at = $3
WHERE order_id = $1 AND id = ANY($2::uuid[]) AND status = 'WAITING'
RETURNING ` + orderLineColumns

type MarkOrderLinesSentParams struct {
	OrderID uuid.UUID
	LineIDs []uuid.UUID
	SentAt  pgtype.Timestamptz
}

// MarkOrderLinesSent flips the selected waiting lines to sent with a shared
// timestamp. Lines already sent are left untouched.
func (q *Queries) MarkOrderLinesSent(ctx context.Context, arg MarkOrderLinesSentParams) ([]OrderLine, error) {
	rows, err := q.db.Query(ctx, markOrderLinesSent, arg.OrderID, arg.LineIDs, arg.SentAt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderLine
	for rows.Next() {
		i, err := scanOrderLine(rows)
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

const countSentLines = `-- name: CountSentLines :one
SELECT count(*)
FROM order_lines
WHERE order_id = $1 AND status = 'SENT_TO_KITCHEN'
`

func (q *Queries) CountSentLines(ctx context.Context, orderID uuid.UUID) (int64, error) {
	row := q.db.QueryRow(ctx, countSentLines, orderID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const listKitchenLines = `-- name: ListKitchenLines :many
SELECT l.id, l.order_id, l.product_id, l.product_name, l.unit_price, l.quantity,
       l.excluded_ingredients, l.comment, l.status, l.sent_at,
       o.order_type, t.name AS table_name
FROM order_lines l
JOIN orders o ON o.id = l.order_id
LEFT JOIN restaurant_tables t ON t.order_id = o.id
WHERE l.status = 'SENT_TO_KITCHEN' AND o.kitchen_status IN ('RECEIVED', 'READY')
ORDER BY l.sent_at, l.order_id, l.id
`

type ListKitchenLinesRow struct {
	ID                  uuid.UUID
	OrderID             uuid.UUID
	ProductID           pgtype.UUID
	ProductName         string
	UnitPrice           pgtype.Numeric
	Quantity            int32
	ExcludedIngredients []uuid.UUID
	Comment             pgtype.Text
	Status              string
	SentAt              pgtype.Timestamptz
	OrderType           string
	TableName           pgtype.Text
}

func (q *Queries) ListKitchenLines(ctx context.Context) ([]ListKitchenLinesRow, error) {
	rows, err := q.db.Query(ctx, listKitchenLines)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListKitchenLinesRow
	for rows.Next() {
		var i ListKitchenLinesRow
		if err := rows.Scan(
			&i.ID, &i.OrderID, &i.ProductID, &i.ProductName, &i.UnitPrice, &i.Quantity,
			&i.ExcludedIngredients, &i.Comment, &i.Status, &i.SentAt,
			&i.OrderType, &i.TableName,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
