package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const ledgerColumns = `id, order_id, seq, product_id, product_name, category_id, category_name, quantity,
unit_revenue, total_revenue, unit_cost, total_cost, profit, payment_method, sold_at`

func scanLedgerRow(row pgx.Row) (SalesLedgerRow, error) {
	var i SalesLedgerRow
	err := row.Scan(
		&i.ID, &i.OrderID, &i.Seq, &i.ProductID, &i.ProductName, &i.CategoryID, &i.CategoryName, &i.Quantity,
		&i.UnitRevenue, &i.TotalRevenue, &i.UnitCost, &i.TotalCost, &i.Profit, &i.PaymentMethod, &i.SoldAt,
	)
	return i, err
}

const createLedgerRow = `-- name: CreateLedgerRow :one
INSERT INTO sales_ledger (order_id, seq, product_id, product_name, category_id, category_name, quantity,
                          unit_revenue, total_revenue, unit_cost, total_cost, profit, payment_method, sold_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
RETURNING ` + ledgerColumns

type CreateLedgerRowParams struct {
	OrderID       uuid.UUID
	Seq           int32
	ProductID     pgtype.UUID
	ProductName   string
	CategoryID    pgtype.UUID
	CategoryName  pgtype.Text
	Quantity      int32
	UnitRevenue   pgtype.Numeric
	TotalRevenue  pgtype.Numeric
	UnitCost      pgtype.Numeric
	TotalCost     pgtype.Numeric
	Profit        pgtype.Numeric
	PaymentMethod pgtype.Text
	SoldAt        time.Time
}

func (q *Queries) CreateLedgerRow(ctx context.Context, arg CreateLedgerRowParams) (SalesLedgerRow, error) {
	row := q.db.QueryRow(ctx, createLedgerRow,
		arg.OrderID, arg.Seq, arg.ProductID, arg.ProductName, arg.CategoryID, arg.CategoryName, arg.Quantity,
		arg.UnitRevenue, arg.TotalRevenue, arg.UnitCost, arg.TotalCost, arg.Profit, arg.PaymentMethod, arg.SoldAt,
	)
	return scanLedgerRow(row)
}

const deleteLedgerRowsByOrder = `-- name: DeleteLedgerRowsByOrder :exec
DELETE FROM sales_ledger
WHERE order_id = $1
`

func (q *Queries) DeleteLedgerRowsByOrder(ctx context.Context, orderID uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteLedgerRowsByOrder, orderID)
	return err
}

const listLedgerRowsByOrder = `-- name: ListLedgerRowsByOrder :many
SELECT ` + ledgerColumns + `
FROM sales_ledger
WHERE order_id = $1
ORDER BY seq
`

func (q *Queries) ListLedgerRowsByOrder(ctx context.Context, orderID uuid.UUID) ([]SalesLedgerRow, error) {
	rows, err := q.db.Query(ctx, listLedgerRowsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SalesLedgerRow
	for rows.Next() {
		i, err := scanLedgerRow(rows)
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

const listLedgerRowsBetween = `-- name: ListLedgerRowsBetween :many
SELECT ` + ledgerColumns + `
FROM sales_ledger
WHERE sold_at >= $1 AND sold_at < $2
ORDER BY sold_at
`

type ListLedgerRowsBetweenParams struct {
	Start time.Time
	End   time.Time
}

func (q *Queries) ListLedgerRowsBetween(ctx context.Context, arg ListLedgerRowsBetweenParams) ([]SalesLedgerRow, error) {
	rows, err := q.db.Query(ctx, listLedgerRowsBetween, arg.Start, arg.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SalesLedgerRow
	for rows.Next() {
		i, err := scanLedgerRow(rows)
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
