package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createTable = `-- name: CreateTable :one
INSERT INTO restaurant_tables (name, capacity)
VALUES ($1, $2)
RETURNING id, name, capacity, covers, order_id, created_at
`

type CreateTableParams struct {
	Name     string
	Capacity int32
}

func (q *Queries) CreateTable(ctx context.Context, arg CreateTableParams) (RestaurantTable, error) {
	row := q.db.QueryRow(ctx, createTable, arg.Name, arg.Capacity)
	var i RestaurantTable
	err := row.Scan(&i.ID, &i.Name, &i.Capacity, &i.Covers, &i.OrderID, &i.CreatedAt)
	return i, err
}

const getTable = `-- name: GetTable :one
SELECT id, name, capacity, covers, order_id, created_at
FROM restaurant_tables
WHERE id = $1
`

func (q *Queries) GetTable(ctx context.Context, id uuid.UUID) (RestaurantTable, error) {
	row := q.db.QueryRow(ctx, getTable, id)
	var i RestaurantTable
	err := row.Scan(&i.ID, &i.Name, &i.Capacity, &i.Covers, &i.OrderID, &i.CreatedAt)
	return i, err
}

const getTableForUpdate = `-- name: GetTableForUpdate :one
SELECT id, name, capacity, covers, order_id, created_at
FROM restaurant_tables
WHERE id = $1
FOR NO KEY UPDATE
`

func (q *Queries) GetTableForUpdate(ctx context.Context, id uuid.UUID) (RestaurantTable, error) {
	row := q.db.QueryRow(ctx, getTableForUpdate, id)
	var i RestaurantTable
	err := row.Scan(&i.ID, &i.Name, &i.Capacity, &i.Covers, &i.OrderID, &i.CreatedAt)
	return i, err
}

const getTableByOrder = `-- name: GetTableByOrder :one
SELECT id, name, capacity, covers, order_id, created_at
FROM restaurant_tables
WHERE order_id = $1
`

func (q *Queries) GetTableByOrder(ctx context.Context, orderID pgtype.UUID) (RestaurantTable, error) {
	row := q.db.QueryRow(ctx, getTableByOrder, orderID)
	var i RestaurantTable
	err := row.Scan(&i.ID, &i.Name, &i.Capacity, &i.Covers, &i.OrderID, &i.CreatedAt)
	return i, err
}

const listTables = `-- name: ListTables :many
SELECT id, name, capacity, covers, order_id, created_at
FROM restaurant_tables
ORDER BY name
`

func (q *Queries) ListTables(ctx context.Context) ([]RestaurantTable, error) {
	rows, err := q.db.Query(ctx, listTables)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RestaurantTable
	for rows.Next() {
		var i RestaurantTable
		if err := rows.Scan(&i.ID, &i.Name, &i.Capacity, &i.Covers, &i.OrderID, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const linkTableOrder = `-- name: LinkTableOrder :one
UPDATE restaurant_tables
SET order_id = $2, covers = $3
WHERE id = $1
RETURNING id, name, capacity, covers, order_id, created_at
`

type LinkTableOrderParams struct {
	ID      uuid.UUID
	OrderID pgtype.UUID
	Covers  pgtype.Int4
}

func (q *Queries) LinkTableOrder(ctx context.Context, arg LinkTableOrderParams) (RestaurantTable, error) {
	row := q.db.QueryRow(ctx, linkTableOrder, arg.ID, arg.OrderID, arg.Covers)
	var i RestaurantTable
	err := row.Scan(&i.ID, &i.Name, &i.Capacity, &i.Covers, &i.OrderID, &i.CreatedAt)
	return i, err
}

const unlinkTableOrder = `-- name: UnlinkTableOrder :one
UPDATE restaurant_tables
SET order_id = NULL, covers = NULL
WHERE id = $1
RETURNING id, name, capacity, covers, order_id, created_at
`

func (q *Queries) UnlinkTableOrder(ctx context.Context, id uuid.UUID) (RestaurantTable, error) {
	row := q.db.QueryRow(ctx, unlinkTableOrder, id)
	var i RestaurantTable
	err := row.Scan(&i.ID, &i.Name, &i.Capacity, &i.Covers, &i.OrderID, &i.CreatedAt)
	return i, err
}

const deleteTable = `-- name: DeleteTable :exec
DELETE FROM restaurant_tables
WHERE id = $1
`

func (q *Queries) DeleteTable(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteTable, id)
	return err
}
