package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createIngredient = `-- name: CreateIngredient :one
INSERT INTO ingredients (name, unit, stock, min_stock, unit_price)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, name, unit, stock, min_stock, unit_price, created_at
`

type CreateIngredientParams struct {
	Name      string
	Unit      string
	Stock     pgtype.Numeric
	MinStock  pgtype.Numeric
	UnitPrice pgtype.Numeric
}

func (q *Queries) CreateIngredient(ctx context.Context, arg CreateIngredientParams) (Ingredient, error) {
	row := q.db.QueryRow(ctx, createIngredient, arg.Name, arg.Unit, arg.Stock, arg.MinStock, arg.UnitPrice)
	var i Ingredient
	err := row.Scan(&i.ID, &i.Name, &i.Unit, &i.Stock, &i.MinStock, &i.UnitPrice, &i.CreatedAt)
	return i, err
}

const getIngredient = `-- name: GetIngredient :one
SELECT id, name, unit, stock, min_stock, unit_price, created_at
FROM ingredients
WHERE id = $1
`

func (q *Queries) GetIngredient(ctx context.Context, id uuid.UUID) (Ingredient, error) {
	row := q.db.QueryRow(ctx, getIngredient, id)
	var i Ingredient
	err := row.Scan(&i.ID, &i.Name, &i.Unit, &i.Stock, &i.MinStock, &i.UnitPrice, &i.CreatedAt)
	return i, err
}

const listIngredients = `-- name: ListIngredients :many
SELECT id, name, unit, stock, min_stock, unit_price, created_at
FROM ingredients
ORDER BY name
`

func (q *Queries) ListIngredients(ctx context.Context) ([]Ingredient, error) {
	rows, err := q.db.Query(ctx, listIngredients)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Ingredient
	for rows.Next() {
		var i Ingredient
		if err := rows.Scan(&i.ID, &i.Name, &i.Unit, &i.Stock, &i.MinStock, &i.UnitPrice, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listIngredientsByIDs = `-- name: ListIngredientsByIDs :many
SELECT id, name, unit, stock, min_stock, unit_price, created_at
FROM ingredients
WHERE id = ANY($1::uuid[])
`

func (q *Queries) ListIngredientsByIDs(ctx context.Context, ids []uuid.UUID) ([]Ingredient, error) {
	rows, err := q.db.Query(ctx, listIngredientsByIDs, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Ingredient
	for rows.Next() {
		var i Ingredient
		if err := rows.Scan(&i.ID, &i.Name, &i.Unit, &i.Stock, &i.MinStock, &i.UnitPrice, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listLowStockIngredients = `-- name: ListLowStockIngredients :many
SELECT id, name, unit, stock, min_stock, unit_price, created_at
FROM ingredients
WHERE stock <= min_stock
ORDER BY name
`

func (q *Queries) ListLowStockIngredients(ctx context.Context) ([]Ingredient, error) {
	rows, err := q.db.Query(ctx, listLowStockIngredients)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Ingredient
	for rows.Next() {
		var i Ingredient
		if err := rows.Scan(&i.ID, &i.Name, &i.Unit, &i.Stock, &i.MinStock, &i.UnitPrice, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateIngredient = `-- name: UpdateIngredient :one
UPDATE ingredients
SET name = $2, unit = $3, min_stock = $4, unit_price = $5
WHERE id = $1
RETURNING id, name, unit, stock, min_stock, unit_price, created_at
`

type UpdateIngredientParams struct {
	ID        uuid.UUID
	Name      string
	Unit      string
	MinStock  pgtype.Numeric
	UnitPrice pgtype.Numeric
}

func (q *Queries) UpdateIngredient(ctx context.Context, arg UpdateIngredientParams) (Ingredient, error) {
	row := q.db.QueryRow(ctx, updateIngredient, arg.ID, arg.Name, arg.Unit, arg.MinStock, arg.UnitPrice)
	var i Ingredient
	err := row.Scan(&i.ID, &i.Name, &i.Unit, &i.Stock, &i.MinStock, &i.UnitPrice, &i.CreatedAt)
	return i, err
}

const updateIngredientStock = `-- name: UpdateIngredientStock :one
UPDATE ingredients
SET stock = $2
WHERE id = $1
RETURNING id, name, unit, stock, min_stock, unit_price, created_at
`

type UpdateIngredientStockParams struct {
	ID    uuid.UUID
	Stock pgtype.Numeric
}

func (q *Queries) UpdateIngredientStock(ctx context.Context, arg UpdateIngredientStockParams) (Ingredient, error) {
	row := q.db.QueryRow(ctx, updateIngredientStock, arg.ID, arg.Stock)
	var i Ingredient
	err := row.Scan(&i.ID, &i.Name, &i.Unit, &i.Stock, &i.MinStock, &i.UnitPrice, &i.CreatedAt)
	return i, err
}

const deductIngredientStock = `-- name: DeductIngredientStock :one
UPDATE ingredients
SET stock = GREATEST(stock - $2, 0)
WHERE id = $1
RETURNING id, name, unit, stock, min_stock, unit_price, created_at
`

type DeductIngredientStockParams struct {
	ID    uuid.UUID
	Delta pgtype.Numeric
}

func (q *Queries) DeductIngredientStock(ctx context.Context, arg DeductIngredientStockParams) (Ingredient, error) {
	row := q.db.QueryRow(ctx, deductIngredientStock, arg.ID, arg.Delta)
	var i Ingredient
	err := row.Scan(&i.ID, &i.Name, &i.Unit, &i.Stock, &i.MinStock, &i.UnitPrice, &i.CreatedAt)
	return i, err
}

const deleteIngredient = `-- name: DeleteIngredient :exec
DELETE FROM ingredients
WHERE id = $1
`

func (q *Queries) DeleteIngredient(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteIngredient, id)
	return err
}
