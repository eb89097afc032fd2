package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createProduct = `-- name: CreateProduct :one
INSERT INTO products (category_id, name, price, active)
VALUES ($1, $2, $3, $4)
RETURNING id, category_id, name, price, active, created_at
`

type CreateProductParams struct {
	CategoryID uuid.UUID
	Name       string
	Price      pgtype.Numeric
	Active     bool
}

func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, createProduct, arg.CategoryID, arg.Name, arg.Price, arg.Active)
	var i Product
	err := row.Scan(&i.ID, &i.CategoryID, &i.Name, &i.Price, &i.Active, &i.CreatedAt)
	return i, err
}

const getProduct = `-- name: GetProduct :one
SELECT id, category_id, name, price, active, created_at
FROM products
WHERE id = $1
`

func (q *Queries) GetProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	row := q.db.QueryRow(ctx, getProduct, id)
	var i Product
	err := row.Scan(&i.ID, &i.CategoryID, &i.Name, &i.Price, &i.Active, &i.CreatedAt)
	return i, err
}

const getProductWithCategory = `-- name: GetProductWithCategory :one
SELECT p.id, p.category_id, p.name, p.price, p.active, c.name AS category_name
FROM products p
JOIN categories c ON c.id = p.category_id
WHERE p.id = $1
`

type GetProductWithCategoryRow struct {
	ID           uuid.UUID
	CategoryID   uuid.UUID
	Name         string
	Price        pgtype.Numeric
	Active       bool
	CategoryName string
}

func (q *Queries) GetProductWithCategory(ctx context.Context, id uuid.UUID) (GetProductWithCategoryRow, error) {
	row := q.db.QueryRow(ctx, getProductWithCategory, id)
	var i GetProductWithCategoryRow
	err := row.Scan(&i.ID, &i.CategoryID, &i.Name, &i.Price, &i.Active, &i.CategoryName)
	return i, err
}

const listProducts = `-- name: ListProducts :many
SELECT id, category_id, name, price, active, created_at
FROM products
ORDER BY name
`

func (q *Queries) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := q.db.Query(ctx, listProducts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Product
	for rows.Next() {
		var i Product
		if err := rows.Scan(&i.ID, &i.CategoryID, &i.Name, &i.Price, &i.Active, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateProduct = `-- name: UpdateProduct :one
UPDATE products
SET category_id = $2, name = $3, price = $4, active = $5
WHERE id = $1
RETURNING id, category_id, name, price, active, created_at
`

type UpdateProductParams struct {
	ID         uuid.UUID
	CategoryID uuid.UUID
	Name       string
	Price      pgtype.Numeric
	Active     bool
}

func (q *Queries) UpdateProduct(ctx context.Context, arg UpdateProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, updateProduct, arg.ID, arg.CategoryID, arg.Name, arg.Price, arg.Active)
	var i Product
	err := row.Scan(&i.ID, &i.CategoryID, &i.Name, &i.Price, &i.Active, &i.CreatedAt)
	return i, err
}

const deleteProduct = `-- name: DeleteProduct :exec
DELETE FROM products
WHERE id = $1
`

func (q *Queries) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteProduct, id)
	return err
}

const createRecipeLine = `-- name: CreateRecipeLine :exec
INSERT INTO product_recipe (product_id, ingredient_id, quantity, position)
VALUES ($1, $2, $3, $4)
`

type CreateRecipeLineParams struct {
	ProductID    uuid.UUID
	IngredientID uuid.UUID
	Quantity     pgtype.Numeric
	Position     int32
}

func (q *Queries) CreateRecipeLine(ctx context.Context, arg CreateRecipeLineParams) error {
	_, err := q.db.Exec(ctx, createRecipeLine, arg.ProductID, arg.IngredientID, arg.Quantity, arg.Position)
	return err
}

const deleteRecipeLines = `-- name: DeleteRecipeLines :exec
DELETE FROM product_recipe
WHERE product_id = $1
`

func (q *Queries) DeleteRecipeLines(ctx context.Context, productID uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteRecipeLines, productID)
	return err
}

const listRecipeLines = `-- name: ListRecipeLines :many
SELECT product_id, ingredient_id, quantity, position
FROM product_recipe
WHERE product_id = $1
ORDER BY position
`

func (q *Queries) ListRecipeLines(ctx context.Context, productID uuid.UUID) ([]RecipeLine, error) {
	rows, err := q.db.Query(ctx, listRecipeLines, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RecipeLine
	for rows.Next() {
		var i RecipeLine
		if err := rows.Scan(&i.ProductID, &i.IngredientID, &i.Quantity, &i.Position); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listRecipeLinesByProducts = `-- name: ListRecipeLinesByProducts :many
SELECT product_id, ingredient_id, quantity, position
FROM product_recipe
WHERE product_id = ANY($1::uuid[])
ORDER BY product_id, position
`

func (q *Queries) ListRecipeLinesByProducts(ctx context.Context, productIDs []uuid.UUID) ([]RecipeLine, error) {
	rows, err := q.db.Query(ctx, listRecipeLinesByProducts, productIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RecipeLine
	for rows.Next() {
		var i RecipeLine
		if err := rows.Scan(&i.ProductID, &i.IngredientID, &i.Quantity, &i.Position); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listProductsWithCategoryByIDs = `-- name: ListProductsWithCategoryByIDs :many
SELECT p.id, p.category_id, p.name, p.price, p.active, c.name AS category_name
FROM products p
JOIN categories c ON c.id = p.category_id
WHERE p.id = ANY($1::uuid[])
`

func (q *Queries) ListProductsWithCategoryByIDs(ctx context.Context, ids []uuid.UUID) ([]GetProductWithCategoryRow, error) {
	rows, err := q.db.Query(ctx, listProductsWithCategoryByIDs, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetProductWithCategoryRow
	for rows.Next() {
		var i GetProductWithCategoryRow
		if err := rows.Scan(&i.ID, &i.CategoryID, &i.Name, &i.Price, &i.Active, &i.CategoryName); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countRecipeLines = `-- name: CountRecipeLines :one
SELECT count(*)
FROM product_recipe
WHERE product_id = $1
`

func (q *Queries) CountRecipeLines(ctx context.Context, productID uuid.UUID) (int64, error) {
	row := q.db.QueryRow(ctx, countRecipeLines, productID)
	var count int64
	err := row.Scan(&count)
	return count, err
}
