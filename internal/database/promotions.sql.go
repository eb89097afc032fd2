package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createPromotion = `-- name: CreatePromotion :one
INSERT INTO promotions (code, name, kind, config, active)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, code, name, kind, config, active, created_at
`

type CreatePromotionParams struct {
	Code   string
	Name   string
	Kind   string
	Config []byte
	Active bool
}

func (q *Queries) CreatePromotion(ctx context.Context, arg CreatePromotionParams) (Promotion, error) {
	row := q.db.QueryRow(ctx, createPromotion, arg.Code, arg.Name, arg.Kind, arg.Config, arg.Active)
	var i Promotion
	err := row.Scan(&i.ID, &i.Code, &i.Name, &i.Kind, &i.Config, &i.Active, &i.CreatedAt)
	return i, err
}

const getPromotionByCode = `-- name: GetPromotionByCode :one
SELECT id, code, name, kind, config, active, created_at
FROM promotions
WHERE code = $1 AND active
`

func (q *Queries) GetPromotionByCode(ctx context.Context, code string) (Promotion, error) {
	row := q.db.QueryRow(ctx, getPromotionByCode, code)
	var i Promotion
	err := row.Scan(&i.ID, &i.Code, &i.Name, &i.Kind, &i.Config, &i.Active, &i.CreatedAt)
	return i, err
}

const listPromotions = `-- name: ListPromotions :many
SELECT id, code, name, kind, config, active, created_at
FROM promotions
ORDER BY code
`

func (q *Queries) ListPromotions(ctx context.Context) ([]Promotion, error) {
	rows, err := q.db.Query(ctx, listPromotions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Promotion
	for rows.Next() {
		var i Promotion
		if err := rows.Scan(&i.ID, &i.Code, &i.Name, &i.Kind, &i.Config, &i.Active, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const setPromotionActive = `-- name: SetPromotionActive :exec
UPDATE promotions
SET active = $2
WHERE id = $1
`

type SetPromotionActiveParams struct {
	ID     uuid.UUID
	Active bool
}

func (q *Queries) SetPromotionActive(ctx context.Context, arg SetPromotionActiveParams) error {
	_, err := q.db.Exec(ctx, setPromotionActive, arg.ID, arg.Active)
	return err
}

const createAppliedPromotion = `-- name: CreateAppliedPromotion :one
INSERT INTO order_applied_promotions (order_id, promotion_id, name, kind, discount, config)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, order_id, promotion_id, name, kind, discount, config
`

type CreateAppliedPromotionParams struct {
	OrderID     uuid.UUID
	PromotionID uuid.UUID
	Name        string
	Kind        string
	Discount    pgtype.Numeric
	Config      []byte
}

func (q *Queries) CreateAppliedPromotion(ctx context.Context, arg CreateAppliedPromotionParams) (OrderAppliedPromotion, error) {
	row := q.db.QueryRow(ctx, createAppliedPromotion, arg.OrderID, arg.PromotionID, arg.Name, arg.Kind, arg.Discount, arg.Config)
	var i OrderAppliedPromotion
	err := row.Scan(&i.ID, &i.OrderID, &i.PromotionID, &i.Name, &i.Kind, &i.Discount, &i.Config)
	return i, err
}

const listAppliedPromotionsByOrder = `-- name: ListAppliedPromotionsByOrder :many
SELECT id, order_id, promotion_id, name, kind, discount, config
FROM order_applied_promotions
WHERE order_id = $1
`

func (q *Queries) ListAppliedPromotionsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderAppliedPromotion, error) {
	rows, err := q.db.Query(ctx, listAppliedPromotionsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderAppliedPromotion
	for rows.Next() {
		var i OrderAppliedPromotion
		if err := rows.Scan(&i.ID, &i.OrderID, &i.PromotionID, &i.Name, &i.Kind, &i.Discount, &i.Config); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateAppliedPromotionDiscount = `-- name: UpdateAppliedPromotionDiscount :exec
UPDATE order_applied_promotions
SET discount = $2
WHERE id = $1
`

type UpdateAppliedPromotionDiscountParams struct {
	ID       uuid.UUID
	Discount pgtype.Numeric
}

func (q *Queries) UpdateAppliedPromotionDiscount(ctx context.Context, arg UpdateAppliedPromotionDiscountParams) error {
	_, err := q.db.Exec(ctx, updateAppliedPromotionDiscount, arg.ID, arg.Discount)
	return err
}

const deleteAppliedPromotionsByOrder = `-- name: DeleteAppliedPromotionsByOrder :exec
DELETE FROM order_applied_promotions
WHERE order_id = $1
`

func (q *Queries) DeleteAppliedPromotionsByOrder(ctx context.Context, orderID uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteAppliedPromotionsByOrder, orderID)
	return err
}
