package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

type Category struct {
	ID   uuid.UUID
	Name string
}

type Product struct {
	ID         uuid.UUID
	CategoryID uuid.UUID
	Name       string
	Price      pgtype.Numeric
	Active     bool
	CreatedAt  time.Time
}

type Ingredient struct {
	ID        uuid.UUID
	Name      string
	Unit      string
	Stock     pgtype.Numeric
	MinStock  pgtype.Numeric
	UnitPrice pgtype.Numeric
	CreatedAt time.Time
}

// RecipeLine is one bill-of-materials entry: the quantity of an ingredient,
// in usage units, consumed by one unit of the product.
type RecipeLine struct {
	ProductID    uuid.UUID
	IngredientID uuid.UUID
	Quantity     pgtype.Numeric
	Position     int32
}

type RestaurantTable struct {
	ID        uuid.UUID
	Name      string
	Capacity  int32
	Covers    pgtype.Int4
	OrderID   pgtype.UUID
	CreatedAt time.Time
}

type Order struct {
	ID              uuid.UUID
	OrderType       string
	TableID         pgtype.UUID
	Covers          pgtype.Int4
	Status          string
	KitchenStatus   string
	PaymentStatus   string
	PaymentMethod   pgtype.Text
	Subtotal        pgtype.Numeric
	TotalDiscount   pgtype.Numeric
	ShippingCost    pgtype.Numeric
	Total           pgtype.Numeric
	Profit          pgtype.Numeric
	PromoCode       pgtype.Text
	ClientName      pgtype.Text
	ClientPhone     pgtype.Text
	ClientAddress   pgtype.Text
	CreatedAt       time.Time
	SentToKitchenAt pgtype.Timestamptz
	ReadyAt         pgtype.Timestamptz
	ServedAt        pgtype.Timestamptz
	FinalizedAt     pgtype.Timestamptz
}

type OrderLine struct {
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
}

type Promotion struct {
	ID        uuid.UUID
	Code      string
	Name      string
	Kind      string
	Config    []byte
	Active    bool
	CreatedAt time.Time
}

type OrderAppliedPromotion struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	PromotionID uuid.UUID
	Name        string
	Kind        string
	Discount    pgtype.Numeric
	Config      []byte
}

type SalesLedgerRow struct {
	ID            uuid.UUID
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
