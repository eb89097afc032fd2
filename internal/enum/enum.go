package enum

// ── State machines (CHECK constrained in DB) ──

const (
	OrderStatusPendingValidation = "PENDING_VALIDATION"
	OrderStatusInProgress        = "IN_PROGRESS"
	OrderStatusFinalized         = "FINALIZED"
)

const (
	KitchenStatusNotSent   = "NOT_SENT"
	KitchenStatusReceived  = "RECEIVED"
	KitchenStatusReady     = "READY"
	KitchenStatusServed    = "SERVED"
	KitchenStatusDelivered = "DELIVERED"
)

const (
	LineStatusWaiting       = "WAITING"
	LineStatusSentToKitchen = "SENT_TO_KITCHEN"
)

const (
	PaymentStatusUnpaid = "UNPAID"
	PaymentStatusPaid   = "PAID"
)

// ── Derived table statuses (computed on read, never stored) ──

const (
	TableStatusFree         = "FREE"
	TableStatusInKitchen    = "IN_KITCHEN"
	TableStatusReadyToServe = "READY_TO_SERVE"
	TableStatusReadyToPay   = "READY_TO_PAY"
)

// ── Configurable labels ──

const (
	OrderTypeDineIn   = "DINE_IN"
	OrderTypeTakeaway = "TAKEAWAY"
	OrderTypeOnline   = "ONLINE"
)

const (
	PaymentMethodCash     = "CASH"
	PaymentMethodCard     = "CARD"
	PaymentMethodTransfer = "TRANSFER"
)

const (
	UserRoleAdmin   = "ADMIN"
	UserRoleManager = "MANAGER"
	UserRoleWaiter  = "WAITER"
	UserRoleKitchen = "KITCHEN"
)

// Ingredient units. Stock is counted in the storage unit; recipes consume
// the matching usage unit (KG→G, L→ML, PIECE→PIECE).
const (
	UnitKilogram   = "KG"
	UnitLiter      = "L"
	UnitPiece      = "PIECE"
	UnitGram       = "G"
	UnitMilliliter = "ML"
)

const (
	PromotionKindFixedAmount  = "FIXED_AMOUNT"
	PromotionKindPercentage   = "PERCENTAGE"
	PromotionKindBuyXGetY     = "BUY_X_GET_Y"
	PromotionKindFreeShipping = "FREE_SHIPPING"
)
