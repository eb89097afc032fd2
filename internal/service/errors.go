package service

import "errors"

// Validation failures: rejected before any write, user-actionable.
var (
	ErrInvalidCovers        = errors.New("covers must be a positive integer")
	ErrInvalidOrderType     = errors.New("invalid order_type")
	ErrInvalidPaymentMethod = errors.New("invalid payment_method")
	ErrInvalidQuantity      = errors.New("quantity must be > 0")
	ErrInvalidUnitPrice     = errors.New("invalid unit_price")
	ErrInvalidProductID     = errors.New("invalid product_id")
	ErrInvalidIngredientID  = errors.New("invalid ingredient_id")
	ErrEmptyItems           = errors.New("items are required")
	ErrEmptyOrder           = errors.New("order has no lines")
	ErrNoLinesSelected      = errors.New("no waiting lines selected")
	ErrMissingLineName      = errors.New("ad hoc lines require a name and unit price")
	ErrProductNotFound      = errors.New("product not found")
	ErrProductNotSellable   = errors.New("product has no recipe and cannot be sold")
	ErrPromoNotFound        = errors.New("promo code not found or inactive")
)

// Consistency failures: the requested transition conflicts with current
// state; rejected after reading, before mutating.
var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrTableNotFound     = errors.New("table not found")
	ErrLineNotFound      = errors.New("order line not found")
	ErrTableOccupied     = errors.New("table already has an open order")
	ErrTableNotFree      = errors.New("table has a linked order")
	ErrOrderFinalized    = errors.New("order is already finalized")
	ErrLineAlreadySent   = errors.New("line was already sent to kitchen")
	ErrOrderAlreadySent  = errors.New("order was already sent to kitchen")
	ErrInvalidTransition = errors.New("transition not allowed from current state")
)

var validationErrors = []error{
	ErrInvalidCovers, ErrInvalidOrderType, ErrInvalidPaymentMethod,
	ErrInvalidQuantity, ErrInvalidUnitPrice, ErrInvalidProductID,
	ErrInvalidIngredientID, ErrEmptyItems, ErrEmptyOrder, ErrNoLinesSelected,
	ErrMissingLineName, ErrProductNotFound, ErrProductNotSellable,
	ErrPromoNotFound, ErrUnknownPromotionKind,
}

var consistencyErrors = []error{
	ErrOrderNotFound, ErrTableNotFound, ErrLineNotFound,
	ErrTableOccupied, ErrTableNotFree, ErrOrderFinalized,
	ErrLineAlreadySent, ErrOrderAlreadySent, ErrInvalidTransition,
}

// IsValidationError reports whether err is a pre-write input rejection.
func IsValidationError(err error) bool {
	for _, e := range validationErrors {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// IsConsistencyError reports whether err is a state-conflict rejection.
// Anything that is neither validation nor consistency is a dependency
// failure and propagates unchanged for the caller to retry.
func IsConsistencyError(err error) bool {
	for _, e := range consistencyErrors {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
