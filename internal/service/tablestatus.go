package service

import "github.com/ouiouimanus/api/internal/enum"

// DeriveTableStatus computes a table's displayed status from its linked
// order's kitchen status. The result is never persisted: table status is a
// projection of order state, recomputed on every read, so the two can never
// drift apart.
//
// A table with an order whose kitchen status is still NOT_SENT is shown as
// free: the order exists but nothing has been fired to the kitchen yet.
func DeriveTableStatus(hasOrder bool, kitchenStatus string) string {
	if !hasOrder {
		return enum.TableStatusFree
	}
	switch kitchenStatus {
	case enum.KitchenStatusNotSent:
		return enum.TableStatusFree
	case enum.KitchenStatusReady:
		return enum.TableStatusReadyToServe
	case enum.KitchenStatusServed, enum.KitchenStatusDelivered:
		return enum.TableStatusReadyToPay
	default:
		return enum.TableStatusInKitchen
	}
}
