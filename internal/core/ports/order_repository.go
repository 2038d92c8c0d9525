// Package ports defines the contracts between the application core and infrastructure:
// repositories, the unit of work, the event publisher and the image store.
package ports

import (
	"context"

	"shoecare/internal/core/domain/model/kernel"
	"shoecare/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
//
// Writes never replace the whole order: Update applies the aggregate's Changes, appending
// ledger rows and predicating the order row on the status it had when loaded.
type OrderRepository interface {
	// Add persists a new order aggregate. The order number must be unique.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists the changes of a loaded order.
	// Returns errs.ErrConcurrentUpdate when the stored status no longer matches the status
	// the order was loaded with, errs.ErrAlreadyAssigned when another offer was accepted
	// first and errs.ErrDuplicateOffer when a pending offer already exists for a courier.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order by id. Returns errs.ObjectNotFoundError if absent.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetByNumber retrieves an order by its human-readable number.
	GetByNumber(ctx context.Context, number string) (*order.Order, error)

	// GetActiveByCourier returns the order binding the courier in a busy status, or nil.
	GetActiveByCourier(ctx context.Context, courierID kernel.UUID) (*order.Order, error)

	// ListByCustomer returns the orders of a registered customer, newest first.
	ListByCustomer(ctx context.Context, customerID kernel.UUID) ([]*order.Order, error)

	// ListByStatuses returns the orders in any of the statuses, newest first.
	// An empty list returns every order.
	ListByStatuses(ctx context.Context, statuses []order.Status) ([]*order.Order, error)

	// ListOfferedTo returns the orders holding a pending offer for the courier.
	ListOfferedTo(ctx context.Context, courierID kernel.UUID) ([]*order.Order, error)
}
