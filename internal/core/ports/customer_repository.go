package ports

import (
	"context"

	"shoecare/internal/core/domain/model/customer"
	"shoecare/internal/core/domain/model/kernel"
)

// CustomerRepository exposes the registered customers' loyalty balance and counters.
// Balance changes are atomic increments so concurrent orders never lose points.
type CustomerRepository interface {
	// Add persists a customer.
	Add(ctx context.Context, c *customer.Customer) error

	// Register creates the record of a customer placing their first order. An existing
	// record is left untouched.
	Register(ctx context.Context, c *customer.Customer) error

	// Get retrieves a customer by id. Returns errs.ObjectNotFoundError if absent.
	Get(ctx context.Context, id kernel.UUID) (*customer.Customer, error)

	// AdjustLoyaltyPoints adds delta to the balance. A negative delta only applies when the
	// balance covers it, otherwise customer.ErrInsufficientPoints is returned.
	AdjustLoyaltyPoints(ctx context.Context, id kernel.UUID, delta int64) error

	// IncrementCompletedOrders adds one to the completed order counter.
	IncrementCompletedOrders(ctx context.Context, id kernel.UUID) error
}
