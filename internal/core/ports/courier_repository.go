package ports

import (
	"context"

	"shoecare/internal/core/domain/model/courier"
	"shoecare/internal/core/domain/model/kernel"
)

// CourierRepository defines the persistence contract for courier aggregates.
type CourierRepository interface {
	// Add persists a new courier.
	Add(ctx context.Context, courier *courier.Courier) error

	// Update persists availability, the current delivery, counters and location.
	Update(ctx context.Context, courier *courier.Courier) error

	// Get retrieves a courier by id. Returns errs.ObjectNotFoundError if absent.
	Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error)

	// GetMany retrieves the couriers with the given ids, in the same order.
	// Returns errs.ObjectNotFoundError for the first missing id.
	GetMany(ctx context.Context, ids []kernel.UUID) ([]*courier.Courier, error)

	// GetAll retrieves every courier ordered by name.
	GetAll(ctx context.Context) ([]*courier.Courier, error)

	// GetAllAvailable retrieves the couriers flagged as available.
	GetAllAvailable(ctx context.Context) ([]*courier.Courier, error)
}
