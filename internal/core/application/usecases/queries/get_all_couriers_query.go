package queries

import (
	"errors"

	"shoecare/internal/core/domain/model/actor"
	"shoecare/internal/pkg/guard"
)

var (
	ErrGetAllCouriersQueryIsNotConstructed = errors.New(
		"GetAllCouriersQuery must be created via NewGetAllCouriersQuery constructor",
	)
)

// GetAllCouriersQuery lists every courier with availability and last known location.
// Only admins may run it.
//
// Example:
//
//	query := NewGetAllCouriersQuery(false, admin)
//	couriers, err := handler.Handle(ctx, query)
type GetAllCouriersQuery struct {
	availableOnly bool
	by            actor.Actor
	guard         guard.ConstructorGuard
}

// NewGetAllCouriersQuery creates a query over all couriers, or only the available ones.
func NewGetAllCouriersQuery(availableOnly bool, by actor.Actor) GetAllCouriersQuery {
	return GetAllCouriersQuery{availableOnly: availableOnly, by: by, guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
func (q GetAllCouriersQuery) Validate() error {
	return q.guard.Validate(ErrGetAllCouriersQueryIsNotConstructed)
}

func (q GetAllCouriersQuery) AvailableOnly() bool {
	return q.availableOnly
}

func (q GetAllCouriersQuery) By() actor.Actor {
	return q.by
}
