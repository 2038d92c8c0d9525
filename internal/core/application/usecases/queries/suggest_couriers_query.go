package queries

import (
	"errors"

	"shoecare/internal/core/domain/model/actor"
	"shoecare/internal/core/domain/model/kernel"
	"shoecare/internal/pkg/guard"
)

var (
	ErrSuggestCouriersQueryIsNotConstructed = errors.New(
		"SuggestCouriersQuery must be created via NewSuggestCouriersQuery constructor",
	)
)

// SuggestCouriersQuery ranks available couriers by distance to an order's pickup point,
// helping an admin choose whom to assign.
type SuggestCouriersQuery struct {
	orderID kernel.UUID
	limit   int
	by      actor.Actor
	guard   guard.ConstructorGuard
}

// NewSuggestCouriersQuery builds the query. A non-positive limit returns every candidate.
func NewSuggestCouriersQuery(orderID kernel.UUID, limit int, by actor.Actor) (SuggestCouriersQuery, error) {
	if err := orderID.Validate(); err != nil {
		return SuggestCouriersQuery{}, err
	}
	return SuggestCouriersQuery{orderID: orderID, limit: limit, by: by, guard: guard.NewConstructorGuard()}, nil
}

func (q SuggestCouriersQuery) Validate() error {
	return q.guard.Validate(ErrSuggestCouriersQueryIsNotConstructed)
}

func (q SuggestCouriersQuery) OrderID() kernel.UUID {
	return q.orderID
}

func (q SuggestCouriersQuery) Limit() int {
	return q.limit
}

func (q SuggestCouriersQuery) By() actor.Actor {
	return q.by
}

// CourierSuggestion is a candidate courier and its distance to the pickup point.
type CourierSuggestion struct {
	Courier    CourierView
	DistanceKm float64
}
