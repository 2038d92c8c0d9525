package queries

import (
	"errors"

	"shoecare/internal/core/domain/model/actor"
	"shoecare/internal/core/domain/model/kernel"
	"shoecare/internal/pkg/guard"
)

var (
	ErrCourierQueueQueryIsNotConstructed = errors.New(
		"CourierQueueQuery must be created via NewCourierQueueQuery constructor",
	)
)

// CourierQueueQuery reads a courier's work: the offers still waiting for an answer and the
// order the courier is currently bound to.
type CourierQueueQuery struct {
	courierID kernel.UUID
	by        actor.Actor
	guard     guard.ConstructorGuard
}

func NewCourierQueueQuery(courierID kernel.UUID, by actor.Actor) (CourierQueueQuery, error) {
	if err := courierID.Validate(); err != nil {
		return CourierQueueQuery{}, err
	}
	return CourierQueueQuery{courierID: courierID, by: by, guard: guard.NewConstructorGuard()}, nil
}

func (q CourierQueueQuery) Validate() error {
	return q.guard.Validate(ErrCourierQueueQueryIsNotConstructed)
}

func (q CourierQueueQuery) CourierID() kernel.UUID {
	return q.courierID
}

func (q CourierQueueQuery) By() actor.Actor {
	return q.by
}

// PendingOffer is one open offer on the courier's queue.
type PendingOffer struct {
	OfferID kernel.UUID
	Order   OrderSummary
	Leg     string
	Notes   string
}

// CourierQueueResponse is the courier's work list.
type CourierQueueResponse struct {
	Pending []PendingOffer
	Active  *OrderView
}
