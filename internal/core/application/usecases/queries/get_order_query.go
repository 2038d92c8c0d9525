package queries

import (
	"errors"

	"shoecare/internal/core/domain/model/actor"
	"shoecare/internal/core/domain/model/kernel"
	"shoecare/internal/pkg/guard"
)

var ErrGetOrderQueryIsNotConstructed = errors.New("GetOrderQuery must be created via NewGetOrderQuery constructor")

// GetOrderQuery reads one order by id for an authenticated actor.
type GetOrderQuery struct {
	orderID kernel.UUID
	by      actor.Actor
	guard   guard.ConstructorGuard
}

// NewGetOrderQuery reads an order by id on behalf of by.
func NewGetOrderQuery(orderID kernel.UUID, by actor.Actor) (GetOrderQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderQuery{}, err
	}
	return GetOrderQuery{orderID: orderID, by: by, guard: guard.NewConstructorGuard()}, nil
}

func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

func (q GetOrderQuery) OrderID() kernel.UUID {
	return q.orderID
}

func (q GetOrderQuery) By() actor.Actor {
	return q.by
}
