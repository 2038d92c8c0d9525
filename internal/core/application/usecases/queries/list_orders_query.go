package queries

import (
	"errors"

	"shoecare/internal/core/domain/model/actor"
	"shoecare/internal/core/domain/model/kernel"
	"shoecare/internal/core/domain/model/order"
	"shoecare/internal/pkg/guard"
)

var (
	ErrListOrdersQueryIsNotConstructed = errors.New(
		"ListOrdersQuery must be created via NewListOrdersQuery or NewListCustomerOrdersQuery constructor",
	)
)

// ListOrdersQuery lists orders newest first. Staff filter by status; customers see their
// own orders only.
type ListOrdersQuery struct {
	statuses   []order.Status
	customerID *kernel.UUID
	by         actor.Actor
	guard      guard.ConstructorGuard
}

// NewListOrdersQuery lists orders in any of statuses. An empty set lists every order.
func NewListOrdersQuery(statuses []order.Status, by actor.Actor) (ListOrdersQuery, error) {
	for _, s := range statuses {
		if _, err := order.ParseStatus(s.String()); err != nil {
			return ListOrdersQuery{}, err
		}
	}
	return ListOrdersQuery{
		statuses: append([]order.Status(nil), statuses...),
		by:       by,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// NewListCustomerOrdersQuery lists the orders placed by customerID.
func NewListCustomerOrdersQuery(customerID kernel.UUID, by actor.Actor) (ListOrdersQuery, error) {
	if err := customerID.Validate(); err != nil {
		return ListOrdersQuery{}, err
	}
	return ListOrdersQuery{customerID: &customerID, by: by, guard: guard.NewConstructorGuard()}, nil
}

func (q ListOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListOrdersQueryIsNotConstructed)
}

func (q ListOrdersQuery) Statuses() []order.Status {
	return append([]order.Status(nil), q.statuses...)
}

func (q ListOrdersQuery) CustomerID() *kernel.UUID {
	return q.customerID
}

func (q ListOrdersQuery) By() actor.Actor {
	return q.by
}
