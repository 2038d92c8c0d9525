// Package customer holds the registered customer as seen by the order workflow: the
// loyalty point balance and the completed order counter. Balance changes are applied by
// the store as atomic increments, never by read-modify-write of this struct.
package customer

import (
	"errors"
	"strings"

	"shoecare/internal/core/domain/model/kernel"
	"shoecare/internal/pkg/errs"
)

// ErrInsufficientPoints is returned when a deduction would make the balance negative.
var ErrInsufficientPoints = errs.NewValueIsInvalidError("loyalty points exceed the customer's balance")

type Customer struct {
	id              kernel.UUID
	name            string
	phone           string
	loyaltyPoints   int64
	completedOrders int
}

// NewCustomer creates a customer with an empty balance.
func NewCustomer(id kernel.UUID, name, phone string) (*Customer, error) {
	return Restore(id, name, phone, 0, 0)
}

// Restore builds a Customer from stored values.
func Restore(id kernel.UUID, name, phone string, loyaltyPoints int64, completedOrders int) (*Customer, error) {
	var joined []error
	if err := id.Validate(); err != nil {
		joined = append(joined, err)
	}
	if strings.TrimSpace(name) == "" {
		joined = append(joined, errs.NewValueIsRequiredError("name"))
	}
	if loyaltyPoints < 0 {
		joined = append(joined, errs.NewValueIsOutOfRangeError("loyaltyPoints", loyaltyPoints, 0, "max"))
	}
	if err := errors.Join(joined...); err != nil {
		return nil, err
	}
	return &Customer{
		id:              id,
		name:            strings.TrimSpace(name),
		phone:           strings.TrimSpace(phone),
		loyaltyPoints:   loyaltyPoints,
		completedOrders: completedOrders,
	}, nil
}

func (c *Customer) ID() kernel.UUID      { return c.id }
func (c *Customer) Name() string         { return c.name }
func (c *Customer) Phone() string        { return c.phone }
func (c *Customer) LoyaltyPoints() int64 { return c.loyaltyPoints }
func (c *Customer) CompletedOrders() int { return c.completedOrders }

// CanSpend reports whether points can be deducted from the balance.
func (c *Customer) CanSpend(points int64) bool {
	return points >= 0 && points <= c.loyaltyPoints
}
