package commands

import (
	"errors"
	"fmt"

	"shoecare/internal/core/domain/model/actor"
	"shoecare/internal/core/domain/model/kernel"
	"shoecare/internal/pkg/errs"
	"shoecare/internal/pkg/guard"
)

var ErrUpdateCourierCommandIsNotConstructed = errors.New(
	"UpdateCourierCommand must be created via NewUpdateCourierCommand constructor",
)

// UpdateCourierCommand changes a courier's availability and/or last known position.
// Couriers may only update themselves; admins may update anyone.
type UpdateCourierCommand struct {
	courierID kernel.UUID
	available *bool
	location  *kernel.GeoPoint
	actor     actor.Actor

	guard guard.ConstructorGuard
}

func NewUpdateCourierCommand(
	courierID kernel.UUID,
	available *bool,
	location *kernel.GeoPoint,
	by actor.Actor,
) (UpdateCourierCommand, error) {
	if err := courierID.Validate(); err != nil {
		return UpdateCourierCommand{}, errs.NewValueIsRequiredErrorWithCause("courierID", err)
	}
	if available == nil && location == nil {
		return UpdateCourierCommand{}, errs.NewValueIsRequiredError("isAvailable or location")
	}
	if location != nil {
		if err := location.Validate(); err != nil {
			return UpdateCourierCommand{}, err
		}
	}
	if err := by.Require(actor.RoleAdmin, actor.RoleCourier); err != nil {
		return UpdateCourierCommand{}, err
	}
	if by.Is(actor.RoleCourier) && by.ID != courierID.String() {
		return UpdateCourierCommand{}, fmt.Errorf("%w: couriers may only update themselves", errs.ErrForbidden)
	}

	return UpdateCourierCommand{
		courierID: courierID,
		available: available,
		location:  location,
		actor:     by,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c UpdateCourierCommand) Validate() error {
	return c.guard.Validate(ErrUpdateCourierCommandIsNotConstructed)
}

func (c UpdateCourierCommand) CourierID() kernel.UUID     { return c.courierID }
func (c UpdateCourierCommand) Available() *bool           { return c.available }
func (c UpdateCourierCommand) Location() *kernel.GeoPoint { return c.location }
func (c UpdateCourierCommand) Actor() actor.Actor         { return c.actor }
