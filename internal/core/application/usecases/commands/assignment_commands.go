package commands

import (
	"errors"
	"strings"

	"shoecare/internal/core/domain/model/actor"
	"shoecare/internal/core/domain/model/kernel"
	"shoecare/internal/pkg/errs"
	"shoecare/internal/pkg/guard"
)

var (
	ErrAssignCourierCommandIsNotConstructed = errors.New(
		"AssignCourierCommand must be created via NewAssignCourierCommand constructor",
	)
	ErrOfferOrderCommandIsNotConstructed = errors.New(
		"OfferOrderCommand must be created via NewOfferOrderCommand constructor",
	)
	ErrAcceptOfferCommandIsNotConstructed = errors.New(
		"AcceptOfferCommand must be created via NewAcceptOfferCommand constructor",
	)
	ErrDeclineOfferCommandIsNotConstructed = errors.New(
		"DeclineOfferCommand must be created via NewDeclineOfferCommand constructor",
	)
)

// AssignCourierCommand assigns one courier to an order (single-courier path).
//
// Example:
//
//	// admin picks a courier
//	cmd, _ := NewAssignCourierCommand(orderID, &courierID, "", admin)
//	// admin lets dispatch pick the nearest available courier
//	cmd, _ = NewAssignCourierCommand(orderID, nil, "", admin)
//	// admin queues the job for a busy courier
//	cmd, _ = NewForceAssignCourierCommand(orderID, courierID, "backlog", admin)
type AssignCourierCommand struct {
	orderID   kernel.UUID
	courierID *kernel.UUID
	notes     string
	force     bool
	actor     actor.Actor

	guard guard.ConstructorGuard
}

// NewAssignCourierCommand creates a single-courier assignment. A nil courierID selects the
// nearest available courier.
func NewAssignCourierCommand(orderID kernel.UUID, courierID *kernel.UUID, notes string, by actor.Actor) (AssignCourierCommand, error) {
	var courierErr error
	if courierID != nil {
		courierErr = courierID.Validate()
	}
	if err := errors.Join(validateOrderID(orderID), courierErr); err != nil {
		return AssignCourierCommand{}, err
	}
	return AssignCourierCommand{
		orderID:   orderID,
		courierID: courierID,
		notes:     strings.TrimSpace(notes),
		actor:     by,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// NewForceAssignCourierCommand creates an assignment that skips the availability check.
func NewForceAssignCourierCommand(orderID kernel.UUID, courierID kernel.UUID, notes string, by actor.Actor) (AssignCourierCommand, error) {
	var courierErr error
	if err := courierID.Validate(); err != nil {
		courierErr = errs.NewValueIsRequiredErrorWithCause("courierID", err)
	}
	if err := errors.Join(validateOrderID(orderID), courierErr); err != nil {
		return AssignCourierCommand{}, err
	}
	return AssignCourierCommand{
		orderID:   orderID,
		courierID: &courierID,
		notes:     strings.TrimSpace(notes),
		force:     true,
		actor:     by,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c AssignCourierCommand) Validate() error {
	return c.guard.Validate(ErrAssignCourierCommandIsNotConstructed)
}

func (c AssignCourierCommand) OrderID() kernel.UUID    { return c.orderID }
func (c AssignCourierCommand) CourierID() *kernel.UUID { return c.courierID }
func (c AssignCourierCommand) Notes() string           { return c.notes }
func (c AssignCourierCommand) Force() bool             { return c.force }
func (c AssignCourierCommand) Actor() actor.Actor      { return c.actor }

// OfferOrderCommand offers an order to several couriers at once (fan-out).
type OfferOrderCommand struct {
	orderID    kernel.UUID
	courierIDs []kernel.UUID
	notes      string
	actor      actor.Actor

	guard guard.ConstructorGuard
}

func NewOfferOrderCommand(orderID kernel.UUID, courierIDs []kernel.UUID, notes string, by actor.Actor) (OfferOrderCommand, error) {
	joined := []error{validateOrderID(orderID)}
	if len(courierIDs) == 0 {
		joined = append(joined, errs.NewValueIsRequiredError("courierIds"))
	}
	for _, id := range courierIDs {
		joined = append(joined, id.Validate())
	}
	if err := errors.Join(joined...); err != nil {
		return OfferOrderCommand{}, err
	}
	ids := make([]kernel.UUID, len(courierIDs))
	copy(ids, courierIDs)
	return OfferOrderCommand{
		orderID:    orderID,
		courierIDs: ids,
		notes:      strings.TrimSpace(notes),
		actor:      by,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c OfferOrderCommand) Validate() error {
	return c.guard.Validate(ErrOfferOrderCommandIsNotConstructed)
}

func (c OfferOrderCommand) OrderID() kernel.UUID      { return c.orderID }
func (c OfferOrderCommand) CourierIDs() []kernel.UUID { return c.courierIDs }
func (c OfferOrderCommand) Notes() string             { return c.notes }
func (c OfferOrderCommand) Actor() actor.Actor        { return c.actor }

// AcceptOfferCommand is sent by a courier accepting their pending offer.
type AcceptOfferCommand struct {
	orderID   kernel.UUID
	courierID kernel.UUID
	actor     actor.Actor

	guard guard.ConstructorGuard
}

// NewAcceptOfferCommand requires a courier actor whose id is the courier id.
func NewAcceptOfferCommand(orderID kernel.UUID, by actor.Actor) (AcceptOfferCommand, error) {
	courierID, err := courierIDOf(by)
	if err = errors.Join(validateOrderID(orderID), err); err != nil {
		return AcceptOfferCommand{}, err
	}
	return AcceptOfferCommand{orderID: orderID, courierID: courierID, actor: by, guard: guard.NewConstructorGuard()}, nil
}

func (c AcceptOfferCommand) Validate() error {
	return c.guard.Validate(ErrAcceptOfferCommandIsNotConstructed)
}

func (c AcceptOfferCommand) OrderID() kernel.UUID   { return c.orderID }
func (c AcceptOfferCommand) CourierID() kernel.UUID { return c.courierID }
func (c AcceptOfferCommand) Actor() actor.Actor     { return c.actor }

// DeclineOfferCommand is sent by a courier rejecting their pending offer.
type DeclineOfferCommand struct {
	orderID kernel.UUID
	actor   actor.Actor

	guard guard.ConstructorGuard
}

func NewDeclineOfferCommand(orderID kernel.UUID, by actor.Actor) (DeclineOfferCommand, error) {
	_, err := courierIDOf(by)
	if err = errors.Join(validateOrderID(orderID), err); err != nil {
		return DeclineOfferCommand{}, err
	}
	return DeclineOfferCommand{orderID: orderID, actor: by, guard: guard.NewConstructorGuard()}, nil
}

func (c DeclineOfferCommand) Validate() error {
	return c.guard.Validate(ErrDeclineOfferCommandIsNotConstructed)
}

func (c DeclineOfferCommand) OrderID() kernel.UUID { return c.orderID }
func (c DeclineOfferCommand) Actor() actor.Actor   { return c.actor }

// courierIDOf returns the courier id carried by a courier actor.
func courierIDOf(by actor.Actor) (kernel.UUID, error) {
	if err := by.Require(actor.RoleCourier); err != nil {
		return kernel.UUID{}, err
	}
	return kernel.UUIDFromString(by.ID)
}
