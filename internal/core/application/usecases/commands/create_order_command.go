package commands

import (
	"errors"
	"strings"

	"shoecare/internal/core/domain/model/actor"
	"shoecare/internal/core/domain/model/order"
	"shoecare/internal/pkg/errs"
	"shoecare/internal/pkg/guard"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// CreateOrderCommand places a new order for a registered customer or a guest.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(actor, customerInfo, "deep_clean", items, pickup, 0)
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//	created, err := handler.Handle(ctx, cmd)
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	actor       actor.Actor
	customer    order.CustomerInfo
	serviceType string
	items       []order.Item
	pickup      order.PickupLocation
	usePoints   int64

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand validates the request shape. Business rules (points for registered
// customers only, non-negative totals) are enforced by the Order aggregate.
func NewCreateOrderCommand(
	by actor.Actor,
	customer order.CustomerInfo,
	serviceType string,
	items []order.Item,
	pickup order.PickupLocation,
	usePoints int64,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		actor:       by,
		customer:    customer,
		serviceType: strings.TrimSpace(serviceType),
		items:       items,
		pickup:      pickup,
		usePoints:   usePoints,
		guard:       guard.NewConstructorGuard(),
	}

	var joined []error
	if cmd.serviceType == "" {
		joined = append(joined, errs.NewValueIsRequiredError("serviceType"))
	}
	if len(items) == 0 {
		joined = append(joined, errs.NewValueIsRequiredError("items"))
	}
	if usePoints < 0 {
		joined = append(joined, errs.NewValueIsOutOfRangeError("usePoints", usePoints, 0, "balance"))
	}
	if err := errors.Join(joined...); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) Actor() actor.Actor           { return c.actor }
func (c CreateOrderCommand) Customer() order.CustomerInfo { return c.customer }
func (c CreateOrderCommand) ServiceType() string          { return c.serviceType }
func (c CreateOrderCommand) Items() []order.Item          { return c.items }
func (c CreateOrderCommand) Pickup() order.PickupLocation { return c.pickup }
func (c CreateOrderCommand) UsePoints() int64             { return c.usePoints }
