package commands

import (
	"errors"
	"strings"

	"shoecare/internal/core/domain/model/actor"
	"shoecare/internal/core/domain/model/kernel"
	"shoecare/internal/core/domain/model/order"
	"shoecare/internal/pkg/errs"
	"shoecare/internal/pkg/guard"
)

var (
	ErrEditOrderItemsCommandIsNotConstructed = errors.New(
		"EditOrderItemsCommand must be created via NewEditOrderItemsCommand constructor",
	)
	ErrAdvanceStatusCommandIsNotConstructed = errors.New(
		"AdvanceStatusCommand must be created via NewAdvanceStatusCommand constructor",
	)
)

// EditOrderItemsCommand replaces the items of an order after creation.
type EditOrderItemsCommand struct {
	orderID kernel.UUID
	items   []order.Item
	reason  string
	actor   actor.Actor

	guard guard.ConstructorGuard
}

func NewEditOrderItemsCommand(orderID kernel.UUID, items []order.Item, reason string, by actor.Actor) (EditOrderItemsCommand, error) {
	reason = strings.TrimSpace(reason)
	var joined []error
	joined = append(joined, validateOrderID(orderID))
	if len(items) == 0 {
		joined = append(joined, errs.NewValueIsRequiredError("items"))
	}
	if reason == "" {
		joined = append(joined, errs.NewValueIsRequiredError("reason"))
	}
	if err := errors.Join(joined...); err != nil {
		return EditOrderItemsCommand{}, err
	}
	return EditOrderItemsCommand{
		orderID: orderID,
		items:   items,
		reason:  reason,
		actor:   by,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c EditOrderItemsCommand) Validate() error {
	return c.guard.Validate(ErrEditOrderItemsCommandIsNotConstructed)
}

func (c EditOrderItemsCommand) OrderID() kernel.UUID { return c.orderID }
func (c EditOrderItemsCommand) Items() []order.Item  { return c.items }
func (c EditOrderItemsCommand) Reason() string       { return c.reason }
func (c EditOrderItemsCommand) Actor() actor.Actor   { return c.actor }

// AdvanceStatusCommand is the generic status update used by workshop staff, couriers and
// admins.
type AdvanceStatusCommand struct {
	orderID  kernel.UUID
	status   order.Status
	progress order.Progress
	actor    actor.Actor

	guard guard.ConstructorGuard
}

// NewAdvanceStatusCommand parses the target status. Which roles may take which edge is
// decided by the Order aggregate.
func NewAdvanceStatusCommand(orderID kernel.UUID, status string, progress order.Progress, by actor.Actor) (AdvanceStatusCommand, error) {
	parsed, statusErr := order.ParseStatus(strings.TrimSpace(status))
	if err := errors.Join(validateOrderID(orderID), statusErr); err != nil {
		return AdvanceStatusCommand{}, err
	}
	return AdvanceStatusCommand{
		orderID:  orderID,
		status:   parsed,
		progress: progress,
		actor:    by,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c AdvanceStatusCommand) Validate() error {
	return c.guard.Validate(ErrAdvanceStatusCommandIsNotConstructed)
}

func (c AdvanceStatusCommand) OrderID() kernel.UUID     { return c.orderID }
func (c AdvanceStatusCommand) Status() order.Status     { return c.status }
func (c AdvanceStatusCommand) Progress() order.Progress { return c.progress }
func (c AdvanceStatusCommand) Actor() actor.Actor       { return c.actor }
