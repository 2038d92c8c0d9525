package commands

import (
	"context"

	"shoecare/internal/core/domain/model/order"
)

// EditOrderItemsCommandHandler applies item edits and records them in the edit history.
type EditOrderItemsCommandHandler struct {
	uowFactory UoWFactory
}

func NewEditOrderItemsCommandHandler(uowFactory UoWFactory) EditOrderItemsCommandHandler {
	return EditOrderItemsCommandHandler{uowFactory: uowFactory}
}

func (h EditOrderItemsCommandHandler) Handle(ctx context.Context, cmd EditOrderItemsCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	_, err := updateOrder(ctx, h.uowFactory, cmd.OrderID(), func(_ UoW, o *order.Order) (order.Outcome, error) {
		return noOutcome(o.EditItems(cmd.Items(), cmd.Reason(), cmd.Actor()))
	})
	return err
}

// AdvanceStatusCommandHandler applies a generic transition. Completion releases the
// delivery courier and counts the order for the customer.
type AdvanceStatusCommandHandler struct {
	uowFactory UoWFactory
}

func NewAdvanceStatusCommandHandler(uowFactory UoWFactory) AdvanceStatusCommandHandler {
	return AdvanceStatusCommandHandler{uowFactory: uowFactory}
}

func (h AdvanceStatusCommandHandler) Handle(ctx context.Context, cmd AdvanceStatusCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	_, err := updateOrder(ctx, h.uowFactory, cmd.OrderID(), func(_ UoW, o *order.Order) (order.Outcome, error) {
		return o.AdvanceStatus(cmd.Status(), cmd.Progress(), cmd.Actor())
	})
	return err
}
