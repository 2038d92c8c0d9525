package commands

import (
	"context"

	"shoecare/internal/core/domain/model/order"
)

// StartPickupCommandHandler stamps the pickup start on the courier binding.
type StartPickupCommandHandler struct {
	uowFactory UoWFactory
}

func NewStartPickupCommandHandler(uowFactory UoWFactory) StartPickupCommandHandler {
	return StartPickupCommandHandler{uowFactory: uowFactory}
}

func (h StartPickupCommandHandler) Handle(ctx context.Context, cmd StartPickupCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	_, err := updateOrder(ctx, h.uowFactory, cmd.OrderID(), func(_ UoW, o *order.Order) (order.Outcome, error) {
		return noOutcome(o.StartPickup(cmd.Location(), cmd.Actor()))
	})
	return err
}

// ContactCustomerCommandHandler marks the customer as contacted.
type ContactCustomerCommandHandler struct {
	uowFactory UoWFactory
}

func NewContactCustomerCommandHandler(uowFactory UoWFactory) ContactCustomerCommandHandler {
	return ContactCustomerCommandHandler{uowFactory: uowFactory}
}

func (h ContactCustomerCommandHandler) Handle(ctx context.Context, cmd ContactCustomerCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	_, err := updateOrder(ctx, h.uowFactory, cmd.OrderID(), func(_ UoW, o *order.Order) (order.Outcome, error) {
		return noOutcome(o.ContactCustomer(cmd.Notes(), cmd.Actor()))
	})
	return err
}

// UploadPickupProofCommandHandler moves the order to picked_up.
type UploadPickupProofCommandHandler struct {
	uowFactory UoWFactory
}

func NewUploadPickupProofCommandHandler(uowFactory UoWFactory) UploadPickupProofCommandHandler {
	return UploadPickupProofCommandHandler{uowFactory: uowFactory}
}

func (h UploadPickupProofCommandHandler) Handle(ctx context.Context, cmd UploadPickupProofCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	_, err := updateOrder(ctx, h.uowFactory, cmd.OrderID(), func(_ UoW, o *order.Order) (order.Outcome, error) {
		return noOutcome(o.UploadPickupProof(cmd.Image(), cmd.Notes(), cmd.Location(), cmd.Actor()))
	})
	return err
}

// ArriveWorkshopCommandHandler ends the pickup leg and releases the courier.
type ArriveWorkshopCommandHandler struct {
	uowFactory UoWFactory
}

func NewArriveWorkshopCommandHandler(uowFactory UoWFactory) ArriveWorkshopCommandHandler {
	return ArriveWorkshopCommandHandler{uowFactory: uowFactory}
}

func (h ArriveWorkshopCommandHandler) Handle(ctx context.Context, cmd ArriveWorkshopCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	_, err := updateOrder(ctx, h.uowFactory, cmd.OrderID(), func(_ UoW, o *order.Order) (order.Outcome, error) {
		return o.ArriveWorkshop(cmd.Notes(), cmd.Location(), cmd.Actor())
	})
	return err
}
