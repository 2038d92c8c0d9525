package commands

import (
	"context"
	"errors"
	"fmt"

	"shoecare/internal/core/domain/model/courier"
	"shoecare/internal/core/domain/model/kernel"
	"shoecare/internal/core/domain/model/order"
	"shoecare/internal/core/domain/services"
	"shoecare/internal/pkg/errs"
)

// AssignedCourier reports the courier chosen by an assignment.
type AssignedCourier struct {
	CourierID kernel.UUID
	OfferID   kernel.UUID
}

// AssignCourierCommandHandler runs the single-courier and force-assignment paths.
//
// Example:
//
//	handler := NewAssignCourierCommandHandler(uowFactory)
//	assigned, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, services.ErrCourierNotFound):
//	    log.Println("no courier available nearby")
//	case errors.Is(err, errs.ErrCourierBusy):
//	    log.Println("courier is offline or busy, use force assignment")
//	case err != nil:
//	    log.Printf("assignment failed: %v", err)
//	}
type AssignCourierCommandHandler struct {
	uowFactory UoWFactory
}

func NewAssignCourierCommandHandler(uowFactory UoWFactory) AssignCourierCommandHandler {
	return AssignCourierCommandHandler{uowFactory: uowFactory}
}

func (h AssignCourierCommandHandler) Handle(ctx context.Context, cmd AssignCourierCommand) (AssignedCourier, error) {
	if err := cmd.Validate(); err != nil {
		return AssignedCourier{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return AssignedCourier{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	courierRepo := uow.CourierRepository()
	dispatcher := services.NewOrderDispatcher()

	o, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return AssignedCourier{}, err
	}

	var c *courier.Courier
	if cmd.CourierID() != nil {
		c, err = courierRepo.Get(ctx, *cmd.CourierID())
	} else {
		var available []*courier.Courier
		if available, err = courierRepo.GetAllAvailable(ctx); err == nil {
			c, err = dispatcher.Nearest(o, available)
		}
	}
	if err != nil {
		return AssignedCourier{}, err
	}

	var offer order.CourierOffer
	if cmd.Force() {
		offer, err = dispatcher.ForceAssign(o, c, cmd.Notes(), cmd.Actor())
	} else {
		offer, err = dispatcher.AssignSingle(o, c, cmd.Notes(), cmd.Actor())
	}
	if err != nil {
		return AssignedCourier{}, err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return AssignedCourier{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return AssignedCourier{}, err
	}

	return AssignedCourier{CourierID: c.ID(), OfferID: offer.ID}, nil
}

// OfferOrderCommandHandler offers an order to several couriers. Either every offer is
// stored or none is.
type OfferOrderCommandHandler struct {
	uowFactory UoWFactory
}

func NewOfferOrderCommandHandler(uowFactory UoWFactory) OfferOrderCommandHandler {
	return OfferOrderCommandHandler{uowFactory: uowFactory}
}

func (h OfferOrderCommandHandler) Handle(ctx context.Context, cmd OfferOrderCommand) ([]order.CourierOffer, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var offers []order.CourierOffer
	_, err := updateOrder(ctx, h.uowFactory, cmd.OrderID(), func(uow UoW, o *order.Order) (order.Outcome, error) {
		couriers, err := uow.CourierRepository().GetMany(ctx, cmd.CourierIDs())
		if err != nil {
			return order.Outcome{}, err
		}
		offers, err = services.NewOrderDispatcher().OfferToCouriers(o, couriers, cmd.Notes(), cmd.Actor())
		return order.Outcome{}, err
	})
	if err != nil {
		return nil, err
	}
	return offers, nil
}

// AcceptOfferCommandHandler binds the accepting courier. Concurrent accepts race on the
// store's conditional writes; every loser gets errs.ErrAlreadyAssigned.
type AcceptOfferCommandHandler struct {
	uowFactory UoWFactory
}

func NewAcceptOfferCommandHandler(uowFactory UoWFactory) AcceptOfferCommandHandler {
	return AcceptOfferCommandHandler{uowFactory: uowFactory}
}

func (h AcceptOfferCommandHandler) Handle(ctx context.Context, cmd AcceptOfferCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	courierRepo := uow.CourierRepository()

	o, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	c, err := courierRepo.Get(ctx, cmd.CourierID())
	if err != nil {
		return err
	}

	active, err := orderRepo.GetActiveByCourier(ctx, cmd.CourierID())
	if err != nil {
		return err
	}

	if err = services.NewOrderDispatcher().Accept(o, c, active, cmd.Actor()); err != nil {
		return err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		if errors.Is(err, errs.ErrConcurrentUpdate) {
			return fmt.Errorf("%w: another courier accepted order %s first", errs.ErrAlreadyAssigned, o.Number())
		}
		return err
	}

	if err = courierRepo.Update(ctx, c); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

// DeclineOfferCommandHandler rejects the courier's pending offer.
type DeclineOfferCommandHandler struct {
	uowFactory UoWFactory
}

func NewDeclineOfferCommandHandler(uowFactory UoWFactory) DeclineOfferCommandHandler {
	return DeclineOfferCommandHandler{uowFactory: uowFactory}
}

func (h DeclineOfferCommandHandler) Handle(ctx context.Context, cmd DeclineOfferCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	_, err := updateOrder(ctx, h.uowFactory, cmd.OrderID(), func(_ UoW, o *order.Order) (order.Outcome, error) {
		return noOutcome(o.DeclineOffer(cmd.Actor()))
	})
	return err
}
