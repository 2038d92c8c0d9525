package commands

import (
	"context"
	"errors"
	"fmt"

	"shoecare/internal/core/domain/model/courier"
	"shoecare/internal/pkg/errs"
)

// CreateCourierCommandHandler registers the courier profile of a user account. A new
// courier starts available and bound to no order; registering the same user twice fails
// with errs.ErrAlreadyExists.
//
// Example:
//
//	handler := NewCreateCourierCommandHandler(uowFactory)
//	cmd, _ := NewCreateCourierCommand(userID, "Budi", "+6281234567890")
//
//	if err := handler.Handle(ctx, cmd); errors.Is(err, errs.ErrAlreadyExists) {
//	    // the user is already a courier
//	}
type CreateCourierCommandHandler struct {
	uowFactory CourierUoWFactory
}

func NewCreateCourierCommandHandler(uowFactory CourierUoWFactory) CreateCourierCommandHandler {
	return CreateCourierCommandHandler{uowFactory: uowFactory}
}

func (h CreateCourierCommandHandler) Handle(ctx context.Context, cmd CreateCourierCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	registered, err := courier.NewCourier(cmd.CourierID(), cmd.Name(), cmd.Phone())
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	couriers := uow.CourierRepository()
	switch _, err = couriers.Get(ctx, cmd.CourierID()); {
	case err == nil:
		return fmt.Errorf("%w: courier %s", errs.ErrAlreadyExists, cmd.CourierID())
	case !errors.Is(err, errs.ErrObjectNotFound):
		return err
	}

	// The store still rejects a concurrent registration of the same id.
	if err = couriers.Add(ctx, registered); err != nil {
		return err
	}
	return uow.Commit(ctx)
}
