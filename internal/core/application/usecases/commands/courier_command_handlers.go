package commands

import (
	"context"
	"log/slog"

	"shoecare/internal/core/domain/model/kernel"
)

// UpdateCourierCommandHandler applies availability and location updates.
type UpdateCourierCommandHandler struct {
	uowFactory CourierUoWFactory
}

func NewUpdateCourierCommandHandler(uowFactory CourierUoWFactory) UpdateCourierCommandHandler {
	return UpdateCourierCommandHandler{uowFactory: uowFactory}
}

func (h UpdateCourierCommandHandler) Handle(ctx context.Context, cmd UpdateCourierCommand) error {
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

	courierRepo := uow.CourierRepository()
	c, err := courierRepo.Get(ctx, cmd.CourierID())
	if err != nil {
		return err
	}

	if loc := cmd.Location(); loc != nil {
		if err = c.UpdateLocation(*loc); err != nil {
			return err
		}
	}
	if available := cmd.Available(); available != nil {
		if err = c.SetAvailable(*available); err != nil {
			return err
		}
	}

	if err = courierRepo.Update(ctx, c); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

// ReconcileCouriersCommandHandler repairs the denormalized courier availability flag
// from the orders that actually bind each courier. Offline couriers without a binding
// stay offline. Each courier is fixed in its own transaction, holding the courier row
// while the binding order is looked up.
type ReconcileCouriersCommandHandler struct {
	uowFactory UoWFactory
	logger     *slog.Logger
}

func NewReconcileCouriersCommandHandler(uowFactory UoWFactory, logger *slog.Logger) ReconcileCouriersCommandHandler {
	return ReconcileCouriersCommandHandler{uowFactory: uowFactory, logger: logger}
}

// Handle returns the number of couriers whose state was corrected.
func (h ReconcileCouriersCommandHandler) Handle(ctx context.Context) (int, error) {
	couriers, err := h.uowFactory.Create().CourierRepository().GetAll(ctx)
	if err != nil {
		return 0, err
	}

	fixed := 0
	for _, c := range couriers {
		changed, err := h.reconcile(ctx, c.ID())
		if err != nil {
			return fixed, err
		}
		if changed {
			fixed++
		}
	}
	return fixed, nil
}

func (h ReconcileCouriersCommandHandler) reconcile(ctx context.Context, courierID kernel.UUID) (bool, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	courierRepo := uow.CourierRepository()
	c, err := courierRepo.Get(ctx, courierID)
	if err != nil {
		return false, err
	}

	active, err := uow.OrderRepository().GetActiveByCourier(ctx, courierID)
	if err != nil {
		return false, err
	}

	var boundOrderID *kernel.UUID
	if active != nil {
		id := active.ID()
		boundOrderID = &id
	}
	if !c.Reconcile(boundOrderID) {
		return false, nil
	}

	if err = courierRepo.Update(ctx, c); err != nil {
		return false, err
	}
	if err = uow.Commit(ctx); err != nil {
		return false, err
	}

	h.logger.InfoContext(ctx, "courier availability reconciled",
		"courier_id", courierID.String(),
		"available", c.IsAvailable(),
	)
	return true, nil
}
