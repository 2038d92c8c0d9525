package commands

import (
	"context"
	"errors"

	"shoecare/internal/core/domain/model/kernel"
	"shoecare/internal/core/domain/model/order"
	"shoecare/internal/core/domain/services"
	"shoecare/internal/pkg/errs"
)

// updateOrder loads an order, applies change and saves the order together with the
// side effects the change reported. The order row is written before couriers and
// customers are touched.
func updateOrder(
	ctx context.Context,
	factory UoWFactory,
	orderID kernel.UUID,
	change func(uow UoW, o *order.Order) (order.Outcome, error),
) (order.Outcome, error) {
	uow := factory.Create()
	if err := uow.Begin(ctx); err != nil {
		return order.Outcome{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.Get(ctx, orderID)
	if err != nil {
		return order.Outcome{}, err
	}

	out, err := change(uow, o)
	if err != nil {
		return order.Outcome{}, err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return order.Outcome{}, err
	}

	if err = applyOutcome(ctx, uow, o, out); err != nil {
		return order.Outcome{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return order.Outcome{}, err
	}

	return out, nil
}

// applyOutcome releases the courier of an ended leg, refunds loyalty points, and on
// completion counts the order and credits the points it earned. A courier or customer that
// no longer exists is skipped, except for refunds, which must not be lost.
func applyOutcome(ctx context.Context, uow UoW, o *order.Order, out order.Outcome) error {
	if out.ReleasedCourier != nil {
		courierRepo := uow.CourierRepository()
		c, err := courierRepo.Get(ctx, *out.ReleasedCourier)
		switch {
		case errors.Is(err, errs.ErrObjectNotFound):
		case err != nil:
			return err
		default:
			if err = services.NewOrderDispatcher().Release(o, c, out.LegFinished); err != nil {
				return err
			}
			if err = courierRepo.Update(ctx, c); err != nil {
				return err
			}
		}
	}

	userID := o.Customer().UserID
	if userID == nil {
		return nil
	}
	customerRepo := uow.CustomerRepository()
	if out.RefundPoints > 0 {
		if err := customerRepo.AdjustLoyaltyPoints(ctx, *userID, out.RefundPoints); err != nil {
			return err
		}
	}
	if out.Completed {
		err := customerRepo.IncrementCompletedOrders(ctx, *userID)
		if err != nil && !errors.Is(err, errs.ErrObjectNotFound) {
			return err
		}
	}
	if out.EarnedPoints > 0 {
		err := customerRepo.AdjustLoyaltyPoints(ctx, *userID, out.EarnedPoints)
		if err != nil && !errors.Is(err, errs.ErrObjectNotFound) {
			return err
		}
	}
	return nil
}

func noOutcome(err error) (order.Outcome, error) {
	return order.Outcome{}, err
}
