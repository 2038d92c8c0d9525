package inmemory

import (
	"context"
	"fmt"
	"slices"

	"shoecare/internal/core/domain/model/kernel"
	"shoecare/internal/core/domain/model/order"
	"shoecare/internal/pkg/errs"
)

type orderRepository struct {
	uow *UnitOfWork
}

func (r *orderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	return r.uow.write(ctx, func() error {
		r.uow.orders[aggregate.ID()] = orderWrite{snap: aggregate.Snapshot(), isNew: true}
		aggregate.MarkPersisted()
		r.uow.track(aggregate)
		return nil
	})
}

// Update stages the order. The status predicate is checked now and again on Commit.
func (r *orderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	changes := aggregate.Changes()
	if changes.IsNew {
		return r.Add(ctx, aggregate)
	}

	return r.uow.write(ctx, func() error {
		id := aggregate.ID()
		w, staged := r.uow.orders[id]
		if !staged {
			current, ok := r.uow.visibleOrder(id)
			if !ok {
				return errs.NewObjectNotFoundError("order", id.String())
			}
			if current.Status != changes.ExpectedStatus {
				return fmt.Errorf("%w: order %s is %s, expected %s",
					errs.ErrConcurrentUpdate, current.Number, current.Status, changes.ExpectedStatus)
			}
			w.expected = changes.ExpectedStatus
		}
		snap := aggregate.Snapshot()
		if err := checkOffers(snap.Offers); err != nil {
			return err
		}
		w.snap = snap
		r.uow.orders[id] = w
		aggregate.MarkPersisted()
		r.uow.track(aggregate)
		return nil
	})
}

func (r *orderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if err := r.uow.lockRow(ctx, id); err != nil {
		return nil, err
	}
	snap, ok := r.uow.visibleOrder(id)
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	return order.Restore(snap)
}

func (r *orderRepository) GetByNumber(_ context.Context, number string) (*order.Order, error) {
	for _, snap := range r.uow.visibleOrders() {
		if snap.Number == number {
			return order.Restore(snap)
		}
	}
	return nil, errs.NewObjectNotFoundError("order", number)
}

func (r *orderRepository) GetActiveByCourier(_ context.Context, courierID kernel.UUID) (*order.Order, error) {
	for _, snap := range r.uow.visibleOrders() {
		if snap.ActiveCourier != nil && snap.ActiveCourier.CourierID.IsEqual(courierID) && snap.Status.IsBusy() {
			return order.Restore(snap)
		}
	}
	return nil, nil
}

func (r *orderRepository) ListByCustomer(_ context.Context, customerID kernel.UUID) ([]*order.Order, error) {
	return r.list(func(snap order.Snapshot) bool {
		return snap.Customer.UserID != nil && snap.Customer.UserID.IsEqual(customerID)
	})
}

func (r *orderRepository) ListByStatuses(_ context.Context, statuses []order.Status) ([]*order.Order, error) {
	return r.list(func(snap order.Snapshot) bool {
		return len(statuses) == 0 || slices.Contains(statuses, snap.Status)
	})
}

func (r *orderRepository) ListOfferedTo(_ context.Context, courierID kernel.UUID) ([]*order.Order, error) {
	return r.list(func(snap order.Snapshot) bool {
		return slices.ContainsFunc(snap.Offers, func(o order.CourierOffer) bool {
			return o.Status == order.OfferPending && o.CourierID.IsEqual(courierID)
		})
	})
}

func (r *orderRepository) list(match func(order.Snapshot) bool) ([]*order.Order, error) {
	var out []*order.Order
	for _, snap := range r.uow.visibleOrders() {
		if !match(snap) {
			continue
		}
		o, err := order.Restore(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}
