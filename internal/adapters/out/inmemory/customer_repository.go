package inmemory

import (
	"context"

	"shoecare/internal/core/domain/model/customer"
	"shoecare/internal/core/domain/model/kernel"
	"shoecare/internal/pkg/errs"
)

type customerRepository struct {
	uow *UnitOfWork
}

func (r *customerRepository) Add(ctx context.Context, c *customer.Customer) error {
	return r.uow.write(ctx, func() error {
		r.uow.newCustomer = append(r.uow.newCustomer, customerRecord{
			ID:              c.ID(),
			Name:            c.Name(),
			Phone:           c.Phone(),
			LoyaltyPoints:   c.LoyaltyPoints(),
			CompletedOrders: c.CompletedOrders(),
		})
		return nil
	})
}

func (r *customerRepository) Register(ctx context.Context, c *customer.Customer) error {
	return r.uow.write(ctx, func() error {
		if _, ok := r.uow.visibleCustomer(c.ID()); ok {
			return nil
		}
		if r.uow.registered == nil {
			r.uow.registered = make(map[kernel.UUID]bool)
		}
		r.uow.registered[c.ID()] = true
		r.uow.newCustomer = append(r.uow.newCustomer, customerRecord{
			ID:    c.ID(),
			Name:  c.Name(),
			Phone: c.Phone(),
		})
		return nil
	})
}

func (r *customerRepository) Get(_ context.Context, id kernel.UUID) (*customer.Customer, error) {
	rec, ok := r.uow.visibleCustomer(id)
	if !ok {
		return nil, errs.NewObjectNotFoundError("customer", id.String())
	}
	return customer.Restore(rec.ID, rec.Name, rec.Phone, rec.LoyaltyPoints, rec.CompletedOrders)
}

// AdjustLoyaltyPoints checks the visible balance now; Commit checks it again against the
// balance other transactions committed in the meantime.
func (r *customerRepository) AdjustLoyaltyPoints(ctx context.Context, id kernel.UUID, delta int64) error {
	return r.uow.write(ctx, func() error {
		rec, ok := r.uow.visibleCustomer(id)
		if !ok {
			return errs.NewObjectNotFoundError("customer", id.String())
		}
		if rec.LoyaltyPoints+delta < 0 {
			return customer.ErrInsufficientPoints
		}
		r.uow.deltas = append(r.uow.deltas, pointDelta{customerID: id, delta: delta})
		return nil
	})
}

func (r *customerRepository) IncrementCompletedOrders(ctx context.Context, id kernel.UUID) error {
	return r.uow.write(ctx, func() error {
		if _, ok := r.uow.visibleCustomer(id); !ok {
			return errs.NewObjectNotFoundError("customer", id.String())
		}
		r.uow.completions = append(r.uow.completions, id)
		return nil
	})
}
