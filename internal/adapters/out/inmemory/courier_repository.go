package inmemory

import (
	"context"
	"sort"

	"shoecare/internal/core/domain/model/courier"
	"shoecare/internal/core/domain/model/kernel"
	"shoecare/internal/pkg/errs"
)

type courierRepository struct {
	uow *UnitOfWork
}

func (r *courierRepository) Add(ctx context.Context, aggregate *courier.Courier) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	return r.uow.write(ctx, func() error {
		r.uow.couriers[aggregate.ID()] = courierWrite{rec: fromCourier(aggregate), isNew: true}
		return nil
	})
}

func (r *courierRepository) Update(ctx context.Context, aggregate *courier.Courier) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	return r.uow.write(ctx, func() error {
		id := aggregate.ID()
		w, staged := r.uow.couriers[id]
		if !staged {
			if _, ok := r.uow.visibleCourier(id); !ok {
				return errs.NewObjectNotFoundError("courier", id.String())
			}
		}
		w.rec = fromCourier(aggregate)
		r.uow.couriers[id] = w
		return nil
	})
}

func (r *courierRepository) Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if err := r.uow.lockRow(ctx, id); err != nil {
		return nil, err
	}
	rec, ok := r.uow.visibleCourier(id)
	if !ok {
		return nil, errs.NewObjectNotFoundError("courier", id.String())
	}
	return toCourier(rec)
}

func (r *courierRepository) GetMany(ctx context.Context, ids []kernel.UUID) ([]*courier.Courier, error) {
	out := make([]*courier.Courier, 0, len(ids))
	for _, id := range ids {
		c, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *courierRepository) GetAll(_ context.Context) ([]*courier.Courier, error) {
	return r.list(func(courierRecord) bool { return true })
}

func (r *courierRepository) GetAllAvailable(_ context.Context) ([]*courier.Courier, error) {
	return r.list(func(rec courierRecord) bool { return rec.IsAvailable })
}

func (r *courierRepository) list(match func(courierRecord) bool) ([]*courier.Courier, error) {
	s := r.uow.store
	s.mu.RLock()
	byID := make(map[kernel.UUID]courierRecord, len(s.couriers))
	for id, rec := range s.couriers {
		byID[id] = rec
	}
	s.mu.RUnlock()
	for id, w := range r.uow.couriers {
		byID[id] = w.rec
	}

	recs := make([]courierRecord, 0, len(byID))
	for _, rec := range byID {
		if match(rec) {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Name != recs[j].Name {
			return recs[i].Name < recs[j].Name
		}
		return recs[i].ID.String() < recs[j].ID.String()
	})

	out := make([]*courier.Courier, 0, len(recs))
	for _, rec := range recs {
		c, err := toCourier(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func fromCourier(c *courier.Courier) courierRecord {
	return courierRecord{
		ID:                  c.ID(),
		Name:                c.Name(),
		Phone:               c.Phone(),
		IsAvailable:         c.IsAvailable(),
		CurrentDeliveryID:   c.CurrentDeliveryID(),
		TotalDeliveries:     c.TotalDeliveries(),
		CompletedDeliveries: c.CompletedDeliveries(),
		Location:            c.Location(),
	}
}

func toCourier(rec courierRecord) (*courier.Courier, error) {
	return courier.RestoreCourier(
		rec.ID,
		rec.Name,
		rec.Phone,
		rec.IsAvailable,
		rec.CurrentDeliveryID,
		rec.TotalDeliveries,
		rec.CompletedDeliveries,
		rec.Location,
	)
}
