package queries

import (
	"context"

	"shoecare/internal/core/domain/model/actor"
	"shoecare/internal/core/domain/model/courier"
)

// GetAllCouriersQueryHandler reads couriers sorted by name.
type GetAllCouriersQueryHandler struct {
	readers ReaderFactory
}

func NewGetAllCouriersQueryHandler(readers ReaderFactory) GetAllCouriersQueryHandler {
	return GetAllCouriersQueryHandler{readers: readers}
}

func (h GetAllCouriersQueryHandler) Handle(ctx context.Context, query GetAllCouriersQuery) ([]CourierView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if err := query.By().Require(actor.RoleAdmin); err != nil {
		return nil, err
	}

	repo := h.readers.Create().CourierRepository()
	var (
		couriers []*courier.Courier
		err      error
	)
	if query.AvailableOnly() {
		couriers, err = repo.GetAllAvailable(ctx)
	} else {
		couriers, err = repo.GetAll(ctx)
	}
	if err != nil {
		return nil, err
	}

	views := make([]CourierView, 0, len(couriers))
	for _, c := range couriers {
		views = append(views, toCourierView(c))
	}
	return views, nil
}
