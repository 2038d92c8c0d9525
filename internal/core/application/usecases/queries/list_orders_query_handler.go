package queries

import (
	"context"

	"shoecare/internal/core/domain/model/actor"
	"shoecare/internal/core/domain/model/order"
)

type ListOrdersQueryHandler struct {
	readers ReaderFactory
}

func NewListOrdersQueryHandler(readers ReaderFactory) ListOrdersQueryHandler {
	return ListOrdersQueryHandler{readers: readers}
}

func (h ListOrdersQueryHandler) Handle(ctx context.Context, query ListOrdersQuery) ([]OrderSummary, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	repo := h.readers.Create().OrderRepository()
	var (
		orders []*order.Order
		err    error
	)
	if id := query.CustomerID(); id != nil {
		if err := requireSelfOrStaff(query.By(), *id, actor.RoleCustomer); err != nil {
			return nil, err
		}
		orders, err = repo.ListByCustomer(ctx, *id)
	} else {
		if err := query.By().Require(staff...); err != nil {
			return nil, err
		}
		orders, err = repo.ListByStatuses(ctx, query.Statuses())
	}
	if err != nil {
		return nil, err
	}
	return toOrderSummaries(orders), nil
}
