package queries

import (
	"context"

	"shoecare/internal/core/domain/model/actor"
	"shoecare/internal/core/domain/services"
)

type SuggestCouriersQueryHandler struct {
	readers    ReaderFactory
	dispatcher services.OrderDispatcher
}

func NewSuggestCouriersQueryHandler(readers ReaderFactory, dispatcher services.OrderDispatcher) SuggestCouriersQueryHandler {
	return SuggestCouriersQueryHandler{readers: readers, dispatcher: dispatcher}
}

func (h SuggestCouriersQueryHandler) Handle(ctx context.Context, query SuggestCouriersQuery) ([]CourierSuggestion, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if err := query.By().Require(actor.RoleAdmin); err != nil {
		return nil, err
	}

	r := h.readers.Create()
	o, err := r.OrderRepository().Get(ctx, query.OrderID())
	if err != nil {
		return nil, err
	}
	available, err := r.CourierRepository().GetAllAvailable(ctx)
	if err != nil {
		return nil, err
	}
	ranked, err := h.dispatcher.RankCouriers(o, available)
	if err != nil {
		return nil, err
	}

	if limit := query.Limit(); limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]CourierSuggestion, 0, len(ranked))
	for _, cd := range ranked {
		out = append(out, CourierSuggestion{Courier: toCourierView(cd.Courier), DistanceKm: cd.DistanceKm})
	}
	return out, nil
}
