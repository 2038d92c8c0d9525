package queries

import (
	"context"

	"shoecare/internal/core/domain/model/actor"
	"shoecare/internal/core/domain/model/order"
)

// CourierQueueQueryHandler lists pending offers and the active order of one courier.
type CourierQueueQueryHandler struct {
	readers ReaderFactory
}

func NewCourierQueueQueryHandler(readers ReaderFactory) CourierQueueQueryHandler {
	return CourierQueueQueryHandler{readers: readers}
}

func (h CourierQueueQueryHandler) Handle(ctx context.Context, query CourierQueueQuery) (CourierQueueResponse, error) {
	if err := query.Validate(); err != nil {
		return CourierQueueResponse{}, err
	}
	if err := requireSelfOrStaff(query.By(), query.CourierID(), actor.RoleCourier); err != nil {
		return CourierQueueResponse{}, err
	}

	r := h.readers.Create()
	offered, err := r.OrderRepository().ListOfferedTo(ctx, query.CourierID())
	if err != nil {
		return CourierQueueResponse{}, err
	}

	resp := CourierQueueResponse{Pending: make([]PendingOffer, 0, len(offered))}
	for _, o := range offered {
		summary := toOrderSummaries([]*order.Order{o})[0]
		for _, offer := range o.Queue() {
			if offer.Status != order.OfferPending || !offer.CourierID.IsEqual(query.CourierID()) {
				continue
			}
			resp.Pending = append(resp.Pending, PendingOffer{
				OfferID: offer.ID,
				Order:   summary,
				Leg:     string(offer.Leg),
				Notes:   offer.Notes,
			})
		}
	}

	active, err := r.OrderRepository().GetActiveByCourier(ctx, query.CourierID())
	if err != nil {
		return CourierQueueResponse{}, err
	}
	if active != nil {
		contact, err := courierContact(ctx, r.CourierRepository(), active)
		if err != nil {
			return CourierQueueResponse{}, err
		}
		view := toOrderView(active, contact)
		resp.Active = &view
	}
	return resp, nil
}
