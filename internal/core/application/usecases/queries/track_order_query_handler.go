package queries

import "context"

// TrackOrderQueryHandler serves public tracking. It never authorizes the caller and only
// returns the progress of the order.
type TrackOrderQueryHandler struct {
	readers ReaderFactory
}

func NewTrackOrderQueryHandler(readers ReaderFactory) TrackOrderQueryHandler {
	return TrackOrderQueryHandler{readers: readers}
}

func (h TrackOrderQueryHandler) Handle(ctx context.Context, query TrackOrderQuery) (TrackingView, error) {
	if err := query.Validate(); err != nil {
		return TrackingView{}, err
	}

	o, err := h.readers.Create().OrderRepository().GetByNumber(ctx, query.Number())
	if err != nil {
		return TrackingView{}, err
	}
	return toTrackingView(o), nil
}
