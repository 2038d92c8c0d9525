package queries

import "context"

// GetOrderQueryHandler returns the full order view with the bound courier's contact.
type GetOrderQueryHandler struct {
	readers ReaderFactory
}

func NewGetOrderQueryHandler(readers ReaderFactory) GetOrderQueryHandler {
	return GetOrderQueryHandler{readers: readers}
}

func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (OrderView, error) {
	if err := query.Validate(); err != nil {
		return OrderView{}, err
	}

	r := h.readers.Create()
	o, err := r.OrderRepository().Get(ctx, query.OrderID())
	if err != nil {
		return OrderView{}, err
	}
	if err = authorizeOrder(o, query.By()); err != nil {
		return OrderView{}, err
	}

	contact, err := courierContact(ctx, r.CourierRepository(), o)
	if err != nil {
		return OrderView{}, err
	}
	return toOrderView(o, contact), nil
}
