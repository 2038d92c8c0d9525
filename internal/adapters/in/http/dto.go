package http

import (
	"errors"
	"time"

	"shoecare/internal/core/application/usecases/queries"
	"shoecare/internal/core/domain/model/kernel"
	"shoecare/internal/core/domain/model/order"
	"shoecare/internal/pkg/errs"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

type itemRequest struct {
	Name     string `json:"name" validate:"required"`
	Price    int64  `json:"price" validate:"gte=0"`
	Quantity int    `json:"quantity" validate:"gte=1"`
}

type locationRequest struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

type createOrderRequest struct {
	Customer struct {
		Name  string `json:"name" validate:"required"`
		Phone string `json:"phone" validate:"required"`
	} `json:"customer"`
	ServiceType string        `json:"serviceType" validate:"required"`
	Items       []itemRequest `json:"items" validate:"required,min=1,dive"`
	Pickup      struct {
		Address     string  `json:"address" validate:"required"`
		Lat         float64 `json:"lat" validate:"gte=-90,lte=90"`
		Lng         float64 `json:"lng" validate:"gte=-180,lte=180"`
		DeliveryFee int64   `json:"deliveryFee" validate:"gte=0"`
	} `json:"pickup"`
	UsePoints int64 `json:"usePoints" validate:"gte=0"`
}

type rejectOrderRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type editItemsRequest struct {
	Items  []itemRequest `json:"items" validate:"required,min=1,dive"`
	Reason string        `json:"reason"`
}

type advanceStatusRequest struct {
	Status   string           `json:"status" validate:"required"`
	Notes    string           `json:"notes"`
	Proof    string           `json:"proof"`
	Location *locationRequest `json:"location"`
}

type assignCourierRequest struct {
	CourierID *openapi_types.UUID `json:"courierId"`
	Notes     string              `json:"notes"`
}

type forceAssignCourierRequest struct {
	CourierID openapi_types.UUID `json:"courierId" validate:"required"`
	Notes     string             `json:"notes"`
}

type offerOrderRequest struct {
	CourierIDs []openapi_types.UUID `json:"courierIds" validate:"required,min=1"`
	Notes      string               `json:"notes"`
}

type startPickupRequest struct {
	Location *locationRequest `json:"location"`
}

type contactCustomerRequest struct {
	Notes string `json:"notes"`
}

type arriveWorkshopRequest struct {
	Notes    string           `json:"notes"`
	Location *locationRequest `json:"location"`
}

type createCourierRequest struct {
	UserID openapi_types.UUID `json:"userId" validate:"required"`
	Name   string             `json:"name" validate:"required"`
	Phone  string             `json:"phone" validate:"required"`
}

type updateCourierRequest struct {
	IsAvailable *bool            `json:"isAvailable"`
	Location    *locationRequest `json:"location"`
}

func toItems(in []itemRequest) ([]order.Item, error) {
	items := make([]order.Item, 0, len(in))
	var joined []error
	for _, it := range in {
		item, err := order.NewItem(it.Name, it.Price, it.Quantity)
		if err != nil {
			joined = append(joined, err)
			continue
		}
		items = append(items, item)
	}
	if err := errors.Join(joined...); err != nil {
		return nil, err
	}
	return items, nil
}

func toPoint(l *locationRequest) (*kernel.GeoPoint, error) {
	if l == nil {
		return nil, nil
	}
	p, err := kernel.NewGeoPoint(l.Lat, l.Lng)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func toUUID(name string, id openapi_types.UUID) (kernel.UUID, error) {
	out, err := kernel.UUIDFromGoogle(id)
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return out, nil
}

func toUUIDs(name string, ids []openapi_types.UUID) ([]kernel.UUID, error) {
	out := make([]kernel.UUID, 0, len(ids))
	for _, id := range ids {
		u, err := toUUID(name, id)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

type geoPointResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func fromPoint(p *kernel.GeoPoint) *geoPointResponse {
	if p == nil {
		return nil
	}
	return &geoPointResponse{Lat: p.Lat(), Lng: p.Lng()}
}

func fromUUID(id *kernel.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

type itemResponse struct {
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

func fromItems(items []order.Item) []itemResponse {
	out := make([]itemResponse, len(items))
	for i, it := range items {
		out[i] = itemResponse{Name: it.Name, Price: it.Price, Quantity: it.Quantity}
	}
	return out
}

type customerResponse struct {
	Name    string  `json:"name"`
	Phone   string  `json:"phone"`
	UserID  *string `json:"userId,omitempty"`
	IsGuest bool    `json:"isGuest"`
}

type pickupResponse struct {
	Address     string           `json:"address"`
	Location    geoPointResponse `json:"location"`
	DeliveryFee int64            `json:"deliveryFee"`
}

type paymentResponse struct {
	Subtotal       int64      `json:"subtotal"`
	DeliveryFee    int64      `json:"deliveryFee"`
	DiscountPoints int64      `json:"discountPoints"`
	FinalAmount    int64      `json:"finalAmount"`
	Amount         int64      `json:"amount"`
	Status         string     `json:"status"`
	ProofImage     string     `json:"proofImage,omitempty"`
	PaidAt         *time.Time `json:"paidAt,omitempty"`
}

type loyaltyResponse struct {
	Earned   int64  `json:"earned"`
	Used     int64  `json:"used"`
	Rate     string `json:"rate"`
	Refunded bool   `json:"refunded"`
}

type statusEntryResponse struct {
	Status    string            `json:"status"`
	At        time.Time         `json:"timestamp"`
	ActorID   string            `json:"updatedBy"`
	ActorName string            `json:"updatedByName,omitempty"`
	Notes     string            `json:"notes,omitempty"`
	Proof     string            `json:"proof,omitempty"`
	Location  *geoPointResponse `json:"location,omitempty"`
}

type trackingDetailResponse struct {
	Stage    string            `json:"stage"`
	At       time.Time         `json:"timestamp"`
	ActorID  string            `json:"updatedBy"`
	Notes    string            `json:"notes,omitempty"`
	Location *geoPointResponse `json:"location,omitempty"`
}

type trackingResponse struct {
	CurrentStage  string     `json:"currentStage,omitempty"`
	CourierID     *string    `json:"courierId,omitempty"`
	PickupTime    *time.Time `json:"pickupTime,omitempty"`
	CompletedTime *time.Time `json:"completedTime,omitempty"`
}

// publicTrackingResponse is served to anonymous callers and carries no personal data.
type publicTrackingResponse struct {
	Number        string                 `json:"orderNumber"`
	Status        string                 `json:"status"`
	ServiceType   string                 `json:"serviceType"`
	CurrentStage  string                 `json:"currentStage,omitempty"`
	Steps         []trackingStepResponse `json:"trackingDetails"`
	PickupTime    *time.Time             `json:"pickupTime,omitempty"`
	CompletedTime *time.Time             `json:"completedTime,omitempty"`
	CreatedAt     time.Time              `json:"createdAt"`
	UpdatedAt     time.Time              `json:"updatedAt"`
}

type trackingStepResponse struct {
	Stage string    `json:"stage"`
	At    time.Time `json:"timestamp"`
}

func fromTrackingView(v queries.TrackingView) publicTrackingResponse {
	steps := make([]trackingStepResponse, 0, len(v.Steps))
	for _, st := range v.Steps {
		steps = append(steps, trackingStepResponse{Stage: string(st.Stage), At: st.At})
	}
	return publicTrackingResponse{
		Number:        v.Number,
		Status:        v.Status.String(),
		ServiceType:   v.ServiceType,
		CurrentStage:  string(v.CurrentStage),
		Steps:         steps,
		PickupTime:    v.PickupTime,
		CompletedTime: v.CompletedTime,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
}

type editRecordResponse struct {
	At             time.Time      `json:"editedAt"`
	ActorID        string         `json:"editedBy"`
	ActorName      string         `json:"editedByName,omitempty"`
	Reason         string         `json:"reason,omitempty"`
	ItemsBefore    []itemResponse `json:"itemsBefore"`
	ItemsAfter     []itemResponse `json:"itemsAfter"`
	SubtotalBefore int64          `json:"subtotalBefore"`
	SubtotalAfter  int64          `json:"subtotalAfter"`
}

type offerResponse struct {
	ID          string     `json:"id"`
	CourierID   string     `json:"courierId"`
	Leg         string     `json:"leg"`
	Status      string     `json:"status"`
	AssignedAt  time.Time  `json:"assignedAt"`
	AssignedBy  string     `json:"assignedBy"`
	Notes       string     `json:"notes,omitempty"`
	AcceptedAt  *time.Time `json:"acceptedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

type activeCourierResponse struct {
	CourierID         string            `json:"courierId"`
	Leg               string            `json:"leg"`
	AcceptedAt        time.Time         `json:"acceptedAt"`
	StartedPickupAt   *time.Time        `json:"startedPickupAt,omitempty"`
	CurrentLocation   *geoPointResponse `json:"currentLocation,omitempty"`
	CustomerContacted bool              `json:"customerContacted"`
	ContactedAt       *time.Time        `json:"contactedAt,omitempty"`
}

type courierContactResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type pickupProofResponse struct {
	Image      string            `json:"image"`
	At         time.Time         `json:"uploadedAt"`
	Notes      string            `json:"notes,omitempty"`
	Location   *geoPointResponse `json:"location,omitempty"`
	UploadedBy string            `json:"uploadedBy"`
}

type adminActionsResponse struct {
	ConfirmedBy        string     `json:"confirmedBy,omitempty"`
	ConfirmedAt        *time.Time `json:"confirmedAt,omitempty"`
	CancelledBy        string     `json:"cancelledBy,omitempty"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`
	CancellationReason string     `json:"cancellationReason,omitempty"`
}

type orderResponse struct {
	ID              string                   `json:"id"`
	Number          string                   `json:"orderNumber"`
	Status          string                   `json:"status"`
	Customer        customerResponse         `json:"customerInfo"`
	ServiceType     string                   `json:"serviceType"`
	Items           []itemResponse           `json:"items"`
	Pickup          pickupResponse           `json:"pickupLocation"`
	Payment         paymentResponse          `json:"payment"`
	Loyalty         loyaltyResponse          `json:"loyaltyPoints"`
	StatusHistory   []statusEntryResponse    `json:"statusHistory"`
	TrackingDetails []trackingDetailResponse `json:"trackingDetails"`
	Tracking        trackingResponse         `json:"tracking"`
	EditHistory     []editRecordResponse     `json:"editHistory"`
	Queue           []offerResponse          `json:"courierQueue"`
	ActiveCourier   *activeCourierResponse   `json:"activeCourier,omitempty"`
	Courier         *courierContactResponse  `json:"courier,omitempty"`
	PickupProof     *pickupProofResponse     `json:"pickupProof,omitempty"`
	Admin           adminActionsResponse     `json:"adminActions"`
	CreatedAt       time.Time                `json:"createdAt"`
	UpdatedAt       time.Time                `json:"updatedAt"`
}

func fromOffers(offers []order.CourierOffer) []offerResponse {
	out := make([]offerResponse, len(offers))
	for i, o := range offers {
		out[i] = offerResponse{
			ID:          o.ID.String(),
			CourierID:   o.CourierID.String(),
			Leg:         o.Leg.String(),
			Status:      o.Status.String(),
			AssignedAt:  o.AssignedAt,
			AssignedBy:  o.AssignedBy,
			Notes:       o.Notes,
			AcceptedAt:  o.AcceptedAt,
			CompletedAt: o.CompletedAt,
		}
	}
	return out
}

func fromOrderView(v queries.OrderView) orderResponse {
	resp := orderResponse{
		ID:     v.ID.String(),
		Number: v.Number,
		Status: v.Status.String(),
		Customer: customerResponse{
			Name:    v.Customer.Name,
			Phone:   v.Customer.Phone,
			UserID:  fromUUID(v.Customer.UserID),
			IsGuest: v.Customer.IsGuest,
		},
		ServiceType: v.ServiceType,
		Items:       fromItems(v.Items),
		Pickup: pickupResponse{
			Address:     v.Pickup.Address,
			Location:    geoPointResponse{Lat: v.Pickup.Point.Lat(), Lng: v.Pickup.Point.Lng()},
			DeliveryFee: v.Pickup.DeliveryFee,
		},
		Payment: paymentResponse{
			Subtotal:       v.Payment.Subtotal,
			DeliveryFee:    v.Payment.DeliveryFee,
			DiscountPoints: v.Payment.DiscountPoints,
			FinalAmount:    v.Payment.FinalAmount,
			Amount:         v.Payment.Amount,
			Status:         string(v.Payment.Status),
			ProofImage:     v.Payment.ProofImage,
			PaidAt:         v.Payment.PaidAt,
		},
		Loyalty: loyaltyResponse{
			Earned:   v.Loyalty.Earned,
			Used:     v.Loyalty.Used,
			Rate:     v.Loyalty.Rate.String(),
			Refunded: v.Loyalty.Refunded,
		},
		Tracking: trackingResponse{
			CurrentStage:  string(v.Tracking.CurrentStage),
			CourierID:     fromUUID(v.Tracking.CourierID),
			PickupTime:    v.Tracking.PickupTime,
			CompletedTime: v.Tracking.CompletedTime,
		},
		Queue: fromOffers(v.Queue),
		Admin: adminActionsResponse{
			ConfirmedBy:        v.Admin.ConfirmedBy,
			ConfirmedAt:        v.Admin.ConfirmedAt,
			CancelledBy:        v.Admin.CancelledBy,
			CancelledAt:        v.Admin.CancelledAt,
			CancellationReason: v.Admin.CancellationReason,
		},
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}

	resp.StatusHistory = make([]statusEntryResponse, len(v.StatusHistory))
	for i, e := range v.StatusHistory {
		resp.StatusHistory[i] = statusEntryResponse{
			Status:    e.Status.String(),
			At:        e.At,
			ActorID:   e.ActorID,
			ActorName: e.ActorName,
			Notes:     e.Notes,
			Proof:     e.Proof,
			Location:  fromPoint(e.Location),
		}
	}
	resp.TrackingDetails = make([]trackingDetailResponse, len(v.TrackingDetails))
	for i, d := range v.TrackingDetails {
		resp.TrackingDetails[i] = trackingDetailResponse{
			Stage:    string(d.Stage),
			At:       d.At,
			ActorID:  d.ActorID,
			Notes:    d.Notes,
			Location: fromPoint(d.Location),
		}
	}
	resp.EditHistory = make([]editRecordResponse, len(v.EditHistory))
	for i, e := range v.EditHistory {
		resp.EditHistory[i] = editRecordResponse{
			At:             e.At,
			ActorID:        e.ActorID,
			ActorName:      e.ActorName,
			Reason:         e.Reason,
			ItemsBefore:    fromItems(e.ItemsBefore),
			ItemsAfter:     fromItems(e.ItemsAfter),
			SubtotalBefore: e.SubtotalBefore,
			SubtotalAfter:  e.SubtotalAfter,
		}
	}

	if a := v.ActiveCourier; a != nil {
		resp.ActiveCourier = &activeCourierResponse{
			CourierID:         a.CourierID.String(),
			Leg:               a.Leg.String(),
			AcceptedAt:        a.AcceptedAt,
			StartedPickupAt:   a.StartedPickupAt,
			CurrentLocation:   fromPoint(a.CurrentLocation),
			CustomerContacted: a.CustomerContacted,
			ContactedAt:       a.ContactedAt,
		}
	}
	if c := v.Courier; c != nil {
		resp.Courier = &courierContactResponse{ID: c.ID.String(), Name: c.Name, Phone: c.Phone}
	}
	if p := v.PickupProof; p != nil {
		resp.PickupProof = &pickupProofResponse{
			Image:      p.Image,
			At:         p.At,
			Notes:      p.Notes,
			Location:   fromPoint(p.Location),
			UploadedBy: p.UploadedBy,
		}
	}
	return resp
}

type orderSummaryResponse struct {
	ID            string    `json:"id"`
	Number        string    `json:"orderNumber"`
	Status        string    `json:"status"`
	CustomerName  string    `json:"customerName"`
	ServiceType   string    `json:"serviceType"`
	FinalAmount   int64     `json:"finalAmount"`
	PaymentStatus string    `json:"paymentStatus"`
	Address       string    `json:"address"`
	CourierID     *string   `json:"courierId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

func fromSummary(s queries.OrderSummary) orderSummaryResponse {
	return orderSummaryResponse{
		ID:            s.ID.String(),
		Number:        s.Number,
		Status:        s.Status.String(),
		CustomerName:  s.CustomerName,
		ServiceType:   s.ServiceType,
		FinalAmount:   s.FinalAmount,
		PaymentStatus: string(s.PaymentState),
		Address:       s.Address,
		CourierID:     fromUUID(s.CourierID),
		CreatedAt:     s.CreatedAt,
	}
}

func fromSummaries(in []queries.OrderSummary) []orderSummaryResponse {
	out := make([]orderSummaryResponse, len(in))
	for i, s := range in {
		out[i] = fromSummary(s)
	}
	return out
}

type courierResponse struct {
	ID                  string            `json:"id"`
	Name                string            `json:"name"`
	Phone               string            `json:"phone"`
	IsAvailable         bool              `json:"isAvailable"`
	CurrentDeliveryID   *string           `json:"currentDeliveryId,omitempty"`
	TotalDeliveries     int               `json:"totalDeliveries"`
	CompletedDeliveries int               `json:"completedDeliveries"`
	Location            *geoPointResponse `json:"location,omitempty"`
}

func fromCourier(c queries.CourierView) courierResponse {
	return courierResponse{
		ID:                  c.ID.String(),
		Name:                c.Name,
		Phone:               c.Phone,
		IsAvailable:         c.IsAvailable,
		CurrentDeliveryID:   fromUUID(c.CurrentDeliveryID),
		TotalDeliveries:     c.TotalDeliveries,
		CompletedDeliveries: c.CompletedDeliveries,
		Location:            fromPoint(c.Location),
	}
}

type suggestionResponse struct {
	Courier    courierResponse `json:"courier"`
	DistanceKm float64         `json:"distanceKm"`
}

type pendingOfferResponse struct {
	OfferID string               `json:"offerId"`
	Order   orderSummaryResponse `json:"order"`
	Leg     string               `json:"leg"`
	Notes   string               `json:"notes,omitempty"`
}

type courierQueueResponse struct {
	Pending []pendingOfferResponse `json:"pending"`
	Active  *orderResponse         `json:"active,omitempty"`
}

func fromQueue(q queries.CourierQueueResponse) courierQueueResponse {
	resp := courierQueueResponse{Pending: make([]pendingOfferResponse, len(q.Pending))}
	for i, p := range q.Pending {
		resp.Pending[i] = pendingOfferResponse{
			OfferID: p.OfferID.String(),
			Order:   fromSummary(p.Order),
			Leg:     p.Leg,
			Notes:   p.Notes,
		}
	}
	if q.Active != nil {
		active := fromOrderView(*q.Active)
		resp.Active = &active
	}
	return resp
}
