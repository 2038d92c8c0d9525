package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"shoecare/internal/core/application/usecases/commands"
	"shoecare/internal/core/application/usecases/queries"
	"shoecare/internal/core/domain/model/actor"
	"shoecare/internal/core/domain/model/kernel"
	"shoecare/internal/core/domain/model/order"
	"shoecare/internal/core/ports"
	"shoecare/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

var _ ServerInterface = (*Server)(nil)

// Handlers groups the use cases served over HTTP.
type Handlers struct {
	CreateOrder        commands.CreateOrderCommandHandler
	SubmitPaymentProof commands.SubmitPaymentProofCommandHandler
	ConfirmPayment     commands.ConfirmPaymentCommandHandler
	RejectOrder        commands.RejectOrderCommandHandler
	EditOrderItems     commands.EditOrderItemsCommandHandler
	AdvanceStatus      commands.AdvanceStatusCommandHandler
	AssignCourier      commands.AssignCourierCommandHandler
	OfferOrder         commands.OfferOrderCommandHandler
	AcceptOffer        commands.AcceptOfferCommandHandler
	DeclineOffer       commands.DeclineOfferCommandHandler
	StartPickup        commands.StartPickupCommandHandler
	ContactCustomer    commands.ContactCustomerCommandHandler
	UploadPickupProof  commands.UploadPickupProofCommandHandler
	ArriveWorkshop     commands.ArriveWorkshopCommandHandler
	CreateCourier      commands.CreateCourierCommandHandler
	UpdateCourier      commands.UpdateCourierCommandHandler

	GetOrder        queries.GetOrderQueryHandler
	TrackOrder      queries.TrackOrderQueryHandler
	ListOrders      queries.ListOrdersQueryHandler
	GetAllCouriers  queries.GetAllCouriersQueryHandler
	CourierQueue    queries.CourierQueueQueryHandler
	SuggestCouriers queries.SuggestCouriersQueryHandler
}

// Server implements ServerInterface on top of the application use cases.
type Server struct {
	h      Handlers
	images ports.ImageStore
	logger *slog.Logger
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(h Handlers, images ports.ImageStore, logger *slog.Logger) *Server {
	return &Server{
		h:      h,
		images: images,
		logger: logger.With("component", "http"),
	}
}

// bind decodes and validates the request body.
func (s *Server) bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("request body", err)
	}
	if err := c.Validate(dst); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("request body", err)
	}
	return nil
}

// CreateOrder handles POST /api/v1/orders.
func (s *Server) CreateOrder(c echo.Context) error {
	var req createOrderRequest
	if err := s.bind(c, &req); err != nil {
		return s.problem(c, err)
	}
	items, err := toItems(req.Items)
	if err != nil {
		return s.problem(c, err)
	}
	point, err := kernel.NewGeoPoint(req.Pickup.Lat, req.Pickup.Lng)
	if err != nil {
		return s.problem(c, err)
	}

	cmd, err := commands.NewCreateOrderCommand(
		actorFrom(c),
		order.CustomerInfo{Name: req.Customer.Name, Phone: req.Customer.Phone},
		req.ServiceType,
		items,
		order.PickupLocation{Address: req.Pickup.Address, Point: point, DeliveryFee: req.Pickup.DeliveryFee},
		req.UsePoints,
	)
	if err != nil {
		return s.problem(c, err)
	}

	created, err := s.h.CreateOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.problem(c, err)
	}
	return ok(c, http.StatusCreated, map[string]any{
		"id":          created.ID.String(),
		"orderNumber": created.Number,
		"finalAmount": created.FinalAmount,
	})
}

// ListOrders handles GET /api/v1/orders. Statuses may repeat or be comma separated.
func (s *Server) ListOrders(c echo.Context, params ListOrdersParams) error {
	var statuses []order.Status
	if params.Status != nil {
		for _, raw := range *params.Status {
			for _, part := range strings.Split(raw, ",") {
				if part = strings.TrimSpace(part); part == "" {
					continue
				}
				st, err := order.ParseStatus(part)
				if err != nil {
					return s.problem(c, err)
				}
				statuses = append(statuses, st)
			}
		}
	}
	query, err := queries.NewListOrdersQuery(statuses, actorFrom(c))
	if err != nil {
		return s.problem(c, err)
	}
	orders, err := s.h.ListOrders.Handle(c.Request().Context(), query)
	if err != nil {
		return s.problem(c, err)
	}
	return ok(c, http.StatusOK, fromSummaries(orders))
}

// TrackOrder handles GET /api/v1/orders/track/{number}.
func (s *Server) TrackOrder(c echo.Context, number string) error {
	query, err := queries.NewTrackOrderQuery(number)
	if err != nil {
		return s.problem(c, err)
	}
	view, err := s.h.TrackOrder.Handle(c.Request().Context(), query)
	if err != nil {
		return s.problem(c, err)
	}
	return ok(c, http.StatusOK, fromTrackingView(view))
}

// GetOrder handles GET /api/v1/orders/{orderId}.
func (s *Server) GetOrder(c echo.Context, orderID openapi_types.UUID) error {
	id, err := toUUID("orderId", orderID)
	if err != nil {
		return s.problem(c, err)
	}
	query, err := queries.NewGetOrderQuery(id, actorFrom(c))
	if err != nil {
		return s.problem(c, err)
	}
	view, err := s.h.GetOrder.Handle(c.Request().Context(), query)
	if err != nil {
		return s.problem(c, err)
	}
	return ok(c, http.StatusOK, fromOrderView(view))
}

// SubmitPaymentProof handles POST /api/v1/orders/{orderId}/payment-proof. The image is
// stored first; it is removed again when the order refuses the proof.
func (s *Server) SubmitPaymentProof(c echo.Context, orderID openapi_types.UUID) error {
	id, err := toUUID("orderId", orderID)
	if err != nil {
		return s.problem(c, err)
	}
	ctx := c.Request().Context()
	url, err := s.upload(c)
	if err != nil {
		return s.problem(c, err)
	}

	cmd, err := commands.NewSubmitPaymentProofCommand(id, url, actorFrom(c))
	if err == nil {
		err = s.h.SubmitPaymentProof.Handle(ctx, cmd)
	}
	if err != nil {
		s.discard(ctx, url)
		return s.problem(c, err)
	}
	return ok(c, http.StatusOK, map[string]string{"proofImage": url})
}

// ConfirmPayment handles POST /api/v1/orders/{orderId}/confirm.
func (s *Server) ConfirmPayment(c echo.Context, orderID openapi_types.UUID) error {
	id, err := toUUID("orderId", orderID)
	if err != nil {
		return s.problem(c, err)
	}
	cmd, err := commands.NewConfirmPaymentCommand(id, actorFrom(c))
	if err != nil {
		return s.problem(c, err)
	}
	if err = s.h.ConfirmPayment.Handle(c.Request().Context(), cmd); err != nil {
		return s.problem(c, err)
	}
	return s.respondOrder(c, id)
}

// RejectOrder handles POST /api/v1/orders/{orderId}/reject.
func (s *Server) RejectOrder(c echo.Context, orderID openapi_types.UUID) error {
	id, err := toUUID("orderId", orderID)
	if err != nil {
		return s.problem(c, err)
	}
	var req rejectOrderRequest
	if err = s.bind(c, &req); err != nil {
		return s.problem(c, err)
	}
	cmd, err := commands.NewRejectOrderCommand(id, req.Reason, actorFrom(c))
	if err != nil {
		return s.problem(c, err)
	}
	if err = s.h.RejectOrder.Handle(c.Request().Context(), cmd); err != nil {
		return s.problem(c, err)
	}
	return s.respondOrder(c, id)
}

// EditOrderItems handles PUT /api/v1/orders/{orderId}/items.
func (s *Server) EditOrderItems(c echo.Context, orderID openapi_types.UUID) error {
	id, err := toUUID("orderId", orderID)
	if err != nil {
		return s.problem(c, err)
	}
	var req editItemsRequest
	if err = s.bind(c, &req); err != nil {
		return s.problem(c, err)
	}
	items, err := toItems(req.Items)
	if err != nil {
		return s.problem(c, err)
	}
	cmd, err := commands.NewEditOrderItemsCommand(id, items, req.Reason, actorFrom(c))
	if err != nil {
		return s.problem(c, err)
	}
	if err = s.h.EditOrderItems.Handle(c.Request().Context(), cmd); err != nil {
		return s.problem(c, err)
	}
	return s.respondOrder(c, id)
}

// AdvanceStatus handles POST /api/v1/orders/{orderId}/status.
func (s *Server) AdvanceStatus(c echo.Context, orderID openapi_types.UUID) error {
	id, err := toUUID("orderId", orderID)
	if err != nil {
		return s.problem(c, err)
	}
	var req advanceStatusRequest
	if err = s.bind(c, &req); err != nil {
		return s.problem(c, err)
	}
	location, err := toPoint(req.Location)
	if err != nil {
		return s.problem(c, err)
	}
	progress := order.Progress{Notes: req.Notes, Proof: req.Proof, Location: location}
	cmd, err := commands.NewAdvanceStatusCommand(id, req.Status, progress, actorFrom(c))
	if err != nil {
		return s.problem(c, err)
	}
	if err = s.h.AdvanceStatus.Handle(c.Request().Context(), cmd); err != nil {
		return s.problem(c, err)
	}
	return s.respondOrder(c, id)
}

// AssignCourier handles POST /api/v1/orders/{orderId}/assign. Without a courierId the
// nearest available courier is chosen.
func (s *Server) AssignCourier(c echo.Context, orderID openapi_types.UUID) error {
	id, err := toUUID("orderId", orderID)
	if err != nil {
		return s.problem(c, err)
	}
	var req assignCourierRequest
	if err = s.bind(c, &req); err != nil {
		return s.problem(c, err)
	}
	var courierID *kernel.UUID
	if req.CourierID != nil {
		cid, convErr := toUUID("courierId", *req.CourierID)
		if convErr != nil {
			return s.problem(c, convErr)
		}
		courierID = &cid
	}
	cmd, err := commands.NewAssignCourierCommand(id, courierID, req.Notes, actorFrom(c))
	if err != nil {
		return s.problem(c, err)
	}
	return s.assign(c, cmd)
}

// ForceAssignCourier handles POST /api/v1/orders/{orderId}/force-assign.
func (s *Server) ForceAssignCourier(c echo.Context, orderID openapi_types.UUID) error {
	id, err := toUUID("orderId", orderID)
	if err != nil {
		return s.problem(c, err)
	}
	var req forceAssignCourierRequest
	if err = s.bind(c, &req); err != nil {
		return s.problem(c, err)
	}
	courierID, err := toUUID("courierId", req.CourierID)
	if err != nil {
		return s.problem(c, err)
	}
	cmd, err := commands.NewForceAssignCourierCommand(id, courierID, req.Notes, actorFrom(c))
	if err != nil {
		return s.problem(c, err)
	}
	return s.assign(c, cmd)
}

func (s *Server) assign(c echo.Context, cmd commands.AssignCourierCommand) error {
	assigned, err := s.h.AssignCourier.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.problem(c, err)
	}
	return ok(c, http.StatusOK, map[string]string{
		"courierId": assigned.CourierID.String(),
		"offerId":   assigned.OfferID.String(),
	})
}

// OfferOrder handles POST /api/v1/orders/{orderId}/offers.
func (s *Server) OfferOrder(c echo.Context, orderID openapi_types.UUID) error {
	id, err := toUUID("orderId", orderID)
	if err != nil {
		return s.problem(c, err)
	}
	var req offerOrderRequest
	if err = s.bind(c, &req); err != nil {
		return s.problem(c, err)
	}
	courierIDs, err := toUUIDs("courierIds", req.CourierIDs)
	if err != nil {
		return s.problem(c, err)
	}
	cmd, err := commands.NewOfferOrderCommand(id, courierIDs, req.Notes, actorFrom(c))
	if err != nil {
		return s.problem(c, err)
	}
	offers, err := s.h.OfferOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.problem(c, err)
	}
	return ok(c, http.StatusCreated, fromOffers(offers))
}

// SuggestCouriers handles GET /api/v1/orders/{orderId}/courier-suggestions.
func (s *Server) SuggestCouriers(c echo.Context, orderID openapi_types.UUID, params SuggestCouriersParams) error {
	id, err := toUUID("orderId", orderID)
	if err != nil {
		return s.problem(c, err)
	}
	limit := 0
	if params.Limit != nil {
		limit = *params.Limit
	}
	query, err := queries.NewSuggestCouriersQuery(id, limit, actorFrom(c))
	if err != nil {
		return s.problem(c, err)
	}
	suggestions, err := s.h.SuggestCouriers.Handle(c.Request().Context(), query)
	if err != nil {
		return s.problem(c, err)
	}
	resp := make([]suggestionResponse, len(suggestions))
	for i, sg := range suggestions {
		resp[i] = suggestionResponse{Courier: fromCourier(sg.Courier), DistanceKm: sg.DistanceKm}
	}
	return ok(c, http.StatusOK, resp)
}

// AcceptOffer handles POST /api/v1/orders/{orderId}/accept.
func (s *Server) AcceptOffer(c echo.Context, orderID openapi_types.UUID) error {
	id, err := toUUID("orderId", orderID)
	if err != nil {
		return s.problem(c, err)
	}
	cmd, err := commands.NewAcceptOfferCommand(id, actorFrom(c))
	if err != nil {
		return s.problem(c, err)
	}
	if err = s.h.AcceptOffer.Handle(c.Request().Context(), cmd); err != nil {
		return s.problem(c, err)
	}
	return s.respondOrder(c, id)
}

// DeclineOffer handles POST /api/v1/orders/{orderId}/decline.
func (s *Server) DeclineOffer(c echo.Context, orderID openapi_types.UUID) error {
	id, err := toUUID("orderId", orderID)
	if err != nil {
		return s.problem(c, err)
	}
	cmd, err := commands.NewDeclineOfferCommand(id, actorFrom(c))
	if err != nil {
		return s.problem(c, err)
	}
	if err = s.h.DeclineOffer.Handle(c.Request().Context(), cmd); err != nil {
		return s.problem(c, err)
	}
	return ok(c, http.StatusOK, nil)
}

// StartPickup handles POST /api/v1/orders/{orderId}/start-pickup.
func (s *Server) StartPickup(c echo.Context, orderID openapi_types.UUID) error {
	id, err := toUUID("orderId", orderID)
	if err != nil {
		return s.problem(c, err)
	}
	var req startPickupRequest
	if err = s.bind(c, &req); err != nil {
		return s.problem(c, err)
	}
	location, err := toPoint(req.Location)
	if err != nil {
		return s.problem(c, err)
	}
	cmd, err := commands.NewStartPickupCommand(id, location, actorFrom(c))
	if err != nil {
		return s.problem(c, err)
	}
	if err = s.h.StartPickup.Handle(c.Request().Context(), cmd); err != nil {
		return s.problem(c, err)
	}
	return s.respondOrder(c, id)
}

// ContactCustomer handles POST /api/v1/orders/{orderId}/contact-customer.
func (s *Server) ContactCustomer(c echo.Context, orderID openapi_types.UUID) error {
	id, err := toUUID("orderId", orderID)
	if err != nil {
		return s.problem(c, err)
	}
	var req contactCustomerRequest
	if err = s.bind(c, &req); err != nil {
		return s.problem(c, err)
	}
	cmd, err := commands.NewContactCustomerCommand(id, req.Notes, actorFrom(c))
	if err != nil {
		return s.problem(c, err)
	}
	if err = s.h.ContactCustomer.Handle(c.Request().Context(), cmd); err != nil {
		return s.problem(c, err)
	}
	return s.respondOrder(c, id)
}

// UploadPickupProof handles POST /api/v1/orders/{orderId}/pickup-proof.
func (s *Server) UploadPickupProof(c echo.Context, orderID openapi_types.UUID) error {
	id, err := toUUID("orderId", orderID)
	if err != nil {
		return s.problem(c, err)
	}
	location, err := formPoint(c)
	if err != nil {
		return s.problem(c, err)
	}
	ctx := c.Request().Context()
	url, err := s.upload(c)
	if err != nil {
		return s.problem(c, err)
	}

	cmd, err := commands.NewUploadPickupProofCommand(id, url, c.FormValue("notes"), location, actorFrom(c))
	if err == nil {
		err = s.h.UploadPickupProof.Handle(ctx, cmd)
	}
	if err != nil {
		s.discard(ctx, url)
		return s.problem(c, err)
	}
	return s.respondOrder(c, id)
}

// ArriveWorkshop handles POST /api/v1/orders/{orderId}/arrive-workshop.
func (s *Server) ArriveWorkshop(c echo.Context, orderID openapi_types.UUID) error {
	id, err := toUUID("orderId", orderID)
	if err != nil {
		return s.problem(c, err)
	}
	var req arriveWorkshopRequest
	if err = s.bind(c, &req); err != nil {
		return s.problem(c, err)
	}
	location, err := toPoint(req.Location)
	if err != nil {
		return s.problem(c, err)
	}
	cmd, err := commands.NewArriveWorkshopCommand(id, req.Notes, location, actorFrom(c))
	if err != nil {
		return s.problem(c, err)
	}
	if err = s.h.ArriveWorkshop.Handle(c.Request().Context(), cmd); err != nil {
		return s.problem(c, err)
	}
	return s.respondOrder(c, id)
}

// ListCustomerOrders handles GET /api/v1/customers/{customerId}/orders.
func (s *Server) ListCustomerOrders(c echo.Context, customerID openapi_types.UUID) error {
	id, err := toUUID("customerId", customerID)
	if err != nil {
		return s.problem(c, err)
	}
	query, err := queries.NewListCustomerOrdersQuery(id, actorFrom(c))
	if err != nil {
		return s.problem(c, err)
	}
	orders, err := s.h.ListOrders.Handle(c.Request().Context(), query)
	if err != nil {
		return s.problem(c, err)
	}
	return ok(c, http.StatusOK, fromSummaries(orders))
}

// GetCouriers handles GET /api/v1/couriers.
func (s *Server) GetCouriers(c echo.Context, params GetCouriersParams) error {
	availableOnly := params.Available != nil && *params.Available
	couriers, err := s.h.GetAllCouriers.Handle(c.Request().Context(), queries.NewGetAllCouriersQuery(availableOnly, actorFrom(c)))
	if err != nil {
		return s.problem(c, err)
	}
	resp := make([]courierResponse, len(couriers))
	for i, cv := range couriers {
		resp[i] = fromCourier(cv)
	}
	return ok(c, http.StatusOK, resp)
}

// CreateCourier handles POST /api/v1/couriers. The courier shares its id with the user
// account of the courier.
func (s *Server) CreateCourier(c echo.Context) error {
	if err := actorFrom(c).Require(actor.RoleAdmin); err != nil {
		return s.problem(c, err)
	}
	var req createCourierRequest
	if err := s.bind(c, &req); err != nil {
		return s.problem(c, err)
	}
	id, err := toUUID("userId", req.UserID)
	if err != nil {
		return s.problem(c, err)
	}
	cmd, err := commands.NewCreateCourierCommand(id, req.Name, req.Phone)
	if err != nil {
		return s.problem(c, err)
	}
	if err = s.h.CreateCourier.Handle(c.Request().Context(), cmd); err != nil {
		return s.problem(c, err)
	}
	return ok(c, http.StatusCreated, map[string]string{"id": id.String()})
}

// UpdateCourier handles PATCH /api/v1/couriers/{courierId}.
func (s *Server) UpdateCourier(c echo.Context, courierID openapi_types.UUID) error {
	id, err := toUUID("courierId", courierID)
	if err != nil {
		return s.problem(c, err)
	}
	var req updateCourierRequest
	if err = s.bind(c, &req); err != nil {
		return s.problem(c, err)
	}
	location, err := toPoint(req.Location)
	if err != nil {
		return s.problem(c, err)
	}
	cmd, err := commands.NewUpdateCourierCommand(id, req.IsAvailable, location, actorFrom(c))
	if err != nil {
		return s.problem(c, err)
	}
	if err = s.h.UpdateCourier.Handle(c.Request().Context(), cmd); err != nil {
		return s.problem(c, err)
	}
	return ok(c, http.StatusOK, nil)
}

// GetCourierQueue handles GET /api/v1/couriers/{courierId}/queue.
func (s *Server) GetCourierQueue(c echo.Context, courierID openapi_types.UUID) error {
	id, err := toUUID("courierId", courierID)
	if err != nil {
		return s.problem(c, err)
	}
	query, err := queries.NewCourierQueueQuery(id, actorFrom(c))
	if err != nil {
		return s.problem(c, err)
	}
	queue, err := s.h.CourierQueue.Handle(c.Request().Context(), query)
	if err != nil {
		return s.problem(c, err)
	}
	return ok(c, http.StatusOK, fromQueue(queue))
}

// respondOrder answers a command with the order as the caller may see it.
func (s *Server) respondOrder(c echo.Context, id kernel.UUID) error {
	query, err := queries.NewGetOrderQuery(id, actorFrom(c))
	if err != nil {
		return s.problem(c, err)
	}
	view, err := s.h.GetOrder.Handle(c.Request().Context(), query)
	if err != nil {
		return s.problem(c, err)
	}
	return ok(c, http.StatusOK, fromOrderView(view))
}

func (s *Server) upload(c echo.Context) (string, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		return "", errs.NewValueIsRequiredErrorWithCause("image", err)
	}
	f, err := fh.Open()
	if err != nil {
		return "", errs.NewValueIsInvalidErrorWithCause("image", err)
	}
	defer f.Close()
	return s.images.Upload(c.Request().Context(), fh.Filename, f)
}

func (s *Server) discard(ctx context.Context, url string) {
	if err := s.images.Delete(ctx, url); err != nil {
		s.logger.WarnContext(ctx, "failed to delete unused image", "url", url, "error", err)
	}
}

// formPoint reads optional lat/lng form fields.
func formPoint(c echo.Context) (*kernel.GeoPoint, error) {
	rawLat, rawLng := c.FormValue("lat"), c.FormValue("lng")
	if rawLat == "" && rawLng == "" {
		return nil, nil
	}
	lat, err := strconv.ParseFloat(rawLat, 64)
	if err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("lat", err)
	}
	lng, err := strconv.ParseFloat(rawLng, 64)
	if err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("lng", err)
	}
	p, err := kernel.NewGeoPoint(lat, lng)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
