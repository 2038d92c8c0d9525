package http

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// BaseURL is the prefix of every API route.
const BaseURL = "/api/v1"

// ListOrdersParams defines parameters for ListOrders.
type ListOrdersParams struct {
	Status *[]string `form:"status,omitempty" json:"status,omitempty"`
}

// SuggestCouriersParams defines parameters for SuggestCouriers.
type SuggestCouriersParams struct {
	Limit *int `form:"limit,omitempty" json:"limit,omitempty"`
}

// GetCouriersParams defines parameters for GetCouriers.
type GetCouriersParams struct {
	Available *bool `form:"available,omitempty" json:"available,omitempty"`
}

// ServerInterface represents all server handlers of api/openapi.yaml.
type ServerInterface interface {
	// (POST /orders)
	CreateOrder(ctx echo.Context) error
	// (GET /orders)
	ListOrders(ctx echo.Context, params ListOrdersParams) error
	// (GET /orders/track/{number})
	TrackOrder(ctx echo.Context, number string) error
	// (GET /orders/{orderId})
	GetOrder(ctx echo.Context, orderID openapi_types.UUID) error
	// (POST /orders/{orderId}/payment-proof)
	SubmitPaymentProof(ctx echo.Context, orderID openapi_types.UUID) error
	// (POST /orders/{orderId}/confirm)
	ConfirmPayment(ctx echo.Context, orderID openapi_types.UUID) error
	// (POST /orders/{orderId}/reject)
	RejectOrder(ctx echo.Context, orderID openapi_types.UUID) error
	// (PUT /orders/{orderId}/items)
	EditOrderItems(ctx echo.Context, orderID openapi_types.UUID) error
	// (POST /orders/{orderId}/status)
	AdvanceStatus(ctx echo.Context, orderID openapi_types.UUID) error
	// (POST /orders/{orderId}/assign)
	AssignCourier(ctx echo.Context, orderID openapi_types.UUID) error
	// (POST /orders/{orderId}/force-assign)
	ForceAssignCourier(ctx echo.Context, orderID openapi_types.UUID) error
	// (POST /orders/{orderId}/offers)
	OfferOrder(ctx echo.Context, orderID openapi_types.UUID) error
	// (GET /orders/{orderId}/courier-suggestions)
	SuggestCouriers(ctx echo.Context, orderID openapi_types.UUID, params SuggestCouriersParams) error
	// (POST /orders/{orderId}/accept)
	AcceptOffer(ctx echo.Context, orderID openapi_types.UUID) error
	// (POST /orders/{orderId}/decline)
	DeclineOffer(ctx echo.Context, orderID openapi_types.UUID) error
	// (POST /orders/{orderId}/start-pickup)
	StartPickup(ctx echo.Context, orderID openapi_types.UUID) error
	// (POST /orders/{orderId}/contact-customer)
	ContactCustomer(ctx echo.Context, orderID openapi_types.UUID) error
	// (POST /orders/{orderId}/pickup-proof)
	UploadPickupProof(ctx echo.Context, orderID openapi_types.UUID) error
	// (POST /orders/{orderId}/arrive-workshop)
	ArriveWorkshop(ctx echo.Context, orderID openapi_types.UUID) error
	// (GET /customers/{customerId}/orders)
	ListCustomerOrders(ctx echo.Context, customerID openapi_types.UUID) error
	// (GET /couriers)
	GetCouriers(ctx echo.Context, params GetCouriersParams) error
	// (POST /couriers)
	CreateCourier(ctx echo.Context) error
	// (PATCH /couriers/{courierId})
	UpdateCourier(ctx echo.Context, courierID openapi_types.UUID) error
	// (GET /couriers/{courierId}/queue)
	GetCourierQueue(ctx echo.Context, courierID openapi_types.UUID) error
}

// ServerInterfaceWrapper converts echo contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

type uuidHandler func(ctx echo.Context, id openapi_types.UUID) error

func bindUUID(ctx echo.Context, name string) (openapi_types.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, ctx.Param(name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return id, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter %s: %s", name, err))
	}
	return id, nil
}

func withUUID(name string, next uuidHandler) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		id, err := bindUUID(ctx, name)
		if err != nil {
			return err
		}
		return next(ctx, id)
	}
}

// ListOrders converts echo context to params.
func (w *ServerInterfaceWrapper) ListOrders(ctx echo.Context) error {
	var params ListOrdersParams
	if err := runtime.BindQueryParameter("form", true, false, "status", ctx.QueryParams(), &params.Status); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter status: %s", err))
	}
	return w.Handler.ListOrders(ctx, params)
}

// TrackOrder converts echo context to params.
func (w *ServerInterfaceWrapper) TrackOrder(ctx echo.Context) error {
	var number string
	err := runtime.BindStyledParameterWithOptions("simple", "number", ctx.Param("number"), &number,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter number: %s", err))
	}
	return w.Handler.TrackOrder(ctx, number)
}

// SuggestCouriers converts echo context to params.
func (w *ServerInterfaceWrapper) SuggestCouriers(ctx echo.Context) error {
	orderID, err := bindUUID(ctx, "orderId")
	if err != nil {
		return err
	}
	var params SuggestCouriersParams
	if err = runtime.BindQueryParameter("form", true, false, "limit", ctx.QueryParams(), &params.Limit); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter limit: %s", err))
	}
	return w.Handler.SuggestCouriers(ctx, orderID, params)
}

// GetCouriers converts echo context to params.
func (w *ServerInterfaceWrapper) GetCouriers(ctx echo.Context) error {
	var params GetCouriersParams
	if err := runtime.BindQueryParameter("form", true, false, "available", ctx.QueryParams(), &params.Available); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter available: %s", err))
	}
	return w.Handler.GetCouriers(ctx, params)
}

// EchoRouter is the subset of echo.Echo and echo.Group used for registration.
type EchoRouter interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PATCH(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers adds each server route to the EchoRouter under BaseURL.
func RegisterHandlers(router EchoRouter, si ServerInterface) {
	RegisterHandlersWithBaseURL(router, si, BaseURL)
}

// RegisterHandlersWithBaseURL registers the routes with a custom prefix.
func RegisterHandlersWithBaseURL(router EchoRouter, si ServerInterface, baseURL string) {
	w := ServerInterfaceWrapper{Handler: si}

	router.POST(baseURL+"/orders", si.CreateOrder)
	router.GET(baseURL+"/orders", w.ListOrders)
	router.GET(baseURL+"/orders/track/:number", w.TrackOrder)
	router.GET(baseURL+"/orders/:orderId", withUUID("orderId", si.GetOrder))
	router.POST(baseURL+"/orders/:orderId/payment-proof", withUUID("orderId", si.SubmitPaymentProof))
	router.POST(baseURL+"/orders/:orderId/confirm", withUUID("orderId", si.ConfirmPayment))
	router.POST(baseURL+"/orders/:orderId/reject", withUUID("orderId", si.RejectOrder))
	router.PUT(baseURL+"/orders/:orderId/items", withUUID("orderId", si.EditOrderItems))
	router.POST(baseURL+"/orders/:orderId/status", withUUID("orderId", si.AdvanceStatus))
	router.POST(baseURL+"/orders/:orderId/assign", withUUID("orderId", si.AssignCourier))
	router.POST(baseURL+"/orders/:orderId/force-assign", withUUID("orderId", si.ForceAssignCourier))
	router.POST(baseURL+"/orders/:orderId/offers", withUUID("orderId", si.OfferOrder))
	router.GET(baseURL+"/orders/:orderId/courier-suggestions", w.SuggestCouriers)
	router.POST(baseURL+"/orders/:orderId/accept", withUUID("orderId", si.AcceptOffer))
	router.POST(baseURL+"/orders/:orderId/decline", withUUID("orderId", si.DeclineOffer))
	router.POST(baseURL+"/orders/:orderId/start-pickup", withUUID("orderId", si.StartPickup))
	router.POST(baseURL+"/orders/:orderId/contact-customer", withUUID("orderId", si.ContactCustomer))
	router.POST(baseURL+"/orders/:orderId/pickup-proof", withUUID("orderId", si.UploadPickupProof))
	router.POST(baseURL+"/orders/:orderId/arrive-workshop", withUUID("orderId", si.ArriveWorkshop))
	router.GET(baseURL+"/customers/:customerId/orders", withUUID("customerId", si.ListCustomerOrders))
	router.GET(baseURL+"/couriers", w.GetCouriers)
	router.POST(baseURL+"/couriers", si.CreateCourier)
	router.PATCH(baseURL+"/couriers/:courierId", withUUID("courierId", si.UpdateCourier))
	router.GET(baseURL+"/couriers/:courierId/queue", withUUID("courierId", si.GetCourierQueue))
}
