package order_test

import (
	"testing"

	"shoecare/internal/core/domain/model/actor"
	"shoecare/internal/core/domain/model/kernel"
	"shoecare/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	admin    = actor.Actor{ID: "admin-1", Name: "Admin", Role: actor.RoleAdmin}
	tech     = actor.Actor{ID: "tech-1", Name: "Tech", Role: actor.RoleTechnician}
	qc       = actor.Actor{ID: "qc-1", Name: "QC", Role: actor.RoleQC}
	customer = actor.Actor{ID: "", Name: "Guest", Role: actor.RoleCustomer}
)

func courierActor(id kernel.UUID) actor.Actor {
	return actor.Actor{ID: id.String(), Name: "Courier " + id.String()[:4], Role: actor.RoleCourier}
}

func newParams(t *testing.T) order.NewOrderParams {
	t.Helper()
	point, err := kernel.NewGeoPoint(-6.2, 106.8)
	require.NoError(t, err)
	return order.NewOrderParams{
		Number:      "SC-20260101-ABC123",
		Customer:    order.CustomerInfo{Name: "Budi", Phone: "08123"},
		ServiceType: "deep_clean",
		Items:       []order.Item{{Name: "Sneakers", Price: 50000, Quantity: 2}},
		Pickup:      order.PickupLocation{Address: "Jl. Sudirman 1", Point: point, DeliveryFee: 5000},
		LoyaltyRate: decimal.RequireFromString("0.01"),
		By:          customer,
	}
}

func newOrder(t *testing.T) *order.Order {
	t.Helper()
	o, err := order.NewOrder(newParams(t))
	require.NoError(t, err)
	return o
}

// confirmedOrder returns an order that went through proof submission and confirmation.
func confirmedOrder(t *testing.T) *order.Order {
	t.Helper()
	o := newOrder(t)
	require.NoError(t, o.SubmitPaymentProof("/uploads/proof.jpg", customer))
	require.NoError(t, o.Confirm(admin))
	return o
}

// pickingUpOrder returns an order in pickup_in_progress bound to courierID.
func pickingUpOrder(t *testing.T, courierID kernel.UUID) *order.Order {
	t.Helper()
	o := confirmedOrder(t)
	_, err := o.AssignCourier(courierID, "", admin)
	require.NoError(t, err)
	require.NoError(t, o.AcceptOffer(courierActor(courierID)))
	return o
}

func assertLastEntryMatchesStatus(t *testing.T, o *order.Order) {
	t.Helper()
	history := o.StatusHistory()
	require.NotEmpty(t, history)
	require.Equal(t, o.Status(), history[len(history)-1].Status)
}
