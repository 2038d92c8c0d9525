package services_test

import (
	"testing"

	"shoecare/internal/core/domain/model/actor"
	"shoecare/internal/core/domain/model/courier"
	"shoecare/internal/core/domain/model/kernel"
	"shoecare/internal/core/domain/model/order"
	"shoecare/internal/core/domain/services"
	"shoecare/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var admin = actor.Actor{ID: "admin-1", Name: "Admin", Role: actor.RoleAdmin}

func courierActor(c *courier.Courier) actor.Actor {
	return actor.Actor{ID: c.ID().String(), Name: c.Name(), Role: actor.RoleCourier}
}

func newCourier(t *testing.T, name string, lat, lng float64) *courier.Courier {
	t.Helper()
	c, err := courier.NewCourier(kernel.NewUUID(), name, "0812")
	require.NoError(t, err)
	p, err := kernel.NewGeoPoint(lat, lng)
	require.NoError(t, err)
	require.NoError(t, c.UpdateLocation(p))
	return c
}

func confirmedOrder(t *testing.T) *order.Order {
	t.Helper()
	point, err := kernel.NewGeoPoint(-6.2, 106.8)
	require.NoError(t, err)
	o, err := order.NewOrder(order.NewOrderParams{
		Number:      "SC-20260101-AAAAAA",
		Customer:    order.CustomerInfo{Name: "Budi", Phone: "0813"},
		ServiceType: "deep_clean",
		Items:       []order.Item{{Name: "Sneakers", Price: 100000, Quantity: 1}},
		Pickup:      order.PickupLocation{Address: "Jl. Thamrin", Point: point, DeliveryFee: 5000},
		LoyaltyRate: decimal.Zero,
	})
	require.NoError(t, err)
	require.NoError(t, o.SubmitPaymentProof("/p.jpg", actor.Actor{}))
	require.NoError(t, o.Confirm(admin))
	return o
}

func TestOrderDispatcher_AssignSingle(t *testing.T) {
	dispatcher := services.NewOrderDispatcher()

	t.Run("should assign an available courier", func(t *testing.T) {
		o := confirmedOrder(t)
		c := newCourier(t, "Andi", -6.2, 106.8)

		offer, err := dispatcher.AssignSingle(o, c, "", admin)

		require.NoError(t, err)
		assert.True(t, offer.CourierID.IsEqual(c.ID()))
		assert.Equal(t, order.CourierAssigned, o.Status())
	})

	t.Run("should refuse an unavailable courier", func(t *testing.T) {
		o := confirmedOrder(t)
		c := newCourier(t, "Andi", -6.2, 106.8)
		require.NoError(t, c.SetAvailable(false))

		_, err := dispatcher.AssignSingle(o, c, "", admin)

		assert.ErrorIs(t, err, errs.ErrCourierBusy)
		assert.Equal(t, order.Confirmed, o.Status())
		assert.Empty(t, o.Queue())
	})

	t.Run("should force assign an unavailable courier", func(t *testing.T) {
		o := confirmedOrder(t)
		c := newCourier(t, "Andi", -6.2, 106.8)
		require.NoError(t, c.SetAvailable(false))

		_, err := dispatcher.ForceAssign(o, c, "backlog", admin)

		require.NoError(t, err)
		assert.Equal(t, order.CourierAssigned, o.Status())
		assert.Len(t, o.Queue(), 1)
	})
}

func TestOrderDispatcher_OfferToCouriers(t *testing.T) {
	dispatcher := services.NewOrderDispatcher()
	o := confirmedOrder(t)
	c1 := newCourier(t, "Andi", -6.2, 106.8)
	c2 := newCourier(t, "Budi", -6.3, 106.9)

	offers, err := dispatcher.OfferToCouriers(o, []*courier.Courier{c1, c2}, "", admin)

	require.NoError(t, err)
	assert.Len(t, offers, 2)
	assert.Equal(t, order.Confirmed, o.Status())

	_, err = dispatcher.OfferToCouriers(o, []*courier.Courier{c1}, "", admin)
	assert.ErrorIs(t, err, errs.ErrDuplicateOffer)

	_, err = dispatcher.OfferToCouriers(o, nil, "", admin)
	assert.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestOrderDispatcher_Accept(t *testing.T) {
	dispatcher := services.NewOrderDispatcher()

	t.Run("should bind the courier", func(t *testing.T) {
		o := confirmedOrder(t)
		c := newCourier(t, "Andi", -6.2, 106.8)
		_, err := dispatcher.AssignSingle(o, c, "", admin)
		require.NoError(t, err)

		require.NoError(t, dispatcher.Accept(o, c, nil, courierActor(c)))

		assert.Equal(t, order.PickupInProgress, o.Status())
		assert.True(t, o.IsBoundTo(c.ID()))
		assert.False(t, c.IsAvailable())
		assert.True(t, c.CurrentDeliveryID().IsEqual(o.ID()))
	})

	t.Run("should refuse a courier busy with another order", func(t *testing.T) {
		c := newCourier(t, "Andi", -6.2, 106.8)
		first := confirmedOrder(t)
		_, err := dispatcher.ForceAssign(first, c, "", admin)
		require.NoError(t, err)
		require.NoError(t, dispatcher.Accept(first, c, nil, courierActor(c)))

		second := confirmedOrder(t)
		_, err = dispatcher.ForceAssign(second, c, "", admin)
		require.NoError(t, err)

		err = dispatcher.Accept(second, c, first, courierActor(c))

		assert.ErrorIs(t, err, errs.ErrCourierBusy)
		assert.Nil(t, second.ActiveCourier())
	})

	t.Run("should refuse accepting on behalf of another courier", func(t *testing.T) {
		o := confirmedOrder(t)
		c := newCourier(t, "Andi", -6.2, 106.8)
		other := newCourier(t, "Budi", -6.2, 106.8)
		_, err := dispatcher.OfferToCouriers(o, []*courier.Courier{c}, "", admin)
		require.NoError(t, err)

		err = dispatcher.Accept(o, c, nil, courierActor(other))
		assert.ErrorIs(t, err, errs.ErrForbidden)
	})
}

func TestOrderDispatcher_Release(t *testing.T) {
	dispatcher := services.NewOrderDispatcher()
	o := confirmedOrder(t)
	c := newCourier(t, "Andi", -6.2, 106.8)
	_, err := dispatcher.AssignSingle(o, c, "", admin)
	require.NoError(t, err)
	require.NoError(t, dispatcher.Accept(o, c, nil, courierActor(c)))
	require.NoError(t, o.UploadPickupProof("/pickup.jpg", "", nil, courierActor(c)))
	out, err := o.ArriveWorkshop("", nil, courierActor(c))
	require.NoError(t, err)
	require.NotNil(t, out.ReleasedCourier)

	require.True(t, out.LegFinished)

	require.NoError(t, dispatcher.Release(o, c, out.LegFinished))

	assert.True(t, c.IsAvailable())
	assert.Nil(t, c.CurrentDeliveryID())
	assert.Equal(t, 1, c.CompletedDeliveries())
}

func TestOrderDispatcher_ReleaseAfterCancellation(t *testing.T) {
	dispatcher := services.NewOrderDispatcher()
	o := confirmedOrder(t)
	c := newCourier(t, "Andi", -6.2, 106.8)
	_, err := dispatcher.AssignSingle(o, c, "", admin)
	require.NoError(t, err)
	require.NoError(t, dispatcher.Accept(o, c, nil, courierActor(c)))
	out, err := o.Reject("stok habis", admin)
	require.NoError(t, err)
	require.NotNil(t, out.ReleasedCourier)
	require.False(t, out.LegFinished)

	require.NoError(t, dispatcher.Release(o, c, out.LegFinished))

	assert.True(t, c.IsAvailable())
	assert.Nil(t, c.CurrentDeliveryID())
	assert.Equal(t, 0, c.CompletedDeliveries())
}

func TestOrderDispatcher_RankCouriers(t *testing.T) {
	dispatcher := services.NewOrderDispatcher()
	o := confirmedOrder(t)
	far := newCourier(t, "Far", -6.9, 107.6)
	near := newCourier(t, "Near", -6.21, 106.81)
	busy := newCourier(t, "Busy", -6.2, 106.8)
	require.NoError(t, busy.SetAvailable(false))
	unknown, err := courier.NewCourier(kernel.NewUUID(), "Unknown", "0812")
	require.NoError(t, err)

	ranked, err := dispatcher.RankCouriers(o, []*courier.Courier{far, busy, unknown, near})

	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.True(t, ranked[0].Courier.IsEqual(near))
	assert.True(t, ranked[1].Courier.IsEqual(far))
	assert.Less(t, ranked[0].DistanceKm, ranked[1].DistanceKm)

	nearest, err := dispatcher.Nearest(o, []*courier.Courier{far, near})
	require.NoError(t, err)
	assert.True(t, nearest.IsEqual(near))

	_, err = dispatcher.Nearest(o, []*courier.Courier{busy})
	assert.ErrorIs(t, err, services.ErrCourierNotFound)
	assert.ErrorIs(t, err, errs.ErrObjectNotFound)
}
