package order_test

import (
	"testing"
	"time"

	"shoecare/internal/core/domain/model/actor"
	"shoecare/internal/core/domain/model/kernel"
	"shoecare/internal/core/domain/model/order"
	"shoecare/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourierQueue(t *testing.T) {
	at := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	t.Run("should fan out to several couriers", func(t *testing.T) {
		var q order.CourierQueue
		c1, c2 := kernel.NewUUID(), kernel.NewUUID()

		_, err := q.Offer(c1, order.LegPickup, "admin", "", at)
		require.NoError(t, err)
		_, err = q.Offer(c2, order.LegPickup, "admin", "", at)
		require.NoError(t, err)

		assert.Len(t, q.Offers(), 2)
		assert.Len(t, q.NewOffers(), 2)
	})

	t.Run("should refuse a second pending offer for the same courier", func(t *testing.T) {
		var q order.CourierQueue
		c := kernel.NewUUID()
		_, err := q.Offer(c, order.LegPickup, "admin", "", at)
		require.NoError(t, err)

		_, err = q.Offer(c, order.LegPickup, "admin", "", at)

		assert.ErrorIs(t, err, errs.ErrDuplicateOffer)
		assert.Len(t, q.Offers(), 1)
	})

	t.Run("should allow a new offer after rejection", func(t *testing.T) {
		var q order.CourierQueue
		c := kernel.NewUUID()
		_, err := q.Offer(c, order.LegPickup, "admin", "", at)
		require.NoError(t, err)
		_, err = q.Reject(c)
		require.NoError(t, err)

		_, err = q.Offer(c, order.LegPickup, "admin", "", at)
		assert.NoError(t, err)
	})

	t.Run("should accept at most one offer", func(t *testing.T) {
		var q order.CourierQueue
		c1, c2 := kernel.NewUUID(), kernel.NewUUID()
		_, _ = q.Offer(c1, order.LegPickup, "admin", "", at)
		_, _ = q.Offer(c2, order.LegPickup, "admin", "", at)

		accepted, err := q.Accept(c1, order.LegPickup, at)
		require.NoError(t, err)
		assert.Equal(t, order.OfferAccepted, accepted.Status)
		assert.Equal(t, at, *accepted.AcceptedAt)

		_, err = q.Accept(c2, order.LegPickup, at)
		assert.ErrorIs(t, err, errs.ErrAlreadyAssigned)

		pending, ok := q.PendingFor(c2)
		assert.True(t, ok)
		assert.Equal(t, order.OfferPending, pending.Status)
	})

	t.Run("should not accept without a pending offer", func(t *testing.T) {
		var q order.CourierQueue
		_, err := q.Accept(kernel.NewUUID(), order.LegPickup, at)
		assert.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("should not accept an offer of another leg", func(t *testing.T) {
		var q order.CourierQueue
		c := kernel.NewUUID()
		_, _ = q.Offer(c, order.LegPickup, "admin", "", at)

		_, err := q.Accept(c, order.LegDelivery, at)
		assert.ErrorIs(t, err, errs.ErrInvalidState)
	})

	t.Run("should require a courier id", func(t *testing.T) {
		var q order.CourierQueue
		_, err := q.Offer(kernel.UUID{}, order.LegPickup, "admin", "", at)
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestOrder_FanOutAcceptance(t *testing.T) {
	c1, c2 := kernel.NewUUID(), kernel.NewUUID()
	o := confirmedOrder(t)

	_, err := o.OfferCourier(c1, "", admin)
	require.NoError(t, err)
	_, err = o.OfferCourier(c2, "", admin)
	require.NoError(t, err)
	assert.Equal(t, order.Confirmed, o.Status())

	require.NoError(t, o.AcceptOffer(courierActor(c2)))
	err = o.AcceptOffer(courierActor(c1))

	assert.ErrorIs(t, err, errs.ErrAlreadyAssigned)
	require.NotNil(t, o.ActiveCourier())
	assert.True(t, o.ActiveCourier().CourierID.IsEqual(c2))
	accepted := 0
	for _, offer := range o.Queue() {
		if offer.Status == order.OfferAccepted {
			accepted++
			assert.True(t, offer.CourierID.IsEqual(c2))
		}
	}
	assert.Equal(t, 1, accepted)
}

func TestOrder_OfferCourier(t *testing.T) {
	t.Run("should refuse offers outside an offer leg", func(t *testing.T) {
		o := newOrder(t)
		_, err := o.OfferCourier(kernel.NewUUID(), "", admin)
		assert.ErrorIs(t, err, errs.ErrInvalidState)
	})

	t.Run("should refuse offers after acceptance", func(t *testing.T) {
		c := kernel.NewUUID()
		o := confirmedOrder(t)
		_, err := o.OfferCourier(c, "", admin)
		require.NoError(t, err)
		require.NoError(t, o.AcceptOffer(courierActor(c)))

		_, err = o.OfferCourier(kernel.NewUUID(), "", admin)
		assert.ErrorIs(t, err, errs.ErrInvalidState)
	})

	t.Run("should require admin", func(t *testing.T) {
		o := confirmedOrder(t)
		c := kernel.NewUUID()
		_, err := o.OfferCourier(c, "", courierActor(c))
		assert.ErrorIs(t, err, errs.ErrForbidden)
	})
}

func TestOrder_AcceptOffer(t *testing.T) {
	t.Run("should require a courier actor with a uuid", func(t *testing.T) {
		o := confirmedOrder(t)
		assert.ErrorIs(t, o.AcceptOffer(admin), errs.ErrForbidden)
		bad := actor.Actor{ID: "not-a-uuid", Role: actor.RoleCourier}
		assert.ErrorIs(t, o.AcceptOffer(bad), errs.ErrValueIsInvalid)
	})

	t.Run("should fail without a pending offer", func(t *testing.T) {
		o := confirmedOrder(t)
		assert.ErrorIs(t, o.AcceptOffer(courierActor(kernel.NewUUID())), errs.ErrObjectNotFound)
	})

	t.Run("should fail before confirmation", func(t *testing.T) {
		o := newOrder(t)
		assert.ErrorIs(t, o.AcceptOffer(courierActor(kernel.NewUUID())), errs.ErrInvalidState)
	})
}

func TestOrder_DeclineOffer(t *testing.T) {
	c := kernel.NewUUID()
	o := confirmedOrder(t)
	_, err := o.OfferCourier(c, "", admin)
	require.NoError(t, err)

	require.NoError(t, o.DeclineOffer(courierActor(c)))

	assert.Equal(t, order.OfferRejected, o.Queue()[0].Status)
	assert.ErrorIs(t, o.DeclineOffer(courierActor(c)), errs.ErrObjectNotFound)
	assert.ErrorIs(t, o.AcceptOffer(courierActor(c)), errs.ErrObjectNotFound)
}
