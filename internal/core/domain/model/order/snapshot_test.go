package order_test

import (
	"testing"

	"shoecare/internal/core/domain/model/kernel"
	"shoecare/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrder_ChangesAfterRestore(t *testing.T) {
	c1, c2 := kernel.NewUUID(), kernel.NewUUID()
	o := confirmedOrder(t)
	_, err := o.OfferCourier(c1, "", admin)
	require.NoError(t, err)
	_, err = o.OfferCourier(c2, "", admin)
	require.NoError(t, err)

	restored, err := order.Restore(o.Snapshot())
	require.NoError(t, err)
	assert.Empty(t, restored.Changes().History)
	assert.Empty(t, restored.Changes().NewOffers)
	assert.False(t, restored.Changes().IsNew)
	assert.Equal(t, order.Confirmed, restored.Changes().ExpectedStatus)

	require.NoError(t, restored.AcceptOffer(courierActor(c1)))

	ch := restored.Changes()
	assert.Equal(t, order.Confirmed, ch.ExpectedStatus)
	require.Len(t, ch.History, 2)
	assert.Equal(t, order.CourierAssigned, ch.History[0].Status)
	assert.Equal(t, order.PickupInProgress, ch.History[1].Status)
	require.Len(t, ch.TrackingDetails, 1)
	require.Len(t, ch.ChangedOffers, 1)
	assert.Equal(t, order.OfferPending, ch.ChangedOffers[0].From)
	assert.Equal(t, order.OfferAccepted, ch.ChangedOffers[0].Offer.Status)
	assert.True(t, ch.ChangedOffers[0].Offer.CourierID.IsEqual(c1))

	restored.MarkPersisted()
	ch = restored.Changes()
	assert.Equal(t, order.PickupInProgress, ch.ExpectedStatus)
	assert.Empty(t, ch.History)
	assert.Empty(t, ch.ChangedOffers)
}

func TestRestore(t *testing.T) {
	t.Run("should round trip the snapshot", func(t *testing.T) {
		c := kernel.NewUUID()
		o := pickingUpOrder(t, c)

		restored, err := order.Restore(o.Snapshot())

		require.NoError(t, err)
		require.NoError(t, restored.Validate())
		assert.Equal(t, o.Snapshot(), restored.Snapshot())
		assert.True(t, restored.IsBoundTo(c))
	})

	t.Run("should refuse an active courier without an accepted offer", func(t *testing.T) {
		o := confirmedOrder(t)
		s := o.Snapshot()
		s.ActiveCourier = &order.ActiveCourier{CourierID: kernel.NewUUID(), Leg: order.LegPickup}

		_, err := order.Restore(s)

		assert.Error(t, err)
	})

	t.Run("should refuse an empty history", func(t *testing.T) {
		o := newOrder(t)
		s := o.Snapshot()
		s.History = nil

		_, err := order.Restore(s)

		assert.Error(t, err)
	})
}
