package order_test

import (
	"testing"

	"shoecare/internal/core/domain/model/order"
	"shoecare/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Transitions(t *testing.T) {
	tests := []struct {
		from, to order.Status
		ok       bool
	}{
		{order.Pending, order.WaitingConfirmation, true},
		{order.WaitingConfirmation, order.Confirmed, true},
		{order.Confirmed, order.CourierAssigned, true},
		{order.CourierAssigned, order.PickupInProgress, true},
		{order.PickupInProgress, order.PickedUp, true},
		{order.PickedUp, order.InWorkshop, true},
		{order.InWorkshop, order.Processing, true},
		{order.Processing, order.QCCheck, true},
		{order.QCCheck, order.ReadyForDelivery, true},
		{order.QCCheck, order.Processing, true},
		{order.ReadyForDelivery, order.DeliveryAssigned, true},
		{order.DeliveryAssigned, order.DeliveryInProgress, true},
		{order.DeliveryInProgress, order.Completed, true},
		{order.Pending, order.Confirmed, false},
		{order.Confirmed, order.PickedUp, false},
		{order.Processing, order.InWorkshop, false},
		{order.Completed, order.Cancelled, false},
		{order.Cancelled, order.Pending, false},
	}
	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			assert.Equal(t, tt.ok, tt.from.CanTransitionTo(tt.to))
			err := tt.from.ValidateTransition(tt.to)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, errs.ErrInvalidState)
			}
		})
	}
}

func TestStatus_CancelledReachableFromEveryNonTerminal(t *testing.T) {
	for _, s := range order.AllStatuses() {
		if s.IsTerminal() {
			assert.False(t, s.CanTransitionTo(order.Cancelled), s)
			continue
		}
		assert.True(t, s.CanTransitionTo(order.Cancelled), s)
	}
}

func TestParseStatus(t *testing.T) {
	s, err := order.ParseStatus("qc_check")
	require.NoError(t, err)
	assert.Equal(t, order.QCCheck, s)

	_, err = order.ParseStatus("shipped")
	assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestStatus_OfferLeg(t *testing.T) {
	leg, ok := order.Confirmed.OfferLeg()
	assert.True(t, ok)
	assert.Equal(t, order.LegPickup, leg)

	leg, ok = order.DeliveryAssigned.OfferLeg()
	assert.True(t, ok)
	assert.Equal(t, order.LegDelivery, leg)

	_, ok = order.Processing.OfferLeg()
	assert.False(t, ok)
}

func TestStatus_IsBusy(t *testing.T) {
	assert.True(t, order.PickupInProgress.IsBusy())
	assert.True(t, order.DeliveryInProgress.IsBusy())
	assert.False(t, order.CourierAssigned.IsBusy())
	assert.False(t, order.Completed.IsBusy())
	assert.Len(t, order.BusyStatuses(), 5)
}

func TestTrackingStageFor(t *testing.T) {
	stage, ok := order.TrackingStageFor(order.PickedUp)
	assert.True(t, ok)
	assert.Equal(t, order.StagePickedUp, stage)

	_, ok = order.TrackingStageFor(order.Confirmed)
	assert.False(t, ok)
	_, ok = order.TrackingStageFor(order.Completed)
	assert.False(t, ok)
}
