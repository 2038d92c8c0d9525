package order

import (
	"errors"
	"time"

	"shoecare/internal/core/domain/model/kernel"
	"shoecare/internal/pkg/errs"
)

// Snapshot is the full persisted state of an order. Stores map it to rows or documents;
// it carries no behavior.
type Snapshot struct {
	ID              kernel.UUID
	Number          string
	Status          Status
	Customer        CustomerInfo
	ServiceType     string
	Items           []Item
	Pickup          PickupLocation
	Payment         Payment
	Loyalty         LoyaltyPoints
	History         []StatusEntry
	TrackingDetails []TrackingDetail
	Tracking        Tracking
	Edits           []EditRecord
	Offers          []CourierOffer
	ActiveCourier   *ActiveCourier
	PickupProof     *PickupProof
	Admin           AdminActions
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Snapshot copies the order state.
func (o *Order) Snapshot() Snapshot {
	return Snapshot{
		ID:              o.id,
		Number:          o.number,
		Status:          o.status,
		Customer:        o.customer,
		ServiceType:     o.serviceType,
		Items:           copyItems(o.items),
		Pickup:          o.pickup,
		Payment:         o.payment,
		Loyalty:         o.loyalty,
		History:         o.history.Entries(),
		TrackingDetails: o.trackingDetails.Entries(),
		Tracking:        o.tracking,
		Edits:           o.edits.Entries(),
		Offers:          o.queue.Offers(),
		ActiveCourier:   o.ActiveCourier(),
		PickupProof:     o.PickupProof(),
		Admin:           o.admin,
		CreatedAt:       o.createdAt,
		UpdatedAt:       o.updatedAt,
	}
}

// Restore rebuilds an order loaded from a store. The restored order reports no changes.
func Restore(s Snapshot) (*Order, error) {
	var joined []error
	if err := s.ID.Validate(); err != nil {
		joined = append(joined, err)
	}
	if err := s.Status.Validate(); err != nil {
		joined = append(joined, err)
	}
	if len(s.History) == 0 {
		joined = append(joined, errs.NewValueIsRequiredError("status history"))
	}
	accepted := 0
	var acceptedBy kernel.UUID
	for _, offer := range s.Offers {
		if offer.Status == OfferAccepted {
			accepted++
			acceptedBy = offer.CourierID
		}
	}
	if accepted > 1 {
		joined = append(joined, errs.NewValueIsInvalidError("courier queue has more than one accepted offer"))
	}
	if (accepted == 1) != (s.ActiveCourier != nil) ||
		(s.ActiveCourier != nil && !s.ActiveCourier.CourierID.IsEqual(acceptedBy)) {
		joined = append(joined, errs.NewValueIsInvalidError("active courier does not match the courier queue"))
	}
	if err := errors.Join(joined...); err != nil {
		return nil, err
	}

	o := &Order{
		id:              s.ID,
		number:          s.Number,
		status:          s.Status,
		customer:        s.Customer,
		serviceType:     s.ServiceType,
		items:           copyItems(s.Items),
		pickup:          s.Pickup,
		payment:         s.Payment,
		loyalty:         s.Loyalty,
		history:         restoreLedger(s.History),
		trackingDetails: restoreLedger(s.TrackingDetails),
		edits:           restoreLedger(s.Edits),
		tracking:        s.Tracking,
		queue:           restoreQueue(s.Offers),
		admin:           s.Admin,
		createdAt:       s.CreatedAt,
		updatedAt:       s.UpdatedAt,
		loadedStatus:    s.Status,
		isConstructed:   true,
	}
	if s.ActiveCourier != nil {
		ac := *s.ActiveCourier
		o.activeCourier = &ac
	}
	if s.PickupProof != nil {
		pp := *s.PickupProof
		o.pickupProof = &pp
	}
	return o, nil
}

// Changes describes what happened to the order since it was loaded.
type Changes struct {
	// IsNew is set for orders created by NewOrder and not yet stored.
	IsNew bool
	// ExpectedStatus is the status the stored row must still have for the update to apply.
	ExpectedStatus  Status
	History         []StatusEntry
	TrackingDetails []TrackingDetail
	Edits           []EditRecord
	NewOffers       []CourierOffer
	ChangedOffers   []OfferChange
}

// Changes returns the pending changes.
func (o *Order) Changes() Changes {
	return Changes{
		IsNew:           o.isNew,
		ExpectedStatus:  o.loadedStatus,
		History:         o.history.Pending(),
		TrackingDetails: o.trackingDetails.Pending(),
		Edits:           o.edits.Pending(),
		NewOffers:       o.queue.NewOffers(),
		ChangedOffers:   o.queue.ChangedOffers(),
	}
}

// MarkPersisted resets change tracking after a successful write.
func (o *Order) MarkPersisted() {
	o.isNew = false
	o.loadedStatus = o.status
	o.history.markPersisted()
	o.trackingDetails.markPersisted()
	o.edits.markPersisted()
	o.queue.markPersisted()
}
