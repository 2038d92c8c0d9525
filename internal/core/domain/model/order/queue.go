package order

import (
	"fmt"
	"sort"
	"time"

	"shoecare/internal/core/domain/model/kernel"
	"shoecare/internal/pkg/errs"
)

// Leg is the part of the journey an offer covers.
type Leg string

const (
	LegPickup   Leg = "pickup"
	LegDelivery Leg = "delivery"
)

func (l Leg) String() string {
	return string(l)
}

// OfferStatus is the state of one courier offer.
type OfferStatus string

const (
	OfferPending   OfferStatus = "pending"
	OfferAccepted  OfferStatus = "accepted"
	OfferRejected  OfferStatus = "rejected"
	OfferCompleted OfferStatus = "completed"
	OfferCancelled OfferStatus = "cancelled"
)

func (s OfferStatus) String() string {
	return string(s)
}

// CourierOffer is one entry of the courier queue.
type CourierOffer struct {
	ID          kernel.UUID
	CourierID   kernel.UUID
	Leg         Leg
	Status      OfferStatus
	AssignedAt  time.Time
	AssignedBy  string
	Notes       string
	AcceptedAt  *time.Time
	CompletedAt *time.Time
}

// OfferChange is a status flip of an offer that was already stored.
type OfferChange struct {
	Offer CourierOffer
	From  OfferStatus
}

// ActiveCourier is the courier bound to the current leg.
type ActiveCourier struct {
	CourierID         kernel.UUID
	Leg               Leg
	AcceptedAt        time.Time
	StartedPickupAt   *time.Time
	CurrentLocation   *kernel.GeoPoint
	CustomerContacted bool
	ContactedAt       *time.Time
}

// CourierQueue holds the offers made for one order. At most one offer is accepted at a time.
type CourierQueue struct {
	offers    []CourierOffer
	persisted int
	loaded    map[int]OfferStatus
}

func restoreQueue(offers []CourierOffer) CourierQueue {
	cp := make([]CourierOffer, len(offers))
	copy(cp, offers)
	return CourierQueue{offers: cp, persisted: len(cp)}
}

// Offers returns a copy of the queue in offer order.
func (q CourierQueue) Offers() []CourierOffer {
	out := make([]CourierOffer, len(q.offers))
	copy(out, q.offers)
	return out
}

// Accepted returns the accepted offer, if any.
func (q CourierQueue) Accepted() (CourierOffer, bool) {
	if i := q.find(func(o CourierOffer) bool { return o.Status == OfferAccepted }); i >= 0 {
		return q.offers[i], true
	}
	return CourierOffer{}, false
}

// PendingFor returns the courier's pending offer, if any.
func (q CourierQueue) PendingFor(courierID kernel.UUID) (CourierOffer, bool) {
	if i := q.pendingIndex(courierID); i >= 0 {
		return q.offers[i], true
	}
	return CourierOffer{}, false
}

// Offer appends a pending offer unless the courier already holds one.
func (q *CourierQueue) Offer(courierID kernel.UUID, leg Leg, assignedBy, notes string, at time.Time) (CourierOffer, error) {
	if err := courierID.Validate(); err != nil {
		return CourierOffer{}, errs.NewValueIsRequiredErrorWithCause("courierID", err)
	}
	if q.pendingIndex(courierID) >= 0 {
		return CourierOffer{}, fmt.Errorf("%w: courier %s already has a pending offer", errs.ErrDuplicateOffer, courierID)
	}
	offer := CourierOffer{
		ID:         kernel.NewUUID(),
		CourierID:  courierID,
		Leg:        leg,
		Status:     OfferPending,
		AssignedAt: at,
		AssignedBy: assignedBy,
		Notes:      notes,
	}
	q.offers = append(q.offers, offer)
	return offer, nil
}

// Accept flips the courier's pending offer for leg to accepted. It fails with
// ErrAlreadyAssigned once any offer has been accepted.
func (q *CourierQueue) Accept(courierID kernel.UUID, leg Leg, at time.Time) (CourierOffer, error) {
	if accepted, ok := q.Accepted(); ok {
		return CourierOffer{}, fmt.Errorf("%w: order is bound to courier %s", errs.ErrAlreadyAssigned, accepted.CourierID)
	}
	i := q.pendingIndex(courierID)
	if i < 0 {
		return CourierOffer{}, errs.NewObjectNotFoundError("pending offer", courierID)
	}
	if q.offers[i].Leg != leg {
		return CourierOffer{}, errs.NewInvalidStateError("accept a "+leg.String()+" offer", q.offers[i].Leg)
	}
	q.setStatus(i, OfferAccepted)
	q.offers[i].AcceptedAt = &at
	return q.offers[i], nil
}

// Reject flips the courier's pending offer to rejected.
func (q *CourierQueue) Reject(courierID kernel.UUID) (CourierOffer, error) {
	i := q.pendingIndex(courierID)
	if i < 0 {
		return CourierOffer{}, errs.NewObjectNotFoundError("pending offer", courierID)
	}
	q.setStatus(i, OfferRejected)
	return q.offers[i], nil
}

// closeLeg settles the accepted offer and rejects the remaining pending offers of leg. The
// accepted offer becomes completed when the courier finished the leg and cancelled when the
// order was cancelled under them.
func (q *CourierQueue) closeLeg(leg Leg, finished bool, at time.Time) {
	for i := range q.offers {
		switch {
		case q.offers[i].Status == OfferAccepted && finished:
			q.setStatus(i, OfferCompleted)
			q.offers[i].CompletedAt = &at
		case q.offers[i].Status == OfferAccepted:
			q.setStatus(i, OfferCancelled)
		case q.offers[i].Status == OfferPending && q.offers[i].Leg == leg:
			q.setStatus(i, OfferRejected)
		}
	}
}

// rejectAllPending is used on cancellation.
func (q *CourierQueue) rejectAllPending() {
	for i := range q.offers {
		if q.offers[i].Status == OfferPending {
			q.setStatus(i, OfferRejected)
		}
	}
}

// NewOffers returns offers appended since load.
func (q CourierQueue) NewOffers() []CourierOffer {
	out := make([]CourierOffer, len(q.offers)-q.persisted)
	copy(out, q.offers[q.persisted:])
	return out
}

// ChangedOffers returns stored offers whose status changed since load, with the status they
// were loaded with so the store can predicate its update on it.
func (q CourierQueue) ChangedOffers() []OfferChange {
	idx := make([]int, 0, len(q.loaded))
	for i := range q.loaded {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	out := make([]OfferChange, 0, len(idx))
	for _, i := range idx {
		if q.offers[i].Status != q.loaded[i] {
			out = append(out, OfferChange{Offer: q.offers[i], From: q.loaded[i]})
		}
	}
	return out
}

func (q *CourierQueue) markPersisted() {
	q.persisted = len(q.offers)
	q.loaded = nil
}

func (q *CourierQueue) setStatus(i int, status OfferStatus) {
	if i < q.persisted {
		if q.loaded == nil {
			q.loaded = make(map[int]OfferStatus)
		}
		if _, seen := q.loaded[i]; !seen {
			q.loaded[i] = q.offers[i].Status
		}
	}
	q.offers[i].Status = status
}

func (q CourierQueue) pendingIndex(courierID kernel.UUID) int {
	return q.find(func(o CourierOffer) bool {
		return o.Status == OfferPending && o.CourierID.IsEqual(courierID)
	})
}

func (q CourierQueue) find(match func(CourierOffer) bool) int {
	for i := range q.offers {
		if match(q.offers[i]) {
			return i
		}
	}
	return -1
}
