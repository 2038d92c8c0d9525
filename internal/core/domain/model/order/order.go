package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"shoecare/internal/core/domain/model/actor"
	"shoecare/internal/core/domain/model/kernel"
	"shoecare/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// NewOrder or Restore.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or Restore")
)

// now is the aggregate clock.
var now = func() time.Time { return time.Now().UTC() }

// CustomerInfo identifies who placed the order. Guests have no UserID.
type CustomerInfo struct {
	Name    string
	Phone   string
	UserID  *kernel.UUID
	IsGuest bool
}

// PickupLocation is where the courier collects the shoes.
type PickupLocation struct {
	Address     string
	Point       kernel.GeoPoint
	DeliveryFee int64
}

// PickupProof is recorded when the courier collects the items.
type PickupProof struct {
	Image      string
	At         time.Time
	Notes      string
	Location   *kernel.GeoPoint
	UploadedBy string
}

// AdminActions records confirmation and cancellation metadata.
type AdminActions struct {
	ConfirmedBy        string
	ConfirmedAt        *time.Time
	CancelledBy        string
	CancelledAt        *time.Time
	CancellationReason string
}

// Outcome lists side effects on other aggregates that the caller applies in the same unit
// of work.
type Outcome struct {
	// ReleasedCourier is set when a leg ended and its courier must become available again.
	ReleasedCourier *kernel.UUID
	// LegFinished is set when the released courier completed the leg. It is false when the
	// order was cancelled while the courier was bound.
	LegFinished bool
	// RefundPoints is credited back to the customer's loyalty balance.
	RefundPoints int64
	// RemovedProof is a payment proof reference that is no longer attached to the order.
	RemovedProof string
	// Completed is set when the order reached completed.
	Completed bool
	// EarnedPoints is credited to the customer's loyalty balance on completion.
	EarnedPoints int64
}

// Order is the aggregate root of the shoe-cleaning workflow. It owns the lifecycle state
// machine, the append-only ledgers and the courier queue.
//
// Order follows these invariants:
//   - status only changes along the transition table
//   - the last status history entry matches status after every transition
//   - payment.FinalAmount = Subtotal + DeliveryFee - DiscountPoints
//   - at most one queue offer is accepted and activeCourier refers to it
//   - used loyalty points are refunded at most once
type Order struct {
	id          kernel.UUID
	number      string
	status      Status
	customer    CustomerInfo
	serviceType string
	items       []Item
	pickup      PickupLocation
	payment     Payment
	loyalty     LoyaltyPoints

	history         Ledger[StatusEntry]
	trackingDetails Ledger[TrackingDetail]
	edits           Ledger[EditRecord]
	tracking        Tracking

	queue         CourierQueue
	activeCourier *ActiveCourier
	pickupProof   *PickupProof
	admin         AdminActions

	createdAt time.Time
	updatedAt time.Time

	// loadedStatus is the status the order had when it was loaded; stores predicate their
	// update on it.
	loadedStatus Status
	isNew        bool
	events       []DomainEvent

	isConstructed bool
}

// NewOrderParams carries the inputs of NewOrder.
type NewOrderParams struct {
	Number      string
	Customer    CustomerInfo
	ServiceType string
	Items       []Item
	Pickup      PickupLocation
	// UsePoints are loyalty points the registered customer spends as discount.
	UsePoints   int64
	LoyaltyRate decimal.Decimal
	By          actor.Actor
}

// NewOrder creates a pending order and records its first status history entry.
//
// Parameters:
//   - p.Number: human-readable unique order number
//   - p.Customer: name and phone are required; UsePoints requires a registered customer
//   - p.Items: at least one valid item
//   - p.Pickup: address, coordinates and a non-negative delivery fee
//
// Returns:
//   - *Order: the created order with payment amounts and earned points computed
//   - error: joined validation errors
//
// The caller is responsible for deducting UsePoints from the customer's balance in the
// same unit of work.
func NewOrder(p NewOrderParams) (*Order, error) {
	at := now()
	o := &Order{
		id:            kernel.NewUUID(),
		status:        Pending,
		serviceType:   strings.TrimSpace(p.ServiceType),
		createdAt:     at,
		updatedAt:     at,
		isNew:         true,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setNumber(p.Number),
		o.setCustomer(p.Customer, p.UsePoints),
		o.setServiceType(p.ServiceType),
		o.setPickup(p.Pickup),
		validateItems(p.Items),
	); err != nil {
		return nil, err
	}

	o.items = copyItems(p.Items)
	o.payment = Payment{
		DeliveryFee:    p.Pickup.DeliveryFee,
		DiscountPoints: p.UsePoints,
		Status:         PaymentPending,
	}
	if err := o.payment.price(o.items); err != nil {
		return nil, err
	}
	o.loyalty = LoyaltyPoints{
		Earned: EarnedPoints(o.payment.Subtotal, p.LoyaltyRate),
		Used:   p.UsePoints,
		Rate:   p.LoyaltyRate,
	}

	o.history.append(StatusEntry{
		Status:    Pending,
		At:        at,
		ActorID:   p.By.ID,
		ActorName: p.By.Name,
		Notes:     "order created",
	})
	return o, nil
}

func (o *Order) setNumber(number string) error {
	number = strings.TrimSpace(number)
	if number == "" {
		return errs.NewValueIsRequiredError("orderNumber")
	}
	o.number = number
	return nil
}

func (o *Order) setCustomer(c CustomerInfo, usePoints int64) error {
	var joined []error
	if strings.TrimSpace(c.Name) == "" {
		joined = append(joined, errs.NewValueIsRequiredError("customer name"))
	}
	if strings.TrimSpace(c.Phone) == "" {
		joined = append(joined, errs.NewValueIsRequiredError("customer phone"))
	}
	if c.UserID == nil {
		c.IsGuest = true
	}
	if usePoints < 0 {
		joined = append(joined, errs.NewValueIsOutOfRangeError("usePoints", usePoints, 0, "balance"))
	}
	if usePoints > 0 && c.IsGuest {
		joined = append(joined, errs.NewValueIsInvalidErrorWithCause("usePoints",
			errors.New("loyalty points require a registered customer")))
	}
	if err := errors.Join(joined...); err != nil {
		return err
	}
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	o.customer = c
	return nil
}

func (o *Order) setServiceType(serviceType string) error {
	if strings.TrimSpace(serviceType) == "" {
		return errs.NewValueIsRequiredError("serviceType")
	}
	return nil
}

func (o *Order) setPickup(p PickupLocation) error {
	var joined []error
	if strings.TrimSpace(p.Address) == "" {
		joined = append(joined, errs.NewValueIsRequiredError("pickup address"))
	}
	if err := p.Point.Validate(); err != nil {
		joined = append(joined, errs.NewValueIsRequiredErrorWithCause("pickup coordinates", err))
	}
	if p.DeliveryFee < 0 {
		joined = append(joined, errs.NewValueIsOutOfRangeError("deliveryFee", p.DeliveryFee, 0, "max"))
	}
	if err := errors.Join(joined...); err != nil {
		return err
	}
	p.Address = strings.TrimSpace(p.Address)
	o.pickup = p
	return nil
}

// Validate ensures the Order instance was created through NewOrder or Restore.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by identifier.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID              { return o.id }
func (o *Order) Number() string               { return o.number }
func (o *Order) Status() Status               { return o.status }
func (o *Order) Customer() CustomerInfo       { return o.customer }
func (o *Order) ServiceType() string          { return o.serviceType }
func (o *Order) Items() []Item                { return copyItems(o.items) }
func (o *Order) Pickup() PickupLocation       { return o.pickup }
func (o *Order) Payment() Payment             { return o.payment }
func (o *Order) Loyalty() LoyaltyPoints       { return o.loyalty }
func (o *Order) Tracking() Tracking           { return o.tracking }
func (o *Order) Admin() AdminActions          { return o.admin }
func (o *Order) CreatedAt() time.Time         { return o.createdAt }
func (o *Order) UpdatedAt() time.Time         { return o.updatedAt }
func (o *Order) StatusHistory() []StatusEntry { return o.history.Entries() }
func (o *Order) TrackingDetails() []TrackingDetail {
	return o.trackingDetails.Entries()
}
func (o *Order) EditHistory() []EditRecord { return o.edits.Entries() }
func (o *Order) Queue() []CourierOffer     { return o.queue.Offers() }

// ActiveCourier returns a copy of the courier binding, or nil.
func (o *Order) ActiveCourier() *ActiveCourier {
	if o.activeCourier == nil {
		return nil
	}
	cp := *o.activeCourier
	return &cp
}

// PickupProof returns a copy of the pickup proof, or nil.
func (o *Order) PickupProof() *PickupProof {
	if o.pickupProof == nil {
		return nil
	}
	cp := *o.pickupProof
	return &cp
}

// IsBoundTo reports whether courierID is the active courier.
func (o *Order) IsBoundTo(courierID kernel.UUID) bool {
	return o.activeCourier != nil && o.activeCourier.CourierID.IsEqual(courierID)
}

// BelongsTo reports whether the order was placed by the given registered user.
func (o *Order) BelongsTo(userID string) bool {
	return o.customer.UserID != nil && o.customer.UserID.String() == userID
}

// DomainEvents returns the events recorded since the last ClearDomainEvents.
func (o *Order) DomainEvents() []DomainEvent {
	out := make([]DomainEvent, len(o.events))
	copy(out, o.events)
	return out
}

func (o *Order) ClearDomainEvents() {
	o.events = nil
}

func (o *Order) raise(e DomainEvent) {
	o.events = append(o.events, e)
}

// transition is the single place status changes. It validates the edge against the table,
// appends the status history entry and, for tracking stages, the tracking detail.
func (o *Order) transition(next Status, entry StatusEntry) error {
	if err := o.status.ValidateTransition(next); err != nil {
		return err
	}
	from := o.status
	at := entry.At
	if at.IsZero() {
		at = now()
	}

	o.status = next
	o.updatedAt = at
	entry.Status = next
	entry.At = at
	o.history.append(entry)

	if stage, ok := TrackingStageFor(next); ok {
		o.tracking.CurrentStage = stage
		o.trackingDetails.append(TrackingDetail{
			Stage:    stage,
			At:       at,
			ActorID:  entry.ActorID,
			Notes:    entry.Notes,
			Location: entry.Location,
		})
	}
	switch next {
	case PickedUp:
		o.tracking.PickupTime = &at
	case Completed:
		o.tracking.CompletedTime = &at
	}

	o.raise(StatusChanged{
		OrderID:     o.id.String(),
		OrderNumber: o.number,
		From:        from,
		To:          next,
		ActorID:     entry.ActorID,
		At:          at,
	})
	return nil
}

// note appends a status history entry without changing the status.
func (o *Order) note(by actor.Actor, notes string, loc *kernel.GeoPoint) {
	at := now()
	o.updatedAt = at
	o.history.append(StatusEntry{
		Status:    o.status,
		At:        at,
		ActorID:   by.ID,
		ActorName: by.Name,
		Notes:     notes,
		Location:  loc,
	})
}

// endLeg settles the accepted offer, rejects the leg's remaining offers and clears the
// courier binding. It returns the released courier, if any.
func (o *Order) endLeg(leg Leg, finished bool) *kernel.UUID {
	o.queue.closeLeg(leg, finished, now())
	if o.activeCourier == nil {
		return nil
	}
	id := o.activeCourier.CourierID
	o.activeCourier = nil
	return &id
}

func entryBy(by actor.Actor, notes string) StatusEntry {
	return StatusEntry{ActorID: by.ID, ActorName: by.Name, Notes: notes}
}

func (o *Order) requireNotTerminal(op string) error {
	if o.status.IsTerminal() {
		return errs.NewInvalidStateError(op, o.status)
	}
	return nil
}

func (o *Order) requireStatus(op string, allowed ...Status) error {
	for _, s := range allowed {
		if o.status == s {
			return nil
		}
	}
	return errs.NewInvalidStateError(op, o.status)
}

// requireBoundCourier checks that by is the courier currently bound to the order.
func (o *Order) requireBoundCourier(op string, by actor.Actor) error {
	if err := by.Require(actor.RoleCourier); err != nil {
		return err
	}
	if o.activeCourier == nil {
		return errs.NewInvalidStateError(op+" without a bound courier", o.status)
	}
	if o.activeCourier.CourierID.String() != by.ID {
		return fmt.Errorf("%w: order is bound to another courier", errs.ErrForbidden)
	}
	return nil
}
