package order

import (
	"errors"
	"strings"

	"shoecare/internal/core/domain/model/actor"
	"shoecare/internal/core/domain/model/kernel"
	"shoecare/internal/pkg/errs"
)

// SubmitPaymentProof attaches the transfer proof and moves a pending order to
// waiting_confirmation. Orders of registered customers accept proofs from their owner or
// an admin only.
func (o *Order) SubmitPaymentProof(proofRef string, by actor.Actor) error {
	if strings.TrimSpace(proofRef) == "" {
		return errs.NewValueIsRequiredError("proof image")
	}
	if o.customer.UserID != nil && !o.BelongsTo(by.ID) {
		if err := by.Require(actor.RoleAdmin); err != nil {
			return err
		}
	}
	if err := o.requireStatus("submit payment proof", Pending); err != nil {
		return err
	}
	if err := o.transition(WaitingConfirmation, entryBy(by, "payment proof submitted")); err != nil {
		return err
	}
	o.payment.Status = PaymentWaitingConfirmation
	o.payment.ProofImage = proofRef
	return nil
}

// Confirm marks the payment as paid and moves the order to confirmed.
//
// Returns:
//   - ErrUnauthorized / ErrForbidden if by is not an admin
//   - InvalidStateError unless the order is waiting_confirmation
func (o *Order) Confirm(by actor.Actor) error {
	if err := by.Require(actor.RoleAdmin); err != nil {
		return err
	}
	if err := o.requireStatus("confirm", WaitingConfirmation); err != nil {
		return err
	}
	if err := o.transition(Confirmed, entryBy(by, "payment confirmed")); err != nil {
		return err
	}
	at := o.updatedAt
	o.payment.Status = PaymentPaid
	o.payment.PaidAt = &at
	o.admin.ConfirmedBy = by.ID
	o.admin.ConfirmedAt = &at
	return nil
}

// Reject cancels a non-terminal order.
//
// Parameters:
//   - reason: required, recorded as the cancellation reason
//   - by: must be an admin
//
// Returns an Outcome carrying the loyalty points to refund (only the first time), the
// removed payment proof and the courier to release if a leg was in progress.
func (o *Order) Reject(reason string, by actor.Actor) (Outcome, error) {
	if err := by.Require(actor.RoleAdmin); err != nil {
		return Outcome{}, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return Outcome{}, errs.NewValueIsRequiredError("reason")
	}
	if err := o.requireNotTerminal("reject"); err != nil {
		return Outcome{}, err
	}

	leg := LegPickup
	if o.activeCourier != nil {
		leg = o.activeCourier.Leg
	}
	var out Outcome
	out.ReleasedCourier = o.endLeg(leg, false)
	o.queue.rejectAllPending()

	if err := o.transition(Cancelled, entryBy(by, reason)); err != nil {
		return Outcome{}, err
	}
	at := o.updatedAt

	out.RemovedProof = o.payment.ProofImage
	o.payment.Status = PaymentFailed
	o.payment.ProofImage = ""
	o.admin.CancelledBy = by.ID
	o.admin.CancelledAt = &at
	o.admin.CancellationReason = reason

	if o.loyalty.Used > 0 && !o.loyalty.Refunded {
		out.RefundPoints = o.loyalty.Used
		o.loyalty.Refunded = true
	}

	o.raise(OrderCancelled{
		OrderID:        o.id.String(),
		OrderNumber:    o.number,
		Reason:         reason,
		RefundedPoints: out.RefundPoints,
		At:             at,
	})
	return out, nil
}

// Progress is the optional payload of a status change.
type Progress struct {
	Notes    string
	Proof    string
	Location *kernel.GeoPoint
}

// AdvanceStatus is the generic transition used by staff, couriers and admins for the edges
// that have no dedicated operation. Technicians and QC are limited by the permission table;
// couriers must be the bound courier.
func (o *Order) AdvanceStatus(next Status, p Progress, by actor.Actor) (Outcome, error) {
	if by.IsAnonymous() {
		return Outcome{}, errs.ErrUnauthorized
	}
	if err := validateAdvance(o.status, next, by.Role); err != nil {
		return Outcome{}, err
	}
	if by.Role == actor.RoleCourier {
		if err := o.requireBoundCourier("move to "+next.String(), by); err != nil {
			return Outcome{}, err
		}
	}

	entry := entryBy(by, p.Notes)
	entry.Proof = p.Proof
	entry.Location = p.Location
	if err := o.transition(next, entry); err != nil {
		return Outcome{}, err
	}

	var out Outcome
	if next == Completed {
		out.ReleasedCourier = o.endLeg(LegDelivery, true)
		out.LegFinished = out.ReleasedCourier != nil
		out.Completed = true
		out.EarnedPoints = o.loyalty.Earned
	}
	return out, nil
}

// EditItems replaces the item list of a non-terminal order, recomputes the payment and
// records the edit. The status does not change.
func (o *Order) EditItems(items []Item, reason string, by actor.Actor) error {
	if err := by.Require(actor.RoleAdmin); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if err := errors.Join(validateItems(items), requiredReason(reason)); err != nil {
		return err
	}
	if err := o.requireNotTerminal("edit items"); err != nil {
		return err
	}

	payment := o.payment
	if err := payment.price(items); err != nil {
		return err
	}
	before := copyItems(o.items)
	subtotalBefore := o.payment.Subtotal
	o.items = copyItems(items)
	o.payment = payment

	o.note(by, "items edited: "+reason, nil)
	o.edits.append(EditRecord{
		At:             o.updatedAt,
		ActorID:        by.ID,
		ActorName:      by.Name,
		Reason:         reason,
		ItemsBefore:    before,
		ItemsAfter:     copyItems(items),
		SubtotalBefore: subtotalBefore,
		SubtotalAfter:  payment.Subtotal,
	})
	o.raise(ItemsEdited{
		OrderID:     o.id.String(),
		OrderNumber: o.number,
		Subtotal:    payment.Subtotal,
		FinalAmount: payment.FinalAmount,
		At:          o.updatedAt,
	})
	return nil
}

func requiredReason(reason string) error {
	if reason == "" {
		return errs.NewValueIsRequiredError("reason")
	}
	return nil
}

// StartPickup records that the bound courier set off towards the customer. It may be
// called once per pickup.
func (o *Order) StartPickup(loc *kernel.GeoPoint, by actor.Actor) error {
	if err := o.requireBoundCourier("start pickup", by); err != nil {
		return err
	}
	if err := o.requireStatus("start pickup", PickupInProgress); err != nil {
		return err
	}
	if o.activeCourier.StartedPickupAt != nil {
		return errs.NewInvalidStateError("start pickup twice", o.status)
	}
	o.note(by, "pickup started", loc)
	at := o.updatedAt
	o.activeCourier.StartedPickupAt = &at
	o.activeCourier.CurrentLocation = loc
	return nil
}

// ContactCustomer records that the bound courier reached out to the customer.
func (o *Order) ContactCustomer(notes string, by actor.Actor) error {
	if err := o.requireBoundCourier("contact customer", by); err != nil {
		return err
	}
	if err := o.requireStatus("contact customer", PickupInProgress, DeliveryInProgress); err != nil {
		return err
	}
	if strings.TrimSpace(notes) == "" {
		notes = "customer contacted"
	}
	o.note(by, notes, nil)
	at := o.updatedAt
	o.activeCourier.CustomerContacted = true
	o.activeCourier.ContactedAt = &at
	return nil
}

// UploadPickupProof stores the pickup photo and moves the order to picked_up.
func (o *Order) UploadPickupProof(image, notes string, loc *kernel.GeoPoint, by actor.Actor) error {
	if strings.TrimSpace(image) == "" {
		return errs.NewValueIsRequiredError("pickup proof image")
	}
	if err := o.requireBoundCourier("upload pickup proof", by); err != nil {
		return err
	}
	if err := o.requireStatus("upload pickup proof", PickupInProgress); err != nil {
		return err
	}
	entry := entryBy(by, notes)
	entry.Proof = image
	entry.Location = loc
	if err := o.transition(PickedUp, entry); err != nil {
		return err
	}
	o.pickupProof = &PickupProof{
		Image:      image,
		At:         o.updatedAt,
		Notes:      notes,
		Location:   loc,
		UploadedBy: by.ID,
	}
	if loc != nil {
		o.activeCourier.CurrentLocation = loc
	}
	return nil
}

// ArriveWorkshop hands the items over to the workshop. The pickup leg ends and the courier
// is released.
func (o *Order) ArriveWorkshop(notes string, loc *kernel.GeoPoint, by actor.Actor) (Outcome, error) {
	if err := o.requireBoundCourier("arrive at workshop", by); err != nil {
		return Outcome{}, err
	}
	if err := o.requireStatus("arrive at workshop", PickedUp); err != nil {
		return Outcome{}, err
	}
	if strings.TrimSpace(notes) == "" {
		notes = "arrived at workshop"
	}
	entry := entryBy(by, notes)
	entry.Location = loc
	if err := o.transition(InWorkshop, entry); err != nil {
		return Outcome{}, err
	}
	released := o.endLeg(LegPickup, true)
	return Outcome{ReleasedCourier: released, LegFinished: released != nil}, nil
}
