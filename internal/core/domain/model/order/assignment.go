package order

import (
	"fmt"
	"strings"

	"shoecare/internal/core/domain/model/actor"
	"shoecare/internal/core/domain/model/kernel"
	"shoecare/internal/pkg/errs"
)

// OfferCourier adds a pending offer for courierID on the current leg without changing the
// order status. This is the fan-out path: several couriers may hold offers at once.
func (o *Order) OfferCourier(courierID kernel.UUID, notes string, by actor.Actor) (CourierOffer, error) {
	if err := by.Require(actor.RoleAdmin); err != nil {
		return CourierOffer{}, err
	}
	leg, ok := o.status.OfferLeg()
	if !ok {
		return CourierOffer{}, errs.NewInvalidStateError("offer to a courier", o.status)
	}
	if _, accepted := o.queue.Accepted(); accepted {
		return CourierOffer{}, fmt.Errorf("%w: a courier already accepted this order", errs.ErrAlreadyAssigned)
	}
	offer, err := o.queue.Offer(courierID, leg, by.ID, strings.TrimSpace(notes), now())
	if err != nil {
		return CourierOffer{}, err
	}
	o.updatedAt = offer.AssignedAt
	o.raise(CourierOffered{
		OrderID:     o.id.String(),
		OrderNumber: o.number,
		CourierID:   courierID.String(),
		Leg:         leg,
		At:          offer.AssignedAt,
	})
	return offer, nil
}

// AssignCourier is the single-courier path: it offers the order to courierID and moves the
// order to courier_assigned (pickup leg) or delivery_assigned (delivery leg) right away. The
// tracked courier is only set once a courier accepts.
func (o *Order) AssignCourier(courierID kernel.UUID, notes string, by actor.Actor) (CourierOffer, error) {
	offer, err := o.OfferCourier(courierID, notes, by)
	if err != nil {
		return CourierOffer{}, err
	}
	if next, ok := assignedStatus(o.status); ok {
		if err := o.transition(next, entryBy(by, "courier assigned")); err != nil {
			return CourierOffer{}, err
		}
	}
	return offer, nil
}

// AcceptOffer binds the courier holding a pending offer on the current leg. The order moves
// through courier_assigned to pickup_in_progress, or through delivery_assigned to
// delivery_in_progress.
//
// Returns:
//   - ErrAlreadyAssigned if another offer was accepted first
//   - ObjectNotFoundError if the courier holds no pending offer
//   - InvalidStateError if the order is not waiting for a courier
func (o *Order) AcceptOffer(by actor.Actor) error {
	if err := by.Require(actor.RoleCourier); err != nil {
		return err
	}
	courierID, err := kernel.UUIDFromString(by.ID)
	if err != nil {
		return err
	}
	if accepted, ok := o.queue.Accepted(); ok {
		return fmt.Errorf("%w: order is bound to courier %s", errs.ErrAlreadyAssigned, accepted.CourierID)
	}
	leg, ok := o.status.OfferLeg()
	if !ok {
		return errs.NewInvalidStateError("accept an offer", o.status)
	}
	offer, err := o.queue.Accept(courierID, leg, now())
	if err != nil {
		return err
	}

	o.activeCourier = &ActiveCourier{
		CourierID:  courierID,
		Leg:        leg,
		AcceptedAt: *offer.AcceptedAt,
	}
	o.tracking.CourierID = &courierID

	if next, ok := assignedStatus(o.status); ok {
		if err := o.transition(next, entryBy(by, "offer accepted")); err != nil {
			return err
		}
	}
	started := PickupInProgress
	if leg == LegDelivery {
		started = DeliveryInProgress
	}
	if err := o.transition(started, entryBy(by, leg.String()+" started")); err != nil {
		return err
	}

	o.raise(CourierAccepted{
		OrderID:     o.id.String(),
		OrderNumber: o.number,
		CourierID:   courierID.String(),
		Leg:         leg,
		At:          *offer.AcceptedAt,
	})
	return nil
}

// DeclineOffer rejects the caller's own pending offer.
func (o *Order) DeclineOffer(by actor.Actor) error {
	if err := by.Require(actor.RoleCourier); err != nil {
		return err
	}
	courierID, err := kernel.UUIDFromString(by.ID)
	if err != nil {
		return err
	}
	if _, err := o.queue.Reject(courierID); err != nil {
		return err
	}
	o.updatedAt = now()
	return nil
}

func assignedStatus(s Status) (Status, bool) {
	switch s {
	case Confirmed:
		return CourierAssigned, true
	case ReadyForDelivery:
		return DeliveryAssigned, true
	default:
		return "", false
	}
}
