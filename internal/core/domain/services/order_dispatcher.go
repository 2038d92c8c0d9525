package services

import (
	"errors"
	"fmt"
	"sort"

	"shoecare/internal/core/domain/model/actor"
	"shoecare/internal/core/domain/model/courier"
	"shoecare/internal/core/domain/model/order"
	"shoecare/internal/pkg/errs"
)

// ErrCourierNotFound is returned when no suitable courier is available for an order.
var ErrCourierNotFound = errs.NewObjectNotFoundError("courier", "available")

// OrderDispatcher is the domain service behind courier assignment.
//
// Business rules:
//   - The single-courier path requires an available courier and moves the order to
//     courier_assigned / delivery_assigned at offer time
//   - Force assignment skips the availability check so jobs can be queued for busy couriers
//   - Fan-out offers leave the order status unchanged until one courier accepts
//   - A courier already bound to another order in a busy status cannot accept
//   - Ending a leg releases the courier
//
// Example usage:
//
//	dispatcher := services.NewOrderDispatcher()
//	if _, err := dispatcher.AssignSingle(o, c, "", admin); err != nil {
//	    // courier unavailable, duplicate offer or wrong order status
//	}
type OrderDispatcher struct{}

// NewOrderDispatcher creates a new OrderDispatcher instance.
func NewOrderDispatcher() OrderDispatcher {
	return OrderDispatcher{}
}

// AssignSingle offers the order to one available courier and marks it assigned.
//
// Parameters:
//   - o: the order, in confirmed/courier_assigned or ready_for_delivery/delivery_assigned
//   - c: the chosen courier (must be available)
//   - by: admin actor
//
// Returns:
//   - order.CourierOffer: the queued offer
//   - error: ErrCourierBusy if the courier is unavailable, queue or state errors otherwise
func (d OrderDispatcher) AssignSingle(o *order.Order, c *courier.Courier, notes string, by actor.Actor) (order.CourierOffer, error) {
	if err := validate(o, c); err != nil {
		return order.CourierOffer{}, err
	}
	if !c.IsAvailable() {
		return order.CourierOffer{}, fmt.Errorf("%w: courier %s is not available", errs.ErrCourierBusy, c.Name())
	}
	return o.AssignCourier(c.ID(), notes, by)
}

// ForceAssign behaves like AssignSingle without the availability check.
func (d OrderDispatcher) ForceAssign(o *order.Order, c *courier.Courier, notes string, by actor.Actor) (order.CourierOffer, error) {
	if err := validate(o, c); err != nil {
		return order.CourierOffer{}, err
	}
	return o.AssignCourier(c.ID(), notes, by)
}

// OfferToCouriers queues an offer for every courier without changing the order status.
// The first failing courier aborts the whole call; the caller discards the aggregate.
func (d OrderDispatcher) OfferToCouriers(o *order.Order, couriers []*courier.Courier, notes string, by actor.Actor) ([]order.CourierOffer, error) {
	if len(couriers) == 0 {
		return nil, errs.NewValueIsRequiredError("courierIds")
	}
	offers := make([]order.CourierOffer, 0, len(couriers))
	for _, c := range couriers {
		if err := validate(o, c); err != nil {
			return nil, err
		}
		offer, err := o.OfferCourier(c.ID(), notes, by)
		if err != nil {
			return nil, err
		}
		offers = append(offers, offer)
	}
	return offers, nil
}

// Accept binds c to o.
//
// Parameters:
//   - o: the order holding a pending offer for the courier
//   - c: the accepting courier
//   - active: the order currently binding the courier in a busy status, or nil
//
// Returns ErrCourierBusy if active is another order, otherwise the order's queue errors.
func (d OrderDispatcher) Accept(o *order.Order, c *courier.Courier, active *order.Order, by actor.Actor) error {
	if err := validate(o, c); err != nil {
		return err
	}
	if by.ID != c.ID().String() {
		return fmt.Errorf("%w: couriers accept offers for themselves only", errs.ErrForbidden)
	}
	if active != nil && !active.IsEqual(o) && active.Status().IsBusy() {
		return fmt.Errorf("%w: courier is handling order %s", errs.ErrCourierBusy, active.Number())
	}
	if err := o.AcceptOffer(by); err != nil {
		return err
	}
	return c.Bind(o.ID())
}

// Release applies the end of a leg to the released courier. Only a finished leg counts as a
// completed delivery; a leg cut short by cancellation just frees the courier.
func (d OrderDispatcher) Release(o *order.Order, c *courier.Courier, finished bool) error {
	if err := validate(o, c); err != nil {
		return err
	}
	if finished {
		return c.CompleteDelivery(o.ID())
	}
	return c.Release(o.ID())
}

// CourierDistance is a courier with its distance to a pickup address.
type CourierDistance struct {
	Courier    *courier.Courier
	DistanceKm float64
}

// RankCouriers orders the available couriers with a known location by distance to the
// order's pickup point, nearest first. Ties keep the input order.
func (d OrderDispatcher) RankCouriers(o *order.Order, couriers []*courier.Courier) ([]CourierDistance, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	ranked := make([]CourierDistance, 0, len(couriers))
	for _, c := range couriers {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if !c.IsAvailable() || c.Location() == nil {
			continue
		}
		km, err := c.Location().DistanceKm(o.Pickup().Point)
		if err != nil {
			return nil, err
		}
		ranked = append(ranked, CourierDistance{Courier: c, DistanceKm: km})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].DistanceKm < ranked[j].DistanceKm })
	return ranked, nil
}

// Nearest returns the closest available courier.
func (d OrderDispatcher) Nearest(o *order.Order, couriers []*courier.Courier) (*courier.Courier, error) {
	ranked, err := d.RankCouriers(o, couriers)
	if err != nil {
		return nil, err
	}
	if len(ranked) == 0 {
		return nil, ErrCourierNotFound
	}
	return ranked[0].Courier, nil
}

func validate(o *order.Order, c *courier.Courier) error {
	return errors.Join(o.Validate(), c.Validate())
}
