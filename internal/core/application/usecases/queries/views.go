package queries

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shoecare/internal/core/domain/model/actor"
	"shoecare/internal/core/domain/model/courier"
	"shoecare/internal/core/domain/model/kernel"
	"shoecare/internal/core/domain/model/order"
	"shoecare/internal/core/ports"
	"shoecare/internal/pkg/errs"
)

// CourierContact is the bound courier's current name and phone, read from the courier
// record rather than copied onto the order.
type CourierContact struct {
	ID    kernel.UUID
	Name  string
	Phone string
}

// OrderView is the full order read model.
type OrderView struct {
	ID              kernel.UUID
	Number          string
	Status          order.Status
	Customer        order.CustomerInfo
	ServiceType     string
	Items           []order.Item
	Pickup          order.PickupLocation
	Payment         order.Payment
	Loyalty         order.LoyaltyPoints
	StatusHistory   []order.StatusEntry
	TrackingDetails []order.TrackingDetail
	Tracking        order.Tracking
	EditHistory     []order.EditRecord
	Queue           []order.CourierOffer
	ActiveCourier   *order.ActiveCourier
	Courier         *CourierContact
	PickupProof     *order.PickupProof
	Admin           order.AdminActions
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderSummary is the list item read model.
type OrderSummary struct {
	ID           kernel.UUID
	Number       string
	Status       order.Status
	CustomerName string
	ServiceType  string
	FinalAmount  int64
	PaymentState order.PaymentStatus
	Address      string
	CourierID    *kernel.UUID
	CreatedAt    time.Time
}

func toOrderView(o *order.Order, contact *CourierContact) OrderView {
	return OrderView{
		ID:              o.ID(),
		Number:          o.Number(),
		Status:          o.Status(),
		Customer:        o.Customer(),
		ServiceType:     o.ServiceType(),
		Items:           o.Items(),
		Pickup:          o.Pickup(),
		Payment:         o.Payment(),
		Loyalty:         o.Loyalty(),
		StatusHistory:   o.StatusHistory(),
		TrackingDetails: o.TrackingDetails(),
		Tracking:        o.Tracking(),
		EditHistory:     o.EditHistory(),
		Queue:           o.Queue(),
		ActiveCourier:   o.ActiveCourier(),
		Courier:         contact,
		PickupProof:     o.PickupProof(),
		Admin:           o.Admin(),
		CreatedAt:       o.CreatedAt(),
		UpdatedAt:       o.UpdatedAt(),
	}
}

// TrackingView is the public progress of an order. It deliberately holds no contact,
// address, payment or courier data.
type TrackingView struct {
	Number        string
	Status        order.Status
	ServiceType   string
	CurrentStage  order.TrackingStage
	Steps         []TrackingStep
	PickupTime    *time.Time
	CompletedTime *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TrackingStep is a reached stage without who reported it or where.
type TrackingStep struct {
	Stage order.TrackingStage
	At    time.Time
}

func toTrackingView(o *order.Order) TrackingView {
	details := o.TrackingDetails()
	steps := make([]TrackingStep, 0, len(details))
	for _, d := range details {
		steps = append(steps, TrackingStep{Stage: d.Stage, At: d.At})
	}
	tracking := o.Tracking()
	return TrackingView{
		Number:        o.Number(),
		Status:        o.Status(),
		ServiceType:   o.ServiceType(),
		CurrentStage:  tracking.CurrentStage,
		Steps:         steps,
		PickupTime:    tracking.PickupTime,
		CompletedTime: tracking.CompletedTime,
		CreatedAt:     o.CreatedAt(),
		UpdatedAt:     o.UpdatedAt(),
	}
}

func toOrderSummaries(orders []*order.Order) []OrderSummary {
	out := make([]OrderSummary, 0, len(orders))
	for _, o := range orders {
		s := OrderSummary{
			ID:           o.ID(),
			Number:       o.Number(),
			Status:       o.Status(),
			CustomerName: o.Customer().Name,
			ServiceType:  o.ServiceType(),
			FinalAmount:  o.Payment().FinalAmount,
			PaymentState: o.Payment().Status,
			Address:      o.Pickup().Address,
			CreatedAt:    o.CreatedAt(),
		}
		if ac := o.ActiveCourier(); ac != nil {
			id := ac.CourierID
			s.CourierID = &id
		}
		out = append(out, s)
	}
	return out
}

// courierContact joins the courier currently bound to the order, falling back to the
// courier recorded in tracking. A courier that no longer exists yields nil.
func courierContact(ctx context.Context, couriers ports.CourierRepository, o *order.Order) (*CourierContact, error) {
	var id *kernel.UUID
	if ac := o.ActiveCourier(); ac != nil {
		id = &ac.CourierID
	} else if tr := o.Tracking(); tr.CourierID != nil {
		id = tr.CourierID
	}
	if id == nil {
		return nil, nil
	}
	c, err := couriers.Get(ctx, *id)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &CourierContact{ID: c.ID(), Name: c.Name(), Phone: c.Phone()}, nil
}

// staff are the roles that see every order.
var staff = []actor.Role{actor.RoleAdmin, actor.RoleTechnician, actor.RoleQC, actor.RoleDropper}

// authorizeOrder lets staff read any order, customers their own orders and couriers the
// orders they are bound to or were offered.
func authorizeOrder(o *order.Order, by actor.Actor) error {
	if by.ID == "" {
		return errs.ErrUnauthorized
	}
	switch {
	case by.Is(staff...):
		return nil
	case by.Is(actor.RoleCustomer) && o.BelongsTo(by.ID):
		return nil
	case by.Is(actor.RoleCourier) && offeredTo(o, by.ID):
		return nil
	}
	return fmt.Errorf("%w: order %s", errs.ErrForbidden, o.Number())
}

func offeredTo(o *order.Order, courierID string) bool {
	for _, offer := range o.Queue() {
		if offer.CourierID.String() == courierID {
			return true
		}
	}
	return false
}

// requireSelfOrStaff allows an actor to read data keyed by their own id.
func requireSelfOrStaff(by actor.Actor, id kernel.UUID, self actor.Role) error {
	if by.ID == "" {
		return errs.ErrUnauthorized
	}
	if by.Is(staff...) || (by.Is(self) && by.ID == id.String()) {
		return nil
	}
	return fmt.Errorf("%w: role %s", errs.ErrForbidden, by.Role)
}

// CourierView is the courier read model.
type CourierView struct {
	ID                  kernel.UUID
	Name                string
	Phone               string
	IsAvailable         bool
	CurrentDeliveryID   *kernel.UUID
	TotalDeliveries     int
	CompletedDeliveries int
	Location            *kernel.GeoPoint
}

func toCourierView(c *courier.Courier) CourierView {
	return CourierView{
		ID:                  c.ID(),
		Name:                c.Name(),
		Phone:               c.Phone(),
		IsAvailable:         c.IsAvailable(),
		CurrentDeliveryID:   c.CurrentDeliveryID(),
		TotalDeliveries:     c.TotalDeliveries(),
		CompletedDeliveries: c.CompletedDeliveries(),
		Location:            c.Location(),
	}
}
