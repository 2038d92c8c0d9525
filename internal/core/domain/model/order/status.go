package order

import (
	"fmt"

	"shoecare/internal/core/domain/model/actor"
	"shoecare/internal/pkg/errs"
)

// Status is the lifecycle state of an order.
//
//	pending -> waiting_confirmation -> confirmed -> courier_assigned -> pickup_in_progress
//	  -> picked_up -> in_workshop -> processing -> qc_check -> ready_for_delivery
//	  -> delivery_assigned -> delivery_in_progress -> completed
//
// qc_check may send an order back to processing. Every non-terminal status may move to
// cancelled.
type Status string

const (
	Pending             Status = "pending"
	WaitingConfirmation Status = "waiting_confirmation"
	Confirmed           Status = "confirmed"
	CourierAssigned     Status = "courier_assigned"
	PickupInProgress    Status = "pickup_in_progress"
	PickedUp            Status = "picked_up"
	InWorkshop          Status = "in_workshop"
	Processing          Status = "processing"
	QCCheck             Status = "qc_check"
	ReadyForDelivery    Status = "ready_for_delivery"
	DeliveryAssigned    Status = "delivery_assigned"
	DeliveryInProgress  Status = "delivery_in_progress"
	Completed           Status = "completed"
	Cancelled           Status = "cancelled"
)

var transitions = map[Status]map[Status]struct{}{
	Pending:             {WaitingConfirmation: {}, Cancelled: {}},
	WaitingConfirmation: {Confirmed: {}, Cancelled: {}},
	Confirmed:           {CourierAssigned: {}, Cancelled: {}},
	CourierAssigned:     {PickupInProgress: {}, Cancelled: {}},
	PickupInProgress:    {PickedUp: {}, Cancelled: {}},
	PickedUp:            {InWorkshop: {}, Cancelled: {}},
	InWorkshop:          {Processing: {}, Cancelled: {}},
	Processing:          {QCCheck: {}, Cancelled: {}},
	QCCheck:             {ReadyForDelivery: {}, Processing: {}, Cancelled: {}},
	ReadyForDelivery:    {DeliveryAssigned: {}, Cancelled: {}},
	DeliveryAssigned:    {DeliveryInProgress: {}, Cancelled: {}},
	DeliveryInProgress:  {Completed: {}, Cancelled: {}},
	Completed:           {},
	Cancelled:           {},
}

// ownedTargets are entered only through their dedicated operation, never through AdvanceStatus.
var ownedTargets = map[Status]string{
	WaitingConfirmation: "submit payment proof",
	Confirmed:           "confirm",
	Cancelled:           "reject",
	CourierAssigned:     "assign courier",
	DeliveryAssigned:    "assign courier",
	PickupInProgress:    "accept offer",
	PickedUp:            "upload pickup proof",
	InWorkshop:          "arrive at workshop",
	DeliveryInProgress:  "accept offer",
}

type edge struct {
	from Status
	to   Status
}

// advancePermissions lists the non-admin roles allowed to take an edge through AdvanceStatus.
// Admins may take every edge that is not owned by a dedicated operation.
var advancePermissions = map[edge][]actor.Role{
	{InWorkshop, Processing}:        {actor.RoleTechnician},
	{Processing, QCCheck}:           {actor.RoleTechnician},
	{QCCheck, ReadyForDelivery}:     {actor.RoleQC},
	{QCCheck, Processing}:           {actor.RoleQC},
	{DeliveryInProgress, Completed}: {actor.RoleCourier},
}

// busyStatuses are the statuses in which the bound courier cannot accept another order.
var busyStatuses = []Status{PickupInProgress, PickedUp, InWorkshop, Processing, DeliveryInProgress}

// AllStatuses returns every valid status in lifecycle order.
func AllStatuses() []Status {
	return []Status{
		Pending, WaitingConfirmation, Confirmed, CourierAssigned, PickupInProgress, PickedUp,
		InWorkshop, Processing, QCCheck, ReadyForDelivery, DeliveryAssigned, DeliveryInProgress,
		Completed, Cancelled,
	}
}

// BusyStatuses returns the statuses that keep a bound courier busy.
func BusyStatuses() []Status {
	out := make([]Status, len(busyStatuses))
	copy(out, busyStatuses)
	return out
}

// ParseStatus validates a status read from a request or a database row.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if err := status.Validate(); err != nil {
		return "", err
	}
	return status, nil
}

func (s Status) Validate() error {
	if _, ok := transitions[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%q is not a valid status", string(s)))
	}
	return nil
}

func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == Completed || s == Cancelled
}

// IsBusy reports whether a courier bound in this status is considered busy.
func (s Status) IsBusy() bool {
	for _, b := range busyStatuses {
		if s == b {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether next is an allowed successor of s.
func (s Status) CanTransitionTo(next Status) bool {
	allowed, ok := transitions[s]
	if !ok {
		return false
	}
	_, ok = allowed[next]
	return ok
}

// ValidateTransition returns an InvalidStateError when next is not a successor of s.
func (s Status) ValidateTransition(next Status) error {
	if err := next.Validate(); err != nil {
		return err
	}
	if !s.CanTransitionTo(next) {
		return errs.NewInvalidStateError("move to "+next.String(), s)
	}
	return nil
}

// OfferLeg returns the queue leg offers are made for in this status.
func (s Status) OfferLeg() (Leg, bool) {
	switch s {
	case Confirmed, CourierAssigned:
		return LegPickup, true
	case ReadyForDelivery, DeliveryAssigned:
		return LegDelivery, true
	default:
		return "", false
	}
}

// validateAdvance applies the AdvanceStatus policy: dedicated edges are refused and
// non-admin roles are limited to advancePermissions.
func validateAdvance(from, to Status, role actor.Role) error {
	if op, owned := ownedTargets[to]; owned {
		return errs.NewInvalidStateError(fmt.Sprintf("move to %s without %s", to, op), from)
	}
	if err := from.ValidateTransition(to); err != nil {
		return err
	}
	if role == actor.RoleAdmin {
		return nil
	}
	for _, r := range advancePermissions[edge{from, to}] {
		if r == role {
			return nil
		}
	}
	return fmt.Errorf("%w: role %s cannot move an order from %s to %s", errs.ErrForbidden, role, from, to)
}

// PaymentStatus is the state of the customer's payment.
type PaymentStatus string

const (
	PaymentPending             PaymentStatus = "pending"
	PaymentWaitingConfirmation PaymentStatus = "waiting_confirmation"
	PaymentPaid                PaymentStatus = "paid"
	PaymentFailed              PaymentStatus = "failed"
)

func (p PaymentStatus) Validate() error {
	switch p {
	case PaymentPending, PaymentWaitingConfirmation, PaymentPaid, PaymentFailed:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("payment status is invalid", fmt.Errorf("%q is not a valid payment status", string(p)))
	}
}

// TrackingStage is a customer-facing progress stage.
type TrackingStage string

const (
	StagePickupAssigned     TrackingStage = "pickup_assigned"
	StagePickupInProgress   TrackingStage = "pickup_in_progress"
	StagePickedUp           TrackingStage = "picked_up"
	StageInWorkshop         TrackingStage = "in_workshop"
	StageProcessing         TrackingStage = "processing"
	StageQCCheck            TrackingStage = "qc_check"
	StageReadyForDelivery   TrackingStage = "ready_for_delivery"
	StageDeliveryAssigned   TrackingStage = "delivery_assigned"
	StageDeliveryInProgress TrackingStage = "delivery_in_progress"
	StageDelivered          TrackingStage = "delivered"
)

var trackingStages = map[TrackingStage]struct{}{
	StagePickupAssigned: {}, StagePickupInProgress: {}, StagePickedUp: {}, StageInWorkshop: {},
	StageProcessing: {}, StageQCCheck: {}, StageReadyForDelivery: {}, StageDeliveryAssigned: {},
	StageDeliveryInProgress: {}, StageDelivered: {},
}

// TrackingStageFor returns the tracking stage named like status, if there is one.
func TrackingStageFor(status Status) (TrackingStage, bool) {
	stage := TrackingStage(status)
	_, ok := trackingStages[stage]
	return stage, ok
}
