package order

import "time"

const (
	TopicStatusChanged   = "orders.status_changed"
	TopicCourierOffered  = "orders.courier_offered"
	TopicCourierAccepted = "orders.courier_accepted"
	TopicCancelled       = "orders.cancelled"
	TopicItemsEdited     = "orders.items_edited"
)

// DomainEvent is collected by the aggregate and published after the change is committed.
type DomainEvent interface {
	Topic() string
}

type StatusChanged struct {
	OrderID     string    `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	From        Status    `json:"from"`
	To          Status    `json:"to"`
	ActorID     string    `json:"actorId"`
	At          time.Time `json:"at"`
}

func (StatusChanged) Topic() string { return TopicStatusChanged }

type CourierOffered struct {
	OrderID     string    `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	CourierID   string    `json:"courierId"`
	Leg         Leg       `json:"leg"`
	At          time.Time `json:"at"`
}

func (CourierOffered) Topic() string { return TopicCourierOffered }

type CourierAccepted struct {
	OrderID     string    `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	CourierID   string    `json:"courierId"`
	Leg         Leg       `json:"leg"`
	At          time.Time `json:"at"`
}

func (CourierAccepted) Topic() string { return TopicCourierAccepted }

type OrderCancelled struct {
	OrderID        string    `json:"orderId"`
	OrderNumber    string    `json:"orderNumber"`
	Reason         string    `json:"reason"`
	RefundedPoints int64     `json:"refundedPoints"`
	At             time.Time `json:"at"`
}

func (OrderCancelled) Topic() string { return TopicCancelled }

type ItemsEdited struct {
	OrderID     string    `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	Subtotal    int64     `json:"subtotal"`
	FinalAmount int64     `json:"finalAmount"`
	At          time.Time `json:"at"`
}

func (ItemsEdited) Topic() string { return TopicItemsEdited }
