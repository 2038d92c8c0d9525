// Package orderrepo persists the order aggregate in PostgreSQL. The order row carries the
// current state; status history, tracking details, item edits and courier offers live in
// child tables that only ever receive appended rows, except offers whose status moves.
package orderrepo

import (
	"encoding/json"
	"time"

	"shoecare/internal/core/domain/model/kernel"
	"shoecare/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// OrderDTO is the orders row.
type OrderDTO struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey"`
	Number      string           `gorm:"type:varchar(32);not null;uniqueIndex"`
	Status      string           `gorm:"type:varchar(32);not null;index"`
	Customer    CustomerDTO      `gorm:"embedded;embeddedPrefix:customer_"`
	ServiceType string           `gorm:"type:varchar(64);not null"`
	Items       datatypes.JSON   `gorm:"type:jsonb;not null"`
	Pickup      PickupDTO        `gorm:"embedded;embeddedPrefix:pickup_"`
	Payment     PaymentDTO       `gorm:"embedded;embeddedPrefix:payment_"`
	Loyalty     LoyaltyDTO       `gorm:"embedded;embeddedPrefix:loyalty_"`
	Tracking    TrackingDTO      `gorm:"embedded;embeddedPrefix:tracking_"`
	Active      ActiveCourierDTO `gorm:"embedded;embeddedPrefix:active_"`
	Proof       PickupProofDTO   `gorm:"embedded;embeddedPrefix:proof_"`
	Admin       AdminDTO         `gorm:"embedded;embeddedPrefix:admin_"`
	CreatedAt   time.Time        `gorm:"not null;index"`
	UpdatedAt   time.Time        `gorm:"not null"`

	History         []StatusHistoryDTO  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	TrackingDetails []TrackingDetailDTO `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Edits           []EditDTO           `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Offers          []OfferDTO          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

// PointDTO is an optional coordinate pair.
type PointDTO struct {
	Lat *float64
	Lng *float64
}

type CustomerDTO struct {
	Name    string     `gorm:"type:varchar(255);not null"`
	Phone   string     `gorm:"type:varchar(32);not null"`
	UserID  *uuid.UUID `gorm:"type:uuid;index"`
	IsGuest bool
}

type PickupDTO struct {
	Address     string `gorm:"type:text;not null"`
	Lat         float64
	Lng         float64
	DeliveryFee int64
}

type PaymentDTO struct {
	Subtotal       int64
	DeliveryFee    int64
	DiscountPoints int64
	FinalAmount    int64
	Amount         int64
	Status         string `gorm:"type:varchar(16);not null"`
	ProofImage     string `gorm:"type:text"`
	PaidAt         *time.Time
}

type LoyaltyDTO struct {
	Earned   int64
	Used     int64
	Rate     decimal.Decimal `gorm:"type:numeric(8,4);not null;default:0"`
	Refunded bool
}

type TrackingDTO struct {
	CurrentStage  string     `gorm:"type:varchar(32)"`
	CourierID     *uuid.UUID `gorm:"type:uuid"`
	PickupTime    *time.Time
	CompletedTime *time.Time
}

// ActiveCourierDTO is nullable as a whole; CourierID is nil when no courier is bound.
type ActiveCourierDTO struct {
	CourierID         *uuid.UUID `gorm:"type:uuid;index"`
	Leg               string     `gorm:"type:varchar(16)"`
	AcceptedAt        *time.Time
	StartedPickupAt   *time.Time
	Location          PointDTO `gorm:"embedded;embeddedPrefix:location_"`
	CustomerContacted bool
	ContactedAt       *time.Time
}

// PickupProofDTO is nullable as a whole; At is nil when no proof was uploaded.
type PickupProofDTO struct {
	Image      string `gorm:"type:text"`
	At         *time.Time
	Notes      string   `gorm:"type:text"`
	Location   PointDTO `gorm:"embedded;embeddedPrefix:location_"`
	UploadedBy string   `gorm:"type:varchar(64)"`
}

type AdminDTO struct {
	ConfirmedBy        string `gorm:"type:varchar(64)"`
	ConfirmedAt        *time.Time
	CancelledBy        string `gorm:"type:varchar(64)"`
	CancelledAt        *time.Time
	CancellationReason string `gorm:"type:text"`
}

// StatusHistoryDTO is one order_status_history row. ID orders the entries.
type StatusHistoryDTO struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Status    string    `gorm:"type:varchar(32);not null"`
	At        time.Time `gorm:"not null"`
	ActorID   string    `gorm:"type:varchar(64)"`
	ActorName string    `gorm:"type:varchar(255)"`
	Notes     string    `gorm:"type:text"`
	Proof     string    `gorm:"type:text"`
	Location  PointDTO  `gorm:"embedded;embeddedPrefix:location_"`
}

func (StatusHistoryDTO) TableName() string {
	return "order_status_history"
}

type TrackingDetailDTO struct {
	ID       int64     `gorm:"primaryKey;autoIncrement"`
	OrderID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Stage    string    `gorm:"type:varchar(32);not null"`
	At       time.Time `gorm:"not null"`
	ActorID  string    `gorm:"type:varchar(64)"`
	Notes    string    `gorm:"type:text"`
	Location PointDTO  `gorm:"embedded;embeddedPrefix:location_"`
}

func (TrackingDetailDTO) TableName() string {
	return "order_tracking_details"
}

type EditDTO struct {
	ID             int64          `gorm:"primaryKey;autoIncrement"`
	OrderID        uuid.UUID      `gorm:"type:uuid;not null;index"`
	At             time.Time      `gorm:"not null"`
	ActorID        string         `gorm:"type:varchar(64)"`
	ActorName      string         `gorm:"type:varchar(255)"`
	Reason         string         `gorm:"type:text;not null"`
	ItemsBefore    datatypes.JSON `gorm:"type:jsonb"`
	ItemsAfter     datatypes.JSON `gorm:"type:jsonb"`
	SubtotalBefore int64
	SubtotalAfter  int64
}

func (EditDTO) TableName() string {
	return "order_edit_history"
}

// OfferDTO is one courier_offers row. Position keeps the queue order.
type OfferDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID `gorm:"type:uuid;not null;index"`
	CourierID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Position    int       `gorm:"not null"`
	Leg         string    `gorm:"type:varchar(16);not null"`
	Status      string    `gorm:"type:varchar(16);not null"`
	AssignedAt  time.Time `gorm:"not null"`
	AssignedBy  string    `gorm:"type:varchar(64)"`
	Notes       string    `gorm:"type:text"`
	AcceptedAt  *time.Time
	CompletedAt *time.Time
}

func (OfferDTO) TableName() string {
	return "courier_offers"
}

// itemDTO is the JSON shape of an item.
type itemDTO struct {
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

func encodeItems(items []order.Item) (datatypes.JSON, error) {
	out := make([]itemDTO, 0, len(items))
	for _, it := range items {
		out = append(out, itemDTO{Name: it.Name, Price: it.Price, Quantity: it.Quantity})
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func decodeItems(raw datatypes.JSON) ([]order.Item, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var in []itemDTO
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, err
	}
	out := make([]order.Item, 0, len(in))
	for _, it := range in {
		out = append(out, order.Item{Name: it.Name, Price: it.Price, Quantity: it.Quantity})
	}
	return out, nil
}

func fromPoint(p *kernel.GeoPoint) PointDTO {
	if p == nil {
		return PointDTO{}
	}
	lat, lng := p.Lat(), p.Lng()
	return PointDTO{Lat: &lat, Lng: &lng}
}

func toPoint(p PointDTO) (*kernel.GeoPoint, error) {
	if p.Lat == nil || p.Lng == nil {
		return nil, nil
	}
	gp, err := kernel.NewGeoPoint(*p.Lat, *p.Lng)
	if err != nil {
		return nil, err
	}
	return &gp, nil
}

func fromID(id *kernel.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	raw := id.Bytes()
	return &raw
}

func toID(id *uuid.UUID) (*kernel.UUID, error) {
	if id == nil {
		return nil, nil
	}
	out, err := kernel.UUIDFromGoogle(*id)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// fromDomain maps the order row. Child rows are written from the aggregate's changes.
func fromDomain(s order.Snapshot) (OrderDTO, error) {
	items, err := encodeItems(s.Items)
	if err != nil {
		return OrderDTO{}, err
	}

	dto := OrderDTO{
		ID:     s.ID.Bytes(),
		Number: s.Number,
		Status: s.Status.String(),
		Customer: CustomerDTO{
			Name:    s.Customer.Name,
			Phone:   s.Customer.Phone,
			UserID:  fromID(s.Customer.UserID),
			IsGuest: s.Customer.IsGuest,
		},
		ServiceType: s.ServiceType,
		Items:       items,
		Pickup: PickupDTO{
			Address:     s.Pickup.Address,
			Lat:         s.Pickup.Point.Lat(),
			Lng:         s.Pickup.Point.Lng(),
			DeliveryFee: s.Pickup.DeliveryFee,
		},
		Payment: PaymentDTO{
			Subtotal:       s.Payment.Subtotal,
			DeliveryFee:    s.Payment.DeliveryFee,
			DiscountPoints: s.Payment.DiscountPoints,
			FinalAmount:    s.Payment.FinalAmount,
			Amount:         s.Payment.Amount,
			Status:         string(s.Payment.Status),
			ProofImage:     s.Payment.ProofImage,
			PaidAt:         s.Payment.PaidAt,
		},
		Loyalty: LoyaltyDTO{
			Earned:   s.Loyalty.Earned,
			Used:     s.Loyalty.Used,
			Rate:     s.Loyalty.Rate,
			Refunded: s.Loyalty.Refunded,
		},
		Tracking: TrackingDTO{
			CurrentStage:  string(s.Tracking.CurrentStage),
			CourierID:     fromID(s.Tracking.CourierID),
			PickupTime:    s.Tracking.PickupTime,
			CompletedTime: s.Tracking.CompletedTime,
		},
		Admin: AdminDTO{
			ConfirmedBy:        s.Admin.ConfirmedBy,
			ConfirmedAt:        s.Admin.ConfirmedAt,
			CancelledBy:        s.Admin.CancelledBy,
			CancelledAt:        s.Admin.CancelledAt,
			CancellationReason: s.Admin.CancellationReason,
		},
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
	if ac := s.ActiveCourier; ac != nil {
		acceptedAt := ac.AcceptedAt
		dto.Active = ActiveCourierDTO{
			CourierID:         fromID(&ac.CourierID),
			Leg:               ac.Leg.String(),
			AcceptedAt:        &acceptedAt,
			StartedPickupAt:   ac.StartedPickupAt,
			Location:          fromPoint(ac.CurrentLocation),
			CustomerContacted: ac.CustomerContacted,
			ContactedAt:       ac.ContactedAt,
		}
	}
	if pp := s.PickupProof; pp != nil {
		at := pp.At
		dto.Proof = PickupProofDTO{
			Image:      pp.Image,
			At:         &at,
			Notes:      pp.Notes,
			Location:   fromPoint(pp.Location),
			UploadedBy: pp.UploadedBy,
		}
	}
	return dto, nil
}

// toDomain rebuilds the aggregate from a row with its preloaded children.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromGoogle(dto.ID)
	if err != nil {
		return nil, err
	}
	userID, err := toID(dto.Customer.UserID)
	if err != nil {
		return nil, err
	}
	trackingCourier, err := toID(dto.Tracking.CourierID)
	if err != nil {
		return nil, err
	}
	items, err := decodeItems(dto.Items)
	if err != nil {
		return nil, err
	}
	pickupPoint, err := kernel.NewGeoPoint(dto.Pickup.Lat, dto.Pickup.Lng)
	if err != nil {
		return nil, err
	}

	s := order.Snapshot{
		ID:     id,
		Number: dto.Number,
		Status: order.Status(dto.Status),
		Customer: order.CustomerInfo{
			Name:    dto.Customer.Name,
			Phone:   dto.Customer.Phone,
			UserID:  userID,
			IsGuest: dto.Customer.IsGuest,
		},
		ServiceType: dto.ServiceType,
		Items:       items,
		Pickup: order.PickupLocation{
			Address:     dto.Pickup.Address,
			Point:       pickupPoint,
			DeliveryFee: dto.Pickup.DeliveryFee,
		},
		Payment: order.Payment{
			Subtotal:       dto.Payment.Subtotal,
			DeliveryFee:    dto.Payment.DeliveryFee,
			DiscountPoints: dto.Payment.DiscountPoints,
			FinalAmount:    dto.Payment.FinalAmount,
			Amount:         dto.Payment.Amount,
			Status:         order.PaymentStatus(dto.Payment.Status),
			ProofImage:     dto.Payment.ProofImage,
			PaidAt:         dto.Payment.PaidAt,
		},
		Loyalty: order.LoyaltyPoints{
			Earned:   dto.Loyalty.Earned,
			Used:     dto.Loyalty.Used,
			Rate:     dto.Loyalty.Rate,
			Refunded: dto.Loyalty.Refunded,
		},
		Tracking: order.Tracking{
			CurrentStage:  order.TrackingStage(dto.Tracking.CurrentStage),
			CourierID:     trackingCourier,
			PickupTime:    dto.Tracking.PickupTime,
			CompletedTime: dto.Tracking.CompletedTime,
		},
		Admin: order.AdminActions{
			ConfirmedBy:        dto.Admin.ConfirmedBy,
			ConfirmedAt:        dto.Admin.ConfirmedAt,
			CancelledBy:        dto.Admin.CancelledBy,
			CancelledAt:        dto.Admin.CancelledAt,
			CancellationReason: dto.Admin.CancellationReason,
		},
		CreatedAt: dto.CreatedAt,
		UpdatedAt: dto.UpdatedAt,
	}

	if dto.Active.CourierID != nil {
		courierID, err := kernel.UUIDFromGoogle(*dto.Active.CourierID)
		if err != nil {
			return nil, err
		}
		loc, err := toPoint(dto.Active.Location)
		if err != nil {
			return nil, err
		}
		ac := &order.ActiveCourier{
			CourierID:         courierID,
			Leg:               order.Leg(dto.Active.Leg),
			StartedPickupAt:   dto.Active.StartedPickupAt,
			CurrentLocation:   loc,
			CustomerContacted: dto.Active.CustomerContacted,
			ContactedAt:       dto.Active.ContactedAt,
		}
		if dto.Active.AcceptedAt != nil {
			ac.AcceptedAt = *dto.Active.AcceptedAt
		}
		s.ActiveCourier = ac
	}
	if dto.Proof.At != nil {
		loc, err := toPoint(dto.Proof.Location)
		if err != nil {
			return nil, err
		}
		s.PickupProof = &order.PickupProof{
			Image:      dto.Proof.Image,
			At:         *dto.Proof.At,
			Notes:      dto.Proof.Notes,
			Location:   loc,
			UploadedBy: dto.Proof.UploadedBy,
		}
	}

	if s.History, err = historyToDomain(dto.History); err != nil {
		return nil, err
	}
	if s.TrackingDetails, err = trackingToDomain(dto.TrackingDetails); err != nil {
		return nil, err
	}
	if s.Edits, err = editsToDomain(dto.Edits); err != nil {
		return nil, err
	}
	if s.Offers, err = offersToDomain(dto.Offers); err != nil {
		return nil, err
	}
	return order.Restore(s)
}

func historyFromDomain(orderID uuid.UUID, entries []order.StatusEntry) []StatusHistoryDTO {
	out := make([]StatusHistoryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, StatusHistoryDTO{
			OrderID:   orderID,
			Status:    e.Status.String(),
			At:        e.At,
			ActorID:   e.ActorID,
			ActorName: e.ActorName,
			Notes:     e.Notes,
			Proof:     e.Proof,
			Location:  fromPoint(e.Location),
		})
	}
	return out
}

func historyToDomain(rows []StatusHistoryDTO) ([]order.StatusEntry, error) {
	out := make([]order.StatusEntry, 0, len(rows))
	for _, r := range rows {
		loc, err := toPoint(r.Location)
		if err != nil {
			return nil, err
		}
		out = append(out, order.StatusEntry{
			Status:    order.Status(r.Status),
			At:        r.At,
			ActorID:   r.ActorID,
			ActorName: r.ActorName,
			Notes:     r.Notes,
			Proof:     r.Proof,
			Location:  loc,
		})
	}
	return out, nil
}

func trackingFromDomain(orderID uuid.UUID, details []order.TrackingDetail) []TrackingDetailDTO {
	out := make([]TrackingDetailDTO, 0, len(details))
	for _, d := range details {
		out = append(out, TrackingDetailDTO{
			OrderID:  orderID,
			Stage:    string(d.Stage),
			At:       d.At,
			ActorID:  d.ActorID,
			Notes:    d.Notes,
			Location: fromPoint(d.Location),
		})
	}
	return out
}

func trackingToDomain(rows []TrackingDetailDTO) ([]order.TrackingDetail, error) {
	out := make([]order.TrackingDetail, 0, len(rows))
	for _, r := range rows {
		loc, err := toPoint(r.Location)
		if err != nil {
			return nil, err
		}
		out = append(out, order.TrackingDetail{
			Stage:    order.TrackingStage(r.Stage),
			At:       r.At,
			ActorID:  r.ActorID,
			Notes:    r.Notes,
			Location: loc,
		})
	}
	return out, nil
}

func editsFromDomain(orderID uuid.UUID, edits []order.EditRecord) ([]EditDTO, error) {
	out := make([]EditDTO, 0, len(edits))
	for _, e := range edits {
		before, err := encodeItems(e.ItemsBefore)
		if err != nil {
			return nil, err
		}
		after, err := encodeItems(e.ItemsAfter)
		if err != nil {
			return nil, err
		}
		out = append(out, EditDTO{
			OrderID:        orderID,
			At:             e.At,
			ActorID:        e.ActorID,
			ActorName:      e.ActorName,
			Reason:         e.Reason,
			ItemsBefore:    before,
			ItemsAfter:     after,
			SubtotalBefore: e.SubtotalBefore,
			SubtotalAfter:  e.SubtotalAfter,
		})
	}
	return out, nil
}

func editsToDomain(rows []EditDTO) ([]order.EditRecord, error) {
	out := make([]order.EditRecord, 0, len(rows))
	for _, r := range rows {
		before, err := decodeItems(r.ItemsBefore)
		if err != nil {
			return nil, err
		}
		after, err := decodeItems(r.ItemsAfter)
		if err != nil {
			return nil, err
		}
		out = append(out, order.EditRecord{
			At:             r.At,
			ActorID:        r.ActorID,
			ActorName:      r.ActorName,
			Reason:         r.Reason,
			ItemsBefore:    before,
			ItemsAfter:     after,
			SubtotalBefore: r.SubtotalBefore,
			SubtotalAfter:  r.SubtotalAfter,
		})
	}
	return out, nil
}

func offerFromDomain(orderID uuid.UUID, position int, o order.CourierOffer) OfferDTO {
	return OfferDTO{
		ID:          o.ID.Bytes(),
		OrderID:     orderID,
		CourierID:   o.CourierID.Bytes(),
		Position:    position,
		Leg:         o.Leg.String(),
		Status:      o.Status.String(),
		AssignedAt:  o.AssignedAt,
		AssignedBy:  o.AssignedBy,
		Notes:       o.Notes,
		AcceptedAt:  o.AcceptedAt,
		CompletedAt: o.CompletedAt,
	}
}

func offersToDomain(rows []OfferDTO) ([]order.CourierOffer, error) {
	out := make([]order.CourierOffer, 0, len(rows))
	for _, r := range rows {
		id, err := kernel.UUIDFromGoogle(r.ID)
		if err != nil {
			return nil, err
		}
		courierID, err := kernel.UUIDFromGoogle(r.CourierID)
		if err != nil {
			return nil, err
		}
		out = append(out, order.CourierOffer{
			ID:          id,
			CourierID:   courierID,
			Leg:         order.Leg(r.Leg),
			Status:      order.OfferStatus(r.Status),
			AssignedAt:  r.AssignedAt,
			AssignedBy:  r.AssignedBy,
			Notes:       r.Notes,
			AcceptedAt:  r.AcceptedAt,
			CompletedAt: r.CompletedAt,
		})
	}
	return out, nil
}
