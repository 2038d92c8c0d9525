package courier

import (
	"errors"
	"fmt"
	"strings"

	"shoecare/internal/core/domain/model/kernel"
	"shoecare/internal/pkg/errs"
	"shoecare/internal/pkg/guard"
)

// Domain errors for courier operations.
var (
	// ErrNameIsRequired is returned when attempting to create a courier without a name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
	// ErrPhoneIsRequired is returned when attempting to create a courier without a phone.
	ErrPhoneIsRequired = errs.NewValueIsRequiredError("phone")
	// ErrCourierIsNotConstructed is returned when using an improperly initialized Courier.
	ErrCourierIsNotConstructed = errors.New("Courier must be created via NewCourier constructor")
)

// Courier represents a courier account as seen by dispatch.
//
// Business rules:
//   - Courier must have a valid UUID, a non-empty name and phone
//   - A new courier is available and bound to nothing
//   - Bind marks the courier unavailable and records the order
//   - Release makes the courier available again and counts the finished leg
type Courier struct {
	id                  kernel.UUID
	name                string
	phone               string
	isAvailable         bool
	currentDeliveryID   *kernel.UUID
	totalDeliveries     int
	completedDeliveries int
	location            *kernel.GeoPoint
	guard               guard.ConstructorGuard
}

// NewCourier creates an available courier.
//
// Parameters:
//   - id: Unique identifier, shared with the courier's user account
//   - name: Display name (must be non-empty)
//   - phone: Contact phone (must be non-empty)
//
// Returns:
//   - *Courier: the created courier
//   - error: joined validation errors
func NewCourier(id kernel.UUID, name, phone string) (*Courier, error) {
	c := &Courier{
		isAvailable: true,
		guard:       guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		c.setID(id),
		c.setName(name),
		c.setPhone(phone),
	); err != nil {
		return nil, err
	}

	return c, nil
}

// RestoreCourier reconstructs a Courier from persistent storage.
func RestoreCourier(
	id kernel.UUID,
	name, phone string,
	isAvailable bool,
	currentDeliveryID *kernel.UUID,
	totalDeliveries, completedDeliveries int,
	location *kernel.GeoPoint,
) (*Courier, error) {
	c := &Courier{
		isAvailable:         isAvailable,
		totalDeliveries:     totalDeliveries,
		completedDeliveries: completedDeliveries,
		location:            location,
		guard:               guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		c.setID(id),
		c.setName(name),
		c.setPhone(phone),
		c.setCurrentDelivery(currentDeliveryID),
	); err != nil {
		return nil, err
	}

	return c, nil
}

// IsEqual compares two couriers by identifier.
func (c *Courier) IsEqual(other *Courier) bool {
	if other == nil {
		return false
	}
	return c.id.IsEqual(other.id)
}

// Validate checks that the Courier was created through NewCourier or RestoreCourier.
func (c *Courier) Validate() error {
	if c == nil {
		return ErrCourierIsNotConstructed
	}
	return c.guard.Validate(ErrCourierIsNotConstructed)
}

func (c *Courier) ID() kernel.UUID {
	return c.id
}

func (c *Courier) Name() string {
	return c.name
}

func (c *Courier) Phone() string {
	return c.phone
}

func (c *Courier) IsAvailable() bool {
	return c.isAvailable
}

// CurrentDeliveryID returns the order the courier is bound to, or nil.
func (c *Courier) CurrentDeliveryID() *kernel.UUID {
	if c.currentDeliveryID == nil {
		return nil
	}
	id := *c.currentDeliveryID
	return &id
}

func (c *Courier) TotalDeliveries() int {
	return c.totalDeliveries
}

func (c *Courier) CompletedDeliveries() int {
	return c.completedDeliveries
}

// Location returns the last reported position, or nil.
func (c *Courier) Location() *kernel.GeoPoint {
	return c.location
}

// Bind marks the courier as working on orderID.
func (c *Courier) Bind(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.isAvailable = false
	c.currentDeliveryID = &orderID
	c.totalDeliveries++
	return nil
}

// CompleteDelivery counts a finished leg on orderID and releases the courier.
func (c *Courier) CompleteDelivery(orderID kernel.UUID) error {
	if err := c.Release(orderID); err != nil {
		return err
	}
	c.completedDeliveries++
	return nil
}

// Release ends the courier's work on orderID without counting a delivery, as when the order
// is cancelled. The binding is only cleared when it still points at orderID, so a late
// release never frees a courier bound to a newer order.
func (c *Courier) Release(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	if c.currentDeliveryID == nil || c.currentDeliveryID.IsEqual(orderID) {
		c.currentDeliveryID = nil
		c.isAvailable = true
	}
	return nil
}

// SetAvailable lets a courier go online or offline. Going online while bound to an order
// fails with ErrCourierBusy.
func (c *Courier) SetAvailable(available bool) error {
	if available && c.currentDeliveryID != nil {
		return fmt.Errorf("%w: courier is bound to order %s", errs.ErrCourierBusy, c.currentDeliveryID)
	}
	c.isAvailable = available
	return nil
}

// UpdateLocation records the courier's last known position.
func (c *Courier) UpdateLocation(p kernel.GeoPoint) error {
	if err := p.Validate(); err != nil {
		return err
	}
	c.location = &p
	return nil
}

// Reconcile aligns availability with boundOrderID, the order that actually binds the
// courier in a busy status (nil if none). It reports whether anything changed.
func (c *Courier) Reconcile(boundOrderID *kernel.UUID) bool {
	if boundOrderID == nil {
		if c.currentDeliveryID == nil {
			return false
		}
		c.currentDeliveryID = nil
		c.isAvailable = true
		return true
	}
	if !c.isAvailable && c.currentDeliveryID != nil && c.currentDeliveryID.IsEqual(*boundOrderID) {
		return false
	}
	id := *boundOrderID
	c.currentDeliveryID = &id
	c.isAvailable = false
	return true
}

func (c *Courier) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.id = id
	return nil
}

func (c *Courier) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameIsRequired
	}
	c.name = name
	return nil
}

func (c *Courier) setPhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ErrPhoneIsRequired
	}
	c.phone = phone
	return nil
}

func (c *Courier) setCurrentDelivery(id *kernel.UUID) error {
	if id == nil {
		return nil
	}
	if err := id.Validate(); err != nil {
		return err
	}
	cp := *id
	c.currentDeliveryID = &cp
	return nil
}
