package commands

import (
	"errors"
	"strings"

	"shoecare/internal/core/domain/model/actor"
	"shoecare/internal/core/domain/model/kernel"
	"shoecare/internal/pkg/errs"
	"shoecare/internal/pkg/guard"
)

var (
	ErrStartPickupCommandIsNotConstructed = errors.New(
		"StartPickupCommand must be created via NewStartPickupCommand constructor",
	)
	ErrContactCustomerCommandIsNotConstructed = errors.New(
		"ContactCustomerCommand must be created via NewContactCustomerCommand constructor",
	)
	ErrUploadPickupProofCommandIsNotConstructed = errors.New(
		"UploadPickupProofCommand must be created via NewUploadPickupProofCommand constructor",
	)
	ErrArriveWorkshopCommandIsNotConstructed = errors.New(
		"ArriveWorkshopCommand must be created via NewArriveWorkshopCommand constructor",
	)
)

// StartPickupCommand records that the bound courier set off.
type StartPickupCommand struct {
	orderID  kernel.UUID
	location *kernel.GeoPoint
	actor    actor.Actor

	guard guard.ConstructorGuard
}

func NewStartPickupCommand(orderID kernel.UUID, location *kernel.GeoPoint, by actor.Actor) (StartPickupCommand, error) {
	if err := validateOrderID(orderID); err != nil {
		return StartPickupCommand{}, err
	}
	return StartPickupCommand{orderID: orderID, location: location, actor: by, guard: guard.NewConstructorGuard()}, nil
}

func (c StartPickupCommand) Validate() error {
	return c.guard.Validate(ErrStartPickupCommandIsNotConstructed)
}

func (c StartPickupCommand) OrderID() kernel.UUID       { return c.orderID }
func (c StartPickupCommand) Location() *kernel.GeoPoint { return c.location }
func (c StartPickupCommand) Actor() actor.Actor         { return c.actor }

// ContactCustomerCommand records that the courier contacted the customer.
type ContactCustomerCommand struct {
	orderID kernel.UUID
	notes   string
	actor   actor.Actor

	guard guard.ConstructorGuard
}

func NewContactCustomerCommand(orderID kernel.UUID, notes string, by actor.Actor) (ContactCustomerCommand, error) {
	if err := validateOrderID(orderID); err != nil {
		return ContactCustomerCommand{}, err
	}
	return ContactCustomerCommand{
		orderID: orderID,
		notes:   strings.TrimSpace(notes),
		actor:   by,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c ContactCustomerCommand) Validate() error {
	return c.guard.Validate(ErrContactCustomerCommandIsNotConstructed)
}

func (c ContactCustomerCommand) OrderID() kernel.UUID { return c.orderID }
func (c ContactCustomerCommand) Notes() string        { return c.notes }
func (c ContactCustomerCommand) Actor() actor.Actor   { return c.actor }

// UploadPickupProofCommand carries the pickup photo URL.
type UploadPickupProofCommand struct {
	orderID  kernel.UUID
	image    string
	notes    string
	location *kernel.GeoPoint
	actor    actor.Actor

	guard guard.ConstructorGuard
}

func NewUploadPickupProofCommand(
	orderID kernel.UUID,
	image, notes string,
	location *kernel.GeoPoint,
	by actor.Actor,
) (UploadPickupProofCommand, error) {
	image = strings.TrimSpace(image)
	var imageErr error
	if image == "" {
		imageErr = errs.NewValueIsRequiredError("image")
	}
	if err := errors.Join(validateOrderID(orderID), imageErr); err != nil {
		return UploadPickupProofCommand{}, err
	}
	return UploadPickupProofCommand{
		orderID:  orderID,
		image:    image,
		notes:    strings.TrimSpace(notes),
		location: location,
		actor:    by,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c UploadPickupProofCommand) Validate() error {
	return c.guard.Validate(ErrUploadPickupProofCommandIsNotConstructed)
}

func (c UploadPickupProofCommand) OrderID() kernel.UUID       { return c.orderID }
func (c UploadPickupProofCommand) Image() string              { return c.image }
func (c UploadPickupProofCommand) Notes() string              { return c.notes }
func (c UploadPickupProofCommand) Location() *kernel.GeoPoint { return c.location }
func (c UploadPickupProofCommand) Actor() actor.Actor         { return c.actor }

// ArriveWorkshopCommand hands the picked-up items over to the workshop.
type ArriveWorkshopCommand struct {
	orderID  kernel.UUID
	notes    string
	location *kernel.GeoPoint
	actor    actor.Actor

	guard guard.ConstructorGuard
}

func NewArriveWorkshopCommand(orderID kernel.UUID, notes string, location *kernel.GeoPoint, by actor.Actor) (ArriveWorkshopCommand, error) {
	if err := validateOrderID(orderID); err != nil {
		return ArriveWorkshopCommand{}, err
	}
	return ArriveWorkshopCommand{
		orderID:  orderID,
		notes:    strings.TrimSpace(notes),
		location: location,
		actor:    by,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c ArriveWorkshopCommand) Validate() error {
	return c.guard.Validate(ErrArriveWorkshopCommandIsNotConstructed)
}

func (c ArriveWorkshopCommand) OrderID() kernel.UUID       { return c.orderID }
func (c ArriveWorkshopCommand) Notes() string              { return c.notes }
func (c ArriveWorkshopCommand) Location() *kernel.GeoPoint { return c.location }
func (c ArriveWorkshopCommand) Actor() actor.Actor         { return c.actor }
