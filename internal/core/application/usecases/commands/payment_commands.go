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
	ErrSubmitPaymentProofCommandIsNotConstructed = errors.New(
		"SubmitPaymentProofCommand must be created via NewSubmitPaymentProofCommand constructor",
	)
	ErrConfirmPaymentCommandIsNotConstructed = errors.New(
		"ConfirmPaymentCommand must be created via NewConfirmPaymentCommand constructor",
	)
	ErrRejectOrderCommandIsNotConstructed = errors.New(
		"RejectOrderCommand must be created via NewRejectOrderCommand constructor",
	)
)

func validateOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("orderID", err)
	}
	return nil
}

// SubmitPaymentProofCommand attaches a transfer proof to a pending order.
type SubmitPaymentProofCommand struct {
	orderID  kernel.UUID
	proofRef string
	actor    actor.Actor

	guard guard.ConstructorGuard
}

func NewSubmitPaymentProofCommand(orderID kernel.UUID, proofRef string, by actor.Actor) (SubmitPaymentProofCommand, error) {
	proofRef = strings.TrimSpace(proofRef)
	var proofErr error
	if proofRef == "" {
		proofErr = errs.NewValueIsRequiredError("proofImage")
	}
	if err := errors.Join(validateOrderID(orderID), proofErr); err != nil {
		return SubmitPaymentProofCommand{}, err
	}
	return SubmitPaymentProofCommand{
		orderID:  orderID,
		proofRef: proofRef,
		actor:    by,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c SubmitPaymentProofCommand) Validate() error {
	return c.guard.Validate(ErrSubmitPaymentProofCommandIsNotConstructed)
}

func (c SubmitPaymentProofCommand) OrderID() kernel.UUID { return c.orderID }
func (c SubmitPaymentProofCommand) ProofRef() string     { return c.proofRef }
func (c SubmitPaymentProofCommand) Actor() actor.Actor   { return c.actor }

// ConfirmPaymentCommand marks the payment of an order as verified by an admin.
type ConfirmPaymentCommand struct {
	orderID kernel.UUID
	actor   actor.Actor

	guard guard.ConstructorGuard
}

func NewConfirmPaymentCommand(orderID kernel.UUID, by actor.Actor) (ConfirmPaymentCommand, error) {
	if err := validateOrderID(orderID); err != nil {
		return ConfirmPaymentCommand{}, err
	}
	return ConfirmPaymentCommand{orderID: orderID, actor: by, guard: guard.NewConstructorGuard()}, nil
}

func (c ConfirmPaymentCommand) Validate() error {
	return c.guard.Validate(ErrConfirmPaymentCommandIsNotConstructed)
}

func (c ConfirmPaymentCommand) OrderID() kernel.UUID { return c.orderID }
func (c ConfirmPaymentCommand) Actor() actor.Actor   { return c.actor }

// RejectOrderCommand cancels an order with a reason.
type RejectOrderCommand struct {
	orderID kernel.UUID
	reason  string
	actor   actor.Actor

	guard guard.ConstructorGuard
}

// NewRejectOrderCommand requires a non-empty reason.
func NewRejectOrderCommand(orderID kernel.UUID, reason string, by actor.Actor) (RejectOrderCommand, error) {
	reason = strings.TrimSpace(reason)
	var reasonErr error
	if reason == "" {
		reasonErr = errs.NewValueIsRequiredError("reason")
	}
	if err := errors.Join(validateOrderID(orderID), reasonErr); err != nil {
		return RejectOrderCommand{}, err
	}
	return RejectOrderCommand{orderID: orderID, reason: reason, actor: by, guard: guard.NewConstructorGuard()}, nil
}

func (c RejectOrderCommand) Validate() error {
	return c.guard.Validate(ErrRejectOrderCommandIsNotConstructed)
}

func (c RejectOrderCommand) OrderID() kernel.UUID { return c.orderID }
func (c RejectOrderCommand) Reason() string       { return c.reason }
func (c RejectOrderCommand) Actor() actor.Actor   { return c.actor }
