package commands

import (
	"context"
	"log/slog"

	"shoecare/internal/core/domain/model/order"
	"shoecare/internal/core/ports"
)

// SubmitPaymentProofCommandHandler moves a pending order to waiting_confirmation.
type SubmitPaymentProofCommandHandler struct {
	uowFactory UoWFactory
}

func NewSubmitPaymentProofCommandHandler(uowFactory UoWFactory) SubmitPaymentProofCommandHandler {
	return SubmitPaymentProofCommandHandler{uowFactory: uowFactory}
}

func (h SubmitPaymentProofCommandHandler) Handle(ctx context.Context, cmd SubmitPaymentProofCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	_, err := updateOrder(ctx, h.uowFactory, cmd.OrderID(), func(_ UoW, o *order.Order) (order.Outcome, error) {
		return noOutcome(o.SubmitPaymentProof(cmd.ProofRef(), cmd.Actor()))
	})
	return err
}

// ConfirmPaymentCommandHandler confirms a waiting order.
type ConfirmPaymentCommandHandler struct {
	uowFactory UoWFactory
}

func NewConfirmPaymentCommandHandler(uowFactory UoWFactory) ConfirmPaymentCommandHandler {
	return ConfirmPaymentCommandHandler{uowFactory: uowFactory}
}

func (h ConfirmPaymentCommandHandler) Handle(ctx context.Context, cmd ConfirmPaymentCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	_, err := updateOrder(ctx, h.uowFactory, cmd.OrderID(), func(_ UoW, o *order.Order) (order.Outcome, error) {
		return noOutcome(o.Confirm(cmd.Actor()))
	})
	return err
}

// RejectOrderCommandHandler cancels an order, refunds the used loyalty points, releases
// a bound courier and, after the commit, deletes the payment proof image.
type RejectOrderCommandHandler struct {
	uowFactory UoWFactory
	images     ports.ImageStore
	logger     *slog.Logger
}

func NewRejectOrderCommandHandler(uowFactory UoWFactory, images ports.ImageStore, logger *slog.Logger) RejectOrderCommandHandler {
	return RejectOrderCommandHandler{
		uowFactory: uowFactory,
		images:     images,
		logger:     logger.With("component", "RejectOrderCommandHandler"),
	}
}

func (h RejectOrderCommandHandler) Handle(ctx context.Context, cmd RejectOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	out, err := updateOrder(ctx, h.uowFactory, cmd.OrderID(), func(_ UoW, o *order.Order) (order.Outcome, error) {
		return o.Reject(cmd.Reason(), cmd.Actor())
	})
	if err != nil {
		return err
	}

	if out.RemovedProof != "" && h.images != nil {
		if err = h.images.Delete(ctx, out.RemovedProof); err != nil {
			h.logger.WarnContext(ctx, "failed to delete payment proof",
				"order_id", cmd.OrderID().String(), "proof", out.RemovedProof, "error", err)
		}
	}
	return nil
}
