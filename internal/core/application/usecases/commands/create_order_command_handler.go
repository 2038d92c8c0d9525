package commands

import (
	"context"
	"strings"
	"time"

	"shoecare/internal/core/domain/model/actor"
	"shoecare/internal/core/domain/model/customer"
	"shoecare/internal/core/domain/model/kernel"
	"shoecare/internal/core/domain/model/order"
	"shoecare/internal/core/ports"

	"github.com/shopspring/decimal"
)

// CreatedOrder identifies a newly placed order.
type CreatedOrder struct {
	ID          kernel.UUID
	Number      string
	FinalAmount int64
}

// CreateOrderCommandHandler places orders. When the customer spends loyalty points they
// are deducted in the same transaction with a conditional decrement, so two orders can
// never spend the same points.
//
// Example:
//
//	handler := NewCreateOrderCommandHandler(uowFactory, decimal.RequireFromString("0.01"))
//	created, err := handler.Handle(ctx, cmd)
//	if err != nil {
//	    return fmt.Errorf("order creation failed: %w", err)
//	}
//	fmt.Println(created.Number) // SC-20260101-3F9A1C
type CreateOrderCommandHandler struct {
	uowFactory  UoWFactory
	loyaltyRate decimal.Decimal
}

// NewCreateOrderCommandHandler creates a handler that earns loyaltyRate points per unit
// of subtotal.
func NewCreateOrderCommandHandler(uowFactory UoWFactory, loyaltyRate decimal.Decimal) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory:  uowFactory,
		loyaltyRate: loyaltyRate,
	}
}

func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (CreatedOrder, error) {
	if err := cmd.Validate(); err != nil {
		return CreatedOrder{}, err
	}

	info := cmd.Customer()
	info.UserID = nil
	info.IsGuest = true
	if cmd.Actor().Role == actor.RoleCustomer {
		if userID, err := kernel.UUIDFromString(cmd.Actor().ID); err == nil {
			info.UserID = &userID
			info.IsGuest = false
		}
	}

	o, err := order.NewOrder(order.NewOrderParams{
		Number:      NewOrderNumber(time.Now()),
		Customer:    info,
		ServiceType: cmd.ServiceType(),
		Items:       cmd.Items(),
		Pickup:      cmd.Pickup(),
		UsePoints:   cmd.UsePoints(),
		LoyaltyRate: h.loyaltyRate,
		By:          cmd.Actor(),
	})
	if err != nil {
		return CreatedOrder{}, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return CreatedOrder{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if info.UserID != nil {
		if err = h.chargeCustomer(ctx, uow.CustomerRepository(), info, cmd.UsePoints()); err != nil {
			return CreatedOrder{}, err
		}
	}

	if err = uow.OrderRepository().Add(ctx, o); err != nil {
		return CreatedOrder{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return CreatedOrder{}, err
	}

	return CreatedOrder{ID: o.ID(), Number: o.Number(), FinalAmount: o.Payment().FinalAmount}, nil
}

// chargeCustomer registers the customer on their first order and deducts the points
// spent on this one.
func (h CreateOrderCommandHandler) chargeCustomer(ctx context.Context, customers ports.CustomerRepository,
	info order.CustomerInfo, usePoints int64) error {
	registered, err := customer.NewCustomer(*info.UserID, info.Name, info.Phone)
	if err != nil {
		return err
	}
	if err = customers.Register(ctx, registered); err != nil {
		return err
	}
	if usePoints > 0 {
		return customers.AdjustLoyaltyPoints(ctx, *info.UserID, -usePoints)
	}
	return nil
}

// NewOrderNumber formats SC-YYYYMMDD-XXXXXX with six random hex digits.
func NewOrderNumber(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(kernel.NewUUID().String(), "-", "")[:6])
	return "SC-" + at.UTC().Format("20060102") + "-" + suffix
}
