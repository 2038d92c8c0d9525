package commands_test

import (
	"regexp"
	"testing"
	"time"

	"shoecare/internal/core/application/usecases/commands"
	"shoecare/internal/core/domain/model/actor"
	"shoecare/internal/core/domain/model/customer"
	"shoecare/internal/core/domain/model/kernel"
	"shoecare/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var loyaltyRate = decimal.RequireFromString("0.01")

func newCreateOrderCommand(t *testing.T, by actor.Actor, usePoints int64) commands.CreateOrderCommand {
	t.Helper()
	point, err := kernel.NewGeoPoint(-6.2, 106.8)
	require.NoError(t, err)
	cmd, err := commands.NewCreateOrderCommand(
		by,
		order.CustomerInfo{Name: "Budi", Phone: "08123"},
		"deep_clean",
		[]order.Item{{Name: "Sneakers", Price: 50000, Quantity: 2}},
		order.PickupLocation{Address: "Jl. Sudirman 1", Point: point, DeliveryFee: 10000},
		usePoints,
	)
	require.NoError(t, err)
	return cmd
}

func TestCreateOrderCommandHandler_Handle(t *testing.T) {
	t.Run("should place a guest order without touching loyalty points", func(t *testing.T) {
		ctx := t.Context()
		guest := actor.Actor{Role: actor.RoleCustomer}
		cmd := newCreateOrderCommand(t, guest, 0)

		var captured *order.Order
		mockOrders := new(MockOrderRepository)
		mockUoW := new(MockUoW)
		mockFactory := new(MockUoWFactory)

		mock.InOrder(
			mockUoW.On("Begin", ctx).Return(nil).Once(),
			mockUoW.On("OrderRepository").Return(mockOrders).Once(),
			mockOrders.On("Add", ctx, mock.MatchedBy(func(o *order.Order) bool {
				captured = o
				return true
			})).Return(nil).Once(),
			mockUoW.On("Commit", ctx).Return(nil).Once(),
			mockUoW.On("Rollback", ctx).Return(nil).Once(),
		)
		mockFactory.On("Create").Return(mockUoW).Once()

		created, err := commands.NewCreateOrderCommandHandler(mockFactory, loyaltyRate).Handle(ctx, cmd)

		require.NoError(t, err)
		require.NotNil(t, captured)
		assert.Equal(t, captured.ID(), created.ID)
		assert.Equal(t, int64(110000), created.FinalAmount)
		assert.True(t, captured.Customer().IsGuest)
		assert.Nil(t, captured.Customer().UserID)
		assert.Equal(t, order.Pending, captured.Status())
		mockUoW.AssertNotCalled(t, "CustomerRepository")
		mockUoW.AssertExpectations(t)
		mockOrders.AssertExpectations(t)
	})

	t.Run("should deduct spent points from a registered customer", func(t *testing.T) {
		ctx := t.Context()
		userID := kernel.NewUUID()
		registered := actor.Actor{ID: userID.String(), Name: "Budi", Role: actor.RoleCustomer}
		cmd := newCreateOrderCommand(t, registered, 2000)

		mockOrders := new(MockOrderRepository)
		mockCustomers := new(MockCustomerRepository)
		mockUoW := new(MockUoW)
		mockFactory := new(MockUoWFactory)

		mock.InOrder(
			mockUoW.On("Begin", ctx).Return(nil).Once(),
			mockUoW.On("CustomerRepository").Return(mockCustomers).Once(),
			mockCustomers.On("Register", ctx, mock.MatchedBy(func(c *customer.Customer) bool {
				return c.ID().IsEqual(userID) && c.LoyaltyPoints() == 0
			})).Return(nil).Once(),
			mockCustomers.On("AdjustLoyaltyPoints", ctx, userID, int64(-2000)).Return(nil).Once(),
			mockUoW.On("OrderRepository").Return(mockOrders).Once(),
			mockOrders.On("Add", ctx, mock.AnythingOfType("*order.Order")).Return(nil).Once(),
			mockUoW.On("Commit", ctx).Return(nil).Once(),
			mockUoW.On("Rollback", ctx).Return(nil).Once(),
		)
		mockFactory.On("Create").Return(mockUoW).Once()

		created, err := commands.NewCreateOrderCommandHandler(mockFactory, loyaltyRate).Handle(ctx, cmd)

		require.NoError(t, err)
		assert.Equal(t, int64(108000), created.FinalAmount)
		mockCustomers.AssertExpectations(t)
		mockOrders.AssertExpectations(t)
		mockUoW.AssertExpectations(t)
	})

	t.Run("should not store the order when the balance is too low", func(t *testing.T) {
		ctx := t.Context()
		userID := kernel.NewUUID()
		registered := actor.Actor{ID: userID.String(), Name: "Budi", Role: actor.RoleCustomer}
		cmd := newCreateOrderCommand(t, registered, 2000)

		mockOrders := new(MockOrderRepository)
		mockCustomers := new(MockCustomerRepository)
		mockUoW := new(MockUoW)
		mockFactory := new(MockUoWFactory)

		mock.InOrder(
			mockUoW.On("Begin", ctx).Return(nil).Once(),
			mockUoW.On("CustomerRepository").Return(mockCustomers).Once(),
			mockCustomers.On("Register", ctx, mock.MatchedBy(func(c *customer.Customer) bool {
				return c.ID().IsEqual(userID) && c.LoyaltyPoints() == 0
			})).Return(nil).Once(),
			mockCustomers.On("AdjustLoyaltyPoints", ctx, userID, int64(-2000)).
				Return(customer.ErrInsufficientPoints).Once(),
			mockUoW.On("Rollback", ctx).Return(nil).Once(),
		)
		mockFactory.On("Create").Return(mockUoW).Once()

		_, err := commands.NewCreateOrderCommandHandler(mockFactory, loyaltyRate).Handle(ctx, cmd)

		require.ErrorIs(t, err, customer.ErrInsufficientPoints)
		mockOrders.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
		mockUoW.AssertExpectations(t)
	})

	t.Run("should refuse points for a guest before opening a transaction", func(t *testing.T) {
		mockFactory := new(MockUoWFactory)
		cmd := newCreateOrderCommand(t, actor.Actor{Role: actor.RoleCustomer}, 100)

		_, err := commands.NewCreateOrderCommandHandler(mockFactory, loyaltyRate).Handle(t.Context(), cmd)

		require.Error(t, err)
		mockFactory.AssertNotCalled(t, "Create")
	})
}

func TestNewOrderNumber(t *testing.T) {
	at := time.Date(2026, 3, 9, 23, 0, 0, 0, time.UTC)

	number := commands.NewOrderNumber(at)

	assert.Regexp(t, regexp.MustCompile(`^SC-20260309-[0-9A-F]{6}$`), number)
	assert.NotEqual(t, number, commands.NewOrderNumber(at))
}
