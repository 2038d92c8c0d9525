package orderrepo_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"shoecare/internal/adapters/out/postgres/orderrepo"
	"shoecare/internal/core/domain/model/actor"
	"shoecare/internal/core/domain/model/kernel"
	"shoecare/internal/core/domain/model/order"
	"shoecare/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var admin = actor.Actor{ID: "admin-1", Name: "Admin", Role: actor.RoleAdmin}

// MockAggregateTracker is a mock implementation of aggregateTracker interface.
type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate any) {
	m.Called(id, aggregate)
}

// OrderRepositoryIntegrationTestSuite verifies the order mapping against PostgreSQL.
type OrderRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *orderrepo.GormOrderRepository
	tracker    *MockAggregateTracker
	seq        int
}

func TestOrderRepositoryIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	suite.Run(t, new(OrderRepositoryIntegrationTestSuite))
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(
		&orderrepo.OrderDTO{},
		&orderrepo.StatusHistoryDTO{},
		&orderrepo.TrackingDetailDTO{},
		&orderrepo.EditDTO{},
		&orderrepo.OfferDTO{},
	))
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec(
		"TRUNCATE TABLE orders, order_status_history, order_tracking_details, order_edit_history, courier_offers",
	).Error)

	suite.tracker = new(MockAggregateTracker)
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything)
	suite.repository = orderrepo.NewGormOrderRepository(suite.db, false, suite.tracker)
}

func (suite *OrderRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *OrderRepositoryIntegrationTestSuite) createTestOrder(userID *kernel.UUID) *order.Order {
	suite.seq++
	point, err := kernel.NewGeoPoint(-6.2, 106.8)
	suite.Require().NoError(err)
	o, err := order.NewOrder(order.NewOrderParams{
		Number:      fmt.Sprintf("SC-20260309-%06d", suite.seq),
		Customer:    order.CustomerInfo{Name: "Budi", Phone: "08123", UserID: userID, IsGuest: userID == nil},
		ServiceType: "deep_clean",
		Items: []order.Item{
			{Name: "Sneakers", Price: 50000, Quantity: 2},
			{Name: "Boots", Price: 75000, Quantity: 1},
		},
		Pickup:      order.PickupLocation{Address: "Jl. Sudirman 1", Point: point, DeliveryFee: 5000},
		LoyaltyRate: decimal.RequireFromString("0.01"),
		By:          actor.Actor{Name: "Guest", Role: actor.RoleCustomer},
	})
	suite.Require().NoError(err)
	return o
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_TracksAggregateAndPersistsHistory() {
	ctx := context.Background()
	o := suite.createTestOrder(nil)

	suite.Require().NoError(suite.repository.Add(ctx, o))

	suite.tracker.AssertCalled(suite.T(), "TrackAggregate", o.ID(), o)
	suite.False(o.Changes().IsNew)

	got, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(o.Number(), got.Number())
	suite.Equal(order.Pending, got.Status())
	suite.Equal(o.Items(), got.Items())
	suite.Equal(int64(180000), got.Payment().FinalAmount)
	suite.Equal(int64(1750), got.Loyalty().Earned)
	suite.InDelta(-6.2, got.Pickup().Point.Lat(), 1e-9)
	suite.Len(got.StatusHistory(), 1)
	suite.Nil(got.ActiveCourier())
	suite.Nil(got.PickupProof())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_DuplicateNumberFails() {
	ctx := context.Background()
	o := suite.createTestOrder(nil)
	suite.Require().NoError(suite.repository.Add(ctx, o))

	suite.seq--
	dup := suite.createTestOrder(nil)
	suite.Error(suite.repository.Add(ctx, dup))
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_AppendsOnlyNewChildRows() {
	ctx := context.Background()
	o := suite.createTestOrder(nil)
	suite.Require().NoError(suite.repository.Add(ctx, o))

	suite.Require().NoError(o.SubmitPaymentProof("/uploads/proof.jpg", actor.Actor{Role: actor.RoleCustomer}))
	suite.Require().NoError(suite.repository.Update(ctx, o))
	suite.Require().NoError(o.Confirm(admin))
	suite.Require().NoError(o.EditItems([]order.Item{{Name: "Sneakers", Price: 50000, Quantity: 1}}, "one pair missing", admin))
	suite.Require().NoError(suite.repository.Update(ctx, o))

	got, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Confirmed, got.Status())
	suite.Len(got.StatusHistory(), len(o.StatusHistory()))
	suite.Require().Len(got.EditHistory(), 1)
	suite.Equal("one pair missing", got.EditHistory()[0].Reason)
	suite.Len(got.EditHistory()[0].ItemsBefore, 2)
	suite.Equal(int64(55000), got.Payment().FinalAmount)
	suite.Equal(order.PaymentPaid, got.Payment().Status)

	var rows int64
	suite.Require().NoError(suite.db.Model(&orderrepo.StatusHistoryDTO{}).Where("order_id = ?", o.ID().Bytes()).Count(&rows).Error)
	suite.Equal(int64(len(o.StatusHistory())), rows)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_NonExistentOrder_ReturnsNotFound() {
	ctx := context.Background()
	o := suite.createTestOrder(nil)
	restored, err := order.Restore(o.Snapshot())
	suite.Require().NoError(err)

	err = suite.repository.Update(ctx, restored)
	suite.ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_NonExistentOrder_ReturnsNotFoundError() {
	ctx := context.Background()

	got, err := suite.repository.Get(ctx, kernel.NewUUID())

	suite.Nil(got)
	suite.ErrorIs(err, errs.ErrObjectNotFound)

	_, err = suite.repository.GetByNumber(ctx, "SC-19990101-000000")
	suite.ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestListQueries() {
	ctx := context.Background()
	owner := kernel.NewUUID()
	courierID := kernel.NewUUID()

	mine := suite.createTestOrder(&owner)
	suite.Require().NoError(suite.repository.Add(ctx, mine))

	offered := suite.createTestOrder(nil)
	suite.Require().NoError(offered.SubmitPaymentProof("/uploads/p.jpg", actor.Actor{Role: actor.RoleCustomer}))
	suite.Require().NoError(offered.Confirm(admin))
	_, err := offered.OfferCourier(courierID, "", admin)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Add(ctx, offered))

	byCustomer, err := suite.repository.ListByCustomer(ctx, owner)
	suite.Require().NoError(err)
	suite.Require().Len(byCustomer, 1)
	suite.Equal(mine.ID(), byCustomer[0].ID())

	confirmed, err := suite.repository.ListByStatuses(ctx, []order.Status{order.Confirmed, order.Cancelled})
	suite.Require().NoError(err)
	suite.Require().Len(confirmed, 1)
	suite.Equal(offered.ID(), confirmed[0].ID())

	all, err := suite.repository.ListByStatuses(ctx, nil)
	suite.Require().NoError(err)
	suite.Len(all, 2)

	queue, err := suite.repository.ListOfferedTo(ctx, courierID)
	suite.Require().NoError(err)
	suite.Require().Len(queue, 1)
	suite.Equal(order.OfferPending, queue[0].Queue()[0].Status)

	active, err := suite.repository.GetActiveByCourier(ctx, courierID)
	suite.Require().NoError(err)
	suite.Nil(active)
}
