package postgres_test

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"shoecare/internal/adapters/out/events"
	postgres_adapter "shoecare/internal/adapters/out/postgres"
	"shoecare/internal/core/domain/model/actor"
	"shoecare/internal/core/domain/model/courier"
	"shoecare/internal/core/domain/model/customer"
	"shoecare/internal/core/domain/model/kernel"
	"shoecare/internal/core/domain/model/order"
	"shoecare/internal/core/ports"
	"shoecare/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var admin = actor.Actor{ID: "admin-1", Name: "Admin", Role: actor.RoleAdmin}

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	return nil
}

func (p *recordingPublisher) Topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.topics...)
}

// UnitOfWorkIntegrationTestSuite runs the unit of work against a real PostgreSQL.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	publisher *recordingPublisher
	factory   ports.UnitOfWorkFactory
	seq       atomic.Int32
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2)),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(postgres_adapter.Migrate(ctx, db))
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec(`TRUNCATE TABLE orders, order_status_history, order_tracking_details,
		order_edit_history, courier_offers, couriers, customers`).Error
	suite.Require().NoError(err)

	suite.publisher = &recordingPublisher{}
	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(suite.db, events.NewDispatcher(suite.publisher, slog.Default()))
}

func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) newOrder() *order.Order {
	point, err := kernel.NewGeoPoint(-6.2, 106.8)
	suite.Require().NoError(err)
	o, err := order.NewOrder(order.NewOrderParams{
		Number:      fmt.Sprintf("SC-20260309-%06d", suite.seq.Add(1)),
		Customer:    order.CustomerInfo{Name: "Budi", Phone: "08123", IsGuest: true},
		ServiceType: "deep_clean",
		Items:       []order.Item{{Name: "Sneakers", Price: 50000, Quantity: 1}},
		Pickup:      order.PickupLocation{Address: "Jl. Sudirman 1", Point: point, DeliveryFee: 5000},
		LoyaltyRate: decimal.RequireFromString("0.01"),
		By:          actor.Actor{Name: "Guest", Role: actor.RoleCustomer},
	})
	suite.Require().NoError(err)
	return o
}

func (suite *UnitOfWorkIntegrationTestSuite) confirmedOrder() *order.Order {
	o := suite.newOrder()
	suite.Require().NoError(o.SubmitPaymentProof("/uploads/proof.jpg", actor.Actor{Role: actor.RoleCustomer}))
	suite.Require().NoError(o.Confirm(admin))
	suite.Require().NoError(suite.factory.Create().OrderRepository().Add(context.Background(), o))
	return o
}

func (suite *UnitOfWorkIntegrationTestSuite) addCourier(name string) *courier.Courier {
	c, err := courier.NewCourier(kernel.NewUUID(), name, "0812")
	suite.Require().NoError(err)
	suite.Require().NoError(suite.factory.Create().CourierRepository().Add(context.Background(), c))
	return c
}

func (suite *UnitOfWorkIntegrationTestSuite) TestTransactionLifecycle() {
	ctx := context.Background()
	uow := suite.factory.Create()

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Begin(ctx), "multiple begin calls should be safe")
	o := suite.newOrder()
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))
	suite.Require().NoError(uow.Rollback(ctx))

	_, err := suite.factory.Create().OrderRepository().Get(ctx, o.ID())
	suite.ErrorIs(err, errs.ErrObjectNotFound)
	suite.Empty(suite.publisher.Topics(), "rolled back events are not published")

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))
	suite.Require().NoError(uow.Commit(ctx))
	suite.Require().NoError(uow.Rollback(ctx), "rollback after commit is a no-op")

	loaded, err := suite.factory.Create().OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(o.Number(), loaded.Number())

	suite.ErrorIs(suite.factory.Create().Commit(ctx), gorm.ErrInvalidTransaction)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestOrderRoundTrip() {
	ctx := context.Background()
	c := suite.addCourier("Andi")
	o := suite.confirmedOrder()

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	loaded, err := uow.OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)
	_, err = loaded.AssignCourier(c.ID(), "nearest", admin)
	suite.Require().NoError(err)
	suite.Require().NoError(loaded.AcceptOffer(actor.Actor{ID: c.ID().String(), Role: actor.RoleCourier}))
	suite.Require().NoError(uow.OrderRepository().Update(ctx, loaded))
	suite.Require().NoError(uow.Commit(ctx))

	got, err := suite.factory.Create().OrderRepository().GetByNumber(ctx, o.Number())
	suite.Require().NoError(err)
	suite.Equal(order.PickupInProgress, got.Status())
	suite.Equal(statuses(loaded.StatusHistory()), statuses(got.StatusHistory()))
	suite.Require().Len(got.Queue(), 1)
	suite.Equal(order.OfferAccepted, got.Queue()[0].Status)
	suite.Require().NotNil(got.ActiveCourier())
	suite.True(got.IsBoundTo(c.ID()))
	suite.Equal(int64(55000), got.Payment().FinalAmount)
	suite.True(decimal.RequireFromString("0.01").Equal(got.Loyalty().Rate))

	active, err := suite.factory.Create().OrderRepository().GetActiveByCourier(ctx, c.ID())
	suite.Require().NoError(err)
	suite.Require().NotNil(active)
	suite.Equal(o.ID(), active.ID())
	suite.NotEmpty(suite.publisher.Topics())
}

func statuses(entries []order.StatusEntry) []order.Status {
	out := make([]order.Status, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Status)
	}
	return out
}

func (suite *UnitOfWorkIntegrationTestSuite) TestStatusPredicate() {
	ctx := context.Background()
	o := suite.confirmedOrder()

	first, err := suite.factory.Create().OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)
	second, err := suite.factory.Create().OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)

	_, err = first.Reject("stok habis", admin)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.factory.Create().OrderRepository().Update(ctx, first))

	_, err = second.Reject("duplicate", admin)
	suite.Require().NoError(err)
	err = suite.factory.Create().OrderRepository().Update(ctx, second)
	suite.ErrorIs(err, errs.ErrConcurrentUpdate)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestDuplicatePendingOfferIndex() {
	ctx := context.Background()
	c := suite.addCourier("Andi")
	o := suite.confirmedOrder()

	first, err := suite.factory.Create().OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)
	_, err = first.OfferCourier(c.ID(), "", admin)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.factory.Create().OrderRepository().Update(ctx, first))

	stale, err := order.Restore(o.Snapshot())
	suite.Require().NoError(err)
	_, err = stale.OfferCourier(c.ID(), "", admin)
	suite.Require().NoError(err)
	err = suite.factory.Create().OrderRepository().Update(ctx, stale)
	suite.ErrorIs(err, errs.ErrDuplicateOffer)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestRowLockSerializesWriters() {
	ctx := context.Background()
	o := suite.confirmedOrder()

	holder := suite.factory.Create()
	suite.Require().NoError(holder.Begin(ctx))
	_, err := holder.OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)

	waitCtx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	waiter := suite.factory.Create()
	suite.Require().NoError(waiter.Begin(waitCtx))
	_, err = waiter.OrderRepository().Get(waitCtx, o.ID())
	suite.Error(err, "second locker must wait for the first transaction")
	_ = waiter.Rollback(ctx)

	suite.Require().NoError(holder.Rollback(ctx))
	after := suite.factory.Create()
	suite.Require().NoError(after.Begin(ctx))
	_, err = after.OrderRepository().Get(ctx, o.ID())
	suite.NoError(err)
	suite.Require().NoError(after.Rollback(ctx))
}

func (suite *UnitOfWorkIntegrationTestSuite) TestConcurrentLoyaltyDeductions() {
	ctx := context.Background()
	c, err := customer.Restore(kernel.NewUUID(), "Siti", "0812", 500, 0)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.factory.Create().CustomerRepository().Add(ctx, c))

	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
	)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			uow := suite.factory.Create()
			if err := uow.Begin(ctx); err != nil {
				return
			}
			defer func() { _ = uow.Rollback(ctx) }()
			if err := uow.CustomerRepository().AdjustLoyaltyPoints(ctx, c.ID(), -100); err != nil {
				return
			}
			if uow.Commit(ctx) == nil {
				succeeded.Add(1)
			}
		}()
	}
	wg.Wait()

	suite.Equal(int32(5), succeeded.Load())
	got, err := suite.factory.Create().CustomerRepository().Get(ctx, c.ID())
	suite.Require().NoError(err)
	suite.Equal(int64(0), got.LoyaltyPoints())

	err = suite.factory.Create().CustomerRepository().AdjustLoyaltyPoints(ctx, c.ID(), -1)
	suite.ErrorIs(err, customer.ErrInsufficientPoints)
	err = suite.factory.Create().CustomerRepository().AdjustLoyaltyPoints(ctx, kernel.NewUUID(), 10)
	suite.ErrorIs(err, errs.ErrObjectNotFound)

	suite.Require().NoError(suite.factory.Create().CustomerRepository().IncrementCompletedOrders(ctx, c.ID()))
	got, err = suite.factory.Create().CustomerRepository().Get(ctx, c.ID())
	suite.Require().NoError(err)
	suite.Equal(1, got.CompletedOrders())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestRegisterCustomerKeepsExistingRecord() {
	ctx := context.Background()
	repo := suite.factory.Create().CustomerRepository()
	existing, err := customer.Restore(kernel.NewUUID(), "Siti", "0812", 700, 1)
	suite.Require().NoError(err)
	suite.Require().NoError(repo.Add(ctx, existing))

	again, err := customer.NewCustomer(existing.ID(), "Siti Baru", "0899")
	suite.Require().NoError(err)
	suite.Require().NoError(repo.Register(ctx, again))

	got, err := repo.Get(ctx, existing.ID())
	suite.Require().NoError(err)
	suite.Equal("Siti", got.Name())
	suite.Equal(int64(700), got.LoyaltyPoints())

	newcomer, err := customer.NewCustomer(kernel.NewUUID(), "Rina", "0813")
	suite.Require().NoError(err)
	suite.Require().NoError(repo.Register(ctx, newcomer))
	got, err = repo.Get(ctx, newcomer.ID())
	suite.Require().NoError(err)
	suite.Equal(int64(0), got.LoyaltyPoints())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestCourierUpdateInTransaction() {
	ctx := context.Background()
	c := suite.addCourier("Andi")
	o := suite.confirmedOrder()

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	loaded, err := uow.CourierRepository().Get(ctx, c.ID())
	suite.Require().NoError(err)
	suite.Require().NoError(loaded.Bind(o.ID()))
	suite.Require().NoError(uow.CourierRepository().Update(ctx, loaded))
	suite.Require().NoError(uow.Commit(ctx))

	available, err := suite.factory.Create().CourierRepository().GetAllAvailable(ctx)
	suite.Require().NoError(err)
	suite.Empty(available)

	got, err := suite.factory.Create().CourierRepository().Get(ctx, c.ID())
	suite.Require().NoError(err)
	suite.Require().NotNil(got.CurrentDeliveryID())
	suite.True(got.CurrentDeliveryID().IsEqual(o.ID()))
	suite.Equal(1, got.TotalDeliveries())
}
