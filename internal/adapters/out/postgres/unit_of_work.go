// Package postgres provides the GORM-based unit of work over the order, courier and
// customer tables.
//
// Usage:
//
//	factory := NewGormUnitOfWorkFactory(db, dispatcher)
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
//
//	o, err := uow.OrderRepository().Get(ctx, id) // SELECT ... FOR UPDATE
//	...
//	if err := uow.OrderRepository().Update(ctx, o); err != nil {
//	    return err
//	}
//	return uow.Commit(ctx)
//
// Repositories used outside Begin run each statement in autocommit mode and take no row
// locks. Domain events of the saved aggregates are published after a successful Commit.
package postgres

import (
	"context"

	"shoecare/internal/adapters/out/events"
	"shoecare/internal/adapters/out/postgres/courierrepo"
	"shoecare/internal/adapters/out/postgres/customerrepo"
	"shoecare/internal/adapters/out/postgres/orderrepo"
	"shoecare/internal/core/domain/model/kernel"
	"shoecare/internal/core/ports"

	"gorm.io/gorm"
)

// trackedAggregate is an aggregate saved during the unit of work.
type trackedAggregate struct {
	ID        kernel.UUID
	Aggregate any
}

// GormUnitOfWorkFactory creates UnitOfWork instances sharing one connection pool.
type GormUnitOfWorkFactory struct {
	db         *gorm.DB
	dispatcher *events.Dispatcher
}

// NewGormUnitOfWorkFactory creates a factory. A nil dispatcher drops domain events.
func NewGormUnitOfWorkFactory(db *gorm.DB, dispatcher *events.Dispatcher) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db, dispatcher: dispatcher}
}

// Create produces a new UnitOfWork with its own transaction state.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{
		db:                f.db,
		dispatcher:        f.dispatcher,
		trackedAggregates: make([]trackedAggregate, 0),
	}
}

// GormUnitOfWork coordinates one database transaction and tracks the aggregates saved in
// it.
type GormUnitOfWork struct {
	db                *gorm.DB
	tx                *gorm.DB
	dispatcher        *events.Dispatcher
	trackedAggregates []trackedAggregate
}

// Begin starts the transaction. Calling Begin twice keeps the first transaction.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	tx := uow.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	uow.tx = tx
	uow.trackedAggregates = uow.trackedAggregates[:0]
	return nil
}

// Commit finalizes the transaction and then publishes the events of tracked aggregates.
func (uow *GormUnitOfWork) Commit(ctx context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	if err != nil {
		uow.trackedAggregates = uow.trackedAggregates[:0]
		return err
	}

	uow.dispatch(ctx)
	return nil
}

// Rollback discards the transaction. Without an active transaction it does nothing, so it
// is safe to defer after Commit.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return nil
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	uow.trackedAggregates = uow.trackedAggregates[:0]
	return err
}

func (uow *GormUnitOfWork) conn() (*gorm.DB, bool) {
	if uow.tx != nil {
		return uow.tx, true
	}
	return uow.db, false
}

func (uow *GormUnitOfWork) CourierRepository() ports.CourierRepository {
	db, inTx := uow.conn()
	return courierrepo.NewGormCourierRepository(db, inTx, uow)
}

func (uow *GormUnitOfWork) OrderRepository() ports.OrderRepository {
	db, inTx := uow.conn()
	return orderrepo.NewGormOrderRepository(db, inTx, uow)
}

func (uow *GormUnitOfWork) CustomerRepository() ports.CustomerRepository {
	db, _ := uow.conn()
	return customerrepo.NewGormCustomerRepository(db)
}

// TrackAggregate registers an aggregate saved within this unit of work. Outside a
// transaction the write is already durable, so its events are published at once.
func (uow *GormUnitOfWork) TrackAggregate(id kernel.UUID, aggregate any) {
	uow.trackedAggregates = append(uow.trackedAggregates, trackedAggregate{
		ID:        id,
		Aggregate: aggregate,
	})
	if uow.tx == nil {
		uow.dispatch(context.Background())
	}
}

func (uow *GormUnitOfWork) dispatch(ctx context.Context) {
	sources := make([]events.Source, 0, len(uow.trackedAggregates))
	for _, t := range uow.trackedAggregates {
		if src, ok := t.Aggregate.(events.Source); ok {
			sources = append(sources, src)
		}
	}
	uow.trackedAggregates = uow.trackedAggregates[:0]
	uow.dispatcher.Dispatch(ctx, sources)
}
