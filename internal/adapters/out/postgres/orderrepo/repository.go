package orderrepo

import (
	"context"
	"errors"
	"fmt"

	"shoecare/internal/core/domain/model/kernel"
	"shoecare/internal/core/domain/model/order"
	"shoecare/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Partial unique indexes created by the migration.
const (
	PendingOfferIndex  = "ux_courier_offers_pending"
	AcceptedOfferIndex = "ux_courier_offers_accepted"

	uniqueViolation = "23505"
)

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	inTx    bool
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormOrderRepository creates a new GORM order repository. inTx makes Get take a row
// lock that is held until the surrounding transaction ends.
func NewGormOrderRepository(db *gorm.DB, inTx bool, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		inTx:    inTx,
		tracker: tracker,
	}
}

// Add inserts a new order with its history.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, err := fromDomain(aggregate.Snapshot())
	if err != nil {
		return err
	}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&dto).Error; err != nil {
			return err
		}
		return writeChanges(tx, dto.ID, aggregate)
	})
	if err != nil {
		return translate(err)
	}

	aggregate.MarkPersisted()
	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update writes the order row only if it still has the status it was loaded with, then
// appends the new child rows. A concurrent writer that moved the order first makes
// Update fail with ErrConcurrentUpdate.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	changes := aggregate.Changes()
	dto, err := fromDomain(aggregate.Snapshot())
	if err != nil {
		return err
	}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&OrderDTO{}).
			Where("id = ? AND status = ?", dto.ID, changes.ExpectedStatus.String()).
			Select("*").
			Omit("id", "created_at", clause.Associations).
			Updates(&dto)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return r.missingOrMoved(tx, aggregate, changes.ExpectedStatus)
		}
		return writeChanges(tx, dto.ID, aggregate)
	})
	if err != nil {
		return translate(err)
	}

	aggregate.MarkPersisted()
	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormOrderRepository) missingOrMoved(tx *gorm.DB, aggregate *order.Order, expected order.Status) error {
	var current OrderDTO
	err := tx.Select("status").First(&current, "id = ?", aggregate.ID().Bytes()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NewObjectNotFoundError("order", aggregate.ID().String())
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: order %s is %s, expected %s",
		errs.ErrConcurrentUpdate, aggregate.Number(), current.Status, expected)
}

// writeChanges appends pending ledger entries and offers and moves changed offers. Each
// offer transition is predicated on the offer's previous status.
func writeChanges(tx *gorm.DB, orderID uuid.UUID, aggregate *order.Order) error {
	changes := aggregate.Changes()

	if rows := historyFromDomain(orderID, changes.History); len(rows) > 0 {
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
	}
	if rows := trackingFromDomain(orderID, changes.TrackingDetails); len(rows) > 0 {
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
	}
	edits, err := editsFromDomain(orderID, changes.Edits)
	if err != nil {
		return err
	}
	if len(edits) > 0 {
		if err := tx.Create(&edits).Error; err != nil {
			return err
		}
	}

	for _, ch := range changes.ChangedOffers {
		result := tx.Model(&OfferDTO{}).
			Where("id = ? AND status = ?", ch.Offer.ID.Bytes(), ch.From.String()).
			Updates(map[string]any{
				"status":       ch.Offer.Status.String(),
				"accepted_at":  ch.Offer.AcceptedAt,
				"completed_at": ch.Offer.CompletedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: offer %s is no longer %s", errs.ErrConcurrentUpdate, ch.Offer.ID, ch.From)
		}
	}

	base := len(aggregate.Queue()) - len(changes.NewOffers)
	for i, offer := range changes.NewOffers {
		row := offerFromDomain(orderID, base+i, offer)
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

// translate maps unique violations on the offer indexes to queue errors.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case PendingOfferIndex:
		return fmt.Errorf("%w: %s", errs.ErrDuplicateOffer, pgErr.Detail)
	case AcceptedOfferIndex:
		return fmt.Errorf("%w: %s", errs.ErrAlreadyAssigned, pgErr.Detail)
	default:
		return errs.NewValueIsInvalidErrorWithCause(pgErr.ConstraintName, err)
	}
}

func (r *GormOrderRepository) query(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("History", orderByID).
		Preload("TrackingDetails", orderByID).
		Preload("Edits", orderByID).
		Preload("Offers", func(db *gorm.DB) *gorm.DB { return db.Order("position") })
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}

// Get loads an order. Inside a transaction the row stays locked until it ends.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	db := r.query(ctx)
	if r.inTx {
		db = db.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: clause.CurrentTable}})
	}
	var dto OrderDTO
	if err := db.First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}
	return toDomain(dto)
}

func (r *GormOrderRepository) GetByNumber(ctx context.Context, number string) (*order.Order, error) {
	var dto OrderDTO
	if err := r.query(ctx).First(&dto, "number = ?", number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", number)
		}
		return nil, err
	}
	return toDomain(dto)
}

// GetActiveByCourier returns the order binding the courier in a busy status, or nil.
func (r *GormOrderRepository) GetActiveByCourier(ctx context.Context, courierID kernel.UUID) (*order.Order, error) {
	var dtos []OrderDTO
	err := r.query(ctx).
		Where("active_courier_id = ? AND status = ANY(?)", courierID.Bytes(), statusArray(order.BusyStatuses())).
		Order("created_at DESC").
		Limit(1).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}
	if len(dtos) == 0 {
		return nil, nil
	}
	return toDomain(dtos[0])
}

func (r *GormOrderRepository) ListByCustomer(ctx context.Context, customerID kernel.UUID) ([]*order.Order, error) {
	return r.list(r.query(ctx).Where("customer_user_id = ?", customerID.Bytes()))
}

// ListByStatuses lists orders in any of statuses; an empty set lists all orders.
func (r *GormOrderRepository) ListByStatuses(ctx context.Context, statuses []order.Status) ([]*order.Order, error) {
	db := r.query(ctx)
	if len(statuses) > 0 {
		db = db.Where("status = ANY(?)", statusArray(statuses))
	}
	return r.list(db)
}

// ListOfferedTo lists orders holding a pending offer for the courier.
func (r *GormOrderRepository) ListOfferedTo(ctx context.Context, courierID kernel.UUID) ([]*order.Order, error) {
	return r.list(r.query(ctx).Where(
		"EXISTS (SELECT 1 FROM courier_offers co WHERE co.order_id = orders.id AND co.courier_id = ? AND co.status = ?)",
		courierID.Bytes(), order.OfferPending.String(),
	))
}

func (r *GormOrderRepository) list(db *gorm.DB) ([]*order.Order, error) {
	var dtos []OrderDTO
	if err := db.Order("created_at DESC").Order("number DESC").Find(&dtos).Error; err != nil {
		return nil, err
	}

	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func statusArray(statuses []order.Status) any {
	raw := make([]string, 0, len(statuses))
	for _, s := range statuses {
		raw = append(raw, s.String())
	}
	return pq.Array(raw)
}
