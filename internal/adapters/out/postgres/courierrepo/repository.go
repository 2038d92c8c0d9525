package courierrepo

import (
	"context"
	"errors"
	"fmt"

	"shoecare/internal/core/domain/model/courier"
	"shoecare/internal/core/domain/model/kernel"
	"shoecare/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const uniqueViolation = "23505"

// GormCourierRepository implements CourierRepository using GORM.
type GormCourierRepository struct {
	db      *gorm.DB
	inTx    bool
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormCourierRepository creates a new GORM courier repository. inTx makes Get lock the
// courier row for the rest of the transaction.
func NewGormCourierRepository(db *gorm.DB, inTx bool, tracker aggregateTracker) *GormCourierRepository {
	return &GormCourierRepository{
		db:      db,
		inTx:    inTx,
		tracker: tracker,
	}
}

// Add saves a new courier to the database.
func (r *GormCourierRepository) Add(ctx context.Context, aggregate *courier.Courier) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: courier %s", errs.ErrAlreadyExists, aggregate.ID())
		}
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an existing courier to the database.
func (r *GormCourierRepository) Update(ctx context.Context, aggregate *courier.Courier) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&CourierDTO{}).
		Where("id = ?", dto.ID).
		Select("*").
		Omit("id").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("courier", aggregate.ID().String())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves a courier by ID.
func (r *GormCourierRepository) Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	db := r.db.WithContext(ctx)
	if r.inTx {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var dto CourierDTO
	if err := db.First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("courier", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetMany returns the couriers with the given ids in the order of ids. An unknown id fails
// the whole lookup with an ObjectNotFoundError naming the first missing courier.
func (r *GormCourierRepository) GetMany(ctx context.Context, ids []kernel.UUID) ([]*courier.Courier, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	raw := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, id.Bytes())
	}
	found, err := r.find(r.db.WithContext(ctx).Where("id IN ?", raw))
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*courier.Courier, len(found))
	for _, c := range found {
		byID[c.ID().Bytes()] = c
	}
	out := make([]*courier.Courier, 0, len(ids))
	for _, id := range ids {
		c, ok := byID[id.Bytes()]
		if !ok {
			return nil, errs.NewObjectNotFoundError("courier", id)
		}
		out = append(out, c)
	}
	return out, nil
}

// GetAll returns every courier ordered by name.
func (r *GormCourierRepository) GetAll(ctx context.Context) ([]*courier.Courier, error) {
	return r.find(r.db.WithContext(ctx))
}

// GetAllAvailable returns the couriers currently accepting work.
//
// Example:
//
//	available, err := repo.GetAllAvailable(ctx)
//	if err != nil {
//		return fmt.Errorf("failed to get available couriers: %w", err)
//	}
func (r *GormCourierRepository) GetAllAvailable(ctx context.Context) ([]*courier.Courier, error) {
	return r.find(r.db.WithContext(ctx).Where("is_available = ?", true))
}

func (r *GormCourierRepository) find(db *gorm.DB) ([]*courier.Courier, error) {
	var dtos []CourierDTO
	if err := db.Order("name").Order("id").Find(&dtos).Error; err != nil {
		return nil, err
	}

	couriers := make([]*courier.Courier, 0, len(dtos))
	for _, dto := range dtos {
		c, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		couriers = append(couriers, c)
	}

	return couriers, nil
}
