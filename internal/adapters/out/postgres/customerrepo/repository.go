// Package customerrepo persists the customer records that carry loyalty balances.
package customerrepo

import (
	"context"
	"errors"

	"shoecare/internal/core/domain/model/customer"
	"shoecare/internal/core/domain/model/kernel"
	"shoecare/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CustomerDTO struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name            string    `gorm:"type:varchar(255);not null"`
	Phone           string    `gorm:"type:varchar(32)"`
	LoyaltyPoints   int64     `gorm:"not null;default:0;check:loyalty_points >= 0"`
	CompletedOrders int       `gorm:"not null;default:0"`
}

func (CustomerDTO) TableName() string {
	return "customers"
}

// GormCustomerRepository implements CustomerRepository. Balance changes are single
// conditional statements, so concurrent deductions never overdraw.
type GormCustomerRepository struct {
	db *gorm.DB
}

func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

func (r *GormCustomerRepository) Add(ctx context.Context, c *customer.Customer) error {
	dto := CustomerDTO{
		ID:              c.ID().Bytes(),
		Name:            c.Name(),
		Phone:           c.Phone(),
		LoyaltyPoints:   c.LoyaltyPoints(),
		CompletedOrders: c.CompletedOrders(),
	}
	return r.db.WithContext(ctx).Create(&dto).Error
}

// Register inserts the customer unless a row with the same id exists.
func (r *GormCustomerRepository) Register(ctx context.Context, c *customer.Customer) error {
	dto := CustomerDTO{ID: c.ID().Bytes(), Name: c.Name(), Phone: c.Phone()}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(&dto).Error
}

func (r *GormCustomerRepository) Get(ctx context.Context, id kernel.UUID) (*customer.Customer, error) {
	var dto CustomerDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("customer", id.String())
		}
		return nil, err
	}
	cid, err := kernel.UUIDFromGoogle(dto.ID)
	if err != nil {
		return nil, err
	}
	return customer.Restore(cid, dto.Name, dto.Phone, dto.LoyaltyPoints, dto.CompletedOrders)
}

// AdjustLoyaltyPoints adds delta to the balance. A deduction larger than the balance
// fails with customer.ErrInsufficientPoints and changes nothing.
func (r *GormCustomerRepository) AdjustLoyaltyPoints(ctx context.Context, id kernel.UUID, delta int64) error {
	result := r.db.WithContext(ctx).Model(&CustomerDTO{}).
		Where("id = ? AND loyalty_points + ? >= 0", id.Bytes(), delta).
		Update("loyalty_points", gorm.Expr("loyalty_points + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 1 {
		return nil
	}
	if err := r.exists(ctx, id); err != nil {
		return err
	}
	return customer.ErrInsufficientPoints
}

func (r *GormCustomerRepository) IncrementCompletedOrders(ctx context.Context, id kernel.UUID) error {
	result := r.db.WithContext(ctx).Model(&CustomerDTO{}).
		Where("id = ?", id.Bytes()).
		Update("completed_orders", gorm.Expr("completed_orders + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("customer", id.String())
	}
	return nil
}

func (r *GormCustomerRepository) exists(ctx context.Context, id kernel.UUID) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&CustomerDTO{}).Where("id = ?", id.Bytes()).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errs.NewObjectNotFoundError("customer", id.String())
	}
	return nil
}
