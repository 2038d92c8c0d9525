package postgres

import (
	"context"
	"fmt"

	"shoecare/internal/adapters/out/postgres/courierrepo"
	"shoecare/internal/adapters/out/postgres/customerrepo"
	"shoecare/internal/adapters/out/postgres/orderrepo"

	"gorm.io/gorm"
)

// partialIndexes back the courier queue invariants: one pending offer per courier per
// order and at most one accepted offer per order.
var partialIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS ` + orderrepo.PendingOfferIndex + `
		ON courier_offers (order_id, courier_id) WHERE status = 'pending'`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ` + orderrepo.AcceptedOfferIndex + `
		ON courier_offers (order_id) WHERE status = 'accepted'`,
}

// Migrate creates or updates the schema.
func Migrate(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)
	if err := db.AutoMigrate(
		&courierrepo.CourierDTO{},
		&customerrepo.CustomerDTO{},
		&orderrepo.OrderDTO{},
		&orderrepo.StatusHistoryDTO{},
		&orderrepo.TrackingDetailDTO{},
		&orderrepo.EditDTO{},
		&orderrepo.OfferDTO{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	for _, stmt := range partialIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
