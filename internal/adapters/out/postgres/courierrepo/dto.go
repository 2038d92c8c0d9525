// Package courierrepo provides data transfer objects and mapping functions for courier persistence.
package courierrepo

import (
	"shoecare/internal/core/domain/model/courier"
	"shoecare/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// CourierDTO represents the database structure for persisting courier aggregates.
type CourierDTO struct {
	ID                  uuid.UUID   `gorm:"type:uuid;primaryKey"`
	Name                string      `gorm:"type:varchar(255);not null"`
	Phone               string      `gorm:"type:varchar(32);not null"`
	IsAvailable         bool        `gorm:"not null;index"`
	CurrentDeliveryID   *uuid.UUID  `gorm:"type:uuid"`
	TotalDeliveries     int         `gorm:"not null"`
	CompletedDeliveries int         `gorm:"not null"`
	Location            LocationDTO `gorm:"embedded;embeddedPrefix:location_"`
}

// TableName overrides GORM's default naming convention to use "couriers".
func (CourierDTO) TableName() string {
	return "couriers"
}

// LocationDTO is the courier's last reported position; both columns are null until the
// courier reports one.
type LocationDTO struct {
	Lat *float64
	Lng *float64
}

func fromDomain(c *courier.Courier) CourierDTO {
	var current *uuid.UUID
	if id := c.CurrentDeliveryID(); id != nil {
		raw := id.Bytes()
		current = &raw
	}
	var loc LocationDTO
	if p := c.Location(); p != nil {
		lat, lng := p.Lat(), p.Lng()
		loc = LocationDTO{Lat: &lat, Lng: &lng}
	}

	return CourierDTO{
		ID:                  c.ID().Bytes(),
		Name:                c.Name(),
		Phone:               c.Phone(),
		IsAvailable:         c.IsAvailable(),
		CurrentDeliveryID:   current,
		TotalDeliveries:     c.TotalDeliveries(),
		CompletedDeliveries: c.CompletedDeliveries(),
		Location:            loc,
	}
}

func toDomain(dto CourierDTO) (*courier.Courier, error) {
	id, err := kernel.UUIDFromGoogle(dto.ID)
	if err != nil {
		return nil, err
	}

	var current *kernel.UUID
	if dto.CurrentDeliveryID != nil {
		cID, err := kernel.UUIDFromGoogle(*dto.CurrentDeliveryID)
		if err != nil {
			return nil, err
		}
		current = &cID
	}

	var loc *kernel.GeoPoint
	if dto.Location.Lat != nil && dto.Location.Lng != nil {
		p, err := kernel.NewGeoPoint(*dto.Location.Lat, *dto.Location.Lng)
		if err != nil {
			return nil, err
		}
		loc = &p
	}

	return courier.RestoreCourier(
		id, dto.Name, dto.Phone, dto.IsAvailable, current,
		dto.TotalDeliveries, dto.CompletedDeliveries, loc,
	)
}
