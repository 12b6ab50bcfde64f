package models

import (
	"time"

	"gorm.io/gorm"
)

// Campaign represents a time-boxed group-buy for a product or premium item.
type Campaign struct {
	ID               string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Title            string    `json:"title" validate:"required,min=3,max=200"`
	Description      string    `json:"description" validate:"omitempty,max=2000"`
	Price            float64   `json:"price" validate:"required,gt=0"`
	AirCargoCost     float64   `json:"air_cargo_cost" validate:"gte=0"`
	Stock            int       `json:"stock" validate:"gte=0"`
	Premium          bool      `json:"premium"`
	Deadline         time.Time `json:"deadline" validate:"required"`
	ShippingDeadline time.Time `json:"shipping_deadline" validate:"required"`
	gorm.Model       // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// Open reports whether the campaign still accepts orders.
func (c *Campaign) Open(now time.Time) bool {
	return now.Before(c.Deadline) && c.Stock > 0
}
