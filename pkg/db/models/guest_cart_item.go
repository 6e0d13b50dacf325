package models

import (
	"time"

	"github.com/google/uuid"
)

// GuestCartItem persists one cart line for an unauthenticated session.
// Display fields are snapshotted at add-time so the cart renders without
// catalog lookups.
type GuestCartItem struct {
	ID               string    `gorm:"column:id;primaryKey"`
	SessionID        string    `gorm:"column:session_id;index;not null"`
	ProductVariantID uuid.UUID `gorm:"column:product_variant_id;type:text;not null"`
	SizeID           uuid.UUID `gorm:"column:size_id;type:text;not null"`
	Name             string    `gorm:"column:name;not null"`
	Color            string    `gorm:"column:color"`
	Size             string    `gorm:"column:size"`
	Image            string    `gorm:"column:image"`
	Quantity         int       `gorm:"column:quantity;not null"`
	PriceCents       int       `gorm:"column:price_cents;not null"`
	Stock            *int      `gorm:"column:stock"`
	Position         int       `gorm:"column:position;not null"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the table aligned with the fixed cart storage key.
func (GuestCartItem) TableName() string {
	return "guest_cart_items"
}
