package models

import (
	"time"

	"github.com/google/uuid"
)

// WishlistItem persists a saved product variant for an unauthenticated session.
type WishlistItem struct {
	ID               uint      `gorm:"column:id;primaryKey;autoIncrement"`
	SessionID        string    `gorm:"column:session_id;index:idx_wishlist_session_variant,unique;not null"`
	ProductVariantID uuid.UUID `gorm:"column:product_variant_id;type:text;index:idx_wishlist_session_variant,unique;not null"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (WishlistItem) TableName() string {
	return "wishlist_items"
}
