package cart

import (
	"fmt"

	"github.com/angelmondragon/storefront-core/internal/limits"
	"github.com/google/uuid"
)

// Mode selects the storage backend for cart contents.
type Mode string

const (
	ModeGuest         Mode = "guest"
	ModeAuthenticated Mode = "authenticated"
)

// LineItem is the normalized cart line shared by guest and server carts.
// Display fields are snapshotted at add-time; Stock is the known ceiling for
// the variant/size and defaults to the purchase limit when absent.
type LineItem struct {
	ID               string    `json:"id" validate:"required"`
	ProductVariantID uuid.UUID `json:"product_variant_id" validate:"required"`
	SizeID           uuid.UUID `json:"size_id" validate:"required"`
	Name             string    `json:"name" validate:"required"`
	Color            string    `json:"color"`
	Size             string    `json:"size"`
	Image            string    `json:"image"`
	Quantity         int       `json:"quantity" validate:"min=1"`
	PriceCents       int       `json:"price_cents" validate:"min=0"`
	Stock            *int      `json:"stock,omitempty"`
}

// CompositeID synthesizes the guest-cart line identifier for a variant/size
// pair. Server carts use the row id assigned by the backend instead.
func CompositeID(variantID, sizeID uuid.UUID) string {
	return fmt.Sprintf("%s-%s", variantID, sizeID)
}

// StockCeiling returns the effective stock bound, defaulting to the purchase
// limit when the stock is unknown.
func (li LineItem) StockCeiling() int {
	if li.Stock == nil {
		return limits.PurchaseLimit
	}
	return *li.Stock
}

// SubtotalCents is the line contribution to the cart total.
func (li LineItem) SubtotalCents() int {
	return li.Quantity * li.PriceCents
}
