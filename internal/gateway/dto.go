package gateway

import (
	"github.com/angelmondragon/storefront-core/internal/cart"
	"github.com/google/uuid"
)

// lineItemDTO mirrors the backend's cart line payload. The wire shape is
// owned by the backend; everything past this file works with the normalized
// cart.LineItem.
type lineItemDTO struct {
	ID               string    `json:"id"`
	ProductVariantID uuid.UUID `json:"product_variant_id"`
	SizeID           uuid.UUID `json:"size_id"`
	Name             string    `json:"name"`
	Color            string    `json:"color"`
	Size             string    `json:"size"`
	Image            string    `json:"image"`
	Quantity         int       `json:"quantity"`
	PriceCents       int       `json:"price_cents"`
	Stock            *int      `json:"stock,omitempty"`
}

type cartResponse struct {
	Items []lineItemDTO `json:"items"`
}

type addItemRequest struct {
	ProductVariantID uuid.UUID `json:"product_variant_id"`
	SizeID           uuid.UUID `json:"size_id"`
	Quantity         int       `json:"quantity"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (dto lineItemDTO) toLineItem() cart.LineItem {
	return cart.LineItem{
		ID:               dto.ID,
		ProductVariantID: dto.ProductVariantID,
		SizeID:           dto.SizeID,
		Name:             dto.Name,
		Color:            dto.Color,
		Size:             dto.Size,
		Image:            dto.Image,
		Quantity:         dto.Quantity,
		PriceCents:       dto.PriceCents,
		Stock:            dto.Stock,
	}
}
