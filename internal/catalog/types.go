package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Product is a catalog record consumed read-only by the selection machine.
type Product struct {
	ID       uuid.UUID
	Name     string
	Image    string
	Variants []Variant
}

// Variant is a color-level SKU grouping containing one or more sizes.
type Variant struct {
	ID         uuid.UUID
	Color      string
	Image      string
	PriceCents int
	Sizes      []Size
}

// Size is a purchasable unit inside a variant.
type Size struct {
	ID    uuid.UUID
	Label string
	Stock int
}

// Available reports whether the size can currently be purchased.
func (s Size) Available() bool {
	return s.Stock > 0
}

// FirstAvailableSize returns the first in-stock size, falling back to the
// first size when none is available, or nil for size-less variants.
func (v Variant) FirstAvailableSize() *Size {
	if len(v.Sizes) == 0 {
		return nil
	}
	for i := range v.Sizes {
		if v.Sizes[i].Available() {
			size := v.Sizes[i]
			return &size
		}
	}
	size := v.Sizes[0]
	return &size
}

// Provider supplies catalog records from the backing store or API.
type Provider interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
}
