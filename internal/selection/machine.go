package selection

import (
	"context"
	"fmt"

	"github.com/angelmondragon/storefront-core/internal/cart"
	"github.com/angelmondragon/storefront-core/internal/catalog"
	"github.com/angelmondragon/storefront-core/internal/limits"
	pkgerrors "github.com/angelmondragon/storefront-core/pkg/errors"
	"github.com/angelmondragon/storefront-core/pkg/logger"
	"github.com/google/uuid"
)

// CartEngine is the slice of the cart engine the selection machine consumes.
type CartEngine interface {
	QuantityFor(variantID, sizeID uuid.UUID) int
	Add(ctx context.Context, item cart.LineItem) error
}

// Machine drives the variant/size/quantity picker for a single product view.
// It owns transient selection state only; cart contents live in the engine.
//
// A machine belongs to one view and is driven by that view's event loop, so
// it is not safe for concurrent use.
type Machine struct {
	engine CartEngine
	logg   *logger.Logger

	product  *catalog.Product
	variant  *catalog.Variant
	size     *catalog.Size
	quantity int
}

// NewMachine builds a selection machine bound to the cart engine.
func NewMachine(engine CartEngine, logg *logger.Logger) (*Machine, error) {
	if engine == nil {
		return nil, fmt.Errorf("cart engine required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Machine{engine: engine, logg: logg, quantity: 1}, nil
}

// SetProduct re-initializes the machine for a new product reference: first
// variant, first available size, quantity one. A nil product clears the
// selection.
func (m *Machine) SetProduct(product *catalog.Product) {
	m.product = product
	m.variant = nil
	m.size = nil
	m.quantity = 1

	if product == nil || len(product.Variants) == 0 {
		return
	}
	variant := product.Variants[0]
	m.variant = &variant
	m.size = variant.FirstAvailableSize()
}

// SelectVariant switches the selected variant by id, re-deriving the default
// size and resetting quantity. Ids outside the current product are ignored.
func (m *Machine) SelectVariant(variantID uuid.UUID) {
	if m.product == nil {
		return
	}
	for i := range m.product.Variants {
		if m.product.Variants[i].ID == variantID {
			variant := m.product.Variants[i]
			m.variant = &variant
			m.size = variant.FirstAvailableSize()
			m.quantity = 1
			return
		}
	}
}

// SelectSize switches the selected size by id and resets quantity.
// Availability is not checked here; the view decides which sizes are
// offered, ConfirmAdd enforces the rest.
func (m *Machine) SelectSize(sizeID uuid.UUID) {
	if m.variant == nil {
		return
	}
	for i := range m.variant.Sizes {
		if m.variant.Sizes[i].ID == sizeID {
			size := m.variant.Sizes[i]
			m.size = &size
			m.quantity = 1
			return
		}
	}
}

// ChangeQuantity steps the picked quantity by delta, silently clamped to
// [1, maxAddable] for the current variant/size. Without a selected size the
// call is a no-op.
func (m *Machine) ChangeQuantity(delta int) {
	if m.variant == nil || m.size == nil {
		return
	}
	alreadyInCart := m.engine.QuantityFor(m.variant.ID, m.size.ID)
	max := limits.MaxAddable(m.size.Stock, alreadyInCart, limits.PurchaseLimit)
	m.quantity = limits.Clamp(m.quantity+delta, max)
}

// ConfirmAdd validates the current selection and hands the resulting line
// item to the cart engine. Rejections never mutate the cart.
func (m *Machine) ConfirmAdd(ctx context.Context) error {
	if m.product == nil || m.variant == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "no variant selected")
	}
	if m.size == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "no size selected")
	}
	if !m.size.Available() {
		return pkgerrors.New(pkgerrors.CodeValidation, "selected size is out of stock")
	}

	alreadyInCart := m.engine.QuantityFor(m.variant.ID, m.size.ID)
	remaining := limits.Remaining(alreadyInCart, limits.PurchaseLimit)
	if remaining == 0 {
		return pkgerrors.New(pkgerrors.CodeLimitExceeded,
			"purchase limit reached, no more of this item can be added")
	}
	if m.quantity > remaining {
		return pkgerrors.New(pkgerrors.CodeLimitExceeded,
			fmt.Sprintf("only %d more of this item can be added", remaining))
	}

	stock := m.size.Stock
	item := cart.LineItem{
		ID:               cart.CompositeID(m.variant.ID, m.size.ID),
		ProductVariantID: m.variant.ID,
		SizeID:           m.size.ID,
		Name:             m.product.Name,
		Color:            m.variant.Color,
		Size:             m.size.Label,
		Image:            m.variant.Image,
		Quantity:         m.quantity,
		PriceCents:       m.variant.PriceCents,
		Stock:            &stock,
	}
	ctx = m.logg.WithVariantID(ctx, m.variant.ID.String())
	return m.engine.Add(ctx, item)
}

// Quantity returns the currently picked quantity.
func (m *Machine) Quantity() int {
	return m.quantity
}

// SelectedVariant returns the current variant, or nil before SetProduct.
func (m *Machine) SelectedVariant() *catalog.Variant {
	return m.variant
}

// SelectedSize returns the current size, or nil for size-less variants.
func (m *Machine) SelectedSize() *catalog.Size {
	return m.size
}
