package cart

import (
	"context"
	"fmt"
	"sync"

	pkgerrors "github.com/angelmondragon/storefront-core/pkg/errors"
	"github.com/angelmondragon/storefront-core/pkg/logger"
	"github.com/angelmondragon/storefront-core/pkg/metrics"
	"github.com/angelmondragon/storefront-core/pkg/validate"
	"github.com/google/uuid"
)

// Engine is the single source of truth for cart contents. It routes writes to
// the remote gateway or the guest store depending on authentication status and
// keeps exactly one authoritative in-memory representation.
//
// There is one logical writer (the UI event loop). The mutex only keeps the
// in-memory snapshot internally consistent; callers must not assume atomicity
// across gateway calls. A superseding call is not cancelled, last write wins
// at the gateway, and each write triggers its own re-sync.
type Engine struct {
	mu    sync.Mutex
	mode  Mode
	items []LineItem

	gateway      Gateway
	guest        GuestStore
	auth         AuthStatus
	logg         *logger.Logger
	metrics      *metrics.CartMetrics
	onCartOpened func()
}

// Params collects the collaborators injected into the engine.
type Params struct {
	Gateway    Gateway
	GuestStore GuestStore
	Auth       AuthStatus
	Logger     *logger.Logger
	Metrics    *metrics.CartMetrics

	// OnCartOpened is invoked after every successful add so the rendering
	// layer can surface the cart. Optional.
	OnCartOpened func()
}

// NewEngine builds a cart engine backed by the provided stack.
func NewEngine(p Params) (*Engine, error) {
	if p.Gateway == nil {
		return nil, fmt.Errorf("cart gateway required")
	}
	if p.GuestStore == nil {
		return nil, fmt.Errorf("guest cart store required")
	}
	if p.Auth == nil {
		return nil, fmt.Errorf("auth status provider required")
	}
	if p.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Engine{
		mode:         ModeGuest,
		gateway:      p.Gateway,
		guest:        p.GuestStore,
		auth:         p.Auth,
		logg:         p.Logger,
		metrics:      p.Metrics,
		onCartOpened: p.OnCartOpened,
	}, nil
}

// Sync reloads the cart from the backend that matches the current
// authentication status. Authenticated: the gateway response replaces the
// in-memory state and the guest store is cleared without merging. Guest: the
// guest store is loaded. Read failures retain the current state and are
// logged, never surfaced as fatal.
func (e *Engine) Sync(ctx context.Context) {
	if e.auth.IsAuthenticated() {
		e.syncAuthenticated(ctx)
		return
	}
	e.syncGuest(ctx)
}

func (e *Engine) syncAuthenticated(ctx context.Context) {
	ctx = e.logg.WithCartMode(ctx, string(ModeAuthenticated))

	items, err := e.gateway.FetchCart(ctx)
	if err != nil {
		e.metrics.IncSyncFailure()
		ctx = e.logg.WithField(ctx, "error_detail", pkgerrors.Dump(err))
		e.logg.Error(ctx, "cart fetch failed, keeping stale state", err)
		e.mu.Lock()
		e.mode = ModeAuthenticated
		e.mu.Unlock()
		return
	}

	e.mu.Lock()
	e.mode = ModeAuthenticated
	e.items = items
	e.mu.Unlock()

	// Guest items are discarded on login, not merged into the server cart.
	if err := e.guest.Clear(ctx); err != nil {
		e.logg.Warn(e.logg.WithField(ctx, "error", err.Error()), "failed to clear guest cart store")
	}
}

func (e *Engine) syncGuest(ctx context.Context) {
	ctx = e.logg.WithCartMode(ctx, string(ModeGuest))

	items, err := e.guest.Load(ctx)
	if err != nil {
		ctx = e.logg.WithField(ctx, "error_detail", pkgerrors.Dump(err))
		e.logg.Error(ctx, "guest cart load failed, keeping current state", err)
		e.mu.Lock()
		e.mode = ModeGuest
		e.mu.Unlock()
		return
	}

	e.mu.Lock()
	e.mode = ModeGuest
	e.items = items
	e.mu.Unlock()
}

// Add puts an item in the cart. Authenticated carts go through the gateway
// followed by a full re-fetch; guest carts merge by line id. A successful add
// raises the cart-open signal in either mode.
func (e *Engine) Add(ctx context.Context, item LineItem) error {
	if err := validate.Struct(item); err != nil {
		return err
	}
	ctx = e.logg.WithLineItemID(ctx, item.ID)

	if e.currentMode() == ModeAuthenticated {
		if err := e.gateway.AddItem(ctx, item.ProductVariantID, item.SizeID, item.Quantity); err != nil {
			e.metrics.IncGatewayFailure("add")
			return pkgerrors.Wrap(pkgerrors.CodeGateway, err, "add item to cart")
		}
		e.Sync(ctx)
		e.raiseCartOpened()
		return nil
	}

	e.mu.Lock()
	snapshot := e.snapshotLocked()
	merged := false
	for i := range e.items {
		if e.items[i].ID == item.ID {
			e.items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		e.items = append(e.items, item)
	}
	current := e.snapshotLocked()
	e.mu.Unlock()

	if err := e.guest.Save(ctx, current); err != nil {
		e.restore(snapshot)
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "save guest cart")
	}

	e.raiseCartOpened()
	return nil
}

// Remove deletes a line item. Guest carts filter unconditionally; unknown ids
// are a no-op for both modes.
func (e *Engine) Remove(ctx context.Context, lineItemID string) error {
	ctx = e.logg.WithLineItemID(ctx, lineItemID)

	if e.currentMode() == ModeAuthenticated {
		if err := e.gateway.Remove(ctx, lineItemID); err != nil {
			e.metrics.IncGatewayFailure("remove")
			return pkgerrors.Wrap(pkgerrors.CodeGateway, err, "remove item from cart")
		}
		e.Sync(ctx)
		return nil
	}

	e.mu.Lock()
	snapshot := e.snapshotLocked()
	filtered := e.items[:0:0]
	for _, it := range e.items {
		if it.ID != lineItemID {
			filtered = append(filtered, it)
		}
	}
	e.items = filtered
	current := e.snapshotLocked()
	e.mu.Unlock()

	if err := e.guest.Save(ctx, current); err != nil {
		e.restore(snapshot)
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "save guest cart")
	}
	return nil
}

// UpdateQuantity applies an optimistic local delta, then reconciles with the
// gateway in authenticated mode. On gateway failure the pre-call snapshot is
// replayed exactly. Unknown ids and zero deltas are no-ops.
func (e *Engine) UpdateQuantity(ctx context.Context, lineItemID string, delta int) error {
	if delta == 0 {
		return nil
	}
	ctx = e.logg.WithLineItemID(ctx, lineItemID)

	e.mu.Lock()
	idx := -1
	for i := range e.items {
		if e.items[i].ID == lineItemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		e.mu.Unlock()
		return nil
	}

	snapshot := e.snapshotLocked()
	mode := e.mode
	e.items[idx].Quantity += delta
	if mode == ModeGuest && e.items[idx].Quantity <= 0 {
		e.items = append(e.items[:idx], e.items[idx+1:]...)
	}
	current := e.snapshotLocked()
	e.mu.Unlock()

	if mode == ModeGuest {
		if err := e.guest.Save(ctx, current); err != nil {
			e.restore(snapshot)
			return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "save guest cart")
		}
		return nil
	}

	var err error
	if delta > 0 {
		err = e.gateway.Increase(ctx, lineItemID)
	} else {
		err = e.gateway.Decrease(ctx, lineItemID)
	}
	if err != nil {
		e.restore(snapshot)
		e.metrics.IncRollback()
		e.metrics.IncGatewayFailure("update_quantity")
		return pkgerrors.Wrap(pkgerrors.CodeGateway, err, "update item quantity")
	}

	e.Sync(ctx)
	return nil
}

// Items returns a copy of the current cart contents in order.
func (e *Engine) Items() []LineItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Mode reports the storage mode adopted by the last sync.
func (e *Engine) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// TotalItems folds the quantity over current items. Recomputed on every call
// so it can never diverge from the contents.
func (e *Engine) TotalItems() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	total := 0
	for _, it := range e.items {
		total += it.Quantity
	}
	return total
}

// TotalAmountCents folds quantity times unit price over current items.
func (e *Engine) TotalAmountCents() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	total := 0
	for _, it := range e.items {
		total += it.SubtotalCents()
	}
	return total
}

// QuantityFor sums the in-cart quantity for an exact variant/size pair. The
// selection machine uses this to compute the remaining purchase allowance.
func (e *Engine) QuantityFor(variantID, sizeID uuid.UUID) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	total := 0
	for _, it := range e.items {
		if it.ProductVariantID == variantID && it.SizeID == sizeID {
			total += it.Quantity
		}
	}
	return total
}

func (e *Engine) currentMode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

func (e *Engine) snapshotLocked() []LineItem {
	snapshot := make([]LineItem, len(e.items))
	copy(snapshot, e.items)
	return snapshot
}

func (e *Engine) restore(snapshot []LineItem) {
	e.mu.Lock()
	e.items = snapshot
	e.mu.Unlock()
}

func (e *Engine) raiseCartOpened() {
	e.metrics.IncCartOpen()
	if e.onCartOpened != nil {
		e.onCartOpened()
	}
}
