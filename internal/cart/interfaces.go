package cart

import (
	"context"

	"github.com/google/uuid"
)

// Gateway is the remote cart backend surface consumed by the engine. Every
// call may fail with a network or validation error; the engine treats all of
// them as a single gateway-error category with no retry.
type Gateway interface {
	FetchCart(ctx context.Context) ([]LineItem, error)
	AddItem(ctx context.Context, variantID, sizeID uuid.UUID, quantity int) error
	Increase(ctx context.Context, lineItemID string) error
	Decrease(ctx context.Context, lineItemID string) error
	Remove(ctx context.Context, lineItemID string) error
	Clear(ctx context.Context) error
}

// GuestStore persists cart lines for unauthenticated sessions. Implementations
// must treat corrupt persisted payloads as an empty cart, not an error.
type GuestStore interface {
	Load(ctx context.Context) ([]LineItem, error)
	Save(ctx context.Context, items []LineItem) error
	Clear(ctx context.Context) error
}

// AuthStatus reports whether the current session is authenticated.
type AuthStatus interface {
	IsAuthenticated() bool
}
