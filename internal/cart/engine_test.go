package cart

import (
	"context"
	"errors"
	"io"
	"testing"

	pkgerrors "github.com/angelmondragon/storefront-core/pkg/errors"
	"github.com/angelmondragon/storefront-core/pkg/logger"
	"github.com/google/uuid"
)

func TestGuestAddMergesByLineID(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false)
	item := testItem(3)

	if err := env.engine.Add(context.Background(), item); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	item.Quantity = 4
	if err := env.engine.Add(context.Background(), item); err != nil {
		t.Fatalf("second add failed: %v", err)
	}

	items := env.engine.Items()
	if len(items) != 1 {
		t.Fatalf("expected a single merged line, got %d", len(items))
	}
	if items[0].Quantity != 7 {
		t.Fatalf("expected merged quantity 7, got %d", items[0].Quantity)
	}
	if env.store.saves == 0 {
		t.Fatalf("expected guest store saves after guest mutations")
	}
}

func TestGuestAddAppendsDistinctLines(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false)
	first := testItem(2)
	second := testItem(1)
	second.ProductVariantID = uuid.New()
	second.ID = CompositeID(second.ProductVariantID, second.SizeID)
	second.PriceCents = 2500

	if err := env.engine.Add(context.Background(), first); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := env.engine.Add(context.Background(), second); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if got := len(env.engine.Items()); got != 2 {
		t.Fatalf("expected 2 lines, got %d", got)
	}
}

func TestTotalsAreFoldsOverItems(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false)
	item := testItem(3)
	item.PriceCents = 1999

	if err := env.engine.Add(context.Background(), item); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if got := env.engine.TotalItems(); got != 3 {
		t.Fatalf("expected 3 total items, got %d", got)
	}
	if got := env.engine.TotalAmountCents(); got != 3*1999 {
		t.Fatalf("expected total %d, got %d", 3*1999, got)
	}

	if err := env.engine.UpdateQuantity(context.Background(), item.ID, -1); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if got := env.engine.TotalAmountCents(); got != 2*1999 {
		t.Fatalf("total must track contents, got %d", got)
	}
}

func TestAddRejectsInvalidItem(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false)
	item := testItem(0)

	err := env.engine.Add(context.Background(), item)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(env.engine.Items()) != 0 {
		t.Fatalf("invalid add must not mutate state")
	}
}

func TestLoginDiscardsGuestCart(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false)
	if err := env.engine.Add(context.Background(), testItem(2)); err != nil {
		t.Fatalf("guest add failed: %v", err)
	}

	serverItem := testItem(5)
	serverItem.ID = uuid.NewString()
	env.gateway.items = []LineItem{serverItem}
	env.auth.authenticated = true

	env.engine.Sync(context.Background())

	if env.store.clears != 1 {
		t.Fatalf("expected guest store cleared exactly once, got %d", env.store.clears)
	}
	items := env.engine.Items()
	if len(items) != 1 || items[0].ID != serverItem.ID || items[0].Quantity != 5 {
		t.Fatalf("expected in-memory cart to equal gateway contents, got %+v", items)
	}
	if env.engine.Mode() != ModeAuthenticated {
		t.Fatalf("expected authenticated mode after login sync")
	}
}

func TestSyncFetchFailureRetainsState(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false)
	if err := env.engine.Add(context.Background(), testItem(2)); err != nil {
		t.Fatalf("guest add failed: %v", err)
	}

	env.auth.authenticated = true
	env.gateway.fetchErr = errors.New("boom")

	env.engine.Sync(context.Background())

	if got := env.engine.TotalItems(); got != 2 {
		t.Fatalf("stale state must be retained on fetch failure, got %d items", got)
	}
	if env.store.clears != 0 {
		t.Fatalf("guest store must not be cleared when fetch fails")
	}
}

func TestAuthenticatedAddRefetchesCart(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, true)
	serverItem := testItem(1)
	serverItem.ID = uuid.NewString()
	env.gateway.items = []LineItem{serverItem}
	env.engine.Sync(context.Background())

	item := testItem(2)
	if err := env.engine.Add(context.Background(), item); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if env.gateway.addCalls != 1 {
		t.Fatalf("expected one gateway add, got %d", env.gateway.addCalls)
	}
	if env.gateway.fetchCalls < 2 {
		t.Fatalf("expected re-fetch after add, got %d fetches", env.gateway.fetchCalls)
	}
}

func TestAuthenticatedAddFailureLeavesStateUntouched(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, true)
	serverItem := testItem(1)
	serverItem.ID = uuid.NewString()
	env.gateway.items = []LineItem{serverItem}
	env.engine.Sync(context.Background())
	env.gateway.addErr = errors.New("boom")

	err := env.engine.Add(context.Background(), testItem(2))
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeGateway {
		t.Fatalf("expected gateway error, got %v", err)
	}
	if got := env.engine.TotalItems(); got != 1 {
		t.Fatalf("failed add must not mutate state, got %d items", got)
	}
	if env.opened != 0 {
		t.Fatalf("cart-open signal must not fire on failed add")
	}
}

func TestAddRaisesCartOpenSignal(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false)
	if err := env.engine.Add(context.Background(), testItem(1)); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if env.opened != 1 {
		t.Fatalf("expected one cart-open signal, got %d", env.opened)
	}
}

func TestUpdateQuantityRollbackOnDecreaseFailure(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, true)
	serverItem := testItem(4)
	serverItem.ID = uuid.NewString()
	env.gateway.items = []LineItem{serverItem}
	env.engine.Sync(context.Background())

	env.gateway.decreaseErr = errors.New("boom")

	err := env.engine.UpdateQuantity(context.Background(), serverItem.ID, -1)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeGateway {
		t.Fatalf("expected gateway error, got %v", err)
	}

	items := env.engine.Items()
	if len(items) != 1 || items[0].Quantity != 4 {
		t.Fatalf("rollback must restore the exact pre-call quantity, got %+v", items)
	}
}

func TestGuestUpdateQuantityRemovesAtZero(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false)
	item := testItem(1)
	if err := env.engine.Add(context.Background(), item); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if err := env.engine.UpdateQuantity(context.Background(), item.ID, -1); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if got := len(env.engine.Items()); got != 0 {
		t.Fatalf("expected item removed at zero quantity, got %d lines", got)
	}
}

func TestUpdateQuantityUnknownIDIsNoOp(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false)
	if err := env.engine.UpdateQuantity(context.Background(), "missing", 1); err != nil {
		t.Fatalf("unknown id must be a no-op, got %v", err)
	}
	if env.store.saves != 0 {
		t.Fatalf("no-op must not touch the guest store")
	}
}

func TestGuestRemoveFiltersUnconditionally(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false)
	item := testItem(2)
	if err := env.engine.Add(context.Background(), item); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if err := env.engine.Remove(context.Background(), item.ID); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if got := len(env.engine.Items()); got != 0 {
		t.Fatalf("expected empty cart after remove, got %d lines", got)
	}
}

func TestGuestSaveFailureRevertsMerge(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false)
	if err := env.engine.Add(context.Background(), testItem(2)); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	env.store.saveErr = errors.New("disk full")
	err := env.engine.Add(context.Background(), testItem(3))
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStorage {
		t.Fatalf("expected storage error, got %v", err)
	}
	if got := env.engine.TotalItems(); got != 2 {
		t.Fatalf("failed save must revert the merge, got %d items", got)
	}
}

type testEnv struct {
	engine  *Engine
	gateway *stubGateway
	store   *stubGuestStore
	auth    *stubAuth
	opened  int
}

func newTestEnv(t *testing.T, authenticated bool) *testEnv {
	t.Helper()

	env := &testEnv{
		gateway: &stubGateway{},
		store:   &stubGuestStore{},
		auth:    &stubAuth{authenticated: authenticated},
	}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	engine, err := NewEngine(Params{
		Gateway:      env.gateway,
		GuestStore:   env.store,
		Auth:         env.auth,
		Logger:       logg,
		OnCartOpened: func() { env.opened++ },
	})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if authenticated {
		engine.Sync(context.Background())
	}
	env.engine = engine
	return env
}

var (
	testVariantID = uuid.New()
	testSizeID    = uuid.New()
)

func testItem(quantity int) LineItem {
	return LineItem{
		ID:               CompositeID(testVariantID, testSizeID),
		ProductVariantID: testVariantID,
		SizeID:           testSizeID,
		Name:             "heavyweight hoodie",
		Color:            "charcoal",
		Size:             "M",
		Image:            "https://cdn.test/hoodie.jpg",
		Quantity:         quantity,
		PriceCents:       4500,
	}
}

type stubGateway struct {
	items       []LineItem
	fetchErr    error
	addErr      error
	increaseErr error
	decreaseErr error
	removeErr   error

	fetchCalls int
	addCalls   int
}

func (s *stubGateway) FetchCart(ctx context.Context) ([]LineItem, error) {
	s.fetchCalls++
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	items := make([]LineItem, len(s.items))
	copy(items, s.items)
	return items, nil
}

func (s *stubGateway) AddItem(ctx context.Context, variantID, sizeID uuid.UUID, quantity int) error {
	s.addCalls++
	if s.addErr != nil {
		return s.addErr
	}
	s.items = append(s.items, LineItem{
		ID:               uuid.NewString(),
		ProductVariantID: variantID,
		SizeID:           sizeID,
		Name:             "server item",
		Quantity:         quantity,
		PriceCents:       4500,
	})
	return nil
}

func (s *stubGateway) Increase(ctx context.Context, lineItemID string) error {
	return s.increaseErr
}

func (s *stubGateway) Decrease(ctx context.Context, lineItemID string) error {
	return s.decreaseErr
}

func (s *stubGateway) Remove(ctx context.Context, lineItemID string) error {
	if s.removeErr != nil {
		return s.removeErr
	}
	filtered := s.items[:0:0]
	for _, it := range s.items {
		if it.ID != lineItemID {
			filtered = append(filtered, it)
		}
	}
	s.items = filtered
	return nil
}

func (s *stubGateway) Clear(ctx context.Context) error {
	s.items = nil
	return nil
}

type stubGuestStore struct {
	items   []LineItem
	loadErr error
	saveErr error

	saves  int
	clears int
}

func (s *stubGuestStore) Load(ctx context.Context) ([]LineItem, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	items := make([]LineItem, len(s.items))
	copy(items, s.items)
	return items, nil
}

func (s *stubGuestStore) Save(ctx context.Context, items []LineItem) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.items = make([]LineItem, len(items))
	copy(s.items, items)
	return nil
}

func (s *stubGuestStore) Clear(ctx context.Context) error {
	s.clears++
	s.items = nil
	return nil
}

type stubAuth struct {
	authenticated bool
}

func (s *stubAuth) IsAuthenticated() bool {
	return s.authenticated
}
