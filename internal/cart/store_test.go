package cart

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/annaigorevna5/sensual-beauty/internal/domain"
	apperrors "github.com/annaigorevna5/sensual-beauty/pkg/errors"
)

// --- Mock Repository ---

type mockCartRepository struct {
	mock.Mock
}

func (m *mockCartRepository) Load(ctx context.Context) ([]domain.CartItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CartItem), args.Error(1)
}

func (m *mockCartRepository) Save(ctx context.Context, items []domain.CartItem) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func (m *mockCartRepository) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestStore(repo *mockCartRepository) *Store {
	repo.On("Load", mock.Anything).Return(nil, apperrors.NotFound("cart", "storefront:cart")).Maybe()
	return NewStore(context.Background(), repo, newTestLogger())
}

func scrub() domain.CartItem {
	return domain.CartItem{
		ID:       "lavender-scrub",
		Name:     "Lavender Dream Scrub",
		Price:    1990,
		Quantity: 2,
		Category: "scrubs",
	}
}

func cream() domain.CartItem {
	return domain.CartItem{
		ID:       "rose-cream",
		Name:     "Rose Petal Cream",
		Price:    2450,
		Quantity: 1,
		Category: "creams",
	}
}

// --- Load ---

func TestStore_Load_Success(t *testing.T) {
	repo := new(mockCartRepository)
	ctx := context.Background()

	repo.On("Load", ctx).Return([]domain.CartItem{scrub(), cream()}, nil)

	store := NewStore(ctx, repo, newTestLogger())

	assert.Len(t, store.Items(), 2)
	assert.Equal(t, int64(1990*2+2450), store.Total())
	assert.Equal(t, 3, store.Count())
	repo.AssertExpectations(t)
}

func TestStore_Load_NotFoundStartsEmpty(t *testing.T) {
	repo := new(mockCartRepository)
	ctx := context.Background()

	repo.On("Load", ctx).Return(nil, apperrors.NotFound("cart", "storefront:cart"))

	store := NewStore(ctx, repo, newTestLogger())

	assert.Empty(t, store.Items())
}

func TestStore_Load_StorageErrorStartsEmpty(t *testing.T) {
	repo := new(mockCartRepository)
	ctx := context.Background()

	repo.On("Load", ctx).Return(nil, errors.New("redis get cart: connection refused"))

	store := NewStore(ctx, repo, newTestLogger())

	assert.Empty(t, store.Items())
}

func TestStore_Load_DropsInvalidEntries(t *testing.T) {
	repo := new(mockCartRepository)
	ctx := context.Background()

	repo.On("Load", ctx).Return([]domain.CartItem{
		scrub(),
		{ID: "", Name: "ghost", Price: 100, Quantity: 1},
		{ID: "zero-qty", Price: 100, Quantity: 0},
		{ID: "negative", Price: -5, Quantity: 1},
	}, nil)

	store := NewStore(ctx, repo, newTestLogger())

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "lavender-scrub", items[0].ID)
}

// --- AddItem ---

func TestStore_AddItem_New(t *testing.T) {
	repo := new(mockCartRepository)
	store := newTestStore(repo)
	ctx := context.Background()

	repo.On("Save", ctx, mock.Anything).Return(nil)

	require.NoError(t, store.AddItem(ctx, scrub()))

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	repo.AssertExpectations(t)
}

func TestStore_AddItem_MergesQuantity(t *testing.T) {
	repo := new(mockCartRepository)
	store := newTestStore(repo)
	ctx := context.Background()

	repo.On("Save", ctx, mock.Anything).Return(nil)

	require.NoError(t, store.AddItem(ctx, scrub()))
	require.NoError(t, store.AddItem(ctx, scrub()))

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 4, items[0].Quantity)
	assert.Equal(t, int64(1990*4), store.Total())
}

func TestStore_AddItem_MergeKeepsOriginalSnapshot(t *testing.T) {
	repo := new(mockCartRepository)
	store := newTestStore(repo)
	ctx := context.Background()

	repo.On("Save", ctx, mock.Anything).Return(nil)

	require.NoError(t, store.AddItem(ctx, scrub()))

	repriced := scrub()
	repriced.Price = 1790
	repriced.Name = "Lavender Dream Scrub (new formula)"
	require.NoError(t, store.AddItem(ctx, repriced))

	// The line keeps the price and name captured when it entered the cart.
	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 4, items[0].Quantity)
	assert.Equal(t, int64(1990), items[0].Price)
	assert.Equal(t, "Lavender Dream Scrub", items[0].Name)
}

func TestStore_TotalsAcrossLines(t *testing.T) {
	repo := new(mockCartRepository)
	store := newTestStore(repo)
	ctx := context.Background()

	repo.On("Save", ctx, mock.Anything).Return(nil)

	soap := domain.CartItem{ID: "citrus-soap", Name: "Citrus Burst Soap", Price: 1000, Quantity: 1}
	gift := domain.CartItem{ID: "gift-set-luxe", Name: "Luxe Gift Set", Price: 5000, Quantity: 1}

	require.NoError(t, store.AddItem(ctx, soap))
	require.NoError(t, store.AddItem(ctx, soap))
	require.NoError(t, store.AddItem(ctx, gift))

	assert.Equal(t, int64(7000), store.Total())
	assert.Equal(t, 3, store.Count())
	require.Len(t, store.Items(), 2)
}

func TestStore_AddItem_InvalidQuantity(t *testing.T) {
	repo := new(mockCartRepository)
	store := newTestStore(repo)
	ctx := context.Background()

	err := store.AddItem(ctx, domain.CartItem{ID: "p1", Quantity: 0})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	err = store.AddItem(ctx, domain.CartItem{ID: "p1", Quantity: -3})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	// Nothing was persisted.
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	assert.Empty(t, store.Items())
}

func TestStore_AddItem_MissingID(t *testing.T) {
	repo := new(mockCartRepository)
	store := newTestStore(repo)

	err := store.AddItem(context.Background(), domain.CartItem{Quantity: 1})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestStore_AddItem_QuantityCap(t *testing.T) {
	repo := new(mockCartRepository)
	store := newTestStore(repo)
	ctx := context.Background()

	repo.On("Save", ctx, mock.Anything).Return(nil)

	item := scrub()
	item.Quantity = MaxQuantityPerItem
	require.NoError(t, store.AddItem(ctx, item))

	more := scrub()
	more.Quantity = 1
	err := store.AddItem(ctx, more)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestStore_AddItem_PersistFailureStillApplies(t *testing.T) {
	repo := new(mockCartRepository)
	store := newTestStore(repo)
	ctx := context.Background()

	repo.On("Save", ctx, mock.Anything).Return(errors.New("redis set cart: broken pipe"))

	notified := 0
	store.Subscribe(func(domain.CartSnapshot) { notified++ })

	// The mutation succeeds even when the save fails.
	require.NoError(t, store.AddItem(ctx, scrub()))
	assert.Len(t, store.Items(), 1)
	assert.Equal(t, 1, notified)
}

// --- UpdateQuantity ---

func TestStore_UpdateQuantity(t *testing.T) {
	repo := new(mockCartRepository)
	store := newTestStore(repo)
	ctx := context.Background()

	repo.On("Save", ctx, mock.Anything).Return(nil)

	require.NoError(t, store.AddItem(ctx, scrub()))
	require.NoError(t, store.UpdateQuantity(ctx, "lavender-scrub", 5))

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestStore_UpdateQuantity_ZeroRemoves(t *testing.T) {
	repo := new(mockCartRepository)
	store := newTestStore(repo)
	ctx := context.Background()

	repo.On("Save", ctx, mock.Anything).Return(nil)

	require.NoError(t, store.AddItem(ctx, scrub()))
	require.NoError(t, store.UpdateQuantity(ctx, "lavender-scrub", 0))

	assert.Empty(t, store.Items())
}

func TestStore_UpdateQuantity_NegativeRemoves(t *testing.T) {
	repo := new(mockCartRepository)
	store := newTestStore(repo)
	ctx := context.Background()

	repo.On("Save", ctx, mock.Anything).Return(nil)

	require.NoError(t, store.AddItem(ctx, scrub()))
	require.NoError(t, store.UpdateQuantity(ctx, "lavender-scrub", -2))

	assert.Empty(t, store.Items())
}

func TestStore_UpdateQuantity_UnknownIDIsNoOp(t *testing.T) {
	repo := new(mockCartRepository)
	store := newTestStore(repo)
	ctx := context.Background()

	notified := 0
	store.Subscribe(func(domain.CartSnapshot) { notified++ })

	require.NoError(t, store.UpdateQuantity(ctx, "missing", 3))

	// No persist, no notification.
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	assert.Zero(t, notified)
}

// --- RemoveItem ---

func TestStore_RemoveItem(t *testing.T) {
	repo := new(mockCartRepository)
	store := newTestStore(repo)
	ctx := context.Background()

	repo.On("Save", ctx, mock.Anything).Return(nil)

	require.NoError(t, store.AddItem(ctx, scrub()))
	require.NoError(t, store.AddItem(ctx, cream()))
	store.RemoveItem(ctx, "lavender-scrub")

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "rose-cream", items[0].ID)
}

func TestStore_RemoveItem_UnknownIDIsNoOp(t *testing.T) {
	repo := new(mockCartRepository)
	store := newTestStore(repo)

	notified := 0
	store.Subscribe(func(domain.CartSnapshot) { notified++ })

	store.RemoveItem(context.Background(), "missing")

	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	assert.Zero(t, notified)
}

// AddItem followed by RemoveItem leaves the cart exactly as it started.
func TestStore_AddThenRemoveIsInverse(t *testing.T) {
	repo := new(mockCartRepository)
	store := newTestStore(repo)
	ctx := context.Background()

	repo.On("Save", ctx, mock.Anything).Return(nil)

	require.NoError(t, store.AddItem(ctx, scrub()))
	before := store.Snapshot()

	require.NoError(t, store.AddItem(ctx, cream()))
	store.RemoveItem(ctx, "rose-cream")

	assert.Equal(t, before, store.Snapshot())
}

// --- Clear ---

func TestStore_Clear(t *testing.T) {
	repo := new(mockCartRepository)
	store := newTestStore(repo)
	ctx := context.Background()

	repo.On("Save", ctx, mock.Anything).Return(nil)
	repo.On("Clear", ctx).Return(nil)

	require.NoError(t, store.AddItem(ctx, scrub()))
	store.Clear(ctx)

	assert.Empty(t, store.Items())
	assert.Zero(t, store.Total())
	repo.AssertCalled(t, "Clear", ctx)
}

func TestStore_Clear_AlwaysNotifies(t *testing.T) {
	repo := new(mockCartRepository)
	store := newTestStore(repo)
	ctx := context.Background()

	repo.On("Clear", ctx).Return(nil)

	notified := 0
	store.Subscribe(func(snap domain.CartSnapshot) {
		notified++
		assert.Empty(t, snap.Items)
	})

	// Clearing an already-empty cart still notifies.
	store.Clear(ctx)
	assert.Equal(t, 1, notified)
}

// --- Subscriptions ---

func TestStore_Subscribe_ReceivesSnapshots(t *testing.T) {
	repo := new(mockCartRepository)
	store := newTestStore(repo)
	ctx := context.Background()

	repo.On("Save", ctx, mock.Anything).Return(nil)

	var last domain.CartSnapshot
	store.Subscribe(func(snap domain.CartSnapshot) { last = snap })

	require.NoError(t, store.AddItem(ctx, scrub()))

	require.Len(t, last.Items, 1)
	assert.Equal(t, int64(3980), last.Total)
	assert.Equal(t, 2, last.ItemCount)
}

func TestStore_Subscribe_Order(t *testing.T) {
	repo := new(mockCartRepository)
	store := newTestStore(repo)
	ctx := context.Background()

	repo.On("Save", ctx, mock.Anything).Return(nil)

	var order []string
	store.Subscribe(func(domain.CartSnapshot) { order = append(order, "first") })
	store.Subscribe(func(domain.CartSnapshot) { order = append(order, "second") })

	require.NoError(t, store.AddItem(ctx, scrub()))

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestStore_Unsubscribe(t *testing.T) {
	repo := new(mockCartRepository)
	store := newTestStore(repo)
	ctx := context.Background()

	repo.On("Save", ctx, mock.Anything).Return(nil)

	notified := 0
	token := store.Subscribe(func(domain.CartSnapshot) { notified++ })
	store.Unsubscribe(token)

	require.NoError(t, store.AddItem(ctx, scrub()))
	assert.Zero(t, notified)

	// Unknown tokens are ignored.
	store.Unsubscribe(999)
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	repo := new(mockCartRepository)
	store := newTestStore(repo)
	ctx := context.Background()

	repo.On("Save", ctx, mock.Anything).Return(nil)

	require.NoError(t, store.AddItem(ctx, scrub()))

	items := store.Items()
	items[0].Quantity = 99

	assert.Equal(t, 2, store.Items()[0].Quantity)
}
