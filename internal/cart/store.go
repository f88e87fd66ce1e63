package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/annaigorevna5/sensual-beauty/internal/domain"
	"github.com/annaigorevna5/sensual-beauty/internal/repository"
	apperrors "github.com/annaigorevna5/sensual-beauty/pkg/errors"
)

// Cart operation upper-bound limits to prevent abuse.
const (
	// MaxQuantityPerItem is the maximum quantity allowed for a single cart item.
	MaxQuantityPerItem = 100
	// MaxItemsPerCart is the maximum number of distinct items allowed in the cart.
	MaxItemsPerCart = 50
)

// Subscriber receives a snapshot of the cart after every mutation.
// Subscribers are invoked synchronously, in subscription order, while the
// store's lock is held: they must not call back into the Store.
type Subscriber func(domain.CartSnapshot)

// Store holds the single process-wide shopping cart. All mutations are
// serialized, persisted best-effort through the repository, and then
// announced to subscribers.
//
// Persistence is weakly durable: a failed save is logged and the in-memory
// state stays authoritative for the life of the process.
type Store struct {
	repo   repository.CartRepository
	logger *slog.Logger

	mu        sync.Mutex
	items     []domain.CartItem
	subs      map[int]Subscriber
	nextToken int
}

// NewStore creates a cart store backed by the given repository and hydrates
// it from storage. Construction never fails: any load error degrades to an
// empty cart.
func NewStore(ctx context.Context, repo repository.CartRepository, logger *slog.Logger) *Store {
	s := &Store{
		repo:   repo,
		logger: logger,
		subs:   make(map[int]Subscriber),
	}
	s.load(ctx)
	return s
}

// load hydrates the cart from the repository. Any storage failure degrades
// to an empty cart: a browsable storefront beats a hard startup error.
func (s *Store) load(ctx context.Context) {
	items, err := s.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.DebugContext(ctx, "no persisted cart, starting empty")
		} else {
			s.logger.WarnContext(ctx, "failed to load persisted cart, starting empty",
				slog.String("error", err.Error()),
			)
		}
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = sanitize(items)
}

// sanitize drops persisted entries that can no longer form a valid cart
// line, so a partially corrupt payload does not poison the session.
func sanitize(items []domain.CartItem) []domain.CartItem {
	out := make([]domain.CartItem, 0, len(items))
	for _, item := range items {
		if item.ID == "" || item.Quantity < 1 || item.Price < 0 {
			continue
		}
		out = append(out, item)
	}
	return out
}

// AddItem adds an item to the cart. If the product is already present, only
// the quantities are merged: the line keeps the price and descriptive fields
// snapshotted when it was first added.
func (s *Store) AddItem(ctx context.Context, item domain.CartItem) error {
	if item.ID == "" {
		return apperrors.InvalidInput("product id is required")
	}
	if item.Quantity < 1 {
		return apperrors.InvalidInput("quantity must be at least 1")
	}
	if item.Quantity > MaxQuantityPerItem {
		return apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := domain.FindItemIndex(s.items, item.ID); i >= 0 {
		newQty := s.items[i].Quantity + item.Quantity
		if newQty > MaxQuantityPerItem {
			return apperrors.InvalidInput(fmt.Sprintf("combined quantity must not exceed %d", MaxQuantityPerItem))
		}
		s.items[i].Quantity = newQty
	} else {
		if len(s.items) >= MaxItemsPerCart {
			return apperrors.InvalidInput(fmt.Sprintf("cart must not contain more than %d items", MaxItemsPerCart))
		}
		s.items = append(s.items, item)
	}

	s.persistLocked(ctx)
	s.notifyLocked()

	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("product_id", item.ID),
		slog.Int("quantity", item.Quantity),
	)
	return nil
}

// UpdateQuantity sets the quantity of the given product. A quantity of zero
// or less removes the line. Unknown product IDs are a silent no-op.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity > MaxQuantityPerItem {
		return apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := domain.FindItemIndex(s.items, productID)
	if i < 0 {
		return nil
	}

	if quantity <= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	} else {
		s.items[i].Quantity = quantity
	}

	s.persistLocked(ctx)
	s.notifyLocked()

	s.logger.InfoContext(ctx, "cart item quantity updated",
		slog.String("product_id", productID),
		slog.Int("quantity", quantity),
	)
	return nil
}

// RemoveItem removes the given product from the cart. Unknown product IDs
// are a silent no-op.
func (s *Store) RemoveItem(ctx context.Context, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := domain.FindItemIndex(s.items, productID)
	if i < 0 {
		return
	}
	s.items = append(s.items[:i], s.items[i+1:]...)

	s.persistLocked(ctx)
	s.notifyLocked()

	s.logger.InfoContext(ctx, "item removed from cart",
		slog.String("product_id", productID),
	)
}

// Clear empties the cart. Unlike the no-op mutations, Clear always persists
// and notifies, even when the cart was already empty.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil

	if err := s.repo.Clear(ctx); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear persisted cart",
			slog.String("error", err.Error()),
		)
	}
	s.notifyLocked()

	s.logger.InfoContext(ctx, "cart cleared")
}

// Items returns a copy of the current cart lines.
func (s *Store) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyItems(s.items)
}

// Total returns the cart total in cents.
func (s *Store) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.TotalAmount(s.items)
}

// Count returns the total number of units in the cart.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.ItemCount(s.items)
}

// Snapshot returns the current cart with derived totals.
func (s *Store) Snapshot() domain.CartSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers a subscriber and returns a token for Unsubscribe.
func (s *Store) Subscribe(fn Subscriber) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := s.nextToken
	s.nextToken++
	s.subs[token] = fn
	return token
}

// Unsubscribe removes a previously registered subscriber. Unknown tokens
// are ignored.
func (s *Store) Unsubscribe(token int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, token)
}

func (s *Store) snapshotLocked() domain.CartSnapshot {
	return domain.CartSnapshot{
		Items:     copyItems(s.items),
		Total:     domain.TotalAmount(s.items),
		ItemCount: domain.ItemCount(s.items),
	}
}

// persistLocked saves the cart best-effort. Failures are logged, never
// surfaced: the in-memory cart stays authoritative.
func (s *Store) persistLocked(ctx context.Context) {
	if err := s.repo.Save(ctx, s.items); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist cart",
			slog.String("error", err.Error()),
		)
	}
}

func (s *Store) notifyLocked() {
	if len(s.subs) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for token := 0; token < s.nextToken; token++ {
		if fn, ok := s.subs[token]; ok {
			fn(snap)
		}
	}
}

func copyItems(items []domain.CartItem) []domain.CartItem {
	out := make([]domain.CartItem, len(items))
	copy(out, items)
	return out
}
