package repository

import (
	"context"

	"github.com/annaigorevna5/sensual-beauty/internal/domain"
)

// CartRepository defines the interface for cart persistence operations.
// The storefront keeps a single cart per deployment, so no key or user
// identifier appears in the method signatures.
type CartRepository interface {
	// Load retrieves the persisted cart items. It returns
	// apperrors.ErrNotFound when no cart has been saved yet.
	Load(ctx context.Context) ([]domain.CartItem, error)

	// Save persists the given items, overwriting any existing cart.
	Save(ctx context.Context, items []domain.CartItem) error

	// Clear removes the persisted cart.
	Clear(ctx context.Context) error
}
