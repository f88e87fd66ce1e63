package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/annaigorevna5/sensual-beauty/internal/domain"
	apperrors "github.com/annaigorevna5/sensual-beauty/pkg/errors"
)

// envelopeVersion is the current on-wire version of the persisted cart.
const envelopeVersion = 1

// cartEnvelope is the persisted shape of the cart. Earlier deployments
// stored a bare item array, which Load still accepts.
type cartEnvelope struct {
	Version int               `json:"version"`
	Items   []domain.CartItem `json:"items"`
}

// CartRepository implements repository.CartRepository using a single
// Redis key.
type CartRepository struct {
	client *redis.Client
	key    string
}

// NewCartRepository creates a new Redis-backed cart repository that
// persists the cart under the given key.
func NewCartRepository(client *redis.Client, key string) *CartRepository {
	return &CartRepository{
		client: client,
		key:    key,
	}
}

// Load retrieves the persisted cart items from Redis. A missing key
// yields apperrors.ErrNotFound; corrupt payloads yield an unmarshal error.
func (r *CartRepository) Load(ctx context.Context) ([]domain.CartItem, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.NotFound("cart", r.key)
		}
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	var env cartEnvelope
	if err := json.Unmarshal(data, &env); err == nil && env.Version > 0 {
		return env.Items, nil
	}

	// Legacy shape: a bare array of items.
	var items []domain.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	return items, nil
}

// Save persists the cart items to Redis under the configured key. The cart
// has no TTL: it lives until cleared.
func (r *CartRepository) Save(ctx context.Context, items []domain.CartItem) error {
	env := cartEnvelope{
		Version: envelopeVersion,
		Items:   items,
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}

	return nil
}

// Clear removes the persisted cart from Redis.
func (r *CartRepository) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("redis del cart: %w", err)
	}

	return nil
}
