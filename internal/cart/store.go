package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/dealerdesk/order-engine/internal/redisx"
)

var ErrNotFound = errors.New("cart not found")

// Store keeps carts in redis as JSON blobs. The working cart expires after a
// week of inactivity; saved carts stick around until deleted.
type Store struct {
	RDB *redis.Client
}

func (s *Store) key(c Cart) string {
	if c.Saved {
		return fmt.Sprintf(redisx.KeySavedCart, c.OwnerID, c.ID)
	}
	return fmt.Sprintf(redisx.KeyCart, c.OwnerID)
}

func (s *Store) Put(ctx context.Context, c Cart) error {
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	ttl := redisx.TTLWorkingCart
	if c.Saved {
		ttl = 0
	}
	return s.RDB.Set(ctx, s.key(c), b, ttl).Err()
}

// Get loads the owner's working cart. A missing key yields an empty cart
// rather than an error: carts come into existence lazily on first add.
func (s *Store) Get(ctx context.Context, ownerID string) (Cart, error) {
	raw, err := s.RDB.Get(ctx, fmt.Sprintf(redisx.KeyCart, ownerID)).Result()
	if errors.Is(err, redis.Nil) {
		return Cart{OwnerID: ownerID}, nil
	}
	if err != nil {
		return Cart{}, err
	}
	var c Cart
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

func (s *Store) GetSaved(ctx context.Context, ownerID, cartID string) (Cart, error) {
	raw, err := s.RDB.Get(ctx, fmt.Sprintf(redisx.KeySavedCart, ownerID, cartID)).Result()
	if errors.Is(err, redis.Nil) {
		return Cart{}, ErrNotFound
	}
	if err != nil {
		return Cart{}, err
	}
	var c Cart
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

func (s *Store) Delete(ctx context.Context, c Cart) error {
	return s.RDB.Del(ctx, s.key(c)).Err()
}
