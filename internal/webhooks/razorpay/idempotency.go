package razorpaywebhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/rxcart-backend/pkg/redis"
)

// IdempotencyGuard marks gateway orders as claimed so a replayed callback
// cannot materialize a second order.
type IdempotencyGuard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
	scope string
}

func NewIdempotencyGuard(store redis.IdempotencyStore, ttl time.Duration, scope string) (*IdempotencyGuard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	if scope == "" {
		return nil, errors.New("scope is required")
	}
	return &IdempotencyGuard{
		store: store,
		ttl:   ttl,
		scope: scope,
	}, nil
}

// CheckAndMark claims the gateway order id. It reports true when the id was
// already claimed by an earlier callback.
func (g *IdempotencyGuard) CheckAndMark(ctx context.Context, gatewayOrderID string) (bool, error) {
	if gatewayOrderID == "" {
		return false, errors.New("gateway order id is required")
	}
	key := g.store.IdempotencyKey(g.scope, gatewayOrderID)
	set, err := g.store.SetNX(ctx, key, "1", g.ttl)
	if err != nil {
		return false, fmt.Errorf("set idempotency key: %w", err)
	}
	return !set, nil
}

// Release drops the claim so the callback can be retried.
func (g *IdempotencyGuard) Release(ctx context.Context, gatewayOrderID string) error {
	if gatewayOrderID == "" {
		return errors.New("gateway order id is required")
	}
	key := g.store.IdempotencyKey(g.scope, gatewayOrderID)
	return g.store.Del(ctx, key)
}
