// Package cache keeps a Redis-backed, locally tiered copy of account balances.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/banking_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/banking_ledger/internal/core/ports/repositories"
	"github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

// Options tune the balance cache. Zero values fall back to the defaults below.
type Options struct {
	TTL              time.Duration
	LocalSize        int
	LocalTTL         time.Duration
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

const (
	defaultTTL              = 5 * time.Minute
	defaultLocalSize        = 10000
	defaultLocalTTL         = 5 * time.Second
	defaultFailureThreshold = 5
	defaultOpenTimeout      = 30 * time.Second
)

// RedisBalanceCache is a read-through balance cache. Reads and writes go through
// a circuit breaker so a failing Redis is bypassed instead of slowing every request.
type RedisBalanceCache struct {
	cache   *cache.Cache
	breaker *gobreaker.CircuitBreaker
	ttl     time.Duration
}

var _ portsrepo.BalanceCache = (*RedisBalanceCache)(nil)

func NewRedisBalanceCache(client redis.UniversalClient, opts Options) *RedisBalanceCache {
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.LocalSize <= 0 {
		opts.LocalSize = defaultLocalSize
	}
	if opts.LocalTTL <= 0 {
		opts.LocalTTL = defaultLocalTTL
	}
	if opts.FailureThreshold == 0 {
		opts.FailureThreshold = defaultFailureThreshold
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = defaultOpenTimeout
	}

	threshold := opts.FailureThreshold
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "balance-cache",
		MaxRequests: 1,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
	})

	return &RedisBalanceCache{
		cache: cache.New(&cache.Options{
			Redis:      client,
			LocalCache: cache.NewTinyLFU(opts.LocalSize, opts.LocalTTL),
		}),
		breaker: breaker,
		ttl:     opts.TTL,
	}
}

func balanceKey(tenantID domain.TenantID, accountID domain.AccountID) string {
	return fmt.Sprintf("ledger:balance:%s:%s", tenantID, accountID)
}

// Get returns (nil, nil) on a miss. An open breaker is reported as an error.
func (c *RedisBalanceCache) Get(ctx context.Context, tenantID domain.TenantID, accountID domain.AccountID) (*portsrepo.CachedBalance, error) {
	res, err := c.breaker.Execute(func() (interface{}, error) {
		var b portsrepo.CachedBalance
		err := c.cache.Get(ctx, balanceKey(tenantID, accountID), &b)
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &b, nil
	})
	if err != nil {
		return nil, fmt.Errorf("balance cache get: %w", err)
	}
	if res == nil {
		return nil, nil
	}
	return res.(*portsrepo.CachedBalance), nil
}

func (c *RedisBalanceCache) Set(ctx context.Context, tenantID domain.TenantID, balance portsrepo.CachedBalance) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.cache.Set(&cache.Item{
			Ctx:   ctx,
			Key:   balanceKey(tenantID, balance.AccountID),
			Value: balance,
			TTL:   c.ttl,
		})
	})
	if err != nil {
		return fmt.Errorf("balance cache set: %w", err)
	}
	return nil
}

// Invalidate removes the given balances. Missing keys are not an error.
func (c *RedisBalanceCache) Invalidate(ctx context.Context, tenantID domain.TenantID, accountIDs ...domain.AccountID) error {
	var errs []error
	for _, id := range accountIDs {
		err := c.cache.Delete(ctx, balanceKey(tenantID, id))
		if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
			errs = append(errs, fmt.Errorf("invalidate %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// State exposes the breaker state for health reporting.
func (c *RedisBalanceCache) State() string {
	return c.breaker.State().String()
}
