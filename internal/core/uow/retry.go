// Package uow holds the retry policy shared by every serializable unit of work.
package uow

import (
	"context"
	"time"

	"github.com/SscSPs/banking_ledger/internal/apperrors"
	"github.com/cenkalti/backoff/v4"
)

// Policy bounds how often and how fast a conflicting transaction is retried.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration

	// OnRetry, when set, is called before sleeping between attempts.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// DefaultPolicy is used when configuration leaves the retry settings empty.
var DefaultPolicy = Policy{
	MaxAttempts: 5,
	BaseDelay:   10 * time.Millisecond,
	MaxDelay:    500 * time.Millisecond,
}

func (p Policy) normalized() Policy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = DefaultPolicy.MaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultPolicy.BaseDelay
	}
	if p.MaxDelay < p.BaseDelay {
		p.MaxDelay = p.BaseDelay * 50
	}
	return p
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.BaseDelay
	exp.MaxInterval = p.MaxDelay
	exp.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(p.MaxAttempts-1)), ctx)
}

// WithSerializableRetry calls fn until it succeeds, fails with a non-retriable error,
// or has been tried policy.MaxAttempts times. Only concurrency conflicts are retried,
// with jittered exponential delays. Attempts are numbered from 1.
func WithSerializableRetry[T any](ctx context.Context, policy Policy, fn func(ctx context.Context, attempt int) (T, error)) (T, error) {
	policy = policy.normalized()

	attempt := 0
	op := func() (T, error) {
		var zero T
		if err := ctx.Err(); err != nil {
			return zero, backoff.Permanent(err)
		}
		attempt++
		out, err := fn(ctx, attempt)
		if err != nil && !apperrors.IsRetriable(err) {
			return zero, backoff.Permanent(err)
		}
		return out, err
	}
	notify := func(err error, wait time.Duration) {
		if policy.OnRetry != nil {
			policy.OnRetry(attempt, err, wait)
		}
	}

	result, err := backoff.RetryNotifyWithData(op, policy.backOff(ctx), notify)
	if err != nil && apperrors.IsRetriable(err) {
		var zero T
		return zero, apperrors.RetriesExhausted(attempt, err)
	}
	return result, err
}

// Run is WithSerializableRetry for functions without a result.
func Run(ctx context.Context, policy Policy, fn func(ctx context.Context, attempt int) error) error {
	_, err := WithSerializableRetry(ctx, policy, func(ctx context.Context, attempt int) (struct{}, error) {
		return struct{}{}, fn(ctx, attempt)
	})
	return err
}
