package services

import (
	"log/slog"
	"time"

	portsrepo "github.com/SscSPs/banking_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/banking_ledger/internal/core/uow"
)

// ServiceOption is a functional option shared by the ledger services
type ServiceOption func(*serviceConfig)

type serviceConfig struct {
	logger  *slog.Logger
	cache   portsrepo.BalanceCache
	policy  uow.Policy
	timeout time.Duration
	now     func() time.Time
}

func newServiceConfig(options []ServiceOption) serviceConfig {
	cfg := serviceConfig{
		policy:  uow.DefaultPolicy,
		timeout: DefaultFastTransferTimeout,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, option := range options {
		option(&cfg)
	}
	return cfg
}

// WithLogger sets the base logger used when the request context carries none
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(c *serviceConfig) {
		c.logger = logger
	}
}

// WithBalanceCache adds the balance cache dependency
func WithBalanceCache(cache portsrepo.BalanceCache) ServiceOption {
	return func(c *serviceConfig) {
		c.cache = cache
	}
}

// WithRetryPolicy overrides the serializable retry policy
func WithRetryPolicy(policy uow.Policy) ServiceOption {
	return func(c *serviceConfig) {
		c.policy = policy
	}
}

// WithFastTransferTimeout bounds each call to the transfer procedure
func WithFastTransferTimeout(d time.Duration) ServiceOption {
	return func(c *serviceConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithClock replaces the time source
func WithClock(now func() time.Time) ServiceOption {
	return func(c *serviceConfig) {
		c.now = now
	}
}
