package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/banking_ledger/internal/core/domain"
)

// IdempotencyStore claims and records idempotency keys inside the caller's transaction.
type IdempotencyStore interface {
	// CheckAndMark claims key for tenant. It returns true when the key was already processed,
	// in which case nothing is written.
	CheckAndMark(ctx context.Context, tenantID domain.TenantID, key domain.IdempotencyKey, seenAt time.Time) (bool, error)

	// Record stores the entry produced under key.
	Record(ctx context.Context, tenantID domain.TenantID, key domain.IdempotencyKey, entryID domain.EntityID) error

	// Lookup returns the stored record, or a NotFound error.
	Lookup(ctx context.Context, tenantID domain.TenantID, key domain.IdempotencyKey) (*domain.IdempotencyRecord, error)
}
