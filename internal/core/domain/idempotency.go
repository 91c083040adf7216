package domain

import (
	"strings"
	"time"

	"github.com/SscSPs/banking_ledger/internal/apperrors"
)

const maxIdempotencyKeyLength = 255

// IdempotencyKey is the client-supplied token that makes a request at-most-once per tenant.
type IdempotencyKey string

func NewIdempotencyKey(raw string) (IdempotencyKey, error) {
	v := strings.TrimSpace(raw)
	if v == "" || len(v) > maxIdempotencyKeyLength {
		return "", apperrors.Validation("INVALID_IDEMPOTENCY_KEY", "idempotency key must be 1-255 characters")
	}
	return IdempotencyKey(v), nil
}

func (k IdempotencyKey) String() string { return string(k) }

// IdempotencyRecord is the stored outcome of a keyed request.
// EntryID stays nil until the request that claimed the key commits.
type IdempotencyRecord struct {
	TenantID TenantID
	Key      IdempotencyKey
	SeenAt   time.Time
	EntryID  *EntityID
}
