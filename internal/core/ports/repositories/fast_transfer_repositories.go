package repositories

import (
	"context"

	"github.com/SscSPs/banking_ledger/internal/core/domain"
)

// FastTransferParams are the validated arguments of the store-side transfer procedure.
type FastTransferParams struct {
	IdempotencyKey domain.IdempotencyKey
	TenantID       domain.TenantID
	SourceID       domain.AccountID
	DestinationID  domain.AccountID
	AmountMinor    int64
	Currency       domain.Currency
	Narration      string
}

// FastTransferProcedure runs a single-call atomic transfer in the store.
type FastTransferProcedure interface {
	// ExecuteTransfer returns the new entry id, or nil when the key was already used.
	ExecuteTransfer(ctx context.Context, params FastTransferParams) (*domain.EntityID, error)
}
