package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/banking_ledger/internal/core/domain"
)

// CachedBalance is the cached view of one account balance.
type CachedBalance struct {
	AccountID   domain.AccountID `json:"accountId"`
	AmountMinor int64            `json:"amountMinor"`
	Currency    domain.Currency  `json:"currency"`
	Version     int64            `json:"version"`
	CachedAt    time.Time        `json:"cachedAt"`
}

// BalanceCache is a read-through cache of account balances.
// A miss is reported as (nil, nil).
type BalanceCache interface {
	Get(ctx context.Context, tenantID domain.TenantID, accountID domain.AccountID) (*CachedBalance, error)
	Set(ctx context.Context, tenantID domain.TenantID, balance CachedBalance) error
	Invalidate(ctx context.Context, tenantID domain.TenantID, accountIDs ...domain.AccountID) error
}
