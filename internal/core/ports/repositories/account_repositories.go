package repositories

import (
	"context"

	"github.com/SscSPs/banking_ledger/internal/core/domain"
)

// AccountStore is the transactional account port used by the posting handler.
type AccountStore interface {
	// GetBatch loads and locks the given accounts of a tenant. Missing ids (including
	// accounts of another tenant) are simply absent from the returned map.
	GetBatch(ctx context.Context, tenantID domain.TenantID, ids []domain.AccountID) (map[domain.AccountID]*domain.Account, error)

	// SaveBatch persists mutated balances in account id order, guarded by each account's loaded version.
	SaveBatch(ctx context.Context, accounts []*domain.Account) error
}

// AccountReader defines non-transactional account operations.
type AccountReader interface {
	// FindAccountByID retrieves one account of a tenant.
	FindAccountByID(ctx context.Context, tenantID domain.TenantID, accountID domain.AccountID) (*domain.Account, error)
}

// AccountWriter creates accounts. Balance changes never go through it.
type AccountWriter interface {
	CreateAccount(ctx context.Context, account *domain.Account) error
}

// AccountRepositoryFacade combines the non-transactional account interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
