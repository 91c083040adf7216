package services_test

import (
	"context"
	"time"

	"github.com/SscSPs/banking_ledger/internal/apperrors"
	"github.com/SscSPs/banking_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/banking_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/banking_ledger/internal/core/uow"
	"github.com/stretchr/testify/mock"
)

// --- Mock AccountStore ---
type MockAccountStore struct {
	mock.Mock
}

var _ portsrepo.AccountStore = (*MockAccountStore)(nil)

// GetBatch accepts either a fixed map or a func returning a fresh map per call,
// so retried attempts see unmutated accounts.
func (m *MockAccountStore) GetBatch(ctx context.Context, tenantID domain.TenantID, ids []domain.AccountID) (map[domain.AccountID]*domain.Account, error) {
	args := m.Called(ctx, tenantID, ids)
	if fn, ok := args.Get(0).(func() map[domain.AccountID]*domain.Account); ok {
		return fn(), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.AccountID]*domain.Account), args.Error(1)
}

func (m *MockAccountStore) SaveBatch(ctx context.Context, accounts []*domain.Account) error {
	args := m.Called(ctx, accounts)
	return args.Error(0)
}

// --- Mock AccountRepository ---
type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, tenantID domain.TenantID, accountID domain.AccountID) (*domain.Account, error) {
	args := m.Called(ctx, tenantID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

// --- Mock JournalStore / JournalReader ---
type MockJournalRepository struct {
	mock.Mock
}

var (
	_ portsrepo.JournalStore  = (*MockJournalRepository)(nil)
	_ portsrepo.JournalReader = (*MockJournalRepository)(nil)
)

func (m *MockJournalRepository) Save(ctx context.Context, entry *domain.JournalEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockJournalRepository) FindByID(ctx context.Context, tenantID domain.TenantID, id domain.EntityID) (*domain.JournalEntry, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) ListByAccount(ctx context.Context, tenantID domain.TenantID, accountID domain.AccountID, limit int, after *portsrepo.EntryCursor) ([]*domain.JournalEntry, error) {
	args := m.Called(ctx, tenantID, accountID, limit, after)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.JournalEntry), args.Error(1)
}

// --- Mock IdempotencyStore ---
type MockIdempotencyStore struct {
	mock.Mock
}

var _ portsrepo.IdempotencyStore = (*MockIdempotencyStore)(nil)

func (m *MockIdempotencyStore) CheckAndMark(ctx context.Context, tenantID domain.TenantID, key domain.IdempotencyKey, seenAt time.Time) (bool, error) {
	args := m.Called(ctx, tenantID, key, seenAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Record(ctx context.Context, tenantID domain.TenantID, key domain.IdempotencyKey, entryID domain.EntityID) error {
	args := m.Called(ctx, tenantID, key, entryID)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Lookup(ctx context.Context, tenantID domain.TenantID, key domain.IdempotencyKey) (*domain.IdempotencyRecord, error) {
	args := m.Called(ctx, tenantID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IdempotencyRecord), args.Error(1)
}

// --- Mock OutboxWriter ---
type MockOutboxWriter struct {
	mock.Mock
}

var _ portsrepo.OutboxWriter = (*MockOutboxWriter)(nil)

func (m *MockOutboxWriter) Append(ctx context.Context, msg *domain.OutboxMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// --- Mock BalanceCache ---
type MockBalanceCache struct {
	mock.Mock
}

var _ portsrepo.BalanceCache = (*MockBalanceCache)(nil)

func (m *MockBalanceCache) Get(ctx context.Context, tenantID domain.TenantID, accountID domain.AccountID) (*portsrepo.CachedBalance, error) {
	args := m.Called(ctx, tenantID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portsrepo.CachedBalance), args.Error(1)
}

func (m *MockBalanceCache) Set(ctx context.Context, tenantID domain.TenantID, balance portsrepo.CachedBalance) error {
	args := m.Called(ctx, tenantID, balance)
	return args.Error(0)
}

func (m *MockBalanceCache) Invalidate(ctx context.Context, tenantID domain.TenantID, accountIDs ...domain.AccountID) error {
	args := m.Called(ctx, tenantID, accountIDs)
	return args.Error(0)
}

// --- Mock FastTransferProcedure ---
type MockFastTransferProcedure struct {
	mock.Mock
}

var _ portsrepo.FastTransferProcedure = (*MockFastTransferProcedure)(nil)

func (m *MockFastTransferProcedure) ExecuteTransfer(ctx context.Context, params portsrepo.FastTransferParams) (*domain.EntityID, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EntityID), args.Error(1)
}

// fakeUnitOfWork runs the action against fixed stores and fails the first
// commitConflicts commits with a serialization conflict.
type fakeUnitOfWork struct {
	stores          portsrepo.TxStores
	commitConflicts int
	attempts        int
	commits         int
	requestedMax    int
}

var _ portsrepo.UnitOfWork = (*fakeUnitOfWork)(nil)

func (f *fakeUnitOfWork) ExecuteInTransaction(ctx context.Context, maxAttempts int, action func(ctx context.Context, stores portsrepo.TxStores) error) error {
	f.requestedMax = maxAttempts
	policy := uow.Policy{MaxAttempts: maxAttempts, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
	return uow.Run(ctx, policy, func(ctx context.Context, attempt int) error {
		f.attempts++
		if err := action(ctx, f.stores); err != nil {
			return err
		}
		if f.commitConflicts > 0 {
			f.commitConflicts--
			return apperrors.Conflict("could not serialize access", nil)
		}
		f.commits++
		return nil
	})
}
