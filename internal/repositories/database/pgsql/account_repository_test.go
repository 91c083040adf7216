package pgsql

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/SscSPs/banking_ledger/internal/apperrors"
	"github.com/SscSPs/banking_ledger/internal/core/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var accountCols = []string{"tenant_id", "account_id", "account_number", "name", "account_type", "currency_code",
	"balance", "is_active", "allow_overdraft", "version", "created_at", "updated_at"}

func TestGetBatch_LocksInIDOrder(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAccountRepository(db)
	now := time.Now()

	rows := sqlmock.NewRows(accountCols).
		AddRow("acme", "A", "001", "Alice", "LIABILITY", "NGN", "100.00000000", true, false, int64(3), now, now).
		AddRow("acme", "B", "002", "Bob", "LIABILITY", "NGN", "0", true, false, int64(1), now, now)

	mock.ExpectQuery("FROM accounts WHERE tenant_id = \\$1 AND account_id = ANY\\(\\$2\\) ORDER BY account_id FOR UPDATE").
		WithArgs("acme", stringsArg{"A", "B"}).
		WillReturnRows(rows)

	got, err := repo.GetBatch(context.Background(), "acme", []domain.AccountID{"B", "A"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(10000), got["A"].Balance().MinorUnits())
	assert.Equal(t, int64(3), got["A"].LoadedVersion())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBatch_Empty(t *testing.T) {
	db, mock := newMock(t)
	got, err := NewAccountRepository(db).GetBatch(context.Background(), "acme", nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBatch_SerializationFailure(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("FROM accounts").WillReturnError(&pgconn.PgError{Code: "40001", Message: "could not serialize access"})

	_, err := NewAccountRepository(db).GetBatch(context.Background(), "acme", []domain.AccountID{"A"})
	assert.True(t, apperrors.IsRetriable(err))
}

func newLoadedWallet(t *testing.T, id string, minor int64, version int64) *domain.Account {
	t.Helper()
	acc := &domain.Account{ID: domain.AccountID(id), TenantID: "acme", Type: domain.Liability, Currency: domain.NGN, IsActive: true, Version: version}
	bal, err := domain.NewMoneyFromMinor(minor, domain.NGN)
	require.NoError(t, err)
	require.NoError(t, acc.RestoreBalance(bal))
	return acc
}

func TestSaveBatch_WritesOnlyDirtyAccountsWithVersionGuard(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAccountRepository(db)

	a := newLoadedWallet(t, "A", 10000, 3)
	b := newLoadedWallet(t, "B", 0, 1)
	untouched := newLoadedWallet(t, "C", 5, 9)
	amt, _ := domain.NewMoneyFromMinor(2500, domain.NGN)
	_, err := a.Debit(amt)
	require.NoError(t, err)
	_, err = b.Credit(amt)
	require.NoError(t, err)

	mock.ExpectExec("UPDATE accounts").
		WithArgs(sqlmock.AnyArg(), int64(4), sqlmock.AnyArg(), "acme", "A", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE accounts").
		WithArgs(sqlmock.AnyArg(), int64(2), sqlmock.AnyArg(), "acme", "B", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SaveBatch(context.Background(), []*domain.Account{b, untouched, a}))
	assert.False(t, a.IsDirty())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveBatch_StaleVersionIsConflict(t *testing.T) {
	db, mock := newMock(t)
	a := newLoadedWallet(t, "A", 10000, 3)
	amt, _ := domain.NewMoneyFromMinor(1, domain.NGN)
	_, err := a.Debit(amt)
	require.NoError(t, err)

	mock.ExpectExec("UPDATE accounts").WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewAccountRepository(db).SaveBatch(context.Background(), []*domain.Account{a})
	assert.Equal(t, apperrors.KindConcurrencyConflict, apperrors.KindOf(err))
}

func TestFindAccountByID_NotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("FROM accounts").WithArgs("acme", "missing").WillReturnRows(sqlmock.NewRows(accountCols))

	_, err := NewAccountRepository(db).FindAccountByID(context.Background(), "acme", "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCreateAccount_Duplicate(t *testing.T) {
	db, mock := newMock(t)
	acc, err := domain.NewAccount("A", "acme", "001", "Alice", domain.Liability, domain.NGN, time.Now())
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO accounts").WillReturnError(&pgconn.PgError{Code: "23505"})

	err = NewAccountRepository(db).CreateAccount(context.Background(), acc)
	assert.Equal(t, apperrors.KindDomainConflict, apperrors.KindOf(err))
}
