package pgsql

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/SscSPs/banking_ledger/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckAndMark(t *testing.T) {
	db, mock := newMock(t)
	repo := NewIdempotencyRepository(db)
	seen := time.Now()

	mock.ExpectExec("INSERT INTO idempotency_keys .* ON CONFLICT \\(tenant_id, idem_key\\) DO NOTHING").
		WithArgs("acme", "k1", seen).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO idempotency_keys").
		WithArgs("acme", "k1", seen).
		WillReturnResult(sqlmock.NewResult(0, 0))

	seenBefore, err := repo.CheckAndMark(context.Background(), "acme", "k1", seen)
	require.NoError(t, err)
	assert.False(t, seenBefore, "first claim of a key is not a replay")

	seenBefore, err = repo.CheckAndMark(context.Background(), "acme", "k1", seen)
	require.NoError(t, err)
	assert.True(t, seenBefore, "second claim of the same key reports already processed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordAndLookup(t *testing.T) {
	db, mock := newMock(t)
	repo := NewIdempotencyRepository(db)

	mock.ExpectExec("UPDATE idempotency_keys").WithArgs("acme", "k1", "je-9").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM idempotency_keys").
		WithArgs("acme", "k1").
		WillReturnRows(sqlmock.NewRows([]string{"tenant_id", "idem_key", "seen_at", "entry_id"}).AddRow("acme", "k1", time.Now(), "je-9"))

	require.NoError(t, repo.Record(context.Background(), "acme", "k1", "je-9"))
	rec, err := repo.Lookup(context.Background(), "acme", "k1")
	require.NoError(t, err)
	require.NotNil(t, rec.EntryID)
	assert.Equal(t, "je-9", rec.EntryID.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLookup_PendingKeyHasNoEntry(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("FROM idempotency_keys").
		WillReturnRows(sqlmock.NewRows([]string{"tenant_id", "idem_key", "seen_at", "entry_id"}).AddRow("acme", "k1", time.Now(), nil))

	rec, err := NewIdempotencyRepository(db).Lookup(context.Background(), "acme", "k1")
	require.NoError(t, err)
	assert.Nil(t, rec.EntryID)
}

func TestRecord_UnclaimedKey(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec("UPDATE idempotency_keys").WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewIdempotencyRepository(db).Record(context.Background(), "acme", "k1", "je-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
