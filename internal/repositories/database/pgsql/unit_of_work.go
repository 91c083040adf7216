package pgsql

import (
	"context"
	"database/sql"
	"errors"

	portsrepo "github.com/SscSPs/banking_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/banking_ledger/internal/core/uow"
)

// UnitOfWork runs actions inside serializable transactions with bounded conflict retry.
type UnitOfWork struct {
	db     *sql.DB
	policy uow.Policy
}

func NewUnitOfWork(db *sql.DB, policy uow.Policy) *UnitOfWork {
	return &UnitOfWork{db: db, policy: policy}
}

var _ portsrepo.UnitOfWork = (*UnitOfWork)(nil)

// ExecuteInTransaction runs action against stores bound to one transaction and commits.
// maxAttempts <= 0 falls back to the configured policy.
func (u *UnitOfWork) ExecuteInTransaction(ctx context.Context, maxAttempts int, action func(ctx context.Context, stores portsrepo.TxStores) error) error {
	policy := u.policy
	if maxAttempts > 0 {
		policy.MaxAttempts = maxAttempts
	}
	return uow.Run(ctx, policy, func(ctx context.Context, _ int) error {
		return u.runOnce(ctx, action)
	})
}

func (u *UnitOfWork) runOnce(ctx context.Context, action func(ctx context.Context, stores portsrepo.TxStores) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx, err := u.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return classifyError("begin transaction", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, rbErr)
			}
		}
	}()

	if err = action(ctx, TxStoresFor(tx)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return classifyError("commit transaction", err)
	}
	return nil
}

// TxStoresFor binds every transactional store to db.
func TxStoresFor(db DBTX) portsrepo.TxStores {
	return portsrepo.TxStores{
		Accounts:    NewAccountRepository(db),
		Journals:    NewJournalRepository(db),
		Idempotency: NewIdempotencyRepository(db),
		Outbox:      NewOutboxRepository(db),
	}
}
