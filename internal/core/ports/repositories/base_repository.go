package repositories

import (
	"context"
)

// TxStores are the stores bound to one open transaction.
type TxStores struct {
	Accounts    AccountStore
	Journals    JournalStore
	Idempotency IdempotencyStore
	Outbox      OutboxWriter
}

// UnitOfWork runs action in a serializable transaction, committing when it returns nil.
// Serialization failures are retried up to maxAttempts times in total.
type UnitOfWork interface {
	ExecuteInTransaction(ctx context.Context, maxAttempts int, action func(ctx context.Context, stores TxStores) error) error
}
