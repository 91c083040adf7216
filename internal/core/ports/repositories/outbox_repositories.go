package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/banking_ledger/internal/core/domain"
)

// OutboxWriter appends events in the same transaction as the state change.
type OutboxWriter interface {
	Append(ctx context.Context, msg *domain.OutboxMessage) error
}

// OutboxReader is the dispatcher side of the outbox. Delivery itself lives outside this service.
type OutboxReader interface {
	// ListUnsent returns up to limit unsent messages, oldest first.
	ListUnsent(ctx context.Context, limit int) ([]domain.OutboxMessage, error)

	// MarkSent flags a message as delivered.
	MarkSent(ctx context.Context, id domain.EntityID, at time.Time) error
}
