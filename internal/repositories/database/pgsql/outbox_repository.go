package pgsql

import (
	"context"
	"time"

	"github.com/SscSPs/banking_ledger/internal/apperrors"
	"github.com/SscSPs/banking_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/banking_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/banking_ledger/internal/models"
	"github.com/SscSPs/banking_ledger/internal/utils/mapping"
)

const defaultOutboxBatch = 100

type PgOutboxRepository struct {
	BaseRepository
}

func NewOutboxRepository(db DBTX) *PgOutboxRepository {
	return &PgOutboxRepository{BaseRepository: BaseRepository{DB: db}}
}

var (
	_ portsrepo.OutboxWriter = (*PgOutboxRepository)(nil)
	_ portsrepo.OutboxReader = (*PgOutboxRepository)(nil)
)

// Append inserts the message; callers pass a transaction-bound repository.
func (r *PgOutboxRepository) Append(ctx context.Context, msg *domain.OutboxMessage) error {
	m := mapping.ToModelOutboxMessage(msg)
	query := `
		INSERT INTO outbox_messages (message_id, topic, message_key, payload, occurred_at)
		VALUES ($1, $2, $3, $4::jsonb, $5);
	`
	if _, err := r.DB.ExecContext(ctx, query, m.MessageID, m.Topic, m.MessageKey, string(m.Payload), m.OccurredAt); err != nil {
		return classifyError("append outbox message", err)
	}
	return nil
}

// ListUnsent returns the oldest unsent messages first.
func (r *PgOutboxRepository) ListUnsent(ctx context.Context, limit int) ([]domain.OutboxMessage, error) {
	if limit <= 0 {
		limit = defaultOutboxBatch
	}
	query := `
		SELECT message_id, topic, message_key, payload, occurred_at, sent, sent_at, attempts
		FROM outbox_messages
		WHERE sent = false
		ORDER BY occurred_at, message_id
		LIMIT $1;
	`
	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, classifyError("list unsent outbox messages", err)
	}
	defer rows.Close()

	var out []domain.OutboxMessage
	for rows.Next() {
		var m models.OutboxMessage
		if err := rows.Scan(&m.MessageID, &m.Topic, &m.MessageKey, &m.Payload, &m.OccurredAt, &m.Sent, &m.SentAt, &m.Attempts); err != nil {
			return nil, classifyError("scan outbox message", err)
		}
		out = append(out, mapping.ToDomainOutboxMessage(m))
	}
	if err := rows.Err(); err != nil {
		return nil, classifyError("iterate outbox messages", err)
	}
	return out, nil
}

func (r *PgOutboxRepository) MarkSent(ctx context.Context, id domain.EntityID, at time.Time) error {
	query := `
		UPDATE outbox_messages
		SET sent = true, sent_at = $2, attempts = attempts + 1
		WHERE message_id = $1 AND sent = false;
	`
	res, err := r.DB.ExecContext(ctx, query, string(id), at)
	if err != nil {
		return classifyError("mark outbox message sent", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return classifyError("mark outbox message sent", err)
	}
	if affected == 0 {
		return apperrors.NotFound("OUTBOX_MESSAGE_NOT_FOUND", "no unsent outbox message "+string(id))
	}
	return nil
}
