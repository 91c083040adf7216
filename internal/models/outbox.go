package models

import (
	"database/sql"
	"time"
)

// OutboxMessage is a row of the outbox_messages table.
type OutboxMessage struct {
	MessageID  string       `db:"message_id"`
	Topic      string       `db:"topic"`
	MessageKey string       `db:"message_key"`
	Payload    []byte       `db:"payload"` // jsonb
	OccurredAt time.Time    `db:"occurred_at"`
	Sent       bool         `db:"sent"`
	SentAt     sql.NullTime `db:"sent_at"`
	Attempts   int          `db:"attempts"`
}

// IdempotencyKey is a row of the idempotency_keys table.
type IdempotencyKey struct {
	TenantID string         `db:"tenant_id"`
	IdemKey  string         `db:"idem_key"`
	SeenAt   time.Time      `db:"seen_at"`
	EntryID  sql.NullString `db:"entry_id"`
}
