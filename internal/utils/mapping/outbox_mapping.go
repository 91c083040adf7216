package mapping

import (
	"database/sql"

	"github.com/SscSPs/banking_ledger/internal/core/domain"
	"github.com/SscSPs/banking_ledger/internal/models"
)

// ToModelOutboxMessage converts a domain OutboxMessage to a model OutboxMessage
func ToModelOutboxMessage(d *domain.OutboxMessage) models.OutboxMessage {
	m := models.OutboxMessage{
		MessageID:  string(d.ID),
		Topic:      d.Topic,
		MessageKey: d.Key,
		Payload:    d.Payload,
		OccurredAt: d.OccurredAt,
		Sent:       d.Sent,
		Attempts:   d.Attempts,
	}
	if d.SentAt != nil {
		m.SentAt = sql.NullTime{Time: *d.SentAt, Valid: true}
	}
	return m
}

// ToDomainOutboxMessage converts a model OutboxMessage to a domain OutboxMessage
func ToDomainOutboxMessage(m models.OutboxMessage) domain.OutboxMessage {
	d := domain.OutboxMessage{
		ID:         domain.EntityID(m.MessageID),
		Topic:      m.Topic,
		Key:        m.MessageKey,
		Payload:    m.Payload,
		OccurredAt: m.OccurredAt,
		Sent:       m.Sent,
		Attempts:   m.Attempts,
	}
	if m.SentAt.Valid {
		t := m.SentAt.Time
		d.SentAt = &t
	}
	return d
}

// ToDomainIdempotencyRecord converts a model IdempotencyKey to a domain IdempotencyRecord
func ToDomainIdempotencyRecord(m models.IdempotencyKey) domain.IdempotencyRecord {
	rec := domain.IdempotencyRecord{
		TenantID: domain.TenantID(m.TenantID),
		Key:      domain.IdempotencyKey(m.IdemKey),
		SeenAt:   m.SeenAt,
	}
	if m.EntryID.Valid {
		id := domain.EntityID(m.EntryID.String)
		rec.EntryID = &id
	}
	return rec
}
