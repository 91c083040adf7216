package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/SscSPs/banking_ledger/internal/apperrors"
)

// TopicJournalEntryPosted is published once per committed posting.
const TopicJournalEntryPosted = "ledger.journal_entry.posted"

// MaxOutboxPayloadBytes caps the serialized event size.
const MaxOutboxPayloadBytes = 1 << 20

var (
	ErrOutboxTopicRequired  = errors.New("outbox topic is required")
	ErrOutboxPayloadInvalid = errors.New("outbox payload must be valid JSON")
	ErrOutboxPayloadTooBig  = errors.New("outbox payload exceeds 1 MiB")
)

// OutboxMessage is an event written in the same transaction as the state change it describes.
type OutboxMessage struct {
	ID         EntityID        `json:"id"`
	Topic      string          `json:"topic"`
	Key        string          `json:"key"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurredAt"`
	Sent       bool            `json:"sent"`
	SentAt     *time.Time      `json:"sentAt,omitempty"`
	Attempts   int             `json:"attempts"`
}

func NewOutboxMessage(topic, key string, payload []byte, occurredAt time.Time) (*OutboxMessage, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, apperrors.Wrap(apperrors.KindValidation, "OUTBOX_TOPIC_REQUIRED", ErrOutboxTopicRequired, "outbox topic is required")
	}
	if len(payload) == 0 || !json.Valid(payload) {
		return nil, apperrors.Wrap(apperrors.KindValidation, "OUTBOX_PAYLOAD_INVALID", ErrOutboxPayloadInvalid, "outbox payload must be non-empty JSON")
	}
	if len(payload) > MaxOutboxPayloadBytes {
		return nil, apperrors.Wrap(apperrors.KindValidation, "OUTBOX_PAYLOAD_TOO_LARGE", ErrOutboxPayloadTooBig, "outbox payload is too large")
	}
	return &OutboxMessage{
		ID:         GenerateEntityID(),
		Topic:      topic,
		Key:        key,
		Payload:    append(json.RawMessage(nil), payload...),
		OccurredAt: occurredAt.UTC(),
	}, nil
}

// JournalEntryPostedEvent is the payload of TopicJournalEntryPosted.
type JournalEntryPostedEvent struct {
	EntryID   EntityID               `json:"entryId"`
	TenantID  TenantID               `json:"tenantId"`
	Reference string                 `json:"reference"`
	Currency  Currency               `json:"currency"`
	Total     string                 `json:"total"`
	PostedAt  time.Time              `json:"postedAt"`
	Lines     []JournalEntryLineView `json:"lines"`
}

type JournalEntryLineView struct {
	AccountID AccountID `json:"accountId"`
	Type      LineType  `json:"type"`
	Amount    string    `json:"amount"`
}

// NewJournalEntryPostedMessage builds the outbox row for a posted entry, keyed by entry id.
func NewJournalEntryPostedMessage(entry *JournalEntry) (*OutboxMessage, error) {
	if entry.Status != Posted || entry.PostedAt == nil {
		return nil, apperrors.Validation("ENTRY_NOT_POSTED", "only posted entries produce events")
	}
	event := JournalEntryPostedEvent{
		EntryID:   entry.ID,
		TenantID:  entry.TenantID,
		Reference: entry.Reference,
		Currency:  entry.Currency(),
		Total:     entry.TotalDebits().Amount().StringFixed(entry.Currency().Scale()),
		PostedAt:  entry.PostedAt.UTC(),
	}
	for _, l := range entry.lines {
		event.Lines = append(event.Lines, JournalEntryLineView{
			AccountID: l.AccountID,
			Type:      l.Type,
			Amount:    l.Amount.Amount().StringFixed(l.Amount.Scale()),
		})
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, apperrors.Internal("marshal journal entry event", err)
	}
	return NewOutboxMessage(TopicJournalEntryPosted, string(entry.ID), payload, *entry.PostedAt)
}
