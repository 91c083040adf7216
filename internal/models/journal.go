package models

import (
	"database/sql"
	"time"
)

// JournalStatus indicates the state of a journal entry.
type JournalStatus string

const (
	Draft  JournalStatus = "DRAFT"
	Posted JournalStatus = "POSTED"
)

// JournalEntry is a row of the journal_entries table.
type JournalEntry struct {
	EntryID      string        `db:"entry_id"`
	TenantID     string        `db:"tenant_id"`
	Reference    string        `db:"reference"`
	Description  string        `db:"description"`
	CurrencyCode string        `db:"currency_code"`
	EntryDate    time.Time     `db:"entry_date"`
	Status       JournalStatus `db:"status"`
	PostedAt     sql.NullTime  `db:"posted_at"`
	AuditFields
}
