package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/banking_ledger/internal/core/domain"
)

// JournalStore persists posted entries inside the caller's transaction.
type JournalStore interface {
	// Save inserts the entry header and every line.
	Save(ctx context.Context, entry *domain.JournalEntry) error
}

// JournalReader reads committed entries.
type JournalReader interface {
	// FindByID returns the entry with its lines, or a NotFound error.
	FindByID(ctx context.Context, tenantID domain.TenantID, id domain.EntityID) (*domain.JournalEntry, error)
	// ListByAccount returns up to limit posted entries with a line on accountID,
	// newest first, strictly after the cursor when one is given.
	ListByAccount(ctx context.Context, tenantID domain.TenantID, accountID domain.AccountID, limit int, after *EntryCursor) ([]*domain.JournalEntry, error)
}

// EntryCursor is a keyset position in (posted_at DESC, entry_id DESC) order.
type EntryCursor struct {
	PostedAt time.Time
	EntryID  domain.EntityID
}
