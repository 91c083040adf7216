package services

import (
	"context"

	"github.com/SscSPs/banking_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LineAmount is one side of a posting request, still unvalidated.
type LineAmount struct {
	AccountID string
	Amount    decimal.Decimal
	Currency  string
}

// PostJournalEntryCommand requests a balanced multi-line posting.
type PostJournalEntryCommand struct {
	TenantID       string
	Reference      string
	Narrative      string
	Debits         []LineAmount
	Credits        []LineAmount
	IdempotencyKey string
}

// PostJournalEntryResult carries the posted entry, or the replayed entry id for a duplicate.
type PostJournalEntryResult struct {
	EntryID   *domain.EntityID
	Entry     *domain.JournalEntry
	Duplicate bool
}

// FastTransferCommand requests a single-call transfer between two accounts.
type FastTransferCommand struct {
	IdempotencyKey       string
	TenantID             string
	SourceAccountID      string
	DestinationAccountID string
	AmountMinor          int64
	Currency             string
	Narration            string
}

// FastTransferResult is nil-entry with Duplicate set when the key was already used.
type FastTransferResult struct {
	EntryID   *string
	Duplicate bool
}

// BalanceSource names where a balance read was served from.
type BalanceSource string

const (
	SourceCache    BalanceSource = "cache"
	SourceDatabase BalanceSource = "database"
)

type BalanceView struct {
	AccountID domain.AccountID
	Balance   domain.Money
	Source    BalanceSource
}

// EntryPage is one page of an account statement.
type EntryPage struct {
	Entries       []*domain.JournalEntry
	NextPageToken string
}

// OpenAccountCommand creates an account with a zero balance.
type OpenAccountCommand struct {
	TenantID       string
	AccountID      string
	AccountNumber  string
	Name           string
	Type           string
	Currency       string
	AllowOverdraft bool
}

// AccountSvc manages the account lifecycle. Balances only move through postings.
type AccountSvc interface {
	OpenAccount(ctx context.Context, cmd OpenAccountCommand) (*domain.Account, error)
}

// JournalPosterSvc posts balanced journal entries.
type JournalPosterSvc interface {
	Handle(ctx context.Context, cmd PostJournalEntryCommand) (*PostJournalEntryResult, error)
}

// FastTransferSvc executes the store-side transfer procedure.
type FastTransferSvc interface {
	Execute(ctx context.Context, cmd FastTransferCommand) (FastTransferResult, error)
}

// LedgerQuerySvc serves read-side queries.
type LedgerQuerySvc interface {
	GetBalance(ctx context.Context, tenantID, accountID string) (*BalanceView, error)
	GetJournalEntry(ctx context.Context, tenantID, entryID string) (*domain.JournalEntry, error)
	ListAccountEntries(ctx context.Context, tenantID, accountID string, limit int, pageToken string) (*EntryPage, error)
}

// LedgerSvcFacade combines all ledger service interfaces.
type LedgerSvcFacade interface {
	JournalPosterSvc
	FastTransferSvc
	LedgerQuerySvc
}
