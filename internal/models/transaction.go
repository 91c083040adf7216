package models

import "github.com/shopspring/decimal"

// LineType indicates whether a journal line is a Debit or a Credit.
type LineType string

const (
	Debit  LineType = "DEBIT"
	Credit LineType = "CREDIT"
)

// JournalEntryLine is a row of the journal_entry_lines table.
type JournalEntryLine struct {
	LineID       string          `db:"line_id"`
	EntryID      string          `db:"entry_id"`
	LineNo       int             `db:"line_no"`
	AccountID    string          `db:"account_id"`
	Amount       decimal.Decimal `db:"amount"` // Always positive
	LineType     LineType        `db:"line_type"`
	CurrencyCode string          `db:"currency_code"`
}
