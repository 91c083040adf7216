package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/banking_ledger/internal/apperrors"
)

var (
	ErrAlreadyPosted   = errors.New("journal entry is already posted")
	ErrTooFewLines     = errors.New("journal entry needs at least one debit and one credit")
	ErrUnbalanced      = errors.New("debits do not equal credits")
	ErrInvalidLineType = errors.New("invalid line type")
)

// JournalStatus indicates the state of a journal entry.
type JournalStatus string

const (
	Draft  JournalStatus = "DRAFT"
	Posted JournalStatus = "POSTED"
)

// JournalEntry is a set of lines that must balance before it is posted.
type JournalEntry struct {
	ID          EntityID      `json:"id"`
	TenantID    TenantID      `json:"tenantId"`
	Reference   string        `json:"reference"`
	Description string        `json:"description"`
	EntryDate   time.Time     `json:"entryDate"`
	Status      JournalStatus `json:"status"`
	PostedAt    *time.Time    `json:"postedAt,omitempty"`
	AuditFields

	lines []JournalEntryLine
}

// NewJournalEntry creates a Draft entry with no lines.
func NewJournalEntry(id EntityID, tenant TenantID, reference, description string, entryDate time.Time) *JournalEntry {
	return &JournalEntry{
		ID:          id,
		TenantID:    tenant,
		Reference:   reference,
		Description: description,
		EntryDate:   entryDate,
		Status:      Draft,
		AuditFields: AuditFields{CreatedAt: entryDate, UpdatedAt: entryDate},
	}
}

// RestoreJournalEntry rebuilds a persisted entry, lines included, without re-running Post.
func RestoreJournalEntry(e JournalEntry, lines []JournalEntryLine) *JournalEntry {
	e.lines = append([]JournalEntryLine(nil), lines...)
	return &e
}

// AddLine appends a line to a Draft entry.
func (e *JournalEntry) AddLine(accountID AccountID, lineType LineType, amount Money) error {
	if e.Status == Posted {
		return apperrors.Wrap(apperrors.KindDomainConflict, "ALREADY_POSTED", ErrAlreadyPosted,
			fmt.Sprintf("journal entry %s is already posted", e.ID))
	}
	if !lineType.IsValid() {
		return apperrors.Wrap(apperrors.KindValidation, "INVALID_LINE_TYPE", ErrInvalidLineType,
			fmt.Sprintf("unknown line type %q", lineType))
	}
	if !amount.IsPositive() {
		return apperrors.Wrap(apperrors.KindValidation, "NON_POSITIVE_AMOUNT", ErrNonPositiveAmount,
			fmt.Sprintf("line amount %s must be positive", amount))
	}
	e.lines = append(e.lines, JournalEntryLine{
		ID:        GenerateEntityID(),
		AccountID: accountID,
		Amount:    amount,
		Type:      lineType,
	})
	return nil
}

// Lines returns a copy of the entry lines.
func (e *JournalEntry) Lines() []JournalEntryLine {
	return append([]JournalEntryLine(nil), e.lines...)
}

// Post validates the entry and moves it to Posted. It never touches storage.
func (e *JournalEntry) Post(now time.Time) error {
	if e.Status == Posted {
		return apperrors.Wrap(apperrors.KindDomainConflict, "ALREADY_POSTED", ErrAlreadyPosted,
			fmt.Sprintf("journal entry %s is already posted", e.ID))
	}

	var hasDebit, hasCredit bool
	for _, l := range e.lines {
		hasDebit = hasDebit || l.Type == Debit
		hasCredit = hasCredit || l.Type == Credit
	}
	if len(e.lines) < 2 || !hasDebit || !hasCredit {
		return apperrors.Wrap(apperrors.KindValidation, "TOO_FEW_LINES", ErrTooFewLines,
			fmt.Sprintf("journal entry %s has %d lines", e.ID, len(e.lines)))
	}

	currency := e.lines[0].Amount.Currency()
	debits, credits := Zero(currency), Zero(currency)
	for _, l := range e.lines {
		if l.Amount.IsZero() {
			return apperrors.Wrap(apperrors.KindValidation, "NON_POSITIVE_AMOUNT", ErrNonPositiveAmount, "journal line amount is zero")
		}
		var err error
		if l.Type == Debit {
			debits, err = debits.Add(l.Amount)
		} else {
			credits, err = credits.Add(l.Amount)
		}
		if err != nil {
			return err
		}
	}
	if !debits.Equal(credits) {
		return apperrors.Wrap(apperrors.KindValidation, "UNBALANCED_ENTRY", ErrUnbalanced,
			fmt.Sprintf("debits %s do not equal credits %s", debits, credits))
	}

	posted := now
	e.Status = Posted
	e.PostedAt = &posted
	e.UpdatedAt = now
	return nil
}

// TotalDebits sums the debit lines. It returns zero in the entry currency when there are none.
func (e *JournalEntry) TotalDebits() Money {
	total := Zero(e.Currency())
	for _, l := range e.lines {
		if l.Type != Debit {
			continue
		}
		if sum, err := total.Add(l.Amount); err == nil {
			total = sum
		}
	}
	return total
}

// Currency is the currency of the first line, or empty for an entry with no lines.
func (e *JournalEntry) Currency() Currency {
	if len(e.lines) == 0 {
		return ""
	}
	return e.lines[0].Amount.Currency()
}

// AccountIDs returns the distinct accounts the entry touches, in line order.
func (e *JournalEntry) AccountIDs() []AccountID {
	seen := make(map[AccountID]struct{}, len(e.lines))
	out := make([]AccountID, 0, len(e.lines))
	for _, l := range e.lines {
		if _, ok := seen[l.AccountID]; ok {
			continue
		}
		seen[l.AccountID] = struct{}{}
		out = append(out, l.AccountID)
	}
	return out
}
