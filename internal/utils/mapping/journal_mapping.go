package mapping

import (
	"database/sql"
	"fmt"

	"github.com/SscSPs/banking_ledger/internal/core/domain"
	"github.com/SscSPs/banking_ledger/internal/models"
)

// ToModelJournalEntry converts a domain JournalEntry to its header and line rows
func ToModelJournalEntry(d *domain.JournalEntry) (models.JournalEntry, []models.JournalEntryLine) {
	header := models.JournalEntry{
		EntryID:      string(d.ID),
		TenantID:     string(d.TenantID),
		Reference:    d.Reference,
		Description:  d.Description,
		CurrencyCode: string(d.Currency()),
		EntryDate:    d.EntryDate,
		Status:       models.JournalStatus(d.Status),
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
	if d.PostedAt != nil {
		header.PostedAt = sql.NullTime{Time: *d.PostedAt, Valid: true}
	}

	lines := d.Lines()
	rows := make([]models.JournalEntryLine, len(lines))
	for i, l := range lines {
		rows[i] = models.JournalEntryLine{
			LineID:       string(l.ID),
			EntryID:      string(d.ID),
			LineNo:       i + 1,
			AccountID:    string(l.AccountID),
			Amount:       l.Amount.Amount(),
			LineType:     models.LineType(l.Type),
			CurrencyCode: string(l.Amount.Currency()),
		}
	}
	return header, rows
}

// ToDomainJournalEntry rebuilds a domain JournalEntry from its rows
func ToDomainJournalEntry(m models.JournalEntry, rows []models.JournalEntryLine) (*domain.JournalEntry, error) {
	lines := make([]domain.JournalEntryLine, len(rows))
	for i, r := range rows {
		currency, err := domain.ParseCurrency(r.CurrencyCode)
		if err != nil {
			return nil, fmt.Errorf("journal line %s: %w", r.LineID, err)
		}
		amount, err := domain.NewMoney(r.Amount, currency)
		if err != nil {
			return nil, fmt.Errorf("journal line %s: %w", r.LineID, err)
		}
		lines[i] = domain.JournalEntryLine{
			ID:        domain.EntityID(r.LineID),
			AccountID: domain.AccountID(r.AccountID),
			Amount:    amount,
			Type:      domain.LineType(r.LineType),
		}
	}

	entry := domain.JournalEntry{
		ID:          domain.EntityID(m.EntryID),
		TenantID:    domain.TenantID(m.TenantID),
		Reference:   m.Reference,
		Description: m.Description,
		EntryDate:   m.EntryDate,
		Status:      domain.JournalStatus(m.Status),
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
	if m.PostedAt.Valid {
		t := m.PostedAt.Time
		entry.PostedAt = &t
	}
	return domain.RestoreJournalEntry(entry, lines), nil
}
