package mapping

import (
	"fmt"

	"github.com/SscSPs/banking_ledger/internal/core/domain"
	"github.com/SscSPs/banking_ledger/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d *domain.Account) models.Account {
	return models.Account{
		TenantID:       string(d.TenantID),
		AccountID:      string(d.ID),
		AccountNumber:  d.AccountNumber,
		Name:           d.Name,
		AccountType:    models.AccountType(d.Type),
		CurrencyCode:   string(d.Currency),
		Balance:        d.Balance().Amount(),
		IsActive:       d.IsActive,
		AllowOverdraft: d.AllowOverdraft,
		Version:        d.Version,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account, restoring its balance.
func ToDomainAccount(m models.Account) (*domain.Account, error) {
	currency, err := domain.ParseCurrency(m.CurrencyCode)
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", m.AccountID, err)
	}
	acc := &domain.Account{
		ID:             domain.AccountID(m.AccountID),
		TenantID:       domain.TenantID(m.TenantID),
		AccountNumber:  m.AccountNumber,
		Name:           m.Name,
		Type:           domain.AccountType(m.AccountType),
		Currency:       currency,
		IsActive:       m.IsActive,
		AllowOverdraft: m.AllowOverdraft,
		Version:        m.Version,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
	balance, err := domain.NewMoney(m.Balance, currency)
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", m.AccountID, err)
	}
	if err := acc.RestoreBalance(balance); err != nil {
		return nil, err
	}
	return acc, nil
}
