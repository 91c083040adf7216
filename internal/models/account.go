package models

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Income    AccountType = "INCOME"
	Expense   AccountType = "EXPENSE"
)

// Account is a row of the accounts table.
type Account struct {
	TenantID       string          `db:"tenant_id"`
	AccountID      string          `db:"account_id"`
	AccountNumber  string          `db:"account_number"`
	Name           string          `db:"name"`
	AccountType    AccountType     `db:"account_type"`
	CurrencyCode   string          `db:"currency_code"`
	Balance        decimal.Decimal `db:"balance"` // NUMERIC(38,8)
	IsActive       bool            `db:"is_active"`
	AllowOverdraft bool            `db:"allow_overdraft"`
	Version        int64           `db:"version"`
	AuditFields
}
