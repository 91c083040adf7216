package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/banking_ledger/internal/apperrors"
)

var (
	ErrInactiveAccount     = errors.New("account is inactive")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAccountType  = errors.New("invalid account type")
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

func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, Income, Expense:
		return true
	}
	return false
}

// IsDebitNormal reports whether a debit increases the balance of this account type.
func (t AccountType) IsDebitNormal() bool {
	return t == Asset || t == Expense
}

// Account is a balance-carrying ledger account. Its balance only changes
// through Debit and Credit, or RestoreBalance when loaded from storage.
type Account struct {
	ID             AccountID   `json:"accountId"`
	TenantID       TenantID    `json:"tenantId"`
	AccountNumber  string      `json:"accountNumber"`
	Name           string      `json:"name"`
	Type           AccountType `json:"type"`
	Currency       Currency    `json:"currency"`
	IsActive       bool        `json:"isActive"`
	AllowOverdraft bool        `json:"allowOverdraft"`
	Version        int64       `json:"version"`
	AuditFields

	balance       Money
	loadedVersion int64
}

// NewAccount creates an active account with a zero balance.
func NewAccount(id AccountID, tenant TenantID, number, name string, typ AccountType, currency Currency, now time.Time) (*Account, error) {
	if !typ.IsValid() {
		return nil, apperrors.Wrap(apperrors.KindValidation, "INVALID_ACCOUNT_TYPE", ErrInvalidAccountType, fmt.Sprintf("unknown account type %q", typ))
	}
	if !currency.IsSupported() {
		return nil, apperrors.Validation("UNSUPPORTED_CURRENCY", "unsupported currency code '"+string(currency)+"'")
	}
	return &Account{
		ID:            id,
		TenantID:      tenant,
		AccountNumber: number,
		Name:          name,
		Type:          typ,
		Currency:      currency,
		IsActive:      true,
		AuditFields:   AuditFields{CreatedAt: now, UpdatedAt: now},
		balance:       Zero(currency),
	}, nil
}

// Balance returns the current balance in the account currency.
func (a *Account) Balance() Money {
	if a.balance.Currency() == "" {
		return Zero(a.Currency)
	}
	return a.balance
}

// RestoreBalance sets the balance when rehydrating from storage and records
// the current Version as the persisted one. It does not bump Version.
func (a *Account) RestoreBalance(m Money) error {
	if m.Currency() != a.Currency {
		return currencyMismatch(a.Currency, m.Currency())
	}
	a.balance = m
	a.loadedVersion = a.Version
	return nil
}

// LoadedVersion is the Version the account had when it was read from storage.
func (a *Account) LoadedVersion() int64 {
	return a.loadedVersion
}

// IsDirty reports whether the account was mutated since it was loaded.
func (a *Account) IsDirty() bool {
	return a.Version != a.loadedVersion
}

// Debit applies a debit line to the account and returns the amount applied.
func (a *Account) Debit(amount Money) (Money, error) {
	return a.apply(Debit, amount)
}

// Credit applies a credit line to the account and returns the amount applied.
func (a *Account) Credit(amount Money) (Money, error) {
	return a.apply(Credit, amount)
}

// DeltaFor returns the signed change a line of lineType and amount makes to this account's balance.
func (a *Account) DeltaFor(lineType LineType, amount Money) Money {
	increases := (lineType == Debit) == a.Type.IsDebitNormal()
	if increases {
		return amount
	}
	return amount.Neg()
}

func (a *Account) apply(lineType LineType, amount Money) (Money, error) {
	if !amount.IsPositive() {
		return Money{}, apperrors.Wrap(apperrors.KindValidation, "NON_POSITIVE_AMOUNT", ErrNonPositiveAmount,
			fmt.Sprintf("amount %s must be positive", amount))
	}
	if err := a.ApplyNet(a.DeltaFor(lineType, amount)); err != nil {
		return Money{}, err
	}
	return amount, nil
}

// ApplyNet moves the balance by the signed delta of all of an entry's lines on
// this account. The overdraft floor is checked against the final balance only.
func (a *Account) ApplyNet(delta Money) error {
	if !a.IsActive {
		return apperrors.Wrap(apperrors.KindDomainConflict, "ACCOUNT_INACTIVE", ErrInactiveAccount,
			fmt.Sprintf("account %s is inactive", a.ID))
	}
	if delta.Currency() != a.Currency {
		return currencyMismatch(a.Currency, delta.Currency())
	}

	next, err := a.Balance().Add(delta)
	if err != nil {
		return err
	}
	if next.IsNegative() && !a.AllowOverdraft {
		return apperrors.Wrap(apperrors.KindDomainConflict, "INSUFFICIENT_FUNDS", ErrInsufficientBalance,
			fmt.Sprintf("account %s has insufficient balance for %s", a.ID, delta.Neg()))
	}

	a.balance = next
	a.Version++
	return nil
}
