package dto

import (
	"time"

	"github.com/SscSPs/banking_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/banking_ledger/internal/core/ports/services"
)

// OpenAccountRequest defines the data needed to open a new account.
type OpenAccountRequest struct {
	TenantID       string `json:"tenantId"`
	AccountID      string `json:"accountId" binding:"required"`
	AccountNumber  string `json:"accountNumber"`
	Name           string `json:"name" binding:"required"`
	Type           string `json:"type" binding:"required,oneof=ASSET LIABILITY EQUITY INCOME EXPENSE"`
	Currency       string `json:"currency" binding:"required,currency"`
	AllowOverdraft bool   `json:"allowOverdraft"`
}

// ToCommand converts the request to the service command for tenant.
func (r OpenAccountRequest) ToCommand(tenant string) portssvc.OpenAccountCommand {
	return portssvc.OpenAccountCommand{
		TenantID:       tenant,
		AccountID:      r.AccountID,
		AccountNumber:  r.AccountNumber,
		Name:           r.Name,
		Type:           r.Type,
		Currency:       r.Currency,
		AllowOverdraft: r.AllowOverdraft,
	}
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID      string    `json:"accountId"`
	TenantID       string    `json:"tenantId"`
	AccountNumber  string    `json:"accountNumber"`
	Name           string    `json:"name"`
	Type           string    `json:"type"`
	Currency       string    `json:"currency"`
	Balance        string    `json:"balance"`
	IsActive       bool      `json:"isActive"`
	AllowOverdraft bool      `json:"allowOverdraft"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	balance := acc.Balance()
	return AccountResponse{
		AccountID:      acc.ID.String(),
		TenantID:       acc.TenantID.String(),
		AccountNumber:  acc.AccountNumber,
		Name:           acc.Name,
		Type:           string(acc.Type),
		Currency:       acc.Currency.String(),
		Balance:        balance.Amount().StringFixed(balance.Scale()),
		IsActive:       acc.IsActive,
		AllowOverdraft: acc.AllowOverdraft,
		CreatedAt:      acc.CreatedAt,
	}
}

// AccountBalanceResponse defines the data returned for an account balance query.
type AccountBalanceResponse struct {
	AccountID    string `json:"accountId"`
	Balance      string `json:"balance" example:"1500.00"`
	BalanceMinor int64  `json:"balanceMinor"`
	Currency     string `json:"currency"`
	Source       string `json:"source" enums:"cache,database"`
}

// ToAccountBalanceResponse converts a balance view to its response DTO.
func ToAccountBalanceResponse(v *portssvc.BalanceView) AccountBalanceResponse {
	return AccountBalanceResponse{
		AccountID:    v.AccountID.String(),
		Balance:      v.Balance.Amount().StringFixed(v.Balance.Scale()),
		BalanceMinor: v.Balance.MinorUnits(),
		Currency:     v.Balance.Currency().String(),
		Source:       string(v.Source),
	}
}
