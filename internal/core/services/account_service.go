package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/SscSPs/banking_ledger/internal/apperrors"
	"github.com/SscSPs/banking_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/banking_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/banking_ledger/internal/core/ports/services"
)

type accountService struct {
	BaseService
	accountRepo portsrepo.AccountWriter
	cfg         serviceConfig
}

// NewAccountService creates the account lifecycle service
func NewAccountService(repo portsrepo.AccountWriter, options ...ServiceOption) portssvc.AccountSvc {
	cfg := newServiceConfig(options)
	return &accountService{
		BaseService: BaseService{Logger: cfg.logger},
		accountRepo: repo,
		cfg:         cfg,
	}
}

var _ portssvc.AccountSvc = (*accountService)(nil)

func (s *accountService) OpenAccount(ctx context.Context, cmd portssvc.OpenAccountCommand) (*domain.Account, error) {
	tenantID, err := domain.NewTenantID(cmd.TenantID)
	if err != nil {
		return nil, err
	}
	accountID, err := domain.NewAccountID(cmd.AccountID)
	if err != nil {
		return nil, err
	}
	currency, err := domain.ParseCurrency(cmd.Currency)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return nil, apperrors.Validation("ACCOUNT_NAME_REQUIRED", "account name is required")
	}
	number := strings.TrimSpace(cmd.AccountNumber)
	if number == "" {
		number = accountID.String()
	}

	account, err := domain.NewAccount(accountID, tenantID, number, name,
		domain.AccountType(strings.ToUpper(strings.TrimSpace(cmd.Type))), currency, s.cfg.now())
	if err != nil {
		return nil, err
	}
	account.AllowOverdraft = cmd.AllowOverdraft

	if err := s.accountRepo.CreateAccount(ctx, account); err != nil {
		s.LogError(ctx, err, "Failed to create account",
			slog.String("tenant_id", tenantID.String()),
			slog.String("account_id", accountID.String()))
		return nil, err
	}

	s.LogInfo(ctx, "Account opened",
		slog.String("tenant_id", tenantID.String()),
		slog.String("account_id", accountID.String()),
		slog.String("type", string(account.Type)))
	return account, nil
}
