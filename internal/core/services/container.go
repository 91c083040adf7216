package services

import (
	portsrepo "github.com/SscSPs/banking_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/banking_ledger/internal/core/ports/services"
)

// NewContainer creates the service container from the repository provider.
// The provider's balance cache, when set, is shared by every service.
func NewContainer(repos portsrepo.RepositoryProvider, options ...ServiceOption) *portssvc.ServiceContainer {
	if repos.BalanceCache != nil {
		options = append([]ServiceOption{WithBalanceCache(repos.BalanceCache)}, options...)
	}

	return &portssvc.ServiceContainer{
		Accounts:     NewAccountService(repos.AccountRepo, options...),
		Poster:       NewPostJournalEntryHandler(repos.UnitOfWork, options...),
		FastTransfer: NewFastTransferHandler(repos.FastTransfer, options...),
		Query:        NewLedgerQueryService(repos.AccountRepo, repos.JournalRepo, options...),
	}
}

var (
	_ portssvc.AccountSvc       = (*accountService)(nil)
	_ portssvc.JournalPosterSvc = (*postJournalEntryHandler)(nil)
	_ portssvc.FastTransferSvc  = (*fastTransferHandler)(nil)
	_ portssvc.LedgerQuerySvc   = (*ledgerQueryService)(nil)
)
