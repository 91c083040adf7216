package pgsql

import (
	"database/sql"

	portsrepo "github.com/SscSPs/banking_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/banking_ledger/internal/core/uow"
)

// NewRepositoryProvider wires every Postgres-backed port. The balance cache is left for the caller.
func NewRepositoryProvider(db *sql.DB, policy uow.Policy) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		UnitOfWork:   NewUnitOfWork(db, policy),
		AccountRepo:  NewAccountRepository(db),
		JournalRepo:  NewJournalRepository(db),
		OutboxRepo:   NewOutboxRepository(db),
		FastTransfer: NewFastTransferProcedure(db),
	}
}
