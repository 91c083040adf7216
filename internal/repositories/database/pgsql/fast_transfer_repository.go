package pgsql

import (
	"context"
	"database/sql"

	"github.com/SscSPs/banking_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/banking_ledger/internal/core/ports/repositories"
)

// PgFastTransferProcedure calls sp_idem_transfer_execute, which claims the
// idempotency key, moves the balances, writes the entry and its outbox row in
// one statement.
type PgFastTransferProcedure struct {
	BaseRepository
}

func NewFastTransferProcedure(db DBTX) *PgFastTransferProcedure {
	return &PgFastTransferProcedure{BaseRepository: BaseRepository{DB: db}}
}

var _ portsrepo.FastTransferProcedure = (*PgFastTransferProcedure)(nil)

func (r *PgFastTransferProcedure) ExecuteTransfer(ctx context.Context, p portsrepo.FastTransferParams) (*domain.EntityID, error) {
	query := `SELECT sp_idem_transfer_execute($1, $2, $3, $4, $5, $6, $7);`

	var entryID sql.NullString
	err := r.DB.QueryRowContext(ctx, query,
		string(p.IdempotencyKey),
		string(p.TenantID),
		string(p.SourceID),
		string(p.DestinationID),
		p.AmountMinor,
		string(p.Currency),
		p.Narration,
	).Scan(&entryID)
	if err != nil {
		return nil, classifyError("execute fast transfer", err)
	}
	if !entryID.Valid {
		return nil, nil
	}
	id := domain.EntityID(entryID.String)
	return &id, nil
}
