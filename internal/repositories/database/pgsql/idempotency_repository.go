package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/SscSPs/banking_ledger/internal/apperrors"
	"github.com/SscSPs/banking_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/banking_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/banking_ledger/internal/models"
	"github.com/SscSPs/banking_ledger/internal/utils/mapping"
)

type PgIdempotencyRepository struct {
	BaseRepository
}

func NewIdempotencyRepository(db DBTX) *PgIdempotencyRepository {
	return &PgIdempotencyRepository{BaseRepository: BaseRepository{DB: db}}
}

var _ portsrepo.IdempotencyStore = (*PgIdempotencyRepository)(nil)

// CheckAndMark claims the key and reports whether it was already processed.
// Zero affected rows means another request already holds it.
func (r *PgIdempotencyRepository) CheckAndMark(ctx context.Context, tenantID domain.TenantID, key domain.IdempotencyKey, seenAt time.Time) (bool, error) {
	query := `
		INSERT INTO idempotency_keys (tenant_id, idem_key, seen_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (tenant_id, idem_key) DO NOTHING;
	`
	res, err := r.DB.ExecContext(ctx, query, string(tenantID), string(key), seenAt)
	if err != nil {
		return false, classifyError("claim idempotency key", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, classifyError("claim idempotency key", err)
	}
	return affected == 0, nil
}

func (r *PgIdempotencyRepository) Record(ctx context.Context, tenantID domain.TenantID, key domain.IdempotencyKey, entryID domain.EntityID) error {
	query := `
		UPDATE idempotency_keys
		SET entry_id = $3
		WHERE tenant_id = $1 AND idem_key = $2;
	`
	res, err := r.DB.ExecContext(ctx, query, string(tenantID), string(key), string(entryID))
	if err != nil {
		return classifyError("record idempotency key", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return classifyError("record idempotency key", err)
	}
	if affected == 0 {
		return apperrors.NotFound("IDEMPOTENCY_KEY_NOT_FOUND", "idempotency key "+string(key)+" was never claimed")
	}
	return nil
}

func (r *PgIdempotencyRepository) Lookup(ctx context.Context, tenantID domain.TenantID, key domain.IdempotencyKey) (*domain.IdempotencyRecord, error) {
	query := `
		SELECT tenant_id, idem_key, seen_at, entry_id
		FROM idempotency_keys
		WHERE tenant_id = $1 AND idem_key = $2;
	`
	var m models.IdempotencyKey
	err := r.DB.QueryRowContext(ctx, query, string(tenantID), string(key)).Scan(&m.TenantID, &m.IdemKey, &m.SeenAt, &m.EntryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("IDEMPOTENCY_KEY_NOT_FOUND", "idempotency key "+string(key)+" not found")
		}
		return nil, classifyError("lookup idempotency key", err)
	}
	rec := mapping.ToDomainIdempotencyRecord(m)
	return &rec, nil
}
