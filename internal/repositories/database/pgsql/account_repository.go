package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/banking_ledger/internal/apperrors"
	"github.com/SscSPs/banking_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/banking_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/banking_ledger/internal/models"
	"github.com/SscSPs/banking_ledger/internal/utils/mapping"
)

const accountColumns = `tenant_id, account_id, account_number, name, account_type, currency_code,
		balance, is_active, allow_overdraft, version, created_at, updated_at`

type PgAccountRepository struct {
	BaseRepository
}

// NewAccountRepository creates a repository for account data on db.
func NewAccountRepository(db DBTX) *PgAccountRepository {
	return &PgAccountRepository{BaseRepository: BaseRepository{DB: db}}
}

var (
	_ portsrepo.AccountStore            = (*PgAccountRepository)(nil)
	_ portsrepo.AccountRepositoryFacade = (*PgAccountRepository)(nil)
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.TenantID,
		&m.AccountID,
		&m.AccountNumber,
		&m.Name,
		&m.AccountType,
		&m.CurrencyCode,
		&m.Balance,
		&m.IsActive,
		&m.AllowOverdraft,
		&m.Version,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return mapping.ToDomainAccount(m)
}

// GetBatch selects the accounts and locks them FOR UPDATE in account id order.
func (r *PgAccountRepository) GetBatch(ctx context.Context, tenantID domain.TenantID, ids []domain.AccountID) (map[domain.AccountID]*domain.Account, error) {
	out := make(map[domain.AccountID]*domain.Account, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = string(id)
	}
	sort.Strings(raw)

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE tenant_id = $1 AND account_id = ANY($2)
		ORDER BY account_id
		FOR UPDATE;
	`
	rows, err := r.DB.QueryContext(ctx, query, string(tenantID), raw)
	if err != nil {
		return nil, classifyError("lock accounts", err)
	}
	defer rows.Close()

	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, classifyError("scan account", err)
		}
		out[acc.ID] = acc
	}
	if err := rows.Err(); err != nil {
		return nil, classifyError("iterate accounts", err)
	}
	return out, nil
}

// SaveBatch writes back every mutated account. The update is guarded by the
// version the account was loaded with; a lost race is reported as a conflict.
func (r *PgAccountRepository) SaveBatch(ctx context.Context, accounts []*domain.Account) error {
	dirty := make([]*domain.Account, 0, len(accounts))
	for _, a := range accounts {
		if a.IsDirty() {
			dirty = append(dirty, a)
		}
	}
	sort.Slice(dirty, func(i, j int) bool { return dirty[i].ID < dirty[j].ID })

	query := `
		UPDATE accounts
		SET balance = $1, version = $2, updated_at = $3
		WHERE tenant_id = $4 AND account_id = $5 AND version = $6;
	`
	now := time.Now().UTC()
	for _, a := range dirty {
		res, err := r.DB.ExecContext(ctx, query,
			a.Balance().Amount(),
			a.Version,
			now,
			string(a.TenantID),
			string(a.ID),
			a.LoadedVersion(),
		)
		if err != nil {
			return classifyError("update account "+string(a.ID), err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return classifyError("update account "+string(a.ID), err)
		}
		if affected == 0 {
			return apperrors.Conflict(fmt.Sprintf("account %s changed since it was read", a.ID), nil)
		}
		a.UpdatedAt = now
		if err := a.RestoreBalance(a.Balance()); err != nil {
			return err
		}
	}
	return nil
}

// FindAccountByID retrieves one account without locking it.
func (r *PgAccountRepository) FindAccountByID(ctx context.Context, tenantID domain.TenantID, accountID domain.AccountID) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE tenant_id = $1 AND account_id = $2;
	`
	acc, err := scanAccount(r.DB.QueryRowContext(ctx, query, string(tenantID), string(accountID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("ACCOUNT_NOT_FOUND", fmt.Sprintf("account %s not found", accountID))
		}
		return nil, classifyError("find account "+string(accountID), err)
	}
	return acc, nil
}

// CreateAccount inserts a new account with its opening balance.
func (r *PgAccountRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.DB.ExecContext(ctx, query,
		m.TenantID,
		m.AccountID,
		m.AccountNumber,
		m.Name,
		m.AccountType,
		m.CurrencyCode,
		m.Balance,
		m.IsActive,
		m.AllowOverdraft,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		return classifyError("create account "+m.AccountID, err)
	}
	return nil
}
