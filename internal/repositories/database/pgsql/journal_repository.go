package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/SscSPs/banking_ledger/internal/apperrors"
	"github.com/SscSPs/banking_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/banking_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/banking_ledger/internal/models"
	"github.com/SscSPs/banking_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5/pgconn"
)

type PgJournalRepository struct {
	BaseRepository
}

// NewJournalRepository creates a repository for journal entries and their lines.
func NewJournalRepository(db DBTX) *PgJournalRepository {
	return &PgJournalRepository{BaseRepository: BaseRepository{DB: db}}
}

var (
	_ portsrepo.JournalStore  = (*PgJournalRepository)(nil)
	_ portsrepo.JournalReader = (*PgJournalRepository)(nil)
)

const lineColumns = 7

const entryHeaderColumns = `entry_id, tenant_id, reference, description, currency_code,
		       entry_date, status, posted_at, created_at, updated_at`

func scanEntryHeader(row rowScanner) (models.JournalEntry, error) {
	var h models.JournalEntry
	err := row.Scan(
		&h.EntryID,
		&h.TenantID,
		&h.Reference,
		&h.Description,
		&h.CurrencyCode,
		&h.EntryDate,
		&h.Status,
		&h.PostedAt,
		&h.CreatedAt,
		&h.UpdatedAt,
	)
	return h, err
}

// Save inserts the entry header and all of its lines in two statements.
func (r *PgJournalRepository) Save(ctx context.Context, entry *domain.JournalEntry) error {
	header, lines := mapping.ToModelJournalEntry(entry)

	headerQuery := `
		INSERT INTO journal_entries (
			entry_id, tenant_id, reference, description, currency_code,
			entry_date, status, posted_at, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.DB.ExecContext(ctx, headerQuery,
		header.EntryID,
		header.TenantID,
		header.Reference,
		header.Description,
		header.CurrencyCode,
		header.EntryDate,
		header.Status,
		header.PostedAt,
		header.CreatedAt,
		header.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == sqlStateUniqueViolation {
			return apperrors.Wrap(apperrors.KindDomainConflict, "DUPLICATE_REFERENCE", err,
				fmt.Sprintf("journal entry with reference %q already exists", header.Reference))
		}
		return classifyError("insert journal entry "+header.EntryID, err)
	}

	if len(lines) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO journal_entry_lines (line_id, entry_id, line_no, account_id, amount, line_type, currency_code) VALUES `)
	args := make([]any, 0, len(lines)*lineColumns)
	for i, l := range lines {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * lineColumns
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4, base+5, base+6, base+7)
		args = append(args, l.LineID, l.EntryID, l.LineNo, l.AccountID, l.Amount, l.LineType, l.CurrencyCode)
	}
	sb.WriteString(";")

	if _, err := r.DB.ExecContext(ctx, sb.String(), args...); err != nil {
		return classifyError("insert journal lines for "+header.EntryID, err)
	}
	return nil
}

// FindByID retrieves an entry and its lines in line order.
func (r *PgJournalRepository) FindByID(ctx context.Context, tenantID domain.TenantID, id domain.EntityID) (*domain.JournalEntry, error) {
	headerQuery := `
		SELECT ` + entryHeaderColumns + `
		FROM journal_entries
		WHERE tenant_id = $1 AND entry_id = $2;
	`
	header, err := scanEntryHeader(r.DB.QueryRowContext(ctx, headerQuery, string(tenantID), string(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("JOURNAL_ENTRY_NOT_FOUND", fmt.Sprintf("journal entry %s not found", id))
		}
		return nil, classifyError("find journal entry "+string(id), err)
	}

	linesQuery := `
		SELECT line_id, entry_id, line_no, account_id, amount, line_type, currency_code
		FROM journal_entry_lines
		WHERE entry_id = $1
		ORDER BY line_no;
	`
	rows, err := r.DB.QueryContext(ctx, linesQuery, string(id))
	if err != nil {
		return nil, classifyError("query journal lines for "+string(id), err)
	}
	defer rows.Close()

	var lines []models.JournalEntryLine
	for rows.Next() {
		var l models.JournalEntryLine
		if err := rows.Scan(&l.LineID, &l.EntryID, &l.LineNo, &l.AccountID, &l.Amount, &l.LineType, &l.CurrencyCode); err != nil {
			return nil, classifyError("scan journal line", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyError("iterate journal lines", err)
	}

	return mapping.ToDomainJournalEntry(header, lines)
}

// ListByAccount pages through posted entries touching accountID using a keyset
// on (posted_at, entry_id). Lines for the whole page are loaded in one query.
func (r *PgJournalRepository) ListByAccount(ctx context.Context, tenantID domain.TenantID, accountID domain.AccountID, limit int, after *portsrepo.EntryCursor) ([]*domain.JournalEntry, error) {
	var afterPostedAt any
	afterID := ""
	if after != nil {
		afterPostedAt = after.PostedAt
		afterID = string(after.EntryID)
	}

	headerQuery := `
		SELECT ` + entryHeaderColumns + `
		FROM journal_entries e
		WHERE e.tenant_id = $1
		  AND e.status = 'POSTED'
		  AND EXISTS (
		      SELECT 1 FROM journal_entry_lines l
		      WHERE l.entry_id = e.entry_id AND l.account_id = $2
		  )
		  AND ($3::timestamptz IS NULL OR (e.posted_at, e.entry_id) < ($3::timestamptz, $4))
		ORDER BY e.posted_at DESC, e.entry_id DESC
		LIMIT $5;
	`
	rows, err := r.DB.QueryContext(ctx, headerQuery, string(tenantID), string(accountID), afterPostedAt, afterID, limit)
	if err != nil {
		return nil, classifyError("list journal entries for "+string(accountID), err)
	}
	var headers []models.JournalEntry
	for rows.Next() {
		h, err := scanEntryHeader(rows)
		if err != nil {
			rows.Close()
			return nil, classifyError("scan journal entry", err)
		}
		headers = append(headers, h)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, classifyError("iterate journal entries", err)
	}
	if len(headers) == 0 {
		return []*domain.JournalEntry{}, nil
	}

	ids := make([]string, len(headers))
	for i, h := range headers {
		ids[i] = h.EntryID
	}
	linesQuery := `
		SELECT line_id, entry_id, line_no, account_id, amount, line_type, currency_code
		FROM journal_entry_lines
		WHERE entry_id = ANY($1)
		ORDER BY entry_id, line_no;
	`
	lineRows, err := r.DB.QueryContext(ctx, linesQuery, ids)
	if err != nil {
		return nil, classifyError("query journal lines", err)
	}
	defer lineRows.Close()

	byEntry := make(map[string][]models.JournalEntryLine, len(headers))
	for lineRows.Next() {
		var l models.JournalEntryLine
		if err := lineRows.Scan(&l.LineID, &l.EntryID, &l.LineNo, &l.AccountID, &l.Amount, &l.LineType, &l.CurrencyCode); err != nil {
			return nil, classifyError("scan journal line", err)
		}
		byEntry[l.EntryID] = append(byEntry[l.EntryID], l)
	}
	if err := lineRows.Err(); err != nil {
		return nil, classifyError("iterate journal lines", err)
	}

	out := make([]*domain.JournalEntry, 0, len(headers))
	for _, h := range headers {
		entry, err := mapping.ToDomainJournalEntry(h, byEntry[h.EntryID])
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}
