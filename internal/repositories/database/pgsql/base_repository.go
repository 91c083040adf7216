package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/SscSPs/banking_ledger/internal/apperrors"
	"github.com/SscSPs/banking_ledger/internal/core/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so every repository can run
// inside or outside a unit of work.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	DB DBTX
}

const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
	sqlStateUniqueViolation      = "23505"
	sqlStateRaiseException       = "P0001"
	sqlStateNoDataFound          = "P0002"
	sqlStateQueryCanceled        = "57014"
	sqlStateStringTooLong        = "22001"
)

// classifyError maps driver failures onto the ledger error taxonomy.
// Errors that are already typed pass through untouched.
func classifyError(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlStateSerializationFailure, sqlStateDeadlockDetected:
			return apperrors.Conflict(op, err)
		case sqlStateUniqueViolation:
			return apperrors.Wrap(apperrors.KindDomainConflict, "DUPLICATE", err, op+": duplicate key")
		case sqlStateNoDataFound:
			return apperrors.Wrap(apperrors.KindNotFound, "ACCOUNT_NOT_FOUND", err, pgErr.Message)
		case sqlStateRaiseException:
			return classifyRaise(pgErr, err)
		case sqlStateQueryCanceled:
			return apperrors.Wrap(apperrors.KindInternal, "TIMEOUT", err, op+": statement cancelled")
		case sqlStateStringTooLong:
			return apperrors.Wrap(apperrors.KindValidation, "VALUE_TOO_LONG", err, op+": value exceeds column width")
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Wrap(apperrors.KindInternal, "TIMEOUT", err, op+": deadline exceeded")
	}
	return apperrors.Internal(op, err)
}

// classifyRaise maps the RAISE EXCEPTION messages of the ledger procedures.
func classifyRaise(pgErr *pgconn.PgError, err error) error {
	msg := pgErr.Message
	switch {
	case strings.Contains(msg, "INSUFFICIENT_FUNDS"):
		return apperrors.Wrap(apperrors.KindDomainConflict, "INSUFFICIENT_FUNDS", fmt.Errorf("%w: %w", domain.ErrInsufficientBalance, err), msg)
	case strings.Contains(msg, "ACCOUNT_INACTIVE"):
		return apperrors.Wrap(apperrors.KindDomainConflict, "ACCOUNT_INACTIVE", fmt.Errorf("%w: %w", domain.ErrInactiveAccount, err), msg)
	case strings.Contains(msg, "CURRENCY_MISMATCH"):
		return apperrors.Wrap(apperrors.KindValidation, "CURRENCY_MISMATCH", fmt.Errorf("%w: %w", domain.ErrCurrencyMismatch, err), msg)
	case strings.Contains(msg, "UNSUPPORTED_CURRENCY"):
		return apperrors.Wrap(apperrors.KindValidation, "UNSUPPORTED_CURRENCY", err, msg)
	}
	return apperrors.Internal("procedure raised", err)
}
