package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/banking_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/banking_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/banking_ledger/internal/platform/logging"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/SscSPs/banking_ledger/internal/core/services")

// BaseService provides common functionality for all services
type BaseService struct {
	Logger *slog.Logger
}

// GetLogger gets the request logger from context or falls back to the service logger
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.Logger)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	s.GetLogger(ctx).Error(msg, args...)
}

// LogWarn logs a recoverable failure
func (s *BaseService) LogWarn(ctx context.Context, err error, msg string, keyvals ...any) {
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	s.GetLogger(ctx).Warn(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// invalidateBalances drops cached balances after a commit. Failures are logged, never returned.
func (s *BaseService) invalidateBalances(ctx context.Context, cache portsrepo.BalanceCache, tenantID domain.TenantID, accountIDs ...domain.AccountID) {
	if cache == nil || len(accountIDs) == 0 {
		return
	}
	if err := cache.Invalidate(ctx, tenantID, accountIDs...); err != nil {
		s.LogWarn(ctx, err, "Failed to invalidate cached balances",
			slog.String("tenant_id", tenantID.String()),
			slog.Any("account_ids", accountIDs))
	}
}
