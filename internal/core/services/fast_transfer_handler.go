package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/banking_ledger/internal/apperrors"
	"github.com/SscSPs/banking_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/banking_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/banking_ledger/internal/core/ports/services"
	"github.com/SscSPs/banking_ledger/internal/core/uow"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// DefaultFastTransferTimeout bounds one call to the transfer procedure.
const DefaultFastTransferTimeout = 3 * time.Second

type fastTransferHandler struct {
	BaseService
	proc portsrepo.FastTransferProcedure
	cfg  serviceConfig
}

// NewFastTransferHandler creates the single round-trip transfer handler
func NewFastTransferHandler(proc portsrepo.FastTransferProcedure, options ...ServiceOption) portssvc.FastTransferSvc {
	cfg := newServiceConfig(options)
	return &fastTransferHandler{
		BaseService: BaseService{Logger: cfg.logger},
		proc:        proc,
		cfg:         cfg,
	}
}

var _ portssvc.FastTransferSvc = (*fastTransferHandler)(nil)

// Execute validates cmd and runs the store-side transfer. Serialization failures
// are retried; the procedure is idempotent on the key so a retry never double-posts.
func (h *fastTransferHandler) Execute(ctx context.Context, cmd portssvc.FastTransferCommand) (portssvc.FastTransferResult, error) {
	ctx, span := tracer.Start(ctx, "FastTransfer")
	defer span.End()

	params, err := validateFastTransfer(cmd)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return portssvc.FastTransferResult{}, err
	}
	span.SetAttributes(
		attribute.String("ledger.tenant_id", params.TenantID.String()),
		attribute.Int64("ledger.amount_minor", params.AmountMinor),
	)

	policy := h.cfg.policy
	if policy.OnRetry == nil {
		policy.OnRetry = func(attempt int, err error, wait time.Duration) {
			h.LogDebug(ctx, "Retrying fast transfer",
				slog.Int("attempt", attempt),
				slog.Duration("wait", wait),
				slog.String("error", err.Error()))
		}
	}

	entryID, err := uow.WithSerializableRetry(ctx, policy, func(ctx context.Context, attempt int) (*domain.EntityID, error) {
		callCtx, cancel := context.WithTimeout(ctx, h.cfg.timeout)
		defer cancel()
		return h.proc.ExecuteTransfer(callCtx, params)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if apperrors.KindOf(err) == apperrors.KindInternal {
			h.LogError(ctx, err, "Fast transfer failed",
				slog.String("tenant_id", params.TenantID.String()),
				slog.String("idempotency_key", params.IdempotencyKey.String()))
		}
		return portssvc.FastTransferResult{}, err
	}

	if entryID == nil {
		span.SetAttributes(attribute.Bool("ledger.duplicate", true))
		h.LogInfo(ctx, "Replayed idempotent fast transfer",
			slog.String("tenant_id", params.TenantID.String()),
			slog.String("idempotency_key", params.IdempotencyKey.String()))
		return portssvc.FastTransferResult{Duplicate: true}, nil
	}

	h.invalidateBalances(ctx, h.cfg.cache, params.TenantID, params.SourceID, params.DestinationID)
	id := entryID.String()
	h.LogInfo(ctx, "Fast transfer posted",
		slog.String("tenant_id", params.TenantID.String()),
		slog.String("entry_id", id))
	return portssvc.FastTransferResult{EntryID: &id}, nil
}

func validateFastTransfer(cmd portssvc.FastTransferCommand) (portsrepo.FastTransferParams, error) {
	var params portsrepo.FastTransferParams

	tenantID, err := domain.NewTenantID(cmd.TenantID)
	if err != nil {
		return params, err
	}
	currency, err := domain.ParseCurrency(cmd.Currency)
	if err != nil {
		return params, err
	}
	source, err := domain.NewAccountID(cmd.SourceAccountID)
	if err != nil {
		return params, err
	}
	destination, err := domain.NewAccountID(cmd.DestinationAccountID)
	if err != nil {
		return params, err
	}
	if source == destination {
		return params, apperrors.Validation("SAME_ACCOUNT", "source and destination accounts must differ")
	}
	if cmd.AmountMinor <= 0 {
		return params, apperrors.Wrap(apperrors.KindValidation, "NON_POSITIVE_AMOUNT", domain.ErrNonPositiveAmount,
			"amount must be positive")
	}
	narration := strings.TrimSpace(cmd.Narration)
	if narration == "" {
		return params, apperrors.Validation("NARRATION_REQUIRED", "narration is required")
	}
	key, err := domain.NewIdempotencyKey(cmd.IdempotencyKey)
	if err != nil {
		return params, err
	}

	return portsrepo.FastTransferParams{
		IdempotencyKey: key,
		TenantID:       tenantID,
		SourceID:       source,
		DestinationID:  destination,
		AmountMinor:    cmd.AmountMinor,
		Currency:       currency,
		Narration:      narration,
	}, nil
}
