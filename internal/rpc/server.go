package rpc

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/banking_ledger/internal/apperrors"
	"github.com/SscSPs/banking_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/banking_ledger/internal/core/ports/services"
	"github.com/SscSPs/banking_ledger/internal/platform/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// TenantMetadataKey overrides the tenant carried in the request body.
const TenantMetadataKey = "x-tenant-id"

type ledgerServer struct {
	fast   portssvc.FastTransferSvc
	query  portssvc.LedgerQuerySvc
	logger *slog.Logger
}

var _ LedgerServer = (*ledgerServer)(nil)

// NewServer builds a gRPC server exposing ledger.v1.Ledger and the standard health service.
func NewServer(services *portssvc.ServiceContainer, logger *slog.Logger, opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			RecoveryInterceptor(logger),
			LoggingInterceptor(logger),
		),
	}, opts...)
	s := grpc.NewServer(opts...)

	RegisterLedgerServer(s, &ledgerServer{
		fast:   services.FastTransfer,
		query:  services.Query,
		logger: logger,
	})

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)
	return s
}

// PostEntry runs a two-party transfer through the fast path.
func (s *ledgerServer) PostEntry(ctx context.Context, req *PostEntryRequest) (*PostEntryResponse, error) {
	minor, err := toCurrencyMinor(req.Amount)
	if err != nil {
		return nil, toStatus(ctx, err)
	}

	res, err := s.fast.Execute(ctx, portssvc.FastTransferCommand{
		IdempotencyKey:       req.IdempotencyKey,
		TenantID:             resolveTenant(ctx, req.TenantId),
		SourceAccountID:      req.SourceAccountId,
		DestinationAccountID: req.DestinationAccountId,
		AmountMinor:          minor,
		Currency:             req.Amount.Currency,
		Narration:            req.Narration,
	})
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	if res.Duplicate {
		return &PostEntryResponse{Status: StatusDuplicate}, nil
	}
	return &PostEntryResponse{Status: StatusSuccess, EntryId: *res.EntryID}, nil
}

func (s *ledgerServer) GetBalance(ctx context.Context, req *GetBalanceRequest) (*GetBalanceResponse, error) {
	view, err := s.query.GetBalance(ctx, resolveTenant(ctx, req.TenantId), req.AccountId)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return &GetBalanceResponse{
		AccountId: view.AccountID.String(),
		Balance: Amount{
			Minor:    view.Balance.MinorUnits(),
			Currency: view.Balance.Currency().String(),
			Scale:    view.Balance.Scale(),
		},
		Source: string(view.Source),
	}, nil
}

// toCurrencyMinor rescales a to the minor units of its currency. Precision the
// currency cannot hold is rejected rather than rounded.
func toCurrencyMinor(a Amount) (int64, error) {
	currency, err := domain.ParseCurrency(a.Currency)
	if err != nil {
		return 0, err
	}
	if a.Scale == 0 || a.Scale == currency.Scale() {
		return a.Minor, nil
	}
	given, err := domain.NewMoneyFromMinorWithScale(a.Minor, currency, a.Scale)
	if err != nil {
		return 0, err
	}
	rescaled, err := domain.NewMoney(given.Amount(), currency)
	if err != nil {
		return 0, err
	}
	if !rescaled.Amount().Equal(given.Amount()) {
		return 0, apperrors.Validation("INVALID_SCALE",
			fmt.Sprintf("amount %s has more precision than %s allows", given.Amount(), currency))
	}
	return rescaled.ExactMinorUnits()
}

func resolveTenant(ctx context.Context, fromBody string) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(TenantMetadataKey); len(v) > 0 && v[0] != "" {
			return v[0]
		}
	}
	return fromBody
}

// codeForKind maps an error kind to its gRPC status code.
func codeForKind(err error) codes.Code {
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation:
		return codes.InvalidArgument
	case apperrors.KindNotFound:
		return codes.NotFound
	case apperrors.KindDomainConflict:
		return codes.FailedPrecondition
	case apperrors.KindConcurrencyConflict:
		return codes.Aborted
	}
	if apperrors.CodeOf(err) == "RETRIES_EXHAUSTED" {
		return codes.Aborted
	}
	return codes.Internal
}

// toStatus converts err into a status whose message is prefixed with the ledger error code.
func toStatus(ctx context.Context, err error) error {
	code := codeForKind(err)
	appCode := apperrors.CodeOf(err)
	msg := err.Error()
	if code == codes.Internal {
		logging.FromContext(ctx, nil).Error("RPC failed", slog.String("code", appCode), slog.String("error", msg))
		msg = "internal error"
	}
	return status.Error(code, appCode+": "+msg)
}
