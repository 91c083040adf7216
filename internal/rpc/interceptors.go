package rpc

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/SscSPs/banking_ledger/internal/platform/logging"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// RequestIDMetadataKey carries the caller's correlation id.
const RequestIDMetadataKey = "x-request-id"

// LoggingInterceptor puts a request-scoped logger into the context and logs each call.
func LoggingInterceptor(base *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		requestID := requestIDFromMetadata(ctx)
		logger := base.With(
			slog.String("request_id", requestID),
			slog.String("method", info.FullMethod),
		)
		ctx = logging.WithLogger(ctx, logger)

		start := time.Now()
		resp, err := handler(ctx, req)

		logger.Info("gRPC request finished",
			slog.String("code", status.Code(err).String()),
			slog.Duration("latency", time.Since(start)))
		return resp, err
	}
}

// RecoveryInterceptor turns a handler panic into codes.Internal.
func RecoveryInterceptor(base *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if p := recover(); p != nil {
				logging.FromContext(ctx, base).Error("gRPC handler panicked",
					slog.String("method", info.FullMethod),
					slog.Any("panic", p),
					slog.String("stack", string(debug.Stack())))
				err = status.Error(codes.Internal, "INTERNAL: internal error")
			}
		}()
		return handler(ctx, req)
	}
}

func requestIDFromMetadata(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(RequestIDMetadataKey); len(v) > 0 && v[0] != "" && len(v[0]) <= 64 {
			return v[0]
		}
	}
	return uuid.NewString()
}
