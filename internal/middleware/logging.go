package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/banking_ledger/internal/platform/logging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// contextKey is the type of keys stored in the Gin context.
// Using a custom type prevents collisions.
type contextKey string

const loggerKey = contextKey("logger")

// RequestIDHeader carries the request id back to the client, and in from it when set.
const RequestIDHeader = "X-Request-ID"

// StructuredLoggingMiddleware creates a Gin middleware handler that injects
// a request-scoped logger into the context.
func StructuredLoggingMiddleware(baseLogger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > 64 {
			requestID = uuid.NewString()
		}

		requestLogger := baseLogger.With(
			slog.String("request_id", requestID),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
		)

		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			requestLogger = requestLogger.With(slog.String("trace_id", sc.TraceID().String()))
		}

		c.Header(RequestIDHeader, requestID)
		setRequestLogger(c, requestLogger)

		c.Next()

		latency := time.Since(start)
		GetLoggerFromContext(c).Info("Request completed",
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", latency),
		)
	}
}

// setRequestLogger stores logger in both the Gin context and the request context,
// so services that only see context.Context log with the same fields.
func setRequestLogger(c *gin.Context, logger *slog.Logger) {
	c.Set(string(loggerKey), logger)
	c.Request = c.Request.WithContext(logging.WithLogger(c.Request.Context(), logger))
}

// GetLoggerFromContext retrieves the request-scoped logger from the Gin context.
func GetLoggerFromContext(c *gin.Context) *slog.Logger {
	if logger, ok := c.Get(string(loggerKey)); ok {
		if l, ok := logger.(*slog.Logger); ok {
			return l
		}
	}
	return GetLoggerFromCtx(c.Request.Context())
}

// GetLoggerFromCtx retrieves the request-scoped logger from a standard context,
// falling back to slog.Default().
func GetLoggerFromCtx(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, nil)
}
