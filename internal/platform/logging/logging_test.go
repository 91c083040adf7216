package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/SscSPs/banking_ledger/internal/platform/logging"
	"github.com/stretchr/testify/assert"
)

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	fallback := slog.New(slog.NewTextHandler(&buf, nil))
	reqLogger := fallback.With(slog.String("request_id", "r-1"))

	assert.Same(t, fallback, logging.FromContext(context.Background(), fallback))
	assert.Same(t, reqLogger, logging.FromContext(logging.WithLogger(context.Background(), reqLogger), fallback))
	assert.Same(t, slog.Default(), logging.FromContext(context.Background(), nil))

	logging.FromContext(logging.WithLogger(context.Background(), reqLogger), nil).Info("posted")
	assert.Contains(t, buf.String(), "request_id=r-1")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, logging.ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, logging.ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, logging.ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, logging.ParseLevel(""))
}
