package apperrors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/SscSPs/banking_ledger/internal/apperrors"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperrors.Kind
	}{
		{name: "nil", err: nil, want: ""},
		{name: "validation", err: apperrors.Validation("BAD", "bad"), want: apperrors.KindValidation},
		{name: "wrapped not found", err: fmt.Errorf("loading: %w", apperrors.NotFound("ACCOUNT_NOT_FOUND", "missing")), want: apperrors.KindNotFound},
		{name: "bare sentinel", err: fmt.Errorf("x: %w", apperrors.ErrDomainConflict), want: apperrors.KindDomainConflict},
		{name: "unknown", err: errors.New("boom"), want: apperrors.KindInternal},
		{name: "conflict", err: apperrors.Conflict("commit", errors.New("40001")), want: apperrors.KindConcurrencyConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperrors.KindOf(tt.err))
		})
	}
}

func TestErrorIsMatchesSentinels(t *testing.T) {
	err := fmt.Errorf("handler: %w", apperrors.Validation("UNBALANCED_ENTRY", "debits do not equal credits"))

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, "UNBALANCED_ENTRY", apperrors.CodeOf(err))
}

func TestRetriesExhaustedIsNotRetriable(t *testing.T) {
	conflict := apperrors.Conflict("commit", errors.New("could not serialize access"))
	exhausted := apperrors.RetriesExhausted(3, conflict)

	assert.False(t, apperrors.IsRetriable(exhausted))
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(exhausted))
	assert.ErrorIs(t, exhausted, apperrors.ErrRetriesExhausted)
	assert.ErrorIs(t, exhausted, apperrors.ErrConcurrencyConflict)
	assert.Equal(t, "RETRIES_EXHAUSTED", apperrors.CodeOf(exhausted))
	assert.Contains(t, exhausted.Error(), "3 attempts")
}
