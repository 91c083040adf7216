package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that a request carrying an already seen idempotency key was replayed.
var ErrDuplicate = errors.New("duplicate request")

// ErrDomainConflict indicates that a business rule rejected an otherwise valid request.
var ErrDomainConflict = errors.New("domain conflict")

// ErrConcurrencyConflict indicates the store aborted a transaction because of a concurrent writer.
var ErrConcurrencyConflict = errors.New("concurrency conflict")

// ErrRetriesExhausted indicates that a conflicting transaction kept failing after every allowed attempt.
var ErrRetriesExhausted = errors.New("transaction retries exhausted")

// ErrInternal is the catch-all for failures the caller cannot fix.
var ErrInternal = errors.New("internal error")

// Kind classifies an error for transport mapping and retry decisions.
type Kind string

const (
	KindValidation          Kind = "VALIDATION"
	KindNotFound            Kind = "NOT_FOUND"
	KindDomainConflict      Kind = "DOMAIN_CONFLICT"
	KindConcurrencyConflict Kind = "CONCURRENCY_CONFLICT"
	KindDuplicateRequest    Kind = "DUPLICATE_REQUEST"
	KindInternal            Kind = "INTERNAL"
)

// Error is the typed failure returned by the ledger core.
// Callers branch on Kind (see KindOf), never on the message text.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the package sentinels by kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrDomainConflict:
		return e.Kind == KindDomainConflict
	case ErrConcurrencyConflict:
		return e.Kind == KindConcurrencyConflict
	case ErrDuplicate:
		return e.Kind == KindDuplicateRequest
	case ErrInternal:
		return e.Kind == KindInternal
	}
	return false
}

// New creates a typed error without a cause.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap creates a typed error around cause.
func Wrap(kind Kind, code string, cause error, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: cause}
}

// Validation reports bad input. Never retried; surfaced as 400.
func Validation(code, message string) *Error {
	return New(KindValidation, code, message)
}

// NotFound reports a missing resource; surfaced as 404.
func NotFound(code, message string) *Error {
	return New(KindNotFound, code, message)
}

// DomainConflict reports a business-rule rejection; surfaced as 422.
func DomainConflict(code, message string) *Error {
	return New(KindDomainConflict, code, message)
}

// Conflict reports a serialization failure from the store. It is the only retriable kind.
func Conflict(message string, cause error) *Error {
	return Wrap(KindConcurrencyConflict, "SERIALIZATION_FAILURE", cause, message)
}

// Duplicate reports a replay of an already processed request.
func Duplicate(message string) *Error {
	return New(KindDuplicateRequest, "DUPLICATE_REQUEST", message)
}

// Internal wraps an unexpected failure.
func Internal(message string, cause error) *Error {
	return Wrap(KindInternal, "INTERNAL", cause, message)
}

// RetriesExhausted is returned once a conflicting transaction has used every attempt.
func RetriesExhausted(attempts int, last error) *Error {
	return Wrap(KindInternal, "RETRIES_EXHAUSTED", fmt.Errorf("%w: %w", ErrRetriesExhausted, last),
		fmt.Sprintf("transaction failed after %d attempts", attempts))
}

// KindOf returns the kind of the outermost typed error in err's chain.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	switch {
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrDomainConflict):
		return KindDomainConflict
	case errors.Is(err, ErrConcurrencyConflict):
		return KindConcurrencyConflict
	case errors.Is(err, ErrDuplicate):
		return KindDuplicateRequest
	}
	return KindInternal
}

// CodeOf returns the machine-readable code of the outermost typed error, or INTERNAL.
func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Code != "" {
		return appErr.Code
	}
	return "INTERNAL"
}

// IsRetriable reports whether err is a concurrency conflict worth retrying.
func IsRetriable(err error) bool {
	return KindOf(err) == KindConcurrencyConflict
}
