package domain

import (
	"regexp"
	"strings"

	"github.com/SscSPs/banking_ledger/internal/apperrors"
	"github.com/google/uuid"
)

var (
	accountIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	tenantIDPattern  = regexp.MustCompile(`^[a-z0-9_-]{1,50}$`)
)

const maxEntityIDLength = 64

// AccountID identifies an account within a tenant.
type AccountID string

// TenantID identifies the institution that owns accounts and entries.
type TenantID string

// EntityID identifies journal entries, lines and outbox messages.
type EntityID string

// NewAccountID validates raw and wraps it.
func NewAccountID(raw string) (AccountID, error) {
	v := strings.TrimSpace(raw)
	if !accountIDPattern.MatchString(v) {
		return "", apperrors.Validation("INVALID_ACCOUNT_ID", "account id must be 1-64 characters of [A-Za-z0-9_-]")
	}
	return AccountID(v), nil
}

// NewTenantID lower-cases raw before validating it.
func NewTenantID(raw string) (TenantID, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if !tenantIDPattern.MatchString(v) {
		return "", apperrors.Validation("INVALID_TENANT_ID", "tenant id must be 1-50 characters of [a-z0-9_-]")
	}
	return TenantID(v), nil
}

func NewEntityID(raw string) (EntityID, error) {
	v := strings.TrimSpace(raw)
	if v == "" || len(v) > maxEntityIDLength {
		return "", apperrors.Validation("INVALID_ENTITY_ID", "entity id must be 1-64 characters")
	}
	return EntityID(v), nil
}

// GenerateEntityID returns a fresh random EntityID.
func GenerateEntityID() EntityID {
	return EntityID(uuid.NewString())
}

func (id AccountID) String() string { return string(id) }
func (id TenantID) String() string  { return string(id) }
func (id EntityID) String() string  { return string(id) }
