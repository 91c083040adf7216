package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/banking_ledger/internal/apperrors"
)

const timeFormat = time.RFC3339Nano // Use a precise time format

// Page size bounds for listing endpoints.
const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Cursor is the position after the last item of a page, ordered by
// (PostedAt DESC, ID DESC).
type Cursor struct {
	PostedAt time.Time
	ID       string
}

// EncodeToken creates an opaque, URL-safe token from c.
func EncodeToken(c Cursor) string {
	tokenStr := fmt.Sprintf("%s|%s", c.PostedAt.UTC().Format(timeFormat), c.ID)
	return base64.RawURLEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeToken parses a token produced by EncodeToken. Malformed tokens are validation errors.
func DecodeToken(token string) (Cursor, error) {
	decodedBytes, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, invalidToken("base64 decode")
	}
	parts := strings.SplitN(string(decodedBytes), "|", 2)
	if len(parts) != 2 || parts[1] == "" {
		return Cursor{}, invalidToken("split")
	}

	postedAt, err := time.Parse(timeFormat, parts[0])
	if err != nil {
		return Cursor{}, invalidToken("time parse")
	}
	return Cursor{PostedAt: postedAt, ID: parts[1]}, nil
}

// ClampLimit maps a requested page size into [1, MaxLimit]; zero or negative selects DefaultLimit.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	}
	return limit
}

func invalidToken(stage string) error {
	return apperrors.Validation("INVALID_PAGE_TOKEN", "invalid pagination token format ("+stage+")")
}
