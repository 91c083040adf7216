package middleware

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IssueServiceToken signs an HS256 bearer token for a calling service. An empty
// tenant leaves the tenant to the X-Tenant-Id header or the request body.
func IssueServiceToken(secret, issuer, subject, tenant string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is required")
	}
	now := time.Now()
	claims := LedgerClaims{
		TenantID: tenant,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-time.Minute)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
