package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// LedgerClaims are the bearer token claims accepted on /ledger.
type LedgerClaims struct {
	TenantID string `json:"tenant_id,omitempty"`
	jwt.RegisteredClaims
}

// AuthMiddleware creates a Gin middleware handler that validates HMAC-signed JWT tokens.
// An empty issuer accepts any issuer.
func AuthMiddleware(jwtSecret, issuer string) gin.HandlerFunc {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	parser := jwt.NewParser(opts...)

	return func(c *gin.Context) {
		logger := GetLoggerFromContext(c)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Warn("Authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "error": "Authorization header required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			logger.Warn("Authorization header format invalid")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "error": "Authorization header format must be Bearer {token}"})
			return
		}

		claims := &LedgerClaims{}
		token, err := parser.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			msg := "Invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Token has expired"
			} else if errors.Is(err, jwt.ErrTokenNotValidYet) {
				msg = "Token not valid yet"
			}
			logger.Warn("Invalid token", slog.Any("error", err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "error": msg})
			return
		}

		c.Set(string(subjectKey), claims.Subject)
		enriched := logger.With(slog.String("subject", claims.Subject))
		if claims.TenantID != "" {
			if h := c.GetHeader(TenantHeader); h != "" && h != claims.TenantID {
				logger.Warn("Tenant header does not match token",
					slog.String("token_tenant", claims.TenantID),
					slog.String("header_tenant", h))
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"code": "TENANT_MISMATCH", "error": "token is not valid for the requested tenant"})
				return
			}
			c.Set(string(tenantClaimKey), claims.TenantID)
			enriched = enriched.With(slog.String("tenant_id", claims.TenantID))
		}
		setRequestLogger(c, enriched)

		c.Next()
	}
}
