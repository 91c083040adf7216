package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/banking_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

const testSecret = "test-secret-key-that-is-long-enough"

func init() {
	gin.SetMode(gin.TestMode)
}

func signToken(t *testing.T, tenant string, expires time.Time) string {
	t.Helper()
	signed, err := middleware.IssueServiceToken(testSecret, "ledger-test", "svc-payments", tenant, time.Until(expires))
	require.NoError(t, err)
	return signed
}

func TestStructuredLoggingMiddlewareAddsTraceID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	traceID := trace.TraceID{0x0a, 0xf7, 0x65, 0x19, 0x16, 0xcd, 0x43, 0xdd, 0x84, 0x48, 0xeb, 0x21, 0x1c, 0x80, 0x31, 0x9c}
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: trace.SpanID{1}, TraceFlags: trace.FlagsSampled})
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req = req.WithContext(trace.ContextWithSpanContext(req.Context(), sc))
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Contains(t, buf.String(), "trace_id="+traceID.String())
}

func TestIssueServiceToken(t *testing.T) {
	signed, err := middleware.IssueServiceToken(testSecret, "ledger-test", "svc-payments", "acme", time.Hour)
	require.NoError(t, err)

	claims := &middleware.LedgerClaims{}
	_, err = jwt.ParseWithClaims(signed, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "acme", claims.TenantID)
	assert.Equal(t, "svc-payments", claims.Subject)
	assert.Equal(t, "ledger-test", claims.Issuer)

	_, err = middleware.IssueServiceToken("", "ledger-test", "svc", "", time.Hour)
	assert.Error(t, err)
}

func TestStructuredLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger))
	r.GET("/ping", func(c *gin.Context) {
		middleware.GetLoggerFromCtx(c.Request.Context()).Info("inside handler")
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "req-123", w.Header().Get(middleware.RequestIDHeader))
	assert.Contains(t, buf.String(), `msg="inside handler" request_id=req-123`)
	assert.Contains(t, buf.String(), "Request completed")
	assert.Contains(t, buf.String(), "status=204")
}

func TestStructuredLoggingGeneratesRequestID(t *testing.T) {
	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Len(t, w.Header().Get(middleware.RequestIDHeader), 36)
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		header     func(t *testing.T) string
		wantStatus int
		wantTenant string
	}{
		{name: "valid token with tenant", header: func(t *testing.T) string { return "Bearer " + signToken(t, "acme", time.Now().Add(time.Hour)) }, wantStatus: http.StatusOK, wantTenant: "acme"},
		{name: "valid token without tenant", header: func(t *testing.T) string { return "Bearer " + signToken(t, "", time.Now().Add(time.Hour)) }, wantStatus: http.StatusOK},
		{name: "missing header", header: func(t *testing.T) string { return "" }, wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: func(t *testing.T) string { return "Basic abc" }, wantStatus: http.StatusUnauthorized},
		{name: "expired", header: func(t *testing.T) string { return "Bearer " + signToken(t, "acme", time.Now().Add(-time.Minute)) }, wantStatus: http.StatusUnauthorized},
		{name: "garbage", header: func(t *testing.T) string { return "Bearer not.a.token" }, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(middleware.AuthMiddleware(testSecret, "ledger-test"))
			var gotTenant string
			r.GET("/ledger/x", func(c *gin.Context) {
				gotTenant = middleware.ResolveTenant(c, "")
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/ledger/x", nil)
			if h := tt.header(t); h != "" {
				req.Header.Set("Authorization", h)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantTenant, gotTenant)
		})
	}
}

func TestAuthMiddlewareRejectsOtherIssuer(t *testing.T) {
	r := gin.New()
	r.Use(middleware.AuthMiddleware(testSecret, "someone-else"))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "acme", time.Now().Add(time.Hour)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestResolveTenantPrecedence(t *testing.T) {
	r := gin.New()
	r.Use(middleware.AuthMiddleware(testSecret, ""))
	var got string
	r.GET("/x", func(c *gin.Context) {
		got = middleware.ResolveTenant(c, "from-body")
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "from-claim", time.Now().Add(time.Hour)))
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "from-claim", got)

	req.Header.Set(middleware.TenantHeader, "from-claim")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "from-claim", got)

	unbound := httptest.NewRequest(http.MethodGet, "/x", nil)
	unbound.Header.Set("Authorization", "Bearer "+signToken(t, "", time.Now().Add(time.Hour)))
	unbound.Header.Set(middleware.TenantHeader, "from-header")
	r.ServeHTTP(httptest.NewRecorder(), unbound)
	assert.Equal(t, "from-header", got)

	plain := gin.New()
	plain.GET("/x", func(c *gin.Context) { got = middleware.ResolveTenant(c, "from-body") })
	plain.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, "from-body", got)
}

func TestAuthMiddlewareRejectsForeignTenantHeader(t *testing.T) {
	r := gin.New()
	r.Use(middleware.AuthMiddleware(testSecret, ""))
	called := false
	r.GET("/x", func(c *gin.Context) {
		called = true
		c.Status(http.StatusOK)
	})

	signed, err := middleware.IssueServiceToken(testSecret, "ledger-test", "svc-payments", "acme", time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	req.Header.Set(middleware.TenantHeader, "globex")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"code":"TENANT_MISMATCH","error":"token is not valid for the requested tenant"}`, w.Body.String())
	assert.False(t, called)
}

func TestRateLimit(t *testing.T) {
	lim, err := middleware.NewRateLimiter("2-M")
	require.NoError(t, err)
	r := gin.New()
	r.Use(middleware.RateLimit(lim))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	_, err = middleware.NewRateLimiter("lots")
	assert.Error(t, err)
}

func TestCurrencyValidator(t *testing.T) {
	require.NoError(t, middleware.RegisterValidators())

	type body struct {
		Currency string `json:"currency" binding:"required,currency"`
	}
	r := gin.New()
	r.POST("/x", func(c *gin.Context) {
		var b body
		if err := c.ShouldBindJSON(&b); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	for raw, want := range map[string]int{`{"currency":"ngn"}`: http.StatusOK, `{"currency":"JPY"}`: http.StatusBadRequest} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", bytes.NewBufferString(raw)))
		assert.Equal(t, want, w.Code, raw)
	}
}
