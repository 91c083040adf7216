package middleware

import "github.com/gin-gonic/gin"

const (
	tenantClaimKey = contextKey("tenantClaim")
	subjectKey     = contextKey("subject")
)

// TenantHeader overrides the tenant in the request body. A token bound to a
// tenant only accepts a matching header.
const TenantHeader = "X-Tenant-Id"

// GetTenantClaimFromContext returns the tenant_id claim of an authenticated request.
func GetTenantClaimFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(string(tenantClaimKey))
	if !ok {
		return "", false
	}
	tenant, ok := v.(string)
	return tenant, ok && tenant != ""
}

// GetSubjectFromContext returns the subject of an authenticated request.
func GetSubjectFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(string(subjectKey))
	if !ok {
		return "", false
	}
	sub, ok := v.(string)
	return sub, ok
}

// ResolveTenant picks the tenant for a request: the token claim first, then the
// X-Tenant-Id header, then the value from the request body.
func ResolveTenant(c *gin.Context, fromBody string) string {
	if claim, ok := GetTenantClaimFromContext(c); ok {
		return claim
	}
	if h := c.GetHeader(TenantHeader); h != "" {
		return h
	}
	return fromBody
}
