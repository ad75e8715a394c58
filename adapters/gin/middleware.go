// Package authgin adapts the auth/admission core to gin: admission runs
// first, then identity resolution, then per-route policy guards, and only
// then handler logic.
package authgin

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/open-rails/gatekit/adapters/ginutil"
	"github.com/open-rails/gatekit/core"
	"github.com/open-rails/gatekit/identity"
	"github.com/open-rails/gatekit/policy"
)

// Authenticate resolves the caller's identity from the Authorization
// header and the session cookie and stores it in the gin context. It never
// rejects a request; unauthenticated callers proceed as anonymous and the
// per-route guards decide what that means.
func Authenticate(svc *core.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		creds := identity.Credentials{Bearer: bearerToken(c)}
		if v, err := c.Cookie(svc.CookieName); err == nil {
			creds.SessionCookie = v
		}
		ginutil.SetIdentity(c, svc.Resolver.Resolve(c.Request.Context(), creds))
		c.Next()
	}
}

// CurrentIdentity returns the identity resolved by Authenticate. The second
// return is false when the middleware did not run.
func CurrentIdentity(c *gin.Context) (identity.Identity, bool) {
	return ginutil.CurrentIdentity(c)
}

// RequireAuthenticated rejects anonymous callers with 401.
func RequireAuthenticated(svc *core.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := CurrentIdentity(c)
		if _, err := svc.Policy.RequireAuthenticated(id); err != nil {
			ginutil.Unauthorized(c, "authentication_required")
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects callers that are not on the admin allow-list:
// 401 when anonymous, 403 when authenticated but not an admin. On success
// the stored identity carries IsAdmin.
func RequireAdmin(svc *core.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := CurrentIdentity(c)
		admin, err := svc.Policy.RequireAdmin(id)
		if err != nil {
			_ = svc.Events.LogAdminAccess(c.Request.Context(), id.Email, c.Request.URL.Path, false)
			if errors.Is(err, policy.ErrAuthRequired) {
				ginutil.Unauthorized(c, "authentication_required")
			} else {
				ginutil.Forbidden(c, "admin_required")
			}
			return
		}
		_ = svc.Events.LogAdminAccess(c.Request.Context(), admin.Email, c.Request.URL.Path, true)
		ginutil.SetIdentity(c, admin)
		c.Next()
	}
}

// RequirePermission rejects callers lacking name in both their permission
// set and their scope.
func RequirePermission(svc *core.Service, name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := CurrentIdentity(c)
		if _, err := svc.Policy.RequirePermission(id, name); err != nil {
			if errors.Is(err, policy.ErrAuthRequired) {
				ginutil.Unauthorized(c, "authentication_required")
			} else {
				ginutil.Forbidden(c, "permission_required")
			}
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
