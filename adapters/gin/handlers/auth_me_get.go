package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/open-rails/gatekit/adapters/ginutil"
	"github.com/open-rails/gatekit/core"
)

// HandleAuthMeGET returns the caller's resolved identity. Mount behind
// RequireAuthenticated.
func HandleAuthMeGET(svc *core.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := ginutil.CurrentIdentity(c)
		c.JSON(http.StatusOK, gin.H{
			"sub":            id.Subject,
			"email":          id.Email,
			"email_verified": id.EmailVerified,
			"name":           id.Name,
			"permissions":    id.Permissions,
			"scope":          id.Scope,
			"method":         id.Method.String(),
			"is_admin":       svc.Policy.IsAdminEmail(id.Email),
		})
	}
}
