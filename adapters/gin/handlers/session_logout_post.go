package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/open-rails/gatekit/core"
)

// HandleSessionLogoutPOST clears the session cookie. The token itself
// stays valid until it expires (the codec is stateless), so the TTL is the
// real bound on a stolen token's lifetime.
func HandleSessionLogoutPOST(svc *core.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetSameSite(http.SameSiteStrictMode)
		c.SetCookie(svc.CookieName, "", -1, "/", "", svc.SecureCookies, true)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
