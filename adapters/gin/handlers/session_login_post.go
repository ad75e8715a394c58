package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/open-rails/gatekit/adapters/ginutil"
	"github.com/open-rails/gatekit/core"
	oidckit "github.com/open-rails/gatekit/oidc"
	"github.com/open-rails/gatekit/password"
)

type sessionLoginRequest struct {
	// Token is an issuer-minted bearer token proving the caller's email.
	Token string `json:"token"`
	// Email+Password enable the local admin fallback when a password hash
	// is configured.
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleSessionLoginPOST exchanges a verified credential for the HMAC
// session cookie. Only emails on the admin allow-list may establish a
// session; everyone else gets 403 regardless of how valid their token is.
func HandleSessionLoginPOST(svc *core.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sessionLoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			ginutil.BadRequest(c, "invalid_request")
			return
		}

		var email, method string
		switch {
		case req.Token != "":
			id, err := svc.Verifier.Verify(c.Request.Context(), req.Token)
			if err != nil {
				if errors.Is(err, oidckit.ErrKeySetUnavailable) {
					ginutil.ServiceUnavailable(c, "auth_service_unavailable")
					return
				}
				ginutil.Unauthorized(c, "invalid_token")
				return
			}
			email, method = id.Email, "token"
		case req.Email != "" && req.Password != "":
			if svc.AdminPasswordHash == "" {
				ginutil.Unauthorized(c, "password_login_disabled")
				return
			}
			ok, _ := password.Verify(svc.AdminPasswordHash, req.Password)
			if !ok {
				ginutil.Unauthorized(c, "invalid_credentials")
				return
			}
			email, method = req.Email, "password"
		default:
			ginutil.BadRequest(c, "missing_credentials")
			return
		}

		if email == "" || !svc.Policy.IsAdminEmail(email) {
			_ = svc.Events.LogAdminAccess(c.Request.Context(), email, c.Request.URL.Path, false)
			ginutil.Forbidden(c, "not_authorized")
			return
		}

		token, err := svc.Sessions.Sign(email, svc.SessionTTL)
		if err != nil {
			// Never set a cookie signed with a missing secret.
			ginutil.ServerErr(c, "session_unavailable")
			return
		}
		c.SetSameSite(http.SameSiteStrictMode)
		c.SetCookie(svc.CookieName, token, int(svc.SessionTTL.Seconds()), "/", "", svc.SecureCookies, true)
		_ = svc.Events.LogLogin(c.Request.Context(), email, method, c.ClientIP(), c.Request.UserAgent())
		c.JSON(http.StatusOK, gin.H{"message": "Admin session created successfully."})
	}
}
