package authgin

import (
	"github.com/gin-gonic/gin"

	"github.com/open-rails/gatekit/adapters/gin/handlers"
	"github.com/open-rails/gatekit/core"
)

// AuthRoutes mounts the auth endpoints under /auth. Identity resolution
// runs for the whole group; per-route guards apply the endpoint's policy.
func AuthRoutes(r gin.IRouter, svc *core.Service) {
	auth := r.Group("/auth")
	auth.Use(Authenticate(svc))
	auth.POST("/session-login", handlers.HandleSessionLoginPOST(svc))
	auth.POST("/logout", handlers.HandleSessionLogoutPOST(svc))
	auth.GET("/me", RequireAuthenticated(svc), handlers.HandleAuthMeGET(svc))
	auth.GET("/verify", RequireAuthenticated(svc), handlers.HandleAuthVerifyGET())
	auth.GET("/is-admin", RequireAdmin(svc), handlers.HandleAuthIsAdminGET())
}
