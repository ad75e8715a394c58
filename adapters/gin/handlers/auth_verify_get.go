package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/open-rails/gatekit/adapters/ginutil"
)

// HandleAuthVerifyGET reports that the presented credential is valid.
// Mount behind RequireAuthenticated.
func HandleAuthVerifyGET() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := ginutil.CurrentIdentity(c)
		user := id.Subject
		if user == "" {
			user = id.Email
		}
		c.JSON(http.StatusOK, gin.H{"valid": true, "user": user, "method": id.Method.String()})
	}
}
