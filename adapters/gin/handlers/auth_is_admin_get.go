package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/open-rails/gatekit/adapters/ginutil"
)

// HandleAuthIsAdminGET confirms admin access. Mount behind RequireAdmin;
// reaching the handler at all means the check passed.
func HandleAuthIsAdminGET() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := ginutil.CurrentIdentity(c)
		c.JSON(http.StatusOK, gin.H{"is_admin": true, "email": id.Email})
	}
}
