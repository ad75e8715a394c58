package ginutil

import (
	"github.com/gin-gonic/gin"

	"github.com/open-rails/gatekit/identity"
)

const identityKey = "gatekit.identity"

// SetIdentity stores the resolved identity in the request context.
func SetIdentity(c *gin.Context, id identity.Identity) {
	c.Set(identityKey, id)
}

// CurrentIdentity returns the identity stored by the Authenticate
// middleware. The second return is false when the middleware did not run.
func CurrentIdentity(c *gin.Context) (identity.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return identity.Anonymous(), false
	}
	id, ok := v.(identity.Identity)
	if !ok {
		return identity.Anonymous(), false
	}
	return id, true
}
