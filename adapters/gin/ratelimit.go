package authgin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/open-rails/gatekit/adapters/ginutil"
	"github.com/open-rails/gatekit/core"
)

// DefaultExemptPaths always admit: health probes and docs must stay
// reachable while a client is throttled.
var DefaultExemptPaths = []string{"/health", "/", "/docs"}

// RateLimitOpts configures the admission middleware.
type RateLimitOpts struct {
	// ExemptPaths always admit (DefaultExemptPaths when nil).
	ExemptPaths []string
	// Events receives rate-limited audit events (optional).
	Events core.AuthEventLogger
}

// RateLimit gates every request through the limiter before any other
// middleware or handler runs. CORS preflight always admits. Admitted
// responses carry the X-RateLimit header triad; rejections get 429 with
// Retry-After and remaining forced to zero.
func RateLimit(rl ginutil.RateLimiter, opts RateLimitOpts) gin.HandlerFunc {
	paths := opts.ExemptPaths
	if paths == nil {
		paths = DefaultExemptPaths
	}
	exempt := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		exempt[p] = struct{}{}
	}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		if _, ok := exempt[c.Request.URL.Path]; ok {
			c.Next()
			return
		}
		key := ginutil.ClientKey(c)
		d := rl.Allow(key)
		if !d.Allowed {
			if opts.Events != nil {
				_ = opts.Events.LogRateLimited(c.Request.Context(), key, c.Request.URL.Path)
			}
			ginutil.TooMany(c, d)
			return
		}
		ginutil.RateHeaders(c, d)
		c.Next()
	}
}
