// Package ginutil holds small helpers shared by the gin adapters: the
// limiter contract at the HTTP boundary, rate-limit headers, and uniform
// JSON error responses. Error bodies carry a short machine code only; no
// key material, claims, or secrets ever reach a client.
package ginutil

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/open-rails/gatekit/ratelimit"
)

// RateLimiter is what the middleware needs from a limiter backend.
type RateLimiter interface {
	Allow(key string) ratelimit.Decision
}

// ClientKey returns the client identifier used for admission control.
// Source address; gin resolves proxies per its trusted-proxy settings.
func ClientKey(c *gin.Context) string {
	return c.ClientIP()
}

// RateHeaders writes the X-RateLimit header triad for a decision.
func RateHeaders(c *gin.Context, d ratelimit.Decision) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(d.Reset.Unix(), 10))
}

// TooMany writes a 429 with Retry-After and the header triad, and aborts.
func TooMany(c *gin.Context, d ratelimit.Decision) {
	RateHeaders(c, d)
	c.Header("Retry-After", strconv.Itoa(int(d.RetryAfter.Seconds())))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"error":   "rate_limited",
		"message": "Maximum " + strconv.Itoa(d.Limit) + " requests per " + strconv.Itoa(int(d.RetryAfter.Seconds())) + " seconds allowed",
	})
}

// Unauthorized writes a 401 with a WWW-Authenticate challenge and aborts.
func Unauthorized(c *gin.Context, code string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": code})
}

// Forbidden writes a 403 and aborts. Used for authenticated-but-
// unauthorized callers.
func Forbidden(c *gin.Context, code string) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": code})
}

// BadRequest writes a 400 and aborts.
func BadRequest(c *gin.Context, code string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": code})
}

// ServerErr writes a 500 and aborts.
func ServerErr(c *gin.Context, code string) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": code})
}

// ServiceUnavailable writes a 503 and aborts. Availability failures (key
// set unreachable) must never be presented as authentication failures.
func ServiceUnavailable(c *gin.Context, code string) {
	c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": code})
}
