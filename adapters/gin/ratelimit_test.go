package authgin_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	authgin "github.com/open-rails/gatekit/adapters/gin"
	"github.com/open-rails/gatekit/core"
	"github.com/open-rails/gatekit/ratelimit"
)

type stubLimiter struct {
	decision ratelimit.Decision
	keys     []string
}

func (s *stubLimiter) Allow(key string) ratelimit.Decision {
	s.keys = append(s.keys, key)
	return s.decision
}

type recordingEvents struct {
	core.NopAuthEvents
	rateLimited []string
}

func (r *recordingEvents) LogRateLimited(_ context.Context, key, path string) error {
	r.rateLimited = append(r.rateLimited, key+" "+path)
	return nil
}

func limitedRouter(rl *stubLimiter, opts authgin.RateLimitOpts) *gin.Engine {
	r := gin.New()
	r.Use(authgin.RateLimit(rl, opts))
	handler := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.GET("/api/data", handler)
	r.OPTIONS("/api/data", handler)
	r.GET("/health", handler)
	return r
}

func TestRateLimitAdmitWritesHeaders(t *testing.T) {
	rl := &stubLimiter{decision: ratelimit.Decision{
		Allowed:   true,
		Limit:     100,
		Remaining: 41,
		Reset:     time.Unix(1_700_000_060, 0),
	}}
	r := limitedRouter(rl, authgin.RateLimitOpts{})

	w := do(r, http.MethodGet, "/api/data", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Header().Get("X-RateLimit-Limit"); got != "100" {
		t.Errorf("X-RateLimit-Limit = %q", got)
	}
	if got := w.Header().Get("X-RateLimit-Remaining"); got != "41" {
		t.Errorf("X-RateLimit-Remaining = %q", got)
	}
	if got := w.Header().Get("X-RateLimit-Reset"); got != "1700000060" {
		t.Errorf("X-RateLimit-Reset = %q", got)
	}
}

func TestRateLimitReject(t *testing.T) {
	rl := &stubLimiter{decision: ratelimit.Decision{
		Allowed:    false,
		Limit:      100,
		Remaining:  0,
		RetryAfter: time.Minute,
		Reset:      time.Unix(1_700_000_060, 0),
	}}
	events := &recordingEvents{}
	r := limitedRouter(rl, authgin.RateLimitOpts{Events: events})

	w := do(r, http.MethodGet, "/api/data", "", nil)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "60" {
		t.Errorf("Retry-After = %q", got)
	}
	if got := w.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Errorf("X-RateLimit-Remaining = %q", got)
	}
	if body := w.Body.String(); !strings.Contains(body, `"error":"rate_limited"`) {
		t.Errorf("body = %s", body)
	}
	if len(events.rateLimited) != 1 {
		t.Errorf("rate-limited audit events = %d, want 1", len(events.rateLimited))
	}
}

func TestRateLimitExemptPaths(t *testing.T) {
	rl := &stubLimiter{decision: ratelimit.Decision{Allowed: false, RetryAfter: time.Minute}}
	r := limitedRouter(rl, authgin.RateLimitOpts{})

	// Health probes stay reachable while the client is throttled, and the
	// limiter is never consulted for them.
	w := do(r, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("exempt path status = %d", w.Code)
	}
	if len(rl.keys) != 0 {
		t.Errorf("limiter consulted for exempt path: %v", rl.keys)
	}
}

func TestRateLimitPreflightBypass(t *testing.T) {
	rl := &stubLimiter{decision: ratelimit.Decision{Allowed: false, RetryAfter: time.Minute}}
	r := limitedRouter(rl, authgin.RateLimitOpts{})

	w := do(r, http.MethodOptions, "/api/data", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("preflight status = %d", w.Code)
	}
	if len(rl.keys) != 0 {
		t.Errorf("limiter consulted for preflight: %v", rl.keys)
	}
}

func TestRateLimitCustomExemptList(t *testing.T) {
	rl := &stubLimiter{decision: ratelimit.Decision{Allowed: false, RetryAfter: time.Minute}}
	r := limitedRouter(rl, authgin.RateLimitOpts{ExemptPaths: []string{"/api/data"}})

	if w := do(r, http.MethodGet, "/api/data", "", nil); w.Code != http.StatusOK {
		t.Errorf("custom exempt path status = %d", w.Code)
	}
	// The defaults no longer apply once a custom list is set.
	if w := do(r, http.MethodGet, "/health", "", nil); w.Code != http.StatusTooManyRequests {
		t.Errorf("non-exempt path status = %d", w.Code)
	}
}
