// Package config loads gatekit settings from the environment.
//
// Values come from process env vars, optionally seeded from a .env file
// (development convenience; real deployments set env directly).
package config

import (
	"fmt"
	"strings"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Settings holds every knob the auth/admission core reads.
type Settings struct {
	// Remote issuer (Auth0-style). Domain only, no scheme.
	IssuerDomain string `env:"AUTH_ISSUER_DOMAIN"`
	// Audience expected on access tokens.
	APIAudience string `env:"AUTH_API_AUDIENCE"`
	// OAuth client_id of the front-end app; tokens carrying this audience
	// are treated as ID tokens.
	FrontendClientID string `env:"AUTH_FRONTEND_CLIENT_ID"`

	// Admin allow-list: one primary address plus optional extras.
	AdminEmail       string   `env:"ADMIN_EMAIL"`
	AdminEmailExtras []string `env:"ADMIN_EMAILS,default="`

	// Session cookie (HMAC token shared with the front-end middleware).
	SessionSecret     string `env:"ADMIN_SESSION_SECRET,default="`
	SessionCookieName string `env:"ADMIN_COOKIE_NAME,default=admin_session"`
	SessionTTLSeconds int    `env:"SESSION_TTL_SECONDS,default=3600"`

	// Optional bcrypt hash for the local admin password login fallback.
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH,default="`

	// Admission control.
	RateLimitRequests int      `env:"RATE_LIMIT_REQUESTS,default=100"`
	RateLimitWindow   int      `env:"RATE_LIMIT_WINDOW,default=60"`
	RateLimitExempt   []string `env:"RATE_LIMIT_EXEMPT_PATHS,default=/health;/;/docs"`

	Environment string `env:"ENVIRONMENT,default=development"`
	Debug       bool   `env:"DEBUG,default=false"`
}

// Load reads settings from the environment. A .env file in the working
// directory is applied first when present; missing files are not an error.
func Load() (*Settings, error) {
	_ = godotenv.Load()

	var s Settings
	if err := envdecode.Decode(&s); err != nil {
		return nil, fmt.Errorf("config: decode env: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// SkipAudienceCheck reports whether audience validation is disabled.
// Only possible in development with debug on; callers must log when this
// is active so it can never be enabled silently.
func (s *Settings) SkipAudienceCheck() bool {
	return s.Environment == "development" && s.Debug
}

// AdminEmails returns the full allow-list, lower-cased, primary first.
func (s *Settings) AdminEmails() []string {
	out := make([]string, 0, 1+len(s.AdminEmailExtras))
	if e := strings.ToLower(strings.TrimSpace(s.AdminEmail)); e != "" {
		out = append(out, e)
	}
	for _, e := range s.AdminEmailExtras {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}

func (s *Settings) validate() error {
	if s.Environment != "production" {
		return nil
	}
	if s.Debug {
		return fmt.Errorf("config: DEBUG must be off in production")
	}
	if len(s.SessionSecret) < 32 {
		return fmt.Errorf("config: ADMIN_SESSION_SECRET must be at least 32 characters in production")
	}
	if s.IssuerDomain == "" {
		return fmt.Errorf("config: AUTH_ISSUER_DOMAIN is required in production")
	}
	return nil
}
