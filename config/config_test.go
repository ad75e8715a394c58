package config

import (
	"reflect"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_ISSUER_DOMAIN", "tenant.auth0.com")
	t.Setenv("ADMIN_EMAIL", "admin@example.com")

	s, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.SessionCookieName != "admin_session" {
		t.Errorf("cookie name = %q", s.SessionCookieName)
	}
	if s.SessionTTLSeconds != 3600 {
		t.Errorf("session ttl = %d", s.SessionTTLSeconds)
	}
	if s.RateLimitRequests != 100 || s.RateLimitWindow != 60 {
		t.Errorf("rate limit = %d/%ds", s.RateLimitRequests, s.RateLimitWindow)
	}
	if want := []string{"/health", "/", "/docs"}; !reflect.DeepEqual(s.RateLimitExempt, want) {
		t.Errorf("exempt paths = %v", s.RateLimitExempt)
	}
	if s.Environment != "development" || s.Debug {
		t.Errorf("environment = %q debug = %v", s.Environment, s.Debug)
	}
}

func TestAdminEmails(t *testing.T) {
	s := &Settings{
		AdminEmail:       " Admin@Example.COM ",
		AdminEmailExtras: []string{"Second@example.com", "  ", "third@example.com"},
	}
	want := []string{"admin@example.com", "second@example.com", "third@example.com"}
	if got := s.AdminEmails(); !reflect.DeepEqual(got, want) {
		t.Errorf("AdminEmails() = %v, want %v", got, want)
	}
}

func TestAdminEmailsFromEnvList(t *testing.T) {
	t.Setenv("ADMIN_EMAIL", "admin@example.com")
	t.Setenv("ADMIN_EMAILS", "a@example.com;b@example.com")

	s, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []string{"admin@example.com", "a@example.com", "b@example.com"}
	if got := s.AdminEmails(); !reflect.DeepEqual(got, want) {
		t.Errorf("AdminEmails() = %v, want %v", got, want)
	}
}

func TestSkipAudienceCheck(t *testing.T) {
	cases := []struct {
		env   string
		debug bool
		want  bool
	}{
		{"development", true, true},
		{"development", false, false},
		{"production", true, false},
		{"staging", true, false},
	}
	for _, tc := range cases {
		s := &Settings{Environment: tc.env, Debug: tc.debug}
		if got := s.SkipAudienceCheck(); got != tc.want {
			t.Errorf("env=%s debug=%v: got %v, want %v", tc.env, tc.debug, got, tc.want)
		}
	}
}

func TestProductionValidation(t *testing.T) {
	base := func(t *testing.T) {
		t.Setenv("ENVIRONMENT", "production")
		t.Setenv("AUTH_ISSUER_DOMAIN", "tenant.auth0.com")
		t.Setenv("ADMIN_EMAIL", "admin@example.com")
		t.Setenv("ADMIN_SESSION_SECRET", "0123456789abcdef0123456789abcdef")
	}

	t.Run("valid", func(t *testing.T) {
		base(t)
		if _, err := Load(); err != nil {
			t.Errorf("load: %v", err)
		}
	})
	t.Run("debug rejected", func(t *testing.T) {
		base(t)
		t.Setenv("DEBUG", "true")
		if _, err := Load(); err == nil {
			t.Error("DEBUG=true accepted in production")
		}
	})
	t.Run("short secret rejected", func(t *testing.T) {
		base(t)
		t.Setenv("ADMIN_SESSION_SECRET", "short")
		if _, err := Load(); err == nil {
			t.Error("short session secret accepted in production")
		}
	})
	t.Run("issuer required", func(t *testing.T) {
		base(t)
		t.Setenv("AUTH_ISSUER_DOMAIN", "")
		if _, err := Load(); err == nil {
			t.Error("empty issuer domain accepted in production")
		}
	})
}
