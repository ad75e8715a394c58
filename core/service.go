// Package core wires the verification, session, and policy pieces into the
// service object the HTTP handlers operate on.
package core

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/open-rails/gatekit/config"
	"github.com/open-rails/gatekit/identity"
	oidckit "github.com/open-rails/gatekit/oidc"
	"github.com/open-rails/gatekit/policy"
	sessionkit "github.com/open-rails/gatekit/session"
)

// Service bundles the auth core dependencies for the transport layer.
type Service struct {
	Verifier *oidckit.Verifier
	Sessions *sessionkit.Codec
	Resolver *identity.Resolver
	Policy   *policy.Policy
	Events   AuthEventLogger

	// Session cookie parameters.
	CookieName string
	SessionTTL time.Duration
	// SecureCookies should only be false in local development.
	SecureCookies bool

	// Optional bcrypt hash enabling the local admin password login.
	AdminPasswordHash string
}

// NewService assembles the full dependency graph from settings. The key
// set cache, verifier, resolver, and policy are all owned here rather than
// living in package-level state.
func NewService(cfg *config.Settings, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	keys := oidckit.NewKeySetCache(oidckit.JWKSURL(cfg.IssuerDomain))
	verifier := oidckit.NewVerifier(keys, oidckit.VerifierConfig{
		IssuerDomain:      cfg.IssuerDomain,
		APIAudience:       cfg.APIAudience,
		FrontendClientID:  cfg.FrontendClientID,
		SkipAudienceCheck: cfg.SkipAudienceCheck(),
	}, oidckit.WithVerifierLogger(log))
	sessions := sessionkit.NewCodec(cfg.SessionSecret)
	resolver := identity.NewResolver(verifier, sessions, identity.WithLogger(log))

	return &Service{
		Verifier:          verifier,
		Sessions:          sessions,
		Resolver:          resolver,
		Policy:            policy.New(cfg.AdminEmails()),
		Events:            NewLogrusAuthEvents(log),
		CookieName:        cfg.SessionCookieName,
		SessionTTL:        time.Duration(cfg.SessionTTLSeconds) * time.Second,
		SecureCookies:     cfg.Environment == "production",
		AdminPasswordHash: cfg.AdminPasswordHash,
	}
}
