// Package oidckit validates bearer tokens minted by a remote OIDC issuer.
//
// Verification is strict: the signing key must match the token's declared
// kid exactly, only the single configured algorithm is accepted, and issuer,
// audience, and the temporal claims are all validated before any claim is
// trusted.
package oidckit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/sirupsen/logrus"

	"github.com/open-rails/gatekit/identity"
)

// SigningAlgorithm is the only JWS algorithm accepted from the issuer.
// Tokens declaring anything else are rejected outright, which closes the
// classic algorithm-confusion hole.
var SigningAlgorithm = jwa.RS256

// VerifierConfig describes the trusted issuer.
type VerifierConfig struct {
	// IssuerDomain is the bare domain of the issuer, e.g. "tenant.auth0.com";
	// the expected iss claim is "https://<domain>/". A full URL (with
	// scheme) is also accepted and used verbatim apart from the trailing
	// slash.
	IssuerDomain string
	// APIAudience is required on access tokens.
	APIAudience string
	// FrontendClientID marks ID tokens: a token whose audience equals this
	// client id is validated against it instead of APIAudience.
	FrontendClientID string
	// SkipAudienceCheck disables audience validation entirely. Development
	// escape hatch only; it is logged loudly at construction.
	SkipAudienceCheck bool
}

// Verifier validates remote tokens against the cached issuer key set.
type Verifier struct {
	keys *KeySetCache
	cfg  VerifierConfig
	iss  string
	now  func() time.Time
	log  logrus.FieldLogger
}

// VerifierOpt configures a Verifier.
type VerifierOpt func(*Verifier)

// WithVerifierClock injects the time source used for temporal claims.
func WithVerifierClock(now func() time.Time) VerifierOpt {
	return func(v *Verifier) { v.now = now }
}

// WithVerifierLogger sets the verifier's logger.
func WithVerifierLogger(log logrus.FieldLogger) VerifierOpt {
	return func(v *Verifier) { v.log = log }
}

// NewVerifier builds a verifier backed by keys.
func NewVerifier(keys *KeySetCache, cfg VerifierConfig, opts ...VerifierOpt) *Verifier {
	v := &Verifier{
		keys: keys,
		cfg:  cfg,
		iss:  issuerURL(cfg.IssuerDomain),
		now:  time.Now,
		log:  logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(v)
	}
	if cfg.SkipAudienceCheck {
		v.log.WithField("issuer", v.iss).Warn("oidckit: audience validation DISABLED (development escape hatch)")
	}
	return v
}

// Verify validates raw and projects its claims into an Identity.
//
// Failure modes are the typed errors in errors.go; no partial identity is
// ever returned. The only side effect is the (cached) key set fetch.
func (v *Verifier) Verify(ctx context.Context, raw string) (identity.Identity, error) {
	kid, err := v.declaredKeyID(raw)
	if err != nil {
		return identity.Identity{}, err
	}

	key, err := v.keys.Lookup(ctx, kid)
	if err != nil {
		return identity.Identity{}, err
	}

	audience, err := v.expectedAudience(raw)
	if err != nil {
		return identity.Identity{}, err
	}

	opts := []jwt.ParseOption{
		jwt.WithContext(ctx),
		jwt.WithKey(SigningAlgorithm, key),
		jwt.WithValidate(true),
		jwt.WithClock(jwt.ClockFunc(v.now)),
		jwt.WithIssuer(v.iss),
		jwt.WithRequiredClaim("exp"),
		jwt.WithRequiredClaim("iat"),
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}
	tok, err := jwt.Parse([]byte(raw), opts...)
	if err != nil {
		return identity.Identity{}, mapValidationError(err)
	}
	return projectClaims(tok), nil
}

func issuerURL(domain string) string {
	if strings.Contains(domain, "://") {
		return strings.TrimRight(domain, "/") + "/"
	}
	return "https://" + strings.Trim(domain, "/") + "/"
}

// declaredKeyID reads kid and algorithm from the protected header without
// verifying the signature.
func (v *Verifier) declaredKeyID(raw string) (string, error) {
	msg, err := jws.Parse([]byte(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
	sigs := msg.Signatures()
	if len(sigs) == 0 {
		return "", fmt.Errorf("%w: no signature", ErrTokenMalformed)
	}
	hdr := sigs[0].ProtectedHeaders()
	if alg := hdr.Algorithm(); alg != SigningAlgorithm {
		return "", fmt.Errorf("%w: algorithm %q not allowed", ErrSignatureInvalid, alg)
	}
	kid := hdr.KeyID()
	if kid == "" {
		return "", fmt.Errorf("%w: missing kid header", ErrTokenMalformed)
	}
	return kid, nil
}

// expectedAudience peeks at the unverified aud claim to decide which
// audience to require: tokens carrying the front-end client id are ID
// tokens, everything else must carry the API audience. The peeked claims
// are not trusted for anything beyond this branch. Returns "" when the
// audience check is disabled.
func (v *Verifier) expectedAudience(raw string) (string, error) {
	if v.cfg.SkipAudienceCheck {
		return "", nil
	}
	unverified, err := jwt.ParseInsecure([]byte(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
	aud := unverified.Audience()
	if len(aud) == 1 && v.cfg.FrontendClientID != "" && aud[0] == v.cfg.FrontendClientID {
		return v.cfg.FrontendClientID, nil
	}
	return v.cfg.APIAudience, nil
}

func mapValidationError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired()),
		errors.Is(err, jwt.ErrTokenNotYetValid()),
		errors.Is(err, jwt.ErrInvalidIssuedAt()):
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	case jwt.IsValidationError(err):
		// Issuer/audience mismatch or missing required claim.
		return fmt.Errorf("%w: %v", ErrClaimsInvalid, err)
	default:
		return fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}
}

// projectClaims maps verified claims onto an Identity. Admin status is a
// policy decision and is never derived from token claims.
func projectClaims(tok jwt.Token) identity.Identity {
	id := identity.Identity{
		Method:  identity.MethodRemote,
		Subject: tok.Subject(),
	}
	if raw, ok := tok.Get("email"); ok {
		if email, ok := raw.(string); ok {
			id.Email = email
		}
	}
	if raw, ok := tok.Get("email_verified"); ok {
		switch val := raw.(type) {
		case bool:
			id.EmailVerified = val
		case string:
			id.EmailVerified = strings.EqualFold(val, "true")
		}
	}
	if raw, ok := tok.Get("name"); ok {
		if name, ok := raw.(string); ok {
			id.Name = name
		}
	}
	if raw, ok := tok.Get("permissions"); ok {
		if items, ok := raw.([]interface{}); ok {
			for _, item := range items {
				if s, ok := item.(string); ok {
					id.Permissions = append(id.Permissions, s)
				}
			}
		}
	}
	if raw, ok := tok.Get("scope"); ok {
		if scope, ok := raw.(string); ok {
			id.Scope = scope
		}
	}
	return id
}
