// Package authtest provides a mock token issuer for testing code that
// verifies remote tokens. It runs an HTTP server exposing a JWKS document
// at /.well-known/jwks.json and signs RS256 tokens that validate against
// those keys, so integration tests never need a real identity provider.
//
//	issuer := authtest.NewIssuer("my-api")
//	defer issuer.Close()
//	cache := oidckit.NewKeySetCache(issuer.JWKSURL())
//	token := issuer.CreateToken("user-123", "test@example.com")
package authtest

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// JWK carries the minimal fields for an RSA public signing key.
type JWK struct {
	Kty string `json:"kty"`
	Use string `json:"use,omitempty"`
	Kid string `json:"kid,omitempty"`
	Alg string `json:"alg,omitempty"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// JWKS is the key set document served at the well-known path.
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// Issuer is a mock identity provider: one active RSA key, a JWKS endpoint,
// and helpers that mint tokens in the shapes verification code cares about.
type Issuer struct {
	mu       sync.Mutex
	server   *httptest.Server
	key      *rsa.PrivateKey
	kid      string
	audience string
	keySeq   int
}

// NewIssuer starts a mock issuer whose tokens carry audience by default.
// Call Close when done.
func NewIssuer(audience string) *Issuer {
	iss := &Issuer{audience: audience}
	iss.rotate()

	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/jwks.json", iss.handleJWKS)
	iss.server = httptest.NewServer(mux)
	return iss
}

// URL returns the issuer base URL. Tokens carry URL()+"/" as iss, matching
// how verifiers derive the issuer claim from a bare domain.
func (iss *Issuer) URL() string { return iss.server.URL }

// Domain returns the issuer host, for verifier configs that take a bare
// domain. Note the scheme is http for the test server, so verifiers built
// from Domain() must fetch keys via JWKSURL() instead of deriving it.
func (iss *Issuer) Domain() string {
	return iss.server.Listener.Addr().String()
}

// JWKSURL returns the key set endpoint.
func (iss *Issuer) JWKSURL() string { return iss.server.URL + "/.well-known/jwks.json" }

// Audience returns the default audience stamped on minted tokens.
func (iss *Issuer) Audience() string { return iss.audience }

// KID returns the active key id.
func (iss *Issuer) KID() string {
	iss.mu.Lock()
	defer iss.mu.Unlock()
	return iss.kid
}

// Close shuts down the JWKS server.
func (iss *Issuer) Close() { iss.server.Close() }

// RotateKey replaces the signing key. Tokens minted before rotation
// reference a kid that no longer appears in the JWKS, which is exactly the
// condition key-rotation tests need.
func (iss *Issuer) RotateKey() {
	iss.mu.Lock()
	defer iss.mu.Unlock()
	iss.rotate()
}

func (iss *Issuer) rotate() {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		panic("authtest: generate RSA key: " + err.Error())
	}
	iss.keySeq++
	iss.key = key
	iss.kid = "test-key-" + strconv.Itoa(iss.keySeq)
}

// CreateToken mints a signed token for subject and email with the default
// audience and a one hour expiry.
func (iss *Issuer) CreateToken(subject, email string) string {
	return iss.CreateTokenWithClaims(subject, email, nil)
}

// CreateTokenWithClaims mints a token and merges extra over the standard
// claims (sub, email, iss, aud, exp, iat), so any claim can be overridden.
func (iss *Issuer) CreateTokenWithClaims(subject, email string, extra map[string]any) string {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   subject,
		"email": email,
		"iss":   iss.URL() + "/",
		"aud":   iss.audience,
		"exp":   now.Add(time.Hour).Unix(),
		"iat":   now.Unix(),
	}
	for k, v := range extra {
		claims[k] = v
	}
	return iss.sign(claims, "")
}

// CreateTokenWithKid mints a token whose header declares kid regardless of
// the active key, for exercising key-not-found paths.
func (iss *Issuer) CreateTokenWithKid(subject, email, kid string) string {
	now := time.Now()
	return iss.sign(jwt.MapClaims{
		"sub":   subject,
		"email": email,
		"iss":   iss.URL() + "/",
		"aud":   iss.audience,
		"exp":   now.Add(time.Hour).Unix(),
		"iat":   now.Unix(),
	}, kid)
}

// CreateExpiredToken mints a token that expired an hour ago.
func (iss *Issuer) CreateExpiredToken(subject, email string) string {
	now := time.Now()
	return iss.CreateTokenWithClaims(subject, email, map[string]any{
		"exp": now.Add(-time.Hour).Unix(),
		"iat": now.Add(-2 * time.Hour).Unix(),
	})
}

func (iss *Issuer) sign(claims jwt.MapClaims, kid string) string {
	iss.mu.Lock()
	defer iss.mu.Unlock()
	if kid == "" {
		kid = iss.kid
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	signed, err := token.SignedString(iss.key)
	if err != nil {
		panic("authtest: sign token: " + err.Error())
	}
	return signed
}

// handleJWKS serves the key set with a stable ETag so conditional GETs work.
func (iss *Issuer) handleJWKS(w http.ResponseWriter, r *http.Request) {
	iss.mu.Lock()
	ks := JWKS{Keys: []JWK{rsaPublicToJWK(&iss.key.PublicKey, iss.kid)}}
	iss.mu.Unlock()

	b, _ := json.Marshal(ks)
	sum := sha256.Sum256(b)
	etag := "\"" + hex.EncodeToString(sum[:]) + "\""
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("ETag", etag)
	_, _ = w.Write(b)
}

func rsaPublicToJWK(pub *rsa.PublicKey, kid string) JWK {
	return JWK{
		Kty: "RSA",
		Use: "sig",
		Kid: kid,
		Alg: "RS256",
		N:   base64URLUint(pub.N),
		E:   base64URLUint(big.NewInt(int64(pub.E))),
	}
}

func base64URLUint(i *big.Int) string {
	b := i.Bytes()
	for len(b) > 0 && b[0] == 0x00 {
		b = b[1:]
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
