// Package sessionkit signs and verifies the compact admin session token
// shared with the front-end middleware.
//
// The wire format is a cross-language contract, not a JWT: the payload is
// JSON {"email":...,"iat":...,"exp":...,"v":1} in that field order,
// base64url-encoded without padding, and the signature is
// HMAC-SHA256(secret, encodedPayload), also base64url without padding.
// Token = "<payload>.<signature>". Both sides must produce byte-identical
// encodings, which is why this package uses the stdlib primitives directly.
package sessionkit

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// TokenVersion is the current payload schema version.
const TokenVersion = 1

var (
	// ErrSecretNotConfigured is returned by Sign when no shared secret is
	// set. A token must never be minted with an empty secret.
	ErrSecretNotConfigured = errors.New("sessionkit: shared secret not configured")

	// ErrInvalidToken covers every verification failure: bad signature,
	// malformed payload, expiry, missing email. Callers get no more detail
	// than that by design.
	ErrInvalidToken = errors.New("sessionkit: invalid session token")
)

type payload struct {
	Email    string `json:"email"`
	IssuedAt int64  `json:"iat"`
	Expires  int64  `json:"exp"`
	Version  int    `json:"v"`
}

// Codec signs and verifies session tokens with a single static secret.
// There is no rotation on this path; changing the secret invalidates every
// outstanding token. Codec is stateless and safe for concurrent use.
type Codec struct {
	secret []byte
	now    func() time.Time
}

// CodecOpt configures a Codec.
type CodecOpt func(*Codec)

// WithCodecClock injects the time source.
func WithCodecClock(now func() time.Time) CodecOpt {
	return func(c *Codec) { c.now = now }
}

// NewCodec builds a codec around the shared secret.
func NewCodec(secret string, opts ...CodecOpt) *Codec {
	c := &Codec{secret: []byte(secret), now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Sign mints a token asserting email for ttl.
func (c *Codec) Sign(email string, ttl time.Duration) (string, error) {
	if len(c.secret) == 0 {
		return "", ErrSecretNotConfigured
	}
	now := c.now().Unix()
	body, err := json.Marshal(payload{
		Email:    email,
		IssuedAt: now,
		Expires:  now + int64(ttl/time.Second),
		Version:  TokenVersion,
	})
	if err != nil {
		return "", err
	}
	encoded := base64.RawURLEncoding.EncodeToString(body)
	return encoded + "." + c.signature(encoded), nil
}

// Verify checks token and returns the email it asserts. The signature is
// recomputed and compared in constant time before the payload is parsed at
// all; a tampered token is rejected without ever being decoded.
func (c *Codec) Verify(token string) (string, error) {
	if len(c.secret) == 0 {
		return "", ErrInvalidToken
	}
	dot := strings.LastIndex(token, ".")
	if dot <= 0 || dot == len(token)-1 {
		return "", ErrInvalidToken
	}
	encoded, sig := token[:dot], token[dot+1:]
	if !hmac.Equal([]byte(c.signature(encoded)), []byte(sig)) {
		return "", ErrInvalidToken
	}

	body, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrInvalidToken
	}
	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return "", ErrInvalidToken
	}
	if c.now().Unix() >= p.Expires {
		return "", ErrInvalidToken
	}
	if p.Email == "" {
		return "", ErrInvalidToken
	}
	return p.Email, nil
}

func (c *Codec) signature(encodedPayload string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(encodedPayload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
