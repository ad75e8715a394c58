package oidckit

import "errors"

// Verification failures are typed so transport can map them onto distinct
// HTTP statuses. Availability problems (ErrKeySetUnavailable) are never
// conflated with authentication failures.
var (
	// ErrKeySetUnavailable means the issuer's JWKS could not be fetched
	// (network error, timeout, malformed document, non-2xx). Treat as 503.
	ErrKeySetUnavailable = errors.New("oidckit: key set unavailable")

	// ErrKeyNotFound means the cached key set has no key matching the
	// token's declared kid. There is no fallback to trying other keys.
	ErrKeyNotFound = errors.New("oidckit: no signing key matches token kid")

	// ErrTokenMalformed means the compact token could not be parsed at all.
	ErrTokenMalformed = errors.New("oidckit: malformed token")

	// ErrSignatureInvalid covers signature mismatch and disallowed
	// signing algorithms.
	ErrSignatureInvalid = errors.New("oidckit: token signature invalid")

	// ErrTokenExpired covers exp in the past and nbf/iat in the future.
	ErrTokenExpired = errors.New("oidckit: token expired or not yet valid")

	// ErrClaimsInvalid covers issuer or audience mismatch.
	ErrClaimsInvalid = errors.New("oidckit: token claims invalid")
)
