// Package policy makes authorization decisions over a resolved identity.
//
// Who the caller is (identity) and what they may do (policy) are kept
// separate: admin status comes only from the configured allow-list, never
// from token claims, even when a token carries role claims.
package policy

import (
	"errors"
	"strings"

	"github.com/open-rails/gatekit/identity"
)

var (
	// ErrAuthRequired means no authenticated identity was presented.
	ErrAuthRequired = errors.New("policy: authentication required")

	// ErrAdminRequired means the identity is authenticated but its email
	// is not on the admin allow-list.
	ErrAdminRequired = errors.New("policy: admin access required")

	// ErrPermissionDenied means a required permission is missing from
	// both the permission set and the scope.
	ErrPermissionDenied = errors.New("policy: permission denied")
)

// Policy holds the authorization configuration. All checks are terminal:
// a failure fails the request, with no retry or partial access.
type Policy struct {
	admins map[string]struct{}
}

// New builds a policy from the admin allow-list (matched case-insensitively).
func New(adminEmails []string) *Policy {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			admins[e] = struct{}{}
		}
	}
	return &Policy{admins: admins}
}

// IsAdminEmail reports allow-list membership.
func (p *Policy) IsAdminEmail(email string) bool {
	_, ok := p.admins[strings.ToLower(email)]
	return ok
}

// RequireAuthenticated passes any non-anonymous identity through.
func (p *Policy) RequireAuthenticated(id identity.Identity) (identity.Identity, error) {
	if id.IsAnonymous() {
		return identity.Identity{}, ErrAuthRequired
	}
	return id, nil
}

// RequireAdmin passes an authenticated identity whose email is on the
// allow-list, with IsAdmin set. This is the sole admin mechanism.
func (p *Policy) RequireAdmin(id identity.Identity) (identity.Identity, error) {
	id, err := p.RequireAuthenticated(id)
	if err != nil {
		return identity.Identity{}, err
	}
	if !p.IsAdminEmail(id.Email) {
		return identity.Identity{}, ErrAdminRequired
	}
	id.IsAdmin = true
	return id, nil
}

// RequirePermission passes an authenticated identity holding name either in
// its permission set or in its whitespace-delimited scope. Either location
// satisfies the requirement.
func (p *Policy) RequirePermission(id identity.Identity, name string) (identity.Identity, error) {
	id, err := p.RequireAuthenticated(id)
	if err != nil {
		return identity.Identity{}, err
	}
	for _, perm := range id.Permissions {
		if perm == name {
			return id, nil
		}
	}
	for _, scope := range strings.Fields(id.Scope) {
		if scope == name {
			return id, nil
		}
	}
	return identity.Identity{}, ErrPermissionDenied
}
