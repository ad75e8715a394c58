package policy

import (
	"testing"

	"github.com/open-rails/gatekit/identity"
)

func authed(email string) identity.Identity {
	return identity.Identity{Method: identity.MethodRemote, Subject: "auth0|123", Email: email}
}

func TestRequireAuthenticated(t *testing.T) {
	p := New([]string{"admin@example.com"})

	if _, err := p.RequireAuthenticated(identity.Anonymous()); err != ErrAuthRequired {
		t.Errorf("anonymous: got %v, want ErrAuthRequired", err)
	}
	if _, err := p.RequireAuthenticated(authed("user@example.com")); err != nil {
		t.Errorf("authenticated: got %v", err)
	}
}

func TestRequireAdmin(t *testing.T) {
	p := New([]string{"Admin@Example.com", "second@example.com"})

	id, err := p.RequireAdmin(authed("ADMIN@example.COM"))
	if err != nil {
		t.Fatalf("case-insensitive match failed: %v", err)
	}
	if !id.IsAdmin {
		t.Error("IsAdmin not set on success")
	}

	if _, err := p.RequireAdmin(authed("user@example.com")); err != ErrAdminRequired {
		t.Errorf("non-admin: got %v, want ErrAdminRequired", err)
	}
	if _, err := p.RequireAdmin(identity.Anonymous()); err != ErrAuthRequired {
		t.Errorf("anonymous: got %v, want ErrAuthRequired", err)
	}
}

func TestRequireAdminNeverTrustsClaims(t *testing.T) {
	p := New([]string{"admin@example.com"})
	id := authed("user@example.com")
	// Even a token asserting an admin-looking permission set does not
	// grant admin; only the allow-list does.
	id.Permissions = []string{"admin", "superuser"}
	id.Scope = "admin"
	if _, err := p.RequireAdmin(id); err != ErrAdminRequired {
		t.Errorf("got %v, want ErrAdminRequired", err)
	}
}

func TestRequirePermission(t *testing.T) {
	p := New(nil)

	id := authed("user@example.com")
	id.Permissions = []string{"read:data"}
	id.Scope = "openid write:data"

	if _, err := p.RequirePermission(id, "read:data"); err != nil {
		t.Errorf("permission set: %v", err)
	}
	if _, err := p.RequirePermission(id, "write:data"); err != nil {
		t.Errorf("scope: %v", err)
	}
	if _, err := p.RequirePermission(id, "delete:data"); err != ErrPermissionDenied {
		t.Errorf("missing: got %v, want ErrPermissionDenied", err)
	}
	if _, err := p.RequirePermission(identity.Anonymous(), "read:data"); err != ErrAuthRequired {
		t.Errorf("anonymous: got %v, want ErrAuthRequired", err)
	}
}
