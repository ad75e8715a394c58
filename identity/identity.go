// Package identity defines the authenticated-caller model and the resolver
// that derives it from inbound request credentials.
package identity

// Method identifies which credential path produced an Identity.
type Method int

const (
	// MethodNone marks an anonymous caller.
	MethodNone Method = iota
	// MethodRemote marks an identity backed by a verified issuer token.
	MethodRemote
	// MethodSession marks an identity backed by the local session cookie.
	MethodSession
)

func (m Method) String() string {
	switch m {
	case MethodRemote:
		return "remote"
	case MethodSession:
		return "session"
	default:
		return "none"
	}
}

// Identity is the per-request view of the caller. It is derived, never
// stored; a fresh value is constructed on every request.
//
// IsAdmin is only ever set by the access policy, not during verification.
type Identity struct {
	Method        Method
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Permissions   []string
	Scope         string
	IsAdmin       bool
}

// Anonymous returns the zero identity for unauthenticated callers.
func Anonymous() Identity {
	return Identity{Method: MethodNone}
}

// IsAnonymous reports whether no credential path produced an identity.
func (id Identity) IsAnonymous() bool {
	return id.Method == MethodNone
}

// Credentials carries the raw credential material extracted from a request.
// Either field may be empty.
type Credentials struct {
	Bearer        string
	SessionCookie string
}
