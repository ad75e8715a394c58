package identity

import (
	"context"

	"github.com/sirupsen/logrus"
)

// RemoteVerifier validates a bearer token issued by the remote identity
// provider. Implemented by oidckit.Verifier.
type RemoteVerifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// SessionVerifier validates the locally-issued session cookie and returns
// the email it asserts. Implemented by sessionkit.Codec.
type SessionVerifier interface {
	Verify(token string) (string, error)
}

// Resolver turns request credentials into an Identity by trying each
// configured method in priority order. The first method that succeeds wins;
// results are never merged across methods.
//
// A method failing is not an error at this layer: it downgrades that method
// to anonymous and the next one is tried. This keeps two authentication
// schemes concurrently valid during migration between them. Failures are
// logged at debug so they remain observable without surfacing to clients.
type Resolver struct {
	remote  RemoteVerifier
	session SessionVerifier
	order   []Method
	log     logrus.FieldLogger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithOrder overrides the method priority list. Unknown methods are ignored
// at resolve time.
func WithOrder(order ...Method) ResolverOption {
	return func(r *Resolver) { r.order = order }
}

// WithLogger sets the logger used for downgraded verification failures.
func WithLogger(log logrus.FieldLogger) ResolverOption {
	return func(r *Resolver) { r.log = log }
}

// NewResolver builds a resolver with the default priority: remote bearer
// token first, session cookie second.
func NewResolver(remote RemoteVerifier, session SessionVerifier, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		remote:  remote,
		session: session,
		order:   []Method{MethodRemote, MethodSession},
		log:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve derives the caller's identity from creds. It never returns an
// error: every per-method failure downgrades to trying the next method, and
// exhausting the list yields Anonymous.
func (r *Resolver) Resolve(ctx context.Context, creds Credentials) Identity {
	for _, m := range r.order {
		switch m {
		case MethodRemote:
			if r.remote == nil || creds.Bearer == "" {
				continue
			}
			id, err := r.remote.Verify(ctx, creds.Bearer)
			if err != nil {
				r.log.WithError(err).Debug("identity: bearer token rejected, trying next method")
				continue
			}
			return id
		case MethodSession:
			if r.session == nil || creds.SessionCookie == "" {
				continue
			}
			email, err := r.session.Verify(creds.SessionCookie)
			if err != nil || email == "" {
				if err != nil {
					r.log.WithError(err).Debug("identity: session cookie rejected")
				}
				continue
			}
			return Identity{Method: MethodSession, Email: email}
		}
	}
	return Anonymous()
}
