package oidckit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
)

const (
	// DefaultFetchTimeout bounds a single JWKS fetch.
	DefaultFetchTimeout = 10 * time.Second
	// DefaultKeySetTTL is how long a fetched key set is served before a
	// refresh, so issuer key rotation is picked up without a restart.
	DefaultKeySetTTL = 24 * time.Hour
)

// FetchFunc retrieves the full key set from url.
type FetchFunc func(ctx context.Context, url string) (jwk.Set, error)

// JWKSURL returns the well-known JWKS location for an issuer domain.
func JWKSURL(issuerDomain string) string {
	return "https://" + strings.Trim(issuerDomain, "/") + "/.well-known/jwks.json"
}

// KeySetCache is a single-slot cache of the issuer's public signing keys.
//
// The cached set is replaced wholesale on refresh; readers always observe
// either the previous complete set or the new one. Concurrent callers on a
// cold or expired cache share a single in-flight fetch. Clock and fetch are
// injectable so expiry and refresh are testable deterministically.
type KeySetCache struct {
	url     string
	ttl     time.Duration
	timeout time.Duration
	now     func() time.Time
	fetch   FetchFunc

	mu        sync.Mutex
	set       jwk.Set
	fetchedAt time.Time
	inflight  *fetchResult
}

type fetchResult struct {
	done chan struct{}
	set  jwk.Set
	err  error
}

// CacheOpt configures a KeySetCache.
type CacheOpt func(*KeySetCache)

// WithTTL overrides the cached key set lifetime.
func WithTTL(ttl time.Duration) CacheOpt {
	return func(c *KeySetCache) { c.ttl = ttl }
}

// WithClock injects the time source.
func WithClock(now func() time.Time) CacheOpt {
	return func(c *KeySetCache) { c.now = now }
}

// WithFetchFunc injects the fetch implementation.
func WithFetchFunc(fn FetchFunc) CacheOpt {
	return func(c *KeySetCache) { c.fetch = fn }
}

// WithFetchTimeout overrides the per-fetch deadline.
func WithFetchTimeout(d time.Duration) CacheOpt {
	return func(c *KeySetCache) { c.timeout = d }
}

// NewKeySetCache builds a cache for the JWKS document at jwksURL.
func NewKeySetCache(jwksURL string, opts ...CacheOpt) *KeySetCache {
	c := &KeySetCache{
		url:     jwksURL,
		ttl:     DefaultKeySetTTL,
		timeout: DefaultFetchTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.fetch == nil {
		client := &http.Client{Timeout: c.timeout}
		c.fetch = func(ctx context.Context, url string) (jwk.Set, error) {
			return jwk.Fetch(ctx, url, jwk.WithHTTPClient(client))
		}
	}
	return c
}

// Get returns the cached key set, fetching it first when absent or past its
// TTL. All failure modes surface as ErrKeySetUnavailable.
func (c *KeySetCache) Get(ctx context.Context) (jwk.Set, error) {
	c.mu.Lock()
	if c.set != nil && c.now().Sub(c.fetchedAt) < c.ttl {
		set := c.set
		c.mu.Unlock()
		return set, nil
	}
	if fr := c.inflight; fr != nil {
		c.mu.Unlock()
		select {
		case <-fr.done:
			return fr.set, fr.err
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrKeySetUnavailable, ctx.Err())
		}
	}
	fr := &fetchResult{done: make(chan struct{})}
	c.inflight = fr
	c.mu.Unlock()

	// The fetch is detached from the initiating caller's context so that
	// one caller cancelling does not fail every waiter sharing the fetch.
	fctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	set, err := c.fetch(fctx, c.url)

	c.mu.Lock()
	c.inflight = nil
	if err != nil {
		fr.err = fmt.Errorf("%w: %v", ErrKeySetUnavailable, err)
	} else {
		c.set = set
		c.fetchedAt = c.now()
		fr.set = set
	}
	c.mu.Unlock()
	close(fr.done)
	return fr.set, fr.err
}

// Lookup resolves a signing key by exact kid match. A missing entry is
// ErrKeyNotFound, distinct from transport failure.
func (c *KeySetCache) Lookup(ctx context.Context, kid string) (jwk.Key, error) {
	set, err := c.Get(ctx)
	if err != nil {
		return nil, err
	}
	key, ok := set.LookupKeyID(kid)
	if !ok {
		return nil, fmt.Errorf("%w: kid %q", ErrKeyNotFound, kid)
	}
	return key, nil
}

// Invalidate drops the cached set so the next Get fetches fresh keys.
func (c *KeySetCache) Invalidate() {
	c.mu.Lock()
	c.set = nil
	c.fetchedAt = time.Time{}
	c.mu.Unlock()
}

type discoveryDoc struct {
	Issuer  string `json:"issuer"`
	JWKSURI string `json:"jwks_uri"`
}

// DiscoverJWKSURL resolves the jwks_uri advertised in the issuer's OIDC
// discovery document. Callers that know the issuer follows the well-known
// layout can skip discovery and use JWKSURL directly.
func DiscoverJWKSURL(ctx context.Context, issuer string) (string, error) {
	discoveryURL := strings.TrimRight(issuer, "/") + "/.well-known/openid-configuration"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, discoveryURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("oidckit: discovery failed: %s", resp.Status)
	}
	var doc discoveryDoc
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return "", err
	}
	if doc.JWKSURI == "" {
		return "", errors.New("oidckit: discovery document missing jwks_uri")
	}
	return doc.JWKSURI, nil
}
