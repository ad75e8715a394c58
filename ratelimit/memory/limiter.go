// Package memorylimiter is a sharded in-memory sliding-window rate limiter.
package memorylimiter

import (
	"hash/fnv"
	"sync"
	"time"

	"github.com/open-rails/gatekit/ratelimit"
)

const shardCount = 64

// Config tunes the limiter. Zero values take the documented defaults.
type Config struct {
	// Limit is the max requests per key within Window (default 100).
	Limit int
	// Window is the trailing duration requests are counted over
	// (default 60s).
	Window time.Duration
	// IdleTTL is how long an untouched window survives before the sweep
	// removes it (default 5m). Without the sweep, one window per client
	// key would live forever.
	IdleTTL time.Duration
	// SweepInterval is how often the eviction sweep runs (default 1m).
	SweepInterval time.Duration
	// Clock is the injected time source (default time.Now).
	Clock func() time.Time
}

type window struct {
	// timestamps holds request times in Unix ms, oldest first.
	timestamps []int64
	lastSeen   int64
}

type shard struct {
	mu      sync.Mutex
	windows map[string]*window
}

// Limiter counts requests per client key over a trailing window. Keys are
// striped across fixed shards so unrelated clients never contend on the
// same lock; mutation of a single key's window is serialized by its shard.
//
// Ties at exactly the limit reject: with limit N, the N+1th request inside
// the window is the first one refused, and refused attempts are not
// recorded. Distinct keys are never merged or aliased.
type Limiter struct {
	limit   int
	win     time.Duration
	idleTTL time.Duration
	now     func() time.Time

	shards [shardCount]shard

	closeOnce sync.Once
	closed    chan struct{}
}

// New constructs a limiter and starts its idle-window eviction sweep.
// Call Close to stop the sweep.
func New(cfg Config) *Limiter {
	if cfg.Limit <= 0 {
		cfg.Limit = 100
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 5 * time.Minute
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	l := &Limiter{
		limit:   cfg.Limit,
		win:     cfg.Window,
		idleTTL: cfg.IdleTTL,
		now:     cfg.Clock,
		closed:  make(chan struct{}),
	}
	for i := range l.shards {
		l.shards[i].windows = make(map[string]*window)
	}
	go l.sweepLoop(cfg.SweepInterval)
	return l
}

// Allow records an admission attempt for key and returns the decision.
func (l *Limiter) Allow(key string) ratelimit.Decision {
	now := l.now()
	nowMs := now.UnixMilli()
	cutoff := nowMs - l.win.Milliseconds()
	reset := now.Add(l.win)

	sh := l.shard(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	w, ok := sh.windows[key]
	if !ok {
		w = &window{}
		sh.windows[key] = w
	}
	w.lastSeen = nowMs

	// Prune timestamps that fell out of the trailing window.
	ts := w.timestamps
	drop := 0
	for drop < len(ts) && ts[drop] < cutoff {
		drop++
	}
	if drop > 0 {
		ts = ts[drop:]
	}

	if len(ts) >= l.limit {
		// Reject without recording the attempt.
		w.timestamps = ts
		return ratelimit.Decision{
			Allowed:    false,
			Limit:      l.limit,
			Remaining:  0,
			RetryAfter: l.win,
			Reset:      reset,
		}
	}

	ts = append(ts, nowMs)
	w.timestamps = ts
	return ratelimit.Decision{
		Allowed:   true,
		Limit:     l.limit,
		Remaining: l.limit - len(ts),
		Reset:     reset,
	}
}

// Size returns the number of tracked client windows across all shards.
func (l *Limiter) Size() int {
	n := 0
	for i := range l.shards {
		sh := &l.shards[i]
		sh.mu.Lock()
		n += len(sh.windows)
		sh.mu.Unlock()
	}
	return n
}

// Close stops the eviction sweep. Allow remains usable afterwards.
func (l *Limiter) Close() {
	l.closeOnce.Do(func() { close(l.closed) })
}

func (l *Limiter) shard(key string) *shard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return &l.shards[h.Sum32()%shardCount]
}

func (l *Limiter) sweepLoop(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-l.closed:
			return
		case <-t.C:
			l.sweep()
		}
	}
}

// sweep drops windows whose key has been idle past IdleTTL. Pruning inside
// Allow only bounds a live window's contents; this bounds the window count
// for clients that went away.
func (l *Limiter) sweep() {
	cutoff := l.now().UnixMilli() - l.idleTTL.Milliseconds()
	for i := range l.shards {
		sh := &l.shards[i]
		sh.mu.Lock()
		for key, w := range sh.windows {
			if w.lastSeen < cutoff {
				delete(sh.windows, key)
			}
		}
		sh.mu.Unlock()
	}
}
