// Package redislimiter is a Redis-backed sliding-window rate limiter for
// multi-node deployments. Each client key maps to a ZSET of request
// timestamps; key expiry bounds storage server-side, so no sweep is needed.
package redislimiter

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/open-rails/gatekit/ratelimit"
)

// Config tunes the limiter.
type Config struct {
	// Limit is the max requests per key within Window (default 100).
	Limit int
	// Window is the trailing duration (default 60s).
	Window time.Duration
	// KeyPrefix namespaces the ZSET keys (default "gatekit:rl:").
	KeyPrefix string
	// FailOpen admits requests when Redis is unreachable (default via
	// NewFailOpen). Admission control degrading should not take the site
	// down with it; the failure is logged.
	FailOpen bool
	// Logger for Redis failures (default logrus standard logger).
	Logger logrus.FieldLogger
}

// Limiter applies the same sliding-window policy as memorylimiter, shared
// across processes through Redis.
type Limiter struct {
	rdb    *redis.Client
	limit  int
	win    time.Duration
	prefix string
	open   bool
	log    logrus.FieldLogger
}

// New constructs a limiter over rdb.
func New(rdb *redis.Client, cfg Config) *Limiter {
	if cfg.Limit <= 0 {
		cfg.Limit = 100
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "gatekit:rl:"
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	return &Limiter{
		rdb:    rdb,
		limit:  cfg.Limit,
		win:    cfg.Window,
		prefix: cfg.KeyPrefix,
		open:   cfg.FailOpen,
		log:    cfg.Logger,
	}
}

// Allow records an admission attempt for key and returns the decision.
func (l *Limiter) Allow(key string) ratelimit.Decision {
	ctx := context.Background()
	now := time.Now()
	nowMs := now.UnixMilli()
	cutoff := nowMs - l.win.Milliseconds()
	reset := now.Add(l.win)
	zkey := l.prefix + key

	// Prune, then count. The denied attempt is never added, matching the
	// in-memory limiter's semantics.
	pipe := l.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, zkey, "0", "("+strconv.FormatInt(cutoff, 10))
	countCmd := pipe.ZCard(ctx, zkey)
	if _, err := pipe.Exec(ctx); err != nil {
		return l.unavailable(err, reset)
	}
	count := int(countCmd.Val())
	if count >= l.limit {
		return ratelimit.Decision{
			Allowed:    false,
			Limit:      l.limit,
			Remaining:  0,
			RetryAfter: l.win,
			Reset:      reset,
		}
	}

	add := l.rdb.TxPipeline()
	add.ZAdd(ctx, zkey, redis.Z{Score: float64(nowMs), Member: nowMs})
	add.Expire(ctx, zkey, l.win+time.Second)
	if _, err := add.Exec(ctx); err != nil {
		return l.unavailable(err, reset)
	}

	return ratelimit.Decision{
		Allowed:   true,
		Limit:     l.limit,
		Remaining: l.limit - count - 1,
		Reset:     reset,
	}
}

func (l *Limiter) unavailable(err error, reset time.Time) ratelimit.Decision {
	l.log.WithError(err).Warn("redislimiter: redis unavailable")
	if l.open {
		return ratelimit.Decision{Allowed: true, Limit: l.limit, Remaining: 0, Reset: reset}
	}
	return ratelimit.Decision{
		Allowed:    false,
		Limit:      l.limit,
		Remaining:  0,
		RetryAfter: l.win,
		Reset:      reset,
	}
}
