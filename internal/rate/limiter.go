// Package rate implementa un rate limiter de ventana fija (memory o redis).
package rate

import (
	"context"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	rdb "github.com/redis/go-redis/v9"
)

type Result struct {
	Allowed     bool
	Remaining   int64
	RetryAfter  time.Duration
	CurrentHits int64
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// Config del limiter. Kind vacío => memory.
type Config struct {
	Kind   string // memory | redis
	Max    int
	Window time.Duration
	Prefix string

	// redis
	Addr     string
	Password string
	DB       int
}

// New crea el limiter según cfg.Kind.
func New(cfg Config) (Limiter, error) {
	if cfg.Max <= 0 || cfg.Window <= 0 {
		return nil, fmt.Errorf("rate: max and window must be positive")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Kind)) {
	case "", "memory":
		return NewMemoryLimiter(cfg.Max, cfg.Window), nil
	case "redis":
		client := rdb.NewClient(&rdb.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
		return NewRedisLimiter(client, cfg.Prefix, cfg.Max, cfg.Window), nil
	default:
		return nil, fmt.Errorf("rate: unsupported kind %q", cfg.Kind)
	}
}

// windowKey arma la key del bucket de la ventana que contiene now.
func windowKey(prefix, key string, now time.Time, window time.Duration) (string, time.Duration) {
	start := now.Truncate(window)
	k := fmt.Sprintf("%s%s:%d", prefix, strings.ReplaceAll(key, " ", "_"), start.Unix())
	return k, start.Add(window).Sub(now)
}

func result(hits, max int64, left time.Duration) Result {
	res := Result{Allowed: hits <= max, CurrentHits: hits, Remaining: max - hits}
	if res.Remaining < 0 {
		res.Remaining = 0
	}
	if !res.Allowed {
		res.RetryAfter = left
	}
	return res
}

// MemoryLimiter: ventana fija in-process sobre go-cache (el janitor limpia ventanas viejas).
type MemoryLimiter struct {
	c      *gocache.Cache
	max    int64
	window time.Duration
	now    func() time.Time
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		c:      gocache.New(window, 2*window),
		max:    int64(max),
		window: window,
		now:    time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	k, left := windowKey("", key, l.now().UTC(), l.window)
	// Add falla si ya existe; en ese caso incrementamos
	if err := l.c.Add(k, int64(1), l.window); err == nil {
		return result(1, l.max, left), nil
	}
	hits, err := l.c.IncrementInt64(k, 1)
	if err != nil {
		// la ventana expiró entre Add e Increment
		l.c.Set(k, int64(1), l.window)
		hits = 1
	}
	return result(hits, l.max, left), nil
}

// RedisLimiter: fixed window sencillo (INCR + EXPIRE), compartido entre réplicas.
type RedisLimiter struct {
	Client rdb.Cmdable
	Prefix string
	Max    int64
	Window time.Duration
}

func NewRedisLimiter(client rdb.Cmdable, prefix string, max int, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "zonetoken:rl:"
	}
	return &RedisLimiter{Client: client, Prefix: prefix, Max: int64(max), Window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	k, left := windowKey(l.Prefix, key, time.Now().UTC(), l.Window)

	pipe := l.Client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, l.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, err
	}
	return result(incr.Val(), l.Max, left), nil
}
