package jwt

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/zonetoken/internal/cache"
	"github.com/dropDatabas3/zonetoken/internal/metrics"
	"github.com/dropDatabas3/zonetoken/internal/observability/logger"
)

// KeySetCache cachea el JWKS crudo por URL en un cache.Client (memory o redis).
// Descargas concurrentes para la misma URL se colapsan en una sola.
type KeySetCache struct {
	store    cache.Client
	fetcher  Fetcher
	ttl      time.Duration
	cooldown time.Duration
	log      *zap.Logger
	now      func() time.Time

	sf singleflight.Group

	mu          sync.Mutex
	lastRefresh map[string]time.Time // url -> último refresh forzado
	parsed      map[string]parsedKeySet
}

// parsedKeySet memoiza el parse del JWKS crudo; se invalida cuando cambian los bytes.
type parsedKeySet struct {
	raw string
	ks  *KeySet
}

// KeySetCacheConfig configura NewKeySetCache.
type KeySetCacheConfig struct {
	Store   cache.Client  // requerido
	Fetcher Fetcher       // requerido
	TTL     time.Duration // default 10m
	// RefreshCooldown acota los refresh forzados por kid desconocido. Default 30s.
	RefreshCooldown time.Duration
	Logger          *zap.Logger
	Now             func() time.Time
}

func NewKeySetCache(cfg KeySetCacheConfig) *KeySetCache {
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Minute
	}
	if cfg.RefreshCooldown <= 0 {
		cfg.RefreshCooldown = 30 * time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &KeySetCache{
		store:       cfg.Store,
		fetcher:     cfg.Fetcher,
		ttl:         cfg.TTL,
		cooldown:    cfg.RefreshCooldown,
		log:         logger.OrNamed(cfg.Logger, "keyset"),
		now:         cfg.Now,
		lastRefresh: make(map[string]time.Time),
		parsed:      make(map[string]parsedKeySet),
	}
}

// Get devuelve el key set de url, desde cache o descargándolo.
// Los errores de descarga envuelven ErrKeySetUnavailable.
func (c *KeySetCache) Get(ctx context.Context, url string) (*KeySet, error) {
	raw, err := c.store.Get(ctx, url)
	switch {
	case err == nil:
		if ks, perr := c.parse(url, raw); perr == nil {
			return ks, nil
		}
		// entrada corrupta: se descarta y se vuelve a bajar
		_ = c.store.Delete(ctx, url)
	case !cache.IsNotFound(err):
		// backend caído: seguimos sin cache
		c.log.Warn("keyset cache get failed", logger.KeySetURL(url), logger.Err(err))
	}
	return c.load(ctx, url)
}

// Refresh fuerza una nueva descarga salvo que la última haya sido hace menos
// que el cooldown; en ese caso devuelve lo que haya (refreshed=false).
func (c *KeySetCache) Refresh(ctx context.Context, url string) (ks *KeySet, refreshed bool, err error) {
	now := c.now()
	c.mu.Lock()
	last, seen := c.lastRefresh[url]
	allowed := !seen || now.Sub(last) >= c.cooldown
	if allowed {
		c.lastRefresh[url] = now
	}
	c.mu.Unlock()

	if !allowed {
		ks, err = c.Get(ctx, url)
		return ks, false, err
	}
	_ = c.store.Delete(ctx, url)
	ks, err = c.load(ctx, url)
	return ks, true, err
}

func (c *KeySetCache) load(ctx context.Context, url string) (*KeySet, error) {
	v, err, _ := c.sf.Do(url, func() (any, error) {
		data, err := c.fetcher.Fetch(ctx, url)
		if err != nil {
			metrics.KeySetFetches.WithLabelValues("error").Inc()
			c.log.Warn("keyset fetch failed", logger.KeySetURL(url), logger.Err(err))
			return nil, err
		}
		ks, err := c.parse(url, string(data))
		if err != nil {
			metrics.KeySetFetches.WithLabelValues("invalid").Inc()
			c.log.Warn("keyset unparsable", logger.KeySetURL(url), logger.Err(err))
			return nil, fmt.Errorf("%w: %v", ErrKeySetUnavailable, err)
		}
		metrics.KeySetFetches.WithLabelValues("ok").Inc()
		if err := c.store.Set(ctx, url, string(data), c.ttl); err != nil {
			c.log.Warn("keyset cache set failed", logger.KeySetURL(url), logger.Err(err))
		}
		c.log.Debug("keyset fetched", logger.KeySetURL(url), logger.Count(ks.Len()))
		return ks, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*KeySet), nil
}

// parse devuelve el KeySet de raw, reusando el último parse de url si los bytes
// no cambiaron.
func (c *KeySetCache) parse(url, raw string) (*KeySet, error) {
	c.mu.Lock()
	p, ok := c.parsed[url]
	c.mu.Unlock()
	if ok && p.raw == raw {
		return p.ks, nil
	}

	ks, err := ParseKeySet([]byte(raw))
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.parsed[url] = parsedKeySet{raw: raw, ks: ks}
	c.mu.Unlock()
	return ks, nil
}
