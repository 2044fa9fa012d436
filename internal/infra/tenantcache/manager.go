// Package tenantcache mantiene un valor construido por tenant (key = subdomain),
// con capacidad acotada (LRU), expiración por TTL y construcción single-flight.
package tenantcache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/zonetoken/internal/metrics"
	"github.com/dropDatabas3/zonetoken/internal/observability/logger"
)

var ErrInvalidOptions = errors.New("tenantcache: invalid options")

// BuildFunc construye el valor para key. Se llama a lo sumo una vez en paralelo
// por key; si falla, el error llega a todos los que esperaban y no se cachea.
type BuildFunc[V any] func(ctx context.Context, tenantID, key string) (V, error)

// Options se fijan al construir el Manager.
type Options struct {
	TTL        time.Duration // > 0; entradas más viejas se reconstruyen
	MaxEntries int           // > 0; al llenarse se desaloja la menos usada
	Now        func() time.Time
	Logger     *zap.Logger
}

// Stats es una foto de los contadores del cache.
type Stats struct {
	Hits          int64
	Misses        int64
	Builds        int64
	BuildFailures int64
	Evictions     int64
	Size          int
	MaxSize       int
}

type entry[V any] struct {
	value     V
	createdAt time.Time
}

// Manager es el cache de valores por tenant.
type Manager[V any] struct {
	build BuildFunc[V]
	ttl   time.Duration
	max   int
	now   func() time.Time
	log   *zap.Logger

	entries *lru.Cache[string, entry[V]]
	sf      singleflight.Group

	hits, misses, builds, buildFailures, evictions atomic.Int64
}

// New crea un Manager. TTL y MaxEntries son obligatorios y positivos.
func New[V any](opts Options, build BuildFunc[V]) (*Manager[V], error) {
	if opts.TTL <= 0 {
		return nil, fmt.Errorf("%w: ttl must be positive", ErrInvalidOptions)
	}
	if opts.MaxEntries <= 0 {
		return nil, fmt.Errorf("%w: max entries must be positive", ErrInvalidOptions)
	}
	if build == nil {
		return nil, fmt.Errorf("%w: build func is required", ErrInvalidOptions)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	m := &Manager[V]{
		build: build,
		ttl:   opts.TTL,
		max:   opts.MaxEntries,
		now:   opts.Now,
		log:   logger.OrNamed(opts.Logger, "tenantcache"),
	}
	entries, err := lru.NewWithEvict(opts.MaxEntries, m.onEvict)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	m.entries = entries
	return m, nil
}

func (m *Manager[V]) onEvict(key string, _ entry[V]) {
	m.evictions.Add(1)
	metrics.DecoderCacheEvictions.Inc()
	m.log.Debug("tenant entry evicted", logger.Subdomain(key))
}

// lookup devuelve la entrada si existe y no expiró. Una entrada expirada se
// trata como ausente; la pisa el próximo build o la desaloja el LRU.
func (m *Manager[V]) lookup(key string) (V, bool) {
	e, ok := m.entries.Get(key)
	if !ok || m.now().Sub(e.createdAt) >= m.ttl {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Resolve devuelve el valor vivo para key o lo construye con build(ctx, tenantID, key).
// Llamadas concurrentes para la misma key esperan un único build; keys distintas
// no se bloquean entre sí.
func (m *Manager[V]) Resolve(ctx context.Context, key, tenantID string) (V, error) {
	if v, ok := m.lookup(key); ok {
		m.hits.Add(1)
		metrics.DecoderCacheHits.Inc()
		return v, nil
	}
	m.misses.Add(1)
	metrics.DecoderCacheMisses.Inc()

	res, err, _ := m.sf.Do(key, func() (any, error) {
		// otro flight pudo terminar entre el lookup y el Do
		if v, ok := m.lookup(key); ok {
			return v, nil
		}
		v, err := m.build(ctx, tenantID, key)
		if err != nil {
			m.buildFailures.Add(1)
			metrics.DecoderCacheBuilds.WithLabelValues("error").Inc()
			m.log.Debug("tenant build failed", logger.Subdomain(key), logger.ZoneID(tenantID), logger.Err(err))
			return nil, err
		}
		m.builds.Add(1)
		metrics.DecoderCacheBuilds.WithLabelValues("ok").Inc()
		m.entries.Add(key, entry[V]{value: v, createdAt: m.now()})
		m.log.Debug("tenant entry built", logger.Subdomain(key), logger.ZoneID(tenantID))
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

// Len devuelve la cantidad de entradas (incluye expiradas aún no pisadas).
func (m *Manager[V]) Len() int { return m.entries.Len() }

// Stats devuelve una foto de los contadores.
func (m *Manager[V]) Stats() Stats {
	return Stats{
		Hits:          m.hits.Load(),
		Misses:        m.misses.Load(),
		Builds:        m.builds.Load(),
		BuildFailures: m.buildFailures.Load(),
		Evictions:     m.evictions.Load(),
		Size:          m.entries.Len(),
		MaxSize:       m.max,
	}
}
