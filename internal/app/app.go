// Package app arma el grafo de dependencias a partir de la config:
// store de key sets -> KeySetCache -> Verifier -> Decoder.
package app

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/dropDatabas3/zonetoken/internal/cache"
	"github.com/dropDatabas3/zonetoken/internal/config"
	"github.com/dropDatabas3/zonetoken/internal/decoder"
	jwtx "github.com/dropDatabas3/zonetoken/internal/jwt"
	"github.com/dropDatabas3/zonetoken/internal/metrics"
	"github.com/dropDatabas3/zonetoken/internal/observability/logger"
	"github.com/dropDatabas3/zonetoken/internal/util"
	"github.com/dropDatabas3/zonetoken/internal/validation"
)

// Container es el contenedor DI que usan el CLI y el server.
type Container struct {
	Config  *config.Config
	KeySets cache.Client
	Decoder *decoder.Decoder
	Logger  *zap.Logger
}

// Options ajusta New; el zero value sirve.
type Options struct {
	Logger *zap.Logger
	// Registry para métricas; nil => prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
	// Validators custom. No vacío => reemplaza al validador de audiencia.
	Validators []validation.Validator
}

// New construye el Container. Requiere un binding completo en cfg.
func New(cfg *config.Config, opts Options) (*Container, error) {
	if cfg == nil {
		return nil, errors.New("app: nil config")
	}
	log := logger.OrNamed(opts.Logger, "app")

	svc, err := cfg.RequireBinding()
	if err != nil {
		return nil, err
	}

	store, err := cache.New(cfg.KeySetCache())
	if err != nil {
		return nil, fmt.Errorf("app: keyset cache: %w", err)
	}

	keys := jwtx.NewKeySetCache(jwtx.KeySetCacheConfig{
		Store:   store,
		Fetcher: jwtx.NewHTTPFetcher(cfg.KeySet.HTTPTimeout),
		TTL:     cfg.KeySet.TTL,
		Logger:  log.Named("jwks"),
	})

	dec, err := decoder.New(decoder.Config{
		Service:         svc,
		Verifier:        jwtx.NewVerifier(keys),
		CacheTTLSeconds: cfg.Decoder.CacheTTLSeconds,
		CacheMaxEntries: cfg.Decoder.CacheMaxEntries,
		ClockSkew:       cfg.Decoder.ClockSkew,
		Validators:      opts.Validators,
		Logger:          log.Named("decoder"),
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	if err := metrics.Register(opts.Registry); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("app: metrics: %w", err)
	}
	if err := metrics.RegisterCacheSize(opts.Registry, func() int { return dec.Stats().Size }); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("app: metrics: %w", err)
	}

	fields := []zap.Field{
		zap.String("keyset_cache", cfg.KeySet.CacheKind),
		zap.Int("cache_ttl_seconds", cfg.Decoder.CacheTTLSeconds),
		zap.Int("cache_max_entries", cfg.Decoder.CacheMaxEntries),
	}
	if cfg.KeySet.CacheKind == "redis" {
		fields = append(fields,
			zap.String("redis_addr", cfg.KeySet.Redis.Addr),
			zap.String("redis_password", util.MaskToken(cfg.KeySet.Redis.Password)),
		)
	}
	log.Info("decoder ready", fields...)
	return &Container{Config: cfg, KeySets: store, Decoder: dec, Logger: log}, nil
}

// Close libera el store de key sets.
func (c *Container) Close() error {
	if c == nil || c.KeySets == nil {
		return nil
	}
	return c.KeySets.Close()
}
