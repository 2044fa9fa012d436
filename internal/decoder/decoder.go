// Package decoder decodifica y valida tokens de un proveedor de identidad
// multi-tenant. Cada subdomain (ext_attr.zdn) tiene su propio TenantDecoder,
// cacheado con TTL y capacidad acotada.
//
//	token -> RouteToken (zid, zdn) -> cache.Resolve(zdn) -> firma -> claims
package decoder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/zonetoken/internal/binding"
	"github.com/dropDatabas3/zonetoken/internal/claims"
	"github.com/dropDatabas3/zonetoken/internal/infra/tenantcache"
	jwtx "github.com/dropDatabas3/zonetoken/internal/jwt"
	"github.com/dropDatabas3/zonetoken/internal/metrics"
	"github.com/dropDatabas3/zonetoken/internal/observability/logger"
	"github.com/dropDatabas3/zonetoken/internal/util"
	"github.com/dropDatabas3/zonetoken/internal/validation"
)

// Config del Decoder. Service, Verifier y ambos parámetros de cache son obligatorios.
type Config struct {
	Service  binding.ServiceConfiguration
	Verifier SignatureVerifier

	CacheTTLSeconds int
	CacheMaxEntries int

	// ClockSkew para exp/nbf. < 0 => validation.DefaultClockSkew.
	ClockSkew time.Duration

	// Validators no vacío REEMPLAZA al validador de audiencia por defecto
	// (el de timestamp siempre corre). Ver validation.NewChain.
	Validators []validation.Validator

	Logger *zap.Logger
	Now    func() time.Time // reloj del cache; nil => time.Now
}

// Decoder es el punto de entrada. Seguro para uso concurrente.
type Decoder struct {
	svc      binding.ServiceConfiguration
	verifier SignatureVerifier
	chain    *validation.Chain
	cache    *tenantcache.Manager[*TenantDecoder]
	log      *zap.Logger
}

// New arma el Decoder con su cache de decoders por tenant.
func New(cfg Config) (*Decoder, error) {
	if cfg.Service == nil {
		return nil, errors.New("decoder: service configuration is required")
	}
	if cfg.Verifier == nil {
		return nil, errors.New("decoder: signature verifier is required")
	}
	if cfg.CacheTTLSeconds <= 0 || cfg.CacheMaxEntries <= 0 {
		return nil, fmt.Errorf("decoder: cache ttl seconds and max entries must be positive (got %d, %d)",
			cfg.CacheTTLSeconds, cfg.CacheMaxEntries)
	}

	d := &Decoder{
		svc:      cfg.Service,
		verifier: cfg.Verifier,
		chain:    validation.NewChain(cfg.Service, cfg.ClockSkew, cfg.Validators...),
		log:      logger.OrNamed(cfg.Logger, "decoder"),
	}
	c, err := tenantcache.New[*TenantDecoder](tenantcache.Options{
		TTL:        time.Duration(cfg.CacheTTLSeconds) * time.Second,
		MaxEntries: cfg.CacheMaxEntries,
		Now:        cfg.Now,
		Logger:     d.log.Named("cache"),
	}, d.buildTenant)
	if err != nil {
		return nil, fmt.Errorf("decoder: %w", err)
	}
	d.cache = c
	return d, nil
}

// buildTenant resuelve la URL de token keys del tenant. No hace I/O: el key set
// se baja (y cachea) recién en la primera verificación de firma.
func (d *Decoder) buildTenant(_ context.Context, zid, subdomain string) (*TenantDecoder, error) {
	url, err := d.svc.TokenKeyURL(zid, subdomain)
	if err != nil {
		return nil, err
	}
	return &TenantDecoder{
		Subdomain: subdomain,
		ZoneID:    zid,
		KeySetURL: url,
		verifier:  d.verifier,
		chain:     d.chain,
	}, nil
}

// Decode valida token y devuelve sus claims. Los errores son *Error
// (usar errors.Is contra ErrMalformedToken, ErrSignatureInvalid, ...).
func (d *Decoder) Decode(ctx context.Context, token string) (*claims.ClaimSet, error) {
	start := time.Now()
	cs, err := d.decode(ctx, token)
	metrics.DecodeDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		kind := KindOf(err)
		metrics.DecodeTotal.WithLabelValues(strings.ToLower(string(kind))).Inc()
		log := logger.From(ctx).With(logger.TokenFP(util.Fingerprint(token)))
		if IsRetryable(err) {
			log.Warn("token decode failed", logger.Kind(string(kind)), logger.Err(err))
		} else {
			log.Debug("token rejected", logger.Kind(string(kind)), logger.Err(err))
		}
		return nil, err
	}
	metrics.DecodeTotal.WithLabelValues("ok").Inc()
	return cs, nil
}

func (d *Decoder) decode(ctx context.Context, token string) (*claims.ClaimSet, error) {
	if token == "" {
		return nil, ErrMalformedToken.WithDetail("token is required")
	}
	route, err := jwtx.RouteToken(token)
	if err != nil {
		return nil, ErrMalformedToken.WithCause(err)
	}
	td, err := d.cache.Resolve(ctx, route.Subdomain, route.ZoneID)
	if err != nil {
		return nil, ErrKeyResolutionFailed.WithCause(err)
	}
	return td.Decode(ctx, token)
}

// Stats expone los contadores del cache de decoders.
func (d *Decoder) Stats() tenantcache.Stats { return d.cache.Stats() }
