// Package router arma el chi.Router de la API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/dropDatabas3/zonetoken/internal/cache"
	healthctrl "github.com/dropDatabas3/zonetoken/internal/http/controllers/health"
	tokeninfoctrl "github.com/dropDatabas3/zonetoken/internal/http/controllers/tokeninfo"
	httperrors "github.com/dropDatabas3/zonetoken/internal/http/errors"
	mw "github.com/dropDatabas3/zonetoken/internal/http/middlewares"
	"github.com/dropDatabas3/zonetoken/internal/rate"
)

// Decoder es lo que el router necesita de *decoder.Decoder.
type Decoder interface {
	mw.TokenDecoder
	healthctrl.StatsSource
}

// Deps son las dependencias del router.
type Deps struct {
	Decoder Decoder
	KeySets cache.Client // opcional; se pinguea en /healthz
	Limiter rate.Limiter // opcional; limita /v1 por IP

	// Gatherer para /metrics. nil => prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

// New devuelve el handler raíz:
//
//	GET /healthz        health + stats del cache de decoders
//	GET /metrics        prometheus
//	GET /v1/tokeninfo   claims del bearer token (RequireAuth)
func New(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		mw.WithRequestID(),
		mw.WithLogging(deps.Logger),
		mw.WithRecover(),
		mw.WithMetrics(),
	)

	notFound := func(w http.ResponseWriter, r *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound, mw.GetRequestID(r.Context()))
	}
	r.NotFound(notFound)
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed, mw.GetRequestID(r.Context()))
	})

	health := healthctrl.NewController(deps.KeySets, deps.Decoder)
	r.Get("/healthz", health.Health)

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.WithRateLimit(deps.Limiter))
		r.With(mw.RequireAuth(deps.Decoder)).Get("/tokeninfo", tokeninfoctrl.NewController().Get)
	})
	return r
}
