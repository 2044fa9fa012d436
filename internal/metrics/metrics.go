// Package metrics define las métricas Prometheus del decoder. Paquete standalone
// para que jwt, tenantcache y decoder puedan usarlas sin ciclos de import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	DecoderCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "zonetoken_decoder_cache_hits_total",
		Help: "Lookups del cache de decoders que encontraron una entrada viva",
	})

	DecoderCacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "zonetoken_decoder_cache_misses_total",
		Help: "Lookups del cache de decoders sin entrada viva (ausente o expirada)",
	})

	DecoderCacheBuilds = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "zonetoken_decoder_cache_builds_total",
		Help: "Construcciones de decoders por tenant",
	}, []string{"result"})

	DecoderCacheEvictions = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "zonetoken_decoder_cache_evictions_total",
		Help: "Entradas desalojadas por capacidad o TTL",
	})

	DecodeTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "zonetoken_decode_total",
		Help: "Resultados de decode por categoría",
	}, []string{"result"})

	DecodeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "zonetoken_decode_duration_seconds",
		Help:    "Latencia de decode completo (ruteo + cache + firma + claims)",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
	})

	KeySetFetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "zonetoken_keyset_fetch_total",
		Help: "Descargas de key sets remotos",
	}, []string{"result"})

	// HTTP

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Número total de requests procesadas",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Latencia de los requests HTTP",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	HTTPInflight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_inflight_requests",
		Help: "Requests en vuelo",
	})
)

func all() []prometheus.Collector {
	return []prometheus.Collector{
		DecoderCacheHits,
		DecoderCacheMisses,
		DecoderCacheBuilds,
		DecoderCacheEvictions,
		DecodeTotal,
		DecodeDuration,
		KeySetFetches,
		HTTPRequestsTotal,
		HTTPRequestDuration,
		HTTPInflight,
	}
}

// Register registra las métricas en reg (o el default si es nil).
// Registrar dos veces no es error.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range all() {
		if err := registerCollector(reg, c); err != nil {
			return err
		}
	}
	return nil
}

// RegisterCacheSize expone el tamaño actual del cache de decoders como gauge.
// size se consulta en cada scrape.
func RegisterCacheSize(reg prometheus.Registerer, size func() int) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return registerCollector(reg, prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "zonetoken_decoder_cache_entries",
		Help: "Decoders por tenant vivos en el cache",
	}, func() float64 { return float64(size()) }))
}

// registerCollector ignora duplicados.
func registerCollector(reg prometheus.Registerer, c prometheus.Collector) error {
	if err := reg.Register(c); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}
