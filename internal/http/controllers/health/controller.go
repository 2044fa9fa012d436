// Package health expone el health check.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dropDatabas3/zonetoken/internal/cache"
	dto "github.com/dropDatabas3/zonetoken/internal/http/dto/health"
	"github.com/dropDatabas3/zonetoken/internal/infra/tenantcache"
)

// StatsSource es lo que expone *decoder.Decoder.
type StatsSource interface {
	Stats() tenantcache.Stats
}

// Controller responde GET /healthz.
type Controller struct {
	keySets cache.Client // opcional
	stats   StatsSource  // opcional
	timeout time.Duration
}

func NewController(keySets cache.Client, stats StatsSource) *Controller {
	return &Controller{keySets: keySets, stats: stats, timeout: 2 * time.Second}
}

// Health: 200 si todo responde, 503 si el store de key sets no responde.
func (c *Controller) Health(w http.ResponseWriter, r *http.Request) {
	resp := dto.Response{Status: "ok", Timestamp: time.Now().UTC()}

	if c.keySets != nil {
		ctx, cancel := context.WithTimeout(r.Context(), c.timeout)
		err := c.keySets.Ping(ctx)
		cancel()
		st := dto.ComponentStatus{Status: "ok"}
		if err != nil {
			st = dto.ComponentStatus{Status: "error", Message: err.Error()}
			resp.Status = "degraded"
		}
		resp.Components = map[string]dto.ComponentStatus{"keyset_cache": st}
	}
	if c.stats != nil {
		s := c.stats.Stats()
		resp.DecoderCache = &dto.CacheStats{
			Size: s.Size, MaxSize: s.MaxSize,
			Hits: s.Hits, Misses: s.Misses, Builds: s.Builds, Evictions: s.Evictions,
		}
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
