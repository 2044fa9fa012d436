// Package health contiene DTOs para el health check.
package health

import "time"

// ComponentStatus es el estado de una dependencia.
type ComponentStatus struct {
	Status  string `json:"status"`            // "ok" | "error"
	Message string `json:"message,omitempty"`
}

// CacheStats resume el cache de decoders por tenant.
type CacheStats struct {
	Size      int   `json:"size"`
	MaxSize   int   `json:"max_size"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Builds    int64 `json:"builds"`
	Evictions int64 `json:"evictions"`
}

// Response es la respuesta de /healthz.
type Response struct {
	Status       string                     `json:"status"` // "ok" | "degraded"
	Components   map[string]ComponentStatus `json:"components,omitempty"`
	DecoderCache *CacheStats                `json:"decoder_cache,omitempty"`
	Timestamp    time.Time                  `json:"timestamp"`
}
