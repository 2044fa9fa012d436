// Package cache provee el almacenamiento de key sets (JWKS crudos) por URL.
//
// Soporta:
//   - memory (in-process, go-cache con janitor)
//   - redis  (compartido entre réplicas)
//
// Los valores son strings opacos; el TTL lo decide el caller.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Client define las operaciones de cache.
type Client interface {
	// Get obtiene un valor. Retorna ErrNotFound si no existe o expiró.
	Get(ctx context.Context, key string) (string, error)

	// Set guarda un valor. ttl <= 0 usa el TTL por defecto del backend.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete elimina una key. No falla si no existe.
	Delete(ctx context.Context, key string) error

	Ping(ctx context.Context) error
	Close() error
}

// Config para crear un Client.
type Config struct {
	Kind       string // "memory" | "redis"
	DefaultTTL time.Duration
	Addr       string // redis host:port
	Password   string
	DB         int
	Prefix     string
}

// ErrNotFound indica key ausente o expirada.
var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "cache: key not found" }

// IsNotFound verifica si el error es porque la key no existe.
func IsNotFound(err error) bool {
	_, ok := err.(errNotFound)
	return ok
}

// New crea un cliente según cfg.Kind. Vacío => memory.
func New(cfg Config) (Client, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Kind)) {
	case "", "memory":
		return NewMemory(cfg.Prefix, cfg.DefaultTTL), nil
	case "redis":
		return NewRedis(cfg)
	default:
		return nil, fmt.Errorf("cache: unsupported kind %q", cfg.Kind)
	}
}

func prefixed(prefix, k string) string {
	if prefix == "" {
		return k
	}
	return prefix + ":" + k
}
