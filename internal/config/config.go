package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/zonetoken/internal/binding"
	"github.com/dropDatabas3/zonetoken/internal/cache"
	"github.com/dropDatabas3/zonetoken/internal/rate"
	"github.com/dropDatabas3/zonetoken/internal/validation"
)

// EnvPrefix antecede a todas las variables de entorno propias.
const EnvPrefix = "ZONETOKEN_"

type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Log struct {
		Level string `yaml:"level"` // debug | info | warn | error
	} `yaml:"log"`

	Server struct {
		Addr      string `yaml:"addr"`
		RateLimit struct {
			Enabled bool          `yaml:"enabled"`
			Max     int           `yaml:"max"`
			Window  time.Duration `yaml:"window"`
		} `yaml:"rate_limit"`
	} `yaml:"server"`

	Decoder struct {
		CacheTTLSeconds int           `yaml:"cache_ttl_seconds"`
		CacheMaxEntries int           `yaml:"cache_max_entries"`
		ClockSkew       time.Duration `yaml:"clock_skew"`
	} `yaml:"decoder"`

	// Binding del servicio de identidad. VCAP_SERVICES (si está) pisa lo del YAML.
	Binding binding.Binding `yaml:"binding"`

	KeySet struct {
		CacheKind   string        `yaml:"cache_kind"` // memory | redis
		TTL         time.Duration `yaml:"ttl"`
		HTTPTimeout time.Duration `yaml:"http_timeout"`
		Redis       struct {
			Addr     string `yaml:"addr"`
			DB       int    `yaml:"db"`
			Password string `yaml:"password"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"keyset"`
}

// Default devuelve la config con todos los defaults aplicados.
func Default() *Config {
	var c Config
	c.App.Env = "dev"
	c.Log.Level = "info"
	c.Server.Addr = ":8080"
	c.Server.RateLimit.Max = 600
	c.Server.RateLimit.Window = time.Minute
	c.Decoder.CacheTTLSeconds = 900
	c.Decoder.CacheMaxEntries = 100
	c.Decoder.ClockSkew = validation.DefaultClockSkew
	c.KeySet.CacheKind = "memory"
	c.KeySet.TTL = 10 * time.Minute
	c.KeySet.HTTPTimeout = 5 * time.Second
	c.KeySet.Redis.Prefix = "zonetoken:jwks"
	return &c
}

// Load lee path (si no es vacío), aplica env overrides y valida.
// Un path vacío arranca de Default(): alcanza con variables de entorno.
func Load(path string) (*Config, error) {
	var b []byte
	if path != "" {
		var err error
		b, err = os.ReadFile(path)
		if err != nil {
			return nil, err
		}
	}
	return Parse(b)
}

// Parse decodifica YAML sobre los defaults; claves ausentes conservan el default.
func Parse(b []byte) (*Config, error) {
	c := Default()
	if len(b) > 0 {
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}
	if err := c.applyEnvOverrides(); err != nil {
		return nil, err
	}

	c.App.Env = strings.ToLower(strings.TrimSpace(c.App.Env))
	c.KeySet.CacheKind = strings.ToLower(strings.TrimSpace(c.KeySet.CacheKind))
	c.Binding.UAADomain = strings.TrimSpace(c.Binding.UAADomain)
	c.Binding.URL = strings.TrimRight(strings.TrimSpace(c.Binding.URL), "/")

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate rechaza valores que dejarían al decoder en un estado inusable.
func (c *Config) Validate() error {
	var errs []error
	if c.Decoder.CacheTTLSeconds <= 0 {
		errs = append(errs, fmt.Errorf("decoder.cache_ttl_seconds must be a positive integer, got %d", c.Decoder.CacheTTLSeconds))
	}
	if c.Decoder.CacheMaxEntries <= 0 {
		errs = append(errs, fmt.Errorf("decoder.cache_max_entries must be a positive integer, got %d", c.Decoder.CacheMaxEntries))
	}
	if c.KeySet.TTL <= 0 {
		errs = append(errs, errors.New("keyset.ttl must be positive"))
	}
	if c.KeySet.HTTPTimeout <= 0 {
		errs = append(errs, errors.New("keyset.http_timeout must be positive"))
	}
	if c.Server.RateLimit.Enabled && (c.Server.RateLimit.Max <= 0 || c.Server.RateLimit.Window <= 0) {
		errs = append(errs, errors.New("server.rate_limit max and window must be positive when enabled"))
	}
	switch c.KeySet.CacheKind {
	case "memory":
	case "redis":
		if c.KeySet.Redis.Addr == "" {
			errs = append(errs, errors.New("keyset.redis.addr is required when keyset.cache_kind is redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("keyset.cache_kind %q not supported (memory|redis)", c.KeySet.CacheKind))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// RequireBinding valida que haya un binding usable (decode/serve lo necesitan; route no).
func (c *Config) RequireBinding() (*binding.Binding, error) {
	b := c.Binding
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// KeySetCache traduce la sección keyset a la config del cache de key sets.
func (c *Config) KeySetCache() cache.Config {
	cc := cache.Config{
		Kind:       c.KeySet.CacheKind,
		DefaultTTL: c.KeySet.TTL,
		Prefix:     c.KeySet.Redis.Prefix,
	}
	if c.KeySet.CacheKind == "redis" {
		cc.Addr = c.KeySet.Redis.Addr
		cc.Password = c.KeySet.Redis.Password
		cc.DB = c.KeySet.Redis.DB
	}
	return cc
}

// RateLimit devuelve la config del limiter HTTP; ok=false si está deshabilitado.
// Usa el mismo backend (y redis) que el cache de key sets.
func (c *Config) RateLimit() (rate.Config, bool) {
	if !c.Server.RateLimit.Enabled {
		return rate.Config{}, false
	}
	rc := rate.Config{
		Kind:   c.KeySet.CacheKind,
		Max:    c.Server.RateLimit.Max,
		Window: c.Server.RateLimit.Window,
		Prefix: "zonetoken:rl:",
	}
	if c.KeySet.CacheKind == "redis" {
		rc.Addr = c.KeySet.Redis.Addr
		rc.Password = c.KeySet.Redis.Password
		rc.DB = c.KeySet.Redis.DB
	}
	return rc, true
}

// IsProd es atajo para el logger.
func (c *Config) IsProd() bool { return c.App.Env == "prod" }

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(EnvPrefix + key)
	return v, v != ""
}

// getEnvInt: a diferencia de un parse silencioso, un valor no numérico es error.
func getEnvInt(key string) (int, bool, error) {
	s, ok := getEnvStr(key)
	if !ok {
		return 0, false, nil
	}
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false, fmt.Errorf("config: %s%s: not an integer: %q", EnvPrefix, key, s)
	}
	return i, true, nil
}

func getEnvBool(key string) (bool, bool, error) {
	s, ok := getEnvStr(key)
	if !ok {
		return false, false, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, false, fmt.Errorf("config: %s%s: not a boolean: %q", EnvPrefix, key, s)
	}
	return b, true, nil
}

func getEnvDur(key string) (time.Duration, bool, error) {
	s, ok := getEnvStr(key)
	if !ok {
		return 0, false, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0, false, fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err)
	}
	return d, true, nil
}

// applyEnvOverrides: pisa el YAML con ZONETOKEN_* y VCAP_SERVICES.
func (c *Config) applyEnvOverrides() error {
	// APP / LOG / SERVER
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = v
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = strings.ToLower(v)
	}
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}

	// DECODER
	ints := []struct {
		key string
		dst *int
	}{
		{"CACHE_TTL_SECONDS", &c.Decoder.CacheTTLSeconds},
		{"CACHE_MAX_ENTRIES", &c.Decoder.CacheMaxEntries},
		{"REDIS_DB", &c.KeySet.Redis.DB},
		{"RATE_LIMIT_MAX", &c.Server.RateLimit.Max},
	}
	for _, it := range ints {
		v, ok, err := getEnvInt(it.key)
		if err != nil {
			return err
		}
		if ok {
			*it.dst = v
		}
	}
	durs := []struct {
		key string
		dst *time.Duration
	}{
		{"CLOCK_SKEW", &c.Decoder.ClockSkew},
		{"KEYSET_TTL", &c.KeySet.TTL},
		{"KEYSET_HTTP_TIMEOUT", &c.KeySet.HTTPTimeout},
		{"RATE_LIMIT_WINDOW", &c.Server.RateLimit.Window},
	}
	for _, it := range durs {
		v, ok, err := getEnvDur(it.key)
		if err != nil {
			return err
		}
		if ok {
			*it.dst = v
		}
	}

	if v, ok, err := getEnvBool("RATE_LIMIT_ENABLED"); err != nil {
		return err
	} else if ok {
		c.Server.RateLimit.Enabled = v
	}

	// KEYSET cache
	if v, ok := getEnvStr("KEYSET_CACHE_KIND"); ok {
		c.KeySet.CacheKind = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.KeySet.Redis.Addr = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.KeySet.Redis.Password = v
	}
	if v, ok := getEnvStr("REDIS_PREFIX"); ok {
		c.KeySet.Redis.Prefix = v
	}

	// BINDING: primero VCAP_SERVICES, después overrides puntuales
	svcName, _ := getEnvStr("XSUAA_SERVICE_NAME")
	if b, err := binding.FromEnv(svcName); err == nil {
		c.Binding = *b
	} else if !errors.Is(err, binding.ErrNoBinding) {
		return fmt.Errorf("config: %w", err)
	}
	if v, ok := getEnvStr("CLIENT_ID"); ok {
		c.Binding.Client = v
	}
	if v, ok := getEnvStr("XSAPPNAME"); ok {
		c.Binding.XsAppName = v
	}
	if v, ok := getEnvStr("UAA_URL"); ok {
		c.Binding.URL = v
	}
	if v, ok := getEnvStr("UAA_DOMAIN"); ok {
		c.Binding.UAADomain = v
	}
	return nil
}
