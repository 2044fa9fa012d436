package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"APP_ENV", "LOG_LEVEL", "SERVER_ADDR", "CACHE_TTL_SECONDS", "CACHE_MAX_ENTRIES",
		"CLOCK_SKEW", "KEYSET_TTL", "KEYSET_HTTP_TIMEOUT", "KEYSET_CACHE_KIND",
		"REDIS_ADDR", "REDIS_DB", "REDIS_PASSWORD", "REDIS_PREFIX",
		"XSUAA_SERVICE_NAME", "CLIENT_ID", "XSAPPNAME", "UAA_URL", "UAA_DOMAIN",
		"RATE_LIMIT_ENABLED", "RATE_LIMIT_MAX", "RATE_LIMIT_WINDOW",
	} {
		t.Setenv(EnvPrefix+k, "")
	}
	t.Setenv("VCAP_SERVICES", "")
}

func TestParse_Defaults(t *testing.T) {
	clearEnv(t)
	c, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, 900, c.Decoder.CacheTTLSeconds)
	assert.Equal(t, 100, c.Decoder.CacheMaxEntries)
	assert.Equal(t, 5*time.Second, c.Decoder.ClockSkew)
	assert.Equal(t, ":8080", c.Server.Addr)
	assert.Equal(t, "memory", c.KeySet.CacheKind)
	assert.False(t, c.IsProd())
}

func TestLoad_YAMLOverDefaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "zonetoken.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  env: PROD
decoder:
  cache_ttl_seconds: 60
  clock_skew: 2s
binding:
  client_id: sb-app!t1
  xsappname: app!t1
  url: https://provider.auth.example.com/
  uaadomain: auth.example.com
keyset:
  cache_kind: redis
  ttl: 1m
  redis:
    addr: localhost:6379
`), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.True(t, c.IsProd())
	assert.Equal(t, 60, c.Decoder.CacheTTLSeconds)
	assert.Equal(t, 100, c.Decoder.CacheMaxEntries, "absent key keeps default")
	assert.Equal(t, 2*time.Second, c.Decoder.ClockSkew)
	assert.Equal(t, "https://provider.auth.example.com", c.Binding.URL)
	assert.Equal(t, "sb-app!t1", c.Binding.ClientID())

	kc := c.KeySetCache()
	assert.Equal(t, "redis", kc.Kind)
	assert.Equal(t, "localhost:6379", kc.Addr)
	assert.Equal(t, time.Minute, kc.DefaultTTL)

	b, err := c.RequireBinding()
	require.NoError(t, err)
	assert.Equal(t, "app!t1", b.AppID())
}

func TestParse_RejectsNonPositiveCacheSettings(t *testing.T) {
	clearEnv(t)
	_, err := Parse([]byte("decoder:\n  cache_ttl_seconds: 0\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache_ttl_seconds")

	_, err = Parse([]byte("decoder:\n  cache_max_entries: -3\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache_max_entries")

	t.Setenv(EnvPrefix+"CACHE_MAX_ENTRIES", "lots")
	_, err = Parse(nil)
	require.Error(t, err)
}

func TestParse_RedisRequiresAddr(t *testing.T) {
	clearEnv(t)
	_, err := Parse([]byte("keyset:\n  cache_kind: redis\n"))
	require.Error(t, err)

	_, err = Parse([]byte("keyset:\n  cache_kind: memcached\n"))
	require.Error(t, err)
}

func TestParse_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvPrefix+"CACHE_TTL_SECONDS", "30")
	t.Setenv(EnvPrefix+"CLOCK_SKEW", "1s")
	t.Setenv(EnvPrefix+"SERVER_ADDR", ":9999")
	t.Setenv(EnvPrefix+"CLIENT_ID", "from-env")

	c, err := Parse([]byte("decoder:\n  cache_ttl_seconds: 60\n"))
	require.NoError(t, err)
	assert.Equal(t, 30, c.Decoder.CacheTTLSeconds)
	assert.Equal(t, time.Second, c.Decoder.ClockSkew)
	assert.Equal(t, ":9999", c.Server.Addr)
	assert.Equal(t, "from-env", c.Binding.Client)
}

func TestParse_VCAPServices(t *testing.T) {
	clearEnv(t)
	t.Setenv("VCAP_SERVICES", `{"xsuaa":[{"name":"uaa","label":"xsuaa","credentials":{
		"clientid":"sb-vcap","xsappname":"vcap!t9","url":"https://p.auth.example.com","uaadomain":"auth.example.com"}}]}`)

	c, err := Parse([]byte("binding:\n  client_id: from-yaml\n"))
	require.NoError(t, err)
	assert.Equal(t, "sb-vcap", c.Binding.Client)
	assert.Equal(t, "auth.example.com", c.Binding.UAADomain)

	t.Setenv("VCAP_SERVICES", "{not json")
	_, err = Parse(nil)
	require.Error(t, err)
}

func TestRequireBinding_Incomplete(t *testing.T) {
	clearEnv(t)
	c, err := Parse(nil)
	require.NoError(t, err)
	_, err = c.RequireBinding()
	require.Error(t, err)
}

func TestRateLimit(t *testing.T) {
	clearEnv(t)
	c, err := Parse(nil)
	require.NoError(t, err)
	_, ok := c.RateLimit()
	assert.False(t, ok)

	t.Setenv(EnvPrefix+"RATE_LIMIT_ENABLED", "true")
	t.Setenv(EnvPrefix+"RATE_LIMIT_MAX", "5")
	c, err = Parse(nil)
	require.NoError(t, err)
	rc, ok := c.RateLimit()
	require.True(t, ok)
	assert.Equal(t, 5, rc.Max)
	assert.Equal(t, time.Minute, rc.Window)
	assert.Equal(t, "memory", rc.Kind)

	t.Setenv(EnvPrefix+"RATE_LIMIT_MAX", "0")
	_, err = Parse(nil)
	require.Error(t, err)

	t.Setenv(EnvPrefix+"RATE_LIMIT_ENABLED", "maybe")
	_, err = Parse(nil)
	require.Error(t, err)
}
