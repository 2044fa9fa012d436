package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/zonetoken/internal/claims"
	"github.com/dropDatabas3/zonetoken/internal/decoder"
	"github.com/dropDatabas3/zonetoken/internal/rate"
)

type fakeDecoder struct {
	got string
	cs  *claims.ClaimSet
	err error
}

func (f *fakeDecoder) Decode(_ context.Context, token string) (*claims.ClaimSet, error) {
	f.got = token
	return f.cs, f.err
}

func TestBearerToken(t *testing.T) {
	cases := map[string]struct {
		header string
		want   string
		ok     bool
	}{
		"missing":    {"", "", false},
		"basic":      {"Basic abc", "", false},
		"empty":      {"Bearer   ", "", false},
		"ok":         {"Bearer abc.def.ghi", "abc.def.ghi", true},
		"lowercase":  {"bearer tok", "tok", true},
		"whitespace": {"  Bearer   tok  ", "tok", true},
	}
	for name, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			r.Header.Set("Authorization", tc.header)
		}
		got, ok := bearerToken(r)
		assert.Equal(t, tc.ok, ok, name)
		assert.Equal(t, tc.want, got, name)
	}
}

func TestRequireAuth(t *testing.T) {
	var seen *claims.ClaimSet
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetClaims(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("missing token", func(t *testing.T) {
		dec := &fakeDecoder{}
		rec := httptest.NewRecorder()
		RequireAuth(dec)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
		assert.Empty(t, dec.got)
	})

	t.Run("valid", func(t *testing.T) {
		dec := &fakeDecoder{cs: claims.FromMap(map[string]any{"zid": "t1"})}
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer tok")
		rec := httptest.NewRecorder()
		RequireAuth(dec)(next).ServeHTTP(rec, r)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "tok", dec.got)
		require.NotNil(t, seen)
		assert.Equal(t, "t1", seen.ZoneID)
	})

	t.Run("transient failure is 503", func(t *testing.T) {
		dec := &fakeDecoder{err: decoder.ErrKeySetUnavailable}
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer tok")
		rec := httptest.NewRecorder()
		WithRequestID()(RequireAuth(dec)(next)).ServeHTTP(rec, r)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), rec.Header().Get("X-Request-ID"))
	})
}

func TestWithRequestID(t *testing.T) {
	var inCtx string
	h := WithRequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inCtx = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, inCtx, 36)
	assert.Equal(t, inCtx, rec.Header().Get("X-Request-ID"))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Request-ID", "from-client")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Equal(t, "from-client", inCtx)
}

func TestWithRecover(t *testing.T) {
	h := WithRecover()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestWithRateLimit(t *testing.T) {
	h := WithRateLimit(rate.NewMemoryLimiter(1, time.Minute))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	do := func(remote string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, do("10.0.0.1:1234").Code)
	limited := do("10.0.0.1:5678")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.NotEmpty(t, limited.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusNoContent, do("10.0.0.2:1234").Code)

	// nil limiter => pasa derecho
	assert.NotNil(t, WithRateLimit(nil)(http.NotFoundHandler()))
}
