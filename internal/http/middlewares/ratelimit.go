package middlewares

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/dropDatabas3/zonetoken/internal/http/errors"
	"github.com/dropDatabas3/zonetoken/internal/observability/logger"
	"github.com/dropDatabas3/zonetoken/internal/rate"
)

// WithRateLimit limita requests por IP de cliente. Si el limiter falla
// (p.ej. redis caído) el request pasa: el decoder no depende del limiter.
func WithRateLimit(l rate.Limiter) Middleware {
	return func(next http.Handler) http.Handler {
		if l == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := l.Allow(r.Context(), "ip:"+clientIP(r))
			if err != nil {
				logger.From(r.Context()).Warn("rate limiter unavailable", logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
			if !res.Allowed {
				secs := int(math.Ceil(res.RetryAfter.Seconds()))
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				errors.WriteError(w, errors.ErrTooManyRequests, GetRequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP usa RemoteAddr. X-Forwarded-For no se mira: sin proxy confiable es falsificable.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
