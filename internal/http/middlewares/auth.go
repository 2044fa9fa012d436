package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/dropDatabas3/zonetoken/internal/claims"
	"github.com/dropDatabas3/zonetoken/internal/http/errors"
	"github.com/dropDatabas3/zonetoken/internal/observability/logger"
)

// TokenDecoder es lo que RequireAuth necesita de *decoder.Decoder.
type TokenDecoder interface {
	Decode(ctx context.Context, token string) (*claims.ClaimSet, error)
}

// RequireAuth valida Authorization: Bearer <JWT> con el decoder multi-tenant y
// guarda el ClaimSet en el contexto. Token inválido => 401; claves no resolubles => 503.
func RequireAuth(dec TokenDecoder) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := GetRequestID(r.Context())
			raw, ok := bearerToken(r)
			if !ok {
				errors.WriteError(w, errors.ErrTokenMissing, rid)
				return
			}

			cs, err := dec.Decode(r.Context(), raw)
			if err != nil {
				errors.WriteError(w, err, rid)
				return
			}

			ctx := WithClaims(r.Context(), cs)
			ctx = logger.ToContext(ctx, logger.From(ctx).With(
				logger.ZoneID(cs.ZoneID),
				logger.Subdomain(cs.Subdomain),
			))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	ah := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(ah) < len("bearer ") || !strings.EqualFold(ah[:len("bearer ")], "bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(ah[len("bearer "):])
	return raw, raw != ""
}
