package middlewares

import (
	"fmt"
	"net/http"

	"github.com/dropDatabas3/zonetoken/internal/http/errors"
	"github.com/dropDatabas3/zonetoken/internal/observability/logger"
)

// WithRecover captura panics y devuelve un 500 en lugar de crashear.
func WithRecover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.From(r.Context()).Error("panic recovered",
						logger.Op("recover"),
						logger.Err(fmt.Errorf("%v", rec)),
					)
					errors.WriteError(w, errors.ErrInternalServerError, GetRequestID(r.Context()))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
