package middlewares

import (
	"context"

	"github.com/dropDatabas3/zonetoken/internal/claims"
)

type ctxKey string

const (
	ctxClaimsKey    ctxKey = "claims"
	ctxRequestIDKey ctxKey = "request_id"
)

// WithClaims inyecta el ClaimSet validado en el contexto.
func WithClaims(ctx context.Context, cs *claims.ClaimSet) context.Context {
	return context.WithValue(ctx, ctxClaimsKey, cs)
}

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// GetClaims devuelve el ClaimSet que dejó RequireAuth, o nil.
func GetClaims(ctx context.Context) *claims.ClaimSet {
	cs, _ := ctx.Value(ctxClaimsKey).(*claims.ClaimSet)
	return cs
}

// GetRequestID retorna "" si WithRequestID no corrió.
func GetRequestID(ctx context.Context) string {
	s, _ := ctx.Value(ctxRequestIDKey).(string)
	return s
}
