package logger

import (
	"time"

	"go.uber.org/zap"
)

// =================================================================================
// CAMPOS - HTTP
// =================================================================================

func RequestID(v string) zap.Field { return zap.String("request_id", v) }

func Method(v string) zap.Field { return zap.String("method", v) }

func Path(v string) zap.Field { return zap.String("path", v) }

func Status(v int) zap.Field { return zap.Int("status", v) }

func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }

// =================================================================================
// CAMPOS - TOKENS / TENANTS
// =================================================================================

// ZoneID es el claim zid (tenant).
func ZoneID(v string) zap.Field { return zap.String("zid", v) }

// Subdomain es la key del cache de decoders (ext_attr.zdn). "" = bucket default.
func Subdomain(v string) zap.Field { return zap.String("subdomain", v) }

// KeySetURL es el endpoint de token keys resuelto para un tenant.
func KeySetURL(v string) zap.Field { return zap.String("keyset_url", v) }

// Kind es la categoría de error de decode (MALFORMED_TOKEN, ...).
func Kind(v string) zap.Field { return zap.String("kind", v) }

// KID es el key id del header del token.
func KID(v string) zap.Field { return zap.String("kid", v) }

// TokenFP es el fingerprint del token (util.Fingerprint), nunca el token.
func TokenFP(v string) zap.Field { return zap.String("token_fp", v) }

// =================================================================================
// CAMPOS - SISTEMA
// =================================================================================

func Component(v string) zap.Field { return zap.String("component", v) }

func Op(v string) zap.Field { return zap.String("op", v) }

func Err(err error) zap.Field { return zap.Error(err) }

func Count(v int) zap.Field { return zap.Int("count", v) }
