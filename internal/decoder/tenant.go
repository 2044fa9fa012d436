package decoder

import (
	"context"
	"errors"

	"github.com/dropDatabas3/zonetoken/internal/claims"
	jwtx "github.com/dropDatabas3/zonetoken/internal/jwt"
	"github.com/dropDatabas3/zonetoken/internal/validation"
)

// SignatureVerifier verifica un token contra el key set publicado en keySetURL
// y devuelve el payload. *jwt.Verifier lo implementa.
type SignatureVerifier interface {
	VerifyAndParse(ctx context.Context, token, keySetURL string) (map[string]any, error)
}

// TenantDecoder está atado a un subdomain: URL de token keys + cadena de validadores.
// Inmutable; se comparte entre todos los Decode concurrentes del mismo tenant.
type TenantDecoder struct {
	Subdomain string
	ZoneID    string
	KeySetURL string

	verifier SignatureVerifier
	chain    *validation.Chain
}

// Decode verifica la firma y corre la cadena de validadores.
func (d *TenantDecoder) Decode(ctx context.Context, token string) (*claims.ClaimSet, error) {
	raw, err := d.verifier.VerifyAndParse(ctx, token, d.KeySetURL)
	if err != nil {
		return nil, verifyError(err)
	}
	cs := claims.FromMap(raw)
	if err := d.chain.Validate(cs); err != nil {
		return nil, ErrClaimValidationFailed.WithCause(err)
	}
	return cs, nil
}

func verifyError(err error) *Error {
	switch {
	case errors.Is(err, jwtx.ErrKeySetUnavailable):
		return ErrKeySetUnavailable.WithCause(err)
	case errors.Is(err, jwtx.ErrMalformedToken):
		return ErrMalformedToken.WithCause(err)
	default:
		return ErrSignatureInvalid.WithCause(err)
	}
}
