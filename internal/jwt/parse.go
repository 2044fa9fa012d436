package jwt

import (
	"context"
	"errors"
	"fmt"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// KeySource es lo que el Verifier necesita del cache de key sets.
type KeySource interface {
	Get(ctx context.Context, url string) (*KeySet, error)
	Refresh(ctx context.Context, url string) (*KeySet, bool, error)
}

// DefaultMethods son los algoritmos aceptados. "none" y HS* nunca.
var DefaultMethods = []string{"RS256", "RS384", "RS512", "ES256", "ES384", "ES512", "EdDSA"}

// Verifier verifica la firma de un token contra el key set publicado en una URL.
// No valida claims (exp/aud/...): eso es trabajo de la cadena de validadores.
type Verifier struct {
	keys   KeySource
	parser *jwtv5.Parser
}

func NewVerifier(keys KeySource, methods ...string) *Verifier {
	if len(methods) == 0 {
		methods = DefaultMethods
	}
	return &Verifier{
		keys:   keys,
		parser: jwtv5.NewParser(jwtv5.WithValidMethods(methods), jwtv5.WithoutClaimsValidation()),
	}
}

// VerifyAndParse verifica token con las claves de keySetURL y devuelve el payload.
// Errores: ErrKeySetUnavailable, ErrSignatureInvalid, ErrMalformedToken (wrapped).
// Un kid desconocido fuerza un refresh del key set antes de rechazar.
func (v *Verifier) VerifyAndParse(ctx context.Context, token, keySetURL string) (map[string]any, error) {
	ks, err := v.keys.Get(ctx, keySetURL)
	if err != nil {
		return nil, err
	}

	mc, err := v.parse(token, ks)
	if errors.Is(err, ErrKeyNotFound) {
		fresh, refreshed, rerr := v.keys.Refresh(ctx, keySetURL)
		if rerr != nil {
			return nil, rerr
		}
		if refreshed {
			mc, err = v.parse(token, fresh)
		}
	}
	if err != nil {
		return nil, classify(err)
	}
	return mc, nil
}

func (v *Verifier) parse(token string, ks *KeySet) (jwtv5.MapClaims, error) {
	mc := jwtv5.MapClaims{}
	_, err := v.parser.ParseWithClaims(token, mc, func(t *jwtv5.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		return ks.Lookup(kid)
	})
	if err != nil {
		return nil, err
	}
	return mc, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwtv5.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	default:
		return fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}
}
