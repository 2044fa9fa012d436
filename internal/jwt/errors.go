package jwt

import "errors"

var (
	// ErrMalformedToken: el token no es un JWS compacto parseable.
	ErrMalformedToken = errors.New("malformed_token")

	// ErrKeySetUnavailable: no se pudo obtener/parsear el key set remoto.
	ErrKeySetUnavailable = errors.New("keyset_unavailable")

	// ErrSignatureInvalid: firma, algoritmo o clave no válidos para el token.
	ErrSignatureInvalid = errors.New("signature_invalid")

	// ErrKeyNotFound: el kid del token no está en el key set.
	ErrKeyNotFound = errors.New("key_not_found")
)
