package jwt

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// JWK es una entrada de un JWKS / token_keys. "value" es la variante PEM que
// publican algunos UAA además (o en lugar) de n/e.
type JWK struct {
	KID   string `json:"kid"`
	Kty   string `json:"kty"`
	Alg   string `json:"alg,omitempty"`
	Use   string `json:"use,omitempty"`
	N     string `json:"n,omitempty"`
	E     string `json:"e,omitempty"`
	Crv   string `json:"crv,omitempty"`
	X     string `json:"x,omitempty"`
	Y     string `json:"y,omitempty"`
	Value string `json:"value,omitempty"`
}

type jwks struct {
	Keys []JWK `json:"keys"`
}

// KeySet es un key set público ya parseado. Inmutable.
type KeySet struct {
	byKID map[string]any
	size  int
}

// ParseKeySet parsea un JWKS. Entradas con use != "sig" o kty desconocido se ignoran;
// si no queda ninguna clave utilizable devuelve error.
func ParseKeySet(data []byte) (*KeySet, error) {
	var doc jwks
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("jwks: %w", err)
	}
	ks := &KeySet{byKID: make(map[string]any, len(doc.Keys))}
	for i := range doc.Keys {
		k := &doc.Keys[i]
		if k.Use != "" && k.Use != "sig" {
			continue
		}
		pub, err := k.PublicKey()
		if err != nil {
			continue
		}
		if _, dup := ks.byKID[k.KID]; dup {
			continue
		}
		ks.byKID[k.KID] = pub
		ks.size++
	}
	if ks.size == 0 {
		return nil, errors.New("jwks: no usable signing keys")
	}
	return ks, nil
}

// Len devuelve la cantidad de claves utilizables.
func (ks *KeySet) Len() int { return ks.size }

// Lookup devuelve la clave para kid. Sin kid solo se acepta un set de una clave.
func (ks *KeySet) Lookup(kid string) (any, error) {
	if pub, ok := ks.byKID[kid]; ok {
		return pub, nil
	}
	if kid == "" && ks.size == 1 {
		for _, pub := range ks.byKID {
			return pub, nil
		}
	}
	return nil, fmt.Errorf("%w: kid=%q", ErrKeyNotFound, kid)
}

// PublicKey convierte el JWK al tipo que espera golang-jwt para verificar.
func (k *JWK) PublicKey() (any, error) {
	switch strings.ToUpper(k.Kty) {
	case "RSA":
		if k.N != "" && k.E != "" {
			return rsaFromJWK(k.N, k.E)
		}
		if k.Value != "" {
			return jwtv5.ParseRSAPublicKeyFromPEM([]byte(k.Value))
		}
		return nil, errors.New("jwk: rsa key without n/e or value")
	case "EC":
		return ecFromJWK(k.Crv, k.X, k.Y)
	case "OKP":
		if k.Crv != "Ed25519" {
			return nil, fmt.Errorf("jwk: unsupported okp curve %q", k.Crv)
		}
		x, err := base64.RawURLEncoding.DecodeString(k.X)
		if err != nil {
			return nil, fmt.Errorf("jwk: x: %w", err)
		}
		if len(x) != ed25519.PublicKeySize {
			return nil, errors.New("jwk: bad ed25519 key size")
		}
		return ed25519.PublicKey(x), nil
	}
	return nil, fmt.Errorf("jwk: unsupported kty %q", k.Kty)
}

func rsaFromJWK(n, e string) (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(n)
	if err != nil {
		return nil, fmt.Errorf("jwk: n: %w", err)
	}
	eb, err := base64.RawURLEncoding.DecodeString(e)
	if err != nil {
		return nil, fmt.Errorf("jwk: e: %w", err)
	}
	if len(eb) == 0 || len(eb) > 4 {
		return nil, errors.New("jwk: bad rsa exponent")
	}
	var exp int
	for _, b := range eb {
		exp = exp<<8 | int(b)
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nb), E: exp}, nil
}

func ecFromJWK(crv, x, y string) (*ecdsa.PublicKey, error) {
	var curve elliptic.Curve
	switch crv {
	case "P-256":
		curve = elliptic.P256()
	case "P-384":
		curve = elliptic.P384()
	case "P-521":
		curve = elliptic.P521()
	default:
		return nil, fmt.Errorf("jwk: unsupported ec curve %q", crv)
	}
	xb, err := base64.RawURLEncoding.DecodeString(x)
	if err != nil {
		return nil, fmt.Errorf("jwk: x: %w", err)
	}
	yb, err := base64.RawURLEncoding.DecodeString(y)
	if err != nil {
		return nil, fmt.Errorf("jwk: y: %w", err)
	}
	return &ecdsa.PublicKey{Curve: curve, X: new(big.Int).SetBytes(xb), Y: new(big.Int).SetBytes(yb)}, nil
}
