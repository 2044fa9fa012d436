// Package jwttest arma claves, JWKS y tokens firmados para tests.
package jwttest

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// Key es un par RSA con kid.
type Key struct {
	KID  string
	Priv *rsa.PrivateKey
}

// NewKey genera una clave RSA 2048.
func NewKey(t testing.TB, kid string) *Key {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("rsa key: %v", err)
	}
	return &Key{KID: kid, Priv: priv}
}

// JWK devuelve la representación pública n/e.
func (k *Key) JWK() map[string]string {
	pub := k.Priv.PublicKey
	return map[string]string{
		"kty": "RSA",
		"kid": k.KID,
		"alg": "RS256",
		"use": "sig",
		"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
		"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
	}
}

// Sign firma claims con RS256 y el kid de la clave.
func (k *Key) Sign(t testing.TB, claims jwtv5.MapClaims) string {
	t.Helper()
	tok := jwtv5.NewWithClaims(jwtv5.SigningMethodRS256, claims)
	tok.Header["kid"] = k.KID
	s, err := tok.SignedString(k.Priv)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

// JWKS serializa un key set con las claves dadas.
func JWKS(keys ...*Key) []byte {
	doc := struct {
		Keys []map[string]string `json:"keys"`
	}{}
	for _, k := range keys {
		doc.Keys = append(doc.Keys, k.JWK())
	}
	b, _ := json.Marshal(doc)
	return b
}

// Server sirve token_keys y cuenta los hits. Las claves se pueden cambiar en caliente.
type Server struct {
	*httptest.Server

	mu     sync.Mutex
	keys   []*Key
	status int
	hits   atomic.Int64
}

// NewServer arranca un server que responde JWKS(keys...) en cualquier path.
func NewServer(t testing.TB, keys ...*Key) *Server {
	t.Helper()
	s := &Server{keys: keys, status: http.StatusOK}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		s.mu.Lock()
		status, body := s.status, JWKS(s.keys...)
		s.mu.Unlock()
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	t.Cleanup(s.Close)
	return s
}

// SetKeys reemplaza el key set publicado.
func (s *Server) SetKeys(keys ...*Key) {
	s.mu.Lock()
	s.keys = keys
	s.mu.Unlock()
}

// SetStatus fuerza un status HTTP (p.ej. 503).
func (s *Server) SetStatus(code int) {
	s.mu.Lock()
	s.status = code
	s.mu.Unlock()
}

// Hits devuelve la cantidad de requests recibidas.
func (s *Server) Hits() int64 { return s.hits.Load() }
