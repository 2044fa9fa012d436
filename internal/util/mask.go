// Package util tiene helpers chicos sin dependencias de dominio.
package util

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// Fingerprint identifica un token en logs sin exponerlo:
// los primeros 12 caracteres de sha256 en base64url.
func Fingerprint(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])[:12]
}

// MaskToken deja ver el principio y el final de un secreto: "eyJh…Qx9w".
// Valores cortos se tapan enteros.
func MaskToken(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return ""
	case len(s) <= 12:
		return "***"
	}
	return s[:4] + "…" + s[len(s)-4:]
}
