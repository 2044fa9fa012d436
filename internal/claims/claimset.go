// Package claims define el ClaimSet que devuelve el decoder.
package claims

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Nombres de claims usados para ruteo y validación.
const (
	Subject    = "sub"
	Issuer     = "iss"
	Audience   = "aud"
	Expiry     = "exp"
	NotBefore  = "nbf"
	IssuedAt   = "iat"
	ZoneID     = "zid"
	ExtAttr    = "ext_attr"
	ZoneDomain = "zdn"
	ClientID   = "cid"
	Scope      = "scope"
)

// ClaimSet es el resultado de un decode exitoso. Cada decode produce uno nuevo.
type ClaimSet struct {
	Subject   string
	Issuer    string
	ZoneID    string
	Subdomain string
	ClientID  string
	Audience  []string
	Scopes    []string
	ExpiresAt time.Time
	NotBefore time.Time
	IssuedAt  time.Time

	raw map[string]any
}

// FromMap construye un ClaimSet a partir del payload decodificado.
// El map se copia; el caller puede seguir usándolo.
func FromMap(m map[string]any) *ClaimSet {
	raw := make(map[string]any, len(m))
	for k, v := range m {
		raw[k] = v
	}
	cs := &ClaimSet{raw: raw}
	cs.Subject = cs.String(Subject)
	cs.Issuer = cs.String(Issuer)
	cs.ZoneID = cs.String(ZoneID)
	cs.Subdomain = ZoneDomainOf(raw)
	cs.ClientID = cs.String(ClientID)
	if cs.ClientID == "" {
		cs.ClientID = cs.String("client_id")
	}
	if cs.ClientID == "" {
		cs.ClientID = cs.String("azp")
	}
	cs.Audience = cs.Strings(Audience)
	// scope: array JSON o string separado por espacios (RFC 6749)
	if s, ok := raw[Scope].(string); ok {
		cs.Scopes = strings.Fields(s)
	} else {
		cs.Scopes = cs.Strings(Scope)
	}
	cs.ExpiresAt, _ = cs.Time(Expiry)
	cs.NotBefore, _ = cs.Time(NotBefore)
	cs.IssuedAt, _ = cs.Time(IssuedAt)
	return cs
}

// ZoneDomainOf devuelve ext_attr.zdn o "" si no está.
// Un zdn escalar no string (número, bool) se toma en su forma de texto;
// objetos y arrays cuentan como ausentes.
func ZoneDomainOf(m map[string]any) string {
	ext, ok := m[ExtAttr].(map[string]any)
	if !ok {
		return ""
	}
	return scalarString(ext[ZoneDomain])
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

// Get devuelve el valor crudo de un claim.
func (c *ClaimSet) Get(name string) (any, bool) {
	v, ok := c.raw[name]
	return v, ok
}

// Has indica si el claim está presente.
func (c *ClaimSet) Has(name string) bool {
	_, ok := c.raw[name]
	return ok
}

// String devuelve el claim como string, o "" si no es string.
func (c *ClaimSet) String(name string) string {
	s, _ := c.raw[name].(string)
	return s
}

// Strings acepta un string simple o un array JSON de strings.
func (c *ClaimSet) Strings(name string) []string {
	switch v := c.raw[name].(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, it := range v {
			if s, ok := it.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Object devuelve un claim objeto (p.ej. ext_attr).
func (c *ClaimSet) Object(name string) map[string]any {
	m, _ := c.raw[name].(map[string]any)
	return m
}

// Time interpreta un NumericDate (segundos desde epoch).
func (c *ClaimSet) Time(name string) (time.Time, bool) {
	var f float64
	switch v := c.raw[name].(type) {
	case float64:
		f = v
	case int64:
		f = float64(v)
	case int:
		f = float64(v)
	case json.Number:
		n, err := v.Float64()
		if err != nil {
			return time.Time{}, false
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return time.Time{}, false
		}
		f = n
	default:
		return time.Time{}, false
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*1e9)), true
}

// Claims devuelve una copia del payload.
func (c *ClaimSet) Claims() map[string]any {
	out := make(map[string]any, len(c.raw))
	for k, v := range c.raw {
		out[k] = v
	}
	return out
}

func (c *ClaimSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.raw)
}
