// Package tokeninfo contiene el DTO de /v1/tokeninfo.
package tokeninfo

import "time"

// Response describe el token validado del request.
type Response struct {
	ZoneID    string         `json:"zid,omitempty"`
	Subdomain string         `json:"subdomain,omitempty"`
	Subject   string         `json:"sub,omitempty"`
	Issuer    string         `json:"iss,omitempty"`
	ClientID  string         `json:"client_id,omitempty"`
	Audience  []string       `json:"aud,omitempty"`
	Scopes    []string       `json:"scopes,omitempty"`
	ExpiresAt *time.Time     `json:"expires_at,omitempty"`
	Claims    map[string]any `json:"claims"`
}
