// Package binding resuelve la configuración del servicio de identidad (client id,
// xsappname, URLs) y construye la URL de token keys de cada tenant.
package binding

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
)

var (
	ErrNoBinding        = errors.New("binding: no identity service binding found")
	ErrInvalidSubdomain = errors.New("binding: invalid subdomain")
	ErrIncomplete       = errors.New("binding: incomplete configuration")
)

// ServiceConfiguration es lo que el decoder y el validador de audiencia consumen.
type ServiceConfiguration interface {
	ClientID() string
	AppID() string
	TokenKeyURL(zid, subdomain string) (string, error)
}

// Binding son las credenciales del servicio de identidad.
type Binding struct {
	Client    string `json:"clientid" yaml:"client_id"`
	XsAppName string `json:"xsappname" yaml:"xsappname"`
	URL       string `json:"url" yaml:"url"`             // URL del tenant "default"
	UAADomain string `json:"uaadomain" yaml:"uaadomain"` // dominio base, p.ej. authentication.eu10.example.com
}

var _ ServiceConfiguration = (*Binding)(nil)

func (b *Binding) ClientID() string { return b.Client }
func (b *Binding) AppID() string    { return b.XsAppName }

// subdomainRe es un label DNS. Cualquier otra cosa (puntos, barras, "@") podría
// mover el fetch de claves fuera del dominio del proveedor.
var subdomainRe = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?$`)

// TokenKeyURL devuelve el endpoint de token keys para (zid, subdomain).
//
//	subdomain == ""  => <url>/token_keys
//	subdomain != ""  => https://<subdomain>.<uaadomain>/token_keys
//
// Con zid no vacío se agrega ?zid=<zid>.
func (b *Binding) TokenKeyURL(zid, subdomain string) (string, error) {
	var base string
	if subdomain == "" {
		if strings.TrimSpace(b.URL) == "" {
			return "", fmt.Errorf("%w: url is required for tokens without subdomain", ErrIncomplete)
		}
		base = strings.TrimRight(b.URL, "/") + "/token_keys"
	} else {
		sd := strings.ToLower(subdomain)
		if !subdomainRe.MatchString(sd) {
			return "", fmt.Errorf("%w: %q", ErrInvalidSubdomain, subdomain)
		}
		domain := strings.Trim(strings.TrimSpace(b.UAADomain), "./")
		if domain == "" {
			return "", fmt.Errorf("%w: uaadomain is required for subdomain %q", ErrIncomplete, subdomain)
		}
		base = "https://" + sd + "." + domain + "/token_keys"
	}
	if zid != "" {
		base += "?zid=" + url.QueryEscape(zid)
	}
	return base, nil
}

// Validate chequea lo mínimo para validar audiencia.
func (b *Binding) Validate() error {
	if b.Client == "" && b.XsAppName == "" {
		return fmt.Errorf("%w: client_id or xsappname is required", ErrIncomplete)
	}
	if b.URL == "" && b.UAADomain == "" {
		return fmt.Errorf("%w: url or uaadomain is required", ErrIncomplete)
	}
	return nil
}

// vcapService es una entrada de VCAP_SERVICES.
type vcapService struct {
	Name        string  `json:"name"`
	Label       string  `json:"label"`
	Credentials Binding `json:"credentials"`
}

// FromVCAP parsea un VCAP_SERVICES y devuelve el primer binding "xsuaa"
// (o el de nombre serviceName si no está vacío).
func FromVCAP(raw, serviceName string) (*Binding, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrNoBinding
	}
	var services map[string][]vcapService
	if err := json.Unmarshal([]byte(raw), &services); err != nil {
		return nil, fmt.Errorf("binding: VCAP_SERVICES: %w", err)
	}
	for _, svc := range services["xsuaa"] {
		if serviceName != "" && svc.Name != serviceName {
			continue
		}
		b := svc.Credentials
		return &b, nil
	}
	return nil, ErrNoBinding
}

// FromEnv lee VCAP_SERVICES del entorno.
func FromEnv(serviceName string) (*Binding, error) {
	return FromVCAP(os.Getenv("VCAP_SERVICES"), serviceName)
}
