package validation

import (
	"fmt"
	"strings"

	"github.com/dropDatabas3/zonetoken/internal/claims"
)

// AudienceConfig es la parte de la configuración del servicio que fija la audiencia esperada.
type AudienceConfig interface {
	ClientID() string
	AppID() string
}

// AudienceValidator acepta el token si:
//   - su client id (cid/client_id/azp) es el client id configurado, o
//   - alguna audiencia, truncada en el primer '.', es el xsappname o el client id.
//
// Sin aud, las audiencias se derivan de los scopes ("app1.read" => "app1").
type AudienceValidator struct {
	cfg AudienceConfig
}

func NewAudienceValidator(cfg AudienceConfig) *AudienceValidator {
	return &AudienceValidator{cfg: cfg}
}

func (v *AudienceValidator) Validate(cs *claims.ClaimSet) error {
	clientID := v.cfg.ClientID()
	appID := v.cfg.AppID()

	if clientID != "" && cs.ClientID == clientID {
		return nil
	}

	for _, aud := range allowedAudiences(cs) {
		if aud == "" {
			continue
		}
		if aud == appID || aud == clientID {
			return nil
		}
	}
	return fmt.Errorf("%w: expected %q", ErrAudienceMismatch, firstNonEmpty(appID, clientID))
}

func allowedAudiences(cs *claims.ClaimSet) []string {
	src := cs.Audience
	if len(src) == 0 {
		src = cs.Scopes
	}
	out := make([]string, 0, len(src))
	for _, a := range src {
		if i := strings.IndexByte(a, '.'); i >= 0 {
			a = a[:i]
		}
		out = append(out, a)
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
