package jwt

import (
	"fmt"
	"strings"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/dropDatabas3/zonetoken/internal/claims"
)

// Route son los datos de ruteo extraídos de un token SIN verificar la firma.
// Ninguno de los dos es confiable hasta que el decoder del tenant valide el token.
type Route struct {
	ZoneID    string // claim zid, "" si no viene
	Subdomain string // ext_attr.zdn, "" => bucket default
}

var unverifiedParser = jwtv5.NewParser(jwtv5.WithoutClaimsValidation())

// RouteToken parsea estructuralmente el token y extrae zid + ext_attr.zdn.
// Solo falla (ErrMalformedToken) si el token no es parseable o si zid no es string.
// Un ext_attr ausente o raro nunca falla: cae en Subdomain "".
func RouteToken(raw string) (Route, error) {
	if strings.TrimSpace(raw) == "" {
		return Route{}, fmt.Errorf("%w: empty token", ErrMalformedToken)
	}
	if strings.Count(raw, ".") != 2 {
		return Route{}, fmt.Errorf("%w: expected 3 segments", ErrMalformedToken)
	}

	mc := jwtv5.MapClaims{}
	if _, _, err := unverifiedParser.ParseUnverified(raw, mc); err != nil {
		return Route{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	var r Route
	if v, ok := mc[claims.ZoneID]; ok && v != nil {
		zid, isStr := v.(string)
		if !isStr {
			return Route{}, fmt.Errorf("%w: zid is not a string", ErrMalformedToken)
		}
		r.ZoneID = zid
	}
	r.Subdomain = claims.ZoneDomainOf(mc)
	return r, nil
}
