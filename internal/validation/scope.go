package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/dropDatabas3/zonetoken/internal/claims"
)

// ErrMissingScope: el token no trae un scope requerido.
var ErrMissingScope = errors.New("missing required scope")

// Reglas de nombre de scope:
//   - minúsculas, dígitos y ":_.-!" (el "!" aparece en xsappnames: "app!t12.read")
//   - empieza y termina en [a-z0-9]
//   - largo 1..128
//
// Se excluyen espacios y ";" para que un scope mal configurado no se confunda
// con la lista separada por espacios del claim.
var scopeNameRe = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9:_.!-]{0,126}[a-z0-9])?$`)

// ValidScopeName indica si name es un nombre de scope aceptable.
func ValidScopeName(name string) bool {
	return scopeNameRe.MatchString(name)
}

// LocalScope califica un scope local con el xsappname: ("app!t1", "read") => "app!t1.read".
func LocalScope(appID, local string) string {
	if appID == "" || strings.Contains(local, ".") {
		return local
	}
	return appID + "." + local
}

// RequireScopes rechaza el token si falta alguno de los scopes (comparación exacta).
// Falla al construir si algún nombre es inválido.
func RequireScopes(required ...string) (Validator, error) {
	want := make([]string, 0, len(required))
	for _, s := range required {
		s = strings.ToLower(strings.TrimSpace(s))
		if !ValidScopeName(s) {
			return nil, fmt.Errorf("validation: invalid scope name %q", s)
		}
		want = append(want, s)
	}
	return ValidatorFunc(func(cs *claims.ClaimSet) error {
		have := make(map[string]struct{}, len(cs.Scopes))
		for _, s := range cs.Scopes {
			have[strings.ToLower(s)] = struct{}{}
		}
		var missing []string
		for _, s := range want {
			if _, ok := have[s]; !ok {
				missing = append(missing, s)
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: %s", ErrMissingScope, strings.Join(missing, ","))
		}
		return nil
	}), nil
}
