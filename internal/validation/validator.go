// Package validation implementa la cadena de validadores de claims que corre
// después de verificar la firma.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dropDatabas3/zonetoken/internal/claims"
)

// Razones de rechazo. Los validadores las envuelven con detalle (fmt.Errorf %w).
var (
	ErrExpiredToken     = errors.New("token expired")
	ErrNotYetValid      = errors.New("token not yet valid")
	ErrAudienceMismatch = errors.New("audience mismatch")
	ErrMissingClaim     = errors.New("missing required claim")
)

// Validator chequea un ClaimSet ya verificado. nil = ok.
type Validator interface {
	Validate(cs *claims.ClaimSet) error
}

// ValidatorFunc adapta una función a Validator.
type ValidatorFunc func(cs *claims.ClaimSet) error

func (f ValidatorFunc) Validate(cs *claims.ClaimSet) error { return f(cs) }

// ValidationError agrega todas las razones de rechazo de una cadena.
type ValidationError struct {
	Reasons []error
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Reasons))
	for _, r := range e.Reasons {
		parts = append(parts, r.Error())
	}
	return "claim validation failed: " + strings.Join(parts, "; ")
}

// Unwrap permite errors.Is(err, ErrExpiredToken) sobre el agregado.
func (e *ValidationError) Unwrap() []error { return e.Reasons }

// RequireClaims rechaza si falta alguno de los claims indicados.
func RequireClaims(names ...string) Validator {
	return ValidatorFunc(func(cs *claims.ClaimSet) error {
		var missing []string
		for _, n := range names {
			if !cs.Has(n) {
				missing = append(missing, n)
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: %s", ErrMissingClaim, strings.Join(missing, ","))
		}
		return nil
	})
}
