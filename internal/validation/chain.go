package validation

import (
	"time"

	"github.com/dropDatabas3/zonetoken/internal/claims"
)

// Chain es una secuencia ordenada de validadores. Se construye una vez y se
// comparte (solo lectura) entre todos los decoders de tenant.
type Chain struct {
	validators []Validator
}

// NewChain arma la cadena:
//
//	[timestamp(skew)] + custom        si custom (sin nils) no está vacío
//	[timestamp(skew), audience(svc)]  si no
//
// Es decir, una lista custom REEMPLAZA al validador de audiencia por defecto;
// quien la pase y quiera chequear audiencia debe incluir NewAudienceValidator.
// El timestamp siempre está.
func NewChain(svc AudienceConfig, skew time.Duration, custom ...Validator) *Chain {
	vs := []Validator{NewTimestampValidator(skew)}
	extra := make([]Validator, 0, len(custom))
	for _, c := range custom {
		if c != nil {
			extra = append(extra, c)
		}
	}
	if len(extra) > 0 {
		vs = append(vs, extra...)
	} else {
		vs = append(vs, NewAudienceValidator(svc))
	}
	return &Chain{validators: vs}
}

// Of arma una cadena exactamente con los validadores dados.
func Of(vs ...Validator) *Chain {
	return &Chain{validators: append([]Validator(nil), vs...)}
}

// Len devuelve la cantidad de validadores.
func (c *Chain) Len() int { return len(c.validators) }

// Validate corre TODOS los validadores y agrega las fallas en un *ValidationError.
func (c *Chain) Validate(cs *claims.ClaimSet) error {
	var reasons []error
	for _, v := range c.validators {
		if err := v.Validate(cs); err != nil {
			reasons = append(reasons, err)
		}
	}
	if len(reasons) == 0 {
		return nil
	}
	return &ValidationError{Reasons: reasons}
}
