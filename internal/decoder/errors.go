package decoder

import (
	"errors"
	"fmt"

	"github.com/dropDatabas3/zonetoken/internal/validation"
)

// Kind categoriza las fallas de Decode.
type Kind string

const (
	KindMalformedToken        Kind = "MALFORMED_TOKEN"
	KindKeyResolutionFailed   Kind = "KEY_RESOLUTION_FAILED"
	KindKeySetUnavailable     Kind = "KEYSET_UNAVAILABLE"
	KindSignatureInvalid      Kind = "SIGNATURE_INVALID"
	KindClaimValidationFailed Kind = "CLAIM_VALIDATION_FAILED"
)

// Error es el error tipado que devuelve Decode.
// errors.Is compara por Kind, así que cualquier copia (WithDetail/WithCause)
// matchea contra las variables Err* de abajo.
type Error struct {
	Kind    Kind
	Message string
	Detail  string
	Err     error // causa; no se expone al cliente por defecto
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Kind, e.Message, e.Detail)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Retryable: true si el sistema no pudo validar AHORA (transitorio);
// false si el token en sí es inválido.
func (e *Error) Retryable() bool {
	return e.Kind == KindKeyResolutionFailed || e.Kind == KindKeySetUnavailable
}

// WithDetail devuelve una COPIA con detalle.
func (e *Error) WithDetail(detail string) *Error {
	ne := *e
	ne.Detail = detail
	return &ne
}

// WithCause devuelve una COPIA con la causa (y su texto como detalle).
func (e *Error) WithCause(err error) *Error {
	ne := *e
	ne.Err = err
	if err != nil {
		ne.Detail = err.Error()
	}
	return &ne
}

var (
	ErrMalformedToken = &Error{
		Kind:    KindMalformedToken,
		Message: "token is not a parseable JWT",
	}
	ErrKeyResolutionFailed = &Error{
		Kind:    KindKeyResolutionFailed,
		Message: "could not resolve a decoder for the token's tenant",
	}
	ErrKeySetUnavailable = &Error{
		Kind:    KindKeySetUnavailable,
		Message: "tenant key set could not be fetched",
	}
	ErrSignatureInvalid = &Error{
		Kind:    KindSignatureInvalid,
		Message: "token signature is invalid",
	}
	ErrClaimValidationFailed = &Error{
		Kind:    KindClaimValidationFailed,
		Message: "token claims failed validation",
	}
)

// KindOf devuelve el Kind de err, o "" si no es un *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsRetryable es un atajo para callers que solo tienen un error.
func IsRetryable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Retryable()
}

// Reasons devuelve las razones de rechazo de un ClaimValidationFailed.
func Reasons(err error) []error {
	var ve *validation.ValidationError
	if errors.As(err, &ve) {
		return append([]error(nil), ve.Reasons...)
	}
	return nil
}
