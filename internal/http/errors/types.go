package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dropDatabas3/zonetoken/internal/decoder"
)

// AppError es el error estándar de la superficie HTTP.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // causa, solo para logs

	// Challenge va en WWW-Authenticate cuando no es vacío.
	Challenge string `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// WithDetail devuelve una COPIA con detalle.
func (e *AppError) WithDetail(detail string) *AppError {
	ne := *e
	ne.Detail = detail
	return &ne
}

// WithCause devuelve una COPIA con la causa.
func (e *AppError) WithCause(err error) *AppError {
	ne := *e
	ne.Err = err
	return &ne
}

const (
	bearerInvalid = `Bearer error="invalid_token"`
	retryDetail   = "tenant keys are temporarily unavailable, retry later"
)

var (
	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "resource not found",
		HTTPStatus: http.StatusNotFound,
	}
	ErrMethodNotAllowed = &AppError{
		Code:       "METHOD_NOT_ALLOWED",
		Message:    "method not allowed",
		HTTPStatus: http.StatusMethodNotAllowed,
	}
	ErrInternalServerError = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
	}
	ErrTooManyRequests = &AppError{
		Code:       "RATE_LIMITED",
		Message:    "too many requests",
		HTTPStatus: http.StatusTooManyRequests,
	}
	ErrTokenMissing = &AppError{
		Code:       "TOKEN_MISSING",
		Message:    "bearer token required",
		HTTPStatus: http.StatusUnauthorized,
		Challenge:  `Bearer`,
	}
)

// FromError traduce cualquier error a AppError.
// Los *decoder.Error se mapean por Kind: fallas del token => 401, fallas
// transitorias de resolución de claves => 503.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	var de *decoder.Error
	if errors.As(err, &de) {
		out := &AppError{
			Code:       string(de.Kind),
			Message:    de.Message,
			Detail:     de.Detail,
			HTTPStatus: http.StatusUnauthorized,
			Err:        err,
			Challenge:  bearerInvalid,
		}
		if de.Retryable() {
			// la causa trae la URL de claves del tenant y errores de red; va solo a logs
			out.HTTPStatus = http.StatusServiceUnavailable
			out.Challenge = ""
			out.Detail = retryDetail
		}
		return out
	}
	return ErrInternalServerError.WithCause(err)
}
