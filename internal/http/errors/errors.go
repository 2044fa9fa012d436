// Package errors escribe las respuestas de error JSON de la API.
package errors

import (
	"encoding/json"
	"net/http"
)

type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// WriteError escribe err como JSON. requestID puede ser vacío.
func WriteError(w http.ResponseWriter, err error, requestID string) {
	appErr := FromError(err)

	resp := errorResponse{
		Code:      appErr.Code,
		Message:   appErr.Message,
		Detail:    appErr.Detail,
		RequestID: requestID,
	}
	// los 500 no filtran detalle interno
	if appErr.HTTPStatus >= http.StatusInternalServerError && appErr.HTTPStatus != http.StatusServiceUnavailable {
		resp.Detail = ""
	}

	if appErr.Challenge != "" {
		w.Header().Set("WWW-Authenticate", appErr.Challenge)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(resp)
}
