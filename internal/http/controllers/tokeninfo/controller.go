// Package tokeninfo devuelve las claims del token que autenticó el request.
package tokeninfo

import (
	"encoding/json"
	"net/http"

	dto "github.com/dropDatabas3/zonetoken/internal/http/dto/tokeninfo"
	httperrors "github.com/dropDatabas3/zonetoken/internal/http/errors"
	mw "github.com/dropDatabas3/zonetoken/internal/http/middlewares"
)

type Controller struct{}

func NewController() *Controller { return &Controller{} }

// Get requiere RequireAuth antes en la cadena.
func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	cs := mw.GetClaims(r.Context())
	if cs == nil {
		httperrors.WriteError(w, httperrors.ErrTokenMissing, mw.GetRequestID(r.Context()))
		return
	}
	resp := dto.Response{
		ZoneID:    cs.ZoneID,
		Subdomain: cs.Subdomain,
		Subject:   cs.Subject,
		Issuer:    cs.Issuer,
		ClientID:  cs.ClientID,
		Audience:  cs.Audience,
		Scopes:    cs.Scopes,
		Claims:    cs.Claims(),
	}
	if !cs.ExpiresAt.IsZero() {
		exp := cs.ExpiresAt.UTC()
		resp.ExpiresAt = &exp
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(resp)
}
