package api

import (
	"encoding/json"
	"net/http"
)

// GetPreferences returns the site-wide toggles.
func (a *API) GetPreferences(w http.ResponseWriter, r *http.Request) {
	p, err := a.prefs.Get(r.Context())
	if err != nil {
		writeError(w, MsgInternalServerError, err.Error())
		return
	}
	writeOK(w, "Preferences fetched", p)
}

type updatePreferencesRequest struct {
	IsAuthEnabled       *bool `json:"isAuthEnabled"`
	IsPostCreateEnabled *bool `json:"isPostCreateEnabled"`
}

// UpdatePreferences patches the site-wide toggles.
func (a *API) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	p, err := a.prefs.Get(r.Context())
	if err != nil {
		writeError(w, MsgInternalServerError, err.Error())
		return
	}

	var req updatePreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, MsgBadRequest, "invalid request body")
		return
	}
	if req.IsAuthEnabled != nil {
		p.IsAuthEnabled = *req.IsAuthEnabled
	}
	if req.IsPostCreateEnabled != nil {
		p.IsPostCreateEnabled = *req.IsPostCreateEnabled
	}

	if err := a.prefs.Set(r.Context(), p); err != nil {
		writeError(w, MsgInternalServerError, err.Error())
		return
	}

	a.audit.logEvent(AuditPreferencesUpdated, r, userFromContext(r.Context()).ID)
	writeOK(w, "Preferences updated", p)
}
