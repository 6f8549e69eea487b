package api

import (
	"errors"
	"net/http"

	"github.com/jmcleod/postit/token"
)

type tokenData struct {
	Token string `json:"token"`
}

// Token returns the session's access token, minting or refreshing it as
// needed. The token is set as a cookie and echoed in the body so client
// code can attach it to an Authorization header.
//
// An expired token is replaced silently. An invalid one is not: a bad
// signature means tampering or a rotated secret, and the session has to be
// re-established.
func (a *API) Token(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	raw := cookieValue(r, AccessCookieName)
	if raw == "" {
		a.mintAccessToken(w, r, user.ID, "Access token generated")
		return
	}

	_, err := a.verifier.VerifyAccessToken(raw)
	switch {
	case err == nil:
		writeOK(w, "Access token is valid", tokenData{Token: raw})
	case errors.Is(err, token.ErrExpired):
		a.mintAccessToken(w, r, user.ID, "Access token refreshed")
	default:
		writeUnauthorized(w)
	}
}

func (a *API) mintAccessToken(w http.ResponseWriter, r *http.Request, userID, longMessage string) {
	minted, err := a.issuer.IssueAccessToken(userID)
	if err != nil {
		writeError(w, MsgInternalServerError, err.Error())
		return
	}

	setTokenCookie(w, r, AccessCookieName, minted)
	a.audit.logEvent(AuditAccessTokenMinted, r, userID)
	writeOK(w, longMessage, tokenData{Token: minted})
}
