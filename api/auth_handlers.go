package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jmcleod/postit/postit"
	"github.com/jmcleod/postit/storage"
)

type signInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type signInData struct {
	User postit.User `json:"user"`
}

// SignIn authenticates a user, creating the account on first use. Both
// paths end the same way: a fresh auth token becomes the single active
// session for the account, superseding any earlier one.
func (a *API) SignIn(w http.ResponseWriter, r *http.Request) {
	p, err := a.prefs.Get(r.Context())
	if err != nil {
		writeError(w, MsgInternalServerError, err.Error())
		return
	}
	if !p.IsAuthEnabled {
		writeError(w, MsgForbidden, "Authentication is currently disabled")
		return
	}

	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, MsgBadRequest, "invalid request body")
		return
	}
	if err := postit.ValidateUsername(req.Username); err != nil {
		mapError(w, err)
		return
	}
	if err := postit.ValidatePassword(req.Password); err != nil {
		mapError(w, err)
		return
	}

	created := false
	user, err := a.store.GetUserByUsername(r.Context(), req.Username)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		user, err = a.createAccount(r, req)
		if err != nil {
			mapError(w, err)
			return
		}
		created = true
	case err != nil:
		writeError(w, MsgInternalServerError, err.Error())
		return
	default:
		if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
			a.audit.logFailure(AuditSignInFailure, r, "wrong password")
			writeError(w, MsgUnauthorized, "Invalid credentials")
			return
		}
	}

	authToken, err := a.issuer.IssueAuthToken(user.ID)
	if err != nil {
		writeError(w, MsgInternalServerError, err.Error())
		return
	}
	if err := a.cache.Put(r.Context(), user.ID, authToken); err != nil {
		writeError(w, MsgInternalServerError, err.Error())
		return
	}

	setTokenCookie(w, r, AuthCookieName, authToken)
	a.audit.logEvent(AuditSignInSuccess, r, user.ID)

	user.Password = ""
	if created {
		writeEnvelope(w, MsgCreated, "Account created", signInData{User: user})
		return
	}
	writeOK(w, "Signed in", signInData{User: user})
}

func (a *API) createAccount(r *http.Request, req signInRequest) (postit.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return postit.User{}, err
	}

	user := postit.User{
		ID:          uuid.NewString(),
		Username:    req.Username,
		Password:    string(hash),
		IsFirstTime: true,
		Role:        postit.RoleUser,
		CreatedAt:   time.Now().UTC(),
	}
	if err := a.store.CreateUser(r.Context(), user); err != nil {
		return postit.User{}, err
	}

	a.audit.logEvent(AuditAccountCreated, r, user.ID)
	return user, nil
}

// SignOut revokes the session and deletes the token cookies.
func (a *API) SignOut(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	if err := a.cache.Remove(r.Context(), user.ID); err != nil {
		writeError(w, MsgInternalServerError, err.Error())
		return
	}

	clearTokenCookies(w, r)
	a.audit.logEvent(AuditSignOut, r, user.ID)
	writeOK(w, "Signed out", nil)
}
