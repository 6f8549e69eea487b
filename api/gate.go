package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jmcleod/postit/postit"
	"github.com/jmcleod/postit/storage"
	"github.com/jmcleod/postit/token"
)

type contextKey int

const userKey contextKey = iota

const (
	// AuthCookieName carries the long-lived auth token. It has no max-age;
	// it stops working when the cached copy is superseded or removed.
	AuthCookieName = "post_it__auth_token"
	// AccessCookieName carries the short-lived access token.
	AccessCookieName = "post_it__access_token"

	signInPath = "/auth"
)

// RateLimit applies the fixed-window limiter to API routes. The client is
// identified by the X-Forwarded-For header (first hop) or X-Real-IP; the
// deployment always sits behind a proxy that sets one of them, so a request
// with neither is a configuration fault and fails hard.
func (a *API) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isAPIRoute(r) {
			next.ServeHTTP(w, r)
			return
		}

		id := clientIdentifier(r)
		if id == "" {
			writeError(w, MsgInternalServerError, "no client identifier header on request")
			return
		}

		if !a.limiter.Allow(id) {
			a.audit.logFailure(AuditRateLimited, r, "window exhausted")
			writeError(w, MsgTooManyRequests, "Too many requests, try again later")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Gate authenticates every request behind it. API routes get envelope
// rejections; page routes get redirects to the sign-in page. On success the
// resolved user is stored on the request context.
func (a *API) Gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		isAPI := isAPIRoute(r)
		raw := cookieValue(r, AuthCookieName)

		// A signed-in user has no business on the sign-in page.
		if !isAPI && r.URL.Path == signInPath {
			if raw != "" {
				http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		if raw == "" {
			a.rejectUnauthenticated(w, r, isAPI)
			return
		}

		// Cheap decode first: the claimed subject is only a lookup key
		// until the signature check below confirms it.
		claims, err := token.Decode(raw)
		if err != nil || claims.Subject == "" {
			clearTokenCookies(w, r)
			a.rejectUnauthenticated(w, r, isAPI)
			return
		}

		identity, err := a.verifier.VerifyAuthToken(raw)
		if err != nil {
			clearTokenCookies(w, r)
			a.rejectUnauthenticated(w, r, isAPI)
			return
		}

		current, err := a.cache.IsCurrent(r.Context(), claims.Subject, raw)
		if err != nil {
			writeError(w, MsgInternalServerError, err.Error())
			return
		}
		if !current {
			// Superseded by a later sign-in, or revoked.
			clearTokenCookies(w, r)
			a.rejectUnauthenticated(w, r, isAPI)
			return
		}

		user, err := a.store.GetUser(r.Context(), identity.UserID)
		if errors.Is(err, storage.ErrNotFound) {
			clearTokenCookies(w, r)
			a.rejectUnauthenticated(w, r, isAPI)
			return
		}
		if err != nil {
			writeError(w, MsgInternalServerError, err.Error())
			return
		}
		user.Password = ""

		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *API) rejectUnauthenticated(w http.ResponseWriter, r *http.Request, isAPI bool) {
	if isAPI {
		writeUnauthorized(w)
		return
	}
	http.Redirect(w, r, signInPath, http.StatusTemporaryRedirect)
}

// RequireAccessToken guards mutating API routes. It reads the short-lived
// token from the Authorization header, not the cookie; an expired token is
// rejected here and healed by a follow-up call to GET /api/token.
func (a *API) RequireAccessToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			writeUnauthorized(w)
			return
		}

		identity, err := a.verifier.VerifyAccessToken(raw)
		if err != nil {
			writeUnauthorized(w)
			return
		}

		// The bearer token must belong to the session that passed the gate.
		if user := userFromContext(r.Context()); user.ID != identity.UserID {
			writeUnauthorized(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireModerator admits mods and admins.
func (a *API) RequireModerator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !userFromContext(r.Context()).Role.CanModerate() {
			writeError(w, MsgForbidden, "You are not allowed to moderate posts")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin admits admins only.
func (a *API) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userFromContext(r.Context()).Role != postit.RoleAdmin {
			writeError(w, MsgForbidden, "You are not allowed to do that")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isAPIRoute(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api")
}

func clientIdentifier(r *http.Request) string {
	if v := r.Header.Get("X-Forwarded-For"); v != "" {
		first, _, _ := strings.Cut(v, ",")
		return strings.TrimSpace(first)
	}
	return strings.TrimSpace(r.Header.Get("X-Real-IP"))
}

func cookieValue(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func setTokenCookie(w http.ResponseWriter, r *http.Request, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   requestIsSecure(r),
		SameSite: http.SameSiteStrictMode,
	})
}

func clearTokenCookies(w http.ResponseWriter, r *http.Request) {
	for _, name := range []string{AuthCookieName, AccessCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			Secure:   requestIsSecure(r),
			SameSite: http.SameSiteStrictMode,
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
		})
	}
}

func requestIsSecure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	if strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		return true
	}
	return strings.Contains(strings.ToLower(r.Header.Get("Forwarded")), "proto=https")
}

func userFromContext(ctx context.Context) postit.User {
	user, _ := ctx.Value(userKey).(postit.User)
	return user
}
