package api_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmcleod/postit/api"
	"github.com/jmcleod/postit/postit"
)

func TestSignInCreatesAccountOnFirstUse(t *testing.T) {
	env := setupEnv(t)
	client := newClient(t)

	resp := doJSON(t, client, http.MethodPost, env.srv.URL+"/api/auth/signin", map[string]string{
		"username": "alice",
		"password": "correct-horse",
	}, nil)
	authCookie := cookieNamed(resp, api.AuthCookieName)
	envlp := decodeEnvelope(t, resp)

	require.Equal(t, http.StatusCreated, envlp.Code)
	require.NotNil(t, authCookie)
	assert.True(t, authCookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, authCookie.SameSite)
	assert.Equal(t, "/", authCookie.Path)

	stored, err := env.store.GetUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, postit.RoleUser, stored.Role)
	assert.True(t, stored.IsFirstTime)
	assert.NotEqual(t, "correct-horse", stored.Password, "password must be hashed")

	// The fresh token is the account's single active session.
	cached, found, err := env.cache.Get(context.Background(), stored.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, authCookie.Value, cached)
}

func TestSignInExistingAccount(t *testing.T) {
	env := setupEnv(t)
	signIn(t, env, newClient(t), "alice", "correct-horse")

	client := newClient(t)
	resp := doJSON(t, client, http.MethodPost, env.srv.URL+"/api/auth/signin", map[string]string{
		"username": "alice",
		"password": "correct-horse",
	}, nil)
	envlp := decodeEnvelope(t, resp)

	assert.Equal(t, http.StatusOK, envlp.Code)
}

func TestSignInWrongPassword(t *testing.T) {
	env := setupEnv(t)
	signIn(t, env, newClient(t), "alice", "correct-horse")

	client := newClient(t)
	resp := doJSON(t, client, http.MethodPost, env.srv.URL+"/api/auth/signin", map[string]string{
		"username": "alice",
		"password": "wrong-password",
	}, nil)
	envlp := decodeEnvelope(t, resp)

	assert.Equal(t, http.StatusUnauthorized, envlp.Code)
	assert.Nil(t, cookieNamed(resp, api.AuthCookieName))
}

func TestSignInRejectsInvalidInput(t *testing.T) {
	env := setupEnv(t)
	client := newClient(t)

	cases := []struct {
		name     string
		username string
		password string
	}{
		{"short username", "ab", "correct-horse"},
		{"username with spaces", "a lice", "correct-horse"},
		{"short password", "alice", "short"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doJSON(t, client, http.MethodPost, env.srv.URL+"/api/auth/signin", map[string]string{
				"username": tc.username,
				"password": tc.password,
			}, nil)
			envlp := decodeEnvelope(t, resp)
			assert.Equal(t, http.StatusUnprocessableEntity, envlp.Code)
		})
	}
}

func TestSignInDisabledByPreference(t *testing.T) {
	env := setupEnv(t)
	p, err := env.prefs.Get(context.Background())
	require.NoError(t, err)
	p.IsAuthEnabled = false
	require.NoError(t, env.prefs.Set(context.Background(), p))

	client := newClient(t)
	resp := doJSON(t, client, http.MethodPost, env.srv.URL+"/api/auth/signin", map[string]string{
		"username": "alice",
		"password": "correct-horse",
	}, nil)
	envlp := decodeEnvelope(t, resp)

	assert.Equal(t, http.StatusForbidden, envlp.Code)
}

func TestSignOutRevokesSession(t *testing.T) {
	env := setupEnv(t)
	client := newClient(t)
	user := signIn(t, env, client, "alice", "correct-horse")

	cached, found, err := env.cache.Get(context.Background(), user.ID)
	require.NoError(t, err)
	require.True(t, found)

	resp := doJSON(t, client, http.MethodPost, env.srv.URL+"/api/auth/signout", nil, nil)
	cleared := cookieNamed(resp, api.AuthCookieName)
	envlp := decodeEnvelope(t, resp)

	require.Equal(t, http.StatusOK, envlp.Code)
	require.NotNil(t, cleared)
	assert.Negative(t, cleared.MaxAge)

	_, found, err = env.cache.Get(context.Background(), user.ID)
	require.NoError(t, err)
	assert.False(t, found)

	// The session is gone even if the client kept the cookie value.
	setCookie(t, client, env.srv.URL, api.AuthCookieName, cached)
	resp = doJSON(t, client, http.MethodGet, env.srv.URL+"/api/posts", nil, nil)
	envlp = decodeEnvelope(t, resp)
	assert.Equal(t, http.StatusUnauthorized, envlp.Code)
}
