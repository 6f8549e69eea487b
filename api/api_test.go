package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jmcleod/postit/api"
	"github.com/jmcleod/postit/postit"
	"github.com/jmcleod/postit/prefs"
	"github.com/jmcleod/postit/ratelimit"
	"github.com/jmcleod/postit/storage/memory"
	"github.com/jmcleod/postit/token"
	"github.com/jmcleod/postit/tokencache"
)

const (
	testAuthSecret   = "test-auth-secret"
	testAccessSecret = "test-access-secret"
)

// approveAll stands in for the profanity service.
type approveAll struct{}

func (approveAll) Classify(ctx context.Context, content string) (postit.PostStatus, error) {
	return postit.StatusApproved, nil
}

type testEnv struct {
	srv      *httptest.Server
	store    *memory.Store
	cache    *tokencache.MemoryCache
	prefs    *prefs.MemoryStore
	issuer   *token.Issuer
	verifier *token.Verifier
}

type envOption func(*[]api.Option)

func withLimiter(l *ratelimit.Limiter) envOption {
	return func(opts *[]api.Option) {
		*opts = append(*opts, api.WithRateLimiter(l))
	}
}

func withClassifier(c api.Classifier) envOption {
	return func(opts *[]api.Option) {
		*opts = append(*opts, api.WithClassifier(c))
	}
}

func setupEnv(t *testing.T, envOpts ...envOption) *testEnv {
	t.Helper()

	store := memory.New()
	cache := tokencache.NewMemoryCache()
	prefStore := prefs.NewMemoryStore()

	issuer, err := token.NewIssuer(testAuthSecret, testAccessSecret)
	require.NoError(t, err)
	verifier, err := token.NewVerifier(testAuthSecret, testAccessSecret)
	require.NoError(t, err)

	opts := []api.Option{
		api.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		// Generous enough that tests never trip it by accident.
		api.WithRateLimiter(ratelimit.New(10_000, time.Minute)),
		api.WithClassifier(approveAll{}),
	}
	for _, o := range envOpts {
		o(&opts)
	}

	a := api.New(store, cache, prefStore, issuer, verifier, opts...)
	srv := httptest.NewServer(a.Router())
	t.Cleanup(srv.Close)

	return &testEnv{
		srv:      srv,
		store:    store,
		cache:    cache,
		prefs:    prefStore,
		issuer:   issuer,
		verifier: verifier,
	}
}

// newClient returns a cookie-jarred client that does not follow redirects,
// so tests can assert on the 3xx responses the gate produces.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// doJSON issues a request with the forwarding header the rate limiter
// keys on; every deployment sits behind a proxy that sets it.
func doJSON(t *testing.T, client *http.Client, method, url string, body any, header http.Header) *http.Response {
	t.Helper()
	var reqBody bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&reqBody).Encode(body))
	}
	req, err := http.NewRequestWithContext(context.Background(), method, url, &reqBody)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}
	resp, err := client.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeEnvelope(t *testing.T, resp *http.Response) api.Envelope {
	t.Helper()
	defer resp.Body.Close()
	var env api.Envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env
}

// signIn creates (or signs into) an account through the API and returns
// the user. The client's jar holds the auth cookie afterwards.
func signIn(t *testing.T, env *testEnv, client *http.Client, username, password string) postit.User {
	t.Helper()
	resp := doJSON(t, client, http.MethodPost, env.srv.URL+"/api/auth/signin", map[string]string{
		"username": username,
		"password": password,
	}, nil)
	envlp := decodeEnvelope(t, resp)
	require.Contains(t, []int{http.StatusOK, http.StatusCreated}, envlp.Code)

	raw, err := json.Marshal(envlp.Data)
	require.NoError(t, err)
	var data struct {
		User postit.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(raw, &data))
	require.NotEmpty(t, data.User.ID)
	return data.User
}

// fetchAccessToken calls GET /api/token and returns the bearer token.
func fetchAccessToken(t *testing.T, env *testEnv, client *http.Client) string {
	t.Helper()
	resp := doJSON(t, client, http.MethodGet, env.srv.URL+"/api/token", nil, nil)
	envlp := decodeEnvelope(t, resp)
	require.Equal(t, http.StatusOK, envlp.Code)

	raw, err := json.Marshal(envlp.Data)
	require.NoError(t, err)
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(raw, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func bearer(token string) http.Header {
	return http.Header{"Authorization": []string{"Bearer " + token}}
}

// promote flips a user's role directly in the store, bypassing the API;
// admin accounts are provisioned out of band in production too.
func promote(t *testing.T, env *testEnv, userID string, role postit.Role) {
	t.Helper()
	user, err := env.store.GetUser(context.Background(), userID)
	require.NoError(t, err)
	user.Role = role
	require.NoError(t, env.store.UpdateUser(context.Background(), user))
}
