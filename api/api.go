package api

import (
	"context"
	_ "embed"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-openapi/runtime/middleware"

	"github.com/jmcleod/postit/postit"
	"github.com/jmcleod/postit/prefs"
	"github.com/jmcleod/postit/profanity"
	"github.com/jmcleod/postit/ratelimit"
	"github.com/jmcleod/postit/storage"
	"github.com/jmcleod/postit/token"
	"github.com/jmcleod/postit/tokencache"
)

// Classifier screens post content before it is stored. The production
// implementation calls the external profanity service; tests substitute a
// stub.
type Classifier interface {
	Classify(ctx context.Context, content string) (postit.PostStatus, error)
}

// API holds the dependencies needed by the HTTP handlers.
type API struct {
	store      storage.Store
	cache      tokencache.Cache
	prefs      prefs.Store
	issuer     *token.Issuer
	verifier   *token.Verifier
	limiter    *ratelimit.Limiter
	classifier Classifier
	audit      *auditLogger
}

//go:embed openapi.yaml
var openapiSpec []byte

// Option configures the API instance.
type Option func(*API)

// WithLogger sets the structured logger for audit events.
// If not set, a default JSON logger writing to stderr is used.
func WithLogger(logger *slog.Logger) Option {
	return func(a *API) {
		a.audit = newAuditLogger(logger)
	}
}

// WithRateLimiter replaces the default limiter (100 requests / 60s per
// client identifier).
func WithRateLimiter(l *ratelimit.Limiter) Option {
	return func(a *API) {
		a.limiter = l
	}
}

// WithClassifier replaces the default profanity client.
func WithClassifier(c Classifier) Option {
	return func(a *API) {
		a.classifier = c
	}
}

// New creates a new API instance.
func New(store storage.Store, cache tokencache.Cache, prefStore prefs.Store, issuer *token.Issuer, verifier *token.Verifier, opts ...Option) *API {
	a := &API{
		store:    store,
		cache:    cache,
		prefs:    prefStore,
		issuer:   issuer,
		verifier: verifier,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.limiter == nil {
		a.limiter = ratelimit.NewDefault()
	}
	if a.classifier == nil {
		a.classifier = profanity.New()
	}
	if a.audit == nil {
		a.audit = newAuditLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	}
	return a
}

// Router returns a chi.Router with all routes mounted behind the gate.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(SecurityHeaders)

	r.Get("/api/v1/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openapiSpec)
	})

	r.Handle("/docs*", middleware.SwaggerUI(middleware.SwaggerUIOpts{
		SpecURL: "/api/v1/openapi.yaml",
		Path:    "docs",
	}, nil))

	r.Handle("/redoc*", middleware.Redoc(middleware.RedocOpts{
		SpecURL: "/api/v1/openapi.yaml",
		Path:    "redoc",
	}, nil))

	r.Group(func(r chi.Router) {
		r.Use(a.RateLimit)

		// Sign-in is the only API route reachable without a session.
		r.Post("/api/auth/signin", a.SignIn)

		r.Group(func(r chi.Router) {
			r.Use(a.Gate)

			r.Get("/api/token", a.Token)
			r.Post("/api/auth/signout", a.SignOut)

			r.Get("/api/posts", a.ListPosts)
			r.Get("/api/posts/count", a.CountPosts)
			r.Get("/api/posts/{postID}", a.GetPost)

			r.Get("/api/users/{userID}", a.GetUser)

			// Mutations require a bearer access token on top of the
			// auth cookie.
			r.Group(func(r chi.Router) {
				r.Use(a.RequireAccessToken)

				r.Post("/api/posts", a.CreatePost)
				r.Patch("/api/posts/{postID}", a.UpdatePost)
				r.Delete("/api/posts/{postID}", a.DeletePost)

				r.With(a.RequireModerator).Post("/api/posts/moderation/approve-pending", a.ApprovePending)
				r.With(a.RequireModerator).Post("/api/posts/moderation/reject-pending", a.RejectPending)
				r.With(a.RequireModerator).Delete("/api/posts/moderation/pending", a.DeletePending)

				r.With(a.RequireAdmin).Get("/api/users", a.ListUsers)
				r.Patch("/api/users/{userID}", a.UpdateUser)
				r.Delete("/api/users/{userID}", a.DeleteUser)
				r.With(a.RequireAdmin).Post("/api/users/{userID}/role", a.ChangeRole)
				r.With(a.RequireAdmin).Post("/api/users/{userID}/restriction", a.ChangeRestriction)

				r.With(a.RequireAdmin).Get("/api/preferences", a.GetPreferences)
				r.With(a.RequireAdmin).Patch("/api/preferences", a.UpdatePreferences)
			})

			// Pages.
			r.Get("/", a.HomePage)
			r.Get("/auth", a.AuthPage)
			r.Get("/profile", a.ProfilePage)
			r.Get("/admin", a.AdminPage)
			r.Get("/admin/users", a.AdminUsersPage)
			r.Get("/admin/posts", a.AdminPostsPage)
			r.Get("/admin/preferences", a.AdminPreferencesPage)
		})
	})

	return r
}
