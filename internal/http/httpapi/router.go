package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"studio/internal/http/handlers"
	"studio/internal/middleware"
)

// Options configures cross-cutting middleware.
type Options struct {
	CORSOrigins     []string
	DefaultLocale   string
	CountryLookup   middleware.CountryLookup
	RateLimitPerMin int
	JobStartsPerMin int
	JWTAudience     string
	StaticDir       string
}

func NewRouter(app *handlers.App, secret string, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(app.Logger),
		chimw.Recoverer,
		middleware.CORS(opts.CORSOrigins),
		middleware.RateLimit(opts.RateLimitPerMin, time.Minute),
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
	)

	requireAuth := middleware.AuthJWT(secret, opts.JWTAudience)
	optionalAuth := middleware.OptionalAuth(secret, opts.JWTAudience)
	startLimit := middleware.RateLimitByUser(opts.JobStartsPerMin, time.Minute)

	if opts.StaticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir))))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/healthz", app.Health)
		r.Get("/openapi.json", app.OpenAPIJSON)
		r.Get("/docs", app.OpenAPIDocs)

		r.Route("/auth", func(r chi.Router) {
			r.Get("/providers", app.AuthProviders)
			r.Post("/{provider}/signin", app.AuthSignIn)
			r.Post("/callback", app.AuthCallback)
			r.With(requireAuth).Post("/signout", app.AuthSignOut)
		})

		r.Get("/generator/options", app.GeneratorOptions)
		r.Get("/editor/options", app.EditorOptions)
		r.Get("/training/tiers", app.TrainingTiers)
		r.With(optionalAuth).Post("/prompts/enhance", app.PromptEnhance)

		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/explore", app.Explore)
			r.Get("/explore/facets", app.ExploreFacets)
			r.Get("/explore/trending", app.ExploreTrending)
			r.Get("/explore/featured", app.ExploreFeatured)
			r.Get("/feed", app.Feed)
			r.Get("/items/{id}", app.ItemGet)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", app.Me)

			r.With(startLimit).Post("/generator/jobs", app.GeneratorStart)
			r.With(startLimit).Post("/editor/jobs", app.EditorStart)

			r.Get("/training/uploads", app.UploadsList)
			r.Post("/training/uploads", app.UploadsAdd)
			r.Delete("/training/uploads", app.UploadsClear)
			r.Delete("/training/uploads/{id}", app.UploadsRemove)
			r.With(startLimit).Post("/training/jobs", app.TrainingStart)

			r.Get("/jobs", app.JobsList)
			r.Get("/jobs/{id}", app.JobGet)
			r.Post("/jobs/{id}/cancel", app.JobCancel)
			r.Get("/jobs/{id}/events", app.JobEvents)

			r.Post("/items/{id}/like", app.ItemLike)
			r.Post("/items/{id}/save", app.ItemSave)

			r.Get("/profile", app.Profile)
			r.Post("/profile/subscription", app.ProfileSubscription)
			r.Get("/profile/posts", app.ProfilePosts)
		})
	})

	return r
}
