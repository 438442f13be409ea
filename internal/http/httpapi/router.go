package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"storefront/internal/http/handlers"
	"storefront/internal/infra"
	mw "storefront/internal/middleware"
)

// NewRouter wires the HTTP surface. The webhook and health endpoints are
// public; everything else requires a bearer token. Bundles are served
// from local storage under /bundles.
func NewRouter(app *handlers.App, cfg *infra.Config, countries mw.CountryLookup) http.Handler {
	r := chi.NewRouter()

	r.Use(
		mw.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		mw.Logger(app.Logger),
		mw.CORS(cfg.AllowedOrigins),
		mw.I18N("en", countries),
		mw.RateLimit(cfg.RateLimitPerMin, time.Minute),
	)

	r.Get("/v1/healthz", app.Health)
	r.Post("/v1/webhooks/gateway", app.GatewayWebhook)
	r.Get("/v1/stats/summary", app.StatsSummary)

	// The catalog is browsable without a token; access checks and claims
	// are not. A valid token still personalizes the listing.
	r.Group(func(r chi.Router) {
		r.Use(mw.OptionalAuthJWT(cfg.JWTSecret))
		r.Get("/v1/templates", app.TemplatesList)
		r.Get("/v1/templates/{key}", app.TemplatesGet)
	})

	fileServer := http.StripPrefix("/bundles/", http.FileServer(http.Dir(cfg.BundleStoragePath)))
	r.Get("/bundles/*", fileServer.ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(mw.AuthJWT(cfg.JWTSecret))

		r.Route("/v1/templates/{key}", func(r chi.Router) {
			r.Get("/access", app.TemplateAccess)
			r.Post("/claim", app.TemplateClaim)
		})
		r.Route("/v1/checkout", func(r chi.Router) {
			r.Post("/", app.CheckoutCreate)
			r.Post("/{id}/cancel", app.CheckoutCancel)
		})
		r.Get("/v1/deliveries", app.DeliveriesList)
	})

	return r
}
