// Package httpapi assembles the HTTP router: middleware chain, API routes
// and static serving for locally stored design files.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"printstudio/internal/http/handlers"
	"printstudio/internal/infra/geoip"
	"printstudio/internal/middleware"
)

// Options carries the router knobs that come from configuration.
type Options struct {
	CORSOrigins     []string
	RateLimitPerMin int
	DefaultLocale   string
	GeoIP           geoip.CountryResolver
	StaticDir       string
}

// NewRouter wires every route onto the handler container.
func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(opts.CORSOrigins),
	)
	if opts.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
	}
	var lookup middleware.CountryLookup
	if opts.GeoIP != nil {
		lookup = opts.GeoIP.CountryCode
	}
	r.Use(middleware.Locale(opts.DefaultLocale, lookup))

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/variants/{variantID}", func(r chi.Router) {
		r.Get("/print-areas", app.VariantPrintAreas)
		r.Get("/placements/{placementKey}/preview", app.PlacementPreview)
	})

	r.Route("/v1/designs/{designID}/placements/{placementKey}", func(r chi.Router) {
		r.Put("/", app.PutPlacement)
		r.Patch("/", app.PatchPlacement)
		r.Delete("/", app.DeletePlacement)
	})
	r.Get("/v1/placements", app.ListPlacements)

	r.Route("/v1/compliance", func(r chi.Router) {
		r.Post("/validate", app.ValidateCompliance)
		r.Post("/autofix", app.AutoFixCompliance)
	})

	r.Route("/v1/assets", func(r chi.Router) {
		r.Post("/", app.UploadAsset)
		r.Post("/register", app.RegisterAsset)
		r.Get("/", app.ListAssets)
		r.Get("/{assetID}", app.GetAsset)
	})

	r.Route("/v1/drafts/{draftID}", func(r chi.Router) {
		r.Put("/placements", app.SaveDraft)
		r.Get("/placements", app.GetDraft)
		r.Post("/load", app.LoadDraft)
		r.Delete("/", app.DeleteDraft)
		r.Post("/validate", app.EnqueueDraftValidation)
	})

	r.Get("/v1/orders/payload", app.OrderPayload)
	r.Get("/v1/orders/bundle", app.OrderBundle)

	if opts.StaticDir != "" {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir)))
		r.Handle("/static/*", fileServer)
	}

	return r
}
