package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"financetrack/internal/http/handlers"
	"financetrack/internal/middleware"
)

// Options carries the router's cross-cutting configuration.
type Options struct {
	Logger          zerolog.Logger
	AllowedOrigins  []string
	DefaultLocale   string
	CountryLookup   middleware.CountryLookup
	RateLimitPerMin int
	Registry        *prometheus.Registry
}

func NewRouter(app *handlers.App, opts Options) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(opts.Logger))
	r.Use(middleware.CORS(opts.AllowedOrigins))
	r.Use(middleware.I18N(opts.DefaultLocale, opts.CountryLookup))
	if opts.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
	}

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/assistance", func(r chi.Router) {
		r.Post("/", app.AssistanceSubmit)
		r.Get("/next", app.AssistanceNext)
	})

	r.Route("/v1/donations", func(r chi.Router) {
		r.Post("/", app.DonationsCreate)
		r.Get("/", app.DonationsList)
		r.Get("/summary", app.DonationsSummary)
	})

	r.Get("/v1/stats", app.StatsSummary)

	if opts.Registry != nil {
		r.Method(stdhttp.MethodGet, "/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))
	}

	return r
}
