package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouteOptions carries deployment-specific routing knobs.
type RouteOptions struct {
	// AllowedOrigins for the owner dashboard frontend. Credentials are
	// allowed, so wildcards are rejected by the CORS layer.
	AllowedOrigins []string
	// DevMode skips the auth middleware and attributes every owner
	// request to a fixed local identity.
	DevMode bool
}

// SetupRoutes configures all routes. Public landing-page endpoints live
// under /c/{slug} with no auth; the owner API under /api requires a
// session.
func SetupRoutes(h *Handlers, opts RouteOptions) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/health", h.HealthCheck)
	r.Method("GET", "/metrics", promhttp.Handler())

	// Auth routes (no auth required)
	if h.auth != nil {
		r.Get("/auth/login", h.auth.HandleLogin)
		r.Get("/auth/callback", h.auth.HandleCallback)
		r.Get("/auth/logout", h.auth.HandleLogout)
		r.Get("/auth/user", h.auth.HandleUserInfo)
	}

	// Public landing-page routes
	r.Route("/c/{slug}", func(r chi.Router) {
		r.Get("/", h.PublicCampaign)
		r.Post("/entries", h.SubmitEntry)
		r.Get("/entries/{entryID}", h.PublicEntry)
		r.Post("/entries/{entryID}/actions/{actionID}", h.CompleteBonusAction)
	})

	// Owner API (session required)
	r.Route("/api", func(r chi.Router) {
		if h.auth != nil && !opts.DevMode {
			r.Use(h.auth.RequireAuth)
		}
		r.Route("/campaigns", func(r chi.Router) {
			r.Get("/", h.ListCampaigns)
			r.Post("/", h.CreateCampaign)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetCampaign)
				r.Put("/", h.UpdateCampaign)
				r.Delete("/", h.DeleteCampaign)
				r.Post("/publish", h.PublishCampaign)
				r.Get("/dashboard", h.CampaignDashboard)
				r.Get("/entries", h.ListEntries)
				r.Get("/entries/export", h.ExportEntries)
				r.Post("/image", h.UploadFeaturedImage)
			})
		})
	})

	return r
}
