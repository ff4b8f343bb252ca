package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/govscout/govscout-api/internal/infra/observability"
	"github.com/govscout/govscout-api/internal/port"
	"github.com/govscout/govscout-api/internal/service"
)

var tracer = otel.Tracer("handler")

// Services bundles the application services the router exposes.
type Services struct {
	Bootstrap     *service.Bootstrap
	Setup         *service.Setup
	Matching      *service.Matching
	Scoring       *service.Scoring
	Documents     *service.Documents
	Opportunities *service.Opportunities
	Billing       *service.Billing
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(
	svcs Services,
	verifier port.SessionVerifier,
	profiles port.ProfileStore,
	companies port.CompanyStore,
	metrics *observability.Metrics,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler())
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		// The bootstrap gate resolves the session itself: an anonymous
		// caller gets a redirect state, not a 401.
		r.Get("/bootstrap", bootstrapHandler(svcs.Bootstrap, logger))

		// Webhooks authenticate by signature, not by session.
		r.Post("/webhooks/payments", paymentsWebhookHandler(svcs.Billing, logger))

		// Session required, profile not yet: setup is how the profile
		// comes to exist.
		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware(verifier, logger))
			r.Post("/setup", setupHandler(svcs.Setup, logger))
		})

		// Session and completed setup required.
		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware(verifier, logger))
			r.Use(ProfileMiddleware(profiles, logger))

			r.Get("/me", meHandler(companies, logger))

			r.Post("/matches", createMatchesHandler(svcs.Matching, logger))
			r.Get("/matches", listMatchesHandler(svcs.Matching, logger))
			r.Post("/score", scoreHandler(svcs.Scoring, logger))
			r.Post("/documents/analyze", analyzeDocumentHandler(svcs.Documents, logger))

			r.Get("/opportunities/search", searchOpportunitiesHandler(svcs.Opportunities, logger))

			r.Get("/metrics/ai", aiMetricsHandler(metrics))
		})
	})

	return r
}

// ============================================================
// Operational endpoints
// ============================================================

func healthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func aiMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeSuccess(w, http.StatusOK, metrics.GetAIUsageSnapshot())
	}
}
