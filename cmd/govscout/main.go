package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/govscout/govscout-api/internal/config"
	"github.com/govscout/govscout-api/internal/domain"
	"github.com/govscout/govscout-api/internal/handler"
	"github.com/govscout/govscout-api/internal/infra/ai"
	"github.com/govscout/govscout-api/internal/infra/cache"
	"github.com/govscout/govscout-api/internal/infra/observability"
	"github.com/govscout/govscout-api/internal/infra/payments"
	"github.com/govscout/govscout-api/internal/infra/resilience"
	"github.com/govscout/govscout-api/internal/infra/samgov"
	"github.com/govscout/govscout-api/internal/infra/supabase"
	"github.com/govscout/govscout-api/internal/port"
	"github.com/govscout/govscout-api/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("auth_verify_mode", cfg.AuthVerifyMode),
		zap.String("anthropic_model", cfg.AnthropicModel),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(context.Background(), "govscout-api", cfg.OTLPEndpoint)
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	searchCache := cache.New[[]domain.OpportunitySummary](cfg.CacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
	}

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	supabaseClient := supabase.NewClient(
		httpClient,
		cfg.SupabaseURL,
		cfg.SupabaseAnonKey,
		cfg.SupabaseServiceKey,
		resilience.NewCircuitBreaker("supabase"),
		resilienceCfg,
		logger,
	)

	var verifier port.SessionVerifier
	if cfg.AuthVerifyMode == "local" {
		logger.Info("verifying sessions locally against the JWT secret")
		verifier = supabase.NewLocalVerifier(cfg.SupabaseJWTSecret)
	} else {
		logger.Info("verifying sessions against the auth provider",
			zap.String("supabase_url", cfg.SupabaseURL),
		)
		verifier = supabase.NewRemoteVerifier(httpClient, cfg.SupabaseURL, cfg.SupabaseAnonKey, logger)
	}

	aiClient := ai.NewClient(
		httpClient,
		cfg.AnthropicAPIKey,
		cfg.AnthropicModel,
		resilience.NewCircuitBreaker("anthropic"),
		logger,
	)

	samClient := samgov.NewClient(
		httpClient,
		cfg.SAMAPIURL,
		cfg.SAMAPIKey,
		resilience.NewCircuitBreaker("samgov"),
		resilienceCfg,
		logger,
	)

	webhookVerifier := payments.NewStripeVerifier(cfg.StripeWebhookSecret)

	// --- Services ---
	svcs := handler.Services{
		Bootstrap:     service.NewBootstrap(verifier, supabaseClient, supabaseClient, cfg.LoginURL, metrics, logger),
		Setup:         service.NewSetup(supabaseClient, metrics, logger),
		Matching:      service.NewMatching(supabaseClient, supabaseClient, supabaseClient, aiClient, metrics, logger),
		Scoring:       service.NewScoring(supabaseClient, supabaseClient, aiClient, metrics, logger),
		Documents:     service.NewDocuments(supabaseClient, aiClient, metrics, logger),
		Opportunities: service.NewOpportunities(samClient, searchCache, metrics, logger),
		Billing:       service.NewBilling(webhookVerifier, supabaseClient, metrics, logger),
	}

	// --- Router ---
	router := handler.NewRouter(svcs, verifier, supabaseClient, supabaseClient, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
