// Package service implements the dashboard operations on top of the ports.
package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/govscout/govscout-api/internal/domain"
	"github.com/govscout/govscout-api/internal/infra/observability"
	"github.com/govscout/govscout-api/internal/port"
)

var tracer = otel.Tracer("service")

// Bootstrap evaluates the dashboard entry gate for one request. The gate
// decides between three outcomes: no session, session without a profile, and
// fully set up.
type Bootstrap struct {
	verifier  port.SessionVerifier
	profiles  port.ProfileStore
	companies port.CompanyStore
	loginURL  string
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewBootstrap creates the bootstrap service with all dependencies injected.
func NewBootstrap(
	verifier port.SessionVerifier,
	profiles port.ProfileStore,
	companies port.CompanyStore,
	loginURL string,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Bootstrap {
	return &Bootstrap{
		verifier:  verifier,
		profiles:  profiles,
		companies: companies,
		loginURL:  loginURL,
		metrics:   metrics,
		logger:    logger,
	}
}

// Evaluate resolves the session token and classifies the caller.
//
// The profile lookup runs on every call and is never cached: the gate is the
// source of truth the frontend trusts right after setup completes, so a stale
// "needs profile" answer would bounce a set-up user back into onboarding.
func (b *Bootstrap) Evaluate(ctx context.Context, token string) (*domain.BootstrapResult, error) {
	ctx, span := tracer.Start(ctx, "Bootstrap.Evaluate")
	defer span.End()

	start := time.Now()
	defer func() {
		b.metrics.RecordRequestDuration("bootstrap", time.Since(start))
	}()

	identity, err := b.verifier.Verify(ctx, token)
	if err != nil {
		// Auth provider outage. The caller cannot do anything with a 5xx
		// here, so degrade to the login redirect.
		b.logger.Warn("bootstrap: session verification failed", zap.Error(err))
		b.metrics.IncrExternalError("auth")
		return &domain.BootstrapResult{
			State:    domain.StateUnauthenticated,
			LoginURL: b.loginURL,
		}, nil
	}
	if identity == nil {
		return &domain.BootstrapResult{
			State:    domain.StateUnauthenticated,
			LoginURL: b.loginURL,
		}, nil
	}

	profile, err := b.profiles.GetProfile(ctx, identity.ID)
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			// Signed up but never completed setup. This state holds no
			// matter whether the email is confirmed yet.
			return &domain.BootstrapResult{
				State: domain.StateNeedsProfile,
				Email: identity.Email,
			}, nil
		}
		b.metrics.IncrExternalError("supabase")
		return nil, err
	}

	// A profile with a resolvable company is ready; the onboarding flag is
	// informational and does not gate access.
	if profile.CompanyID == nil {
		return &domain.BootstrapResult{
			State: domain.StateNeedsProfile,
			Email: identity.Email,
		}, nil
	}

	company, err := b.companies.GetCompany(ctx, *profile.CompanyID)
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			// Dangling company reference. The user can redo setup; log the
			// bad row so someone cleans it up.
			b.logger.Error("bootstrap: profile references missing company",
				zap.String("profile_id", profile.ID),
				zap.String("company_id", *profile.CompanyID),
			)
			return &domain.BootstrapResult{
				State: domain.StateNeedsProfile,
				Email: identity.Email,
			}, nil
		}
		b.metrics.IncrExternalError("supabase")
		b.logger.Error("bootstrap: company lookup failed",
			zap.String("profile_id", profile.ID),
			zap.String("company_id", *profile.CompanyID),
			zap.Error(err),
		)
		return nil, err
	}

	return &domain.BootstrapResult{
		State:   domain.StateReady,
		Profile: profile,
		Company: company,
	}, nil
}
