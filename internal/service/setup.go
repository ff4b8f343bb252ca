package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/govscout/govscout-api/internal/domain"
	"github.com/govscout/govscout-api/internal/infra/observability"
	"github.com/govscout/govscout-api/internal/port"
)

// Setup performs the one-time profile and company creation for a signed-up
// identity.
type Setup struct {
	store   port.SetupStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewSetup creates the setup service.
func NewSetup(store port.SetupStore, metrics *observability.Metrics, logger *zap.Logger) *Setup {
	return &Setup{store: store, metrics: metrics, logger: logger}
}

// Complete validates the setup payload and creates the profile and company
// rows. Validation happens entirely before the first write, so a rejected
// request leaves no partial state behind.
func (s *Setup) Complete(ctx context.Context, identity *domain.Identity, req *domain.SetupRequest) (*domain.SetupResult, error) {
	ctx, span := tracer.Start(ctx, "Setup.Complete")
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("setup", time.Since(start))
	}()

	if identity == nil {
		return nil, &domain.ErrUnauthorized{}
	}

	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return nil, &domain.ErrValidation{Field: "fullName", Message: "must not be empty"}
	}

	companyName := strings.TrimSpace(req.CompanyName)
	if companyName == "" {
		return nil, &domain.ErrValidation{Field: "companyName", Message: "must not be empty"}
	}

	role := req.Role
	if role == "" {
		role = domain.RoleCompanyOwner
	}
	if !role.Valid() {
		return nil, &domain.ErrValidation{Field: "role", Message: "unknown role"}
	}

	slug := domain.Slugify(companyName)
	if slug == "" {
		return nil, &domain.ErrValidation{Field: "companyName", Message: "must contain letters or digits"}
	}

	company := &domain.Company{
		Name:     companyName,
		Slug:     slug,
		IsActive: true,
	}

	result, err := s.store.CompleteSetup(ctx, identity, fullName, company, role)
	if err != nil {
		s.logger.Error("setup: completion failed",
			zap.String("identity_id", identity.ID),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("setup: completed",
		zap.String("identity_id", identity.ID),
		zap.String("company_slug", slug),
	)
	return result, nil
}
