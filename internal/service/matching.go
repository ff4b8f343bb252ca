package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/govscout/govscout-api/internal/domain"
	"github.com/govscout/govscout-api/internal/infra/observability"
	"github.com/govscout/govscout-api/internal/port"
)

// Matching scores opportunities against a company using the AI completion
// provider and persists the results.
type Matching struct {
	opportunities port.OpportunityStore
	companies     port.CompanyStore
	matches       port.MatchStore
	completer     port.Completer
	metrics       *observability.Metrics
	logger        *zap.Logger
}

// NewMatching creates the matching service.
func NewMatching(
	opportunities port.OpportunityStore,
	companies port.CompanyStore,
	matches port.MatchStore,
	completer port.Completer,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Matching {
	return &Matching{
		opportunities: opportunities,
		companies:     companies,
		matches:       matches,
		completer:     completer,
		metrics:       metrics,
		logger:        logger,
	}
}

// CreateMatches assesses the given opportunities for the profile's company
// and stores one match row per assessed opportunity.
//
// An empty id list is a successful no-op: no AI call, no writes. Ids that do
// not resolve to a stored opportunity are skipped rather than failing the
// whole batch.
func (m *Matching) CreateMatches(ctx context.Context, profile *domain.Profile, opportunityIDs []string) ([]domain.Match, error) {
	ctx, span := tracer.Start(ctx, "Matching.CreateMatches")
	defer span.End()
	span.SetAttributes(attribute.Int("opportunity.count", len(opportunityIDs)))

	start := time.Now()
	defer func() {
		m.metrics.RecordRequestDuration("matching", time.Since(start))
	}()

	if profile.CompanyID == nil {
		return nil, &domain.ErrForbidden{Action: "create matches without a company"}
	}
	if len(opportunityIDs) == 0 {
		return []domain.Match{}, nil
	}

	// Company and opportunity rows live in different tables; fetch them
	// concurrently.
	var (
		company       *domain.Company
		opportunities []domain.Opportunity
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		c, err := m.companies.GetCompany(gCtx, *profile.CompanyID)
		if err != nil {
			m.metrics.IncrExternalError("supabase")
			return err
		}
		company = c
		return nil
	})

	g.Go(func() error {
		o, err := m.opportunities.GetOpportunities(gCtx, opportunityIDs)
		if err != nil {
			m.metrics.IncrExternalError("supabase")
			return err
		}
		opportunities = o
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(opportunities) == 0 {
		return []domain.Match{}, nil
	}

	assessments, usage, err := m.completer.AssessMatches(ctx, company, opportunities)
	m.metrics.RecordTokens(usage.PromptTokens, usage.CompletionTokens)
	if err != nil {
		m.metrics.IncrAIRequest("error")
		m.metrics.IncrExternalError("anthropic")
		m.logger.Error("matching: assessment failed",
			zap.String("company_id", company.ID),
			zap.Error(err),
		)
		return nil, err
	}
	m.metrics.IncrAIRequest("success")

	known := make(map[string]bool, len(opportunities))
	for _, o := range opportunities {
		known[o.ID] = true
	}

	now := time.Now().UTC()
	result := make([]domain.Match, 0, len(assessments))
	for _, a := range assessments {
		if !known[a.OpportunityID] {
			m.logger.Warn("matching: model returned unknown opportunity id",
				zap.String("opportunity_id", a.OpportunityID),
			)
			continue
		}
		result = append(result, domain.Match{
			ID:             uuid.New().String(),
			CompanyID:      company.ID,
			OpportunityID:  a.OpportunityID,
			MatchScore:     clamp(a.MatchScore, 0, 100),
			WinProbability: clamp(a.WinProbability, 0, 1),
			Reasoning:      a.Reasoning,
			CreatedAt:      now,
		})
	}

	if err := m.matches.CreateMatches(ctx, result); err != nil {
		m.metrics.IncrExternalError("supabase")
		return nil, err
	}

	return result, nil
}

// ListMatches returns the stored matches for the profile's company.
func (m *Matching) ListMatches(ctx context.Context, profile *domain.Profile) ([]domain.Match, error) {
	ctx, span := tracer.Start(ctx, "Matching.ListMatches")
	defer span.End()

	if profile.CompanyID == nil {
		return nil, &domain.ErrForbidden{Action: "list matches without a company"}
	}

	return m.matches.ListMatches(ctx, *profile.CompanyID)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
