package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/govscout/govscout-api/internal/domain"
	"github.com/govscout/govscout-api/internal/infra/observability"
	"github.com/govscout/govscout-api/internal/port"
)

// Scoring grades a company profile's contracting readiness via the AI
// completion provider.
type Scoring struct {
	companies port.CompanyStore
	scores    port.ScoreStore
	completer port.Completer
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewScoring creates the scoring service.
func NewScoring(
	companies port.CompanyStore,
	scores port.ScoreStore,
	completer port.Completer,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Scoring {
	return &Scoring{
		companies: companies,
		scores:    scores,
		completer: completer,
		metrics:   metrics,
		logger:    logger,
	}
}

// ScoreProfile assesses the profile's company and persists the result.
func (s *Scoring) ScoreProfile(ctx context.Context, profile *domain.Profile) (*domain.QualityScore, error) {
	ctx, span := tracer.Start(ctx, "Scoring.ScoreProfile")
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("scoring", time.Since(start))
	}()

	if profile.CompanyID == nil {
		return nil, &domain.ErrForbidden{Action: "score a profile without a company"}
	}

	company, err := s.companies.GetCompany(ctx, *profile.CompanyID)
	if err != nil {
		s.metrics.IncrExternalError("supabase")
		return nil, err
	}

	assessment, usage, err := s.completer.AssessQuality(ctx, company)
	s.metrics.RecordTokens(usage.PromptTokens, usage.CompletionTokens)
	if err != nil {
		s.metrics.IncrAIRequest("error")
		s.metrics.IncrExternalError("anthropic")
		s.logger.Error("scoring: assessment failed",
			zap.String("company_id", company.ID),
			zap.Error(err),
		)
		return nil, err
	}
	s.metrics.IncrAIRequest("success")

	score := &domain.QualityScore{
		ID:           uuid.New().String(),
		CompanyID:    company.ID,
		Overall:      clamp(assessment.Overall, 0, 100),
		Completeness: clamp(assessment.Completeness, 0, 100),
		Credibility:  clamp(assessment.Credibility, 0, 100),
		Readiness:    clamp(assessment.Readiness, 0, 100),
		Suggestions:  assessment.Suggestions,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.scores.CreateQualityScore(ctx, score); err != nil {
		s.metrics.IncrExternalError("supabase")
		return nil, err
	}

	return score, nil
}
