package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/govscout/govscout-api/internal/domain"
	"github.com/govscout/govscout-api/internal/infra/resilience"
)

// ============================================================
// Opportunity / Match / Score / Document / Billing stores
// ============================================================

// GetOpportunities fetches opportunity rows by id. Ids that do not resolve to
// a row are simply absent from the result; the caller decides whether that is
// an error.
func (c *Client) GetOpportunities(ctx context.Context, ids []string) ([]domain.Opportunity, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetOpportunities")
	defer span.End()
	span.SetAttributes(attribute.Int("opportunity.count", len(ids)))

	if len(ids) == 0 {
		return []domain.Opportunity{}, nil
	}

	// Ids are spliced into the PostgREST in.(...) filter; anything that is
	// not a UUID could rewrite the filter, so reject it up front.
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return nil, &domain.ErrValidation{Field: "opportunityIds", Message: fmt.Sprintf("%q is not a valid id", id)}
		}
	}

	var opportunities []domain.Opportunity

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			filter := url.QueryEscape(fmt.Sprintf("(%s)", strings.Join(ids, ",")))
			path := fmt.Sprintf("opportunities?id=in.%s", filter)
			body, err := c.doRequest(ctx, http.MethodGet, path)
			if err != nil {
				return err
			}

			if body == nil || string(body) == "[]" {
				opportunities = []domain.Opportunity{}
				return nil
			}

			var rows []domain.Opportunity
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("decode opportunities: %w", err)
			}
			opportunities = rows
			return nil
		})
	})

	if err != nil {
		return nil, wrapStoreError("supabase/opportunities", err)
	}

	return opportunities, nil
}

// CreateMatches inserts match rows in one bulk POST.
func (c *Client) CreateMatches(ctx context.Context, matches []domain.Match) error {
	ctx, span := tracer.Start(ctx, "Supabase.CreateMatches")
	defer span.End()
	span.SetAttributes(attribute.Int("match.count", len(matches)))

	if len(matches) == 0 {
		return nil
	}

	_, err := c.cb.Execute(func() (any, error) {
		rows := make([]map[string]any, 0, len(matches))
		for _, m := range matches {
			rows = append(rows, map[string]any{
				"id":              m.ID,
				"company_id":      m.CompanyID,
				"opportunity_id":  m.OpportunityID,
				"match_score":     m.MatchScore,
				"win_probability": m.WinProbability,
				"reasoning":       m.Reasoning,
				"created_at":      m.CreatedAt.Format(time.RFC3339),
			})
		}
		return c.doPost(ctx, "matches", rows)
	})

	if err != nil {
		return wrapStoreError("supabase/matches", err)
	}
	return nil
}

// ListMatches returns the stored matches for a company, newest first.
func (c *Client) ListMatches(ctx context.Context, companyID string) ([]domain.Match, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListMatches")
	defer span.End()
	span.SetAttributes(attribute.String("company.id", companyID))

	var matches []domain.Match

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			path := fmt.Sprintf("matches?company_id=eq.%s&order=created_at.desc&limit=100", companyID)
			body, err := c.doRequest(ctx, http.MethodGet, path)
			if err != nil {
				return err
			}

			if body == nil || string(body) == "[]" {
				matches = []domain.Match{}
				return nil
			}

			var rows []domain.Match
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("decode matches: %w", err)
			}
			matches = rows
			return nil
		})
	})

	if err != nil {
		return nil, wrapStoreError("supabase/matches", err)
	}

	return matches, nil
}

// CreateQualityScore inserts a profile quality score row.
func (c *Client) CreateQualityScore(ctx context.Context, score *domain.QualityScore) error {
	ctx, span := tracer.Start(ctx, "Supabase.CreateQualityScore")
	defer span.End()
	span.SetAttributes(attribute.String("company.id", score.CompanyID))

	_, err := c.cb.Execute(func() (any, error) {
		return c.doPost(ctx, "quality_scores", map[string]any{
			"id":                 score.ID,
			"company_id":         score.CompanyID,
			"overall_score":      score.Overall,
			"completeness_score": score.Completeness,
			"credibility_score":  score.Credibility,
			"readiness_score":    score.Readiness,
			"suggestions":        score.Suggestions,
			"created_at":         score.CreatedAt.Format(time.RFC3339),
		})
	})

	if err != nil {
		return wrapStoreError("supabase/quality_scores", err)
	}
	return nil
}

// CreateDocumentAnalysis inserts a document analysis row.
func (c *Client) CreateDocumentAnalysis(ctx context.Context, analysis *domain.DocumentAnalysis) error {
	ctx, span := tracer.Start(ctx, "Supabase.CreateDocumentAnalysis")
	defer span.End()
	span.SetAttributes(attribute.String("company.id", analysis.CompanyID))

	_, err := c.cb.Execute(func() (any, error) {
		return c.doPost(ctx, "document_analyses", map[string]any{
			"id":            analysis.ID,
			"company_id":    analysis.CompanyID,
			"document_name": analysis.DocumentName,
			"document_type": analysis.DocumentType,
			"summary":       analysis.Summary,
			"requirements":  analysis.Requirements,
			"deadlines":     analysis.Deadlines,
			"risks":         analysis.Risks,
			"created_at":    analysis.CreatedAt.Format(time.RFC3339),
		})
	})

	if err != nil {
		return wrapStoreError("supabase/document_analyses", err)
	}
	return nil
}

// UpsertSubscription mirrors a billing provider subscription into the
// subscriptions table, keyed by the provider's subscription id.
func (c *Client) UpsertSubscription(ctx context.Context, sub *domain.Subscription) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpsertSubscription")
	defer span.End()
	span.SetAttributes(attribute.String("subscription.id", sub.StripeSubscription))

	_, err := c.cb.Execute(func() (any, error) {
		return c.doUpsert(ctx, "subscriptions", "stripe_subscription_id", map[string]any{
			"id":                     sub.ID,
			"company_id":             sub.CompanyID,
			"stripe_customer_id":     sub.StripeCustomerID,
			"stripe_subscription_id": sub.StripeSubscription,
			"plan":                   sub.Plan,
			"status":                 sub.Status,
			"current_period_end":     sub.CurrentPeriodEnd.Format(time.RFC3339),
			"updated_at":             sub.UpdatedAt.Format(time.RFC3339),
		})
	})

	if err != nil {
		return wrapStoreError("supabase/subscriptions", err)
	}
	return nil
}
