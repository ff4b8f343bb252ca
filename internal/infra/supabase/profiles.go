package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/attribute"

	"github.com/govscout/govscout-api/internal/domain"
	"github.com/govscout/govscout-api/internal/infra/resilience"
)

// ============================================================
// ProfileStore / CompanyStore / SetupStore via PostgREST
// ============================================================

// GetProfile fetches the profile row for an identity. A missing row is
// reported as domain.ErrNotFound, not as an outage.
func (c *Client) GetProfile(ctx context.Context, identityID string) (*domain.Profile, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetProfile")
	defer span.End()
	span.SetAttributes(attribute.String("identity.id", identityID))

	// An absent row is a normal state (new user), not an outage: it must not
	// be retried and must not count against the breaker.
	var (
		profile  *domain.Profile
		notFound *domain.ErrNotFound
	)

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			path := fmt.Sprintf("profiles?id=eq.%s&limit=1", identityID)
			body, err := c.doRequest(ctx, http.MethodGet, path)
			if err != nil {
				return err
			}

			if body == nil || string(body) == "[]" {
				notFound = &domain.ErrNotFound{Resource: "profile", ID: identityID}
				return nil
			}

			var rows []domain.Profile
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("decode profiles: %w", err)
			}
			if len(rows) == 0 {
				notFound = &domain.ErrNotFound{Resource: "profile", ID: identityID}
				return nil
			}

			profile = &rows[0]
			return nil
		})
	})

	if err != nil {
		return nil, wrapStoreError("supabase/profiles", err)
	}
	if notFound != nil {
		return nil, notFound
	}

	return profile, nil
}

// GetCompany fetches a company row by id.
func (c *Client) GetCompany(ctx context.Context, companyID string) (*domain.Company, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetCompany")
	defer span.End()
	span.SetAttributes(attribute.String("company.id", companyID))

	var (
		company  *domain.Company
		notFound *domain.ErrNotFound
	)

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			path := fmt.Sprintf("companies?id=eq.%s&limit=1", companyID)
			body, err := c.doRequest(ctx, http.MethodGet, path)
			if err != nil {
				return err
			}

			if body == nil || string(body) == "[]" {
				notFound = &domain.ErrNotFound{Resource: "company", ID: companyID}
				return nil
			}

			var rows []domain.Company
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("decode companies: %w", err)
			}
			if len(rows) == 0 {
				notFound = &domain.ErrNotFound{Resource: "company", ID: companyID}
				return nil
			}

			company = &rows[0]
			return nil
		})
	})

	if err != nil {
		return nil, wrapStoreError("supabase/companies", err)
	}
	if notFound != nil {
		return nil, notFound
	}

	return company, nil
}

// setupResponse is the row shape returned by the complete_setup function.
type setupResponse struct {
	Profile domain.Profile `json:"profile"`
	Company domain.Company `json:"company"`
}

// CompleteSetup creates the profile and company rows through the
// complete_setup stored function, so both rows land in one transaction.
// Mutations are not retried; a failed attempt surfaces immediately.
func (c *Client) CompleteSetup(ctx context.Context, identity *domain.Identity, fullName string, company *domain.Company, role domain.Role) (*domain.SetupResult, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CompleteSetup")
	defer span.End()
	span.SetAttributes(attribute.String("identity.id", identity.ID))

	var result *domain.SetupResult

	_, err := c.cb.Execute(func() (any, error) {
		args := map[string]any{
			"p_user_id":       identity.ID,
			"p_email":         identity.Email,
			"p_full_name":     fullName,
			"p_role":          string(role),
			"p_company_name":  company.Name,
			"p_company_slug":  company.Slug,
			"p_industry":      company.Industry,
			"p_business_type": company.BusinessType,
			"p_company_size":  company.SizeBucket,
		}

		body, err := c.rpc(ctx, "complete_setup", args)
		if err != nil {
			return nil, err
		}

		var resp setupResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("decode complete_setup response: %w", err)
		}

		result = &domain.SetupResult{
			Profile: &resp.Profile,
			Company: &resp.Company,
		}
		return nil, nil
	})

	if err != nil {
		var conflict *domain.ErrConflict
		if errors.As(err, &conflict) {
			return nil, conflict
		}
		return nil, wrapStoreError("supabase/setup", err)
	}

	return result, nil
}
