package service_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/govscout/govscout-api/internal/domain"
	"github.com/govscout/govscout-api/internal/infra/observability"
	"github.com/govscout/govscout-api/internal/service"
)

// --- Mocks ---

type mockVerifier struct {
	identity *domain.Identity
	err      error
	calls    int
}

func (m *mockVerifier) Verify(_ context.Context, _ string) (*domain.Identity, error) {
	m.calls++
	return m.identity, m.err
}

type mockProfileStore struct {
	profile *domain.Profile
	err     error
	calls   int
}

func (m *mockProfileStore) GetProfile(_ context.Context, _ string) (*domain.Profile, error) {
	m.calls++
	return m.profile, m.err
}

type mockCompanyStore struct {
	company *domain.Company
	err     error
	calls   int
}

func (m *mockCompanyStore) GetCompany(_ context.Context, _ string) (*domain.Company, error) {
	m.calls++
	return m.company, m.err
}

func strPtr(s string) *string { return &s }

// --- Tests ---

func TestEvaluate_NoSession(t *testing.T) {
	profiles := &mockProfileStore{}
	svc := service.NewBootstrap(
		&mockVerifier{identity: nil},
		profiles,
		&mockCompanyStore{},
		"/login",
		observability.NewMetrics(),
		zap.NewNop(),
	)

	result, err := svc.Evaluate(context.Background(), "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.State != domain.StateUnauthenticated {
		t.Errorf("expected state unauthenticated, got %s", result.State)
	}
	if result.LoginURL != "/login" {
		t.Errorf("expected login url /login, got %s", result.LoginURL)
	}
	// The gate must short-circuit: no lookups without a session.
	if profiles.calls != 0 {
		t.Errorf("expected no profile lookups, got %d", profiles.calls)
	}
}

func TestEvaluate_AuthOutageDegradesToLogin(t *testing.T) {
	svc := service.NewBootstrap(
		&mockVerifier{err: errors.New("connection refused")},
		&mockProfileStore{},
		&mockCompanyStore{},
		"/login",
		observability.NewMetrics(),
		zap.NewNop(),
	)

	result, err := svc.Evaluate(context.Background(), "some-token")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.State != domain.StateUnauthenticated {
		t.Errorf("expected state unauthenticated, got %s", result.State)
	}
}

func TestEvaluate_NeedsProfile(t *testing.T) {
	identity := &domain.Identity{ID: "user-1", Email: "new@acme.test"}
	companies := &mockCompanyStore{}

	svc := service.NewBootstrap(
		&mockVerifier{identity: identity},
		&mockProfileStore{err: &domain.ErrNotFound{Resource: "profile", ID: "user-1"}},
		companies,
		"/login",
		observability.NewMetrics(),
		zap.NewNop(),
	)

	result, err := svc.Evaluate(context.Background(), "token")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.State != domain.StateNeedsProfile {
		t.Errorf("expected state needs_profile, got %s", result.State)
	}
	if result.Email != "new@acme.test" {
		t.Errorf("expected email in result, got %q", result.Email)
	}
	if result.LoginURL != "" {
		t.Errorf("needs_profile must not carry a login redirect, got %q", result.LoginURL)
	}
	if companies.calls != 0 {
		t.Errorf("expected no company lookup, got %d", companies.calls)
	}
}

func TestEvaluate_NeedsProfileWithUnconfirmedEmail(t *testing.T) {
	// Email confirmation state does not change the gate outcome.
	identity := &domain.Identity{ID: "user-1", Email: "new@acme.test", EmailConfirmedAt: nil}

	svc := service.NewBootstrap(
		&mockVerifier{identity: identity},
		&mockProfileStore{err: &domain.ErrNotFound{Resource: "profile", ID: "user-1"}},
		&mockCompanyStore{},
		"/login",
		observability.NewMetrics(),
		zap.NewNop(),
	)

	result, err := svc.Evaluate(context.Background(), "token")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.State != domain.StateNeedsProfile {
		t.Errorf("expected state needs_profile, got %s", result.State)
	}
}

func TestEvaluate_ProfileWithoutCompanyNeedsProfile(t *testing.T) {
	identity := &domain.Identity{ID: "user-1", Email: "half@acme.test"}
	profile := &domain.Profile{ID: "user-1", CompanyID: nil}

	svc := service.NewBootstrap(
		&mockVerifier{identity: identity},
		&mockProfileStore{profile: profile},
		&mockCompanyStore{},
		"/login",
		observability.NewMetrics(),
		zap.NewNop(),
	)

	result, err := svc.Evaluate(context.Background(), "token")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.State != domain.StateNeedsProfile {
		t.Errorf("expected state needs_profile, got %s", result.State)
	}
}

func TestEvaluate_ReadyIgnoresOnboardingFlag(t *testing.T) {
	// A profile with a resolvable company is ready even when the onboarding
	// flag was never flipped.
	identity := &domain.Identity{ID: "user-1", Email: "owner@acme.test"}
	profile := &domain.Profile{ID: "user-1", CompanyID: strPtr("co-1"), OnboardingComplete: false}
	company := &domain.Company{ID: "co-1", Name: "Acme Corp"}

	svc := service.NewBootstrap(
		&mockVerifier{identity: identity},
		&mockProfileStore{profile: profile},
		&mockCompanyStore{company: company},
		"/login",
		observability.NewMetrics(),
		zap.NewNop(),
	)

	result, err := svc.Evaluate(context.Background(), "token")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.State != domain.StateReady {
		t.Errorf("expected state ready, got %s", result.State)
	}
	if result.Company != company {
		t.Error("ready must return the exact company row")
	}
}

func TestEvaluate_Ready(t *testing.T) {
	identity := &domain.Identity{ID: "user-1", Email: "owner@acme.test"}
	profile := &domain.Profile{
		ID:                 "user-1",
		Email:              "owner@acme.test",
		FullName:           "Ada Lovelace",
		Role:               domain.RoleCompanyOwner,
		CompanyID:          strPtr("co-1"),
		OnboardingComplete: true,
	}
	company := &domain.Company{ID: "co-1", Name: "Acme Corp", Slug: "acme-corp"}

	svc := service.NewBootstrap(
		&mockVerifier{identity: identity},
		&mockProfileStore{profile: profile},
		&mockCompanyStore{company: company},
		"/login",
		observability.NewMetrics(),
		zap.NewNop(),
	)

	result, err := svc.Evaluate(context.Background(), "token")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.State != domain.StateReady {
		t.Fatalf("expected state ready, got %s", result.State)
	}
	if result.Profile != profile {
		t.Error("ready must return the exact profile row")
	}
	if result.Company != company {
		t.Error("ready must return the exact company row")
	}
}

func TestEvaluate_IdempotentLookup(t *testing.T) {
	identity := &domain.Identity{ID: "user-1", Email: "owner@acme.test"}
	profile := &domain.Profile{ID: "user-1", CompanyID: strPtr("co-1"), OnboardingComplete: true}
	profiles := &mockProfileStore{profile: profile}

	svc := service.NewBootstrap(
		&mockVerifier{identity: identity},
		profiles,
		&mockCompanyStore{company: &domain.Company{ID: "co-1"}},
		"/login",
		observability.NewMetrics(),
		zap.NewNop(),
	)

	for i := 0; i < 3; i++ {
		result, err := svc.Evaluate(context.Background(), "token")
		if err != nil {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
		if result.State != domain.StateReady {
			t.Fatalf("call %d: expected ready, got %s", i, result.State)
		}
	}
	// Reads only; evaluating the gate repeatedly must not change state or
	// skip lookups.
	if profiles.calls != 3 {
		t.Errorf("expected 3 profile lookups, got %d", profiles.calls)
	}
}

func TestEvaluate_DanglingCompanyReference(t *testing.T) {
	// A profile pointing at a deleted company must send the user back into
	// setup rather than failing the gate.
	identity := &domain.Identity{ID: "user-1", Email: "owner@acme.test"}
	profile := &domain.Profile{ID: "user-1", CompanyID: strPtr("co-gone"), OnboardingComplete: true}

	svc := service.NewBootstrap(
		&mockVerifier{identity: identity},
		&mockProfileStore{profile: profile},
		&mockCompanyStore{err: &domain.ErrNotFound{Resource: "company", ID: "co-gone"}},
		"/login",
		observability.NewMetrics(),
		zap.NewNop(),
	)

	result, err := svc.Evaluate(context.Background(), "token")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.State != domain.StateNeedsProfile {
		t.Errorf("expected state needs_profile, got %s", result.State)
	}
	if result.Email != "owner@acme.test" {
		t.Errorf("expected email in result, got %q", result.Email)
	}
}

func TestEvaluate_StoreOutagePropagates(t *testing.T) {
	identity := &domain.Identity{ID: "user-1", Email: "owner@acme.test"}

	svc := service.NewBootstrap(
		&mockVerifier{identity: identity},
		&mockProfileStore{err: &domain.ErrExternalService{Service: "supabase/profiles", Err: errors.New("timeout")}},
		&mockCompanyStore{},
		"/login",
		observability.NewMetrics(),
		zap.NewNop(),
	)

	_, err := svc.Evaluate(context.Background(), "token")
	if err == nil {
		t.Fatal("expected error for store outage, got nil")
	}

	var extErr *domain.ErrExternalService
	if !errors.As(err, &extErr) {
		t.Fatalf("expected ErrExternalService, got %T", err)
	}
}
