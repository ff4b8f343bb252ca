// Package port defines the interfaces for external dependencies. Services
// depend on these, never on the concrete Supabase / AI / SAM.gov adapters.
package port

import (
	"context"

	"github.com/govscout/govscout-api/internal/domain"
)

// SessionVerifier resolves a cookie-carried session token to an Identity.
// A nil Identity with a nil error means "no valid session" — absent,
// malformed and provider-rejected tokens all land there. Errors are reserved
// for infrastructure failures the caller may want to log; the bootstrap gate
// treats those as unauthenticated too.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (*domain.Identity, error)
}

// ProfileStore reads and writes Profile rows.
type ProfileStore interface {
	GetProfile(ctx context.Context, identityID string) (*domain.Profile, error)
}

// CompanyStore reads Company rows.
type CompanyStore interface {
	GetCompany(ctx context.Context, companyID string) (*domain.Company, error)
}

// SetupStore performs the one-time profile/company creation. Implementations
// must create both rows in a single transaction — both or neither.
type SetupStore interface {
	CompleteSetup(ctx context.Context, identity *domain.Identity, fullName string, company *domain.Company, role domain.Role) (*domain.SetupResult, error)
}

// OpportunityStore reads persisted opportunity rows.
type OpportunityStore interface {
	GetOpportunities(ctx context.Context, ids []string) ([]domain.Opportunity, error)
}

// MatchStore persists and lists AI match rows.
type MatchStore interface {
	CreateMatches(ctx context.Context, matches []domain.Match) error
	ListMatches(ctx context.Context, companyID string) ([]domain.Match, error)
}

// ScoreStore persists quality score rows.
type ScoreStore interface {
	CreateQualityScore(ctx context.Context, score *domain.QualityScore) error
}

// DocumentStore persists document analysis rows.
type DocumentStore interface {
	CreateDocumentAnalysis(ctx context.Context, analysis *domain.DocumentAnalysis) error
}

// BillingStore mirrors the payment provider's subscription state.
type BillingStore interface {
	UpsertSubscription(ctx context.Context, sub *domain.Subscription) error
}

// Completer invokes the AI completion provider. One call per operation, no
// retries, no schema repair beyond JSON extraction.
type Completer interface {
	AssessMatches(ctx context.Context, company *domain.Company, opportunities []domain.Opportunity) ([]domain.MatchAssessment, domain.TokenUsage, error)
	AssessQuality(ctx context.Context, company *domain.Company) (*domain.QualityAssessment, domain.TokenUsage, error)
	AnalyzeDocument(ctx context.Context, name, text string) (*domain.DocumentAssessment, domain.TokenUsage, error)
}

// OpportunitySearcher queries the government opportunity search API.
type OpportunitySearcher interface {
	Search(ctx context.Context, q domain.OpportunitySearchQuery) ([]domain.OpportunitySummary, error)
}

// WebhookVerifier checks a payment webhook signature and returns the parsed
// event type plus raw payload object.
type WebhookVerifier interface {
	Verify(payload []byte, signatureHeader string) (eventType string, object []byte, err error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
