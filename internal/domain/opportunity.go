package domain

import "time"

// Opportunity is a government contracting opportunity as stored for matching.
// Rows originate from the SAM.gov sync; only the fields the AI prompt and the
// dashboard need are kept.
type Opportunity struct {
	ID             string    `json:"id"`
	NoticeID       string    `json:"notice_id"`
	Title          string    `json:"title"`
	Agency         string    `json:"agency"`
	NAICSCode      string    `json:"naics_code"`
	SetAside       string    `json:"set_aside"`
	Description    string    `json:"description"`
	PostedDate     string    `json:"posted_date"`
	ResponseDueAt  *time.Time `json:"response_due_at,omitempty"`
	EstimatedValue float64   `json:"estimated_value"`
}

// OpportunitySummary is the reshaped SAM.gov search hit returned to the
// dashboard (search proxy, not persisted).
type OpportunitySummary struct {
	NoticeID      string `json:"noticeId"`
	Title         string `json:"title"`
	Agency        string `json:"agency"`
	NAICSCode     string `json:"naicsCode"`
	SetAside      string `json:"setAside"`
	PostedDate    string `json:"postedDate"`
	ResponseDate  string `json:"responseDate"`
	OpportunityURL string `json:"url"`
}

// OpportunitySearchQuery are the supported SAM.gov search filters.
type OpportunitySearchQuery struct {
	Keywords   string
	NAICSCode  string
	PostedFrom string // MM/dd/yyyy, SAM.gov format
	PostedTo   string
	Limit      int
}

// Match is a persisted AI match between a company and an opportunity.
type Match struct {
	ID             string    `json:"id"`
	CompanyID      string    `json:"company_id"`
	OpportunityID  string    `json:"opportunity_id"`
	MatchScore     float64   `json:"match_score"`     // 0..100
	WinProbability float64   `json:"win_probability"` // 0..1
	Reasoning      string    `json:"reasoning"`
	CreatedAt      time.Time `json:"created_at"`
}

// QualityScore is a persisted AI assessment of a company profile.
type QualityScore struct {
	ID           string    `json:"id"`
	CompanyID    string    `json:"company_id"`
	Overall      float64   `json:"overall_score"`
	Completeness float64   `json:"completeness_score"`
	Credibility  float64   `json:"credibility_score"`
	Readiness    float64   `json:"readiness_score"`
	Suggestions  []string  `json:"suggestions"`
	CreatedAt    time.Time `json:"created_at"`
}

// DocumentAnalysis is a persisted AI analysis of a solicitation document.
type DocumentAnalysis struct {
	ID           string    `json:"id"`
	CompanyID    string    `json:"company_id"`
	DocumentName string    `json:"document_name"`
	DocumentType string    `json:"document_type"`
	Summary      string    `json:"summary"`
	Requirements []string  `json:"requirements"`
	Deadlines    []string  `json:"deadlines"`
	Risks        []string  `json:"risks"`
	CreatedAt    time.Time `json:"created_at"`
}

// Subscription mirrors the billing provider's subscription state for a
// company. Updated only by webhook ingestion.
type Subscription struct {
	ID                 string    `json:"id"`
	CompanyID          string    `json:"company_id"`
	StripeCustomerID   string    `json:"stripe_customer_id"`
	StripeSubscription string    `json:"stripe_subscription_id"`
	Plan               string    `json:"plan"`
	Status             string    `json:"status"` // active, past_due, canceled
	CurrentPeriodEnd   time.Time `json:"current_period_end"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// AIUsageSnapshot is the aggregate served by GET /v1/metrics/ai.
type AIUsageSnapshot struct {
	TotalRequests       int64   `json:"total_requests"`
	ErrorRate           float64 `json:"error_rate"`
	AvgTokensPerRequest float64 `json:"avg_tokens_per_request"`
	EstimatedCostUSD    float64 `json:"estimated_cost_usd"`
	CacheHitRate        float64 `json:"cache_hit_rate"`
	Period              string  `json:"period"`
}
