package domain

// Shapes exchanged with the AI completion provider. The provider returns
// structured JSON; these mirror the prompt contracts in internal/infra/ai.

// MatchAssessment is one scored opportunity in a completion response.
type MatchAssessment struct {
	OpportunityID  string  `json:"opportunity_id"`
	MatchScore     float64 `json:"match_score"`
	WinProbability float64 `json:"win_probability"`
	Reasoning      string  `json:"reasoning"`
}

// QualityAssessment is the completion response for profile scoring.
type QualityAssessment struct {
	Overall      float64  `json:"overall_score"`
	Completeness float64  `json:"completeness_score"`
	Credibility  float64  `json:"credibility_score"`
	Readiness    float64  `json:"readiness_score"`
	Suggestions  []string `json:"suggestions"`
}

// DocumentAssessment is the completion response for document analysis.
type DocumentAssessment struct {
	DocumentType string   `json:"document_type"`
	Summary      string   `json:"summary"`
	Requirements []string `json:"requirements"`
	Deadlines    []string `json:"deadlines"`
	Risks        []string `json:"risks"`
}

// TokenUsage reports prompt/completion token counts for one AI call.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}
