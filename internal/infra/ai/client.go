// Package ai adapts the Anthropic Messages API for match scoring, profile
// quality assessment and document analysis. Uses the REST API directly over
// net/http; the official SDK is not required.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/govscout/govscout-api/internal/domain"
)

var tracer = otel.Tracer("ai")

const (
	anthropicMessagesURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion     = "2023-06-01"
)

const matchSystemPrompt = `You are a government contracting analyst. Given a company profile and a list of contract opportunities, score how well each opportunity fits the company.
Return ONLY a valid JSON object (no markdown, no code fences) with this exact structure:
{
  "matches": [
    {
      "opportunity_id": "<id from the input>",
      "match_score": <number 0-100>,
      "win_probability": <number 0.0-1.0>,
      "reasoning": "<concise explanation, max 200 characters>"
    }
  ]
}

Rules:
- Include every opportunity from the input exactly once.
- match_score reflects capability and NAICS fit; win_probability reflects realistic award odds.
- No text outside the JSON object.`

const qualitySystemPrompt = `You are a government contracting readiness reviewer. Given a company profile, assess how prepared it is to pursue federal contracts.
Return ONLY a valid JSON object (no markdown, no code fences) with this exact structure:
{
  "overall_score": <number 0-100>,
  "completeness_score": <number 0-100>,
  "credibility_score": <number 0-100>,
  "readiness_score": <number 0-100>,
  "suggestions": ["<actionable improvement>", ...]
}

No text outside the JSON object.`

const documentSystemPrompt = `You are a government solicitation analyst. Given the text of a procurement document, extract its key facts.
Return ONLY a valid JSON object (no markdown, no code fences) with this exact structure:
{
  "document_type": "<RFP|RFI|RFQ|sources_sought|amendment|other>",
  "summary": "<concise summary, max 400 characters>",
  "requirements": ["<requirement>", ...],
  "deadlines": ["<deadline with date if present>", ...],
  "risks": ["<risk or unusual clause>", ...]
}

No text outside the JSON object.`

// Client calls the Anthropic Messages API. One request per operation; failed
// completions are not retried, only reported.
type Client struct {
	httpClient *http.Client
	apiKey     string
	model      string
	cb         *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// NewClient creates an AI client. If apiKey is empty, calls return a
// descriptive error instead of panicking.
func NewClient(httpClient *http.Client, apiKey, model string, cb *gobreaker.CircuitBreaker, logger *zap.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		apiKey:     apiKey,
		model:      model,
		cb:         cb,
		logger:     logger,
	}
}

// --- Anthropic Messages API wire structures ---

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// jsonBlockRe captures the first JSON object in free text, from the first '{'
// to the last '}'.
var jsonBlockRe = regexp.MustCompile(`(?s)\{.*\}`)

// complete sends one completion request and returns the extracted JSON text
// plus token usage.
func (c *Client) complete(ctx context.Context, system, user string, maxTokens int) (string, domain.TokenUsage, error) {
	var usage domain.TokenUsage

	if c.apiKey == "" {
		return "", usage, &domain.ErrExternalService{
			Service: "anthropic",
			Err:     fmt.Errorf("ANTHROPIC_API_KEY not configured"),
		}
	}

	payload := anthropicRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    system,
		Messages: []anthropicMessage{
			{Role: "user", Content: user},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", usage, err
	}

	result, err := c.cb.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicMessagesURL, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("anthropic-version", anthropicVersion)
		req.Header.Set("content-type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, &domain.ErrTimeout{Operation: "ai completion"}
			}
			return nil, err
		}
		defer resp.Body.Close()

		rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 256*1024))
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusOK {
			var errResp anthropicResponse
			if jsonErr := json.Unmarshal(rawBody, &errResp); jsonErr == nil && errResp.Error != nil {
				return nil, fmt.Errorf("anthropic error (%s): %s", errResp.Error.Type, errResp.Error.Message)
			}
			return nil, fmt.Errorf("anthropic HTTP %d: %s", resp.StatusCode, string(rawBody))
		}

		var anthResp anthropicResponse
		if err := json.Unmarshal(rawBody, &anthResp); err != nil {
			return nil, fmt.Errorf("decode anthropic response: %w", err)
		}
		return &anthResp, nil
	})

	if err != nil {
		c.logger.Warn("ai: completion failed", zap.Error(err))
		return "", usage, wrapAIError(err)
	}

	anthResp := result.(*anthropicResponse)
	usage.PromptTokens = anthResp.Usage.InputTokens
	usage.CompletionTokens = anthResp.Usage.OutputTokens

	if len(anthResp.Content) == 0 {
		return "", usage, &domain.ErrExternalService{
			Service: "anthropic",
			Err:     fmt.Errorf("model returned empty response"),
		}
	}

	clean := extractJSON(anthResp.Content[0].Text)
	if clean == "" {
		return "", usage, &domain.ErrExternalService{
			Service: "anthropic",
			Err:     fmt.Errorf("no JSON object in model response"),
		}
	}

	return clean, usage, nil
}

func wrapAIError(err error) error {
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return &domain.ErrCircuitOpen{Service: "anthropic"}
	}
	var timeout *domain.ErrTimeout
	if errors.As(err, &timeout) {
		return timeout
	}
	return &domain.ErrExternalService{Service: "anthropic", Err: err}
}

// AssessMatches asks the model to score opportunities against a company.
func (c *Client) AssessMatches(ctx context.Context, company *domain.Company, opportunities []domain.Opportunity) ([]domain.MatchAssessment, domain.TokenUsage, error) {
	ctx, span := tracer.Start(ctx, "AI.AssessMatches")
	defer span.End()

	var sb strings.Builder
	fmt.Fprintf(&sb, "Company: %s\nIndustry: %s\nBusiness type: %s\nSize: %s\n\nOpportunities:\n",
		company.Name, company.Industry, company.BusinessType, company.SizeBucket)
	for _, o := range opportunities {
		fmt.Fprintf(&sb, "- id=%s title=%q agency=%q naics=%s set_aside=%q description=%q\n",
			o.ID, o.Title, o.Agency, o.NAICSCode, o.SetAside, truncate(o.Description, 500))
	}

	clean, usage, err := c.complete(ctx, matchSystemPrompt, sb.String(), 2048)
	if err != nil {
		return nil, usage, err
	}

	var parsed struct {
		Matches []domain.MatchAssessment `json:"matches"`
	}
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		return nil, usage, &domain.ErrExternalService{
			Service: "anthropic",
			Err:     fmt.Errorf("parse match assessment: %w", err),
		}
	}

	return parsed.Matches, usage, nil
}

// AssessQuality asks the model to grade a company profile.
func (c *Client) AssessQuality(ctx context.Context, company *domain.Company) (*domain.QualityAssessment, domain.TokenUsage, error) {
	ctx, span := tracer.Start(ctx, "AI.AssessQuality")
	defer span.End()

	user := fmt.Sprintf("Company: %s\nSlug: %s\nIndustry: %s\nBusiness type: %s\nSize: %s\nActive: %t",
		company.Name, company.Slug, company.Industry, company.BusinessType, company.SizeBucket, company.IsActive)

	clean, usage, err := c.complete(ctx, qualitySystemPrompt, user, 1024)
	if err != nil {
		return nil, usage, err
	}

	var parsed domain.QualityAssessment
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		return nil, usage, &domain.ErrExternalService{
			Service: "anthropic",
			Err:     fmt.Errorf("parse quality assessment: %w", err),
		}
	}

	return &parsed, usage, nil
}

// AnalyzeDocument asks the model to extract key facts from a solicitation
// document.
func (c *Client) AnalyzeDocument(ctx context.Context, name, text string) (*domain.DocumentAssessment, domain.TokenUsage, error) {
	ctx, span := tracer.Start(ctx, "AI.AnalyzeDocument")
	defer span.End()

	user := fmt.Sprintf("Document name: %s\n\n%s", name, truncate(text, 20000))

	clean, usage, err := c.complete(ctx, documentSystemPrompt, user, 2048)
	if err != nil {
		return nil, usage, err
	}

	var parsed domain.DocumentAssessment
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		return nil, usage, &domain.ErrExternalService{
			Service: "anthropic",
			Err:     fmt.Errorf("parse document assessment: %w", err),
		}
	}

	return &parsed, usage, nil
}

// extractJSON pulls the first well formed JSON object out of free text.
// Two steps: strip markdown code fences, then regex the first { ... } block.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.Index(text, "```"); idx != -1 {
		after := text[idx+3:]
		if nl := strings.Index(after, "\n"); nl != -1 {
			after = after[nl+1:]
		}
		if close := strings.LastIndex(after, "```"); close != -1 {
			after = after[:close]
		}
		text = strings.TrimSpace(after)
	}

	if strings.HasPrefix(text, "{") {
		return text
	}

	match := jsonBlockRe.FindString(text)
	return strings.TrimSpace(match)
}

// truncate cuts s to at most max bytes without splitting a UTF-8 rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
