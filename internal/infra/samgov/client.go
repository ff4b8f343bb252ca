// Package samgov queries the SAM.gov Get Opportunities API and reshapes the
// results for the dashboard. Search is a pass-through; nothing is persisted.
package samgov

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/govscout/govscout-api/internal/domain"
	"github.com/govscout/govscout-api/internal/infra/resilience"
)

var tracer = otel.Tracer("samgov")

// Client wraps the SAM.gov opportunities search endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	logger     *zap.Logger
}

// NewClient creates a SAM.gov client. baseURL is the opportunities API root,
// e.g. https://api.sam.gov/opportunities/v2.
func NewClient(httpClient *http.Client, baseURL, apiKey string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, logger *zap.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		cb:         cb,
		cfg:        cfg,
		logger:     logger,
	}
}

// samOpportunity maps the SAM.gov response fields we keep.
type samOpportunity struct {
	NoticeID         string `json:"noticeId"`
	Title            string `json:"title"`
	FullParentPath   string `json:"fullParentPathName"`
	NAICSCode        string `json:"naicsCode"`
	TypeOfSetAside   string `json:"typeOfSetAsideDescription"`
	PostedDate       string `json:"postedDate"`
	ResponseDeadline string `json:"responseDeadLine"`
	UILink           string `json:"uiLink"`
}

type samSearchResponse struct {
	TotalRecords      int              `json:"totalRecords"`
	OpportunitiesData []samOpportunity `json:"opportunitiesData"`
}

// Search queries SAM.gov for opportunities matching q.
func (c *Client) Search(ctx context.Context, q domain.OpportunitySearchQuery) ([]domain.OpportunitySummary, error) {
	ctx, span := tracer.Start(ctx, "SAMGov.Search")
	defer span.End()
	span.SetAttributes(attribute.String("search.keywords", q.Keywords))

	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("postedFrom", q.PostedFrom)
	params.Set("postedTo", q.PostedTo)
	if q.Keywords != "" {
		params.Set("title", q.Keywords)
	}
	if q.NAICSCode != "" {
		params.Set("ncode", q.NAICSCode)
	}

	var summaries []domain.OpportunitySummary

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			reqURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
			if err != nil {
				return err
			}
			req.Header.Set("Accept", "application/json")

			resp, err := c.httpClient.Do(req)
			if err != nil {
				c.logger.Error("samgov: request failed", zap.Error(err))
				return err
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}

			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				c.logger.Warn("samgov: non-2xx response",
					zap.Int("status", resp.StatusCode),
					zap.String("body", string(body)),
				)
				return fmt.Errorf("sam.gov returned status %d: %s", resp.StatusCode, string(body))
			}

			var parsed samSearchResponse
			if err := json.Unmarshal(body, &parsed); err != nil {
				return fmt.Errorf("decode sam.gov response: %w", err)
			}

			summaries = make([]domain.OpportunitySummary, 0, len(parsed.OpportunitiesData))
			for _, o := range parsed.OpportunitiesData {
				summaries = append(summaries, domain.OpportunitySummary{
					NoticeID:       o.NoticeID,
					Title:          o.Title,
					Agency:         o.FullParentPath,
					NAICSCode:      o.NAICSCode,
					SetAside:       o.TypeOfSetAside,
					PostedDate:     o.PostedDate,
					ResponseDate:   o.ResponseDeadline,
					OpportunityURL: o.UILink,
				})
			}
			return nil
		})
	})

	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, &domain.ErrCircuitOpen{Service: "samgov"}
		}
		return nil, &domain.ErrExternalService{Service: "samgov", Err: err}
	}

	return summaries, nil
}
