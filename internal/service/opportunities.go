package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/govscout/govscout-api/internal/domain"
	"github.com/govscout/govscout-api/internal/infra/observability"
	"github.com/govscout/govscout-api/internal/port"
)

// samDateLayout is the MM/dd/yyyy format SAM.gov expects.
const samDateLayout = "01/02/2006"

// Opportunities proxies the government opportunity search with a short TTL
// cache in front.
type Opportunities struct {
	searcher port.OpportunitySearcher
	cache    port.Cache[[]domain.OpportunitySummary]
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewOpportunities creates the opportunity search service.
func NewOpportunities(
	searcher port.OpportunitySearcher,
	cache port.Cache[[]domain.OpportunitySummary],
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Opportunities {
	return &Opportunities{
		searcher: searcher,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
	}
}

// Search queries SAM.gov, defaulting the posted-date window to the last 30
// days when the caller does not set one. Results are cached per query.
func (o *Opportunities) Search(ctx context.Context, q domain.OpportunitySearchQuery) ([]domain.OpportunitySummary, error) {
	ctx, span := tracer.Start(ctx, "Opportunities.Search")
	defer span.End()

	start := time.Now()
	defer func() {
		o.metrics.RecordRequestDuration("opportunity_search", time.Since(start))
	}()

	if q.PostedFrom == "" || q.PostedTo == "" {
		now := time.Now().UTC()
		q.PostedFrom = now.AddDate(0, 0, -30).Format(samDateLayout)
		q.PostedTo = now.Format(samDateLayout)
	}
	for _, field := range []struct{ name, value string }{
		{"postedFrom", q.PostedFrom},
		{"postedTo", q.PostedTo},
	} {
		if _, err := time.Parse(samDateLayout, field.value); err != nil {
			return nil, &domain.ErrValidation{Field: field.name, Message: "must be MM/DD/YYYY"}
		}
	}

	key := cacheKey(q)
	if cached, ok := o.cache.Get(key); ok {
		o.metrics.IncrCacheHit("opportunities")
		return cached, nil
	}
	o.metrics.IncrCacheMiss("opportunities")

	results, err := o.searcher.Search(ctx, q)
	if err != nil {
		o.metrics.IncrExternalError("samgov")
		o.logger.Error("opportunities: search failed",
			zap.String("keywords", q.Keywords),
			zap.Error(err),
		)
		return nil, err
	}

	o.cache.Set(key, results)
	return results, nil
}

func cacheKey(q domain.OpportunitySearchQuery) string {
	return fmt.Sprintf("search:%s|%s|%s|%s|%d",
		strings.ToLower(q.Keywords), q.NAICSCode, q.PostedFrom, q.PostedTo, q.Limit)
}
