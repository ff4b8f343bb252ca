package handler

import (
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/govscout/govscout-api/internal/domain"
	"github.com/govscout/govscout-api/internal/service"
)

// ============================================================
// Opportunity search — GET /v1/opportunities/search
// ============================================================

func searchOpportunitiesHandler(svc *service.Opportunities, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/opportunities/search")
		defer span.End()

		q := domain.OpportunitySearchQuery{
			Keywords:   r.URL.Query().Get("q"),
			NAICSCode:  r.URL.Query().Get("naics"),
			PostedFrom: r.URL.Query().Get("postedFrom"),
			PostedTo:   r.URL.Query().Get("postedTo"),
		}
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				q.Limit = n
			}
		}
		span.SetAttributes(attribute.String("search.keywords", q.Keywords))

		results, err := svc.Search(ctx, q)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeSuccess(w, http.StatusOK, map[string]any{"opportunities": results})
	}
}
