package handler

import (
	"encoding/json"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/govscout/govscout-api/internal/service"
)

// ============================================================
// AI matching — POST /v1/matches, GET /v1/matches
// ============================================================

func createMatchesHandler(svc *service.Matching, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/matches")
		defer span.End()

		profile := ProfileFromContext(ctx)

		var req struct {
			OpportunityIDs []string `json:"opportunityIds"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "validation_error", "invalid request body")
			return
		}
		span.SetAttributes(attribute.Int("opportunity.count", len(req.OpportunityIDs)))

		matches, err := svc.CreateMatches(ctx, profile, req.OpportunityIDs)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeSuccess(w, http.StatusOK, map[string]any{"matches": matches})
	}
}

func listMatchesHandler(svc *service.Matching, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/matches")
		defer span.End()

		profile := ProfileFromContext(ctx)

		matches, err := svc.ListMatches(ctx, profile)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeSuccess(w, http.StatusOK, map[string]any{"matches": matches})
	}
}
