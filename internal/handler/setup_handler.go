package handler

import (
	"encoding/json"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/govscout/govscout-api/internal/domain"
	"github.com/govscout/govscout-api/internal/port"
	"github.com/govscout/govscout-api/internal/service"
)

// ============================================================
// Setup — POST /v1/setup
// ============================================================

func setupHandler(svc *service.Setup, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/setup")
		defer span.End()

		identity := IdentityFromContext(ctx)
		span.SetAttributes(attribute.String("identity.id", identity.ID))

		var req domain.SetupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "validation_error", "invalid request body")
			return
		}

		result, err := svc.Complete(ctx, identity, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeSuccess(w, http.StatusCreated, result)
	}
}

// ============================================================
// Current user — GET /v1/me
// ============================================================

func meHandler(companies port.CompanyStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/me")
		defer span.End()

		profile := ProfileFromContext(ctx)

		var company *domain.Company
		if profile.CompanyID != nil {
			c, err := companies.GetCompany(ctx, *profile.CompanyID)
			if err != nil {
				handleServiceError(w, err, logger)
				return
			}
			company = c
		}

		writeSuccess(w, http.StatusOK, map[string]any{
			"profile": profile,
			"company": company,
		})
	}
}
