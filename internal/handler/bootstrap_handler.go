package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/govscout/govscout-api/internal/service"
)

// ============================================================
// Bootstrap gate — GET /v1/bootstrap
// ============================================================

// bootstrapHandler evaluates the dashboard entry gate. Always 200: the state
// in the body tells the frontend where to send the user.
func bootstrapHandler(svc *service.Bootstrap, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/bootstrap")
		defer span.End()

		result, err := svc.Evaluate(ctx, sessionToken(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeSuccess(w, http.StatusOK, result)
	}
}
