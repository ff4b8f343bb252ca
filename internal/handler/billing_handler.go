package handler

import (
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/govscout/govscout-api/internal/service"
)

// maxWebhookBytes caps the accepted webhook payload size.
const maxWebhookBytes = 1 << 20

// ============================================================
// Payment webhooks — POST /v1/webhooks/payments
// ============================================================

func paymentsWebhookHandler(svc *service.Billing, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/webhooks/payments")
		defer span.End()

		payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_error", "could not read payload")
			return
		}

		if err := svc.HandleWebhook(ctx, payload, r.Header.Get("Stripe-Signature")); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeSuccess(w, http.StatusOK, map[string]string{"received": "true"})
	}
}
