package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/govscout/govscout-api/internal/domain"
	"github.com/govscout/govscout-api/internal/infra/observability"
	"github.com/govscout/govscout-api/internal/port"
)

// Billing ingests payment provider webhooks and mirrors subscription state.
type Billing struct {
	verifier port.WebhookVerifier
	store    port.BillingStore
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewBilling creates the billing service.
func NewBilling(verifier port.WebhookVerifier, store port.BillingStore, metrics *observability.Metrics, logger *zap.Logger) *Billing {
	return &Billing{verifier: verifier, store: store, metrics: metrics, logger: logger}
}

// stripeSubscription is the subset of the Stripe subscription object we
// mirror. company_id rides in the subscription metadata set at checkout.
type stripeSubscription struct {
	ID               string `json:"id"`
	Customer         string `json:"customer"`
	Status           string `json:"status"`
	CurrentPeriodEnd int64  `json:"current_period_end"`
	Metadata         struct {
		CompanyID string `json:"company_id"`
		Plan      string `json:"plan"`
	} `json:"metadata"`
}

// HandleWebhook verifies the payload signature and applies subscription
// events. Event types we do not track are acknowledged and dropped, so the
// provider does not retry them forever.
func (b *Billing) HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) error {
	ctx, span := tracer.Start(ctx, "Billing.HandleWebhook")
	defer span.End()

	start := time.Now()
	defer func() {
		b.metrics.RecordRequestDuration("billing_webhook", time.Since(start))
	}()

	eventType, object, err := b.verifier.Verify(payload, signatureHeader)
	if err != nil {
		b.logger.Warn("billing: webhook signature rejected", zap.Error(err))
		return err
	}

	switch eventType {
	case "customer.subscription.created",
		"customer.subscription.updated",
		"customer.subscription.deleted":
	default:
		b.logger.Debug("billing: ignoring event", zap.String("type", eventType))
		return nil
	}

	var sub stripeSubscription
	if err := json.Unmarshal(object, &sub); err != nil {
		return &domain.ErrValidation{Field: "payload", Message: fmt.Sprintf("malformed subscription object: %v", err)}
	}
	if sub.ID == "" || sub.Metadata.CompanyID == "" {
		return &domain.ErrValidation{Field: "payload", Message: "subscription missing id or company metadata"}
	}

	status := sub.Status
	if eventType == "customer.subscription.deleted" {
		status = "canceled"
	}

	record := &domain.Subscription{
		ID:                 uuid.New().String(),
		CompanyID:          sub.Metadata.CompanyID,
		StripeCustomerID:   sub.Customer,
		StripeSubscription: sub.ID,
		Plan:               sub.Metadata.Plan,
		Status:             status,
		CurrentPeriodEnd:   time.Unix(sub.CurrentPeriodEnd, 0).UTC(),
		UpdatedAt:          time.Now().UTC(),
	}

	if err := b.store.UpsertSubscription(ctx, record); err != nil {
		b.metrics.IncrExternalError("supabase")
		return err
	}

	b.logger.Info("billing: subscription mirrored",
		zap.String("type", eventType),
		zap.String("subscription_id", sub.ID),
		zap.String("status", status),
	)
	return nil
}
