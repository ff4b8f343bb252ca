// Package payments verifies incoming billing provider webhooks.
package payments

import (
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/govscout/govscout-api/internal/domain"
)

// StripeVerifier checks Stripe webhook signatures against the endpoint
// signing secret.
type StripeVerifier struct {
	secret string
}

// NewStripeVerifier creates a verifier for the given signing secret.
func NewStripeVerifier(secret string) *StripeVerifier {
	return &StripeVerifier{secret: secret}
}

// Verify validates the signature and returns the event type plus the raw
// event object. A bad signature is a validation failure, not an outage.
func (v *StripeVerifier) Verify(payload []byte, signatureHeader string) (string, []byte, error) {
	event, err := webhook.ConstructEvent(payload, signatureHeader, v.secret)
	if err != nil {
		return "", nil, &domain.ErrValidation{Field: "Stripe-Signature", Message: "invalid webhook signature"}
	}
	return string(event.Type), event.Data.Raw, nil
}
