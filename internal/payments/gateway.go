// Package payments adapts the external payment processor: creating
// payment intents and verifying its webhook deliveries.
package payments

import (
	"context"
)

// Event types the order workflow reacts to.
const (
	EventIntentSucceeded = "payment_intent.succeeded"
	EventIntentFailed    = "payment_intent.payment_failed"
)

// MetadataOrderID is the intent metadata key that ties an intent to an order.
const MetadataOrderID = "order_id"

type Intent struct {
	ID           string
	ClientSecret string
}

// Event is a verified webhook delivery reduced to what reconciliation needs.
type Event struct {
	ID          string
	Type        string
	IntentID    string
	AmountMinor int64
	Currency    string
	Metadata    map[string]string
}

type Gateway interface {
	CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (Intent, error)
	// VerifyAndParseEvent fails with domain.ErrInvalidSignature before
	// looking at the payload, and with domain.ErrMalformedPayload when the
	// verified body is not an event.
	VerifyAndParseEvent(payload []byte, signature string) (Event, error)
}
