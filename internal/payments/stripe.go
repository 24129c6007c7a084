package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"storefront/internal/domain"
)

// SignatureHeader is the request header carrying the webhook signature.
const SignatureHeader = "Stripe-Signature"

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	Timeout       time.Duration
	// BaseURL overrides the API endpoint (tests, stripe-mock).
	BaseURL string
}

type StripeGateway struct {
	api           *client.API
	webhookSecret string
}

func NewStripeGateway(cfg StripeConfig) *StripeGateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	bc := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: timeout},
		MaxNetworkRetries: stripe.Int64(0),
	}
	if cfg.BaseURL != "" {
		bc.URL = stripe.String(cfg.BaseURL)
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, bc)
	api := client.New(cfg.SecretKey, &stripe.Backends{API: backend, Connect: backend, Uploads: backend})
	return &StripeGateway{api: api, webhookSecret: cfg.WebhookSecret}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountMinor),
		Currency: stripe.String(strings.ToLower(currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return Intent{}, domain.PaymentGateway("stripe.create_intent", err)
	}
	return Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (g *StripeGateway) VerifyAndParseEvent(payload []byte, signature string) (Event, error) {
	if signature == "" {
		return Event{}, fmt.Errorf("%w: missing %s header", domain.ErrInvalidSignature, SignatureHeader)
	}
	if err := webhook.ValidatePayload(payload, signature, g.webhookSecret); err != nil {
		return Event{}, fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
	}

	var ev stripe.Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return Event{}, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}
	if ev.ID == "" || ev.Type == "" {
		return Event{}, fmt.Errorf("%w: event id or type missing", domain.ErrMalformedPayload)
	}

	out := Event{ID: ev.ID, Type: string(ev.Type)}
	if !strings.HasPrefix(out.Type, "payment_intent.") {
		return out, nil
	}
	if ev.Data == nil || len(ev.Data.Raw) == 0 {
		return Event{}, fmt.Errorf("%w: %s without data", domain.ErrMalformedPayload, out.Type)
	}
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(ev.Data.Raw, &pi); err != nil {
		return Event{}, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}
	out.IntentID = pi.ID
	out.AmountMinor = pi.Amount
	out.Currency = string(pi.Currency)
	out.Metadata = pi.Metadata
	return out, nil
}

// Sign produces a Stripe-Signature header value for payload, for replaying
// events against a local instance.
func Sign(payload []byte, secret string, at time.Time) string {
	ts := at.Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}
