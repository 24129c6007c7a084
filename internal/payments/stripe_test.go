package payments

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

const whsec = "whsec_test_secret"

func succeededEvent() []byte {
	return []byte(`{
		"id": "evt_1",
		"object": "event",
		"type": "payment_intent.succeeded",
		"data": {"object": {
			"id": "pi_123",
			"object": "payment_intent",
			"amount": 6585,
			"currency": "usd",
			"metadata": {"order_id": "ord-1"}
		}}
	}`)
}

func TestStripeGateway_CreateIntent(t *testing.T) {
	var form map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/payment_intents", r.URL.Path)
		require.NoError(t, r.ParseForm())
		form = map[string]string{
			"amount":            r.PostForm.Get("amount"),
			"currency":          r.PostForm.Get("currency"),
			"metadata[order_id]": r.PostForm.Get("metadata[order_id]"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_123","object":"payment_intent","client_secret":"pi_123_secret_abc","amount":6585,"currency":"usd"}`))
	}))
	defer srv.Close()

	g := NewStripeGateway(StripeConfig{SecretKey: "sk_test_x", WebhookSecret: whsec, Timeout: time.Second, BaseURL: srv.URL})
	in, err := g.CreateIntent(context.Background(), 6585, "USD", map[string]string{MetadataOrderID: "ord-1"})
	require.NoError(t, err)
	assert.Equal(t, "pi_123", in.ID)
	assert.Equal(t, "pi_123_secret_abc", in.ClientSecret)
	assert.Equal(t, "6585", form["amount"])
	assert.Equal(t, "usd", form["currency"])
	assert.Equal(t, "ord-1", form["metadata[order_id]"])
}

func TestStripeGateway_CreateIntentGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"Amount must be at least 50 cents"}}`))
	}))
	defer srv.Close()

	g := NewStripeGateway(StripeConfig{SecretKey: "sk_test_x", Timeout: time.Second, BaseURL: srv.URL})
	_, err := g.CreateIntent(context.Background(), 10, "usd", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrPaymentGateway))
}

func TestStripeGateway_CreateIntentTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	g := NewStripeGateway(StripeConfig{SecretKey: "sk_test_x", Timeout: 50 * time.Millisecond, BaseURL: srv.URL})
	_, err := g.CreateIntent(context.Background(), 6585, "usd", nil)
	assert.True(t, errors.Is(err, domain.ErrPaymentGateway))
}

func TestStripeGateway_VerifyAndParseEvent(t *testing.T) {
	g := NewStripeGateway(StripeConfig{WebhookSecret: whsec})
	payload := succeededEvent()

	ev, err := g.VerifyAndParseEvent(payload, Sign(payload, whsec, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, "evt_1", ev.ID)
	assert.Equal(t, EventIntentSucceeded, ev.Type)
	assert.Equal(t, "pi_123", ev.IntentID)
	assert.Equal(t, int64(6585), ev.AmountMinor)
	assert.Equal(t, "usd", ev.Currency)
	assert.Equal(t, "ord-1", ev.Metadata[MetadataOrderID])
}

func TestStripeGateway_RejectsBadSignatures(t *testing.T) {
	g := NewStripeGateway(StripeConfig{WebhookSecret: whsec})
	payload := succeededEvent()
	tampered := append([]byte{}, payload...)
	tampered[len(tampered)-3] = ' '

	cases := map[string]struct {
		body []byte
		sig  string
	}{
		"missing":      {payload, ""},
		"wrong secret": {payload, Sign(payload, "whsec_other", time.Now())},
		"tampered":     {tampered, Sign(payload, whsec, time.Now())},
		"stale":        {payload, Sign(payload, whsec, time.Now().Add(-time.Hour))},
		"garbage":      {payload, "not-a-signature"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := g.VerifyAndParseEvent(tc.body, tc.sig)
			assert.True(t, errors.Is(err, domain.ErrInvalidSignature), "got %v", err)
		})
	}
}

func TestStripeGateway_MalformedPayload(t *testing.T) {
	g := NewStripeGateway(StripeConfig{WebhookSecret: whsec})
	for name, body := range map[string]string{
		"not json":   `{"id": "evt_1",`,
		"no type":    `{"id": "evt_1", "object": "event"}`,
		"bad intent": `{"id": "evt_1", "type": "payment_intent.succeeded", "data": {"object": {"amount": "lots"}}}`,
	} {
		t.Run(name, func(t *testing.T) {
			payload := []byte(body)
			_, err := g.VerifyAndParseEvent(payload, Sign(payload, whsec, time.Now()))
			assert.True(t, errors.Is(err, domain.ErrMalformedPayload), "got %v", err)
		})
	}
}

func TestStripeGateway_OtherEventTypesPassThrough(t *testing.T) {
	g := NewStripeGateway(StripeConfig{WebhookSecret: whsec})
	payload := []byte(`{"id":"evt_9","object":"event","type":"charge.refunded","data":{"object":{"id":"ch_1","object":"charge"}}}`)
	ev, err := g.VerifyAndParseEvent(payload, Sign(payload, whsec, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, "charge.refunded", ev.Type)
	assert.Empty(t, ev.IntentID)
}
