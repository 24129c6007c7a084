package handlers_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	"storefront/internal/http/handlers"
	"storefront/internal/money"
	"storefront/internal/payments"
)

func placeOrder(t *testing.T, env *testEnv) domain.Order {
	t.Helper()
	resp, body := env.do(t, "POST", "/orders", scenarioBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var o domain.Order
	require.NoError(t, json.Unmarshal(body, &o))
	return o
}

func succeeded(o domain.Order, eventID string) []byte {
	return []byte(fmt.Sprintf(`{"id":%q,"object":"event","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1","object":"payment_intent","amount":%d,"currency":"usd","metadata":{"order_id":%q}}}}`,
		eventID, money.MinorUnits(o.Total), o.ID))
}

func TestPaymentIntent(t *testing.T) {
	env := newTestEnv(t, handlers.AppOptions{})

	resp, body := env.do(t, "POST", "/payment-intents", map[string]any{
		"amount":     65.85,
		"orderItems": []map[string]any{{"productId": 1, "quantity": 2}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var out map[string]string
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "pi_6585_secret_xyz", out["clientSecret"])

	resp, body = env.do(t, "POST", "/payment-intents", map[string]any{"amount": 0})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, errorOf(t, body), "amount")
}

func TestPaymentIntent_GatewayFailure(t *testing.T) {
	env := newTestEnv(t, handlers.AppOptions{})
	env.gw.fail = errors.New("dial tcp api.stripe.com: i/o timeout")

	resp, body := env.do(t, "POST", "/payment-intents", map[string]any{"amount": 10})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	msg := errorOf(t, body)
	assert.NotContains(t, msg, "stripe.com")
	assert.Contains(t, msg, "retry")
}

func TestWebhook_PaysOrderOnce(t *testing.T) {
	env := newTestEnv(t, handlers.AppOptions{})
	o := placeOrder(t, env)
	payload := succeeded(o, "evt_1")

	for i := 0; i < 2; i++ {
		resp, body := env.do(t, "POST", "/webhook", payload, payments.SignatureHeader, payments.Sign(payload, whsec, time.Now()))
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
		assert.JSONEq(t, `{"received":true}`, string(body))
	}
	env.drain(t)

	resp, body := env.do(t, "GET", "/orders/"+o.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got domain.Order
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, domain.StatusPaid, got.Status)
	assert.Equal(t, 1, env.notify.count("confirmed"))
	assert.Equal(t, 1, env.notify.count("sale"))
}

func TestWebhook_Rejected(t *testing.T) {
	env := newTestEnv(t, handlers.AppOptions{})
	o := placeOrder(t, env)
	payload := succeeded(o, "evt_1")
	good := payments.Sign(payload, whsec, time.Now())

	resp, _ := env.do(t, "POST", "/webhook", payload)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "missing signature")

	tampered := append([]byte{}, payload...)
	tampered[len(tampered)-5] = 'X'
	resp, _ = env.do(t, "POST", "/webhook", tampered, payments.SignatureHeader, good)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "tampered body")

	junk := []byte(`not json at all`)
	resp, body := env.do(t, "POST", "/webhook", junk, payments.SignatureHeader, payments.Sign(junk, whsec, time.Now()))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "malformed")
	assert.Equal(t, domain.ErrMalformedPayload.Error(), errorOf(t, body))

	env.drain(t)
	stored, err := env.deps.Orders.GetOrder(t.Context(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)
	assert.Equal(t, 0, env.notify.count("confirmed"))
}

func TestWebhook_UnmatchedIsAcknowledged(t *testing.T) {
	env := newTestEnv(t, handlers.AppOptions{})
	payload := []byte(`{"id":"evt_9","object":"event","type":"payment_intent.succeeded","data":{"object":{"id":"pi_9","object":"payment_intent","amount":123,"currency":"usd","metadata":{}}}}`)
	resp, body := env.do(t, "POST", "/webhook", payload, payments.SignatureHeader, payments.Sign(payload, whsec, time.Now()))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"received":true}`, string(body))
}
