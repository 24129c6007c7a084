package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	"storefront/internal/http/handlers"
)

func TestSubmitOrder_Created(t *testing.T) {
	env := newTestEnv(t, handlers.AppOptions{})
	ctx := context.Background()
	require.NoError(t, env.mem.AddCartItem(ctx, 7, 1, 2))

	resp, body := env.do(t, "POST", "/orders", scenarioBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var o domain.Order
	require.NoError(t, json.Unmarshal(body, &o))
	assert.Equal(t, domain.StatusPending, o.Status)
	assert.Equal(t, "65.85", o.Total.StringFixed(2))
	require.Len(t, o.Items, 1)
	assert.Equal(t, int64(1), o.Items[0].ProductID)
	assert.Equal(t, 2, o.Items[0].Quantity)
	assert.Equal(t, "29.95", o.Items[0].Price.StringFixed(2))

	cart, err := env.mem.CartItems(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, cart)

	resp, body = env.do(t, "GET", "/orders/"+o.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got domain.Order
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, o.ID, got.ID)

	resp, body = env.do(t, "GET", "/users/7/orders", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var hist struct {
		Orders []domain.Order `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(body, &hist))
	assert.Len(t, hist.Orders, 1)

	env.drain(t)
	assert.Equal(t, 1, env.notify.count("received"))
}

func TestSubmitOrder_NotifierDownStillCreated(t *testing.T) {
	env := newTestEnv(t, handlers.AppOptions{})
	env.notify.fail = true

	resp, body := env.do(t, "POST", "/orders", scenarioBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	env.drain(t)
	assert.Equal(t, 1, env.notify.count("received"))
}

func TestSubmitOrder_BadRequests(t *testing.T) {
	env := newTestEnv(t, handlers.AppOptions{})

	cases := []struct {
		name string
		body any
		code int
		msg  string
	}{
		{"not json", "{order:", http.StatusBadRequest, "JSON"},
		{"empty cart", map[string]any{"order": map[string]any{"userId": 7, "shippingAddress": "x"}}, http.StatusBadRequest, "cart is empty"},
		{"no address", map[string]any{
			"order":      map[string]any{"userId": 7},
			"orderItems": []map[string]any{{"productId": 1, "quantity": 1}},
		}, http.StatusBadRequest, "shippingAddress is required"},
		{"bad quantity", map[string]any{
			"order":      map[string]any{"userId": 7, "shippingAddress": "x"},
			"orderItems": []map[string]any{{"productId": 1, "quantity": 500}},
		}, http.StatusBadRequest, "orderItems[0].quantity must be at most 99"},
		{"unknown product", map[string]any{
			"order":      map[string]any{"userId": 7, "shippingAddress": "x"},
			"orderItems": []map[string]any{{"productId": 404, "quantity": 1}},
		}, http.StatusNotFound, "product 404"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := env.do(t, "POST", "/orders", tc.body)
			assert.Equal(t, tc.code, resp.StatusCode, string(body))
			assert.Contains(t, errorOf(t, body), tc.msg)
		})
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	env := newTestEnv(t, handlers.AppOptions{})
	resp, _ := env.do(t, "GET", "/orders/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = env.do(t, "GET", "/users/abc/orders", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
