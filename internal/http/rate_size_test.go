package handlers_test

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/internal/http/handlers"
	"storefront/internal/payments"
)

// burst hits return 429
func TestRateLimits(t *testing.T) {
	env := newTestEnv(t, handlers.AppOptions{RateLimit: 3, RateWindow: time.Minute})

	for i := 0; i < 4; i++ {
		resp, _ := env.do(t, "GET", "/products", nil)
		if i < 3 && resp.StatusCode == http.StatusTooManyRequests {
			t.Fatalf("hit rate limit too early at %d", i)
		}
		if i == 3 && resp.StatusCode != http.StatusTooManyRequests {
			t.Fatalf("expected 429 after limit, got %d", resp.StatusCode)
		}
	}

	// webhook deliveries are exempt
	payload := []byte(`{"id":"evt_1","object":"event","type":"customer.created","data":{"object":{"id":"cus_1","object":"customer"}}}`)
	for i := 0; i < 5; i++ {
		resp, body := env.do(t, "POST", "/webhook", payload, payments.SignatureHeader, payments.Sign(payload, whsec, time.Now()))
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("webhook %d throttled or failed: %d %s", i, resp.StatusCode, body)
		}
	}
}

// oversized POST rejected with 413
func TestBodySizeLimit(t *testing.T) {
	env := newTestEnv(t, handlers.AppOptions{BodyLimit: 1 << 20})

	oversize := bytes.Repeat([]byte("A"), (1<<20)+10)
	req := httptest.NewRequest("POST", "/orders", bytes.NewReader(oversize))
	req.Header.Set("Content-Type", "application/json")
	resp, err := env.app.Test(req, -1)
	// Fiber returns an error instead of a response when body too large; treat that as pass
	if err != nil {
		if strings.Contains(err.Error(), "body size exceeds") || strings.Contains(err.Error(), "too large") {
			return
		}
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 413 for oversize, got %d body=%s", resp.StatusCode, string(body))
	}
}
