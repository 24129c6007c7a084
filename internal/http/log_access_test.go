package handlers_test

import (
	"bytes"
	"encoding/json"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	"storefront/internal/http/handlers"
	"storefront/internal/payments"
)

type accessLogEntry struct {
	Level  string                 `json:"level"`
	ReqID  string                 `json:"req_id"`
	Action string                 `json:"action"`
	Fields map[string]interface{} `json:"fields"`
}

type lockedBuf struct {
	b  *bytes.Buffer
	mu *sync.Mutex
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func captureAccessLogs(t *testing.T, fn func()) []accessLogEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	oldW := log.Writer()
	oldFlags := log.Flags()
	log.SetOutput(&lockedBuf{b: &buf, mu: &mu})
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	mu.Lock()
	defer mu.Unlock()
	var entries []accessLogEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var e accessLogEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func findAction(entries []accessLogEntry, action string) *accessLogEntry {
	for i := range entries {
		if entries[i].Action == action {
			return &entries[i]
		}
	}
	return nil
}

// client-side totals are recorded next to the server's
func TestOrderSubmitAuditsTotals(t *testing.T) {
	env := newTestEnv(t, handlers.AppOptions{})
	body := scenarioBody()
	body["order"].(map[string]any)["total"] = "1.00"

	entries := captureAccessLogs(t, func() {
		placeOrder(t, env)
		env.drain(t)
	})
	e := findAction(entries, "order.submit")
	if e == nil {
		t.Fatalf("expected order.submit audit log")
	}
	if e.ReqID == "" {
		t.Fatalf("audit entry missing request id: %+v", e)
	}
	if e.Fields["server_total"] != "65.85" {
		t.Fatalf("server_total = %v", e.Fields["server_total"])
	}

	entries = captureAccessLogs(t, func() {
		_, _ = env.do(t, "POST", "/orders", body)
		env.drain(t)
	})
	found := false
	for _, e := range entries {
		if e.Action == "order.submit" && e.Fields["mismatch"] == true {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected mismatch flagged in order.submit audit")
	}
}

// rejected webhooks leave a security trail
func TestWebhookRejectLogged(t *testing.T) {
	env := newTestEnv(t, handlers.AppOptions{})
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)

	entries := captureAccessLogs(t, func() {
		_, _ = env.do(t, "POST", "/webhook", payload, payments.SignatureHeader, payments.Sign(payload, "whsec_wrong", time.Now()))
	})
	e := findAction(entries, "webhook.reject")
	if e == nil {
		t.Fatalf("expected webhook.reject log")
	}
	if e.Level != "warn" {
		t.Fatalf("webhook.reject level = %s", e.Level)
	}
}
