package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/http/handlers"
	"storefront/internal/payments"
	"storefront/internal/repos"
)

const whsec = "whsec_http"

type fakeGateway struct {
	*payments.StripeGateway
	fail error
}

func (g *fakeGateway) CreateIntent(_ context.Context, amountMinor int64, _ string, _ map[string]string) (payments.Intent, error) {
	if g.fail != nil {
		return payments.Intent{}, g.fail
	}
	id := fmt.Sprintf("pi_%d", amountMinor)
	return payments.Intent{ID: id, ClientSecret: id + "_secret_xyz"}, nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []string
	fail  bool
}

func (n *fakeNotifier) hit(kind string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, kind)
	if n.fail {
		return fmt.Errorf("%w: %s", domain.ErrNotification, kind)
	}
	return nil
}

func (n *fakeNotifier) count(kind string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, k := range n.calls {
		if k == kind {
			c++
		}
	}
	return c
}

func (n *fakeNotifier) OrderReceived(context.Context, domain.Order) error    { return n.hit("received") }
func (n *fakeNotifier) PaymentConfirmed(context.Context, domain.Order) error { return n.hit("confirmed") }
func (n *fakeNotifier) SaleAlert(context.Context, domain.Order) error        { return n.hit("sale") }
func (n *fakeNotifier) ContactReceived(context.Context, domain.ContactMessage) error {
	return n.hit("contact")
}

type testEnv struct {
	app    *fiber.App
	deps   *handlers.Deps
	mem    *repos.MemoryStore
	gw     *fakeGateway
	notify *fakeNotifier
}

func newTestEnv(t *testing.T, opts handlers.AppOptions) *testEnv {
	t.Helper()
	cfg := config.Default()
	// keep the flat fee on the reference basket
	cfg.Shipping.FreeThreshold = "100.00"

	mem := repos.NewMemoryStore()
	repos.SeedMemory(mem)
	env := &testEnv{
		mem:    mem,
		gw:     &fakeGateway{StripeGateway: payments.NewStripeGateway(payments.StripeConfig{WebhookSecret: whsec})},
		notify: &fakeNotifier{},
	}
	deps, err := handlers.NewDeps(mem.Stores(), env.gw, env.notify, cfg)
	require.NoError(t, err)
	env.deps = deps
	opts.AccessLog = false
	env.app = handlers.NewApp(deps, opts)
	return env
}

func (e *testEnv) drain(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, e.deps.Tasks.Drain(ctx))
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers ...string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		r = bytes.NewReader(b)
	case string:
		r = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func scenarioBody() map[string]any {
	return map[string]any{
		"order": map[string]any{"userId": 7, "shippingAddress": "123 A St", "total": "65.85"},
		"orderItems": []map[string]any{
			{"productId": 1, "quantity": 2, "price": 29.95},
		},
	}
}

func errorOf(t *testing.T, body []byte) string {
	t.Helper()
	var e struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &e), string(body))
	return e.Error
}
