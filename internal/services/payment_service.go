package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/money"
	"storefront/internal/payments"
)

type PaymentIntentInput struct {
	Amount decimal.Decimal `json:"amount"`
	// OrderItems is passed through to the processor as display metadata.
	OrderItems json.RawMessage `json:"orderItems"`
	OrderID    string          `json:"orderId"`
}

// metadata values are capped at 500 characters by the processor
const maxMetadataValue = 500

// CreatePaymentIntent registers a charge with the gateway. With an order id
// the order's own total is charged and the intent is recorded on it.
func (s *OrderService) CreatePaymentIntent(ctx context.Context, in PaymentIntentInput) (payments.Intent, error) {
	amount := in.Amount
	meta := map[string]string{}

	var order *domain.Order
	if in.OrderID != "" {
		if _, err := uuid.Parse(in.OrderID); err != nil {
			return payments.Intent{}, domain.Validation("orderId is invalid")
		}
		o, err := s.Orders.Order(ctx, in.OrderID)
		if err != nil {
			return payments.Intent{}, err
		}
		if o.Status != domain.StatusPending {
			return payments.Intent{}, domain.Conflict("order %s is already %s", o.ID, o.Status)
		}
		if !amount.IsZero() && !amount.Equal(o.Total) {
			applog.Audit(nil, "payment_intent.amount_mismatch", map[string]any{
				"order_id": o.ID, "server_total": o.Total.StringFixed(2), "client_total": amount.StringFixed(2),
			})
		}
		amount = o.Total
		meta[payments.MetadataOrderID] = o.ID
		order = &o
	}

	if !amount.IsPositive() {
		return payments.Intent{}, domain.Validation("amount must be greater than 0")
	}
	minor := money.MinorUnits(amount)
	if minor <= 0 {
		return payments.Intent{}, domain.Validation("amount must be at least 0.01")
	}
	if items, err := itemsMetadata(in.OrderItems); err != nil {
		return payments.Intent{}, err
	} else if items != "" {
		meta["items"] = items
	}

	intent, err := s.Gateway.CreateIntent(ctx, minor, s.Cfg.Currency, meta)
	if err != nil {
		if !errors.Is(err, domain.ErrPaymentGateway) {
			err = domain.PaymentGateway("payment_intent.create", err)
		}
		applog.Error(nil, "payment_intent.fail", err, map[string]any{"amount_minor": minor, "order_id": in.OrderID})
		return payments.Intent{}, err
	}

	if order != nil {
		// the metadata still links intent and order if this write is lost
		if err := s.Orders.SetPaymentIntent(ctx, order.ID, intent.ID); err != nil {
			applog.Warn(nil, "payment_intent.record", err, map[string]any{"order_id": order.ID, "intent_id": intent.ID})
		}
	}
	applog.Audit(nil, "payment_intent.create", map[string]any{
		"intent_id": intent.ID, "amount_minor": minor, "currency": s.Cfg.Currency, "order_id": in.OrderID,
	})
	return intent, nil
}

func itemsMetadata(raw json.RawMessage) (string, error) {
	if len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", domain.Validation("orderItems must be valid JSON")
	}
	return truncate(buf.String(), maxMetadataValue), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n - len("...")
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return strings.ToValidUTF8(s[:cut], "") + "..."
}

// Reconciliation outcomes, reported for logging and tests.
const (
	OutcomeIgnored   = "ignored"
	OutcomeNoMatch   = "no_match"
	OutcomeAmbiguous = "ambiguous"
	OutcomeMismatch  = "amount_mismatch"
	OutcomeDuplicate = "duplicate"
	OutcomeApplied   = "applied"
)

type WebhookResult struct {
	EventID string
	Type    string
	OrderID string
	Status  domain.OrderStatus
	Outcome string
}

// ReconcileWebhookEvent verifies a gateway delivery and applies it to the
// matching pending order. Every verified event is acknowledged; only
// signature, payload and transition write failures are returned.
func (s *OrderService) ReconcileWebhookEvent(ctx context.Context, payload []byte, signature string) (WebhookResult, error) {
	ev, err := s.Gateway.VerifyAndParseEvent(payload, signature)
	if err != nil {
		applog.Security(nil, "webhook.reject", map[string]any{"reason": err.Error(), "signed": signature != ""})
		return WebhookResult{}, err
	}
	res := WebhookResult{EventID: ev.ID, Type: ev.Type}

	var target domain.OrderStatus
	switch ev.Type {
	case payments.EventIntentSucceeded:
		target = domain.StatusPaid
	case payments.EventIntentFailed:
		target = domain.StatusFailed
	default:
		res.Outcome = OutcomeIgnored
		applog.Info(nil, "webhook.ignored", map[string]any{"event_id": ev.ID, "type": ev.Type})
		return res, nil
	}
	res.Status = target

	o, outcome := s.matchOrder(ctx, ev)
	if o == nil {
		res.Outcome = outcome
		return res, nil
	}
	res.OrderID = o.ID

	if target == domain.StatusPaid && money.MinorUnits(o.Total) != ev.AmountMinor {
		applog.Security(nil, "webhook.amount_mismatch", map[string]any{
			"event_id": ev.ID, "order_id": o.ID, "order_minor": money.MinorUnits(o.Total), "event_minor": ev.AmountMinor,
		})
		res.Outcome = OutcomeMismatch
		return res, nil
	}

	won, err := s.Orders.TransitionOrder(ctx, o.ID, domain.StatusPending, target, s.now())
	if err != nil {
		applog.Error(nil, "webhook.transition", err, map[string]any{"event_id": ev.ID, "order_id": o.ID})
		return res, err
	}
	if !won {
		res.Outcome = OutcomeDuplicate
		applog.Info(nil, "webhook.duplicate", map[string]any{"event_id": ev.ID, "order_id": o.ID})
		return res, nil
	}
	res.Outcome = OutcomeApplied
	applog.Audit(nil, "order.transition", map[string]any{
		"event_id": ev.ID, "order_id": o.ID, "from": string(domain.StatusPending), "to": string(target),
	})

	if target == domain.StatusPaid && s.Notify != nil {
		s.notifyPaid(ctx, o.ID)
	}
	return res, nil
}

// matchOrder finds the order an event refers to: by the order id carried in
// the intent metadata, or, for intents created without one, by a unique
// pending order with the same total.
func (s *OrderService) matchOrder(ctx context.Context, ev payments.Event) (*domain.Order, string) {
	fields := map[string]any{"event_id": ev.ID, "intent_id": ev.IntentID}

	if id := ev.Metadata[payments.MetadataOrderID]; id != "" {
		fields["order_id"] = id
		o, err := s.Orders.Order(ctx, id)
		if err != nil {
			applog.Warn(nil, "webhook.no_match", err, fields)
			return nil, OutcomeNoMatch
		}
		if o.Status.Terminal() {
			applog.Info(nil, "webhook.duplicate", fields)
			return nil, OutcomeDuplicate
		}
		return &o, ""
	}

	pending, err := s.Orders.PendingOrders(ctx)
	if err != nil {
		applog.Warn(nil, "webhook.no_match", err, fields)
		return nil, OutcomeNoMatch
	}
	var hits []domain.Order
	for _, o := range pending {
		if money.MinorUnits(o.Total) == ev.AmountMinor {
			hits = append(hits, o)
		}
	}
	fields["amount_minor"] = ev.AmountMinor
	switch len(hits) {
	case 0:
		applog.Warn(nil, "webhook.no_match", nil, fields)
		return nil, OutcomeNoMatch
	case 1:
		return &hits[0], ""
	default:
		fields["candidates"] = len(hits)
		applog.Warn(nil, "webhook.ambiguous", errors.New("several pending orders share this amount"), fields)
		return nil, OutcomeAmbiguous
	}
}

func (s *OrderService) notifyPaid(ctx context.Context, orderID string) {
	o, err := s.Orders.Order(ctx, orderID)
	if err != nil {
		applog.Warn(nil, "order.notify.load", err, map[string]any{"order_id": orderID})
		return
	}
	fields := map[string]any{"order_id": o.ID}
	s.Tasks.Go(ctx, "order.notify.confirmation", fields, func(ctx context.Context) error {
		return s.Notify.PaymentConfirmed(ctx, o)
	})
	s.Tasks.Go(ctx, "order.notify.sale_alert", fields, func(ctx context.Context) error {
		return s.Notify.SaleAlert(ctx, o)
	})
}
