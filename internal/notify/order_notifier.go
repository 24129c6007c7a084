package notify

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/config"
	"storefront/internal/domain"
)

// OrderNotifier composes the storefront's messages and hands them to the
// Dispatcher. Every method reports a failed delivery as
// domain.ErrNotification; callers log it and move on.
type OrderNotifier struct {
	d             *Dispatcher
	tpl           *Templates
	operatorEmail string
	alertPhone    string
}

func NewOrderNotifier(d *Dispatcher, tpl *Templates, cfg config.Notify) *OrderNotifier {
	return &OrderNotifier{d: d, tpl: tpl, operatorEmail: cfg.OperatorEmail, alertPhone: cfg.AlertPhone}
}

func (n *OrderNotifier) OrderReceived(ctx context.Context, o domain.Order) error {
	return n.orderEmail(ctx, o, "order_received", "We received your order "+shortID(o.ID),
		"Thanks for your order! We're waiting for your payment to complete.")
}

func (n *OrderNotifier) PaymentConfirmed(ctx context.Context, o domain.Order) error {
	return n.orderEmail(ctx, o, "payment_confirmed", "Payment confirmed for order "+shortID(o.ID),
		"Your payment went through. We'll let you know when your order ships.")
}

// SaleAlert texts the operator. Without an alert phone it falls back to the
// operator mailbox; with neither configured it does nothing.
func (n *OrderNotifier) SaleAlert(ctx context.Context, o domain.Order) error {
	units := 0
	for _, it := range o.Items {
		units += it.Quantity
	}
	body := fmt.Sprintf("New sale: order %s, %d item(s), $%s", shortID(o.ID), units, o.Total.StringFixed(2))

	switch {
	case n.alertPhone != "":
		if !n.d.SendSMS(ctx, n.alertPhone, body) {
			return fmt.Errorf("%w: sale alert sms for order %s", domain.ErrNotification, o.ID)
		}
	case n.operatorEmail != "":
		if !n.d.SendEmail(ctx, Email{To: n.operatorEmail, Subject: "New sale", Text: body}) {
			return fmt.Errorf("%w: sale alert email for order %s", domain.ErrNotification, o.ID)
		}
	}
	return nil
}

// ContactReceived forwards a contact-form message to the operator mailbox,
// with Reply-To set to the sender.
func (n *OrderNotifier) ContactReceived(ctx context.Context, m domain.ContactMessage) error {
	if n.operatorEmail == "" {
		return nil
	}
	body, err := n.tpl.Render("contact_forward", map[string]any{"Message": m})
	if err != nil {
		return fmt.Errorf("%w: render contact_forward: %w", domain.ErrNotification, err)
	}
	text := fmt.Sprintf("From: %s <%s>\nSubject: %s\n\n%s\n", m.Name, m.Email, m.Subject, m.Message)
	ok := n.d.SendEmail(ctx, Email{
		To: n.operatorEmail, Subject: "Contact: " + m.Subject,
		Text: text, HTML: body, ReplyTo: m.Email,
	})
	if !ok {
		return fmt.Errorf("%w: contact forward %s", domain.ErrNotification, m.ID)
	}
	return nil
}

func (n *OrderNotifier) orderEmail(ctx context.Context, o domain.Order, tpl, subject, lead string) error {
	html, err := n.tpl.Render(tpl, map[string]any{"Order": o, "Name": greetingName(o)})
	if err != nil {
		return fmt.Errorf("%w: render %s: %w", domain.ErrNotification, tpl, err)
	}
	ok := n.d.SendEmail(ctx, Email{
		To: o.CustomerEmail, Subject: subject,
		Text: orderText(o, lead), HTML: html, ReplyTo: n.operatorEmail,
	})
	if !ok {
		return fmt.Errorf("%w: %s for order %s", domain.ErrNotification, tpl, o.ID)
	}
	return nil
}

func orderText(o domain.Order, lead string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n%s\n\nOrder %s\n", greetingName(o), lead, o.ID)
	for _, it := range o.Items {
		fmt.Fprintf(&b, "  %d x %s @ $%s = $%s\n", it.Quantity, it.Name, it.Price.StringFixed(2), it.LineTotal().StringFixed(2))
	}
	shipping := "Free"
	if !o.ShippingFee.IsZero() {
		shipping = "$" + o.ShippingFee.StringFixed(2)
	}
	fmt.Fprintf(&b, "\nSubtotal: $%s\nShipping: %s\nTotal: $%s\n", o.Subtotal.StringFixed(2), shipping, o.Total.StringFixed(2))
	if o.ShippingAddress != "" {
		fmt.Fprintf(&b, "\nShipping to: %s\n", o.ShippingAddress)
	}
	return b.String()
}

func greetingName(o domain.Order) string {
	if o.CustomerName != "" {
		return o.CustomerName
	}
	return "there"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
