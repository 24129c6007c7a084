package notify

import (
	"context"
	"errors"
	"strings"
	"time"

	"storefront/internal/config"
	applog "storefront/internal/log"
	"storefront/internal/validate"
)

// carrier -> email-to-SMS domains, primary first
var carrierDomains = map[string][]string{
	"att":        {"txt.att.net", "mms.att.net"},
	"verizon":    {"vtext.com", "vzwpix.com"},
	"tmobile":    {"tmomail.net"},
	"sprint":     {"messaging.sprintpcs.com", "pm.sprint.com"},
	"uscellular": {"email.uscc.net", "mms.uscc.net"},
	"cricket":    {"sms.cricketwireless.net", "mms.cricketwireless.net"},
	"googlefi":   {"msg.fi.google.com"},
}

const fallbackCarrier = "tmobile"

// Dispatcher sends best-effort email and SMS. Failures are logged and
// reported as false; nothing here returns an error to the caller.
type Dispatcher struct {
	mailer  Mailer
	from    string
	carrier string
	timeout time.Duration
}

func NewDispatcher(m Mailer, cfg config.Notify) *Dispatcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	carrier := strings.ToLower(strings.TrimSpace(cfg.AlertCarrier))
	if _, ok := carrierDomains[carrier]; !ok {
		carrier = fallbackCarrier
	}
	return &Dispatcher{mailer: m, from: cfg.From, carrier: carrier, timeout: timeout}
}

func (d *Dispatcher) SendEmail(ctx context.Context, e Email) bool {
	if e.From == "" {
		e.From = d.from
	}
	if e.To == "" {
		applog.Warn(nil, "notify.email.skip", errors.New("no recipient"), map[string]any{"subject": e.Subject})
		return false
	}
	if err := d.send(ctx, e); err != nil {
		applog.Warn(nil, "notify.email.fail", err, map[string]any{"to": e.To, "subject": e.Subject})
		return false
	}
	applog.Info(nil, "notify.email.sent", map[string]any{"to": e.To, "subject": e.Subject})
	return true
}

// SendSMS walks the gateway cascade for the configured carrier and stops
// at the first address that accepts the message.
func (d *Dispatcher) SendSMS(ctx context.Context, to, body string) bool {
	phone, ok := validate.Phone(to)
	if !ok {
		applog.Warn(nil, "notify.sms.skip", errors.New("invalid phone number"), nil)
		return false
	}
	for i, addr := range smsCascade(phone, d.carrier) {
		if ctx.Err() != nil {
			break
		}
		err := d.send(ctx, Email{To: addr, From: d.from, Text: body})
		if err == nil {
			applog.Info(nil, "notify.sms.sent", map[string]any{"gateway": domainOf(addr), "attempt": i + 1})
			return true
		}
		applog.Warn(nil, "notify.sms.attempt_fail", err, map[string]any{"gateway": domainOf(addr), "attempt": i + 1})
	}
	applog.Error(nil, "notify.sms.fail", errors.New("all gateways failed"), map[string]any{"carrier": d.carrier})
	return false
}

func (d *Dispatcher) send(ctx context.Context, e Email) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.mailer.Send(ctx, e)
}

// smsCascade lists gateway addresses in attempt order: the carrier's
// primary and secondary domains, then the fallback carrier's primary.
func smsCascade(phone, carrier string) []string {
	domains := append([]string{}, carrierDomains[carrier]...)
	if len(domains) > 2 {
		domains = domains[:2]
	}
	fb := carrierDomains[fallbackCarrier][0]
	seen := false
	for _, dm := range domains {
		if dm == fb {
			seen = true
		}
	}
	if !seen {
		domains = append(domains, fb)
	}
	out := make([]string, len(domains))
	for i, dm := range domains {
		out[i] = phone + "@" + dm
	}
	return out
}

func domainOf(addr string) string {
	if i := strings.LastIndexByte(addr, '@'); i >= 0 {
		return addr[i+1:]
	}
	return addr
}
