// Package notify delivers customer and operator notifications over SMTP,
// including SMS through carrier email-to-SMS gateways.
package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"storefront/internal/config"
	applog "storefront/internal/log"
)

type Email struct {
	To      string
	From    string
	Subject string
	Text    string
	HTML    string
	ReplyTo string
}

// Mailer is the transport under the Dispatcher.
type Mailer interface {
	Send(ctx context.Context, e Email) error
}

type SMTPMailer struct {
	host string
	opts []mail.Option
}

func NewSMTPMailer(cfg config.Notify) *SMTPMailer {
	opts := []mail.Option{
		mail.WithPort(cfg.SMTPPort),
		mail.WithTimeout(cfg.Timeout),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.SMTPUser != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.SMTPUser),
			mail.WithPassword(cfg.SMTPPassword),
		)
	}
	return &SMTPMailer{host: cfg.SMTPHost, opts: opts}
}

func (s *SMTPMailer) Send(ctx context.Context, e Email) error {
	m, err := buildMessage(e)
	if err != nil {
		return err
	}
	c, err := mail.NewClient(s.host, s.opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp send to %s: %w", e.To, err)
	}
	return nil
}

func buildMessage(e Email) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(e.From); err != nil {
		return nil, fmt.Errorf("from %q: %w", e.From, err)
	}
	if err := m.To(e.To); err != nil {
		return nil, fmt.Errorf("to %q: %w", e.To, err)
	}
	if e.ReplyTo != "" {
		if err := m.ReplyTo(e.ReplyTo); err != nil {
			return nil, fmt.Errorf("reply-to %q: %w", e.ReplyTo, err)
		}
	}
	m.Subject(e.Subject)
	m.SetBodyString(mail.TypeTextPlain, e.Text)
	if e.HTML != "" {
		m.AddAlternativeString(mail.TypeTextHTML, e.HTML)
	}
	return m, nil
}

// LogMailer writes messages to the log instead of sending them. Used when
// no SMTP host is configured.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, e Email) error {
	if _, err := buildMessage(e); err != nil {
		return err
	}
	applog.Info(nil, "notify.email.logged", map[string]any{
		"to": e.To, "subject": e.Subject,
	})
	return nil
}

// NewMailer picks the SMTP transport when a host is configured.
func NewMailer(cfg config.Notify) Mailer {
	if cfg.SMTPHost == "" {
		return LogMailer{}
	}
	return NewSMTPMailer(cfg)
}
