package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/validate"
)

type ContactInput struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,storeemail"`
	Subject string `json:"subject" validate:"max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

// FunnelService handles newsletter signups and the contact form.
type FunnelService struct {
	Funnel FunnelStore
	Notify Notifier
	Tasks  *Background
}

func NewFunnelService(funnel FunnelStore, n Notifier, tasks *Background) *FunnelService {
	if tasks == nil {
		tasks = NewBackground()
	}
	return &FunnelService{Funnel: funnel, Notify: n, Tasks: tasks}
}

func (s *FunnelService) Subscribe(ctx context.Context, email string) (domain.Subscriber, error) {
	clean, ok := validate.Email(email)
	if !ok {
		return domain.Subscriber{}, domain.Validation("email must be a valid email")
	}
	sub := domain.Subscriber{ID: uuid.NewString(), Email: strings.ToLower(clean), CreatedAt: time.Now().UTC()}
	if err := s.Funnel.CreateSubscriber(ctx, sub); err != nil {
		return domain.Subscriber{}, err
	}
	applog.Info(nil, "subscriber.create", map[string]any{"subscriber_id": sub.ID})
	return sub, nil
}

// Contact stores the message and forwards it to the operator in the
// background.
func (s *FunnelService) Contact(ctx context.Context, in ContactInput) (domain.ContactMessage, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Subject = strings.TrimSpace(in.Subject)
	in.Message = strings.TrimSpace(in.Message)
	if err := validate.Struct(in); err != nil {
		return domain.ContactMessage{}, err
	}
	if in.Subject == "" {
		in.Subject = "Website enquiry"
	}
	m := domain.ContactMessage{
		ID: uuid.NewString(), Name: in.Name, Email: in.Email,
		Subject: in.Subject, Message: in.Message, CreatedAt: time.Now().UTC(),
	}
	if err := s.Funnel.CreateContactMessage(ctx, m); err != nil {
		return domain.ContactMessage{}, err
	}
	applog.Info(nil, "contact.create", map[string]any{"message_id": m.ID})
	if s.Notify != nil {
		s.Tasks.Go(ctx, "contact.notify", map[string]any{"message_id": m.ID}, func(ctx context.Context) error {
			return s.Notify.ContactReceived(ctx, m)
		})
	}
	return m, nil
}
