package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

// FunnelRepo stores newsletter subscribers and contact messages; both are
// append-only.
type FunnelRepo struct{ db *sqlx.DB }

func NewFunnelRepo(db *sqlx.DB) *FunnelRepo { return &FunnelRepo{db: db} }

func (r *FunnelRepo) CreateSubscriber(ctx context.Context, s domain.Subscriber) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO subscribers(id, email, created_at) VALUES (?, ?, ?)
	`), s.ID, s.Email, s.CreatedAt)
	if err != nil && isUniqueViolation(err) {
		return domain.Conflict("%s is already subscribed", s.Email)
	}
	return classify("subscriber.create", err, "subscriber")
}

func (r *FunnelRepo) CreateContactMessage(ctx context.Context, m domain.ContactMessage) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO contact_messages(id, name, email, subject, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), m.ID, m.Name, m.Email, m.Subject, m.Message, m.CreatedAt)
	return classify("contact.create", err, "contact message")
}
