package studio

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Lead operations

// SubmitContact saves the submission and then notifies. If the notifier
// fails, the saved contact is returned together with a *NotificationError
// so callers can tell a lost notification from a lost submission.
func (s *service) SubmitContact(ctx context.Context, req SubmitContactRequest) (*Contact, error) {
	if err := req.Validate(); err != nil {
		leadsTotal.WithLabelValues(string(KindContact), "invalid").Inc()
		return nil, err
	}

	contact := &Contact{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.TrimSpace(req.Email),
		Company:     strings.TrimSpace(req.Company),
		Service:     strings.TrimSpace(req.Service),
		Message:     req.Message,
		SubmittedAt: time.Now().UTC(),
	}

	_, err := bounded(ctx, s, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.repository.Contacts().Create(ctx, contact)
	})
	if err != nil {
		leadsTotal.WithLabelValues(string(KindContact), resultError).Inc()
		return nil, &EntityError{Kind: KindContact, ID: contact.ID, Op: "create", Err: err}
	}

	_, err = bounded(ctx, s, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.notifier.Notify(ctx, NewContactNotification(contact))
	})
	if err != nil {
		leadsTotal.WithLabelValues(string(KindContact), "notify_failed").Inc()
		s.logger.ErrorContext(ctx, "Failed to send contact notification",
			"contact_id", contact.ID.String(), "error", err)
		return contact, &NotificationError{ContactID: contact.ID, Err: err}
	}

	leadsTotal.WithLabelValues(string(KindContact), resultOK).Inc()
	return contact, nil
}

func (s *service) ListContacts(ctx context.Context) ([]*Contact, error) {
	return listRecords(ctx, s, s.repository.Contacts(), KindContact, OrderNewest)
}

func (s *service) DeleteContact(ctx context.Context, id uuid.UUID) error {
	return deleteRecord(ctx, s, s.repository.Contacts(), KindContact, id)
}

// SubscribeNewsletter stores a subscription. Addresses are compared after
// trimming and lower-casing; a repeated address fails with ErrDuplicateKey.
func (s *service) SubscribeNewsletter(ctx context.Context, req SubscribeRequest) (*Subscriber, error) {
	if err := req.Validate(); err != nil {
		leadsTotal.WithLabelValues(string(KindSubscriber), "invalid").Inc()
		return nil, err
	}

	sub := &Subscriber{
		ID:           uuid.New(),
		Email:        NormalizeEmail(req.Email),
		SubscribedAt: time.Now().UTC(),
	}

	_, err := bounded(ctx, s, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.repository.Subscribers().Create(ctx, sub)
	})
	if err != nil {
		result := resultError
		if errors.Is(err, ErrDuplicateKey) {
			result = "duplicate"
		}
		leadsTotal.WithLabelValues(string(KindSubscriber), result).Inc()
		return nil, &EntityError{Kind: KindSubscriber, ID: sub.ID, Op: "create", Err: err}
	}

	leadsTotal.WithLabelValues(string(KindSubscriber), resultOK).Inc()
	return sub, nil
}

func (s *service) ListSubscribers(ctx context.Context) ([]*Subscriber, error) {
	return listRecords(ctx, s, s.repository.Subscribers(), KindSubscriber, OrderNewest)
}

func (s *service) DeleteSubscriber(ctx context.Context, id uuid.UUID) error {
	return deleteRecord(ctx, s, s.repository.Subscribers(), KindSubscriber, id)
}
