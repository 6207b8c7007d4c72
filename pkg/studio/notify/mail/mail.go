// Package mail delivers contact notifications by SMTP.
package mail

import (
	"context"
	"errors"
	"fmt"

	gomail "github.com/wneessen/go-mail"

	"github.com/tendant/studio-site/pkg/studio"
)

// Config options for the SMTP notifier
type Config struct {
	Host     string
	Port     int    // default: 587
	Username string // empty disables SMTP AUTH
	Password string
	From     string
	To       []string
	// TLS is "mandatory" (default), "opportunistic" or "none"
	TLS string
}

// sender is the part of the go-mail client the notifier uses
type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*gomail.Msg) error
}

// Notifier sends each contact notification as a multipart text/HTML email.
// The submitter's address is set as Reply-To.
type Notifier struct {
	client sender
	from   string
	to     []string
}

// New creates an SMTP notifier
func New(config Config) (*Notifier, error) {
	if config.Host == "" {
		return nil, errors.New("smtp host is required")
	}
	if config.From == "" {
		return nil, errors.New("smtp from address is required")
	}
	if len(config.To) == 0 {
		return nil, errors.New("at least one recipient is required")
	}
	if config.Port == 0 {
		config.Port = 587
	}

	policy := gomail.TLSMandatory
	switch config.TLS {
	case "", "mandatory":
	case "opportunistic":
		policy = gomail.TLSOpportunistic
	case "none":
		policy = gomail.NoTLS
	default:
		return nil, fmt.Errorf("unsupported smtp tls policy: %s", config.TLS)
	}

	opts := []gomail.Option{
		gomail.WithPort(config.Port),
		gomail.WithTLSPolicy(policy),
	}
	if config.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(config.Username),
			gomail.WithPassword(config.Password),
		)
	}

	client, err := gomail.NewClient(config.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}

	return &Notifier{client: client, from: config.From, to: config.To}, nil
}

// Notify sends the notification
func (n *Notifier) Notify(ctx context.Context, note studio.Notification) error {
	msg, err := n.message(note)
	if err != nil {
		return err
	}
	if err := n.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send contact email: %w", err)
	}
	return nil
}

func (n *Notifier) message(note studio.Notification) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(n.from); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(n.to...); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	if note.Contact.Email != "" {
		// A malformed reply address should not block delivery
		_ = msg.ReplyTo(note.Contact.Email)
	}
	msg.Subject(note.Subject)
	msg.SetBodyString(gomail.TypeTextPlain, note.Text)
	msg.AddAlternativeString(gomail.TypeTextHTML, note.HTML)
	return msg, nil
}
