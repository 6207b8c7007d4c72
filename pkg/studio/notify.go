package studio

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// ContactSubject is the fixed subject line of contact notifications.
const ContactSubject = "New Contact Form Submission"

// Notification is the message handed to a Notifier after a contact
// submission has been saved.
type Notification struct {
	ContactID uuid.UUID `json:"contact_id"`
	Subject   string    `json:"subject"`
	Text      string    `json:"text"`
	HTML      string    `json:"html"`
	Contact   Contact   `json:"contact"`
}

// NewContactNotification renders the fixed-format summary of a submission.
// Missing company and service are shown as N/A.
func NewContactNotification(c *Contact) Notification {
	rows := [][2]string{
		{"Name", c.Name},
		{"Email", c.Email},
		{"Company", orNA(c.Company)},
		{"Service", orNA(c.Service)},
		{"Message", c.Message},
	}

	var text, body strings.Builder
	body.WriteString("<h2>" + ContactSubject + "</h2>\n")
	for _, row := range rows {
		fmt.Fprintf(&text, "%s: %s\n", row[0], row[1])
		fmt.Fprintf(&body, "<p><strong>%s:</strong> %s</p>\n", row[0], html.EscapeString(row[1]))
	}

	return Notification{
		ContactID: c.ID,
		Subject:   ContactSubject,
		Text:      text.String(),
		HTML:      body.String(),
		Contact:   *c,
	}
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

// NoopNotifier is a no-operation implementation of Notifier
type NoopNotifier struct{}

// NewNoopNotifier creates a new no-operation notifier
func NewNoopNotifier() Notifier {
	return NoopNotifier{}
}

// Notify does nothing and returns nil
func (NoopNotifier) Notify(ctx context.Context, n Notification) error {
	return nil
}

// LogNotifier writes notifications to a structured logger instead of
// delivering them. Useful for development.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a notifier that logs through logger, or through the
// default logger when logger is nil.
func NewLogNotifier(logger *slog.Logger) Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// Notify logs the notification
func (l *LogNotifier) Notify(ctx context.Context, n Notification) error {
	l.logger.InfoContext(ctx, "Contact notification",
		"contact_id", n.ContactID.String(),
		"subject", n.Subject,
		"name", n.Contact.Name,
		"email", n.Contact.Email)
	return nil
}
