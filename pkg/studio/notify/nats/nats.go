// Package nats publishes contact notifications to a NATS subject so that an
// out-of-band worker can deliver them.
package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/tendant/studio-site/pkg/studio"
)

// DefaultSubject is used when no subject is configured
const DefaultSubject = "studio.contact.submitted"

const flushTimeout = 5 * time.Second

// Notifier publishes each notification as JSON and waits for the server to
// acknowledge the flush, so connection failures surface to the caller.
type Notifier struct {
	conn    *nats.Conn
	subject string
	owned   bool
}

// Connect dials url and returns a notifier that closes the connection on Close
func Connect(url, subject string) (*Notifier, error) {
	conn, err := nats.Connect(url,
		nats.Name("studio-site"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(1*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	n := New(conn, subject)
	n.owned = true
	return n, nil
}

// New wraps an existing connection. The caller keeps ownership of conn.
func New(conn *nats.Conn, subject string) *Notifier {
	if subject == "" {
		subject = DefaultSubject
	}
	return &Notifier{conn: conn, subject: subject}
}

// Notify publishes the notification
func (n *Notifier) Notify(ctx context.Context, note studio.Notification) error {
	data, err := json.Marshal(note)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	msg := nats.NewMsg(n.subject)
	msg.Data = data
	msg.Header.Set("Contact-Id", note.ContactID.String())
	if err := n.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flushTimeout)
		defer cancel()
	}
	if err := n.conn.FlushWithContext(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, nats.ErrTimeout) {
			return fmt.Errorf("notification not acknowledged: %w", context.DeadlineExceeded)
		}
		return fmt.Errorf("failed to flush notification: %w", err)
	}
	return nil
}

// Close drains the connection if this notifier opened it
func (n *Notifier) Close() error {
	if !n.owned {
		return nil
	}
	return n.conn.Drain()
}
