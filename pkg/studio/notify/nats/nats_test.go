package nats

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/studio-site/pkg/studio"
)

// startTestNATSServer starts an embedded NATS server for testing.
func startTestNATSServer(t *testing.T) *natsserver.Server {
	opts := &natsserver.Options{
		Host:   "127.0.0.1",
		Port:   -1, // Random port
		NoLog:  true,
		NoSigs: true,
	}

	server, err := natsserver.NewServer(opts)
	require.NoError(t, err)

	go server.Start()

	if !server.ReadyForConnections(5 * time.Second) {
		t.Fatal("NATS server not ready")
	}

	t.Cleanup(func() {
		server.Shutdown()
		server.WaitForShutdown()
	})

	return server
}

func TestNotifier_Publishes(t *testing.T) {
	server := startTestNATSServer(t)

	sub, err := nats.Connect(server.ClientURL())
	require.NoError(t, err)
	defer sub.Close()

	msgs := make(chan *nats.Msg, 1)
	_, err = sub.ChanSubscribe(DefaultSubject, msgs)
	require.NoError(t, err)
	require.NoError(t, sub.Flush())

	notifier, err := Connect(server.ClientURL(), "")
	require.NoError(t, err)
	defer notifier.Close()

	contact := &studio.Contact{
		ID:          uuid.New(),
		Name:        "Ann",
		Email:       "ann@example.com",
		Message:     "Hello",
		SubmittedAt: time.Now().UTC(),
	}
	require.NoError(t, notifier.Notify(context.Background(), studio.NewContactNotification(contact)))

	select {
	case msg := <-msgs:
		assert.Equal(t, contact.ID.String(), msg.Header.Get("Contact-Id"))

		var got studio.Notification
		require.NoError(t, json.Unmarshal(msg.Data, &got))
		assert.Equal(t, contact.ID, got.ContactID)
		assert.Equal(t, studio.ContactSubject, got.Subject)
		assert.Equal(t, "ann@example.com", got.Contact.Email)
	case <-time.After(5 * time.Second):
		t.Fatal("notification not received")
	}
}

func TestNotifier_ClosedConnection(t *testing.T) {
	server := startTestNATSServer(t)

	conn, err := nats.Connect(server.ClientURL())
	require.NoError(t, err)
	notifier := New(conn, "studio.test")
	conn.Close()

	err = notifier.Notify(context.Background(), studio.NewContactNotification(&studio.Contact{ID: uuid.New()}))
	assert.Error(t, err)

	// Borrowed connections are left to their owner
	assert.NoError(t, notifier.Close())
}
