package studio

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// Order selects how Store.List sorts its records.
type Order int

const (
	// OrderNatural returns records in insertion order.
	OrderNatural Order = iota
	// OrderNewest sorts by the kind's list timestamp, newest first. Ties
	// keep insertion order.
	OrderNewest
)

// ListOptions contains parameters for listing a collection
type ListOptions struct {
	Order Order
}

// Store defines typed persistence for one entity kind. Each call is atomic
// for the single record it touches.
type Store[T Record] interface {
	// Create inserts a record whose ID and defaults are already assigned.
	// Returns ErrDuplicateKey on a unique constraint violation.
	Create(ctx context.Context, record *T) error

	// Get returns ErrNotFound if the id is unknown
	Get(ctx context.Context, id uuid.UUID) (*T, error)

	List(ctx context.Context, opts ListOptions) ([]*T, error)

	// Delete returns ErrNotFound if the id is unknown
	Delete(ctx context.Context, id uuid.UUID) error

	Count(ctx context.Context) (int, error)
}

// Repository hands out the entity stores of one persistence backend and owns
// its connection lifecycle.
type Repository interface {
	Contacts() Store[Contact]
	Subscribers() Store[Subscriber]
	Projects() Store[Project]
	Posts() Store[Post]
	Team() Store[TeamMember]

	// Close releases the backend's connections
	Close() error
}

// BlobStore defines the interface for media storage backends
type BlobStore interface {
	// Put writes the object, replacing any previous content under key
	Put(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Open returns ErrMediaNotFound if the object does not exist
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete returns ErrMediaNotFound if the object does not exist
	Delete(ctx context.Context, key string) error

	// Stat returns ErrMediaNotFound if the object does not exist
	Stat(ctx context.Context, key string) (*ObjectMeta, error)
}

// Notifier delivers a message about a contact submission.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
