package studio

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// Service defines the main interface of the studio backend
type Service interface {
	// Project operations
	CreateProject(ctx context.Context, req CreateProjectRequest) (*Project, error)
	GetProject(ctx context.Context, id uuid.UUID) (*Project, error)
	ListProjects(ctx context.Context) ([]*Project, error)
	DeleteProject(ctx context.Context, id uuid.UUID) error

	// Post operations
	CreatePost(ctx context.Context, req CreatePostRequest) (*Post, error)
	GetPost(ctx context.Context, id uuid.UUID) (*Post, error)
	ListPosts(ctx context.Context) ([]*Post, error)
	DeletePost(ctx context.Context, id uuid.UUID) error

	// Team operations
	CreateTeamMember(ctx context.Context, req CreateTeamMemberRequest) (*TeamMember, error)
	GetTeamMember(ctx context.Context, id uuid.UUID) (*TeamMember, error)
	ListTeam(ctx context.Context) ([]*TeamMember, error)
	DeleteTeamMember(ctx context.Context, id uuid.UUID) error

	// Lead operations
	SubmitContact(ctx context.Context, req SubmitContactRequest) (*Contact, error)
	ListContacts(ctx context.Context) ([]*Contact, error)
	DeleteContact(ctx context.Context, id uuid.UUID) error
	SubscribeNewsletter(ctx context.Context, req SubscribeRequest) (*Subscriber, error)
	ListSubscribers(ctx context.Context) ([]*Subscriber, error)
	DeleteSubscriber(ctx context.Context, id uuid.UUID) error

	// Aggregates
	Search(ctx context.Context, query string) (*SearchResult, error)
	Stats(ctx context.Context) (*Stats, error)

	// Media access
	MediaURL(ref string) string
	OpenMedia(ctx context.Context, ref string) (io.ReadCloser, *ObjectMeta, error)

	// Close releases the repository, notifier and any other registered
	// resources.
	Close() error
}
