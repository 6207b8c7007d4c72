package studio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tendant/studio-site/pkg/studio/mediakey"
)

// DefaultOperationTimeout bounds every repository and media storage call.
const DefaultOperationTimeout = 10 * time.Second

// service implements the Service interface
type service struct {
	repository Repository
	blobName   string
	blobStore  BlobStore
	keys       mediakey.Generator
	urlPrefix  string
	notifier   Notifier
	timeout    time.Duration
	logger     *slog.Logger
	closers    []io.Closer

	media *MediaStore
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithBlobStore sets the media storage backend. name identifies the backend
// in errors and logs.
func WithBlobStore(name string, store BlobStore) Option {
	return func(s *service) {
		s.blobName = name
		s.blobStore = store
	}
}

// WithMediaKeyGenerator sets the strategy used to name stored files
func WithMediaKeyGenerator(g mediakey.Generator) Option {
	return func(s *service) {
		s.keys = g
	}
}

// WithMediaURLPrefix sets the path stored media is served under
func WithMediaURLPrefix(prefix string) Option {
	return func(s *service) {
		s.urlPrefix = prefix
	}
}

// WithNotifier sets the notifier called after a contact submission
func WithNotifier(n Notifier) Option {
	return func(s *service) {
		s.notifier = n
	}
}

// WithOperationTimeout bounds each storage call. Zero or negative disables
// the bound.
func WithOperationTimeout(d time.Duration) Option {
	return func(s *service) {
		s.timeout = d
	}
}

// WithLogger sets the logger for the service
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// WithCloser registers a resource released by Close. Closers run in reverse
// registration order, before the repository is closed.
func WithCloser(c io.Closer) Option {
	return func(s *service) {
		s.closers = append(s.closers, c)
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		timeout: DefaultOperationTimeout,
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.blobStore == nil {
		return nil, fmt.Errorf("blob store is required")
	}
	if s.notifier == nil {
		s.notifier = NewNoopNotifier()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.blobName == "" {
		s.blobName = "default"
	}

	s.media = NewMediaStore(s.blobName, s.blobStore, s.keys, s.urlPrefix, s.timeout)
	return s, nil
}

// Project operations

func (s *service) CreateProject(ctx context.Context, req CreateProjectRequest) (*Project, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	date := now
	if !req.Date.IsZero() {
		date = req.Date.UTC()
	}

	return createWithMedia(ctx, s, s.repository.Projects(), KindProject, req.Image, func(ref string) *Project {
		return &Project{
			ID:          uuid.New(),
			Title:       strings.TrimSpace(req.Title),
			Category:    strings.TrimSpace(req.Category),
			Description: req.Description,
			ImageRef:    ref,
			Date:        date,
			Featured:    req.Featured,
			CreatedAt:   now,
		}
	})
}

func (s *service) GetProject(ctx context.Context, id uuid.UUID) (*Project, error) {
	return getRecord(ctx, s, s.repository.Projects(), KindProject, id)
}

func (s *service) ListProjects(ctx context.Context) ([]*Project, error) {
	return listRecords(ctx, s, s.repository.Projects(), KindProject, OrderNewest)
}

func (s *service) DeleteProject(ctx context.Context, id uuid.UUID) error {
	return deleteWithMedia(ctx, s, s.repository.Projects(), KindProject, id)
}

// Post operations

func (s *service) CreatePost(ctx context.Context, req CreatePostRequest) (*Post, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return createWithMedia(ctx, s, s.repository.Posts(), KindPost, req.Image, func(ref string) *Post {
		return &Post{
			ID:          uuid.New(),
			Title:       strings.TrimSpace(req.Title),
			Category:    strings.TrimSpace(req.Category),
			Content:     req.Content,
			ImageRef:    ref,
			Author:      strings.TrimSpace(req.Author),
			PublishedAt: now,
		}
	})
}

func (s *service) GetPost(ctx context.Context, id uuid.UUID) (*Post, error) {
	return getRecord(ctx, s, s.repository.Posts(), KindPost, id)
}

func (s *service) ListPosts(ctx context.Context) ([]*Post, error) {
	return listRecords(ctx, s, s.repository.Posts(), KindPost, OrderNewest)
}

func (s *service) DeletePost(ctx context.Context, id uuid.UUID) error {
	return deleteWithMedia(ctx, s, s.repository.Posts(), KindPost, id)
}

// Team operations

func (s *service) CreateTeamMember(ctx context.Context, req CreateTeamMemberRequest) (*TeamMember, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	social, err := ParseSocial(req.Social)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return createWithMedia(ctx, s, s.repository.Team(), KindTeamMember, req.Image, func(ref string) *TeamMember {
		return &TeamMember{
			ID:        uuid.New(),
			Name:      strings.TrimSpace(req.Name),
			Role:      strings.TrimSpace(req.Role),
			ImageRef:  ref,
			Bio:       req.Bio,
			Social:    social,
			CreatedAt: now,
		}
	})
}

func (s *service) GetTeamMember(ctx context.Context, id uuid.UUID) (*TeamMember, error) {
	return getRecord(ctx, s, s.repository.Team(), KindTeamMember, id)
}

// ListTeam returns members in the order they were added.
func (s *service) ListTeam(ctx context.Context) ([]*TeamMember, error) {
	return listRecords(ctx, s, s.repository.Team(), KindTeamMember, OrderNatural)
}

func (s *service) DeleteTeamMember(ctx context.Context, id uuid.UUID) error {
	return deleteWithMedia(ctx, s, s.repository.Team(), KindTeamMember, id)
}

// Media access

func (s *service) MediaURL(ref string) string {
	return s.media.URL(ref)
}

func (s *service) OpenMedia(ctx context.Context, ref string) (io.ReadCloser, *ObjectMeta, error) {
	return s.media.Open(ctx, ref)
}

func (s *service) Close() error {
	var errs []error
	for _, c := range slices.Backward(s.closers) {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.repository.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close repository: %w", err))
	}
	return errors.Join(errs...)
}

// bounded runs fn under the operation timeout.
func bounded[R any](ctx context.Context, s *service, fn func(context.Context) (R, error)) (R, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return fn(ctx)
}

// createWithMedia stores the optional upload, then inserts the record built
// around its reference. A file whose record could not be inserted is
// removed again.
func createWithMedia[T MediaRecord](ctx context.Context, s *service, store Store[T], kind Kind, image *Upload, build func(ref string) *T) (*T, error) {
	var ref string
	if image != nil {
		var err error
		ref, err = s.media.Store(ctx, kind, image)
		if err != nil {
			return nil, err
		}
	}

	record := build(ref)
	_, err := bounded(ctx, s, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, store.Create(ctx, record)
	})
	if err != nil {
		if ref != "" {
			if derr := s.media.Delete(context.WithoutCancel(ctx), ref); derr != nil {
				s.logger.WarnContext(ctx, "Failed to remove media of rejected record",
					"kind", kind, "ref", ref, "error", derr)
			}
		}
		return nil, &EntityError{Kind: kind, ID: (*record).RecordID(), Op: "create", Err: err}
	}
	return record, nil
}

// deleteWithMedia removes the owned file before the record. When the file
// cannot be removed for any reason other than being already gone, the
// record is kept so it never outlives a cleanup attempt silently.
func deleteWithMedia[T MediaRecord](ctx context.Context, s *service, store Store[T], kind Kind, id uuid.UUID) error {
	record, err := bounded(ctx, s, func(ctx context.Context) (*T, error) {
		return store.Get(ctx, id)
	})
	if err != nil {
		return &EntityError{Kind: kind, ID: id, Op: "delete", Err: err}
	}

	if ref := (*record).MediaRef(); ref != "" {
		if err := s.media.Delete(ctx, ref); err != nil {
			return &EntityError{Kind: kind, ID: id, Op: "delete", Err: err}
		}
	}

	return deleteRecord(ctx, s, store, kind, id)
}

func getRecord[T Record](ctx context.Context, s *service, store Store[T], kind Kind, id uuid.UUID) (*T, error) {
	record, err := bounded(ctx, s, func(ctx context.Context) (*T, error) {
		return store.Get(ctx, id)
	})
	if err != nil {
		return nil, &EntityError{Kind: kind, ID: id, Op: "get", Err: err}
	}
	return record, nil
}

func listRecords[T Record](ctx context.Context, s *service, store Store[T], kind Kind, order Order) ([]*T, error) {
	records, err := bounded(ctx, s, func(ctx context.Context) ([]*T, error) {
		return store.List(ctx, ListOptions{Order: order})
	})
	if err != nil {
		return nil, &EntityError{Kind: kind, Op: "list", Err: err}
	}
	return records, nil
}

func deleteRecord[T Record](ctx context.Context, s *service, store Store[T], kind Kind, id uuid.UUID) error {
	_, err := bounded(ctx, s, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, store.Delete(ctx, id)
	})
	if err != nil {
		return &EntityError{Kind: kind, ID: id, Op: "delete", Err: err}
	}
	return nil
}
