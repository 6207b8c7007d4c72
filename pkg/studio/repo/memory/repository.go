package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/tendant/studio-site/pkg/studio"
)

// Repository implements studio.Repository using in-memory storage
type Repository struct {
	contacts    *store[studio.Contact]
	subscribers *store[studio.Subscriber]
	projects    *store[studio.Project]
	posts       *store[studio.Post]
	team        *store[studio.TeamMember]
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		contacts: newStore[studio.Contact](nil),
		subscribers: newStore(func(s *studio.Subscriber) string {
			return studio.NormalizeEmail(s.Email)
		}),
		projects: newStore[studio.Project](nil),
		posts:    newStore[studio.Post](nil),
		team:     newStore[studio.TeamMember](nil),
	}
}

func (r *Repository) Contacts() studio.Store[studio.Contact]       { return r.contacts }
func (r *Repository) Subscribers() studio.Store[studio.Subscriber] { return r.subscribers }
func (r *Repository) Projects() studio.Store[studio.Project]       { return r.projects }
func (r *Repository) Posts() studio.Store[studio.Post]             { return r.posts }
func (r *Repository) Team() studio.Store[studio.TeamMember]        { return r.team }

// Close is a no-op
func (r *Repository) Close() error { return nil }

// store keeps one collection in insertion order. uniqueKey, when set,
// extracts a value that must be unique across the collection.
type store[T studio.Record] struct {
	mu        sync.RWMutex
	records   map[uuid.UUID]*T
	order     []uuid.UUID
	uniqueKey func(*T) string
	unique    map[string]uuid.UUID
}

func newStore[T studio.Record](uniqueKey func(*T) string) *store[T] {
	return &store[T]{
		records:   make(map[uuid.UUID]*T),
		uniqueKey: uniqueKey,
		unique:    make(map[string]uuid.UUID),
	}
}

func (s *store[T]) Create(ctx context.Context, record *T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := (*record).RecordID()
	if _, exists := s.records[id]; exists {
		return studio.ErrDuplicateKey
	}

	var key string
	if s.uniqueKey != nil {
		key = s.uniqueKey(record)
		if _, exists := s.unique[key]; exists {
			return studio.ErrDuplicateKey
		}
		s.unique[key] = id
	}

	// Create a copy to avoid external modifications
	recordCopy := *record
	s.records[id] = &recordCopy
	s.order = append(s.order, id)
	return nil
}

func (s *store[T]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.records[id]
	if !exists {
		return nil, studio.ErrNotFound
	}

	// Return a copy to prevent external modifications
	recordCopy := *record
	return &recordCopy, nil
}

func (s *store[T]) List(ctx context.Context, opts studio.ListOptions) ([]*T, error) {
	s.mu.RLock()
	result := make([]*T, 0, len(s.order))
	for _, id := range s.order {
		recordCopy := *s.records[id]
		result = append(result, &recordCopy)
	}
	s.mu.RUnlock()

	if opts.Order == studio.OrderNewest {
		// Stable, so equal timestamps keep insertion order
		slices.SortStableFunc(result, func(a, b *T) int {
			return (*b).ListTime().Compare((*a).ListTime())
		})
	}
	return result, nil
}

func (s *store[T]) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.records[id]
	if !exists {
		return studio.ErrNotFound
	}

	if s.uniqueKey != nil {
		delete(s.unique, s.uniqueKey(record))
	}
	delete(s.records, id)
	s.order = slices.DeleteFunc(s.order, func(v uuid.UUID) bool { return v == id })
	return nil
}

func (s *store[T]) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}
