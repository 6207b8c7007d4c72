package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tendant/studio-site/pkg/studio"
)

//go:embed schema.sql
var schema string

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements studio.Repository using PostgreSQL
type Repository struct {
	db   DBTX
	pool *pgxpool.Pool

	contacts    *table[studio.Contact]
	subscribers *table[studio.Subscriber]
	projects    *table[studio.Project]
	posts       *table[studio.Post]
	team        *table[studio.TeamMember]
}

// New creates a new PostgreSQL repository. The caller owns db.
func New(db DBTX) *Repository {
	return &Repository{
		db:          db,
		contacts:    contactsTable(db),
		subscribers: subscribersTable(db),
		projects:    projectsTable(db),
		posts:       postsTable(db),
		team:        teamTable(db),
	}
}

// NewWithPool creates a new PostgreSQL repository that closes pool on Close
func NewWithPool(pool *pgxpool.Pool) *Repository {
	r := New(pool)
	r.pool = pool
	return r
}

func (r *Repository) Contacts() studio.Store[studio.Contact]       { return r.contacts }
func (r *Repository) Subscribers() studio.Store[studio.Subscriber] { return r.subscribers }
func (r *Repository) Projects() studio.Store[studio.Project]       { return r.projects }
func (r *Repository) Posts() studio.Store[studio.Post]             { return r.posts }
func (r *Repository) Team() studio.Store[studio.TeamMember]        { return r.team }

func (r *Repository) Close() error {
	if r.pool != nil {
		r.pool.Close()
	}
	return nil
}

// Migrate creates the tables and indexes if they do not exist yet
func (r *Repository) Migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := r.db.Exec(ctx, stmt); err != nil {
			return handlePostgresError("migrate", err)
		}
	}
	return nil
}

// Error handling helper
func handlePostgresError(operation string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return studio.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%w: %s", studio.ErrDuplicateKey, pgErr.ConstraintName)
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

// table maps one entity kind to its SQL table. seq is a serial column that
// records insertion order.
type table[T studio.Record] struct {
	db         DBTX
	name       string
	columns    []string
	listColumn string
	values     func(*T) []any
	scan       func(pgx.Row) (*T, error)
}

func (t *table[T]) Create(ctx context.Context, record *T) error {
	placeholders := make([]string, len(t.columns))
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		t.name, strings.Join(t.columns, ", "), strings.Join(placeholders, ", "))

	if _, err := t.db.Exec(ctx, query, t.values(record)...); err != nil {
		return handlePostgresError("create "+t.name, err)
	}
	return nil
}

func (t *table[T]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", strings.Join(t.columns, ", "), t.name)

	record, err := t.scan(t.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, handlePostgresError("get "+t.name, err)
	}
	return record, nil
}

func (t *table[T]) List(ctx context.Context, opts studio.ListOptions) ([]*T, error) {
	order := "seq ASC"
	if opts.Order == studio.OrderNewest {
		order = t.listColumn + " DESC, seq ASC"
	}
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s", strings.Join(t.columns, ", "), t.name, order)

	rows, err := t.db.Query(ctx, query)
	if err != nil {
		return nil, handlePostgresError("list "+t.name, err)
	}
	defer rows.Close()

	result := []*T{}
	for rows.Next() {
		record, err := t.scan(rows)
		if err != nil {
			return nil, handlePostgresError("list "+t.name, err)
		}
		result = append(result, record)
	}
	if err := rows.Err(); err != nil {
		return nil, handlePostgresError("list "+t.name, err)
	}
	return result, nil
}

func (t *table[T]) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := t.db.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", t.name), id)
	if err != nil {
		return handlePostgresError("delete "+t.name, err)
	}
	if tag.RowsAffected() == 0 {
		return studio.ErrNotFound
	}
	return nil
}

func (t *table[T]) Count(ctx context.Context) (int, error) {
	var n int
	if err := t.db.QueryRow(ctx, "SELECT COUNT(*) FROM "+t.name).Scan(&n); err != nil {
		return 0, handlePostgresError("count "+t.name, err)
	}
	return n, nil
}

func contactsTable(db DBTX) *table[studio.Contact] {
	return &table[studio.Contact]{
		db:         db,
		name:       "contacts",
		columns:    []string{"id", "name", "email", "company", "service", "message", "submitted_at"},
		listColumn: "submitted_at",
		values: func(c *studio.Contact) []any {
			return []any{c.ID, c.Name, c.Email, c.Company, c.Service, c.Message, c.SubmittedAt}
		},
		scan: func(row pgx.Row) (*studio.Contact, error) {
			var c studio.Contact
			err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Company, &c.Service, &c.Message, &c.SubmittedAt)
			return &c, err
		},
	}
}

func subscribersTable(db DBTX) *table[studio.Subscriber] {
	return &table[studio.Subscriber]{
		db:         db,
		name:       "newsletter_subscribers",
		columns:    []string{"id", "email", "subscribed_at"},
		listColumn: "subscribed_at",
		values: func(s *studio.Subscriber) []any {
			return []any{s.ID, s.Email, s.SubscribedAt}
		},
		scan: func(row pgx.Row) (*studio.Subscriber, error) {
			var s studio.Subscriber
			err := row.Scan(&s.ID, &s.Email, &s.SubscribedAt)
			return &s, err
		},
	}
}

func projectsTable(db DBTX) *table[studio.Project] {
	return &table[studio.Project]{
		db:         db,
		name:       "projects",
		columns:    []string{"id", "title", "category", "description", "image_ref", "date", "featured", "created_at"},
		listColumn: "date",
		values: func(p *studio.Project) []any {
			return []any{p.ID, p.Title, p.Category, p.Description, p.ImageRef, p.Date, p.Featured, p.CreatedAt}
		},
		scan: func(row pgx.Row) (*studio.Project, error) {
			var p studio.Project
			err := row.Scan(&p.ID, &p.Title, &p.Category, &p.Description, &p.ImageRef, &p.Date, &p.Featured, &p.CreatedAt)
			return &p, err
		},
	}
}

func postsTable(db DBTX) *table[studio.Post] {
	return &table[studio.Post]{
		db:         db,
		name:       "posts",
		columns:    []string{"id", "title", "category", "content", "image_ref", "author", "published_at"},
		listColumn: "published_at",
		values: func(p *studio.Post) []any {
			return []any{p.ID, p.Title, p.Category, p.Content, p.ImageRef, p.Author, p.PublishedAt}
		},
		scan: func(row pgx.Row) (*studio.Post, error) {
			var p studio.Post
			err := row.Scan(&p.ID, &p.Title, &p.Category, &p.Content, &p.ImageRef, &p.Author, &p.PublishedAt)
			return &p, err
		},
	}
}

func teamTable(db DBTX) *table[studio.TeamMember] {
	return &table[studio.TeamMember]{
		db:   db,
		name: "team_members",
		columns: []string{"id", "name", "role", "image_ref", "bio",
			"social_instagram", "social_linkedin", "social_twitter", "created_at"},
		listColumn: "created_at",
		values: func(m *studio.TeamMember) []any {
			return []any{m.ID, m.Name, m.Role, m.ImageRef, m.Bio,
				m.Social.Instagram, m.Social.LinkedIn, m.Social.Twitter, m.CreatedAt}
		},
		scan: func(row pgx.Row) (*studio.TeamMember, error) {
			var m studio.TeamMember
			err := row.Scan(&m.ID, &m.Name, &m.Role, &m.ImageRef, &m.Bio,
				&m.Social.Instagram, &m.Social.LinkedIn, &m.Social.Twitter, &m.CreatedAt)
			return &m, err
		},
	}
}
