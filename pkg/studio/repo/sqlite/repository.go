// Package sqlite implements studio.Repository on a single SQLite file through
// gorm. It suits single-instance deployments that want durable records
// without running a database server.
package sqlite

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/tendant/studio-site/pkg/studio"
)

// Repository implements studio.Repository using SQLite
type Repository struct {
	db *gorm.DB

	contacts    *table[studio.Contact]
	subscribers *table[studio.Subscriber]
	projects    *table[studio.Project]
	posts       *table[studio.Post]
	team        *table[studio.TeamMember]
}

// Open opens (creating if needed) the database at path and migrates the
// schema. Use ":memory:" for a private in-memory database.
func Open(path string) (*Repository, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite handle: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps ":memory:"
	// databases shared across calls.
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec("PRAGMA busy_timeout = 5000").Error; err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to configure sqlite: %w", err)
	}

	if err := db.AutoMigrate(
		&studio.Contact{},
		&studio.Subscriber{},
		&studio.Project{},
		&studio.Post{},
		&studio.TeamMember{},
	); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate sqlite schema: %w", err)
	}

	return &Repository{
		db:          db,
		contacts:    &table[studio.Contact]{db: db, listColumn: "submitted_at"},
		subscribers: &table[studio.Subscriber]{db: db, listColumn: "subscribed_at"},
		projects:    &table[studio.Project]{db: db, listColumn: "date"},
		posts:       &table[studio.Post]{db: db, listColumn: "published_at"},
		team:        &table[studio.TeamMember]{db: db, listColumn: "created_at"},
	}, nil
}

func (r *Repository) Contacts() studio.Store[studio.Contact]       { return r.contacts }
func (r *Repository) Subscribers() studio.Store[studio.Subscriber] { return r.subscribers }
func (r *Repository) Projects() studio.Store[studio.Project]       { return r.projects }
func (r *Repository) Posts() studio.Store[studio.Post]             { return r.posts }
func (r *Repository) Team() studio.Store[studio.TeamMember]        { return r.team }

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func translate(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return studio.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", studio.ErrDuplicateKey, err)
	default:
		return fmt.Errorf("sqlite %s: %w", op, err)
	}
}

// table stores one entity kind. Natural order follows SQLite's rowid.
type table[T studio.Record] struct {
	db         *gorm.DB
	listColumn string
}

func (t *table[T]) Create(ctx context.Context, record *T) error {
	if err := t.db.WithContext(ctx).Create(record).Error; err != nil {
		return translate("create", err)
	}
	return nil
}

func (t *table[T]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	var record T
	if err := t.db.WithContext(ctx).Where("id = ?", id).Take(&record).Error; err != nil {
		return nil, translate("get", err)
	}
	return &record, nil
}

func (t *table[T]) List(ctx context.Context, opts studio.ListOptions) ([]*T, error) {
	q := t.db.WithContext(ctx)
	if opts.Order == studio.OrderNewest {
		q = q.Order(t.listColumn + " DESC")
	}

	result := []*T{}
	if err := q.Order("rowid ASC").Find(&result).Error; err != nil {
		return nil, translate("list", err)
	}
	return result, nil
}

func (t *table[T]) Delete(ctx context.Context, id uuid.UUID) error {
	var zero T
	res := t.db.WithContext(ctx).Where("id = ?", id).Delete(&zero)
	if res.Error != nil {
		return translate("delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return studio.ErrNotFound
	}
	return nil
}

func (t *table[T]) Count(ctx context.Context) (int, error) {
	var n int64
	if err := t.db.WithContext(ctx).Model(new(T)).Count(&n).Error; err != nil {
		return 0, translate("count", err)
	}
	return int(n), nil
}
