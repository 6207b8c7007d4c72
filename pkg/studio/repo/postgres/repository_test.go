package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/studio-site/pkg/studio"
)

// TestDB is a migrated repository living in a throwaway schema
type TestDB struct {
	Pool *pgxpool.Pool
	Repo *Repository
}

// RunTest runs fn against a fresh schema. It skips unless TEST_DATABASE_URL
// points at a reachable PostgreSQL server.
func RunTest(t *testing.T, fn func(t *testing.T, db *TestDB)) {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	schemaName := "studio_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]

	cfg, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err)
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s", schemaName))
		return err
	}

	admin, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Skipf("postgres not available: %v", err)
	}
	defer admin.Close()
	if err := admin.Ping(ctx); err != nil {
		t.Skipf("postgres not available: %v", err)
	}
	_, err = admin.Exec(ctx, "CREATE SCHEMA "+schemaName)
	require.NoError(t, err)
	defer admin.Exec(ctx, "DROP SCHEMA "+schemaName+" CASCADE")

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)

	repo := NewWithPool(pool)
	defer repo.Close()
	require.NoError(t, repo.Migrate(ctx))

	fn(t, &TestDB{Pool: pool, Repo: repo})
}

func TestHandlePostgresError(t *testing.T) {
	assert.ErrorIs(t, handlePostgresError("get", pgx.ErrNoRows), studio.ErrNotFound)

	dup := &pgconn.PgError{Code: "23505", ConstraintName: "idx_newsletter_subscribers_email"}
	assert.ErrorIs(t, handlePostgresError("create", dup), studio.ErrDuplicateKey)

	other := errors.New("connection reset")
	err := handlePostgresError("list", other)
	assert.ErrorIs(t, err, other)
	assert.Contains(t, err.Error(), "list")
}

func TestPostgresRepository_Projects(t *testing.T) {
	RunTest(t, func(t *testing.T, db *TestDB) {
		ctx := context.Background()
		projects := db.Repo.Projects()

		base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		older := &studio.Project{ID: uuid.New(), Title: "Older", Category: "Web", Description: "d",
			Date: base, CreatedAt: base}
		newer := &studio.Project{ID: uuid.New(), Title: "Newer", Category: "Web", Description: "d",
			ImageRef: "1704067200000.png", Date: base.Add(time.Hour), Featured: true, CreatedAt: base}
		require.NoError(t, projects.Create(ctx, older))
		require.NoError(t, projects.Create(ctx, newer))

		got, err := projects.Get(ctx, newer.ID)
		require.NoError(t, err)
		assert.Equal(t, "1704067200000.png", got.ImageRef)
		assert.True(t, got.Featured)

		list, err := projects.List(ctx, studio.ListOptions{Order: studio.OrderNewest})
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "Newer", list[0].Title)

		list, err = projects.List(ctx, studio.ListOptions{Order: studio.OrderNatural})
		require.NoError(t, err)
		assert.Equal(t, "Older", list[0].Title)

		require.NoError(t, projects.Delete(ctx, older.ID))
		assert.ErrorIs(t, projects.Delete(ctx, older.ID), studio.ErrNotFound)
		_, err = projects.Get(ctx, older.ID)
		assert.ErrorIs(t, err, studio.ErrNotFound)

		n, err := projects.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}

func TestPostgresRepository_SubscriberUnique(t *testing.T) {
	RunTest(t, func(t *testing.T, db *TestDB) {
		ctx := context.Background()
		subs := db.Repo.Subscribers()

		require.NoError(t, subs.Create(ctx, &studio.Subscriber{ID: uuid.New(), Email: "a@example.com", SubscribedAt: time.Now()}))
		err := subs.Create(ctx, &studio.Subscriber{ID: uuid.New(), Email: "a@example.com", SubscribedAt: time.Now()})
		assert.ErrorIs(t, err, studio.ErrDuplicateKey)
	})
}

func TestPostgresRepository_TeamSocial(t *testing.T) {
	RunTest(t, func(t *testing.T, db *TestDB) {
		ctx := context.Background()
		m := &studio.TeamMember{ID: uuid.New(), Name: "Kai", Role: "Designer", Bio: "b",
			Social: studio.Social{Instagram: "@kai"}, CreatedAt: time.Now().UTC()}
		require.NoError(t, db.Repo.Team().Create(ctx, m))

		got, err := db.Repo.Team().Get(ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, "@kai", got.Social.Instagram)
		assert.Empty(t, got.Social.Twitter)
	})
}
