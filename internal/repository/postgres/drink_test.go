package postgres

import (
	"context"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"drinks-service/internal/audit"
	"drinks-service/internal/config"
	"drinks-service/internal/domain/drink"
	apperrors "drinks-service/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := migrationFiles.ReadDir(migrationsDir)
	require.NoError(t, err)

	names := make(map[string]bool, len(entries))
	for _, e := range entries {
		names[e.Name()] = true
	}
	assert.True(t, names["000001_create_drinks.up.sql"])
	assert.True(t, names["000002_create_drink_audit_events.up.sql"])

	for name := range names {
		if base, ok := strings.CutSuffix(name, ".up.sql"); ok {
			assert.True(t, names[base+".down.sql"], "missing down migration for %s", name)
		}
	}
}

// The tests below need a disposable database, e.g.
// TEST_DB_HOST=localhost TEST_DB_PASSWORD=postgres go test ./internal/repository/postgres/...
func testDatabaseConfig(t *testing.T) *config.DatabaseConfig {
	t.Helper()

	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST not set, skipping postgres integration test")
	}

	port := 5432
	if raw := os.Getenv("TEST_DB_PORT"); raw != "" {
		p, err := strconv.Atoi(raw)
		require.NoError(t, err)
		port = p
	}

	return &config.DatabaseConfig{
		Driver:   config.DriverPostgres,
		Host:     host,
		Port:     port,
		Database: envOr("TEST_DB_NAME", "drinks_test"),
		User:     envOr("TEST_DB_USER", "postgres"),
		Password: os.Getenv("TEST_DB_PASSWORD"),
		SSLMode:  envOr("TEST_DB_SSLMODE", "disable"),
		MaxConns: 4,
		MinConns: 1,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newTestDB(t *testing.T) *DB {
	t.Helper()
	cfg := testDatabaseConfig(t)

	migrator, err := NewMigrator(cfg)
	require.NoError(t, err)
	_, err = migrator.Up()
	require.NoError(t, err)
	require.NoError(t, migrator.Close())

	ctx := context.Background()
	db, err := New(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	_, err = db.Pool.Exec(ctx, `TRUNCATE drinks, drink_audit_events RESTART IDENTITY`)
	require.NoError(t, err)

	return db
}

func newTestRepository(t *testing.T) *DrinkRepository {
	t.Helper()
	return NewDrinkRepository(newTestDB(t))
}

func TestDrinkRepositoryLifecycle(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, drink.CreateDrinkInput{
		Title:  "Water",
		Recipe: drink.Recipe{{Name: "Water", Color: "blue", Parts: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	got.Title = "Sparkling water"
	updated, err := repo.Update(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, "Sparkling water", updated.Title)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	deleted, err := repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = repo.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDrinkRepositoryDuplicateTitle(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	input := drink.CreateDrinkInput{
		Title:  "Matcha",
		Recipe: drink.Recipe{{Name: "Matcha", Color: "green", Parts: 1}},
	}
	_, err := repo.Create(ctx, input)
	require.NoError(t, err)

	_, err = repo.Create(ctx, input)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestDrinkRepositoryUpdateMissing(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.Update(context.Background(), &drink.Drink{
		ID:     99,
		Title:  "Ghost",
		Recipe: drink.Recipe{{Name: "Air", Color: "white", Parts: 1}},
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAuditStoreRecent(t *testing.T) {
	store := audit.NewPostgresStore(newTestDB(t).Pool)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for i, e := range []struct {
		action  audit.Action
		drinkID int64
	}{
		{audit.ActionCreate, 1},
		{audit.ActionCreate, 2},
		{audit.ActionUpdate, 1},
		{audit.ActionDelete, 1},
	} {
		require.NoError(t, store.Insert(ctx, &audit.Event{
			ID:        uuid.New(),
			Action:    e.action,
			DrinkID:   e.drinkID,
			Subject:   "auth0|manager",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	events, err := store.Recent(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, audit.ActionDelete, events[0].Action)
	assert.Equal(t, audit.ActionUpdate, events[1].Action)

	events, err = store.Recent(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, events, 4)
}
