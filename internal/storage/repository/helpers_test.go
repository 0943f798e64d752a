package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/movibes/internal/migrations"
	"github.com/magabrotheeeer/movibes/internal/models"
)

func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("movibes"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	path, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, path))
	return storage
}

// TestDataFactory создаёт тестовые данные напрямую через SQL.
type TestDataFactory struct {
	storage *Storage
}

func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

func (f *TestDataFactory) CreateUser(t *testing.T, email string, role models.Role, complete bool) string {
	t.Helper()
	var id string
	err := f.storage.DB.QueryRow(`INSERT INTO users (email, password_hash, role, profile_complete)
		VALUES ($1, 'hash', $2, $3) RETURNING id`, email, string(role), complete).Scan(&id)
	require.NoError(t, err)
	return id
}

func (f *TestDataFactory) PlanID(t *testing.T, slug string) int64 {
	t.Helper()
	var id int64
	require.NoError(t, f.storage.DB.QueryRow(`SELECT id FROM plan_types WHERE slug = $1`, slug).Scan(&id))
	return id
}

func (f *TestDataFactory) CreateSubscription(t *testing.T, sub models.Subscription) int64 {
	t.Helper()
	id, err := f.storage.CreateSubscription(context.Background(), sub)
	require.NoError(t, err)
	return id
}
