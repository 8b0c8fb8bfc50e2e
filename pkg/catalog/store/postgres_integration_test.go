//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	catalogerrors "github.com/marmos91/mdcatalog/pkg/catalog/errors"
	"github.com/marmos91/mdcatalog/pkg/catalog/models"
	"github.com/marmos91/mdcatalog/pkg/catalog/query"
)

func startPostgres(t *testing.T) *Config {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("mdcatalog"),
		postgres.WithUsername("mdcatalog"),
		postgres.WithPassword("mdcatalog"),
		testcontainers.WithWaitStrategyAndDeadline(5*time.Minute,
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return &Config{
		Type: DatabaseTypePostgres,
		Postgres: PostgresConfig{
			Host:     host,
			Port:     port.Int(),
			Database: "mdcatalog",
			User:     "mdcatalog",
			Password: "mdcatalog",
		},
	}
}

func TestPostgresStore(t *testing.T) {
	ctx := context.Background()
	cfg := startPostgres(t)

	s, err := Open(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	version, dirty, err := s.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)

	// migrations are idempotent
	require.NoError(t, s.Migrate(ctx))

	_, err = s.Metadata().Save(ctx, &models.Metadata{Entry: newEntry(1, 5)})
	require.NoError(t, err)
	_, err = s.Drafts().Save(ctx, &models.MetadataDraft{Entry: newEntry(2, 5)})
	require.NoError(t, err)

	dup := newEntry(3, 5)
	dup.UUID = newEntry(1, 5).UUID
	_, err = s.Metadata().Save(ctx, &models.Metadata{Entry: dup})
	assert.True(t, catalogerrors.IsAlreadyExistsError(err))

	updated, err := s.Drafts().Update(ctx, 2, query.SetOwner(models.KindDraft, 7, intPtr(3)))
	require.NoError(t, err)
	assert.Equal(t, 7, updated.GetEntry().SourceInfo.Owner)

	infos, err := s.Drafts().FindAllSourceInfo(ctx, query.Drafts().HasGroupOwner(3))
	require.NoError(t, err)
	require.Contains(t, infos, 2)
	assert.Equal(t, 7, infos[2].Owner)

	n, err := s.Metadata().DeleteAll(ctx, query.Metadata())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
