//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/streamshard/megaflow/pkg/controlplane/models"
)

// newTestStore starts a disposable PostgreSQL container, runs the audit
// store's embedded migrations against it, and returns a connected
// GORMStore scoped to a single test's lifetime.
func newTestStore(t *testing.T) *GORMStore {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("megaflow_test"),
		postgres.WithUsername("megaflow_test"),
		postgres.WithPassword("megaflow_test"),
		testcontainers.WithWaitStrategyAndDeadline(2*time.Minute,
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := &Config{
		Host:     host,
		Port:     port.Int(),
		Database: "megaflow_test",
		User:     "megaflow_test",
		Password: "megaflow_test",
		SSLMode:  "disable",
	}

	db, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func TestGORMStore_MigratesAndAudits(t *testing.T) {
	db := newTestStore(t)

	seq, err := db.LastSequence(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(0), seq)

	rec := &models.AuditRecord{
		Sequence:         1,
		ReceivedAt:       time.Now().UTC(),
		InstKind:         "map",
		MapDigest:        "map(len=256)",
		IdempotencyToken: "tok-1",
	}
	require.NoError(t, db.InsertAuditRecord(context.Background(), rec))

	seq, err = db.LastSequence(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(1), seq)

	found, err := db.FindByIdempotencyToken(context.Background(), "tok-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, uint64(1), found.Sequence)

	err = db.InsertAuditRecord(context.Background(), rec)
	require.ErrorIs(t, err, ErrSequenceAlreadyAdmitted)

	recs, err := db.ListSince(context.Background(), 0, 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
}
