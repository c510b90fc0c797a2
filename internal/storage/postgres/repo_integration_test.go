//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"ingest/internal/dataset"
	"ingest/internal/ddl"
	"ingest/internal/storage"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		tcpostgres.WithDatabase("ingest"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err, "start postgres")

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "connection string")
	return dsn
}

func TestRepositoryCopyIntegration(t *testing.T) {
	dsn := startPostgres(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	repo, err := storage.New(ctx, storage.Config{Kind: "postgres", DSN: dsn, Table: "public.ingestin_db"})
	require.NoError(t, err)
	defer repo.Close()

	ds, err := dataset.FromText([]string{"id", "seen", "ok"}, [][]string{
		{"1", "2024-05-01T10:00:00Z", "true"},
		{"2", "", "false"},
	})
	require.NoError(t, err)

	def := ddl.FromDataset("public.ingestin_db", ds.Columns())
	require.NoError(t, storage.EnsureTable(ctx, "postgres", repo, def))

	n, err := repo.CopyFrom(ctx, ds.ColumnNames(), ds.Rows())
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	var count int
	require.NoError(t, repo.(*wrappedRepo).pool.QueryRow(ctx, `SELECT COUNT(*) FROM public.ingestin_db WHERE seen IS NULL`).Scan(&count))
	assert.Equal(t, 1, count)

	_, err = repo.CopyFrom(ctx, []string{"missing"}, [][]any{{1}})
	assert.Error(t, err, "unknown column must fail the batch")
}
