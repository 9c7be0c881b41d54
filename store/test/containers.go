package test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

const (
	testDatabaseName = "parley"
	testUser         = "parley"
	testPassword     = "parley"
)

// GetMySQLDSN starts a throwaway MySQL container and returns its DSN.
func GetMySQLDSN(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tcmysql.Run(ctx, "mysql:8.4",
		tcmysql.WithDatabase(testDatabaseName),
		tcmysql.WithUsername(testUser),
		tcmysql.WithPassword(testPassword),
	)
	require.NoError(t, err, "failed to start mysql container")
	t.Cleanup(func() {
		_ = testcontainers.TerminateContainer(container)
	})

	dsn, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	return dsn
}

// GetPostgresDSN starts a throwaway PostgreSQL container and returns its DSN.
func GetPostgresDSN(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase(testDatabaseName),
		tcpostgres.WithUsername(testUser),
		tcpostgres.WithPassword(testPassword),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		_ = testcontainers.TerminateContainer(container)
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}
