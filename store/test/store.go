package test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/parleychat/parley/internal/profile"
	"github.com/parleychat/parley/store"
	"github.com/parleychat/parley/store/db"
)

// NewTestingStore opens a migrated store for the driver named by the DRIVER
// environment variable. SQLite is used when it is unset.
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	t.Helper()

	profile := getTestingProfile(ctx, t)
	dbDriver, err := db.NewDBDriver(profile)
	require.NoError(t, err, "failed to create db driver")
	require.NoError(t, dbDriver.Migrate(ctx), "failed to migrate db")

	st := store.New(dbDriver, profile)
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

func getTestingProfile(ctx context.Context, t *testing.T) *profile.Profile {
	t.Helper()

	mode := "prod"
	driver := getDriverFromEnv()
	dir := t.TempDir()

	var dsn string
	switch driver {
	case "sqlite":
		dsn = filepath.Join(dir, "parley_"+mode+".db")
	case "mysql":
		dsn = GetMySQLDSN(ctx, t)
	case "postgres":
		dsn = GetPostgresDSN(ctx, t)
	default:
		t.Fatalf("unsupported DRIVER %q", driver)
	}

	return &profile.Profile{
		Mode:   mode,
		Data:   dir,
		DSN:    dsn,
		Driver: driver,
		Secret: "testing-secret",
	}
}

func getDriverFromEnv() string {
	driver := os.Getenv("DRIVER")
	if driver == "" {
		driver = "sqlite"
	}
	return driver
}
