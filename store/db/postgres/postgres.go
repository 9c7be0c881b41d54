package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	// Import the PostgreSQL driver.
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/parleychat/parley/internal/profile"
	"github.com/parleychat/parley/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}

	// Open the PostgreSQL connection
	db, err := sql.Open("postgres", profile.DSN)
	if err != nil {
		slog.Error("failed to open database", slog.String("error", err.Error()))
		return nil, errors.Wrapf(err, "failed to open database: %s", profile.DSN)
	}

	var driver store.Driver = &DB{
		db:      db,
		profile: profile,
	}

	// Return the DB struct
	return driver, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS "user" (
			id            SERIAL PRIMARY KEY,
			username      TEXT   NOT NULL UNIQUE,
			email         TEXT   NOT NULL UNIQUE,
			password_hash TEXT   NOT NULL,
			first_name    TEXT   NOT NULL DEFAULT '',
			last_name     TEXT   NOT NULL DEFAULT '',
			created_ts    BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())
		)`,
		`CREATE TABLE IF NOT EXISTS user_session (
			id         TEXT    NOT NULL PRIMARY KEY,
			user_id    INTEGER NOT NULL,
			created_ts BIGINT  NOT NULL,
			expires_ts BIGINT  NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_user_session_user ON user_session(user_id)`,
		`CREATE TABLE IF NOT EXISTS chat_turn (
			id         SERIAL PRIMARY KEY,
			owner_id   INTEGER NOT NULL,
			role       TEXT    NOT NULL,
			content    TEXT    NOT NULL,
			created_ts BIGINT  NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_turn_owner_created ON chat_turn(owner_id, created_ts)`,
	}
	for _, s := range stmts {
		if _, err := d.db.ExecContext(ctx, s); err != nil {
			return errors.Wrap(err, "failed to migrate postgres schema")
		}
	}
	return nil
}

func placeholder(n int) string {
	return "$" + fmt.Sprint(n)
}
