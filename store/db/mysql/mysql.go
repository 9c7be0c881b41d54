package mysql

import (
	"context"
	"database/sql"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"

	"github.com/parleychat/parley/internal/profile"
	"github.com/parleychat/parley/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
	config  *mysql.Config
}

func NewDB(profile *profile.Profile) (store.Driver, error) {
	// Open MySQL connection with parameter.
	// multiStatements=true is required for migration.
	// See more in: https://github.com/go-sql-driver/mysql#multistatements
	config, err := mysql.ParseDSN(profile.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse DSN: %s", profile.DSN)
	}
	config.MultiStatements = true

	connector, err := mysql.NewConnector(config)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create mysql connector")
	}

	driver := DB{
		db:      sql.OpenDB(connector),
		profile: profile,
		config:  config,
	}
	return &driver, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Migrate(ctx context.Context) error {
	stmts := []string{
		"CREATE TABLE IF NOT EXISTS `user` (" +
			"`id` INT NOT NULL AUTO_INCREMENT PRIMARY KEY," +
			"`username` VARCHAR(256) NOT NULL UNIQUE," +
			"`email` VARCHAR(256) NOT NULL UNIQUE," +
			"`password_hash` VARCHAR(256) NOT NULL," +
			"`first_name` VARCHAR(256) NOT NULL DEFAULT ''," +
			"`last_name` VARCHAR(256) NOT NULL DEFAULT ''," +
			"`created_ts` TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP" +
			")",
		"CREATE TABLE IF NOT EXISTS `user_session` (" +
			"`id` VARCHAR(64) NOT NULL PRIMARY KEY," +
			"`user_id` INT NOT NULL," +
			"`created_ts` BIGINT NOT NULL," +
			"`expires_ts` BIGINT NOT NULL," +
			"INDEX `idx_user_session_user` (`user_id`)" +
			")",
		"CREATE TABLE IF NOT EXISTS `chat_turn` (" +
			"`id` INT NOT NULL AUTO_INCREMENT PRIMARY KEY," +
			"`owner_id` INT NOT NULL," +
			"`role` VARCHAR(256) NOT NULL," +
			"`content` LONGTEXT NOT NULL," +
			"`created_ts` TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP," +
			"INDEX `idx_chat_turn_owner_created` (`owner_id`, `created_ts`)" +
			")",
	}
	for _, stmt := range stmts {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "failed to migrate mysql schema of database %s", d.config.DBName)
		}
	}
	return nil
}
