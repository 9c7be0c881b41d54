package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/parleychat/parley/store"
)

func (d *DB) CreateUserSession(ctx context.Context, create *store.UserSession) (*store.UserSession, error) {
	stmt := `INSERT INTO user_session (id, user_id, created_ts, expires_ts) VALUES ($1, $2, $3, $4)`
	if _, err := d.db.ExecContext(ctx, stmt, create.ID, create.UserID, create.CreatedTs, create.ExpiresTs); err != nil {
		return nil, err
	}
	return create, nil
}

func (d *DB) ListUserSessions(ctx context.Context, find *store.FindUserSession) ([]*store.UserSession, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.ID; v != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UserID; v != nil {
		where, args = append(where, "user_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	query := fmt.Sprintf(
		`SELECT id, user_id, created_ts, expires_ts
		 FROM user_session WHERE %s ORDER BY created_ts DESC`,
		strings.Join(where, " AND "),
	)
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*store.UserSession{}
	for rows.Next() {
		s := &store.UserSession{}
		if err := rows.Scan(&s.ID, &s.UserID, &s.CreatedTs, &s.ExpiresTs); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func (d *DB) DeleteUserSession(ctx context.Context, delete *store.DeleteUserSession) error {
	where, args := []string{}, []any{}
	if v := delete.ID; v != nil {
		args = append(args, *v)
		where = append(where, "id = "+placeholder(len(args)))
	}
	if v := delete.ExpiredBefore; v != nil {
		args = append(args, *v)
		where = append(where, "expires_ts <= "+placeholder(len(args)))
	}
	if len(where) == 0 {
		return errors.New("refusing to delete user sessions without a filter")
	}
	_, err := d.db.ExecContext(ctx, "DELETE FROM user_session WHERE "+strings.Join(where, " AND "), args...)
	return err
}
