package mysql

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/parleychat/parley/store"
)

func (d *DB) CreateUserSession(ctx context.Context, create *store.UserSession) (*store.UserSession, error) {
	stmt := "INSERT INTO `user_session` (`id`, `user_id`, `created_ts`, `expires_ts`) VALUES (?, ?, ?, ?)"
	if _, err := d.db.ExecContext(ctx, stmt, create.ID, create.UserID, create.CreatedTs, create.ExpiresTs); err != nil {
		return nil, err
	}
	return create, nil
}

func (d *DB) ListUserSessions(ctx context.Context, find *store.FindUserSession) ([]*store.UserSession, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.ID; v != nil {
		where, args = append(where, "`id` = ?"), append(args, *v)
	}
	if v := find.UserID; v != nil {
		where, args = append(where, "`user_id` = ?"), append(args, *v)
	}

	query := "SELECT `id`, `user_id`, `created_ts`, `expires_ts` FROM `user_session` WHERE " + strings.Join(where, " AND ") + " ORDER BY `created_ts` DESC"
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*store.UserSession{}
	for rows.Next() {
		session := &store.UserSession{}
		if err := rows.Scan(&session.ID, &session.UserID, &session.CreatedTs, &session.ExpiresTs); err != nil {
			return nil, err
		}
		list = append(list, session)
	}
	return list, rows.Err()
}

func (d *DB) DeleteUserSession(ctx context.Context, delete *store.DeleteUserSession) error {
	where, args := []string{}, []any{}
	if v := delete.ID; v != nil {
		where, args = append(where, "`id` = ?"), append(args, *v)
	}
	if v := delete.ExpiredBefore; v != nil {
		where, args = append(where, "`expires_ts` <= ?"), append(args, *v)
	}
	if len(where) == 0 {
		return errors.New("refusing to delete user sessions without a filter")
	}
	_, err := d.db.ExecContext(ctx, "DELETE FROM `user_session` WHERE "+strings.Join(where, " AND "), args...)
	return err
}
