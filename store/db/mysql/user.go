package mysql

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/parleychat/parley/store"
)

func (d *DB) CreateUser(ctx context.Context, create *store.User) (*store.User, error) {
	stmt := "INSERT INTO `user` (`username`, `email`, `password_hash`, `first_name`, `last_name`) VALUES (?, ?, ?, ?, ?)"
	result, err := d.db.ExecContext(ctx, stmt, create.Username, create.Email, create.PasswordHash, create.FirstName, create.LastName)
	if err != nil {
		return nil, err
	}
	rawID, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	id := int32(rawID)
	list, err := d.ListUsers(ctx, &store.FindUser{ID: &id})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, errors.Errorf("user %d not found after insert", id)
	}
	return list[0], nil
}

func (d *DB) ListUsers(ctx context.Context, find *store.FindUser) ([]*store.User, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.ID; v != nil {
		where, args = append(where, "`id` = ?"), append(args, *v)
	}
	if v := find.Username; v != nil {
		where, args = append(where, "`username` = ?"), append(args, *v)
	}
	if v := find.Email; v != nil {
		where, args = append(where, "`email` = ?"), append(args, *v)
	}

	query := "SELECT `id`, `username`, `email`, `password_hash`, `first_name`, `last_name`, UNIX_TIMESTAMP(`created_ts`) FROM `user` WHERE " + strings.Join(where, " AND ") + " ORDER BY `id` ASC"
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*store.User{}
	for rows.Next() {
		user := &store.User{}
		if err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName, &user.CreatedTs); err != nil {
			return nil, err
		}
		list = append(list, user)
	}
	return list, rows.Err()
}
