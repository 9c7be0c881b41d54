package sqlite

import (
	"context"
	"strings"

	"github.com/parleychat/parley/store"
)

func (d *DB) CreateUser(ctx context.Context, create *store.User) (*store.User, error) {
	fields := []string{"`username`", "`email`", "`password_hash`", "`first_name`", "`last_name`"}
	args := []any{create.Username, create.Email, create.PasswordHash, create.FirstName, create.LastName}
	stmt := "INSERT INTO `user` (" + strings.Join(fields, ", ") + ") VALUES (" + placeholders(len(args)) + ") RETURNING `id`, `created_ts`"
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID, &create.CreatedTs); err != nil {
		return nil, err
	}
	return create, nil
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

	query := "SELECT `id`, `username`, `email`, `password_hash`, `first_name`, `last_name`, `created_ts` FROM `user` WHERE " + strings.Join(where, " AND ") + " ORDER BY `id` ASC"
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

func placeholders(n int) string {
	return strings.Repeat("?, ", n-1) + "?"
}
