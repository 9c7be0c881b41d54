package mysql

import (
	"context"

	"github.com/pkg/errors"

	"github.com/parleychat/parley/store"
)

func (d *DB) CreateChatTurn(ctx context.Context, create *store.CreateChatTurn) (*store.ChatTurn, error) {
	stmt := "INSERT INTO `chat_turn` (`owner_id`, `role`, `content`) VALUES (?, ?, ?)"
	result, err := d.db.ExecContext(ctx, stmt, create.OwnerID, string(create.Role), create.Content)
	if err != nil {
		return nil, err
	}
	rawID, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	// Fetch it back to populate the timestamp.
	turn := &store.ChatTurn{}
	if err := d.db.QueryRowContext(ctx,
		"SELECT `id`, `owner_id`, `role`, `content`, UNIX_TIMESTAMP(`created_ts`) FROM `chat_turn` WHERE `id` = ?",
		rawID,
	).Scan(&turn.ID, &turn.OwnerID, &turn.Role, &turn.Content, &turn.CreatedTs); err != nil {
		return nil, errors.Wrapf(err, "failed to read back chat turn %d", rawID)
	}
	return turn, nil
}

func (d *DB) ListChatTurns(ctx context.Context, find *store.FindChatTurn) ([]*store.ChatTurn, error) {
	query := "SELECT `id`, `owner_id`, `role`, `content`, UNIX_TIMESTAMP(`created_ts`) FROM `chat_turn` WHERE `owner_id` = ?"
	if find.Descending {
		query += " ORDER BY `created_ts` DESC, `id` DESC"
	} else {
		query += " ORDER BY `created_ts` ASC, `id` ASC"
	}
	args := []any{find.OwnerID}
	if v := find.Limit; v != nil {
		query += " LIMIT ?"
		args = append(args, *v)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*store.ChatTurn{}
	for rows.Next() {
		turn := &store.ChatTurn{}
		if err := rows.Scan(&turn.ID, &turn.OwnerID, &turn.Role, &turn.Content, &turn.CreatedTs); err != nil {
			return nil, err
		}
		list = append(list, turn)
	}
	return list, rows.Err()
}

func (d *DB) DeleteChatTurns(ctx context.Context, delete *store.DeleteChatTurn) (int64, error) {
	result, err := d.db.ExecContext(ctx, "DELETE FROM `chat_turn` WHERE `owner_id` = ?", delete.OwnerID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
