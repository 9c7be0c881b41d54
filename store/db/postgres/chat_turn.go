package postgres

import (
	"context"

	"github.com/parleychat/parley/store"
)

func (d *DB) CreateChatTurn(ctx context.Context, create *store.CreateChatTurn) (*store.ChatTurn, error) {
	stmt := `INSERT INTO chat_turn (owner_id, role, content)
	         VALUES ($1, $2, $3)
	         RETURNING id, created_ts`
	turn := &store.ChatTurn{
		OwnerID: create.OwnerID,
		Role:    create.Role,
		Content: create.Content,
	}
	if err := d.db.QueryRowContext(ctx, stmt, create.OwnerID, string(create.Role), create.Content).
		Scan(&turn.ID, &turn.CreatedTs); err != nil {
		return nil, err
	}
	return turn, nil
}

func (d *DB) ListChatTurns(ctx context.Context, find *store.FindChatTurn) ([]*store.ChatTurn, error) {
	query := `SELECT id, owner_id, role, content, created_ts
	          FROM chat_turn WHERE owner_id = $1`
	if find.Descending {
		query += ` ORDER BY created_ts DESC, id DESC`
	} else {
		query += ` ORDER BY created_ts ASC, id ASC`
	}
	args := []any{find.OwnerID}
	if v := find.Limit; v != nil {
		args = append(args, *v)
		query += ` LIMIT ` + placeholder(len(args))
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*store.ChatTurn{}
	for rows.Next() {
		t := &store.ChatTurn{}
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Role, &t.Content, &t.CreatedTs); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (d *DB) DeleteChatTurns(ctx context.Context, delete *store.DeleteChatTurn) (int64, error) {
	result, err := d.db.ExecContext(ctx, `DELETE FROM chat_turn WHERE owner_id = $1`, delete.OwnerID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
