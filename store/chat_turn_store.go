package store

import (
	"context"

	"github.com/pkg/errors"
)

// CreateChatTurn appends a turn to the owner's log.
func (s *Store) CreateChatTurn(ctx context.Context, create *CreateChatTurn) (*ChatTurn, error) {
	turn, err := s.driver.CreateChatTurn(ctx, create)
	if err != nil {
		return nil, persistenceError("create chat turn", err)
	}
	return turn, nil
}

// ListChatTurns returns every turn of the owner, oldest first.
func (s *Store) ListChatTurns(ctx context.Context, ownerID int32) ([]*ChatTurn, error) {
	list, err := s.driver.ListChatTurns(ctx, &FindChatTurn{OwnerID: ownerID})
	if err != nil {
		return nil, persistenceError("list chat turns", err)
	}
	return list, nil
}

// ListRecentChatTurns returns at most limit turns of the owner, newest first.
func (s *Store) ListRecentChatTurns(ctx context.Context, ownerID int32, limit int) ([]*ChatTurn, error) {
	if limit <= 0 {
		return nil, errors.Errorf("limit must be positive, got %d", limit)
	}
	list, err := s.driver.ListChatTurns(ctx, &FindChatTurn{
		OwnerID:    ownerID,
		Limit:      &limit,
		Descending: true,
	})
	if err != nil {
		return nil, persistenceError("list recent chat turns", err)
	}
	return list, nil
}

// DeleteChatTurns removes every turn of the owner and reports how many were removed.
func (s *Store) DeleteChatTurns(ctx context.Context, ownerID int32) (int64, error) {
	count, err := s.driver.DeleteChatTurns(ctx, &DeleteChatTurn{OwnerID: ownerID})
	if err != nil {
		return 0, persistenceError("delete chat turns", err)
	}
	return count, nil
}
