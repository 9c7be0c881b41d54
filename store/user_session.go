package store

import (
	"context"
)

// UserSession is the server-held state behind an access token.
type UserSession struct {
	ID        string
	UserID    int32
	CreatedTs int64
	ExpiresTs int64
}

type FindUserSession struct {
	ID     *string
	UserID *int32
}

type DeleteUserSession struct {
	ID *string
	// ExpiredBefore deletes every session whose expires_ts is at or before it.
	ExpiredBefore *int64
}

func (s *Store) CreateUserSession(ctx context.Context, create *UserSession) (*UserSession, error) {
	session, err := s.driver.CreateUserSession(ctx, create)
	if err != nil {
		return nil, persistenceError("create user session", err)
	}
	return session, nil
}

func (s *Store) ListUserSessions(ctx context.Context, find *FindUserSession) ([]*UserSession, error) {
	list, err := s.driver.ListUserSessions(ctx, find)
	if err != nil {
		return nil, persistenceError("list user sessions", err)
	}
	return list, nil
}

func (s *Store) GetUserSession(ctx context.Context, id string) (*UserSession, error) {
	list, err := s.ListUserSessions(ctx, &FindUserSession{ID: &id})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) DeleteUserSession(ctx context.Context, id string) error {
	if err := s.driver.DeleteUserSession(ctx, &DeleteUserSession{ID: &id}); err != nil {
		return persistenceError("delete user session", err)
	}
	return nil
}

// DeleteExpiredUserSessions removes every session that expired at or before ts.
func (s *Store) DeleteExpiredUserSessions(ctx context.Context, ts int64) error {
	if err := s.driver.DeleteUserSession(ctx, &DeleteUserSession{ExpiredBefore: &ts}); err != nil {
		return persistenceError("delete expired user sessions", err)
	}
	return nil
}
