package store

import (
	"context"
)

type User struct {
	ID int32

	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	CreatedTs    int64
}

type FindUser struct {
	ID       *int32
	Username *string
	Email    *string
}

func (s *Store) CreateUser(ctx context.Context, create *User) (*User, error) {
	user, err := s.driver.CreateUser(ctx, create)
	if err != nil {
		return nil, persistenceError("create user", err)
	}
	return user, nil
}

func (s *Store) ListUsers(ctx context.Context, find *FindUser) ([]*User, error) {
	list, err := s.driver.ListUsers(ctx, find)
	if err != nil {
		return nil, persistenceError("list users", err)
	}
	return list, nil
}

// GetUser returns the first user matching find, or nil when there is none.
func (s *Store) GetUser(ctx context.Context, find *FindUser) (*User, error) {
	list, err := s.ListUsers(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}
