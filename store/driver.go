package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	// Migrate creates every table the store needs if it does not exist yet.
	Migrate(ctx context.Context) error

	// ChatTurn model related methods.
	CreateChatTurn(ctx context.Context, create *CreateChatTurn) (*ChatTurn, error)
	ListChatTurns(ctx context.Context, find *FindChatTurn) ([]*ChatTurn, error)
	DeleteChatTurns(ctx context.Context, delete *DeleteChatTurn) (int64, error)

	// User model related methods.
	CreateUser(ctx context.Context, create *User) (*User, error)
	ListUsers(ctx context.Context, find *FindUser) ([]*User, error)

	// UserSession model related methods.
	CreateUserSession(ctx context.Context, create *UserSession) (*UserSession, error)
	ListUserSessions(ctx context.Context, find *FindUserSession) ([]*UserSession, error)
	DeleteUserSession(ctx context.Context, delete *DeleteUserSession) error
}
