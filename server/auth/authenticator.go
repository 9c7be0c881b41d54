package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"

	"github.com/parleychat/parley/store"
)

var (
	// ErrUnauthenticated means the request carries no valid access token.
	ErrUnauthenticated = errors.New("authentication credentials were not provided or are invalid")
	// ErrInvalidCredentials means the username and password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Authenticator resolves the owner of a request from its access token.
type Authenticator struct {
	store  *store.Store
	secret string
	now    func() time.Time
}

func NewAuthenticator(store *store.Store, secret string) *Authenticator {
	return &Authenticator{
		store:  store,
		secret: secret,
		now:    time.Now,
	}
}

// Login checks username and password and returns the matching user.
func (a *Authenticator) Login(ctx context.Context, username, password string) (*store.User, error) {
	user, err := a.store.GetUser(ctx, &store.FindUser{Username: &username})
	if err != nil {
		return nil, err
	}
	if user == nil || !comparePassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// IssueSession stores a new session for user and returns its access token.
func (a *Authenticator) IssueSession(ctx context.Context, user *store.User) (string, time.Time, error) {
	now := a.now()
	if err := a.store.DeleteExpiredUserSessions(ctx, now.Unix()); err != nil {
		slog.Warn("failed to prune expired sessions", slog.String("error", err.Error()))
	}
	expiresAt := now.Add(AccessTokenDuration)
	session, err := a.store.CreateUserSession(ctx, &store.UserSession{
		ID:        shortuuid.New(),
		UserID:    user.ID,
		CreatedTs: now.Unix(),
		ExpiresTs: expiresAt.Unix(),
	})
	if err != nil {
		return "", time.Time{}, err
	}

	token, err := GenerateAccessToken(user.ID, session.ID, now, expiresAt, []byte(a.secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// RevokeSession deletes the session behind token. Invalid tokens are ignored.
func (a *Authenticator) RevokeSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	_, sessionID, err := ParseAccessToken(token, []byte(a.secret))
	if err != nil {
		return nil
	}
	return a.store.DeleteUserSession(ctx, sessionID)
}

// Authenticate returns the user owning token. The token must be correctly
// signed and its session must still exist and be unexpired.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*store.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	userID, sessionID, err := ParseAccessToken(token, []byte(a.secret))
	if err != nil {
		return nil, ErrUnauthenticated
	}

	session, err := a.store.GetUserSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.UserID != userID {
		return nil, ErrUnauthenticated
	}
	if session.ExpiresTs <= a.now().Unix() {
		if err := a.store.DeleteUserSession(ctx, session.ID); err != nil {
			slog.Warn("failed to delete expired session", slog.String("error", err.Error()))
		}
		return nil, ErrUnauthenticated
	}

	user, err := a.store.GetUser(ctx, &store.FindUser{ID: &userID})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

// AuthenticateToUser authenticates from the raw Authorization and Cookie headers.
func (a *Authenticator) AuthenticateToUser(ctx context.Context, authHeader, cookieHeader string) (*store.User, error) {
	return a.Authenticate(ctx, ExtractToken(authHeader, cookieHeader))
}

// ExtractToken prefers a bearer token and falls back to the access token cookie.
func ExtractToken(authHeader, cookieHeader string) string {
	if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	if cookieHeader == "" {
		return ""
	}
	cookies, err := http.ParseCookie(cookieHeader)
	if err != nil {
		return ""
	}
	for _, cookie := range cookies {
		if cookie.Name == AccessTokenCookieName {
			return cookie.Value
		}
	}
	return ""
}
