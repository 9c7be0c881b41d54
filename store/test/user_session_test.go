package test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/parleychat/parley/store"
)

func TestUserSessionStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	now := time.Now()
	session, err := ts.CreateUserSession(ctx, &store.UserSession{
		ID:        "session-1",
		UserID:    42,
		CreatedTs: now.Unix(),
		ExpiresTs: now.Add(time.Hour).Unix(),
	})
	require.NoError(t, err)

	found, err := ts.GetUserSession(ctx, "session-1")
	require.NoError(t, err)
	require.Equal(t, session, found)

	userID := int32(42)
	list, err := ts.ListUserSessions(ctx, &store.FindUserSession{UserID: &userID})
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, ts.DeleteUserSession(ctx, "session-1"))
	found, err = ts.GetUserSession(ctx, "session-1")
	require.NoError(t, err)
	require.Nil(t, found)

	// Deleting a missing session is not an error.
	require.NoError(t, ts.DeleteUserSession(ctx, "session-1"))
}

func TestDeleteExpiredUserSessions(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	now := time.Now().Unix()
	for id, expiresTs := range map[string]int64{"expired": now - 10, "boundary": now, "live": now + 3600} {
		_, err := ts.CreateUserSession(ctx, &store.UserSession{ID: id, UserID: 1, CreatedTs: now - 100, ExpiresTs: expiresTs})
		require.NoError(t, err)
	}

	require.NoError(t, ts.DeleteExpiredUserSessions(ctx, now))

	list, err := ts.ListUserSessions(ctx, &store.FindUserSession{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "live", list[0].ID)
}
