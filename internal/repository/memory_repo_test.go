package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-api/internal/access"
	"library-api/internal/model"
)

func TestMemorySessionStore(t *testing.T) {
	ctx := context.Background()
	users := NewMemoryUserStore()
	library := int64(2)
	owner, err := users.Create(ctx, model.User{Email: "m@example.com", Role: access.RoleManager, LibraryID: &library})
	require.NoError(t, err)

	store := NewMemorySessionStore(users)
	expires := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Create(ctx, model.Session{Token: "tok", UserID: owner.ID, ExpiresAt: expires}))

	found, err := store.FindIdentity(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, access.RoleManager, found.Identity.Role)
	require.NotNil(t, found.Identity.LibraryID)
	assert.Equal(t, library, *found.Identity.LibraryID)

	require.NoError(t, store.Extend(ctx, "tok", expires.Add(-time.Hour)))
	got, _ := store.Expiry("tok")
	assert.Equal(t, expires, got, "extend never shortens")

	require.NoError(t, store.Extend(ctx, "tok", expires.Add(time.Hour)))
	got, _ = store.Expiry("tok")
	assert.Equal(t, expires.Add(time.Hour), got)

	assert.ErrorIs(t, store.Extend(ctx, "missing", expires), model.ErrSessionNotFound)

	require.NoError(t, store.Delete(ctx, "tok"))
	_, err = store.FindIdentity(ctx, "tok")
	assert.ErrorIs(t, err, model.ErrSessionNotFound)
}

func TestMemoryUserStoreRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	users := NewMemoryUserStore()

	_, err := users.Create(ctx, model.User{Email: "a@example.com", Role: access.RoleClient})
	require.NoError(t, err)
	_, err = users.Create(ctx, model.User{Email: "A@example.com", Role: access.RoleClient})
	assert.ErrorIs(t, err, model.ErrUserAlreadyExists)

	_, err = users.FindByID(ctx, 9)
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}
