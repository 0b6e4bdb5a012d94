//go:build integration

package integration

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-api/internal/model"
	"library-api/internal/repository"
	"library-api/internal/service"
)

func TestSessionRenewalAgainstPostgres(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedUser(t, "reader@example.com", "CLIENT", nil)
	token := env.login(t, "reader@example.com")

	_, err := env.db.Pool.Exec(context.Background(),
		`UPDATE sessions SET expires_at = now() + interval '12 hours' WHERE token = $1`, token)
	require.NoError(t, err)

	resp := env.do(t, http.MethodGet, "/api/users/me", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), env.expiry(t, token), time.Minute)

	_, err = env.db.Pool.Exec(context.Background(),
		`UPDATE sessions SET expires_at = now() - interval '1 minute' WHERE token = $1`, token)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/users/me", token).StatusCode)
}

func TestSessionExtendNeverShortens(t *testing.T) {
	env := newTestEnv(t, nil)
	user := env.seedUser(t, "reader@example.com", "CLIENT", nil)
	ctx := context.Background()

	later := time.Now().Add(40 * 24 * time.Hour).UTC().Truncate(time.Second)
	require.NoError(t, env.sessions.Create(ctx, model.Session{Token: "tok", UserID: user.ID, ExpiresAt: later, CreatedAt: time.Now().UTC()}))

	require.NoError(t, env.sessions.Extend(ctx, "tok", time.Now().Add(30*24*time.Hour)))
	assert.True(t, env.expiry(t, "tok").Equal(later))

	assert.ErrorIs(t, env.sessions.Extend(ctx, "missing", later), model.ErrSessionNotFound)

	found, err := env.sessions.FindIdentity(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.Identity.UserID)

	require.NoError(t, env.sessions.Delete(ctx, "tok"))
	_, err = env.sessions.FindIdentity(ctx, "tok")
	assert.ErrorIs(t, err, model.ErrSessionNotFound)
}

func TestPermissionsEndToEnd(t *testing.T) {
	env := newTestEnv(t, nil)
	var library int64
	require.NoError(t, env.db.Pool.QueryRow(context.Background(),
		`INSERT INTO libraries (name) VALUES ('Central') RETURNING id`).Scan(&library))

	env.seedUser(t, "admin@example.com", "ADMIN", nil)
	env.seedUser(t, "manager@example.com", "MANAGER", &library)
	client := env.seedUser(t, "client@example.com", "CLIENT", &library)

	admin := env.login(t, "admin@example.com")
	manager := env.login(t, "manager@example.com")
	reader := env.login(t, "client@example.com")

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/users", admin).StatusCode)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/users", manager).StatusCode)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodDelete, "/api/users", manager).StatusCode)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/api/users", reader).StatusCode)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/users/me", reader).StatusCode)

	resp := env.do(t, http.MethodGet, "/api/action-logs?user_id="+strconv.FormatInt(client.ID, 10), admin)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/health", "").StatusCode)

	entries, err := repository.NewActionLogRepository(env.db.Pool).ListForUser(context.Background(), client.ID, 10)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, model.ActionLogin, entries[0].Action)
}

func TestRedisSessionStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())

	var store *repository.RedisSessionStore
	env := newTestEnv(t, func(users *repository.UserRepository) service.SessionStore {
		store = repository.NewRedisSessionStore(client, users)
		return store
	})
	env.seedUser(t, "reader@example.com", "CLIENT", nil)

	token := env.login(t, "reader@example.com")
	resp := env.do(t, http.MethodGet, "/api/users/me", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	ctx := context.Background()
	found, err := store.FindIdentity(ctx, token)
	require.NoError(t, err)

	shorter := time.Now().Add(time.Hour)
	require.NoError(t, store.Extend(ctx, token, shorter))
	again, err := store.FindIdentity(ctx, token)
	require.NoError(t, err)
	assert.True(t, again.Session.ExpiresAt.Equal(found.Session.ExpiresAt))

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/auth/logout", token).StatusCode)
	_, err = store.FindIdentity(ctx, token)
	assert.ErrorIs(t, err, model.ErrSessionNotFound)
}

func TestRedisExtendAfterRevocation(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())

	var store *repository.RedisSessionStore
	env := newTestEnv(t, func(users *repository.UserRepository) service.SessionStore {
		store = repository.NewRedisSessionStore(client, users)
		return store
	})
	env.seedUser(t, "reader@example.com", "CLIENT", nil)
	token := env.login(t, "reader@example.com")

	ctx := context.Background()
	require.NoError(t, store.Delete(ctx, token))

	err := store.Extend(ctx, token, time.Now().Add(30*24*time.Hour))
	assert.ErrorIs(t, err, model.ErrSessionNotFound)
	_, err = store.FindIdentity(ctx, token)
	assert.ErrorIs(t, err, model.ErrSessionNotFound)
}
