//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"library-api/internal/config"
	"library-api/internal/database"
	"library-api/internal/handler"
	"library-api/internal/middleware"
	"library-api/internal/model"
	"library-api/internal/repository"
	"library-api/internal/router"
	"library-api/internal/service"
)

type testEnv struct {
	db       *database.DB
	users    *repository.UserRepository
	sessions *repository.SessionRepository
	auth     *service.AuthService
	server   *httptest.Server
}

// newTestDB connects to TEST_DATABASE_URL and starts from empty tables.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.New(ctx, url, 4, 0)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, db.EnsureSchema(ctx))
	_, err = db.Pool.Exec(ctx, `TRUNCATE action_logs, sessions, users, libraries RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	return db
}

// newTestEnv serves the full router over Postgres. sessionStore picks the
// session backend; nil keeps sessions in Postgres.
func newTestEnv(t *testing.T, sessionStore func(users *repository.UserRepository) service.SessionStore) *testEnv {
	t.Helper()

	db := newTestDB(t)
	users := repository.NewUserRepository(db.Pool)
	sessions := repository.NewSessionRepository(db.Pool)
	var store service.SessionStore = sessions
	if sessionStore != nil {
		store = sessionStore(users)
	}

	actions := service.NewActionLogService(repository.NewActionLogRepository(db.Pool))
	sessionService := service.NewSessionService(store, 30*24*time.Hour, 24*time.Hour)
	auth, err := service.NewAuthService(users, sessionService, actions)
	require.NoError(t, err)
	require.NoError(t, auth.SetBcryptCost(bcrypt.MinCost))

	cfg := &config.Config{
		RequestTimeout:    10 * time.Second,
		RateLimitRPM:      -1,
		AuthRateLimitRPM:  1000,
		SessionCookieName: "session",
		PublicRoutes:      []string{"/api/auth/login", "/api/auth/register", "/api/auth/oauth/"},
	}
	gate := middleware.NewAuthMiddleware(sessionService, middleware.AuthOptions{
		PublicRoutes: cfg.PublicRoutes,
		CookieName:   cfg.SessionCookieName,
	})

	server := httptest.NewServer(router.New(cfg, gate, router.Handlers{
		Auth:      handler.NewAuthHandler(auth, cfg.SessionCookieName, false),
		OAuth:     handler.NewOAuthHandler(service.NewOAuthService(nil, "secret", time.Minute)),
		User:      handler.NewUserHandler(service.NewUserService(users, auth, actions)),
		ActionLog: handler.NewActionLogHandler(actions),
		Health:    handler.NewHealthHandler(map[string]handler.HealthCheck{"postgres": db.Health}),
		Docs:      handler.NewDocsHandler(""),
	}))
	t.Cleanup(server.Close)

	return &testEnv{db: db, users: users, sessions: sessions, auth: auth, server: server}
}

// seedUser inserts a user directly so tests can pick any role.
func (e *testEnv) seedUser(t *testing.T, email string, role string, libraryID *int64) model.User {
	t.Helper()

	hash, err := e.auth.HashPassword("long enough")
	require.NoError(t, err)

	var u model.User
	err = e.db.Pool.QueryRow(context.Background(),
		`INSERT INTO users (email, password_hash, role, library_id) VALUES ($1, $2, $3, $4) RETURNING id`,
		email, hash, role, libraryID).Scan(&u.ID)
	require.NoError(t, err)
	u.Email = email
	return u
}

func (e *testEnv) login(t *testing.T, email string) string {
	t.Helper()

	body, err := json.Marshal(map[string]string{"email": email, "password": "long enough"})
	require.NoError(t, err)

	resp, err := http.Post(e.server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Data model.LoginResult `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return payload.Data.Token
}

func (e *testEnv) do(t *testing.T, method string, path string, token string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, e.server.URL+path, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (e *testEnv) expiry(t *testing.T, token string) time.Time {
	t.Helper()

	var expiresAt time.Time
	err := e.db.Pool.QueryRow(context.Background(), `SELECT expires_at FROM sessions WHERE token = $1`, token).Scan(&expiresAt)
	require.NoError(t, err)
	return expiresAt
}
