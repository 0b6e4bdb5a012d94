package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"library-api/internal/access"
	"library-api/internal/model"
	"library-api/pkg/apierror"
)

type mockSessionStore struct {
	mock.Mock
}

func (m *mockSessionStore) Create(ctx context.Context, s model.Session) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *mockSessionStore) FindIdentity(ctx context.Context, token string) (model.SessionIdentity, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(model.SessionIdentity), args.Error(1)
}

func (m *mockSessionStore) Extend(ctx context.Context, token string, expiresAt time.Time) error {
	args := m.Called(ctx, token, expiresAt)
	return args.Error(0)
}

func (m *mockSessionStore) Delete(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

var fixedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func newTestSessionService(store SessionStore) *SessionService {
	svc := NewSessionService(store, 30*24*time.Hour, 24*time.Hour)
	svc.SetClock(func() time.Time { return fixedNow })
	return svc
}

func sessionFor(userID int64, role access.Role, expiresAt time.Time) model.SessionIdentity {
	return model.SessionIdentity{
		Session:  model.Session{Token: "tok", UserID: userID, ExpiresAt: expiresAt},
		Identity: model.Identity{UserID: userID, Role: role},
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	t.Run("fresh session is returned without renewal", func(t *testing.T) {
		store := &mockSessionStore{}
		store.On("FindIdentity", mock.Anything, "tok").Return(sessionFor(3, access.RoleClient, fixedNow.Add(10*24*time.Hour)), nil)

		got, err := newTestSessionService(store).Resolve(context.Background(), "tok")
		require.NoError(t, err)
		assert.False(t, got.Renewed)
		assert.Equal(t, int64(3), got.Identity.UserID)
		assert.Equal(t, access.RoleClient, got.Identity.Role)
		store.AssertNotCalled(t, "Extend", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("session with twelve hours left is extended to thirty days", func(t *testing.T) {
		store := &mockSessionStore{}
		store.On("FindIdentity", mock.Anything, "tok").Return(sessionFor(3, access.RoleClient, fixedNow.Add(12*time.Hour)), nil)
		store.On("Extend", mock.Anything, "tok", fixedNow.Add(30*24*time.Hour)).Return(nil)

		got, err := newTestSessionService(store).Resolve(context.Background(), "tok")
		require.NoError(t, err)
		assert.True(t, got.Renewed)
		assert.Equal(t, fixedNow.Add(30*24*time.Hour), got.ExpiresAt)
		store.AssertExpectations(t)
	})

	t.Run("expired session is rejected", func(t *testing.T) {
		store := &mockSessionStore{}
		store.On("FindIdentity", mock.Anything, "tok").Return(sessionFor(3, access.RoleAdmin, fixedNow.Add(-time.Second)), nil)

		_, err := newTestSessionService(store).Resolve(context.Background(), "tok")
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrSessionExpired)

		var apiErr *apierror.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusUnauthorized, apiErr.HTTPStatus)
		store.AssertNotCalled(t, "Extend", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("session expiring exactly now is rejected", func(t *testing.T) {
		store := &mockSessionStore{}
		store.On("FindIdentity", mock.Anything, "tok").Return(sessionFor(3, access.RoleClient, fixedNow), nil)

		_, err := newTestSessionService(store).Resolve(context.Background(), "tok")
		assert.ErrorIs(t, err, model.ErrSessionExpired)
	})

	t.Run("unknown token is unauthorized", func(t *testing.T) {
		store := &mockSessionStore{}
		store.On("FindIdentity", mock.Anything, "nope").Return(model.SessionIdentity{}, model.ErrSessionNotFound)

		_, err := newTestSessionService(store).Resolve(context.Background(), "nope")
		assert.ErrorIs(t, err, model.ErrSessionNotFound)
	})

	t.Run("lookup failure is not an auth error", func(t *testing.T) {
		store := &mockSessionStore{}
		store.On("FindIdentity", mock.Anything, "tok").Return(model.SessionIdentity{}, errors.New("connection reset"))

		_, err := newTestSessionService(store).Resolve(context.Background(), "tok")
		require.Error(t, err)

		var apiErr *apierror.APIError
		assert.False(t, errors.As(err, &apiErr))
	})

	t.Run("failed renewal write fails the resolution", func(t *testing.T) {
		store := &mockSessionStore{}
		store.On("FindIdentity", mock.Anything, "tok").Return(sessionFor(3, access.RoleClient, fixedNow.Add(time.Hour)), nil)
		store.On("Extend", mock.Anything, "tok", mock.Anything).Return(errors.New("deadlock detected"))

		_, err := newTestSessionService(store).Resolve(context.Background(), "tok")
		require.Error(t, err)
		assert.ErrorContains(t, err, "renew session")
	})

	t.Run("session deleted during renewal is unauthorized", func(t *testing.T) {
		store := &mockSessionStore{}
		store.On("FindIdentity", mock.Anything, "tok").Return(sessionFor(3, access.RoleClient, fixedNow.Add(time.Hour)), nil)
		store.On("Extend", mock.Anything, "tok", mock.Anything).Return(model.ErrSessionNotFound)

		_, err := newTestSessionService(store).Resolve(context.Background(), "tok")
		assert.ErrorIs(t, err, model.ErrSessionNotFound)
	})
}

func TestCreateSession(t *testing.T) {
	t.Parallel()

	store := &mockSessionStore{}
	store.On("Create", mock.Anything, mock.AnythingOfType("model.Session")).Return(nil)

	sess, err := newTestSessionService(store).Create(context.Background(), 11)
	require.NoError(t, err)

	assert.Equal(t, int64(11), sess.UserID)
	assert.Equal(t, fixedNow.Add(30*24*time.Hour), sess.ExpiresAt)
	assert.Len(t, sess.Token, 43)

	other, err := newTestSessionService(store).Create(context.Background(), 11)
	require.NoError(t, err)
	assert.NotEqual(t, sess.Token, other.Token)
}
