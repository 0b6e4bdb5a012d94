package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"library-api/internal/model"
	"library-api/pkg/apierror"
)

const sessionTokenBytes = 32

type SessionStore interface {
	Create(ctx context.Context, s model.Session) error
	FindIdentity(ctx context.Context, token string) (model.SessionIdentity, error)
	Extend(ctx context.Context, token string, expiresAt time.Time) error
	Delete(ctx context.Context, token string) error
}

// Resolution is the outcome of a successful session lookup.
type Resolution struct {
	Identity  model.Identity
	ExpiresAt time.Time
	Renewed   bool
}

type SessionService struct {
	store          SessionStore
	ttl            time.Duration
	renewThreshold time.Duration
	now            func() time.Time
}

func NewSessionService(store SessionStore, ttl time.Duration, renewThreshold time.Duration) *SessionService {
	return &SessionService{
		store:          store,
		ttl:            ttl,
		renewThreshold: renewThreshold,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func (s *SessionService) SetClock(now func() time.Time) {
	s.now = now
}

// Resolve looks the token up and applies sliding renewal. A session whose
// remaining lifetime is under the renew threshold is extended to now + ttl
// before Resolve returns; a failed extension is reported as an error rather
// than a stale success.
func (s *SessionService) Resolve(ctx context.Context, token string) (Resolution, error) {
	found, err := s.store.FindIdentity(ctx, token)
	if errors.Is(err, model.ErrSessionNotFound) {
		return Resolution{}, apierror.Unauthorized(model.ErrSessionNotFound, "session invalid or expired")
	}
	if err != nil {
		return Resolution{}, fmt.Errorf("resolve session: %w", err)
	}

	now := s.now()
	if found.Session.ExpiredAt(now) {
		return Resolution{}, apierror.Unauthorized(model.ErrSessionExpired, "session invalid or expired")
	}

	resolution := Resolution{Identity: found.Identity, ExpiresAt: found.Session.ExpiresAt}
	if found.Session.ExpiresAt.Sub(now) >= s.renewThreshold {
		return resolution, nil
	}

	extended := now.Add(s.ttl)
	err = s.store.Extend(ctx, token, extended)
	if errors.Is(err, model.ErrSessionNotFound) {
		return Resolution{}, apierror.Unauthorized(model.ErrSessionNotFound, "session invalid or expired")
	}
	if err != nil {
		return Resolution{}, fmt.Errorf("renew session: %w", err)
	}

	resolution.ExpiresAt = extended
	resolution.Renewed = true
	return resolution, nil
}

func (s *SessionService) Create(ctx context.Context, userID int64) (model.Session, error) {
	token, err := generateToken()
	if err != nil {
		return model.Session{}, err
	}

	now := s.now()
	sess := model.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}

	if err := s.store.Create(ctx, sess); err != nil {
		return model.Session{}, err
	}

	return sess, nil
}

func (s *SessionService) Revoke(ctx context.Context, token string) error {
	return s.store.Delete(ctx, token)
}

func generateToken() (string, error) {
	b := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}
