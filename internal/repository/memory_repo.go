package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"library-api/internal/model"
)

// MemoryUserStore is an in-process UserRepository for tests.
type MemoryUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]model.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: map[int64]model.User{}}
}

func (s *MemoryUserStore) FindByID(_ context.Context, id int64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return model.User{}, errUserNotFound()
	}
	return u, nil
}

func (s *MemoryUserStore) FindByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return u, nil
		}
	}
	return model.User{}, errUserNotFound()
}

func (s *MemoryUserStore) Create(_ context.Context, u model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return model.User{}, errUserExists()
		}
	}

	s.nextID++
	u.ID = s.nextID
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
		u.UpdatedAt = u.CreatedAt
	}
	s.users[u.ID] = u
	return u, nil
}

func (s *MemoryUserStore) UpdateProfile(_ context.Context, id int64, displayName *string, passwordHash *string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return model.User{}, errUserNotFound()
	}
	if displayName != nil {
		u.DisplayName = *displayName
	}
	if passwordHash != nil {
		u.PasswordHash = *passwordHash
	}
	u.UpdatedAt = time.Now().UTC()
	s.users[id] = u
	return u, nil
}

// List returns users in id order, optionally restricted to one library.
func (s *MemoryUserStore) List(_ context.Context, libraryID *int64) ([]model.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.UserProfile, 0)
	for id := int64(1); id <= s.nextID; id++ {
		u, ok := s.users[id]
		if !ok {
			continue
		}
		if libraryID != nil && (u.LibraryID == nil || *u.LibraryID != *libraryID) {
			continue
		}
		out = append(out, u.Profile())
	}
	return out, nil
}

// MemorySessionStore keeps sessions in a map and joins owners from users.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]model.Session
	users    userFinder
}

func NewMemorySessionStore(users userFinder) *MemorySessionStore {
	return &MemorySessionStore{sessions: map[string]model.Session{}, users: users}
}

func (s *MemorySessionStore) Create(_ context.Context, sess model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sess.Token] = sess
	return nil
}

func (s *MemorySessionStore) FindIdentity(ctx context.Context, token string) (model.SessionIdentity, error) {
	s.mu.Lock()
	sess, ok := s.sessions[token]
	s.mu.Unlock()
	if !ok {
		return model.SessionIdentity{}, model.ErrSessionNotFound
	}

	owner, err := s.users.FindByID(ctx, sess.UserID)
	if err != nil {
		return model.SessionIdentity{}, model.ErrSessionNotFound
	}

	return model.SessionIdentity{
		Session:  sess,
		Identity: model.Identity{UserID: owner.ID, Role: owner.Role, LibraryID: owner.LibraryID},
	}, nil
}

func (s *MemorySessionStore) Extend(_ context.Context, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return model.ErrSessionNotFound
	}
	if expiresAt.After(sess.ExpiresAt) {
		sess.ExpiresAt = expiresAt
		s.sessions[token] = sess
	}
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)
	return nil
}

// Expiry reports the stored expiry of token.
func (s *MemorySessionStore) Expiry(token string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	return sess.ExpiresAt, ok
}
