package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"library-api/internal/model"
)

type userFinder interface {
	FindByID(ctx context.Context, id int64) (model.User, error)
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

type redisSession struct {
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// RedisSessionStore keeps sessions as expiring keys and joins the owner from
// the user repository on lookup.
type RedisSessionStore struct {
	client *redis.Client
	users  userFinder
	prefix string
}

func NewRedisSessionStore(client *redis.Client, users userFinder) *RedisSessionStore {
	return &RedisSessionStore{
		client: client,
		users:  users,
		prefix: "session:",
	}
}

func (s *RedisSessionStore) key(token string) string {
	return s.prefix + token
}

func (s *RedisSessionStore) Create(ctx context.Context, sess model.Session) error {
	if sess.Token == "" || sess.UserID == 0 {
		return fmt.Errorf("store session: missing token or user id")
	}

	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("store session: expires_at must be in the future")
	}

	data, err := json.Marshal(redisSession{UserID: sess.UserID, ExpiresAt: sess.ExpiresAt, CreatedAt: sess.CreatedAt})
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}

	if err := s.client.Set(ctx, s.key(sess.Token), data, ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) FindIdentity(ctx context.Context, token string) (model.SessionIdentity, error) {
	stored, err := s.get(ctx, s.client, token)
	if err != nil {
		return model.SessionIdentity{}, err
	}

	user, err := s.users.FindByID(ctx, stored.UserID)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.SessionIdentity{}, model.ErrSessionNotFound
	}
	if err != nil {
		return model.SessionIdentity{}, fmt.Errorf("find session owner: %w", err)
	}

	return model.SessionIdentity{
		Session: model.Session{
			Token:     token,
			UserID:    stored.UserID,
			ExpiresAt: stored.ExpiresAt,
			CreatedAt: stored.CreatedAt,
		},
		Identity: model.Identity{
			UserID:    user.ID,
			Role:      user.Role,
			LibraryID: user.LibraryID,
		},
	}, nil
}

// Extend rewrites the key with the later expiry inside an optimistic
// transaction. Losing the race to another renewal is not an error since the
// winner already extended the session, but losing it to a logout is.
func (s *RedisSessionStore) Extend(ctx context.Context, token string, expiresAt time.Time) error {
	key := s.key(token)
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		stored, err := s.get(ctx, tx, token)
		if err != nil {
			return err
		}
		if !expiresAt.After(stored.ExpiresAt) {
			return nil
		}

		stored.ExpiresAt = expiresAt
		data, err := json.Marshal(stored)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, time.Until(expiresAt))
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		if _, err := s.get(ctx, s.client, token); err != nil {
			return err
		}
		return nil
	}
	if errors.Is(err, model.ErrSessionNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("extend session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, s.key(token)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) get(ctx context.Context, cmd stringGetter, token string) (redisSession, error) {
	raw, err := cmd.Get(ctx, s.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return redisSession{}, model.ErrSessionNotFound
	}
	if err != nil {
		return redisSession{}, fmt.Errorf("find session: %w", err)
	}

	var stored redisSession
	if err := json.Unmarshal(raw, &stored); err != nil {
		return redisSession{}, fmt.Errorf("decode session: %w", err)
	}
	return stored, nil
}
