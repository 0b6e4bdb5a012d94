package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"library-api/internal/access"
	"library-api/internal/model"
)

// SessionRepository keeps sessions in the sessions table.
type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) Create(ctx context.Context, s model.Session) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO sessions (token, user_id, expires_at, created_at)
		 VALUES ($1, $2, $3, $4)`,
		s.Token, s.UserID, s.ExpiresAt, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// FindIdentity returns the session joined with its owner. Expiry is left to
// the caller so the comparison uses a single clock.
func (r *SessionRepository) FindIdentity(ctx context.Context, token string) (model.SessionIdentity, error) {
	var found model.SessionIdentity
	var role string
	err := r.pool.QueryRow(ctx,
		`SELECT s.token, s.user_id, s.expires_at, s.created_at, u.role, u.library_id
		 FROM sessions s
		 JOIN users u ON u.id = s.user_id
		 WHERE s.token = $1`, token).
		Scan(&found.Session.Token, &found.Session.UserID, &found.Session.ExpiresAt, &found.Session.CreatedAt,
			&role, &found.Identity.LibraryID)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.SessionIdentity{}, model.ErrSessionNotFound
	}
	if err != nil {
		return model.SessionIdentity{}, fmt.Errorf("find session: %w", err)
	}

	parsed, err := access.ParseRole(role)
	if err != nil {
		return model.SessionIdentity{}, fmt.Errorf("find session: %w", err)
	}

	found.Identity.UserID = found.Session.UserID
	found.Identity.Role = parsed
	return found, nil
}

// Extend moves the expiry forward. Concurrent renewals race on a single row
// update and the later expiry always survives.
func (r *SessionRepository) Extend(ctx context.Context, token string, expiresAt time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE sessions SET expires_at = GREATEST(expires_at, $2) WHERE token = $1`,
		token, expiresAt)
	if err != nil {
		return fmt.Errorf("extend session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
