package model

import "time"

type Session struct {
	Token     string    `json:"-"`
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionIdentity is a session row joined with its owning user.
type SessionIdentity struct {
	Session  Session
	Identity Identity
}

func (s Session) ExpiredAt(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

type LoginResult struct {
	Token     string      `json:"token"`
	TokenType string      `json:"token_type"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      UserProfile `json:"user"`
}
