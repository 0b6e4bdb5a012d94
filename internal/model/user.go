package model

import (
	"time"

	"library-api/internal/access"
)

type User struct {
	ID           int64       `json:"id"`
	Email        string      `json:"email"`
	DisplayName  string      `json:"display_name"`
	PasswordHash string      `json:"-"`
	Role         access.Role `json:"role"`
	LibraryID    *int64      `json:"library_id,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Identity is resolved per request from the session's owner.
type Identity struct {
	UserID    int64       `json:"user_id"`
	Role      access.Role `json:"role"`
	LibraryID *int64      `json:"library_id,omitempty"`
}

type UserProfile struct {
	ID          int64       `json:"id"`
	Email       string      `json:"email"`
	DisplayName string      `json:"display_name"`
	Role        access.Role `json:"role"`
	LibraryID   *int64      `json:"library_id,omitempty"`
}

type UserList struct {
	Users []UserProfile `json:"users"`
}

func (u User) Profile() UserProfile {
	return UserProfile{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		LibraryID:   u.LibraryID,
	}
}
