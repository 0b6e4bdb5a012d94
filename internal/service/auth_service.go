package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"library-api/internal/access"
	"library-api/internal/model"
	"library-api/pkg/apierror"
)

const defaultBcryptCost = 12

type userStore interface {
	FindByID(ctx context.Context, id int64) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	Create(ctx context.Context, u model.User) (model.User, error)
	UpdateProfile(ctx context.Context, id int64, displayName *string, passwordHash *string) (model.User, error)
	List(ctx context.Context, libraryID *int64) ([]model.UserProfile, error)
}

type AuthService struct {
	users      userStore
	sessions   *SessionService
	actions    *ActionLogService
	bcryptCost int
	dummyHash  []byte
}

func NewAuthService(users userStore, sessions *SessionService, actions *ActionLogService) (*AuthService, error) {
	s := &AuthService{users: users, sessions: sessions, actions: actions}
	if err := s.SetBcryptCost(defaultBcryptCost); err != nil {
		return nil, err
	}

	return s, nil
}

// SetBcryptCost changes the hashing cost for new passwords.
func (s *AuthService) SetBcryptCost(cost int) error {
	dummy, err := bcrypt.GenerateFromPassword([]byte("library-api-dummy-password"), cost)
	if err != nil {
		return fmt.Errorf("prepare password hasher: %w", err)
	}

	s.bcryptCost = cost
	s.dummyHash = dummy
	return nil
}

func (s *AuthService) Login(ctx context.Context, email string, password string, ip string) (model.LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, model.ErrUserNotFound) {
		// Spend the same time as a real comparison so unknown emails are not observable.
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		s.actions.Log(ctx, model.ActionLogin, nil, model.StatusFailure, "unknown email", ip)
		return model.LoginResult{}, apierror.Unauthorized(model.ErrInvalidCredentials, "invalid credentials")
	}
	if err != nil {
		return model.LoginResult{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.actions.Log(ctx, model.ActionLogin, &user.ID, model.StatusFailure, "wrong password", ip)
		return model.LoginResult{}, apierror.Unauthorized(model.ErrInvalidCredentials, "invalid credentials")
	}

	sess, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return model.LoginResult{}, err
	}

	s.actions.Log(ctx, model.ActionLogin, &user.ID, model.StatusSuccess, "", ip)
	return model.LoginResult{
		Token:     sess.Token,
		TokenType: "Bearer",
		ExpiresAt: sess.ExpiresAt,
		User:      user.Profile(),
	}, nil
}

// Register creates a client account with no library. Elevated roles and
// library membership are assigned by admins out of band.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest, ip string) (model.UserProfile, error) {
	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return model.UserProfile{}, err
	}

	now := time.Now().UTC()
	created, err := s.users.Create(ctx, model.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		DisplayName:  strings.TrimSpace(req.DisplayName),
		PasswordHash: hash,
		Role:         access.RoleClient,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		s.actions.Log(ctx, model.ActionRegister, nil, model.StatusFailure, err.Error(), ip)
		return model.UserProfile{}, err
	}

	s.actions.Log(ctx, model.ActionRegister, &created.ID, model.StatusSuccess, "", ip)
	return created.Profile(), nil
}

func (s *AuthService) Logout(ctx context.Context, token string, userID int64, ip string) error {
	if err := s.sessions.Revoke(ctx, token); err != nil {
		return err
	}

	s.actions.Log(ctx, model.ActionLogout, &userID, model.StatusSuccess, "", ip)
	return nil
}

// HashPassword rejects passwords bcrypt cannot represent as a bad request.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apierror.BadRequest("password must be at most 72 bytes", "password")
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
