package service

import (
	"context"
	"strings"

	"library-api/internal/access"
	"library-api/internal/model"
)

type passwordHasher interface {
	HashPassword(password string) (string, error)
}

type UserService struct {
	users   userStore
	hasher  passwordHasher
	actions *ActionLogService
}

func NewUserService(users userStore, hasher passwordHasher, actions *ActionLogService) *UserService {
	return &UserService{users: users, hasher: hasher, actions: actions}
}

func (s *UserService) Get(ctx context.Context, id int64) (model.UserProfile, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return model.UserProfile{}, err
	}
	return user.Profile(), nil
}

func (s *UserService) UpdateProfile(ctx context.Context, id int64, req model.UpdateProfileRequest, ip string) (model.UserProfile, error) {
	var displayName *string
	if req.DisplayName != nil {
		trimmed := strings.TrimSpace(*req.DisplayName)
		displayName = &trimmed
	}

	var passwordHash *string
	if req.Password != nil {
		hash, err := s.hasher.HashPassword(*req.Password)
		if err != nil {
			return model.UserProfile{}, err
		}
		passwordHash = &hash
	}

	user, err := s.users.UpdateProfile(ctx, id, displayName, passwordHash)
	if err != nil {
		return model.UserProfile{}, err
	}

	detail := ""
	if passwordHash != nil {
		detail = "password changed"
	}
	s.actions.Log(ctx, model.ActionProfile, &id, model.StatusSuccess, detail, ip)
	return user.Profile(), nil
}

// List returns every user for admins; managers only see their own library.
func (s *UserService) List(ctx context.Context, caller model.Identity) ([]model.UserProfile, error) {
	if caller.Role == access.RoleAdmin {
		return s.users.List(ctx, nil)
	}
	if caller.LibraryID == nil {
		return []model.UserProfile{}, nil
	}
	return s.users.List(ctx, caller.LibraryID)
}
