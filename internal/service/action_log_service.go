package service

import (
	"context"
	"log/slog"
	"time"

	"library-api/internal/model"
)

type actionLogStore interface {
	Log(ctx context.Context, entry model.ActionLog) error
	ListForUser(ctx context.Context, userID int64, limit int) ([]model.ActionLog, error)
}

// ActionLogService records user actions. Write failures are logged and
// never fail the action itself.
type ActionLogService struct {
	store actionLogStore
}

func NewActionLogService(store actionLogStore) *ActionLogService {
	return &ActionLogService{store: store}
}

func (s *ActionLogService) Log(ctx context.Context, action string, userID *int64, status string, detail string, ip string) {
	if s == nil || s.store == nil {
		return
	}

	entry := model.ActionLog{
		Action:     action,
		UserID:     userID,
		Status:     status,
		Detail:     detail,
		IP:         ip,
		OccurredAt: time.Now().UTC(),
	}

	if err := s.store.Log(ctx, entry); err != nil {
		slog.Warn("action log write failed", "action", action, "status", status, "error", err)
	}
}

func (s *ActionLogService) ListForUser(ctx context.Context, userID int64, limit int) ([]model.ActionLog, error) {
	return s.store.ListForUser(ctx, userID, limit)
}
