package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"library-api/internal/model"
)

type ActionLogRepository struct {
	pool *pgxpool.Pool
}

func NewActionLogRepository(pool *pgxpool.Pool) *ActionLogRepository {
	return &ActionLogRepository{pool: pool}
}

func (r *ActionLogRepository) Log(ctx context.Context, entry model.ActionLog) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO action_logs (action, user_id, status, detail, ip, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.Action, entry.UserID, entry.Status, entry.Detail, entry.IP, entry.OccurredAt)
	if err != nil {
		return fmt.Errorf("log action: %w", err)
	}
	return nil
}

func (r *ActionLogRepository) ListForUser(ctx context.Context, userID int64, limit int) ([]model.ActionLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx,
		`SELECT action, user_id, status, detail, ip, occurred_at
		 FROM action_logs
		 WHERE user_id = $1
		 ORDER BY occurred_at DESC
		 LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list action logs: %w", err)
	}
	defer rows.Close()

	entries := make([]model.ActionLog, 0)
	for rows.Next() {
		var e model.ActionLog
		if err := rows.Scan(&e.Action, &e.UserID, &e.Status, &e.Detail, &e.IP, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan action log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
