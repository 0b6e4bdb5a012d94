package model

import "time"

const (
	ActionLogin    = "auth.login"
	ActionLogout   = "auth.logout"
	ActionRegister = "auth.register"
	ActionProfile  = "user.profile_update"

	StatusSuccess = "success"
	StatusFailure = "failure"
)

type ActionLog struct {
	Action     string    `json:"action"`
	UserID     *int64    `json:"user_id,omitempty"`
	Status     string    `json:"status"`
	Detail     string    `json:"detail,omitempty"`
	IP         string    `json:"ip,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
