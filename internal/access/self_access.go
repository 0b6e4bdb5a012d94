package access

import (
	"strconv"
	"strings"
)

const (
	UserScopedPrefix = "/api/users/"
	SelfSegment      = "me"
)

// SelfAccess is the outcome of checking a user-scoped path.
type SelfAccess struct {
	Scoped  bool // path is under UserScopedPrefix
	Allowed bool
	IsMe    bool // trailing segment is "me"
}

// CheckSelfAccess enforces that /api/users/<segment> targets the caller
// unless the caller is an admin. The trailing segment is compared.
func CheckSelfAccess(path string, callerID int64, role Role) SelfAccess {
	if !strings.HasPrefix(path, UserScopedPrefix) {
		return SelfAccess{Allowed: true}
	}

	trimmed := strings.TrimRight(path, "/")
	segment := trimmed[strings.LastIndex(trimmed, "/")+1:]

	result := SelfAccess{Scoped: true}
	switch {
	case segment == SelfSegment:
		result.IsMe = true
		result.Allowed = true
	case segment == strconv.FormatInt(callerID, 10):
		result.Allowed = true
	case role == RoleAdmin:
		result.Allowed = true
	}

	return result
}
