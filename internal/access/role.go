package access

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleManager  Role = "MANAGER"
	RoleClient   Role = "CLIENT"
	RoleDelivery Role = "DELIVERY"
)

var roles = []Role{RoleAdmin, RoleManager, RoleClient, RoleDelivery}

// Roles returns every known role in table order.
func Roles() []Role {
	out := make([]Role, len(roles))
	copy(out, roles)
	return out
}

// ParseRole accepts a role literal in any case and rejects anything outside the enumeration.
func ParseRole(raw string) (Role, error) {
	candidate := Role(strings.ToUpper(strings.TrimSpace(raw)))
	for _, role := range roles {
		if role == candidate {
			return role, nil
		}
	}

	return "", fmt.Errorf("unknown role %q", raw)
}

func (r Role) String() string {
	return string(r)
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}
