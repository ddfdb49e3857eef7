package auth

import (
	"strings"

	"evalportal/internal/platform/apperr"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

var Roles = []Role{RoleAdmin, RoleManager, RoleEmployee}

func ParseRole(value string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(value)))
	if !role.Valid() {
		return "", apperr.Validation("role", "must be one of admin, manager, employee")
	}
	return role, nil
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// Staff reports whether the role may use the management screens.
func (r Role) Staff() bool {
	return r == RoleAdmin || r == RoleManager
}
