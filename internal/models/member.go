package models

import (
	"fmt"

	"github.com/google/uuid"
)

type Role string

const (
	RoleNone    Role = "none"
	RoleMember  Role = "member"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

var roleRank = map[Role]int{
	RoleNone:    0,
	RoleMember:  1,
	RoleManager: 2,
	RoleAdmin:   3,
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := roleRank[r]; !ok {
		return RoleNone, fmt.Errorf("invalid role %q: must be none, member, manager or admin", s)
	}
	return r, nil
}

// AtLeast reports whether r grants everything min grants.
func (r Role) AtLeast(min Role) bool {
	return roleRank[r] >= roleRank[min]
}

type ProjectMember struct {
	ProjectNumber string    `json:"project_number"`
	UserID        uuid.UUID `json:"user_id"`
	Role          Role      `json:"role"`
	Email         string    `json:"email,omitempty"`
	DisplayName   string    `json:"display_name,omitempty"`
}
