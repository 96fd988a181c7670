package model

import "github.com/google/uuid"

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleFleet Role = "FLEET"
	RoleCore  Role = "CORE"
	RoleQA    Role = "QA"
	RoleUser  Role = "USER"
)

type Principal struct {
	UserID uuid.UUID
	Role   Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func (p Principal) IsFleet() bool {
	return p.Role == RoleFleet
}

// CanManagePayroll reports whether the principal may trigger pipeline runs
// or touch Deel settings. Only the fleet and admin tiers qualify.
func (p Principal) CanManagePayroll() bool {
	return p.Role == RoleAdmin || p.Role == RoleFleet
}
