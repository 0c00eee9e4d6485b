package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleStudent, RoleInstructor:
		return Role(s), true
	}
	return "", false
}

type User struct {
	ID        uuid.UUID
	Username  string
	Role      Role
	Password  string // bcrypt hash
	CreatedAt time.Time
	UpdatedAt time.Time
}
