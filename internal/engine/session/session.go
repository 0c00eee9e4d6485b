package session

import (
	"github.com/google/uuid"

	"coursehub/internal/domain"
)

// Session — локальное представление "кто залогинен".
// Анонимная сессия — нулевое значение: нет identity, нет роли.
type Session struct {
	Identity uuid.UUID
	Role     domain.Role
}

func Anonymous() Session {
	return Session{}
}

func (s Session) IsAuthenticated() bool {
	return s.Identity != uuid.Nil && s.Role != ""
}

func (s Session) RoleOf() (domain.Role, bool) {
	if !s.IsAuthenticated() {
		return "", false
	}
	return s.Role, true
}
