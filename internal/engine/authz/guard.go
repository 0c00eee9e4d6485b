package authz

import (
	"coursehub/internal/domain"
	"coursehub/internal/engine/session"
)

const (
	LoginRoute = "/login"
	HomeRoute  = "/home"
)

// Decision — результат проверки маршрута: либо рендерим, либо редирект.
type Decision struct {
	Allowed  bool
	Redirect string
}

// Guard проверяет доступ к защищенному экрану. Вызывается на каждой
// навигации и ничего не кеширует: смена роли после перелогина видна сразу.
// Никогда не мутирует ни сессию, ни ресурсы — только сигнал редиректа.
func Guard(sess session.Session, requiredRoles ...domain.Role) Decision {
	if !sess.IsAuthenticated() {
		return Decision{Redirect: LoginRoute}
	}
	for _, role := range requiredRoles {
		if sess.Role == role {
			return Decision{Allowed: true}
		}
	}
	return Decision{Redirect: HomeRoute}
}
