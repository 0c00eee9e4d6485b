package authz

import (
	"coursehub/internal/domain"
	"coursehub/internal/engine/session"
)

// CanPerform — единственный источник правды для решений allow/deny.
// Экраны не повторяют проверки ролей сами, а спрашивают здесь.
//
// Правила в порядке приоритета, первое совпадение выигрывает:
//  1. аноним — запрет на всё;
//  2. create/register — только инструктор;
//  3. enroll — только студент и не на собственный курс;
//  4. edit/delete/roster — только инструктор-владелец: роль сама по себе
//     не дает прав на чужой курс;
//  5. просмотр каталога и курса — любая аутентифицированная роль.
func CanPerform(sess session.Session, action Action, course *domain.Course) bool {
	if !sess.IsAuthenticated() {
		return false
	}

	switch action {
	case ActionCreateCourse, ActionRegisterInstructor:
		return sess.Role == domain.RoleInstructor

	case ActionEnroll:
		if course == nil {
			return false
		}
		return sess.Role == domain.RoleStudent && !course.IsOwnedBy(sess.Identity)

	case ActionEditCourse, ActionDeleteCourse, ActionViewRoster:
		if course == nil {
			return false
		}
		return sess.Role == domain.RoleInstructor && course.IsOwnedBy(sess.Identity)

	case ActionViewCatalog, ActionViewCourse:
		return true
	}

	return false
}

// EnrollmentView — производное состояние курса для конкретной сессии.
// Чистая функция от (Session, Course): никогда не хранится отдельно от
// своих входов, пересчитывается при любом их изменении.
type EnrollmentView struct {
	IsEnrolled bool
	IsOwner    bool
	CanEnroll  bool
	CanEdit    bool
	CanDelete  bool
}

func ViewOf(sess session.Session, course *domain.Course) EnrollmentView {
	if course == nil {
		return EnrollmentView{}
	}
	enrolled := sess.IsAuthenticated() && course.IsEnrolled(sess.Identity)
	return EnrollmentView{
		IsEnrolled: enrolled,
		IsOwner:    sess.IsAuthenticated() && course.IsOwnedBy(sess.Identity),
		CanEnroll:  !enrolled && CanPerform(sess, ActionEnroll, course),
		CanEdit:    CanPerform(sess, ActionEditCourse, course),
		CanDelete:  CanPerform(sess, ActionDeleteCourse, course),
	}
}
