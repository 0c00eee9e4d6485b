package authz

// Action — именованное право на одно действие, возможно привязанное к ресурсу.
type Action string

const (
	ActionViewCatalog        Action = "view_catalog"
	ActionViewCourse         Action = "view_course"
	ActionEnroll             Action = "enroll"
	ActionCreateCourse       Action = "create_course"
	ActionEditCourse         Action = "edit_course"
	ActionDeleteCourse       Action = "delete_course"
	ActionViewRoster         Action = "view_roster"
	ActionRegisterInstructor Action = "register_instructor"
)

// Class группирует мутации для защиты от повторного входа: второй вызов
// того же класса по тому же курсу отклоняется, пока первый в полете.
func (a Action) Class() string {
	switch a {
	case ActionEnroll:
		return "enroll"
	case ActionCreateCourse, ActionEditCourse:
		return "save"
	case ActionDeleteCourse:
		return "delete"
	}
	return ""
}

// IsMutation сообщает, проходит ли действие через Action Gateway.
func (a Action) IsMutation() bool {
	return a.Class() != ""
}
