package view

import (
	"context"

	"github.com/google/uuid"

	"coursehub/internal/domain"
	"coursehub/internal/engine/authz"
	"coursehub/internal/engine/gateway"
	"coursehub/internal/engine/lifecycle"
	"coursehub/internal/engine/session"
)

// CourseView — один открытый экран курса: сессия, машина состояний и
// свой гейтвей. Поток данных как у страниц SPA: прочитать сессию,
// спросить guard, посчитать EnrollmentView для кнопок, действия
// пропустить через гейтвей и перечитать подтвержденное состояние.
type CourseView struct {
	sess    session.Session
	gw      *gateway.Gateway
	machine *lifecycle.Machine
}

// Open загружает курс и создает экземпляр экрана. Просмотр разрешен
// любой аутентифицированной роли; аноним до резолвера не доходит —
// его разворачивает guard.
func Open(ctx context.Context, sess session.Session, repo gateway.CourseRepository, id uuid.UUID) (*CourseView, error) {
	if decision := authz.Guard(sess, domain.RoleStudent, domain.RoleInstructor); !decision.Allowed {
		return nil, domain.ErrUnauthenticated
	}
	if !authz.CanPerform(sess, authz.ActionViewCourse, nil) {
		return nil, domain.ErrForbidden
	}

	course, err := repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return &CourseView{
		sess:    sess,
		gw:      gateway.New(repo),
		machine: lifecycle.New(*course),
	}, nil
}

func (v *CourseView) Course() domain.Course {
	return v.machine.Course()
}

func (v *CourseView) Phase() lifecycle.Phase {
	return v.machine.Phase()
}

func (v *CourseView) LastError() string {
	return v.machine.LastError()
}

// View пересчитывает производное состояние при каждом чтении,
// чтобы кеш-булев не разъехался с фактами.
func (v *CourseView) View() authz.EnrollmentView {
	course := v.machine.Course()
	return authz.ViewOf(v.sess, &course)
}

func (v *CourseView) Enroll(ctx context.Context) error {
	return v.mutate(ctx, lifecycle.PhaseEnrolling, authz.ActionEnroll, nil, "enroll-failed")
}

func (v *CourseView) Save(ctx context.Context, fields domain.CourseFields) error {
	return v.mutate(ctx, lifecycle.PhaseSaving, authz.ActionEditCourse, &fields, "save-failed")
}

// Delete при успехе закрывает экран навсегда; вызывающий уходит в каталог.
func (v *CourseView) Delete(ctx context.Context) error {
	ticket, err := v.machine.Begin(lifecycle.PhaseDeleting)
	if err != nil {
		return err
	}

	course := v.machine.Course()
	if _, err := v.gw.Invoke(ctx, v.sess, authz.ActionDeleteCourse, &course, nil); err != nil {
		v.machine.Fail(ticket, "delete-failed")
		return err
	}

	v.machine.ConfirmDeleted(ticket)
	return nil
}

// Close — уход с экрана; поздние ответы будут отброшены.
func (v *CourseView) Close() {
	v.machine.Close()
}

func (v *CourseView) mutate(ctx context.Context, phase lifecycle.Phase, action authz.Action, payload *domain.CourseFields, failReason string) error {
	ticket, err := v.machine.Begin(phase)
	if err != nil {
		return err
	}

	course := v.machine.Course()
	confirmed, err := v.gw.Invoke(ctx, v.sess, action, &course, payload)
	if err != nil {
		v.machine.Fail(ticket, failReason)
		return err
	}

	v.machine.Confirm(ticket, *confirmed)
	return nil
}
