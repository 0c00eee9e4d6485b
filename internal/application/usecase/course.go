package usecase

import (
	"context"

	"github.com/google/uuid"

	"coursehub/internal/domain"
)

type CourseStore interface {
	Create(ctx context.Context, course *domain.Course) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Course, error)
	List(ctx context.Context) ([]domain.Course, error)
	Update(ctx context.Context, id uuid.UUID, fields domain.CourseFields) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByInstructor(ctx context.Context, instructorID uuid.UUID) ([]domain.Course, error)
	ListEnrolled(ctx context.Context, userID uuid.UUID) ([]domain.Course, error)
}

type EnrollmentStore interface {
	Enroll(ctx context.Context, courseID, userID uuid.UUID) error
	UserIDs(ctx context.Context, courseID uuid.UUID) ([]uuid.UUID, error)
}

// Actor — кто делает запрос; поднимается из access-токена в middleware.
type Actor struct {
	ID   uuid.UUID
	Role domain.Role
}

// CourseUseCase — серверный арбитр. Клиентский движок проверяет права
// до вызова, но последнее слово за сервером: запрос мимо движка
// упирается в те же правила здесь.
type CourseUseCase struct {
	courses     CourseStore
	enrollments EnrollmentStore
	users       UserStore
}

func NewCourseUseCase(cs CourseStore, es EnrollmentStore, us UserStore) *CourseUseCase {
	return &CourseUseCase{courses: cs, enrollments: es, users: us}
}

func (uc *CourseUseCase) List(ctx context.Context) ([]domain.Course, error) {
	return uc.courses.List(ctx)
}

// Get отдает курс вместе с множеством записанных.
func (uc *CourseUseCase) Get(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	course, err := uc.courses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ids, err := uc.enrollments.UserIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	course.EnrolledUserIDs = ids
	return course, nil
}

func (uc *CourseUseCase) Create(ctx context.Context, actor Actor, fields domain.CourseFields) (*domain.Course, error) {
	if actor.Role != domain.RoleInstructor {
		return nil, domain.ErrForbidden
	}

	instructor, err := uc.users.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	course := &domain.Course{
		ID:             uuid.New(),
		Title:          fields.Title,
		Description:    fields.Description,
		Content:        fields.Content,
		InstructorID:   actor.ID,
		InstructorName: instructor.Username,
	}
	if err := uc.courses.Create(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

func (uc *CourseUseCase) Update(ctx context.Context, actor Actor, id uuid.UUID, fields domain.CourseFields) (*domain.Course, error) {
	if err := uc.requireOwner(ctx, actor, id); err != nil {
		return nil, err
	}
	if err := uc.courses.Update(ctx, id, fields); err != nil {
		return nil, err
	}
	return uc.Get(ctx, id)
}

func (uc *CourseUseCase) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := uc.requireOwner(ctx, actor, id); err != nil {
		return err
	}
	return uc.courses.Delete(ctx, id)
}

// Enroll: только студент и не на собственный курс. Повторная запись —
// no-op, не ошибка.
func (uc *CourseUseCase) Enroll(ctx context.Context, actor Actor, id uuid.UUID) error {
	if actor.Role != domain.RoleStudent {
		return domain.ErrForbidden
	}

	course, err := uc.courses.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if course.InstructorID == actor.ID {
		return domain.ErrOwnEnroll
	}

	return uc.enrollments.Enroll(ctx, id, actor.ID)
}

func (uc *CourseUseCase) ListEnrolled(ctx context.Context, actor Actor) ([]domain.Course, error) {
	return uc.courses.ListEnrolled(ctx, actor.ID)
}

func (uc *CourseUseCase) ListOwned(ctx context.Context, actor Actor) ([]domain.Course, error) {
	return uc.courses.ListByInstructor(ctx, actor.ID)
}

// Roster — записанные студенты; виден только владельцу.
func (uc *CourseUseCase) Roster(ctx context.Context, actor Actor, id uuid.UUID) ([]domain.User, error) {
	if err := uc.requireOwner(ctx, actor, id); err != nil {
		return nil, err
	}
	ids, err := uc.enrollments.UserIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.users.GetByIDs(ctx, ids)
}

func (uc *CourseUseCase) requireOwner(ctx context.Context, actor Actor, id uuid.UUID) error {
	course, err := uc.courses.GetByID(ctx, id)
	if err != nil {
		return err
	}
	// Роли "инструктор" недостаточно — нужен владелец
	if actor.Role != domain.RoleInstructor || course.InstructorID != actor.ID {
		return domain.ErrForbidden
	}
	return nil
}
