package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"coursehub/internal/domain"
)

type memStores struct {
	users       map[uuid.UUID]domain.User
	courses     map[uuid.UUID]domain.Course
	enrollments map[uuid.UUID][]uuid.UUID // courseID -> userIDs
}

func newMemStores() *memStores {
	return &memStores{
		users:       make(map[uuid.UUID]domain.User),
		courses:     make(map[uuid.UUID]domain.Course),
		enrollments: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (m *memStores) Create(ctx context.Context, u *domain.User) error {
	m.users[u.ID] = *u
	return nil
}

func (m *memStores) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memStores) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (m *memStores) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.User, error) {
	var out []domain.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

type memCourses struct{ m *memStores }

func (c memCourses) Create(ctx context.Context, course *domain.Course) error {
	c.m.courses[course.ID] = *course
	return nil
}

func (c memCourses) GetByID(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	course, ok := c.m.courses[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &course, nil
}

func (c memCourses) List(ctx context.Context) ([]domain.Course, error) {
	var out []domain.Course
	for _, course := range c.m.courses {
		out = append(out, course)
	}
	return out, nil
}

func (c memCourses) Update(ctx context.Context, id uuid.UUID, fields domain.CourseFields) error {
	course, ok := c.m.courses[id]
	if !ok {
		return domain.ErrNotFound
	}
	course.Title, course.Description, course.Content = fields.Title, fields.Description, fields.Content
	c.m.courses[id] = course
	return nil
}

func (c memCourses) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := c.m.courses[id]; !ok {
		return domain.ErrNotFound
	}
	delete(c.m.courses, id)
	delete(c.m.enrollments, id)
	return nil
}

func (c memCourses) ListByInstructor(ctx context.Context, instructorID uuid.UUID) ([]domain.Course, error) {
	var out []domain.Course
	for _, course := range c.m.courses {
		if course.InstructorID == instructorID {
			out = append(out, course)
		}
	}
	return out, nil
}

func (c memCourses) ListEnrolled(ctx context.Context, userID uuid.UUID) ([]domain.Course, error) {
	var out []domain.Course
	for courseID, users := range c.m.enrollments {
		for _, u := range users {
			if u == userID {
				out = append(out, c.m.courses[courseID])
			}
		}
	}
	return out, nil
}

type memEnrollments struct{ m *memStores }

func (e memEnrollments) Enroll(ctx context.Context, courseID, userID uuid.UUID) error {
	for _, u := range e.m.enrollments[courseID] {
		if u == userID {
			return nil // идемпотентность
		}
	}
	e.m.enrollments[courseID] = append(e.m.enrollments[courseID], userID)
	return nil
}

func (e memEnrollments) UserIDs(ctx context.Context, courseID uuid.UUID) ([]uuid.UUID, error) {
	return e.m.enrollments[courseID], nil
}

func fixture(t *testing.T) (*CourseUseCase, *memStores, Actor, Actor, domain.Course) {
	t.Helper()
	m := newMemStores()
	uc := NewCourseUseCase(memCourses{m}, memEnrollments{m}, m)

	instructor := domain.User{ID: uuid.New(), Username: "ada", Role: domain.RoleInstructor}
	student := domain.User{ID: uuid.New(), Username: "linus", Role: domain.RoleStudent}
	m.users[instructor.ID] = instructor
	m.users[student.ID] = student

	course := domain.Course{
		ID:             uuid.New(),
		Title:          "Type Theory",
		InstructorID:   instructor.ID,
		InstructorName: "ada",
	}
	m.courses[course.ID] = course

	return uc,
		m,
		Actor{ID: instructor.ID, Role: domain.RoleInstructor},
		Actor{ID: student.ID, Role: domain.RoleStudent},
		course
}

func TestCreateRequiresInstructorRole(t *testing.T) {
	uc, _, instructor, student, _ := fixture(t)
	ctx := context.Background()
	fields := domain.CourseFields{Title: "New Course"}

	if _, err := uc.Create(ctx, student, fields); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("Create by student err = %v, want ErrForbidden", err)
	}

	created, err := uc.Create(ctx, instructor, fields)
	if err != nil {
		t.Fatalf("Create by instructor: %v", err)
	}
	if created.InstructorName != "ada" {
		t.Errorf("InstructorName = %q, want ada", created.InstructorName)
	}
	if created.InstructorID != instructor.ID {
		t.Errorf("InstructorID = %s, want actor id", created.InstructorID)
	}
}

func TestEnrollRules(t *testing.T) {
	uc, m, instructor, student, course := fixture(t)
	ctx := context.Background()

	t.Run("instructor denied", func(t *testing.T) {
		if err := uc.Enroll(ctx, instructor, course.ID); !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("err = %v, want ErrForbidden", err)
		}
	})

	t.Run("owner role swap still blocked", func(t *testing.T) {
		// Даже если владелец пришел с ролью студента, на свой курс
		// записаться нельзя
		fakeStudent := Actor{ID: instructor.ID, Role: domain.RoleStudent}
		if err := uc.Enroll(ctx, fakeStudent, course.ID); !errors.Is(err, domain.ErrOwnEnroll) {
			t.Fatalf("err = %v, want ErrOwnEnroll", err)
		}
	})

	t.Run("student enrolls idempotently", func(t *testing.T) {
		if err := uc.Enroll(ctx, student, course.ID); err != nil {
			t.Fatalf("first enroll: %v", err)
		}
		if err := uc.Enroll(ctx, student, course.ID); err != nil {
			t.Fatalf("repeat enroll: %v", err)
		}
		if got := len(m.enrollments[course.ID]); got != 1 {
			t.Fatalf("enrolled set size = %d, want 1", got)
		}
	})

	t.Run("vanished course", func(t *testing.T) {
		if err := uc.Enroll(ctx, student, uuid.New()); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestGetIncludesEnrolledSet(t *testing.T) {
	uc, _, _, student, course := fixture(t)
	ctx := context.Background()

	if err := uc.Enroll(ctx, student, course.ID); err != nil {
		t.Fatalf("Enroll: %v", err)
	}

	got, err := uc.Get(ctx, course.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.IsEnrolled(student.ID) {
		t.Fatalf("Get did not include enrollment: %+v", got)
	}
}

func TestUpdateDeleteOwnershipRequired(t *testing.T) {
	uc, _, _, student, course := fixture(t)
	ctx := context.Background()
	otherInstructor := Actor{ID: uuid.New(), Role: domain.RoleInstructor}
	fields := domain.CourseFields{Title: "Hijacked"}

	for name, actor := range map[string]Actor{
		"student":          student,
		"other instructor": otherInstructor,
	} {
		if _, err := uc.Update(ctx, actor, course.ID, fields); !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("Update by %s err = %v, want ErrForbidden", name, err)
		}
		if err := uc.Delete(ctx, actor, course.ID); !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("Delete by %s err = %v, want ErrForbidden", name, err)
		}
	}
}

func TestUpdateByOwnerReturnsConfirmedState(t *testing.T) {
	uc, _, instructor, _, course := fixture(t)
	ctx := context.Background()

	updated, err := uc.Update(ctx, instructor, course.ID, domain.CourseFields{Title: "Category Theory"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "Category Theory" {
		t.Fatalf("Title = %q, want updated value", updated.Title)
	}
}

func TestDeleteByOwnerRemovesCourse(t *testing.T) {
	uc, _, instructor, _, course := fixture(t)
	ctx := context.Background()

	if err := uc.Delete(ctx, instructor, course.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	listed, err := uc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, c := range listed {
		if c.ID == course.ID {
			t.Fatal("deleted course still listed")
		}
	}
}

func TestRosterOwnerOnly(t *testing.T) {
	uc, _, instructor, student, course := fixture(t)
	ctx := context.Background()

	if err := uc.Enroll(ctx, student, course.ID); err != nil {
		t.Fatalf("Enroll: %v", err)
	}

	if _, err := uc.Roster(ctx, Actor{ID: uuid.New(), Role: domain.RoleInstructor}, course.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("Roster by foreign instructor err = %v, want ErrForbidden", err)
	}
	if _, err := uc.Roster(ctx, student, course.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("Roster by student err = %v, want ErrForbidden", err)
	}

	roster, err := uc.Roster(ctx, instructor, course.ID)
	if err != nil {
		t.Fatalf("Roster by owner: %v", err)
	}
	if len(roster) != 1 || roster[0].Username != "linus" {
		t.Fatalf("roster = %+v, want [linus]", roster)
	}
}
