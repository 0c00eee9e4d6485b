package gateway

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"coursehub/internal/domain"
	"coursehub/internal/engine/authz"
	"coursehub/internal/engine/session"
)

// fakeRepo считает вызовы и умеет зависать на канале, имитируя
// медленный сетевой ответ.
type fakeRepo struct {
	mu          sync.Mutex
	enrollCalls int
	deleteCalls int
	enrollErr   error
	updateErr   error
	block       chan struct{} // если не nil, Enroll ждет закрытия
	entered     chan struct{} // сигнал, что Enroll повис на block

	courses map[uuid.UUID]domain.Course
}

func newFakeRepo(courses ...domain.Course) *fakeRepo {
	m := make(map[uuid.UUID]domain.Course, len(courses))
	for _, c := range courses {
		m[c.ID] = c
	}
	return &fakeRepo{courses: m}
}

func (r *fakeRepo) List(ctx context.Context) ([]domain.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Course, 0, len(r.courses))
	for _, c := range r.courses {
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.courses[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (r *fakeRepo) Create(ctx context.Context, fields domain.CourseFields) (*domain.Course, error) {
	c := domain.Course{ID: uuid.New(), Title: fields.Title, Description: fields.Description, Content: fields.Content}
	r.mu.Lock()
	r.courses[c.ID] = c
	r.mu.Unlock()
	return &c, nil
}

func (r *fakeRepo) Update(ctx context.Context, id uuid.UUID, fields domain.CourseFields) (*domain.Course, error) {
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.courses[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c.Title, c.Description, c.Content = fields.Title, fields.Description, fields.Content
	r.courses[id] = c
	return &c, nil
}

func (r *fakeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleteCalls++
	if _, ok := r.courses[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.courses, id)
	return nil
}

func (r *fakeRepo) Enroll(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	r.enrollCalls++
	block := r.block
	err := r.enrollErr
	_, ok := r.courses[id]
	r.mu.Unlock()

	if block != nil {
		r.entered <- struct{}{}
		<-block
	}
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

func (r *fakeRepo) ListEnrolled(ctx context.Context) ([]domain.Course, error) { return nil, nil }
func (r *fakeRepo) ListOwned(ctx context.Context) ([]domain.Course, error)    { return nil, nil }

func (r *fakeRepo) enrollCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enrollCalls
}

func TestInvokeDeniedNeverCallsRepository(t *testing.T) {
	instructor := session.Session{Identity: uuid.New(), Role: domain.RoleInstructor}
	ownCourse := domain.Course{ID: uuid.New(), InstructorID: instructor.Identity}
	repo := newFakeRepo(ownCourse)
	g := New(repo)

	// Владелец не может записаться на собственный курс
	_, err := g.Invoke(context.Background(), instructor, authz.ActionEnroll, &ownCourse, nil)

	kind, ok := KindOf(err)
	if !ok || kind != KindUnauthorized {
		t.Fatalf("Invoke err = %v, want unauthorized", err)
	}
	if repo.enrollCount() != 0 {
		t.Fatalf("repository called %d times after denial, want 0", repo.enrollCount())
	}
}

func TestInvokeRejectsNonMutation(t *testing.T) {
	g := New(newFakeRepo())
	student := session.Session{Identity: uuid.New(), Role: domain.RoleStudent}

	if _, err := g.Invoke(context.Background(), student, authz.ActionViewCourse, nil, nil); err == nil {
		t.Fatal("Invoke accepted a non-mutating action")
	}
}

func TestReentrantEnrollConflicts(t *testing.T) {
	student := session.Session{Identity: uuid.New(), Role: domain.RoleStudent}
	course := domain.Course{ID: uuid.New(), InstructorID: uuid.New()}
	repo := newFakeRepo(course)
	repo.block = make(chan struct{})
	repo.entered = make(chan struct{}, 1)
	g := New(repo)

	done := make(chan error, 1)
	go func() {
		_, err := g.Invoke(context.Background(), student, authz.ActionEnroll, &course, nil)
		done <- err
	}()
	// Ждем, пока первый вызов реально повиснет в репозитории
	<-repo.entered

	_, err := g.Invoke(context.Background(), student, authz.ActionEnroll, &course, nil)
	if kind, ok := KindOf(err); !ok || kind != KindConflict {
		t.Fatalf("second Invoke err = %v, want conflict", err)
	}

	close(repo.block)
	if err := <-done; err != nil {
		t.Fatalf("first Invoke failed: %v", err)
	}
	if repo.enrollCount() != 1 {
		t.Fatalf("repository Enroll called %d times, want exactly 1", repo.enrollCount())
	}
}

func TestConflictClearsAfterCompletion(t *testing.T) {
	student := session.Session{Identity: uuid.New(), Role: domain.RoleStudent}
	course := domain.Course{ID: uuid.New(), InstructorID: uuid.New()}
	g := New(newFakeRepo(course))

	for i := 0; i < 2; i++ {
		if _, err := g.Invoke(context.Background(), student, authz.ActionEnroll, &course, nil); err != nil {
			t.Fatalf("Invoke #%d: %v", i+1, err)
		}
	}
}

func TestEnrollReturnsServerConfirmedState(t *testing.T) {
	student := session.Session{Identity: uuid.New(), Role: domain.RoleStudent}
	course := domain.Course{ID: uuid.New(), InstructorID: uuid.New()}
	repo := newFakeRepo(course)
	g := New(repo)

	// Сервер после записи знает больше, чем локальная копия
	withStudent := course
	withStudent.EnrolledUserIDs = []uuid.UUID{student.Identity}
	repo.mu.Lock()
	repo.courses[course.ID] = withStudent
	repo.mu.Unlock()

	confirmed, err := g.Invoke(context.Background(), student, authz.ActionEnroll, &course, nil)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if !confirmed.IsEnrolled(student.Identity) {
		t.Fatalf("confirmed state missing enrollment: %+v", confirmed)
	}
}

func TestErrorMapping(t *testing.T) {
	instructor := session.Session{Identity: uuid.New(), Role: domain.RoleInstructor}
	course := domain.Course{ID: uuid.New(), InstructorID: instructor.Identity}

	tests := []struct {
		name    string
		repoErr error
		want    Kind
	}{
		{"credential rejected", domain.ErrUnauthenticated, KindUnauthorized},
		{"server-side forbidden", domain.ErrForbidden, KindUnauthorized},
		{"vanished resource", domain.ErrNotFound, KindNotFound},
		{"transport failure", context.DeadlineExceeded, KindRemoteFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo(course)
			repo.updateErr = tt.repoErr
			g := New(repo)

			fields := domain.CourseFields{Title: "new title"}
			_, err := g.Invoke(context.Background(), instructor, authz.ActionEditCourse, &course, &fields)

			kind, ok := KindOf(err)
			if !ok || kind != tt.want {
				t.Fatalf("Invoke err = %v, want kind %s", err, tt.want)
			}
		})
	}
}

func TestExpiredCredentialVisibleThroughActionError(t *testing.T) {
	instructor := session.Session{Identity: uuid.New(), Role: domain.RoleInstructor}
	course := domain.Course{ID: uuid.New(), InstructorID: instructor.Identity}
	repo := newFakeRepo(course)
	repo.updateErr = domain.ErrUnauthenticated
	g := New(repo)

	fields := domain.CourseFields{Title: "new title"}
	_, err := g.Invoke(context.Background(), instructor, authz.ActionEditCourse, &course, &fields)

	// Истекший токен должен быть различим сквозь обертку: по нему
	// вызывающий решает ротировать refresh-токен вместо отказа в правах
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("Invoke err = %v, does not unwrap to ErrUnauthenticated", err)
	}

	// Локальный отказ резолвера причину не несет: ротация его не вылечит
	student := session.Session{Identity: uuid.New(), Role: domain.RoleStudent}
	_, err = g.Invoke(context.Background(), student, authz.ActionEditCourse, &course, &fields)
	if errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("resolver denial %v unwraps to ErrUnauthenticated", err)
	}
}

func TestDeleteReturnsNoState(t *testing.T) {
	instructor := session.Session{Identity: uuid.New(), Role: domain.RoleInstructor}
	course := domain.Course{ID: uuid.New(), InstructorID: instructor.Identity}
	repo := newFakeRepo(course)
	g := New(repo)

	confirmed, err := g.Invoke(context.Background(), instructor, authz.ActionDeleteCourse, &course, nil)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if confirmed != nil {
		t.Fatalf("delete returned state %+v, want nil", confirmed)
	}

	if _, err := repo.Get(context.Background(), course.ID); err == nil {
		t.Fatal("course still present after delete")
	}
}
