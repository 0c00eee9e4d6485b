package gateway

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"coursehub/internal/domain"
	"coursehub/internal/engine/authz"
	"coursehub/internal/engine/session"
)

// CourseRepository — удаленный CRUD+enrollment API. Все вызовы несут
// учетные данные текущей сессии; целостность токена проверяет сервер.
type CourseRepository interface {
	List(ctx context.Context) ([]domain.Course, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Course, error)
	Create(ctx context.Context, fields domain.CourseFields) (*domain.Course, error)
	Update(ctx context.Context, id uuid.UUID, fields domain.CourseFields) (*domain.Course, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Enroll(ctx context.Context, id uuid.UUID) error
	ListEnrolled(ctx context.Context) ([]domain.Course, error)
	ListOwned(ctx context.Context) ([]domain.Course, error)
}

// Gateway — единственная точка, через которую проходят мутации.
// Экраны не зовут репозиторий напрямую: тогда повторную проверку прав
// и защиту от двойного клика нельзя обойти экраном, который забыл
// спросить резолвер.
//
// Один Gateway на один экземпляр экрана: защита от повторного входа
// действует в его пределах. Две вкладки с одним курсом не
// координируются — арбитр там серверное состояние.
type Gateway struct {
	repo CourseRepository

	mu       sync.Mutex
	inflight map[string]struct{}
}

func New(repo CourseRepository) *Gateway {
	return &Gateway{
		repo:     repo,
		inflight: make(map[string]struct{}),
	}
}

// Invoke выполняет мутацию по порядку: права, потом занятость, потом
// репозиторий. Возвращает подтвержденное сервером состояние ресурса
// (nil после удаления) либо *ActionError.
func (g *Gateway) Invoke(ctx context.Context, sess session.Session, action authz.Action, course *domain.Course, payload *domain.CourseFields) (*domain.Course, error) {
	if !action.IsMutation() {
		return nil, errConflict("not a mutating action")
	}

	// Повторная проверка прав: защита в глубину от UI, который
	// отрисовал кнопку, которой не должно было быть. При отказе
	// репозиторий не вызывается вовсе.
	if !authz.CanPerform(sess, action, course) {
		return nil, errUnauthorized()
	}

	key := g.conflictKey(action, course)
	if !g.acquire(key) {
		return nil, errConflict(action.Class() + " already in progress")
	}
	defer g.release(key)

	confirmed, err := g.dispatch(ctx, action, course, payload)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return confirmed, nil
}

func (g *Gateway) dispatch(ctx context.Context, action authz.Action, course *domain.Course, payload *domain.CourseFields) (*domain.Course, error) {
	switch action {
	case authz.ActionEnroll:
		if err := g.repo.Enroll(ctx, course.ID); err != nil {
			return nil, err
		}
		// Повторная запись — no-op на сервере; состояние всегда
		// перечитывается, а не патчится локальной догадкой.
		return g.repo.Get(ctx, course.ID)

	case authz.ActionCreateCourse:
		return g.repo.Create(ctx, *payload)

	case authz.ActionEditCourse:
		return g.repo.Update(ctx, course.ID, *payload)

	case authz.ActionDeleteCourse:
		if err := g.repo.Delete(ctx, course.ID); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return nil, errors.New("unreachable action: " + string(action))
}

func (g *Gateway) conflictKey(action authz.Action, course *domain.Course) string {
	id := uuid.Nil
	if course != nil {
		id = course.ID
	}
	return id.String() + "/" + action.Class()
}

func (g *Gateway) acquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inflight[key]; busy {
		return false
	}
	g.inflight[key] = struct{}{}
	return true
}

func (g *Gateway) release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inflight, key)
}

func mapRepositoryError(err error) *ActionError {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, domain.ErrForbidden):
		return errUnauthorizedCause(err)
	case errors.Is(err, domain.ErrNotFound):
		return errNotFound()
	}
	return errRemote(err)
}
