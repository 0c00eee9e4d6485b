package lifecycle

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"coursehub/internal/domain"
)

// Phase — переходное состояние одной мутации на одном экземпляре экрана.
type Phase int

const (
	PhaseViewing Phase = iota
	PhaseEnrolling
	PhaseSaving
	PhaseDeleting
	PhaseDeleted // терминальное: экран больше не принимает действий
)

func (p Phase) String() string {
	switch p {
	case PhaseViewing:
		return "viewing"
	case PhaseEnrolling:
		return "enrolling"
	case PhaseSaving:
		return "saving"
	case PhaseDeleting:
		return "deleting"
	case PhaseDeleted:
		return "deleted"
	}
	return "unknown"
}

var (
	// ErrBusy — на этом экземпляре уже идет операция.
	ErrBusy = errors.New("operation already in progress")
	// ErrGone — экземпляр закрыт или курс удален, действий больше нет.
	ErrGone = errors.New("view instance is gone")
	// ErrBadTransition — Begin с немутирующей фазой.
	ErrBadTransition = errors.New("invalid lifecycle transition")
)

// Ticket выдается на каждый Begin и предъявляется при завершении.
// Ответ, приехавший после Close или после чужого Begin, предъявит
// устаревший билет и будет молча отброшен — поздний сетевой ответ не
// должен примениться к экрану, который уже показывает другое.
type Ticket struct {
	instance uuid.UUID
	op       uint64
}

// Machine — состояние одного экземпляра экрана курса. Принадлежит только
// этому экземпляру: не шарится между экранами и не переживает их.
type Machine struct {
	mu        sync.Mutex
	instance  uuid.UUID
	phase     Phase
	course    domain.Course
	lastError string
	opSeq     uint64
	currentOp uint64 // 0, когда операции нет
	closed    bool
}

func New(course domain.Course) *Machine {
	return &Machine{
		instance: uuid.New(),
		phase:    PhaseViewing,
		course:   course,
	}
}

func (m *Machine) Instance() uuid.UUID {
	return m.instance
}

func (m *Machine) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Course возвращает последнее подтвержденное сервером состояние.
func (m *Machine) Course() domain.Course {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.course
}

// LastError — причина последнего сбоя; сбрасывается следующим Begin.
func (m *Machine) LastError() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastError
}

// Begin переводит Viewing -> Enrolling/Saving/Deleting и выдает билет.
// Пока операция в полете, повторный Begin любого рода дает ErrBusy.
func (m *Machine) Begin(p Phase) (Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p != PhaseEnrolling && p != PhaseSaving && p != PhaseDeleting {
		return Ticket{}, ErrBadTransition
	}
	if m.closed || m.phase == PhaseDeleted {
		return Ticket{}, ErrGone
	}
	if m.phase != PhaseViewing {
		return Ticket{}, ErrBusy
	}

	m.opSeq++
	m.currentOp = m.opSeq
	m.phase = p
	m.lastError = ""
	return Ticket{instance: m.instance, op: m.opSeq}, nil
}

// Confirm применяет подтвержденное сервером состояние курса и возвращает
// экран в Viewing. Локальный черновик сюда не попадает никогда — только
// то, что сервер реально сохранил. Устаревший билет игнорируется.
func (m *Machine) Confirm(t Ticket, course domain.Course) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.live(t) {
		return false
	}
	m.course = course
	m.phase = PhaseViewing
	m.currentOp = 0
	return true
}

// ConfirmDeleted закрывает экран навсегда после успешного удаления.
func (m *Machine) ConfirmDeleted(t Ticket) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.live(t) {
		return false
	}
	m.phase = PhaseDeleted
	m.currentOp = 0
	return true
}

// Fail возвращает экран в Viewing с нетронутым прежним состоянием.
// Неудавшийся enroll не должен отобразиться как "записан".
func (m *Machine) Fail(t Ticket, reason string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.live(t) {
		return false
	}
	m.phase = PhaseViewing
	m.lastError = reason
	m.currentOp = 0
	return true
}

// Close вызывается при уходе с экрана: все невернувшиеся ответы
// становятся устаревшими.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.currentOp = 0
}

func (m *Machine) live(t Ticket) bool {
	return !m.closed &&
		t.instance == m.instance &&
		m.currentOp != 0 &&
		t.op == m.currentOp
}
