package gateway

import "fmt"

// Kind классифицирует исход неудавшегося действия.
type Kind int

const (
	// KindUnauthorized — проверка прав не прошла. Никогда не ретраится
	// автоматически; для отвергнутого сервером токена означает
	// "сессия истекла, на логин".
	KindUnauthorized Kind = iota
	// KindConflict — такое же действие по этому ресурсу уже в полете.
	// Показывается как "уже выполняется", не как ошибка.
	KindConflict
	// KindRemoteFailure — транспорт или сервер; частичное состояние
	// не применяется.
	KindRemoteFailure
	// KindNotFound — ресурс исчез между списком и деталкой.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindConflict:
		return "conflict"
	case KindRemoteFailure:
		return "remote failure"
	case KindNotFound:
		return "not found"
	}
	return "unknown"
}

// ActionError — единственная форма отказа, которую видят вызывающие:
// необработанных паник или "сырых" сетевых ошибок наружу не выходит.
type ActionError struct {
	Kind   Kind
	Detail string
	cause  error
}

func (e *ActionError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
	return e.Kind.String()
}

func (e *ActionError) Unwrap() error {
	return e.cause
}

func errUnauthorized() *ActionError {
	return &ActionError{Kind: KindUnauthorized}
}

// errUnauthorizedCause сохраняет исходную ошибку: вызывающему важно
// отличать истекший токен (можно ротировать) от запрета по правам.
func errUnauthorizedCause(cause error) *ActionError {
	return &ActionError{Kind: KindUnauthorized, cause: cause}
}

func errConflict(detail string) *ActionError {
	return &ActionError{Kind: KindConflict, Detail: detail}
}

func errNotFound() *ActionError {
	return &ActionError{Kind: KindNotFound}
}

func errRemote(cause error) *ActionError {
	return &ActionError{Kind: KindRemoteFailure, Detail: cause.Error(), cause: cause}
}

// KindOf достает классификацию из ошибки гейтвея.
func KindOf(err error) (Kind, bool) {
	if ae, ok := err.(*ActionError); ok {
		return ae.Kind, true
	}
	return 0, false
}
