package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"coursehub/internal/domain"
)

// Store хранит учетные данные между запусками (аналог localStorage).
// Единственный источник правды о том, кто залогинен.
type Store interface {
	Get() Session
	Token() string
	Refresh() string
	Set(token, refresh string) error
	Clear() error
}

type storedCredential struct {
	Token   string `json:"token"`
	Refresh string `json:"refresh_token,omitempty"`
}

// FileStore держит выданный сервером JWT в json-файле. Identity и роль
// выводятся из claims токена при каждом чтении, а не кешируются рядом:
// подправленная вручную роль в файле не переживет подписанные claims.
// Подпись здесь не проверяется — это делает сервер на каждом запросе.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Get возвращает текущую сессию. Любой дефект — нет файла, битый json,
// нечитаемый или просроченный токен — дает анонимную сессию целиком,
// никогда частично заполненную.
func (s *FileStore) Get() Session {
	token := s.Token()
	if token == "" {
		return Anonymous()
	}
	sess, ok := fromToken(token, time.Now())
	if !ok {
		return Anonymous()
	}
	return sess
}

func (s *FileStore) Token() string {
	return s.read().Token
}

// Refresh — refresh-токен для ротации и logout; на решения о правах
// не влияет.
func (s *FileStore) Refresh() string {
	return s.read().Refresh
}

func (s *FileStore) read() storedCredential {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return storedCredential{}
	}
	var cred storedCredential
	if err := json.Unmarshal(data, &cred); err != nil {
		return storedCredential{}
	}
	return cred
}

func (s *FileStore) Set(token, refresh string) error {
	data, err := json.Marshal(storedCredential{Token: token, Refresh: refresh})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *FileStore) Clear() error {
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func fromToken(token string, now time.Time) (Session, bool) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return Anonymous(), false
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Anonymous(), false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil || now.After(exp.Time) {
		return Anonymous(), false
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return Anonymous(), false
	}
	identity, err := uuid.Parse(sub)
	if err != nil || identity == uuid.Nil {
		return Anonymous(), false
	}

	roleStr, _ := claims["role"].(string)
	role, ok := domain.ParseRole(roleStr)
	if !ok {
		return Anonymous(), false
	}

	return Session{Identity: identity, Role: role}, true
}
