package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"coursehub/internal/domain"
)

func signToken(t *testing.T, sub string, role string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"exp":  exp.Unix(),
		"type": "access",
	})
	signed, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func newStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "session.json"))
}

func TestGetMissingFileIsAnonymous(t *testing.T) {
	store := newStore(t)

	sess := store.Get()

	if sess.IsAuthenticated() {
		t.Fatalf("Get() on missing file = %+v, want anonymous", sess)
	}
}

func TestGetCorruptFileIsAnonymous(t *testing.T) {
	store := newStore(t)
	if err := os.WriteFile(store.path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if sess := store.Get(); sess.IsAuthenticated() {
		t.Fatalf("Get() on corrupt file = %+v, want anonymous", sess)
	}
}

func TestGetRejectsBadCredentials(t *testing.T) {
	userID := uuid.New().String()
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage token", "not.a.jwt"},
		{"expired token", signToken(t, userID, "student", time.Now().Add(-time.Minute))},
		{"missing role", signToken(t, userID, "", future)},
		{"unknown role", signToken(t, userID, "admin", future)},
		{"bad subject", signToken(t, "not-a-uuid", "student", future)},
		{"nil subject", signToken(t, uuid.Nil.String(), "student", future)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStore(t)
			if err := store.Set(tt.token, ""); err != nil {
				t.Fatalf("Set: %v", err)
			}

			sess := store.Get()
			if sess.IsAuthenticated() {
				t.Fatalf("Get() = %+v, want anonymous", sess)
			}
			if sess.Identity != uuid.Nil || sess.Role != "" {
				t.Fatalf("Get() = %+v, want fully empty session", sess)
			}
		})
	}
}

func TestGetValidToken(t *testing.T) {
	store := newStore(t)
	userID := uuid.New()
	token := signToken(t, userID.String(), "instructor", time.Now().Add(time.Hour))

	if err := store.Set(token, "refresh-opaque"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	sess := store.Get()
	if !sess.IsAuthenticated() {
		t.Fatalf("Get() = %+v, want authenticated", sess)
	}
	if sess.Identity != userID {
		t.Errorf("identity = %s, want %s", sess.Identity, userID)
	}
	if sess.Role != domain.RoleInstructor {
		t.Errorf("role = %s, want instructor", sess.Role)
	}
	if store.Token() != token {
		t.Errorf("Token() did not round-trip")
	}
	if store.Refresh() != "refresh-opaque" {
		t.Errorf("Refresh() did not round-trip")
	}
}

func TestClear(t *testing.T) {
	store := newStore(t)
	token := signToken(t, uuid.New().String(), "student", time.Now().Add(time.Hour))
	if err := store.Set(token, "refresh-opaque"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if sess := store.Get(); sess.IsAuthenticated() {
		t.Fatalf("Get() after Clear = %+v, want anonymous", sess)
	}

	// Повторный Clear не ошибка
	if err := store.Clear(); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
}

func TestRoleOf(t *testing.T) {
	anon := Anonymous()
	if _, ok := anon.RoleOf(); ok {
		t.Fatal("anonymous session reported a role")
	}

	sess := Session{Identity: uuid.New(), Role: domain.RoleStudent}
	role, ok := sess.RoleOf()
	if !ok || role != domain.RoleStudent {
		t.Fatalf("RoleOf() = %v %v, want student true", role, ok)
	}
}
