package usecase

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"coursehub/internal/domain"
	"coursehub/internal/infrastructure/security"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type UserStore interface {
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.User, error)
}

type RefreshCache interface {
	SaveRefresh(ctx context.Context, userID, refreshToken string) error
	CheckRefresh(ctx context.Context, refreshToken string) (string, error)
	DeleteRefresh(ctx context.Context, refreshToken string) error
}

type AuthUseCase struct {
	userStore    UserStore
	tokenCache   RefreshCache
	hasher       *security.PasswordHasher
	tokenManager *security.TokenManager
}

func NewAuthUseCase(us UserStore, tc RefreshCache, h *security.PasswordHasher, tm *security.TokenManager) *AuthUseCase {
	return &AuthUseCase{
		userStore:    us,
		tokenCache:   tc,
		hasher:       h,
		tokenManager: tm,
	}
}

func (uc *AuthUseCase) Register(ctx context.Context, username, password, roleStr string) (string, error) {
	role, ok := domain.ParseRole(roleStr)
	if !ok {
		return "", domain.ErrInvalidRole
	}

	hash, err := uc.hasher.Hash(password)
	if err != nil {
		return "", err
	}

	user := &domain.User{
		ID:       uuid.New(),
		Username: username,
		Role:     role,
		Password: hash,
	}
	if err := uc.userStore.Create(ctx, user); err != nil {
		return "", err
	}
	return user.ID.String(), nil
}

func (uc *AuthUseCase) Login(ctx context.Context, username, password string) (string, string, error) {
	user, err := uc.userStore.GetByUsername(ctx, username)
	if err != nil {
		// Не раскрываем, чего именно не нашлось
		return "", "", ErrInvalidCredentials
	}
	if err := uc.hasher.Compare(user.Password, password); err != nil {
		return "", "", ErrInvalidCredentials
	}

	return uc.generateAndSaveTokens(ctx, user)
}

func (uc *AuthUseCase) Refresh(ctx context.Context, oldRefreshToken string) (string, string, error) {
	userID, err := uc.tokenManager.ValidateRefreshToken(oldRefreshToken)
	if err != nil {
		return "", "", err
	}

	cachedID, err := uc.tokenCache.CheckRefresh(ctx, oldRefreshToken)
	if err != nil || cachedID != userID {
		return "", "", errors.New("token revoked")
	}
	// Ротация: старый токен больше не сыграет
	_ = uc.tokenCache.DeleteRefresh(ctx, oldRefreshToken)

	uid, err := uuid.Parse(userID)
	if err != nil {
		return "", "", err
	}
	// Роль берем из БД, а не из старого токена: смена роли видна сразу
	user, err := uc.userStore.GetByID(ctx, uid)
	if err != nil {
		return "", "", err
	}
	return uc.generateAndSaveTokens(ctx, user)
}

func (uc *AuthUseCase) Logout(ctx context.Context, refreshToken string) error {
	return uc.tokenCache.DeleteRefresh(ctx, refreshToken)
}

func (uc *AuthUseCase) ValidateAccess(token string) (string, domain.Role, error) {
	return uc.tokenManager.ValidateAccessToken(token)
}

func (uc *AuthUseCase) generateAndSaveTokens(ctx context.Context, user *domain.User) (string, string, error) {
	access, refresh, err := uc.tokenManager.Generate(user.ID.String(), user.Role)
	if err != nil {
		return "", "", err
	}
	if err := uc.tokenCache.SaveRefresh(ctx, user.ID.String(), refresh); err != nil {
		return "", "", err
	}
	return access, refresh, nil
}
