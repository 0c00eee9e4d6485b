package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"coursehub/internal/domain"
)

type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// Generate выпускает пару токенов. Роль кладется в access-claims:
// клиент выводит из них свою сессию, сервер проверяет подпись сам.
func (m *TokenManager) Generate(userID string, role domain.Role) (string, string, error) {
	now := time.Now()

	at := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID,
		"role": string(role),
		"exp":  now.Add(m.accessTTL).Unix(),
		"type": "access",
	})
	accessToken, err := at.SignedString(m.accessSecret)
	if err != nil {
		return "", "", err
	}

	rt := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID,
		"exp":  now.Add(m.refreshTTL).Unix(),
		"type": "refresh",
	})
	refreshToken, err := rt.SignedString(m.refreshSecret)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

// ValidateAccessToken возвращает (userID, role) из подписанных claims.
func (m *TokenManager) ValidateAccessToken(tokenStr string) (string, domain.Role, error) {
	claims, err := m.validate(tokenStr, m.accessSecret, "access")
	if err != nil {
		return "", "", err
	}

	sub, _ := claims["sub"].(string)
	roleStr, _ := claims["role"].(string)
	role, ok := domain.ParseRole(roleStr)
	if sub == "" || !ok {
		return "", "", errors.New("invalid token claims")
	}
	return sub, role, nil
}

func (m *TokenManager) ValidateRefreshToken(tokenStr string) (string, error) {
	claims, err := m.validate(tokenStr, m.refreshSecret, "refresh")
	if err != nil {
		return "", err
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", errors.New("invalid token claims")
	}
	return sub, nil
}

func (m *TokenManager) validate(tokenStr string, secret []byte, wantType string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	// access по refresh-секрету не пройдет, но тип проверяем явно
	if typ, _ := claims["type"].(string); typ != wantType {
		return nil, errors.New("wrong token type")
	}
	return claims, nil
}
