package client

import (
	"context"
	"net/http"

	"coursehub/internal/domain"
)

// TokenPair — выданные сервером токены; access уходит в session.Store.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type registerReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

func (c *Client) Register(ctx context.Context, username, password string, role domain.Role) error {
	body := registerReq{Username: username, Password: password, Role: string(role)}
	return c.do(ctx, http.MethodPost, "/api/v1/auth/register", body, nil)
}

func (c *Client) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	var pair TokenPair
	body := loginReq{Username: username, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", body, &pair); err != nil {
		return nil, err
	}
	return &pair, nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var pair TokenPair
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/refresh", refreshReq{RefreshToken: refreshToken}, &pair); err != nil {
		return nil, err
	}
	return &pair, nil
}

func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/auth/logout", refreshReq{RefreshToken: refreshToken}, nil)
}
