package api

import (
	"context"
	"net/http"

	"github.com/mmeshcher/gestior/internal/model"
)

// Login выполняет вход по email и паролю.
func (c *Client) Login(ctx context.Context, email, password string) (*model.AuthResponse, error) {
	return one[model.AuthResponse](ctx, c, request{
		method: http.MethodPost,
		path:   "/auth/login",
		body:   model.LoginRequest{Email: email, Password: password, DeviceName: c.deviceName},
		public: true,
	})
}

// Register создаёт учётную запись и сразу выдаёт токен.
func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error) {
	if req.DeviceName == "" {
		req.DeviceName = c.deviceName
	}
	return one[model.AuthResponse](ctx, c, request{
		method: http.MethodPost,
		path:   "/auth/register",
		body:   req,
		public: true,
	})
}

// Logout отзывает текущий токен на сервере.
func (c *Client) Logout(ctx context.Context) error {
	return call(ctx, c, request{method: http.MethodPost, path: "/auth/logout"})
}

// Me возвращает профиль текущего пользователя.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	return one[model.User](ctx, c, request{method: http.MethodGet, path: "/auth/me"})
}
