// Package middleware содержит HTTP middleware справочного сервера gestior.
package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const (
	userIDKey contextKey = "userID"
	tokenKey  contextKey = "token"
)

// Authenticator определяет владельца токена доступа.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (int64, error)
}

// AuthMiddleware выполняет проверку токена из заголовка Authorization: Bearer.
type AuthMiddleware struct {
	auth         Authenticator
	unauthorized http.HandlerFunc
}

// NewAuthMiddleware создаёт middleware. unauthorized формирует ответ 401, по умолчанию простой текст.
func NewAuthMiddleware(auth Authenticator, unauthorized http.HandlerFunc) *AuthMiddleware {
	if unauthorized == nil {
		unauthorized = func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		}
	}
	return &AuthMiddleware{auth: auth, unauthorized: unauthorized}
}

// Middleware проверяет токен и добавляет идентификатор пользователя и сам токен в контекст запроса.
func (a *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := BearerToken(r)
		if !ok {
			a.unauthorized(w, r)
			return
		}

		userID, err := a.auth.Authenticate(r.Context(), token)
		if err != nil {
			a.unauthorized(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		ctx = context.WithValue(ctx, tokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// BearerToken извлекает токен из заголовка Authorization.
func BearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// GetUserIDFromContext извлекает идентификатор пользователя из контекста запроса.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// GetTokenFromContext извлекает токен доступа из контекста запроса.
func GetTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey).(string)
	return token, ok
}
