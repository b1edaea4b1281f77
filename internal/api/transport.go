package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// RequestIDHeader задаёт заголовок для сквозной корреляции запросов в логах.
const RequestIDHeader = "X-Request-ID"

// TokenSource отдаёт текущий токен доступа. Пустая строка означает отсутствие сессии.
type TokenSource interface {
	Token() string
}

type ctxKey int

const noAuthKey ctxKey = iota

// withoutAuth помечает запрос как публичный: токен к нему не прикладывается.
func withoutAuth(ctx context.Context) context.Context {
	return context.WithValue(ctx, noAuthKey, true)
}

func isPublic(ctx context.Context) bool {
	v, _ := ctx.Value(noAuthKey).(bool)
	return v
}

// AuthTransport добавляет к запросам заголовки Accept, Authorization и X-Request-ID.
// Токен читается из источника в момент отправки каждого запроса.
type AuthTransport struct {
	base   http.RoundTripper
	tokens TokenSource
}

// NewAuthTransport оборачивает base. nil base означает http.DefaultTransport.
func NewAuthTransport(base http.RoundTripper, tokens TokenSource) *AuthTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &AuthTransport{base: base, tokens: tokens}
}

func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("Accept", "application/json")

	if r.Header.Get(RequestIDHeader) == "" {
		r.Header.Set(RequestIDHeader, uuid.NewString())
	}

	if !isPublic(r.Context()) && t.tokens != nil {
		if token := t.tokens.Token(); token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
	}

	return t.base.RoundTrip(r)
}
