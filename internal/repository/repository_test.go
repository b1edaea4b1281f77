package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/gestior/internal/api"
	"github.com/mmeshcher/gestior/internal/draft"
	"github.com/mmeshcher/gestior/internal/model"
	"github.com/mmeshcher/gestior/internal/resource"
	"github.com/mmeshcher/gestior/internal/session"
)

type stubAuthAPI struct {
	loginRes  *model.AuthResponse
	loginErr  error
	logoutErr error
	me        *model.User
	meErr     error

	logoutCalls int
}

func (s *stubAuthAPI) Login(ctx context.Context, email, password string) (*model.AuthResponse, error) {
	return s.loginRes, s.loginErr
}

func (s *stubAuthAPI) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error) {
	return s.loginRes, s.loginErr
}

func (s *stubAuthAPI) Logout(ctx context.Context) error {
	s.logoutCalls++
	return s.logoutErr
}

func (s *stubAuthAPI) Me(ctx context.Context) (*model.User, error) {
	return s.me, s.meErr
}

func last[T any](t *testing.T, s resource.Stream[T]) resource.Resource[T] {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return resource.Last(ctx, s)
}

func TestLogin_PersistsSession(t *testing.T) {
	store := session.NewMemoryStore()
	stub := &stubAuthAPI{loginRes: &model.AuthResponse{
		User:  model.User{ID: 4, Name: "Ana", Email: "ana@example.com"},
		Token: "tok",
	}}
	repo := NewAuthRepository(stub, store, nil)

	r := last(t, repo.Login(context.Background(), "ana@example.com", "secret1"))
	success, ok := r.(resource.Success[model.User])
	require.True(t, ok, "got %T", r)
	assert.Equal(t, int64(4), success.Value.ID)

	assert.Equal(t, "tok", store.Token())
	u, ok := store.User()
	require.True(t, ok)
	assert.Equal(t, session.CachedUser{ID: 4, Name: "Ana", Email: "ana@example.com"}, u)
}

func TestLogin_ServerMessage(t *testing.T) {
	store := session.NewMemoryStore()
	stub := &stubAuthAPI{loginErr: &api.StatusError{Code: http.StatusUnauthorized, Message: "invalid credentials"}}
	repo := NewAuthRepository(stub, store, nil)

	r := last(t, repo.Login(context.Background(), "a@b.co", "secret1"))
	e, ok := r.(resource.Error[model.User])
	require.True(t, ok, "got %T", r)
	assert.Equal(t, "invalid credentials", e.Message)
	assert.False(t, store.LoggedIn())
}

func TestLogin_NetworkError(t *testing.T) {
	stub := &stubAuthAPI{loginErr: fmt.Errorf("%w: dial tcp: refused", api.ErrNetwork)}
	repo := NewAuthRepository(stub, session.NewMemoryStore(), nil)

	r := last(t, repo.Login(context.Background(), "a@b.co", "secret1"))
	e, ok := r.(resource.Error[model.User])
	require.True(t, ok, "got %T", r)
	assert.Equal(t, MsgNetwork, e.Message)
}

func TestLogout_AlwaysSucceedsAndClears(t *testing.T) {
	store := session.NewMemoryStore()
	require.NoError(t, store.SetToken("tok"))
	require.NoError(t, store.SaveUser(session.CachedUser{ID: 1}))

	stub := &stubAuthAPI{logoutErr: fmt.Errorf("%w: timeout", api.ErrNetwork)}
	repo := NewAuthRepository(stub, store, nil)

	r := last(t, repo.Logout(context.Background()))
	_, ok := r.(resource.Success[Done])
	require.True(t, ok, "logout must succeed, got %T", r)

	assert.Equal(t, 1, stub.logoutCalls)
	assert.False(t, store.LoggedIn())
	_, has := store.User()
	assert.False(t, has)
	assert.Equal(t, session.RouteLogin, session.InitialRoute(store))
}

func TestLogout_CanceledContextStillClears(t *testing.T) {
	store := session.NewMemoryStore()
	require.NoError(t, store.SetToken("tok"))
	require.NoError(t, store.SaveUser(session.CachedUser{ID: 1, Name: "Ana"}))

	stub := &stubAuthAPI{}
	repo := NewAuthRepository(stub, store, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := repo.Logout(ctx)
	assert.False(t, store.LoggedIn(), "session is cleared before the stream is read")
	assert.Empty(t, store.Token())

	r := last(t, s)
	_, ok := r.(resource.Success[Done])
	require.True(t, ok, "logout must succeed, got %T", r)
	assert.Equal(t, 0, stub.logoutCalls, "server is not called with a canceled context")
	assert.Equal(t, session.RouteLogin, session.InitialRoute(store))
}

func TestLogout_UnreadStreamStillClears(t *testing.T) {
	store := session.NewMemoryStore()
	require.NoError(t, store.SetToken("tok"))

	stub := &stubAuthAPI{}
	repo := NewAuthRepository(stub, store, nil)

	s := repo.Logout(context.Background())
	require.Eventually(t, func() bool { return !store.LoggedIn() }, time.Second, 5*time.Millisecond)

	var states []resource.Resource[Done]
	for r := range s {
		states = append(states, r)
	}
	require.Len(t, states, 2)
	assert.IsType(t, resource.Success[Done]{}, states[1])
}

func TestCurrentUser_UnauthorizedClearsSession(t *testing.T) {
	store := session.NewMemoryStore()
	require.NoError(t, store.SetToken("revoked"))

	stub := &stubAuthAPI{meErr: &api.StatusError{Code: http.StatusUnauthorized}}
	repo := NewAuthRepository(stub, store, nil)

	r := last(t, repo.CurrentUser(context.Background()))
	e, ok := r.(resource.Error[model.User])
	require.True(t, ok, "got %T", r)
	assert.Equal(t, "could not load profile", e.Message)
	assert.False(t, store.LoggedIn())
}

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"server message", &api.StatusError{Code: 422, Message: "stock is insufficient"}, "stock is insufficient"},
		{"field error", &api.StatusError{Code: 422, Fields: map[string][]string{"email": {"email taken"}}}, "email taken"},
		{"bare status", &api.StatusError{Code: 500}, "fallback"},
		{"network", fmt.Errorf("%w: eof", api.ErrNetwork), MsgNetwork},
		{"deadline", context.DeadlineExceeded, MsgNetwork},
		{"canceled", context.Canceled, MsgCanceled},
		{"validation", &api.ValidationError{Message: "invalid order id: 0"}, "invalid order id: 0"},
		{"empty order", draft.ErrEmptyOrder, draft.ErrEmptyOrder.Error()},
		{"unknown", errors.New("boom"), "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Message(tt.err, "fallback"))
		})
	}
}
