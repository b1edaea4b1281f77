package screen

import (
	"context"
	"strings"

	"github.com/mmeshcher/gestior/internal/model"
	"github.com/mmeshcher/gestior/internal/repository"
	"github.com/mmeshcher/gestior/internal/resource"
	"github.com/mmeshcher/gestior/internal/session"
	"github.com/mmeshcher/gestior/internal/validation"
)

// AuthState описывает состояние экранов входа и регистрации.
type AuthState struct {
	Loading bool
	Error   string
	// User заполняется после успешного входа; клиент переходит на главный экран.
	User *model.User
}

// LoginScreen реализует экран входа.
type LoginScreen struct {
	scope *Scope
	store *Store[AuthState]
	auth  AuthSource
}

func NewLoginScreen(scope *Scope, auth AuthSource) *LoginScreen {
	return &LoginScreen{scope: scope, store: NewStore(scope, AuthState{}), auth: auth}
}

func (s *LoginScreen) State() AuthState { return s.store.Get() }

func (s *LoginScreen) Observe(fn func(AuthState)) { s.store.Observe(fn) }

func (s *LoginScreen) ClearError() { clearAuthError(s.store) }

// Login проверяет поля и выполняет вход. Некорректный ввод сразу даёт ошибку без запроса.
func (s *LoginScreen) Login(email, password string) bool {
	email = strings.TrimSpace(email)
	if msg := validation.Credentials(email, password); msg != "" {
		setAuthError(s.store, msg)
		return false
	}
	if !beginAuth(s.store) {
		return false
	}
	return consume(s.scope, func(ctx context.Context) resource.Stream[model.User] {
		return s.auth.Login(ctx, email, password)
	}, foldAuth(s.store))
}

// RegisterForm содержит поля формы регистрации.
type RegisterForm struct {
	Name                 string
	Email                string
	Password             string
	PasswordConfirmation string
	BusinessName         string
	Phone                string
}

// RegisterScreen реализует экран регистрации.
type RegisterScreen struct {
	scope *Scope
	store *Store[AuthState]
	auth  AuthSource
}

func NewRegisterScreen(scope *Scope, auth AuthSource) *RegisterScreen {
	return &RegisterScreen{scope: scope, store: NewStore(scope, AuthState{}), auth: auth}
}

func (s *RegisterScreen) State() AuthState { return s.store.Get() }

func (s *RegisterScreen) Observe(fn func(AuthState)) { s.store.Observe(fn) }

func (s *RegisterScreen) ClearError() { clearAuthError(s.store) }

// Register проверяет форму и создаёт учётную запись.
func (s *RegisterScreen) Register(f RegisterForm) bool {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.BusinessName = strings.TrimSpace(f.BusinessName)

	if msg := validation.Registration(f.Name, f.Email, f.Password, f.PasswordConfirmation, f.Phone); msg != "" {
		setAuthError(s.store, msg)
		return false
	}
	if !beginAuth(s.store) {
		return false
	}

	req := model.RegisterRequest{
		Name:                 f.Name,
		Email:                f.Email,
		Password:             f.Password,
		PasswordConfirmation: f.PasswordConfirmation,
	}
	if f.BusinessName != "" {
		req.BusinessName = &f.BusinessName
	}
	if f.Phone != "" {
		req.Phone = &f.Phone
	}

	return consume(s.scope, func(ctx context.Context) resource.Stream[model.User] {
		return s.auth.Register(ctx, req)
	}, foldAuth(s.store))
}

func beginAuth(store *Store[AuthState]) bool {
	started := false
	store.Update(func(st AuthState) AuthState {
		if st.Loading {
			return st
		}
		started = true
		st.Loading = true
		st.Error = ""
		return st
	})
	return started
}

func foldAuth(store *Store[AuthState]) func(resource.Resource[model.User]) {
	return func(r resource.Resource[model.User]) {
		store.Update(func(st AuthState) AuthState {
			switch r := r.(type) {
			case resource.Loading[model.User]:
				st.Loading = true
			case resource.Success[model.User]:
				u := r.Value
				st.Loading = false
				st.User = &u
			case resource.Error[model.User]:
				st.Loading = false
				st.Error = r.Message
			}
			return st
		})
	}
}

func setAuthError(store *Store[AuthState], msg string) {
	store.Update(func(st AuthState) AuthState {
		st.Error = msg
		return st
	})
}

func clearAuthError(store *Store[AuthState]) { setAuthError(store, "") }

// DashboardState описывает состояние главного экрана.
type DashboardState struct {
	User       session.CachedUser
	HasUser    bool
	Refreshing bool
	LoggingOut bool
	// LoggedOut выставляется после выхода; клиент возвращается на экран входа.
	LoggedOut bool
	Error     string
}

// DashboardScreen реализует главный экран: профиль пользователя и выход.
type DashboardScreen struct {
	scope *Scope
	store *Store[DashboardState]
	auth  AuthSource
}

// NewDashboardScreen создаёт экран и заполняет его пользователем из сессии.
func NewDashboardScreen(scope *Scope, auth AuthSource) *DashboardScreen {
	u, ok := auth.CachedUser()
	return &DashboardScreen{
		scope: scope,
		store: NewStore(scope, DashboardState{User: u, HasUser: ok}),
		auth:  auth,
	}
}

func (s *DashboardScreen) State() DashboardState { return s.store.Get() }

func (s *DashboardScreen) Observe(fn func(DashboardState)) { s.store.Observe(fn) }

// Refresh обновляет профиль пользователя с сервера.
func (s *DashboardScreen) Refresh() bool {
	return consume(s.scope, func(ctx context.Context) resource.Stream[model.User] {
		return s.auth.CurrentUser(ctx)
	}, func(r resource.Resource[model.User]) {
		s.store.Update(func(st DashboardState) DashboardState {
			switch r := r.(type) {
			case resource.Loading[model.User]:
				st.Refreshing = true
			case resource.Success[model.User]:
				st.Refreshing = false
				st.User = session.CachedUser{ID: r.Value.ID, Name: r.Value.Name, Email: r.Value.Email}
				st.HasUser = true
			case resource.Error[model.User]:
				st.Refreshing = false
				st.Error = r.Message
			}
			return st
		})
	})
}

// Logout завершает сессию. Локальная сессия очищается даже при ошибке сервера.
func (s *DashboardScreen) Logout() bool {
	return consume(s.scope, func(ctx context.Context) resource.Stream[repository.Done] {
		return s.auth.Logout(ctx)
	}, func(r resource.Resource[repository.Done]) {
		s.store.Update(func(st DashboardState) DashboardState {
			switch r := r.(type) {
			case resource.Loading[repository.Done]:
				st.LoggingOut = true
			case resource.Success[repository.Done]:
				st.LoggingOut = false
				st.LoggedOut = true
				st.User = session.CachedUser{}
				st.HasUser = false
			case resource.Error[repository.Done]:
				st.LoggingOut = false
				st.Error = r.Message
			}
			return st
		})
	})
}
