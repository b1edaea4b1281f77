package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/mmeshcher/gestior/internal/api"
	"github.com/mmeshcher/gestior/internal/model"
	"github.com/mmeshcher/gestior/internal/resource"
	"github.com/mmeshcher/gestior/internal/session"
)

// AuthAPI описывает операции авторизации на сервере.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*model.AuthResponse, error)
	Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*model.User, error)
}

// AuthRepository управляет сессией пользователя.
type AuthRepository struct {
	api     AuthAPI
	session session.Store
	logger  *zap.Logger
}

// NewAuthRepository создаёт репозиторий авторизации.
func NewAuthRepository(a AuthAPI, store session.Store, logger *zap.Logger) *AuthRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthRepository{api: a, session: store, logger: logger}
}

// Login входит в систему и сохраняет токен и данные пользователя.
func (r *AuthRepository) Login(ctx context.Context, email, password string) resource.Stream[model.User] {
	return resource.Run(ctx, messageFor("login failed"), func(ctx context.Context) (model.User, error) {
		res, err := r.api.Login(ctx, email, password)
		if err != nil {
			return model.User{}, err
		}
		if err := r.persist(res); err != nil {
			return model.User{}, err
		}
		return res.User, nil
	})
}

// Register создаёт учётную запись и сразу открывает сессию.
func (r *AuthRepository) Register(ctx context.Context, req model.RegisterRequest) resource.Stream[model.User] {
	return resource.Run(ctx, messageFor("registration failed"), func(ctx context.Context) (model.User, error) {
		res, err := r.api.Register(ctx, req)
		if err != nil {
			return model.User{}, err
		}
		if err := r.persist(res); err != nil {
			return model.User{}, err
		}
		return res.User, nil
	})
}

// Logout отзывает токен на сервере и очищает локальную сессию.
// Результат всегда успешный: ошибка сервера только логируется. Сессия очищается
// и при уже отменённом ctx, тогда сервер не вызывается.
func (r *AuthRepository) Logout(ctx context.Context) resource.Stream[Done] {
	if ctx.Err() != nil {
		r.clearSession()
		return resource.Just[Done](resource.Success[Done]{})
	}

	// Буфер на оба состояния: отправка не зависит от читателя и от ctx.
	out := make(chan resource.Resource[Done], 2)
	go func() {
		defer close(out)
		out <- resource.Loading[Done]{}

		if r.session.LoggedIn() {
			if err := r.api.Logout(ctx); err != nil {
				r.logger.Warn("server logout failed", zap.Error(err))
			}
		}
		r.clearSession()
		out <- resource.Success[Done]{}
	}()
	return out
}

func (r *AuthRepository) clearSession() {
	if err := r.session.Clear(); err != nil {
		r.logger.Error("clear session", zap.Error(err))
	}
}

// CurrentUser обновляет профиль с сервера. Ответ 401 означает, что токен отозван, и сессия очищается.
func (r *AuthRepository) CurrentUser(ctx context.Context) resource.Stream[model.User] {
	return resource.Run(ctx, messageFor("could not load profile"), func(ctx context.Context) (model.User, error) {
		u, err := r.api.Me(ctx)
		if err != nil {
			var se *api.StatusError
			if errors.As(err, &se) && se.Code == http.StatusUnauthorized {
				if clearErr := r.session.Clear(); clearErr != nil {
					r.logger.Error("clear session", zap.Error(clearErr))
				}
			}
			return model.User{}, err
		}
		if err := r.session.SaveUser(cachedUser(*u)); err != nil {
			return model.User{}, fmt.Errorf("save user: %w", err)
		}
		return *u, nil
	})
}

// LoggedIn сообщает, есть ли сохранённый токен.
func (r *AuthRepository) LoggedIn() bool {
	return r.session.LoggedIn()
}

// CachedUser возвращает пользователя, сохранённого при входе.
func (r *AuthRepository) CachedUser() (session.CachedUser, bool) {
	return r.session.User()
}

func (r *AuthRepository) persist(res *model.AuthResponse) error {
	if err := r.session.SetToken(res.Token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	if err := r.session.SaveUser(cachedUser(res.User)); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func cachedUser(u model.User) session.CachedUser {
	return session.CachedUser{ID: u.ID, Name: u.Name, Email: u.Email}
}
