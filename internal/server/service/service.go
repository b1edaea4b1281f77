// Package service реализует бизнес-логику справочного сервера gestior.
package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmeshcher/gestior/internal/model"
	"github.com/mmeshcher/gestior/internal/server/storage"
	"github.com/mmeshcher/gestior/internal/validation"
)

var (
	// ErrInvalidCredentials возвращается при неверной паре email и пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized возвращается для неизвестного или отозванного токена.
	ErrUnauthorized = errors.New("unauthenticated")
	// ErrInvalidState возвращается, если операция недопустима для текущего статуса заказа.
	ErrInvalidState = errors.New("operation not allowed for order status")
)

// ValidationError описывает ошибку входных данных с сообщениями по полям.
type ValidationError struct {
	Message string
	Fields  map[string][]string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Message: msg, Fields: map[string][]string{field: {msg}}}
}

// Service содержит бизнес-логику справочного сервера.
type Service struct {
	store  storage.Storage
	logger *zap.Logger
	now    func() time.Time
}

// NewService создаёт сервис поверх указанного хранилища.
func NewService(store storage.Storage, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// Register создаёт пользователя и выдаёт ему токен.
func (s *Service) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error) {
	phone := ""
	if req.Phone != nil {
		phone = *req.Phone
	}
	if msg := validation.Registration(req.Name, req.Email, req.Password, req.PasswordConfirmation, phone); msg != "" {
		return nil, &ValidationError{Message: msg}
	}

	email := strings.TrimSpace(req.Email)
	u, err := s.store.CreateUser(ctx, model.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		BusinessName: req.BusinessName,
		Phone:        req.Phone,
	}, hashPassword(email, req.Password))
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, invalid("email", "the email has already been taken")
		}
		return nil, err
	}

	token, err := s.issueToken(ctx, u.ID, req.DeviceName)
	if err != nil {
		return nil, err
	}
	return &model.AuthResponse{User: u, Token: token}, nil
}

// Login проверяет email и пароль и выдаёт новый токен.
func (s *Service) Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error) {
	if msg := validation.Credentials(req.Email, req.Password); msg != "" {
		return nil, &ValidationError{Message: msg}
	}

	email := strings.TrimSpace(req.Email)
	rec, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if subtle.ConstantTimeCompare(hashPassword(email, req.Password), rec.PasswordHash) != 1 {
		return nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(ctx, rec.ID, req.DeviceName)
	if err != nil {
		return nil, err
	}
	return &model.AuthResponse{User: rec.User, Token: token}, nil
}

// Logout отзывает токен.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.store.DeleteToken(ctx, hashToken(token))
}

// Authenticate возвращает идентификатор владельца токена.
func (s *Service) Authenticate(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, ErrUnauthorized
	}
	id, err := s.store.UserIDByToken(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, ErrUnauthorized
		}
		return 0, err
	}
	return id, nil
}

// Me возвращает профиль пользователя.
func (s *Service) Me(ctx context.Context, userID int64) (*model.User, error) {
	u, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	return u, err
}

func (s *Service) issueToken(ctx context.Context, userID int64, device string) (string, error) {
	token := strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
	if err := s.store.SaveToken(ctx, hashToken(token), userID, device); err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

func hashPassword(email, password string) []byte {
	sum := sha256.Sum256([]byte(strings.ToLower(email) + ":" + password))
	return sum[:]
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// NewPage собирает страницу списка по выборке и общему числу записей.
func NewPage[T any](items []T, total int, p storage.ListParams) model.Page[T] {
	last := 1
	if p.PerPage > 0 && total > 0 {
		last = (total + p.PerPage - 1) / p.PerPage
	}
	return model.Page[T]{
		Items:       items,
		CurrentPage: p.Page,
		LastPage:    last,
		PerPage:     p.PerPage,
		Total:       total,
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func isConflict(err error) bool { return errors.Is(err, storage.ErrConflict) }
