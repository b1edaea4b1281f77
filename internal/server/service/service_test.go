package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mmeshcher/gestior/internal/model"
	"github.com/mmeshcher/gestior/internal/server/storage"
)

func TestHashPasswordDeterministic(t *testing.T) {
	a := hashPassword("ana@example.com", "secret1")
	b := hashPassword("ANA@example.com", "secret1")
	c := hashPassword("ana@example.com", "other")

	if string(a) != string(b) {
		t.Fatalf("hashPassword must be deterministic and case-insensitive in email, got %x and %x", a, b)
	}
	if string(a) == string(c) {
		t.Fatalf("different passwords must produce different hashes")
	}
}

// stubStorage подменяет отдельные методы хранилища поверх хранилища в памяти.
type stubStorage struct {
	*storage.MemoryStorage
	createUserErr error
}

func (s *stubStorage) CreateUser(ctx context.Context, u model.User, hash []byte) (model.User, error) {
	if s.createUserErr != nil {
		return model.User{}, s.createUserErr
	}
	return s.MemoryStorage.CreateUser(ctx, u, hash)
}

func newTestService(t *testing.T) (*Service, *storage.MemoryStorage) {
	t.Helper()
	store := storage.NewMemoryStorage()
	svc := NewService(store, nil)
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc, store
}

func register(t *testing.T, svc *Service) *model.AuthResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), model.RegisterRequest{
		Name:                 "Ana",
		Email:                "ana@example.com",
		Password:             "secret1",
		PasswordConfirmation: "secret1",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	return resp
}

func TestRegister_PropagatesStorageError(t *testing.T) {
	boom := errors.New("boom")
	svc := NewService(&stubStorage{MemoryStorage: storage.NewMemoryStorage(), createUserErr: boom}, nil)

	_, err := svc.Register(context.Background(), model.RegisterRequest{
		Name: "Ana", Email: "ana@example.com", Password: "secret1", PasswordConfirmation: "secret1",
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestRegister_DuplicateEmailIsValidationError(t *testing.T) {
	svc, _ := newTestService(t)
	register(t, svc)

	_, err := svc.Register(context.Background(), model.RegisterRequest{
		Name: "Ana", Email: "ana@example.com", Password: "secret1", PasswordConfirmation: "secret1",
	})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Fields["email"]) == 0 {
		t.Fatalf("expected email field error, got %+v", ve.Fields)
	}
}

func TestRegister_RejectsMismatchedPasswords(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Register(context.Background(), model.RegisterRequest{
		Name: "Ana", Email: "ana@example.com", Password: "secret1", PasswordConfirmation: "secret2",
	})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestLoginAuthenticateLogout(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	reg := register(t, svc)

	if _, err := svc.Login(ctx, model.LoginRequest{Email: "ana@example.com", Password: "wrong1"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, model.LoginRequest{Email: "nobody@example.com", Password: "secret1"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}

	resp, err := svc.Login(ctx, model.LoginRequest{Email: "Ana@Example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if resp.Token == "" || resp.Token == reg.Token {
		t.Fatalf("login must issue a fresh token, got %q", resp.Token)
	}

	id, err := svc.Authenticate(ctx, resp.Token)
	if err != nil || id != reg.User.ID {
		t.Fatalf("Authenticate = %d, %v; want %d", id, err, reg.User.ID)
	}

	if err := svc.Logout(ctx, resp.Token); err != nil {
		t.Fatalf("Logout error: %v", err)
	}
	if _, err := svc.Authenticate(ctx, resp.Token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("revoked token must be rejected, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, reg.Token); err != nil {
		t.Fatalf("other tokens must stay valid, got %v", err)
	}
}

func TestNewPage_LastPage(t *testing.T) {
	tests := []struct {
		total, perPage, want int
	}{
		{0, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{45, 10, 5},
	}
	for _, tt := range tests {
		p := NewPage([]int{}, tt.total, storage.ListParams{Page: 1, PerPage: tt.perPage})
		if p.LastPage != tt.want {
			t.Fatalf("LastPage(total=%d, per=%d) = %d, want %d", tt.total, tt.perPage, p.LastPage, tt.want)
		}
	}
}

func TestCreateProduct_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateProduct(ctx, 1, model.CreateProductRequest{Name: "  "}); err == nil {
		t.Fatalf("expected error for empty name")
	}

	p, err := svc.CreateProduct(ctx, 1, model.CreateProductRequest{Name: "Cafe", SKU: "C-1", Price: 5})
	if err != nil {
		t.Fatalf("CreateProduct error: %v", err)
	}
	if !p.IsActive {
		t.Fatalf("new product must be active by default")
	}

	_, err = svc.CreateProduct(ctx, 1, model.CreateProductRequest{Name: "Cafe 2", SKU: "C-1"})
	var ve *ValidationError
	if !errors.As(err, &ve) || len(ve.Fields["sku"]) == 0 {
		t.Fatalf("expected sku validation error, got %v", err)
	}
}
