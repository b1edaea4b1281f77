package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/mmeshcher/gestior/internal/model"
	"github.com/mmeshcher/gestior/internal/server/service"
	"github.com/mmeshcher/gestior/internal/server/storage"
)

// stubService реализует только нужные тестам методы, остальные паникуют через nil-интерфейс.
type stubService struct {
	Service

	tokens map[string]int64

	loginResp *model.AuthResponse
	loginErr  error

	ordersPage   model.Page[model.Order]
	ordersParams storage.ListParams
	ordersFilter model.OrderFilter

	getOrderErr error

	createProductErr error

	finalizeReq model.FinalizeOrderRequest
	finalizeID  int64
}

func (s *stubService) Authenticate(ctx context.Context, token string) (int64, error) {
	id, ok := s.tokens[token]
	if !ok {
		return 0, service.ErrUnauthorized
	}
	return id, nil
}

func (s *stubService) Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error) {
	return s.loginResp, s.loginErr
}

func (s *stubService) ListOrders(ctx context.Context, userID int64, p storage.ListParams, f model.OrderFilter) (model.Page[model.Order], error) {
	s.ordersParams = p
	s.ordersFilter = f
	return s.ordersPage, nil
}

func (s *stubService) GetOrder(ctx context.Context, userID, id int64) (*model.Order, error) {
	if s.getOrderErr != nil {
		return nil, s.getOrderErr
	}
	return &model.Order{ID: id}, nil
}

func (s *stubService) CreateProduct(ctx context.Context, userID int64, req model.CreateProductRequest) (*model.Product, error) {
	return nil, s.createProductErr
}

func (s *stubService) Finalize(ctx context.Context, userID, id int64, req model.FinalizeOrderRequest) (*model.Order, error) {
	s.finalizeID = id
	s.finalizeReq = req
	return &model.Order{ID: id, Status: model.OrderStatusCompleted}, nil
}

func newTestHandler(t *testing.T, svc Service) *Handler {
	t.Helper()

	logger, err := zap.NewDevelopment()
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	return NewHandler(svc, logger)
}

func serve(t *testing.T, h *Handler, method, target, token string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	h.SetupRouter().ServeHTTP(w, req)
	return w.Result()
}

func decodeBody(t *testing.T, res *http.Response, v any) {
	t.Helper()
	defer res.Body.Close()
	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

func TestLogin_Success(t *testing.T) {
	svc := &stubService{loginResp: &model.AuthResponse{User: model.User{ID: 1, Name: "Ana"}, Token: "tok"}}
	h := newTestHandler(t, svc)

	res := serve(t, h, http.MethodPost, "/auth/login", "", model.LoginRequest{Email: "ana@example.com", Password: "secret1"})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}

	var env model.Envelope[model.AuthResponse]
	decodeBody(t, res, &env)
	if !env.Success || env.Data == nil || env.Data.Token != "tok" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	h := newTestHandler(t, &stubService{loginErr: service.ErrInvalidCredentials})

	res := serve(t, h, http.MethodPost, "/auth/login", "", model.LoginRequest{Email: "ana@example.com", Password: "secret1"})
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusUnauthorized)
	}

	var env model.Envelope[struct{}]
	decodeBody(t, res, &env)
	if env.Success || env.Message == "" {
		t.Fatalf("expected failure with message, got %+v", env)
	}
}

func TestLogin_BadBody(t *testing.T) {
	h := newTestHandler(t, &stubService{})

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()
	h.SetupRouter().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	h := newTestHandler(t, &stubService{tokens: map[string]int64{"good": 1}})

	for _, target := range []string{"/orders", "/products", "/clients", "/payment-methods", "/auth/me"} {
		res := serve(t, h, http.MethodGet, target, "bad", nil)
		res.Body.Close()
		if res.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s: status = %d, want %d", target, res.StatusCode, http.StatusUnauthorized)
		}
	}
}

func TestListOrders_PageEnvelopeAndQuery(t *testing.T) {
	svc := &stubService{
		tokens: map[string]int64{"good": 1},
		ordersPage: model.Page[model.Order]{
			Items:       []model.Order{{ID: 2}, {ID: 1}},
			CurrentPage: 2,
			LastPage:    3,
			PerPage:     2,
			Total:       6,
		},
	}
	h := newTestHandler(t, svc)

	res := serve(t, h, http.MethodGet, "/orders?page=2&per_page=2&status=draft&date_from=2024-03-01", "good", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}

	var env model.PageEnvelope[model.Order]
	decodeBody(t, res, &env)
	if len(env.Data) != 2 || env.CurrentPage != 2 || env.LastPage != 3 || env.Total != 6 {
		t.Fatalf("unexpected page envelope: %+v", env)
	}
	if svc.ordersParams != (storage.ListParams{Page: 2, PerPage: 2}) {
		t.Fatalf("list params = %+v", svc.ordersParams)
	}
	if svc.ordersFilter.Status != model.OrderStatusDraft || svc.ordersFilter.DateFrom != "2024-03-01" {
		t.Fatalf("filter = %+v", svc.ordersFilter)
	}
}

func TestListOrders_EmptyPageHasArray(t *testing.T) {
	h := newTestHandler(t, &stubService{tokens: map[string]int64{"good": 1}})

	res := serve(t, h, http.MethodGet, "/orders", "good", nil)
	defer res.Body.Close()

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(raw["data"]) != "[]" {
		t.Fatalf("data = %s, want []", raw["data"])
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "not found", err: storage.ErrNotFound, want: http.StatusNotFound},
		{name: "invalid state", err: service.ErrInvalidState, want: http.StatusConflict},
		{name: "unexpected", err: context.DeadlineExceeded, want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, &stubService{tokens: map[string]int64{"good": 1}, getOrderErr: tt.err})

			res := serve(t, h, http.MethodGet, "/orders/5", "good", nil)
			res.Body.Close()
			if res.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d", res.StatusCode, tt.want)
			}
		})
	}
}

func TestValidationErrorCarriesFields(t *testing.T) {
	svc := &stubService{
		tokens: map[string]int64{"good": 1},
		createProductErr: &service.ValidationError{
			Message: "the name field is required",
			Fields:  map[string][]string{"name": {"the name field is required"}},
		},
	}
	h := newTestHandler(t, svc)

	res := serve(t, h, http.MethodPost, "/products", "good", model.CreateProductRequest{})
	if res.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusUnprocessableEntity)
	}

	var env model.Envelope[struct{}]
	decodeBody(t, res, &env)
	if len(env.Errors["name"]) != 1 {
		t.Fatalf("errors = %+v", env.Errors)
	}
}

func TestInvalidIDIsNotFound(t *testing.T) {
	h := newTestHandler(t, &stubService{tokens: map[string]int64{"good": 1}})

	res := serve(t, h, http.MethodGet, "/orders/abc", "good", nil)
	res.Body.Close()
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusNotFound)
	}
}

func TestFinalize_BodyIsOptional(t *testing.T) {
	svc := &stubService{tokens: map[string]int64{"good": 1}}
	h := newTestHandler(t, svc)

	res := serve(t, h, http.MethodPost, "/orders/7/finalize", "good", nil)
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}
	if svc.finalizeID != 7 {
		t.Fatalf("finalize id = %d, want 7", svc.finalizeID)
	}

	pm := int64(2)
	res = serve(t, h, http.MethodPost, "/orders/7/finalize", "good", model.FinalizeOrderRequest{PaymentMethodID: &pm})
	res.Body.Close()
	if svc.finalizeReq.PaymentMethodID == nil || *svc.finalizeReq.PaymentMethodID != 2 {
		t.Fatalf("finalize request = %+v", svc.finalizeReq)
	}
}
