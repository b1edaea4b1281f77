// Package handler содержит HTTP-обработчики API справочного сервера gestior.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/gestior/internal/model"
	"github.com/mmeshcher/gestior/internal/server/middleware"
	"github.com/mmeshcher/gestior/internal/server/service"
	"github.com/mmeshcher/gestior/internal/server/storage"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	middleware.Authenticator

	Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error)
	Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error)
	Logout(ctx context.Context, token string) error
	Me(ctx context.Context, userID int64) (*model.User, error)

	ListProducts(ctx context.Context, userID int64, p storage.ListParams, f model.ProductFilter) (model.Page[model.Product], error)
	GetProduct(ctx context.Context, userID, id int64) (*model.Product, error)
	CreateProduct(ctx context.Context, userID int64, req model.CreateProductRequest) (*model.Product, error)
	UpdateProduct(ctx context.Context, userID, id int64, req model.CreateProductRequest) (*model.Product, error)
	DeleteProduct(ctx context.Context, userID, id int64) error
	UpdateStock(ctx context.Context, userID, id int64, req model.StockUpdateRequest) (*model.Product, error)

	ListClients(ctx context.Context, userID int64, p storage.ListParams, f model.ClientFilter) (model.Page[model.Client], error)
	GetClient(ctx context.Context, userID, id int64) (*model.Client, error)
	CreateClient(ctx context.Context, userID int64, req model.CreateClientRequest) (*model.Client, error)
	UpdateClient(ctx context.Context, userID, id int64, req model.CreateClientRequest) (*model.Client, error)
	DeleteClient(ctx context.Context, userID, id int64) error

	ListOrders(ctx context.Context, userID int64, p storage.ListParams, f model.OrderFilter) (model.Page[model.Order], error)
	GetOrder(ctx context.Context, userID, id int64) (*model.Order, error)
	CreateOrder(ctx context.Context, userID int64, req model.CreateOrderRequest) (*model.Order, error)
	UpdateOrder(ctx context.Context, userID, id int64, req model.CreateOrderRequest) (*model.Order, error)
	DeleteOrder(ctx context.Context, userID, id int64) error
	AddItem(ctx context.Context, userID, orderID int64, req model.CreateOrderItemRequest) (*model.Order, error)
	RemoveItem(ctx context.Context, userID, orderID, itemID int64) (*model.Order, error)
	Finalize(ctx context.Context, userID, id int64, req model.FinalizeOrderRequest) (*model.Order, error)
	Cancel(ctx context.Context, userID, id int64, reason string) (*model.Order, error)

	ListPaymentMethods(ctx context.Context) ([]model.PaymentMethod, error)
}

// Handler реализует HTTP-обработчики API справочного сервера.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: middleware.NewAuthMiddleware(s, Unauthorized),
	}
}

// Unauthorized отвечает 401 в формате конверта API.
func Unauthorized(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusUnauthorized, model.Envelope[struct{}]{Message: "Unauthenticated."})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData[T any](w http.ResponseWriter, status int, data *T) {
	writeJSON(w, status, model.Envelope[T]{Success: true, Data: data})
}

func writePage[T any](w http.ResponseWriter, p model.Page[T]) {
	items := p.Items
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, model.PageEnvelope[T]{
		Success:     true,
		Data:        items,
		CurrentPage: p.CurrentPage,
		LastPage:    p.LastPage,
		PerPage:     p.PerPage,
		Total:       p.Total,
	})
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.Envelope[struct{}]{Success: status < http.StatusBadRequest, Message: msg})
}

// writeError переводит ошибку сервиса в HTTP-ответ.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusUnprocessableEntity, model.Envelope[struct{}]{Message: ve.Message, Errors: ve.Fields})
	case errors.Is(err, service.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, "The provided credentials are incorrect.")
	case errors.Is(err, service.ErrUnauthorized):
		Unauthorized(w, r)
	case errors.Is(err, storage.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Resource not found.")
	case errors.Is(err, service.ErrInvalidState), errors.Is(err, storage.ErrConflict):
		writeMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, context.Canceled):
		h.logger.Debug("request canceled", zap.String("path", r.URL.Path))
	default:
		h.logger.Error("request failed", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "Server error.")
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func userID(r *http.Request) int64 {
	id, _ := middleware.GetUserIDFromContext(r.Context())
	return id
}

// idParam читает числовой параметр пути. Некорректный идентификатор отвечает 404.
func idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeMessage(w, http.StatusNotFound, "Resource not found.")
		return 0, false
	}
	return id, true
}

func listParams(r *http.Request) storage.ListParams {
	q := r.URL.Query()
	p := storage.ListParams{Page: 1, PerPage: defaultPerPage}
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(q.Get("per_page")); err == nil && v > 0 {
		p.PerPage = min(v, maxPerPage)
	}
	return p
}
