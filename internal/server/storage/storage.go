// Package storage содержит хранилища данных справочного сервера: в памяти и в PostgreSQL.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mmeshcher/gestior/internal/model"
)

var (
	// ErrNotFound возвращается, если запись не найдена или принадлежит другому пользователю.
	ErrNotFound = errors.New("not found")
	// ErrConflict возвращается при нарушении уникальности (email пользователя, артикул товара).
	ErrConflict = errors.New("already exists")
)

// UserRecord содержит пользователя вместе с хэшем пароля.
type UserRecord struct {
	model.User
	PasswordHash []byte
}

// ListParams содержит параметры постраничной выборки.
type ListParams struct {
	Page    int
	PerPage int
}

// Offset возвращает смещение первой записи страницы.
func (p ListParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PerPage
}

// Storage описывает контракт доступа к данным, используемый сервисом.
// Все выборки ограничены данными пользователя userID.
type Storage interface {
	Close() error

	CreateUser(ctx context.Context, u model.User, passwordHash []byte) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*UserRecord, error)
	GetUser(ctx context.Context, id int64) (*model.User, error)

	SaveToken(ctx context.Context, tokenHash string, userID int64, deviceName string) error
	UserIDByToken(ctx context.Context, tokenHash string) (int64, error)
	DeleteToken(ctx context.Context, tokenHash string) error

	ListProducts(ctx context.Context, userID int64, p ListParams, f model.ProductFilter) ([]model.Product, int, error)
	GetProduct(ctx context.Context, userID, id int64) (*model.Product, error)
	SaveProduct(ctx context.Context, userID int64, p model.Product) (model.Product, error)
	DeleteProduct(ctx context.Context, userID, id int64) error
	AdjustStock(ctx context.Context, userID, productID int64, delta float64) error

	ListClients(ctx context.Context, userID int64, p ListParams, f model.ClientFilter) ([]model.Client, int, error)
	GetClient(ctx context.Context, userID, id int64) (*model.Client, error)
	SaveClient(ctx context.Context, userID int64, c model.Client) (model.Client, error)
	DeleteClient(ctx context.Context, userID, id int64) error

	ListOrders(ctx context.Context, userID int64, p ListParams, f model.OrderFilter) ([]model.Order, int, error)
	GetOrder(ctx context.Context, userID, id int64) (*model.Order, error)
	SaveOrder(ctx context.Context, userID int64, o model.Order) (model.Order, error)
	DeleteOrder(ctx context.Context, userID, id int64) error

	ListPaymentMethods(ctx context.Context) ([]model.PaymentMethod, error)
}

// DefaultPaymentMethods перечисляет способы оплаты, доступные в новом хранилище.
var DefaultPaymentMethods = []model.PaymentMethod{
	{ID: 1, Name: "Efectivo", Description: "cash", IsActive: true},
	{ID: 2, Name: "Tarjeta", Description: "card", IsActive: true, RequiresReference: true},
	{ID: 3, Name: "Transferencia", Description: "transfer", IsActive: true, RequiresReference: true},
}

// OrderNumber формирует номер заказа по его идентификатору.
func OrderNumber(id int64) string {
	return fmt.Sprintf("ORD-%06d", id)
}

// TimeFormat задаёт формат временных меток в ответах API.
const TimeFormat = time.RFC3339

func matchesProduct(p model.Product, f model.ProductFilter) bool {
	if f.IsActive != nil && p.IsActive != *f.IsActive {
		return false
	}
	if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		return strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.SKU), q) ||
			strings.Contains(strings.ToLower(p.Barcode), q)
	}
	return true
}

func matchesClient(c model.Client, f model.ClientFilter) bool {
	q := strings.ToLower(strings.TrimSpace(f.Search))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.Name), q) ||
		strings.Contains(strings.ToLower(c.Email), q) ||
		strings.Contains(strings.ToLower(c.Phone), q) ||
		strings.Contains(strings.ToLower(c.DocumentNumber), q)
}

// matchesOrder сравнивает дату создания заказа (YYYY-MM-DD) с границами фильтра включительно.
func matchesOrder(o model.Order, f model.OrderFilter) bool {
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	day := o.CreatedAt
	if len(day) >= 10 {
		day = day[:10]
	}
	if f.DateFrom != "" && day < f.DateFrom {
		return false
	}
	if f.DateTo != "" && day > f.DateTo {
		return false
	}
	return true
}

func paginate[T any](items []T, p ListParams) []T {
	from := p.Offset()
	if from >= len(items) {
		return []T{}
	}
	to := len(items)
	if p.PerPage > 0 && from+p.PerPage < to {
		to = from + p.PerPage
	}
	out := make([]T, to-from)
	copy(out, items[from:to])
	return out
}
