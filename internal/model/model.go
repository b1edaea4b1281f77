// Package model содержит доменные сущности и DTO API системы управления бизнесом gestior.
package model

// User представляет пользователя, от имени которого работает клиент.
type User struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	BusinessName   *string `json:"business_name,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	HierarchyLevel *int    `json:"hierarchy_level,omitempty"`
	CreatedAt      string  `json:"created_at,omitempty"`
}

// StockStatus описывает состояние складского остатка товара.
type StockStatus string

const (
	StockStatusInStock    StockStatus = "in_stock"
	StockStatusLowStock   StockStatus = "low_stock"
	StockStatusOutOfStock StockStatus = "out_of_stock"
)

// Product описывает товар каталога.
type Product struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	SKU         string   `json:"sku,omitempty"`
	Barcode     string   `json:"barcode,omitempty"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Unit        string   `json:"unit,omitempty"`
	Price       float64  `json:"price"`
	CostPrice   *float64 `json:"cost_price,omitempty"`
	Stock       float64  `json:"stock"`
	MinStock    float64  `json:"min_stock"`
	IsActive    bool     `json:"is_active"`
	IsLowStock  bool     `json:"is_low_stock"`
}

// AvailableForSale сообщает, можно ли продавать товар прямо сейчас.
func (p Product) AvailableForSale() bool {
	return p.IsActive && p.Stock > 0
}

// StockStatus вычисляет состояние остатка относительно минимального уровня.
func (p Product) StockStatus() StockStatus {
	switch {
	case p.Stock <= 0:
		return StockStatusOutOfStock
	case p.Stock <= p.MinStock:
		return StockStatusLowStock
	default:
		return StockStatusInStock
	}
}

// Client описывает покупателя.
type Client struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Address        string `json:"address,omitempty"`
	DocumentType   string `json:"document_type,omitempty"`
	DocumentNumber string `json:"document_number,omitempty"`
	Notes          string `json:"notes,omitempty"`
	IsActive       bool   `json:"is_active"`
}

// OrderStatus описывает статус заказа.
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "draft"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCanceled  OrderStatus = "canceled"
	OrderStatusScheduled OrderStatus = "scheduled"
)

// PaymentStatus описывает статус оплаты заказа.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusPartial  PaymentStatus = "partial"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// PaymentMethodKind описывает способ оплаты, выбранный при оформлении заказа.
type PaymentMethodKind string

const (
	PaymentCash     PaymentMethodKind = "cash"
	PaymentCard     PaymentMethodKind = "card"
	PaymentTransfer PaymentMethodKind = "transfer"
	PaymentMultiple PaymentMethodKind = "multiple"
)

// ParsePaymentMethodKind разбирает строковое представление способа оплаты.
func ParsePaymentMethodKind(s string) (PaymentMethodKind, bool) {
	switch k := PaymentMethodKind(s); k {
	case PaymentCash, PaymentCard, PaymentTransfer, PaymentMultiple:
		return k, true
	default:
		return "", false
	}
}

// Order описывает заказ в том виде, в котором его возвращает сервер.
type Order struct {
	ID            int64             `json:"id"`
	OrderNumber   string            `json:"order_number"`
	Status        OrderStatus       `json:"status"`
	PaymentStatus PaymentStatus     `json:"payment_status,omitempty"`
	PaymentMethod PaymentMethodKind `json:"payment_method,omitempty"`
	Subtotal      float64           `json:"subtotal"`
	Discount      float64           `json:"discount"`
	TaxAmount     float64           `json:"tax_amount"`
	Total         float64           `json:"total"`
	Notes         string            `json:"notes,omitempty"`
	CancelReason  string            `json:"cancel_reason,omitempty"`
	SoldAt        string            `json:"sold_at,omitempty"`
	ClientID      *int64            `json:"client_id,omitempty"`
	ClientName    string            `json:"client_name,omitempty"`
	Items         []OrderItem       `json:"items,omitempty"`
	CreatedAt     string            `json:"created_at,omitempty"`
}

// IsDraft сообщает, является ли заказ черновиком.
func (o Order) IsDraft() bool { return o.Status == OrderStatusDraft }

// IsCompleted сообщает, завершён ли заказ.
func (o Order) IsCompleted() bool { return o.Status == OrderStatusCompleted }

// IsCanceled сообщает, отменён ли заказ.
func (o Order) IsCanceled() bool { return o.Status == OrderStatusCanceled }

// OrderItem описывает позицию заказа.
type OrderItem struct {
	ID        int64   `json:"id"`
	OrderID   int64   `json:"order_id"`
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	Price     float64 `json:"price"`
	Subtotal  float64 `json:"subtotal"`
}

// PaymentMethod описывает способ оплаты, настроенный на сервере.
type PaymentMethod struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	Description       string `json:"description,omitempty"`
	IsActive          bool   `json:"is_active"`
	RequiresReference bool   `json:"requires_reference"`
}
