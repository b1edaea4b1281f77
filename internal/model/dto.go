package model

// Envelope описывает общий конверт ответа API для одиночного ресурса.
type Envelope[T any] struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    *T                  `json:"data,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// PageEnvelope описывает конверт ответа API для постраничного списка.
type PageEnvelope[T any] struct {
	Success     bool   `json:"success"`
	Message     string `json:"message,omitempty"`
	Data        []T    `json:"data"`
	CurrentPage int    `json:"current_page"`
	LastPage    int    `json:"last_page"`
	PerPage     int    `json:"per_page"`
	Total       int    `json:"total"`
}

// Page описывает одну полученную страницу списка.
type Page[T any] struct {
	Items       []T
	CurrentPage int
	LastPage    int
	PerPage     int
	Total       int
}

// HasMore сообщает, есть ли на сервере страницы после текущей.
func (p Page[T]) HasMore() bool {
	return p.CurrentPage < p.LastPage
}

// LoginRequest описывает тело запроса входа.
type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	DeviceName string `json:"device_name"`
}

// RegisterRequest описывает тело запроса регистрации.
type RegisterRequest struct {
	Name                 string  `json:"name"`
	Email                string  `json:"email"`
	Password             string  `json:"password"`
	PasswordConfirmation string  `json:"password_confirmation"`
	BusinessName         *string `json:"business_name,omitempty"`
	Phone                *string `json:"phone,omitempty"`
	DeviceName           string  `json:"device_name,omitempty"`
}

// AuthResponse содержит данные успешного входа или регистрации.
type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// CreateOrderItemRequest описывает позицию создаваемого заказа.
type CreateOrderItemRequest struct {
	ProductID int64    `json:"product_id"`
	Quantity  float64  `json:"quantity"`
	Price     *float64 `json:"price,omitempty"`
}

// CreateOrderRequest описывает тело запроса создания или изменения заказа.
type CreateOrderRequest struct {
	ClientID      *int64                   `json:"client_id,omitempty"`
	ClientName    string                   `json:"client_name,omitempty"`
	Notes         *string                  `json:"notes,omitempty"`
	Discount      *float64                 `json:"discount,omitempty"`
	PaymentMethod PaymentMethodKind        `json:"payment_method,omitempty"`
	Status        OrderStatus              `json:"status"`
	Items         []CreateOrderItemRequest `json:"items"`
}

// FinalizeOrderRequest описывает тело запроса завершения заказа.
type FinalizeOrderRequest struct {
	PaymentStatus   PaymentStatus `json:"payment_status,omitempty"`
	PaymentMethodID *int64        `json:"payment_method_id,omitempty"`
}

// CancelOrderRequest описывает тело запроса отмены заказа.
type CancelOrderRequest struct {
	Reason string `json:"reason,omitempty"`
}

// StockUpdateRequest описывает тело запроса изменения остатка.
type StockUpdateRequest struct {
	Stock  float64 `json:"stock"`
	Reason string  `json:"reason,omitempty"`
}

// CreateProductRequest описывает тело запроса создания или изменения товара.
type CreateProductRequest struct {
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
	IsActive    *bool    `json:"is_active,omitempty"`
}

// CreateClientRequest описывает тело запроса создания или изменения клиента.
type CreateClientRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Address        string `json:"address,omitempty"`
	DocumentType   string `json:"document_type,omitempty"`
	DocumentNumber string `json:"document_number,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

// ProductFilter содержит параметры выборки товаров.
type ProductFilter struct {
	Search   string
	Category string
	IsActive *bool
}

// OrderFilter содержит параметры выборки заказов.
type OrderFilter struct {
	Status   OrderStatus
	DateFrom string
	DateTo   string
}

// ClientFilter содержит параметры выборки клиентов.
type ClientFilter struct {
	Search string
}
