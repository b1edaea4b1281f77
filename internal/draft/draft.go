// Package draft реализует черновик заказа: изменяемую корзину позиций с пересчётом итогов.
package draft

import (
	"errors"
	"math"
	"strings"

	"github.com/mmeshcher/gestior/internal/model"
)

// ErrEmptyOrder возвращается при попытке оформить заказ без позиций.
var ErrEmptyOrder = errors.New("add at least one product to the order")

// ProductRef хранит снимок товара на момент добавления в корзину.
type ProductRef struct {
	ID    int64
	Name  string
	SKU   string
	Price float64
}

// RefOf делает снимок товара каталога.
func RefOf(p model.Product) ProductRef {
	return ProductRef{ID: p.ID, Name: p.Name, SKU: p.SKU, Price: p.Price}
}

// LineItem описывает позицию черновика.
type LineItem struct {
	Product  ProductRef
	Quantity float64
	Price    float64
	Subtotal float64
}

// Order описывает черновик заказа. Нулевое значение готово к использованию, способ оплаты по умолчанию наличные.
// Order не потокобезопасен: им владеет один экран.
type Order struct {
	clientID      *int64
	clientName    string
	notes         string
	discount      float64
	paymentMethod model.PaymentMethodKind
	items         []LineItem
	subtotal      float64
	total         float64
}

// New возвращает пустой черновик.
func New() *Order {
	return &Order{paymentMethod: model.PaymentCash}
}

// Add добавляет одну единицу товара.
func (o *Order) Add(p ProductRef) {
	o.AddProduct(p, 1)
}

// AddProduct добавляет quantity единиц товара. Если позиция уже есть, её количество увеличивается.
func (o *Order) AddProduct(p ProductRef, quantity float64) {
	if i := o.indexOf(p.ID); i >= 0 {
		if finite(quantity) {
			o.UpdateQuantity(p.ID, o.items[i].Quantity+quantity)
		}
		return
	}
	if !positive(quantity) {
		return
	}

	o.items = append(o.items, LineItem{
		Product:  p,
		Quantity: quantity,
		Price:    p.Price,
		Subtotal: p.Price * quantity,
	})
	o.recalculate()
}

// UpdateQuantity задаёт количество позиции. Количество ≤ 0 удаляет позицию,
// NaN и бесконечность тоже.
func (o *Order) UpdateQuantity(productID int64, quantity float64) {
	if !positive(quantity) {
		o.RemoveItem(productID)
		return
	}

	i := o.indexOf(productID)
	if i < 0 {
		return
	}

	o.items[i].Quantity = quantity
	o.items[i].Subtotal = o.items[i].Price * quantity
	o.recalculate()
}

// UpdatePrice переопределяет цену единицы позиции. Нижняя граница не проверяется,
// это позволяет дать скидку на конкретную позицию. NaN и бесконечность игнорируются.
func (o *Order) UpdatePrice(productID int64, price float64) {
	i := o.indexOf(productID)
	if i < 0 || !finite(price) {
		return
	}

	o.items[i].Price = price
	o.items[i].Subtotal = price * o.items[i].Quantity
	o.recalculate()
}

// RemoveItem удаляет позицию товара. Отсутствующая позиция игнорируется.
func (o *Order) RemoveItem(productID int64) {
	i := o.indexOf(productID)
	if i < 0 {
		return
	}

	o.items = append(o.items[:i], o.items[i+1:]...)
	o.recalculate()
}

// SetDiscount задаёт скидку на заказ. Отрицательные и нечисловые значения приводятся к нулю.
func (o *Order) SetDiscount(amount float64) {
	if !positive(amount) {
		amount = 0
	}
	o.discount = amount
	o.recalculate()
}

// SetClient привязывает заказ к клиенту. nil снимает привязку.
func (o *Order) SetClient(id *int64, name string) {
	o.clientID = id
	o.clientName = name
}

// SetPaymentMethod задаёт способ оплаты.
func (o *Order) SetPaymentMethod(m model.PaymentMethodKind) {
	o.paymentMethod = m
}

// SetNotes задаёт примечание к заказу.
func (o *Order) SetNotes(text string) {
	o.notes = text
}

// Reset возвращает черновик в исходное состояние.
func (o *Order) Reset() {
	*o = Order{paymentMethod: model.PaymentCash}
}

// Items возвращает копию позиций в порядке добавления.
func (o *Order) Items() []LineItem {
	out := make([]LineItem, len(o.items))
	copy(out, o.items)
	return out
}

// Len возвращает число позиций.
func (o *Order) Len() int { return len(o.items) }

// Subtotal возвращает сумму позиций без скидки.
func (o *Order) Subtotal() float64 { return o.subtotal }

// Total возвращает итог к оплате.
func (o *Order) Total() float64 { return o.total }

// Discount возвращает скидку на заказ.
func (o *Order) Discount() float64 { return o.discount }

// PaymentMethod возвращает выбранный способ оплаты.
func (o *Order) PaymentMethod() model.PaymentMethodKind {
	if o.paymentMethod == "" {
		return model.PaymentCash
	}
	return o.paymentMethod
}

// Snapshot хранит неизменяемое представление черновика для отрисовки.
type Snapshot struct {
	ClientID      *int64
	ClientName    string
	Notes         string
	Discount      float64
	PaymentMethod model.PaymentMethodKind
	Items         []LineItem
	Subtotal      float64
	Total         float64
}

// Snapshot возвращает копию текущего состояния черновика.
func (o *Order) Snapshot() Snapshot {
	var clientID *int64
	if o.clientID != nil {
		id := *o.clientID
		clientID = &id
	}
	return Snapshot{
		ClientID:      clientID,
		ClientName:    o.clientName,
		Notes:         o.notes,
		Discount:      o.discount,
		PaymentMethod: o.PaymentMethod(),
		Items:         o.Items(),
		Subtotal:      o.subtotal,
		Total:         o.total,
	}
}

// ToCreateRequest формирует тело запроса создания заказа.
// finalize=true создаёт завершённый заказ, иначе черновик. Для пустой корзины возвращает ErrEmptyOrder.
func (o *Order) ToCreateRequest(finalize bool) (model.CreateOrderRequest, error) {
	if len(o.items) == 0 {
		return model.CreateOrderRequest{}, ErrEmptyOrder
	}

	status := model.OrderStatusDraft
	if finalize {
		status = model.OrderStatusCompleted
	}

	items := make([]model.CreateOrderItemRequest, 0, len(o.items))
	for _, it := range o.items {
		price := it.Price
		items = append(items, model.CreateOrderItemRequest{
			ProductID: it.Product.ID,
			Quantity:  it.Quantity,
			Price:     &price,
		})
	}

	req := model.CreateOrderRequest{
		ClientID:      o.clientID,
		ClientName:    o.clientName,
		PaymentMethod: o.PaymentMethod(),
		Status:        status,
		Items:         items,
	}
	if notes := strings.TrimSpace(o.notes); notes != "" {
		req.Notes = &notes
	}
	if o.discount > 0 {
		discount := o.discount
		req.Discount = &discount
	}

	return req, nil
}

func (o *Order) indexOf(productID int64) int {
	for i := range o.items {
		if o.items[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

func (o *Order) recalculate() {
	var subtotal float64
	for _, it := range o.items {
		subtotal += it.Subtotal
	}
	o.subtotal = subtotal
	o.total = math.Max(0, subtotal-o.discount)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// positive сообщает, что v конечно и больше нуля.
func positive(v float64) bool {
	return v > 0 && finite(v)
}
