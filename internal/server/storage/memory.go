package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mmeshcher/gestior/internal/model"
)

type owned[T any] struct {
	userID int64
	value  T
}

// MemoryStorage хранит данные в памяти процесса. Используется по умолчанию и в тестах.
type MemoryStorage struct {
	mu sync.RWMutex

	seq int64

	users        map[int64]*UserRecord
	usersByEmail map[string]int64
	tokens       map[string]int64

	products map[int64]owned[model.Product]
	clients  map[int64]owned[model.Client]
	orders   map[int64]owned[model.Order]

	paymentMethods []model.PaymentMethod
}

// NewMemoryStorage создаёт пустое хранилище со способами оплаты по умолчанию.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		users:          make(map[int64]*UserRecord),
		usersByEmail:   make(map[string]int64),
		tokens:         make(map[string]int64),
		products:       make(map[int64]owned[model.Product]),
		clients:        make(map[int64]owned[model.Client]),
		orders:         make(map[int64]owned[model.Order]),
		paymentMethods: append([]model.PaymentMethod(nil), DefaultPaymentMethods...),
	}
}

func (m *MemoryStorage) Close() error { return nil }

func (m *MemoryStorage) next() int64 {
	m.seq++
	return m.seq
}

func (m *MemoryStorage) CreateUser(ctx context.Context, u model.User, passwordHash []byte) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(u.Email)
	if _, ok := m.usersByEmail[key]; ok {
		return model.User{}, fmt.Errorf("%w: %s", ErrConflict, u.Email)
	}

	u.ID = m.next()
	if u.CreatedAt == "" {
		u.CreatedAt = time.Now().UTC().Format(TimeFormat)
	}
	m.users[u.ID] = &UserRecord{User: u, PasswordHash: append([]byte(nil), passwordHash...)}
	m.usersByEmail[key] = u.ID
	return u, nil
}

func (m *MemoryStorage) GetUserByEmail(ctx context.Context, email string) (*UserRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.usersByEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	rec := *m.users[id]
	return &rec, nil
}

func (m *MemoryStorage) GetUser(ctx context.Context, id int64) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u := rec.User
	return &u, nil
}

func (m *MemoryStorage) SaveToken(ctx context.Context, tokenHash string, userID int64, deviceName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[tokenHash] = userID
	return nil
}

func (m *MemoryStorage) UserIDByToken(ctx context.Context, tokenHash string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.tokens[tokenHash]
	if !ok {
		return 0, ErrNotFound
	}
	return id, nil
}

func (m *MemoryStorage) DeleteToken(ctx context.Context, tokenHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, tokenHash)
	return nil
}

func (m *MemoryStorage) ListProducts(ctx context.Context, userID int64, p ListParams, f model.ProductFilter) ([]model.Product, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var res []model.Product
	for _, rec := range m.products {
		if rec.userID == userID && matchesProduct(rec.value, f) {
			res = append(res, rec.value)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return paginate(res, p), len(res), nil
}

func (m *MemoryStorage) GetProduct(ctx context.Context, userID, id int64) (*model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.products[id]
	if !ok || rec.userID != userID {
		return nil, ErrNotFound
	}
	p := rec.value
	return &p, nil
}

func (m *MemoryStorage) SaveProduct(ctx context.Context, userID int64, p model.Product) (model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.SKU != "" {
		for id, rec := range m.products {
			if id != p.ID && rec.userID == userID && strings.EqualFold(rec.value.SKU, p.SKU) {
				return model.Product{}, fmt.Errorf("%w: sku %s", ErrConflict, p.SKU)
			}
		}
	}

	if p.ID == 0 {
		p.ID = m.next()
	} else if rec, ok := m.products[p.ID]; !ok || rec.userID != userID {
		return model.Product{}, ErrNotFound
	}

	p.IsLowStock = p.Stock <= p.MinStock
	m.products[p.ID] = owned[model.Product]{userID: userID, value: p}
	return p, nil
}

func (m *MemoryStorage) DeleteProduct(ctx context.Context, userID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.products[id]
	if !ok || rec.userID != userID {
		return ErrNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *MemoryStorage) AdjustStock(ctx context.Context, userID, productID int64, delta float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.products[productID]
	if !ok || rec.userID != userID {
		return ErrNotFound
	}
	rec.value.Stock += delta
	rec.value.IsLowStock = rec.value.Stock <= rec.value.MinStock
	m.products[productID] = rec
	return nil
}

func (m *MemoryStorage) ListClients(ctx context.Context, userID int64, p ListParams, f model.ClientFilter) ([]model.Client, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var res []model.Client
	for _, rec := range m.clients {
		if rec.userID == userID && matchesClient(rec.value, f) {
			res = append(res, rec.value)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return paginate(res, p), len(res), nil
}

func (m *MemoryStorage) GetClient(ctx context.Context, userID, id int64) (*model.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.clients[id]
	if !ok || rec.userID != userID {
		return nil, ErrNotFound
	}
	c := rec.value
	return &c, nil
}

func (m *MemoryStorage) SaveClient(ctx context.Context, userID int64, c model.Client) (model.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c.ID == 0 {
		c.ID = m.next()
	} else if rec, ok := m.clients[c.ID]; !ok || rec.userID != userID {
		return model.Client{}, ErrNotFound
	}
	m.clients[c.ID] = owned[model.Client]{userID: userID, value: c}
	return c, nil
}

func (m *MemoryStorage) DeleteClient(ctx context.Context, userID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.clients[id]
	if !ok || rec.userID != userID {
		return ErrNotFound
	}
	delete(m.clients, id)
	return nil
}

// ListOrders возвращает заказы от новых к старым.
func (m *MemoryStorage) ListOrders(ctx context.Context, userID int64, p ListParams, f model.OrderFilter) ([]model.Order, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var res []model.Order
	for _, rec := range m.orders {
		if rec.userID == userID && matchesOrder(rec.value, f) {
			res = append(res, copyOrder(rec.value))
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID > res[j].ID })
	return paginate(res, p), len(res), nil
}

func (m *MemoryStorage) GetOrder(ctx context.Context, userID, id int64) (*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.orders[id]
	if !ok || rec.userID != userID {
		return nil, ErrNotFound
	}
	o := copyOrder(rec.value)
	return &o, nil
}

// SaveOrder сохраняет заказ целиком вместе с позициями. Новому заказу присваиваются id и номер.
func (m *MemoryStorage) SaveOrder(ctx context.Context, userID int64, o model.Order) (model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if o.ID == 0 {
		o.ID = m.next()
		o.OrderNumber = OrderNumber(o.ID)
		if o.CreatedAt == "" {
			o.CreatedAt = time.Now().UTC().Format(TimeFormat)
		}
	} else if rec, ok := m.orders[o.ID]; !ok || rec.userID != userID {
		return model.Order{}, ErrNotFound
	}

	o = copyOrder(o)
	for i := range o.Items {
		if o.Items[i].ID == 0 {
			o.Items[i].ID = m.next()
		}
		o.Items[i].OrderID = o.ID
	}

	m.orders[o.ID] = owned[model.Order]{userID: userID, value: o}
	return copyOrder(o), nil
}

func (m *MemoryStorage) DeleteOrder(ctx context.Context, userID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.orders[id]
	if !ok || rec.userID != userID {
		return ErrNotFound
	}
	delete(m.orders, id)
	return nil
}

func (m *MemoryStorage) ListPaymentMethods(ctx context.Context) ([]model.PaymentMethod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.PaymentMethod(nil), m.paymentMethods...), nil
}

func copyOrder(o model.Order) model.Order {
	o.Items = append([]model.OrderItem(nil), o.Items...)
	if o.ClientID != nil {
		id := *o.ClientID
		o.ClientID = &id
	}
	return o
}
