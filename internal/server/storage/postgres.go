package storage

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/mmeshcher/gestior/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStorage предоставляет доступ к данным в PostgreSQL.
// Денежные суммы хранятся в центах, количества и остатки в double precision.
type PostgresStorage struct {
	pool   *pgxpool.Pool
	delays []time.Duration
}

// NewPostgresStorage создаёт пул соединений и применяет миграции.
func NewPostgresStorage(dsn string) (*PostgresStorage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &PostgresStorage{
		pool:   pool,
		delays: []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second},
	}

	if err := s.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

func (s *PostgresStorage) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(s.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// withRetry повторяет транзакцию при конфликте сериализации, взаимной блокировке и обрыве соединения.
func (s *PostgresStorage) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for i := 0; i <= len(s.delays); i++ {
		err = fn()
		if err == nil || !retryable(err) || i == len(s.delays) {
			return err
		}

		t := time.NewTimer(s.delays[i])
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return err
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
	}

	return isConnectionError(err)
}

func isConnectionError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "connection reset by peer")
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func toCents(v float64) int64 { return int64(math.Round(v * 100)) }

func fromCents(c int64) float64 { return float64(c) / 100 }

func formatTime(t time.Time) string { return t.UTC().Format(TimeFormat) }

// Close закрывает пул соединений с БД.
func (s *PostgresStorage) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStorage) CreateUser(ctx context.Context, u model.User, passwordHash []byte) (model.User, error) {
	var createdAt time.Time
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (name, email, business_name, phone, hierarchy_level, password_hash)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`,
		u.Name, u.Email, u.BusinessName, u.Phone, u.HierarchyLevel, passwordHash,
	).Scan(&u.ID, &createdAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, fmt.Errorf("%w: %s", ErrConflict, u.Email)
		}
		return model.User{}, fmt.Errorf("create user: %w", err)
	}
	u.CreatedAt = formatTime(createdAt)
	return u, nil
}

const userColumns = `id, name, email, business_name, phone, hierarchy_level, created_at`

func scanUser(row pgx.Row, extra ...any) (*model.User, error) {
	var (
		u         model.User
		createdAt time.Time
	)
	dest := append([]any{&u.ID, &u.Name, &u.Email, &u.BusinessName, &u.Phone, &u.HierarchyLevel, &createdAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.CreatedAt = formatTime(createdAt)
	return &u, nil
}

func (s *PostgresStorage) GetUserByEmail(ctx context.Context, email string) (*UserRecord, error) {
	var hash []byte
	u, err := scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+`, password_hash FROM users WHERE lower(email) = lower($1)`, email,
	), &hash)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &UserRecord{User: *u, PasswordHash: hash}, nil
}

func (s *PostgresStorage) GetUser(ctx context.Context, id int64) (*model.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, err
}

func (s *PostgresStorage) SaveToken(ctx context.Context, tokenHash string, userID int64, deviceName string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO access_tokens (token_hash, user_id, device_name) VALUES ($1, $2, $3)`,
		tokenHash, userID, deviceName,
	)
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (s *PostgresStorage) UserIDByToken(ctx context.Context, tokenHash string) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `SELECT user_id FROM access_tokens WHERE token_hash = $1`, tokenHash).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("get token: %w", err)
	}
	return id, nil
}

func (s *PostgresStorage) DeleteToken(ctx context.Context, tokenHash string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM access_tokens WHERE token_hash = $1`, tokenHash); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

// where собирает условие WHERE с позиционными параметрами pgx.
type where struct {
	conds []string
	args  []any
}

func (w *where) add(cond string, args ...any) {
	for _, a := range args {
		w.args = append(w.args, a)
		cond = strings.Replace(cond, "?", fmt.Sprintf("$%d", len(w.args)), 1)
	}
	w.conds = append(w.conds, cond)
}

func (w *where) String() string { return strings.Join(w.conds, " AND ") }

// page добавляет LIMIT и OFFSET к запросу.
func (w *where) page(p ListParams) string {
	if p.PerPage <= 0 {
		return ""
	}
	w.args = append(w.args, p.PerPage, p.Offset())
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(w.args)-1, len(w.args))
}

func (s *PostgresStorage) count(ctx context.Context, table string, w *where) (int, error) {
	var total int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM `+table+` WHERE `+w.String(), w.args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return total, nil
}

const productColumns = `id, name, sku, barcode, description, category, unit,
	price_cents, cost_price_cents, stock, min_stock, is_active`

func scanProduct(row pgx.Row) (model.Product, error) {
	var (
		p         model.Product
		price     int64
		costPrice *int64
	)
	err := row.Scan(&p.ID, &p.Name, &p.SKU, &p.Barcode, &p.Description, &p.Category, &p.Unit,
		&price, &costPrice, &p.Stock, &p.MinStock, &p.IsActive)
	if err != nil {
		return model.Product{}, err
	}
	p.Price = fromCents(price)
	if costPrice != nil {
		v := fromCents(*costPrice)
		p.CostPrice = &v
	}
	p.IsLowStock = p.Stock <= p.MinStock
	return p, nil
}

func (s *PostgresStorage) ListProducts(ctx context.Context, userID int64, p ListParams, f model.ProductFilter) ([]model.Product, int, error) {
	w := &where{}
	w.add("user_id = ?", userID)
	if f.IsActive != nil {
		w.add("is_active = ?", *f.IsActive)
	}
	if f.Category != "" {
		w.add("lower(category) = lower(?)", f.Category)
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		like := "%" + q + "%"
		w.add("(name ILIKE ? OR sku ILIKE ? OR barcode ILIKE ?)", like, like, like)
	}

	total, err := s.count(ctx, "products", w)
	if err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE ` + w.String() + ` ORDER BY id`
	query += w.page(p)
	rows, err := s.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	res := []model.Product{}
	for rows.Next() {
		prod, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		res = append(res, prod)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows error: %w", err)
	}

	return res, total, nil
}

func (s *PostgresStorage) GetProduct(ctx context.Context, userID, id int64) (*model.Product, error) {
	p, err := scanProduct(s.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

func (s *PostgresStorage) SaveProduct(ctx context.Context, userID int64, p model.Product) (model.Product, error) {
	var costPrice *int64
	if p.CostPrice != nil {
		c := toCents(*p.CostPrice)
		costPrice = &c
	}

	var row pgx.Row
	if p.ID == 0 {
		row = s.pool.QueryRow(ctx,
			`INSERT INTO products (user_id, name, sku, barcode, description, category, unit,
			    price_cents, cost_price_cents, stock, min_stock, is_active)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			 RETURNING `+productColumns,
			userID, p.Name, p.SKU, p.Barcode, p.Description, p.Category, p.Unit,
			toCents(p.Price), costPrice, p.Stock, p.MinStock, p.IsActive,
		)
	} else {
		row = s.pool.QueryRow(ctx,
			`UPDATE products SET name = $3, sku = $4, barcode = $5, description = $6, category = $7, unit = $8,
			    price_cents = $9, cost_price_cents = $10, stock = $11, min_stock = $12, is_active = $13
			 WHERE id = $1 AND user_id = $2
			 RETURNING `+productColumns,
			p.ID, userID, p.Name, p.SKU, p.Barcode, p.Description, p.Category, p.Unit,
			toCents(p.Price), costPrice, p.Stock, p.MinStock, p.IsActive,
		)
	}

	saved, err := scanProduct(row)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return model.Product{}, ErrNotFound
		case isUniqueViolation(err):
			return model.Product{}, fmt.Errorf("%w: sku %s", ErrConflict, p.SKU)
		}
		return model.Product{}, fmt.Errorf("save product: %w", err)
	}
	return saved, nil
}

func (s *PostgresStorage) DeleteProduct(ctx context.Context, userID, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM products WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStorage) AdjustStock(ctx context.Context, userID, productID int64, delta float64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE products SET stock = stock + $3 WHERE id = $1 AND user_id = $2`,
		productID, userID, delta,
	)
	if err != nil {
		return fmt.Errorf("adjust stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const clientColumns = `id, name, email, phone, address, document_type, document_number, notes, is_active`

func scanClient(row pgx.Row) (model.Client, error) {
	var c model.Client
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address,
		&c.DocumentType, &c.DocumentNumber, &c.Notes, &c.IsActive)
	return c, err
}

func (s *PostgresStorage) ListClients(ctx context.Context, userID int64, p ListParams, f model.ClientFilter) ([]model.Client, int, error) {
	w := &where{}
	w.add("user_id = ?", userID)
	if q := strings.TrimSpace(f.Search); q != "" {
		like := "%" + q + "%"
		w.add("(name ILIKE ? OR email ILIKE ? OR phone ILIKE ? OR document_number ILIKE ?)", like, like, like, like)
	}

	total, err := s.count(ctx, "clients", w)
	if err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + clientColumns + ` FROM clients WHERE ` + w.String() + ` ORDER BY id`
	query += w.page(p)
	rows, err := s.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("select clients: %w", err)
	}
	defer rows.Close()

	res := []model.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan client: %w", err)
		}
		res = append(res, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows error: %w", err)
	}

	return res, total, nil
}

func (s *PostgresStorage) GetClient(ctx context.Context, userID, id int64) (*model.Client, error) {
	c, err := scanClient(s.pool.QueryRow(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	return &c, nil
}

func (s *PostgresStorage) SaveClient(ctx context.Context, userID int64, c model.Client) (model.Client, error) {
	var row pgx.Row
	if c.ID == 0 {
		row = s.pool.QueryRow(ctx,
			`INSERT INTO clients (user_id, name, email, phone, address, document_type, document_number, notes, is_active)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 RETURNING `+clientColumns,
			userID, c.Name, c.Email, c.Phone, c.Address, c.DocumentType, c.DocumentNumber, c.Notes, c.IsActive,
		)
	} else {
		row = s.pool.QueryRow(ctx,
			`UPDATE clients SET name = $3, email = $4, phone = $5, address = $6,
			    document_type = $7, document_number = $8, notes = $9, is_active = $10
			 WHERE id = $1 AND user_id = $2
			 RETURNING `+clientColumns,
			c.ID, userID, c.Name, c.Email, c.Phone, c.Address, c.DocumentType, c.DocumentNumber, c.Notes, c.IsActive,
		)
	}

	saved, err := scanClient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Client{}, ErrNotFound
		}
		return model.Client{}, fmt.Errorf("save client: %w", err)
	}
	return saved, nil
}

func (s *PostgresStorage) DeleteClient(ctx context.Context, userID, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const orderColumns = `id, order_number, status, payment_status, payment_method,
	subtotal_cents, discount_cents, tax_cents, total_cents, notes, cancel_reason,
	sold_at, client_id, client_name, created_at`

func scanOrder(row pgx.Row) (model.Order, error) {
	var (
		o                              model.Order
		status, paymentStatus, method  string
		subtotal, discount, tax, total int64
		soldAt                         *time.Time
		createdAt                      time.Time
	)
	err := row.Scan(&o.ID, &o.OrderNumber, &status, &paymentStatus, &method,
		&subtotal, &discount, &tax, &total, &o.Notes, &o.CancelReason,
		&soldAt, &o.ClientID, &o.ClientName, &createdAt)
	if err != nil {
		return model.Order{}, err
	}

	o.Status = model.OrderStatus(status)
	o.PaymentStatus = model.PaymentStatus(paymentStatus)
	o.PaymentMethod = model.PaymentMethodKind(method)
	o.Subtotal = fromCents(subtotal)
	o.Discount = fromCents(discount)
	o.TaxAmount = fromCents(tax)
	o.Total = fromCents(total)
	if soldAt != nil {
		o.SoldAt = formatTime(*soldAt)
	}
	o.CreatedAt = formatTime(createdAt)
	return o, nil
}

func (s *PostgresStorage) ListOrders(ctx context.Context, userID int64, p ListParams, f model.OrderFilter) ([]model.Order, int, error) {
	w := &where{}
	w.add("user_id = ?", userID)
	if f.Status != "" {
		w.add("status = ?", string(f.Status))
	}
	if f.DateFrom != "" {
		w.add("created_at::date >= ?::date", f.DateFrom)
	}
	if f.DateTo != "" {
		w.add("created_at::date <= ?::date", f.DateTo)
	}

	total, err := s.count(ctx, "orders", w)
	if err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + orderColumns + ` FROM orders WHERE ` + w.String() + ` ORDER BY id DESC`
	query += w.page(p)
	rows, err := s.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	res := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		res = append(res, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows error: %w", err)
	}

	return res, total, nil
}

func (s *PostgresStorage) GetOrder(ctx context.Context, userID, id int64) (*model.Order, error) {
	o, err := scanOrder(s.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	o.Items, err = s.orderItems(ctx, s.pool, o.ID)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (s *PostgresStorage) orderItems(ctx context.Context, q querier, orderID int64) ([]model.OrderItem, error) {
	rows, err := q.Query(ctx,
		`SELECT id, order_id, product_id, name, quantity, price_cents, subtotal_cents
		 FROM order_items WHERE order_id = $1 ORDER BY id`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("select order items: %w", err)
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var (
			it              model.OrderItem
			price, subtotal int64
		)
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.Quantity, &price, &subtotal); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		it.Price = fromCents(price)
		it.Subtotal = fromCents(subtotal)
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return items, nil
}

// SaveOrder сохраняет заказ и заменяет его позиции в одной транзакции.
func (s *PostgresStorage) SaveOrder(ctx context.Context, userID int64, o model.Order) (model.Order, error) {
	var saved model.Order
	err := s.withRetry(ctx, func() error {
		var err error
		saved, err = s.saveOrder(ctx, userID, o)
		return err
	})
	return saved, err
}

func (s *PostgresStorage) saveOrder(ctx context.Context, userID int64, o model.Order) (model.Order, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return model.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var soldAt *time.Time
	if o.SoldAt != "" {
		t, err := time.Parse(TimeFormat, o.SoldAt)
		if err != nil {
			return model.Order{}, fmt.Errorf("parse sold_at: %w", err)
		}
		soldAt = &t
	}

	args := []any{
		string(o.Status), string(o.PaymentStatus), string(o.PaymentMethod),
		toCents(o.Subtotal), toCents(o.Discount), toCents(o.TaxAmount), toCents(o.Total),
		o.Notes, o.CancelReason, soldAt, o.ClientID, o.ClientName,
	}

	var row pgx.Row
	if o.ID == 0 {
		row = tx.QueryRow(ctx,
			`INSERT INTO orders (user_id, status, payment_status, payment_method,
			    subtotal_cents, discount_cents, tax_cents, total_cents, notes, cancel_reason,
			    sold_at, client_id, client_name)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			 RETURNING `+orderColumns,
			append([]any{userID}, args...)...,
		)
	} else {
		row = tx.QueryRow(ctx,
			`UPDATE orders SET status = $3, payment_status = $4, payment_method = $5,
			    subtotal_cents = $6, discount_cents = $7, tax_cents = $8, total_cents = $9,
			    notes = $10, cancel_reason = $11, sold_at = $12, client_id = $13, client_name = $14
			 WHERE id = $1 AND user_id = $2
			 RETURNING `+orderColumns,
			append([]any{o.ID, userID}, args...)...,
		)
	}

	saved, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Order{}, ErrNotFound
		}
		return model.Order{}, fmt.Errorf("save order: %w", err)
	}

	if saved.OrderNumber == "" {
		saved.OrderNumber = OrderNumber(saved.ID)
		if _, err := tx.Exec(ctx, `UPDATE orders SET order_number = $2 WHERE id = $1`, saved.ID, saved.OrderNumber); err != nil {
			return model.Order{}, fmt.Errorf("set order number: %w", err)
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, saved.ID); err != nil {
		return model.Order{}, fmt.Errorf("clear order items: %w", err)
	}

	batch := &pgx.Batch{}
	for _, it := range o.Items {
		batch.Queue(
			`INSERT INTO order_items (order_id, product_id, name, quantity, price_cents, subtotal_cents)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			saved.ID, it.ProductID, it.Name, it.Quantity, toCents(it.Price), toCents(it.Subtotal),
		)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return model.Order{}, fmt.Errorf("insert order items: %w", err)
		}
	}

	saved.Items, err = s.orderItems(ctx, tx, saved.ID)
	if err != nil {
		return model.Order{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Order{}, fmt.Errorf("commit tx: %w", err)
	}

	return saved, nil
}

func (s *PostgresStorage) DeleteOrder(ctx context.Context, userID, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStorage) ListPaymentMethods(ctx context.Context) ([]model.PaymentMethod, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, description, is_active, requires_reference FROM payment_methods ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select payment methods: %w", err)
	}
	defer rows.Close()

	res := []model.PaymentMethod{}
	for rows.Next() {
		var m model.PaymentMethod
		if err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.IsActive, &m.RequiresReference); err != nil {
			return nil, fmt.Errorf("scan payment method: %w", err)
		}
		res = append(res, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return res, nil
}

var (
	_ Storage = (*PostgresStorage)(nil)
	_ Storage = (*MemoryStorage)(nil)
)
