// Package api предоставляет HTTP-клиент REST API системы управления бизнесом.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmeshcher/gestior/internal/model"
)

// DefaultTimeout задаёт таймаут HTTP-запроса по умолчанию.
const DefaultTimeout = 30 * time.Second

// DefaultDeviceName передаётся серверу при входе, если имя устройства не задано.
const DefaultDeviceName = "gestior-cli"

// Client инкапсулирует HTTP-взаимодействие с сервером.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	deviceName string
}

// Options содержит необязательные параметры клиента.
type Options struct {
	Timeout    time.Duration
	Logger     *zap.Logger
	DeviceName string
	// Transport задаёт базовый транспорт под шлюзом авторизации. По умолчанию http.DefaultTransport.
	Transport http.RoundTripper
}

// NewClient создаёт клиент для сервера по адресу baseURL. Токен читается из tokens при каждом запросе.
func NewClient(baseURL string, tokens TokenSource, opts Options) *Client {
	base := strings.TrimRight(baseURL, "/")
	if base != "" && !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	device := opts.DeviceName
	if device == "" {
		device = DefaultDeviceName
	}

	return &Client{
		baseURL: base,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: NewAuthTransport(opts.Transport, tokens),
		},
		logger:     logger,
		deviceName: device,
	}
}

type request struct {
	method string
	path   string
	query  url.Values
	body   any
	public bool
}

// do выполняет запрос и декодирует тело ответа в out. Ответ не из диапазона 2xx возвращается как *StatusError.
func (c *Client) do(ctx context.Context, r request, out any) error {
	if c == nil || c.baseURL == "" {
		return fmt.Errorf("api client not configured")
	}

	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	if r.public {
		ctx = withoutAuth(ctx)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		c.logger.Debug("request failed",
			zap.String("method", r.method),
			zap.String("path", r.path),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("request done",
		zap.String("method", r.method),
		zap.String("path", r.path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
		zap.String("request_id", requestID),
	)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newStatusError(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

// one выполняет запрос, ожидающий конверт с одиночным ресурсом.
func one[T any](ctx context.Context, c *Client, r request) (*T, error) {
	var env model.Envelope[T]
	if err := c.do(ctx, r, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, &StatusError{Code: http.StatusOK, Message: env.Message, Fields: env.Errors}
	}
	if env.Data == nil {
		return nil, fmt.Errorf("%w: empty data", ErrDecode)
	}
	return env.Data, nil
}

// page выполняет запрос постраничного списка.
func page[T any](ctx context.Context, c *Client, r request) (model.Page[T], error) {
	var env model.PageEnvelope[T]
	if err := c.do(ctx, r, &env); err != nil {
		return model.Page[T]{}, err
	}
	if !env.Success {
		return model.Page[T]{}, &StatusError{Code: http.StatusOK, Message: env.Message}
	}

	items := env.Data
	if items == nil {
		items = []T{}
	}
	return model.Page[T]{
		Items:       items,
		CurrentPage: env.CurrentPage,
		LastPage:    env.LastPage,
		PerPage:     env.PerPage,
		Total:       env.Total,
	}, nil
}

// call выполняет запрос, у ответа которого важен только признак успеха. Пустое тело 2xx считается успехом.
func call(ctx context.Context, c *Client, r request) error {
	env := model.Envelope[json.RawMessage]{Success: true}
	if err := c.do(ctx, r, &env); err != nil {
		return err
	}
	if !env.Success {
		return &StatusError{Code: http.StatusOK, Message: env.Message, Fields: env.Errors}
	}
	return nil
}

func pageQuery(pageNum, perPage int) url.Values {
	q := url.Values{}
	if pageNum < 1 {
		pageNum = 1
	}
	q.Set("page", fmt.Sprint(pageNum))
	if perPage > 0 {
		q.Set("per_page", fmt.Sprint(perPage))
	}
	return q
}

func requireID(kind string, id int64) error {
	if id <= 0 {
		return &ValidationError{Message: fmt.Sprintf("invalid %s id: %d", kind, id)}
	}
	return nil
}

// IsNotFound сообщает, что сервер ответил 404.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}
