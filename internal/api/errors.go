package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrNetwork означает, что сервер недоступен: запрос не дошёл или ответ не был прочитан.
	ErrNetwork = errors.New("cannot reach server")
	// ErrDecode означает, что ответ сервера не удалось разобрать.
	ErrDecode = errors.New("decode response")
)

// StatusError описывает ответ сервера с кодом не из диапазона 2xx или с success=false.
type StatusError struct {
	Code    int
	Message string
	Fields  map[string][]string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("server error %d: %s", e.Code, http.StatusText(e.Code))
}

// FirstFieldError возвращает первое по алфавиту имени поля сообщение валидации сервера.
func (e *StatusError) FirstFieldError() string {
	if len(e.Fields) == 0 {
		return ""
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if msgs := e.Fields[name]; len(msgs) > 0 && strings.TrimSpace(msgs[0]) != "" {
			return msgs[0]
		}
	}
	return ""
}

// ValidationError описывает ошибку входных данных, обнаруженную до отправки запроса.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func newStatusError(code int, body []byte) *StatusError {
	se := &StatusError{Code: code}

	var env struct {
		Message string              `json:"message"`
		Errors  map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(body, &env); err == nil {
		se.Message = env.Message
		se.Fields = env.Errors
	}
	return se
}
