// Package repository связывает API-клиент с экранами: каждая операция возвращает поток
// состояний resource.Stream, а ошибки переводятся в сообщения для пользователя.
package repository

import (
	"context"
	"errors"

	"github.com/mmeshcher/gestior/internal/api"
	"github.com/mmeshcher/gestior/internal/draft"
)

// MsgNetwork показывается, когда сервер недоступен.
const MsgNetwork = "cannot reach server, check your internet connection"

// MsgCanceled показывается, если операция прервана закрытием экрана.
const MsgCanceled = "operation canceled"

// Done обозначает результат операций, у которых нет полезных данных.
type Done struct{}

// Message возвращает сообщение для пользователя: сообщение сервера, если оно есть,
// иначе fallback. Ошибки валидации и сети имеют собственные тексты.
func Message(err error, fallback string) string {
	var (
		submitErr     *SubmitError
		validationErr *api.ValidationError
		statusErr     *api.StatusError
	)

	switch {
	case errors.As(err, &submitErr):
		return submitErr.Error()
	case errors.Is(err, draft.ErrEmptyOrder):
		return draft.ErrEmptyOrder.Error()
	case errors.As(err, &validationErr):
		return validationErr.Message
	case errors.Is(err, context.Canceled):
		return MsgCanceled
	case errors.Is(err, api.ErrNetwork), errors.Is(err, context.DeadlineExceeded):
		return MsgNetwork
	case errors.As(err, &statusErr):
		if statusErr.Message != "" {
			return statusErr.Message
		}
		if msg := statusErr.FirstFieldError(); msg != "" {
			return msg
		}
		return fallback
	default:
		return fallback
	}
}

func messageFor(fallback string) func(error) string {
	return func(err error) string { return Message(err, fallback) }
}
