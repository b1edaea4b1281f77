// Package resource описывает состояние асинхронной операции: загрузка, успех или ошибка.
//
// Resource образует закрытый тип-сумму: реализовать его могут только Loading, Success и Error
// из этого пакета, поэтому type switch по трём вариантам исчерпывающий.
package resource

import (
	"context"
	"errors"
)

// Resource описывает одно состояние асинхронной операции.
type Resource[T any] interface {
	// Data возвращает данные, которые несёт состояние, если они есть.
	Data() (T, bool)

	sealed()
}

// Loading означает, что операция выполняется. Может нести устаревшие данные предыдущей загрузки.
type Loading[T any] struct {
	Stale *T
}

// Data возвращает устаревшие данные, если они переданы.
func (l Loading[T]) Data() (T, bool) {
	if l.Stale == nil {
		var zero T
		return zero, false
	}
	return *l.Stale, true
}

func (Loading[T]) sealed() {}

// Success означает, что операция завершилась успешно.
type Success[T any] struct {
	Value T
}

// Data возвращает результат операции.
func (s Success[T]) Data() (T, bool) {
	return s.Value, true
}

func (Success[T]) sealed() {}

// Error означает, что операция завершилась ошибкой. Message предназначено для показа пользователю.
type Error[T any] struct {
	Message string
	Stale   *T
	Err     error
}

// Data возвращает данные, сохранившиеся от предыдущего успешного состояния.
func (e Error[T]) Data() (T, bool) {
	if e.Stale == nil {
		var zero T
		return zero, false
	}
	return *e.Stale, true
}

func (Error[T]) sealed() {}

// IsTerminal сообщает, является ли состояние последним в последовательности.
func IsTerminal[T any](r Resource[T]) bool {
	switch r.(type) {
	case Success[T], Error[T]:
		return true
	default:
		return false
	}
}

// Partial описывает ошибку операции, успевшей получить часть результата.
// Run кладёт Value в Error.Stale, поэтому данные не теряются.
type Partial[T any] struct {
	Value T
	Err   error
}

func (p *Partial[T]) Error() string { return p.Err.Error() }

func (p *Partial[T]) Unwrap() error { return p.Err }

// Stream передаёт последовательность состояний одной операции: не более одного Loading,
// затем ровно одно терминальное состояние. Канал закрывается после него.
type Stream[T any] <-chan Resource[T]

// Func выполняет операцию и возвращает её результат.
type Func[T any] func(ctx context.Context) (T, error)

// MessageFunc превращает ошибку операции в сообщение для пользователя.
type MessageFunc func(err error) string

// Run запускает fn в отдельной горутине и возвращает поток её состояний.
// Отправка в поток прекращается при отмене ctx; канал закрывается в любом случае.
func Run[T any](ctx context.Context, message MessageFunc, fn Func[T]) Stream[T] {
	out := make(chan Resource[T], 1)

	go func() {
		defer close(out)

		if !send(ctx, out, Resource[T](Loading[T]{})) {
			return
		}

		value, err := fn(ctx)
		if err != nil {
			e := Error[T]{Message: message(err), Err: err}
			var partial *Partial[T]
			if errors.As(err, &partial) {
				stale := partial.Value
				e.Stale = &stale
			}
			send(ctx, out, Resource[T](e))
			return
		}

		send(ctx, out, Resource[T](Success[T]{Value: value}))
	}()

	return out
}

// Just возвращает поток из одного уже известного состояния.
func Just[T any](r Resource[T]) Stream[T] {
	out := make(chan Resource[T], 1)
	out <- r
	close(out)
	return out
}

// Last читает поток до конца и возвращает терминальное состояние.
// Если ctx отменён раньше, возвращается Error с ошибкой контекста.
func Last[T any](ctx context.Context, s Stream[T]) Resource[T] {
	var last Resource[T]
	for {
		select {
		case <-ctx.Done():
			return Error[T]{Message: ctx.Err().Error(), Err: ctx.Err()}
		case r, ok := <-s:
			if !ok {
				if last == nil {
					return Error[T]{Message: "operation produced no result"}
				}
				return last
			}
			last = r
		}
	}
}

func send[T any](ctx context.Context, out chan<- Resource[T], r Resource[T]) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case <-ctx.Done():
		return false
	case out <- r:
		return true
	}
}
