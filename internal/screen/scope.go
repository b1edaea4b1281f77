// Package screen содержит держатели состояния экранов клиента. Каждый экран владеет
// своим состоянием, запускает операции в собственной области Scope и сворачивает
// потоки resource.Stream в снимки состояния.
package screen

import (
	"context"
	"sync"

	"github.com/mmeshcher/gestior/internal/resource"
)

// Scope задаёт область жизни операций экрана. Close отменяет все операции и ждёт их завершения;
// после Close новые операции не запускаются, а изменения состояния отбрасываются.
type Scope struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewScope создаёт область, дочернюю к parent.
func NewScope(parent context.Context) *Scope {
	ctx, cancel := context.WithCancel(parent)
	return &Scope{ctx: ctx, cancel: cancel}
}

// Context возвращает контекст области.
func (s *Scope) Context() context.Context { return s.ctx }

// Alive сообщает, что область ещё не закрыта.
func (s *Scope) Alive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && s.ctx.Err() == nil
}

// Launch запускает fn в отдельной горутине. Возвращает false, если область закрыта.
func (s *Scope) Launch(fn func(ctx context.Context)) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		fn(s.ctx)
	}()
	return true
}

// Wait ждёт завершения всех запущенных операций.
func (s *Scope) Wait() {
	s.wg.Wait()
}

// Close отменяет операции области и дожидается их завершения. Повторный вызов безопасен.
func (s *Scope) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}

// consume запускает операцию и передаёт каждое её состояние в apply.
func consume[T any](s *Scope, start func(ctx context.Context) resource.Stream[T], apply func(resource.Resource[T])) bool {
	return s.Launch(func(ctx context.Context) {
		for r := range start(ctx) {
			apply(r)
		}
	})
}

// Store хранит состояние экрана и заменяет его целиком при каждом изменении.
type Store[S any] struct {
	scope *Scope

	mu        sync.Mutex
	state     S
	observers []func(S)
}

// NewStore создаёт хранилище с начальным состоянием.
func NewStore[S any](scope *Scope, initial S) *Store[S] {
	return &Store[S]{scope: scope, state: initial}
}

// Get возвращает текущий снимок состояния.
func (s *Store[S]) Get() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Update атомарно применяет fn к состоянию и уведомляет наблюдателей.
// Возвращает false, если область экрана уже закрыта.
func (s *Store[S]) Update(fn func(S) S) bool {
	if !s.scope.Alive() {
		return false
	}

	s.mu.Lock()
	s.state = fn(s.state)
	next := s.state
	observers := s.observers
	s.mu.Unlock()

	for _, o := range observers {
		o(next)
	}
	return true
}

// Observe подписывает fn на изменения состояния.
func (s *Store[S]) Observe(fn func(S)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers[:len(s.observers):len(s.observers)], fn)
}
