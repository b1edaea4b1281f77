// Package session хранит локальное состояние сессии: токен доступа и данные пользователя.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Route обозначает экран, с которого начинается работа клиента.
type Route string

const (
	RouteLogin     Route = "login"
	RouteDashboard Route = "dashboard"
)

// CachedUser содержит данные пользователя, сохранённые после входа.
type CachedUser struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Store описывает узкий интерфейс доступа к сессии.
type Store interface {
	Token() string
	SetToken(token string) error
	SaveUser(u CachedUser) error
	User() (CachedUser, bool)
	LoggedIn() bool
	Clear() error
}

// InitialRoute определяет стартовый экран по наличию токена.
func InitialRoute(s Store) Route {
	if s.LoggedIn() {
		return RouteDashboard
	}
	return RouteLogin
}

type state struct {
	Token string      `json:"auth_token,omitempty"`
	User  *CachedUser `json:"user,omitempty"`
}

// MemoryStore хранит сессию в памяти процесса.
type MemoryStore struct {
	mu sync.RWMutex
	st state
}

// NewMemoryStore создаёт пустое хранилище в памяти.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.Token
}

func (m *MemoryStore) SetToken(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.Token = token
	return nil
}

func (m *MemoryStore) SaveUser(u CachedUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.User = &u
	return nil
}

func (m *MemoryStore) User() (CachedUser, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.st.User == nil {
		return CachedUser{}, false
	}
	return *m.st.User, true
}

func (m *MemoryStore) LoggedIn() bool {
	return m.Token() != ""
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st = state{}
	return nil
}

// FileStore хранит сессию в JSON-файле с правами 0600.
// Запись атомарна: данные пишутся во временный файл и переименовываются.
type FileStore struct {
	path string

	mu sync.RWMutex
	st state
}

// OpenFileStore открывает файл сессии. Отсутствующий файл означает пустую сессию.
func OpenFileStore(path string) (*FileStore, error) {
	fs := &FileStore{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fs, nil
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}

	if len(data) == 0 {
		return fs, nil
	}
	if err := json.Unmarshal(data, &fs.st); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}

	return fs, nil
}

// Path возвращает путь к файлу сессии.
func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Token() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.st.Token
}

func (f *FileStore) SetToken(token string) error {
	return f.update(func(st *state) { st.Token = token })
}

func (f *FileStore) SaveUser(u CachedUser) error {
	return f.update(func(st *state) { st.User = &u })
}

func (f *FileStore) User() (CachedUser, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.st.User == nil {
		return CachedUser{}, false
	}
	return *f.st.User, true
}

func (f *FileStore) LoggedIn() bool {
	return f.Token() != ""
}

// Clear удаляет все данные сессии вместе с файлом.
func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.st = state{}
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

func (f *FileStore) update(fn func(st *state)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := f.st
	fn(&next)

	if err := f.write(next); err != nil {
		return err
	}
	f.st = next
	return nil
}

func (f *FileStore) write(st state) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}
