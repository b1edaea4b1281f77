// Package config содержит логику чтения конфигурации клиента и справочного сервера gestior.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DotEnvFile задаёт необязательный файл с переменными окружения в рабочем каталоге.
const DotEnvFile = ".env"

const (
	defaultBaseURL    = "localhost:8080"
	defaultTimeout    = 30 * time.Second
	defaultPageSize   = 20
	defaultRunAddress = "localhost:8080"
)

// Client содержит параметры конфигурации CLI-клиента.
type Client struct {
	BaseURL       string        `env:"GESTIOR_BASE_URL"`
	Timeout       time.Duration `env:"GESTIOR_TIMEOUT"`
	SessionFile   string        `env:"GESTIOR_SESSION_FILE"`
	PageSize      int           `env:"GESTIOR_PAGE_SIZE"`
	DeviceName    string        `env:"GESTIOR_DEVICE_NAME"`
	Debug         bool          `env:"GESTIOR_DEBUG"`
	SubmitPerItem bool          `env:"GESTIOR_SUBMIT_PER_ITEM"`
}

// Server содержит параметры конфигурации справочного сервера.
type Server struct {
	RunAddress  string `env:"RUN_ADDRESS"`
	DatabaseURI string `env:"DATABASE_URI"`
}

// ParseClient считывает конфигурацию клиента из флагов и переменных окружения.
// Переменные окружения имеют приоритет над флагами. Возвращает аргументы после флагов.
func ParseClient(args []string) (*Client, []string, error) {
	if err := loadDotEnv(DotEnvFile); err != nil {
		return nil, nil, err
	}

	cfg := &Client{}
	fs := flag.NewFlagSet("gestior", flag.ContinueOnError)
	fs.StringVar(&cfg.BaseURL, "u", defaultBaseURL, "server base URL")
	fs.DurationVar(&cfg.Timeout, "t", defaultTimeout, "request timeout")
	fs.StringVar(&cfg.SessionFile, "s", defaultSessionFile(), "session file path")
	fs.IntVar(&cfg.PageSize, "p", defaultPageSize, "page size for lists")
	fs.StringVar(&cfg.DeviceName, "device", "", "device name sent on login")
	fs.BoolVar(&cfg.Debug, "v", false, "verbose logging")
	fs.BoolVar(&cfg.SubmitPerItem, "per-item", false, "submit orders item by item")

	if err := fs.Parse(args); err != nil {
		return nil, nil, fmt.Errorf("parse flags: %w", err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.SessionFile == "" {
		return nil, nil, errors.New("session file path is empty")
	}

	return cfg, fs.Args(), nil
}

// ParseServer считывает конфигурацию сервера из флагов и переменных окружения.
func ParseServer(args []string) (*Server, error) {
	if err := loadDotEnv(DotEnvFile); err != nil {
		return nil, err
	}

	cfg := &Server{}
	fs := flag.NewFlagSet("gestior-server", flag.ContinueOnError)
	fs.StringVar(&cfg.RunAddress, "a", defaultRunAddress, "address and port for HTTP server")
	fs.StringVar(&cfg.DatabaseURI, "d", "", "database URI, in-memory storage when empty")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = defaultRunAddress
	}

	return cfg, nil
}

// loadDotEnv загружает переменные из файла, не перезаписывая уже заданные. Отсутствие файла не ошибка.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".gestior", "session.json")
	}
	return filepath.Join(home, ".gestior", "session.json")
}
