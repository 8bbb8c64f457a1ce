// Package client is the caller side of the expense tracker API.
//
// API has two implementations: HTTPClient talks to a running server and
// LocalClient runs the same services in process against a SQLite file.
// New picks one from Config.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/caarlos0/env/v8"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-expense-tracker/internal/models"
)

// Backends selectable with EXPENSE_CLIENT_BACKEND.
const (
	BackendHTTP  = "http"
	BackendLocal = "local"
)

// ErrUnknownBackend is returned by New for an unsupported Config.Backend.
var ErrUnknownBackend = errors.New("unknown client backend")

// API is everything the CLI needs from the tracker.
type API interface {
	Register(ctx context.Context, name, email, password string) error
	Login(ctx context.Context, email, password string) (string, *models.PublicUser, error)
	List(ctx context.Context, token string) ([]models.ExpenseDB, error)
	Create(ctx context.Context, token string, input models.ExpenseInput) (*models.ExpenseDB, error)
	Delete(ctx context.Context, token string, expenseID uuid.UUID) error
	Close() error
}

// Config selects and configures the API implementation.
type Config struct {
	Backend     string        `env:"EXPENSE_CLIENT_BACKEND" envDefault:"http"`
	BaseURL     string        `env:"EXPENSE_API_URL" envDefault:"http://localhost:8080/api"`
	Timeout     time.Duration `env:"EXPENSE_API_TIMEOUT" envDefault:"10s"`
	SQLitePath  string        `env:"EXPENSE_SQLITE_PATH" envDefault:"expenses.db"`
	JWTSecret   string        `env:"EXPENSE_JWT_SECRET_KEY" envDefault:"local-secret-key"`
	SessionPath string        `env:"EXPENSE_SESSION_PATH"`
	LogLevel    string        `env:"EXPENSE_LOG_LEVEL" envDefault:"warn"`
}

// LoadConfig reads Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse client config: %w", err)
	}
	return cfg, nil
}

// New returns the API implementation named by cfg.Backend.
func New(ctx context.Context, cfg Config) (API, error) {
	switch cfg.Backend {
	case BackendHTTP, "":
		return NewHTTPClient(cfg.BaseURL, cfg.Timeout), nil
	case BackendLocal:
		return NewLocalClient(ctx, cfg.SQLitePath, cfg.JWTSecret)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// APIError is a non-2xx answer from the tracker.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, http.StatusText(e.Status), e.Message)
}

// IsUnauthorized reports whether err means the session token was rejected.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}
