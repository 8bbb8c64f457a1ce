package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-expense-tracker/internal/jwt"
	"github.com/sbilibin2017/gw-expense-tracker/internal/models"
	"github.com/sbilibin2017/gw-expense-tracker/internal/repositories"
	"github.com/sbilibin2017/gw-expense-tracker/internal/services"
	"github.com/sbilibin2017/gw-expense-tracker/internal/storage"
)

// LocalClient serves the API in process from a SQLite database.
// Errors are reported as *APIError with the same status and message the
// server would send.
type LocalClient struct {
	db       *sqlx.DB
	jwt      *jwt.JWT
	auth     *services.AuthService
	expenses *services.ExpenseService
}

// NewLocalClient opens (and migrates) the SQLite database at path.
// Tokens are signed with secret.
func NewLocalClient(ctx context.Context, path, secret string) (*LocalClient, error) {
	db, err := storage.OpenSQLite(ctx, path)
	if err != nil {
		return nil, err
	}

	j := jwt.New(jwt.WithSecretKey(secret))

	return &LocalClient{
		db:  db,
		jwt: j,
		auth: services.NewAuthService(
			repositories.NewUserReadRepository(db),
			repositories.NewUserWriteRepository(db, nil),
			j,
		),
		expenses: services.NewExpenseService(
			repositories.NewExpenseReadRepository(db),
			repositories.NewExpenseWriteRepository(db, nil),
			nil,
			nil,
		),
	}, nil
}

// Register creates an account.
func (c *LocalClient) Register(ctx context.Context, name, email, password string) error {
	err := c.auth.Register(ctx, name, email, password)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, services.ErrUserAlreadyExists):
		return &APIError{Status: http.StatusBadRequest, Message: "Email already exists"}
	case errors.Is(err, services.ErrValidation):
		return &APIError{Status: http.StatusBadRequest, Message: err.Error()}
	default:
		return err
	}
}

// Login exchanges credentials for a token.
func (c *LocalClient) Login(ctx context.Context, email, password string) (string, *models.PublicUser, error) {
	token, user, err := c.auth.Login(ctx, email, password)
	switch {
	case err == nil:
		return token, user, nil
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrUserDoesNotExist),
		errors.Is(err, services.ErrValidation):
		return "", nil, &APIError{Status: http.StatusBadRequest, Message: "Invalid email or password"}
	default:
		return "", nil, err
	}
}

// List returns every transaction of the token's owner.
func (c *LocalClient) List(ctx context.Context, token string) ([]models.ExpenseDB, error) {
	userID, err := c.authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	return c.expenses.List(ctx, userID)
}

// Create records a transaction.
func (c *LocalClient) Create(ctx context.Context, token string, input models.ExpenseInput) (*models.ExpenseDB, error) {
	userID, err := c.authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	expense, err := c.expenses.Create(ctx, userID, input)
	if errors.Is(err, services.ErrValidation) {
		return nil, &APIError{Status: http.StatusBadRequest, Message: err.Error()}
	}
	return expense, err
}

// Delete removes a transaction.
func (c *LocalClient) Delete(ctx context.Context, token string, expenseID uuid.UUID) error {
	userID, err := c.authenticate(ctx, token)
	if err != nil {
		return err
	}
	return c.expenses.Delete(ctx, userID, expenseID)
}

// Close closes the database.
func (c *LocalClient) Close() error {
	if err := c.db.Close(); err != nil {
		return fmt.Errorf("close local database: %w", err)
	}
	return nil
}

func (c *LocalClient) authenticate(ctx context.Context, token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, &APIError{Status: http.StatusUnauthorized, Message: "Missing token"}
	}
	userID, err := c.jwt.GetUserID(ctx, token)
	if err != nil {
		return uuid.Nil, &APIError{Status: http.StatusUnauthorized, Message: "Invalid token"}
	}
	return userID, nil
}
