package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-expense-tracker/internal/logger"
	"github.com/sbilibin2017/gw-expense-tracker/internal/models"
)

// HTTPClient calls the REST API of a running server.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient creates a client for the API rooted at baseURL,
// e.g. http://localhost:8080/api. Every call is bounded by timeout.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string             `json:"token"`
	User  *models.PublicUser `json:"user"`
}

type createRequest struct {
	Title    string     `json:"title"`
	Amount   *float64   `json:"amount"`
	Type     string     `json:"type"`
	Category string     `json:"category"`
	Date     *time.Time `json:"date,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Register creates an account.
func (c *HTTPClient) Register(ctx context.Context, name, email, password string) error {
	return c.do(ctx, http.MethodPost, "/auth/register", "", registerRequest{
		Name:     name,
		Email:    email,
		Password: password,
	}, nil)
}

// Login exchanges credentials for a token.
func (c *HTTPClient) Login(ctx context.Context, email, password string) (string, *models.PublicUser, error) {
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", loginRequest{
		Email:    email,
		Password: password,
	}, &resp); err != nil {
		return "", nil, err
	}
	return resp.Token, resp.User, nil
}

// List fetches every transaction of the token's owner.
func (c *HTTPClient) List(ctx context.Context, token string) ([]models.ExpenseDB, error) {
	var expenses []models.ExpenseDB
	if err := c.do(ctx, http.MethodGet, "/expenses", token, nil, &expenses); err != nil {
		return nil, err
	}
	return expenses, nil
}

// Create records a transaction.
func (c *HTTPClient) Create(ctx context.Context, token string, input models.ExpenseInput) (*models.ExpenseDB, error) {
	var expense models.ExpenseDB
	if err := c.do(ctx, http.MethodPost, "/expenses", token, createRequest{
		Title:    input.Title,
		Amount:   input.Amount,
		Type:     input.Type,
		Category: input.Category,
		Date:     input.Date,
	}, &expense); err != nil {
		return nil, err
	}
	return &expense, nil
}

// Delete removes a transaction.
func (c *HTTPClient) Delete(ctx context.Context, token string, expenseID uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/expenses/"+expenseID.String(), token, nil, nil)
}

// Close releases idle connections.
func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Log.Errorw("request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	logger.Log.Debugw("response",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var errResp errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
			apiErr.Message = errResp.Error
		}
		return apiErr
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
