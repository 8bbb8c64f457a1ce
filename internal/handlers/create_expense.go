package handlers

//go:generate mockgen -source=create_expense.go -destination=create_expense_mock.go -package=handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-expense-tracker/internal/logger"
	"github.com/sbilibin2017/gw-expense-tracker/internal/middlewares"
	"github.com/sbilibin2017/gw-expense-tracker/internal/models"
	"github.com/sbilibin2017/gw-expense-tracker/internal/services"
)

// ExpenseCreator defines the interface that the service must implement.
type ExpenseCreator interface {
	Create(ctx context.Context, userID uuid.UUID, input models.ExpenseInput) (*models.ExpenseDB, error)
}

// CreateExpenseRequest represents the JSON body of a new transaction
// swagger:model CreateExpenseRequest
type CreateExpenseRequest struct {
	// Title
	// required: true
	// default: Coffee
	Title string `json:"title"`

	// Non-negative amount
	// required: true
	// default: 4.5
	Amount *float64 `json:"amount"`

	// One of income, expense, investment, withdrawal
	// required: true
	// default: expense
	Type string `json:"type"`

	// Free-form category
	// default: Food
	Category string `json:"category"`

	// Optional timestamp (RFC 3339); server time is used when absent
	Date *time.Time `json:"date,omitempty"`
}

// NewCreateExpenseHandler returns an HTTP handler that records a transaction.
// @Summary Create transaction
// @Description Records a transaction owned by the authenticated user
// @Tags expenses
// @Accept json
// @Produce json
// @Param createExpenseRequest body handlers.CreateExpenseRequest true "Transaction"
// @Success 200 {object} models.ExpenseDB "Created transaction"
// @Failure 400 {object} handlers.ErrorResponse "Invalid request"
// @Failure 401 {object} handlers.ErrorResponse "Missing or invalid token"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /expenses [post]
func NewCreateExpenseHandler(svc ExpenseCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewares.GetUserIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req CreateExpenseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		expense, err := svc.Create(r.Context(), userID, models.ExpenseInput{
			Title:    req.Title,
			Amount:   req.Amount,
			Type:     req.Type,
			Category: req.Category,
			Date:     req.Date,
		})
		if err != nil {
			switch {
			case errors.Is(err, services.ErrValidation):
				writeError(w, http.StatusBadRequest, err.Error())
			default:
				logger.Log.Errorw("internal server error", "err", err)
				writeError(w, http.StatusInternalServerError, "Internal server error")
			}
			return
		}

		writeJSON(w, http.StatusOK, expense)
	}
}
