package handlers

//go:generate mockgen -source=list_expenses.go -destination=list_expenses_mock.go -package=handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-expense-tracker/internal/logger"
	"github.com/sbilibin2017/gw-expense-tracker/internal/middlewares"
	"github.com/sbilibin2017/gw-expense-tracker/internal/models"
)

// ExpenseLister defines the interface that the service must implement.
type ExpenseLister interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.ExpenseDB, error)
}

// NewListExpensesHandler returns an HTTP handler listing the caller's transactions.
// @Summary List transactions
// @Description Returns all transactions of the authenticated user, newest first
// @Tags expenses
// @Produce json
// @Success 200 {array} models.ExpenseDB "Transactions"
// @Failure 401 {object} handlers.ErrorResponse "Missing or invalid token"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /expenses [get]
func NewListExpensesHandler(svc ExpenseLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewares.GetUserIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		expenses, err := svc.List(r.Context(), userID)
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if expenses == nil {
			expenses = []models.ExpenseDB{}
		}

		writeJSON(w, http.StatusOK, expenses)
	}
}
