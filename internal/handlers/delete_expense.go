package handlers

//go:generate mockgen -source=delete_expense.go -destination=delete_expense_mock.go -package=handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-expense-tracker/internal/logger"
	"github.com/sbilibin2017/gw-expense-tracker/internal/middlewares"
)

// ExpenseDeleter defines the interface that the service must implement.
type ExpenseDeleter interface {
	Delete(ctx context.Context, userID, expenseID uuid.UUID) error
}

// NewDeleteExpenseHandler returns an HTTP handler that removes a transaction.
// Unknown ids and ids owned by other users are reported as deleted.
// @Summary Delete transaction
// @Description Deletes a transaction of the authenticated user
// @Tags expenses
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} handlers.MessageResponse "Transaction deleted"
// @Failure 400 {object} handlers.ErrorResponse "Malformed id"
// @Failure 401 {object} handlers.ErrorResponse "Missing or invalid token"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /expenses/{id} [delete]
func NewDeleteExpenseHandler(svc ExpenseDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewares.GetUserIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		expenseID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid transaction id")
			return
		}

		if err := svc.Delete(r.Context(), userID, expenseID); err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		writeJSON(w, http.StatusOK, MessageResponse{Message: "Transaction deleted"})
	}
}
