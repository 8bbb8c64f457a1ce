package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-expense-tracker/internal/models"
)

// ExpenseReadRepository handles transaction read operations
type ExpenseReadRepository struct {
	db *sqlx.DB
}

func NewExpenseReadRepository(db *sqlx.DB) *ExpenseReadRepository {
	return &ExpenseReadRepository{db: db}
}

// ListByUserID returns every transaction owned by userID, most recent first.
func (r *ExpenseReadRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]models.ExpenseDB, error) {
	query := r.db.Rebind(`
		SELECT expense_id, user_id, title, amount, type, category, created_at
		FROM expenses
		WHERE user_id = ?
		ORDER BY created_at DESC, expense_id
	`)

	expenses := []models.ExpenseDB{}
	err := r.db.SelectContext(ctx, &expenses, query, userID)

	logQuery(query, []any{userID}, len(expenses), err)

	if err != nil {
		return nil, err
	}
	return expenses, nil
}

// ExpenseWriteRepository handles transaction write operations
type ExpenseWriteRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
}

func NewExpenseWriteRepository(db *sqlx.DB, txGetter TxGetter) *ExpenseWriteRepository {
	return &ExpenseWriteRepository{db: db, txGetter: txGetter}
}

// Save inserts a new transaction.
func (r *ExpenseWriteRepository) Save(ctx context.Context, expense *models.ExpenseDB) error {
	ex := executor(ctx, r.db, r.txGetter)
	query := ex.Rebind(`
		INSERT INTO expenses (expense_id, user_id, title, amount, type, category, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	args := []any{
		expense.ExpenseID, expense.UserID, expense.Title, expense.Amount,
		expense.Type, expense.Category, expense.CreatedAt,
	}

	res, err := ex.ExecContext(ctx, query, args...)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logQuery(query, args, rowsAffected, err)

	return err
}

// Delete removes the transaction only if userID owns it.
// It reports whether a row was removed.
func (r *ExpenseWriteRepository) Delete(ctx context.Context, userID, expenseID uuid.UUID) (bool, error) {
	ex := executor(ctx, r.db, r.txGetter)
	query := ex.Rebind(`
		DELETE FROM expenses
		WHERE expense_id = ? AND user_id = ?
	`)
	args := []any{expenseID, userID}

	res, err := ex.ExecContext(ctx, query, args...)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logQuery(query, args, rowsAffected, err)

	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}
