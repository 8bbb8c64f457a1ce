package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-expense-tracker/internal/models"
)

// UserReadRepository handles user read operations
type UserReadRepository struct {
	db *sqlx.DB
}

func NewUserReadRepository(db *sqlx.DB) *UserReadRepository {
	return &UserReadRepository{db: db}
}

// GetByEmail returns the user with email, or nil when there is none.
func (r *UserReadRepository) GetByEmail(ctx context.Context, email string) (*models.UserDB, error) {
	query := r.db.Rebind(`
		SELECT user_id, name, email, password_hash, created_at
		FROM users
		WHERE email = ?
		LIMIT 1
	`)

	var user models.UserDB
	err := r.db.GetContext(ctx, &user, query, email)

	logQuery(query, []any{email}, user.UserID, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UserWriteRepository handles user write operations
type UserWriteRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
}

func NewUserWriteRepository(db *sqlx.DB, txGetter TxGetter) *UserWriteRepository {
	return &UserWriteRepository{db: db, txGetter: txGetter}
}

// Save inserts a new user.
func (r *UserWriteRepository) Save(ctx context.Context, user *models.UserDB) error {
	ex := executor(ctx, r.db, r.txGetter)
	query := ex.Rebind(`
		INSERT INTO users (user_id, name, email, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	// The hash is not logged.
	args := []any{user.UserID, user.Name, user.Email, user.PasswordHash, user.CreatedAt}

	res, err := ex.ExecContext(ctx, query, args...)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logQuery(query, []any{user.UserID, user.Name, user.Email}, rowsAffected, err)

	return translateError(err)
}
