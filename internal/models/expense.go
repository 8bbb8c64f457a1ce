package models

import (
	"time"

	"github.com/google/uuid"
)

// Supported transaction types
const (
	TypeIncome     = "income"
	TypeExpense    = "expense"
	TypeInvestment = "investment"
	TypeWithdrawal = "withdrawal"
)

// Types lists the closed set of transaction types.
var Types = []string{TypeIncome, TypeExpense, TypeInvestment, TypeWithdrawal}

// IsValidType reports whether t is one of Types.
func IsValidType(t string) bool {
	switch t {
	case TypeIncome, TypeExpense, TypeInvestment, TypeWithdrawal:
		return true
	default:
		return false
	}
}

// SuggestedCategories are offered by the client; any other label is accepted too.
var SuggestedCategories = []string{
	"Food", "Transport", "Housing", "Utilities", "Health",
	"Entertainment", "Shopping", "Salary", "Investments", "Other",
}

// ExpenseDB is a single recorded money movement owned by one user.
// swagger:model Transaction
type ExpenseDB struct {
	ExpenseID uuid.UUID `json:"id" db:"expense_id"`     // Unique transaction identifier
	UserID    uuid.UUID `json:"user_id" db:"user_id"`   // Owner
	Title     string    `json:"title" db:"title"`       // Free text
	Amount    float64   `json:"amount" db:"amount"`     // Non-negative, currency agnostic
	Type      string    `json:"type" db:"type"`         // income, expense, investment or withdrawal
	Category  string    `json:"category" db:"category"` // Free-form label
	CreatedAt time.Time `json:"date" db:"created_at"`   // When the transaction happened
}

// ExpenseInput carries the caller supplied fields of a new transaction.
type ExpenseInput struct {
	Title    string
	Amount   *float64
	Type     string
	Category string
	Date     *time.Time
}
