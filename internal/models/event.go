package models

// Event names published for transaction changes.
const (
	EventExpenseCreated = "expense.created"
	EventExpenseDeleted = "expense.deleted"
)

// ExpenseEvent is the message published to the broker when a transaction changes.
type ExpenseEvent struct {
	EventID   string  `json:"event_id"`   // Unique event identifier
	Event     string  `json:"event"`      // expense.created or expense.deleted
	ExpenseID string  `json:"expense_id"` // Affected transaction
	UserID    string  `json:"user_id"`    // Owner of the transaction
	Amount    float64 `json:"amount"`     // Transaction amount, zero for deletes
	Type      string  `json:"type"`       // Transaction type, empty for deletes
	Timestamp int64   `json:"timestamp"`  // Unix seconds when the event was produced
}
