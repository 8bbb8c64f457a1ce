package services

//go:generate mockgen -source=expense.go -destination=expense_mock.go -package=services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-expense-tracker/internal/logger"
	"github.com/sbilibin2017/gw-expense-tracker/internal/models"
	"github.com/segmentio/kafka-go"
)

// ExpenseReader defines read operations for transactions.
type ExpenseReader interface {
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]models.ExpenseDB, error) // Owner's transactions, newest first
}

// ExpenseWriter defines write operations for transactions.
type ExpenseWriter interface {
	Save(ctx context.Context, expense *models.ExpenseDB) error            // Inserts a transaction
	Delete(ctx context.Context, userID, expenseID uuid.UUID) (bool, error) // Deletes an owned transaction
}

// ExpenseCache caches a user's full transaction list.
type ExpenseCache interface {
	Get(ctx context.Context, userID uuid.UUID) ([]models.ExpenseDB, error)        // Cached list or an error on miss
	Set(ctx context.Context, userID uuid.UUID, expenses []models.ExpenseDB) error // Stores the list
	Invalidate(ctx context.Context, userID uuid.UUID) error                       // Drops the list
}

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// CommitHook runs fn once the write bound to ctx is durable.
type CommitHook func(ctx context.Context, fn func(context.Context))

func runNow(ctx context.Context, fn func(context.Context)) {
	fn(ctx)
}

// ExpenseService implements list, create and delete of transactions for their owner.
type ExpenseService struct {
	reader      ExpenseReader
	writer      ExpenseWriter
	cache       ExpenseCache
	kafkaWriter KafkaWriter
	afterCommit CommitHook
	now         func() time.Time
}

// ExpenseOpt configures an ExpenseService.
type ExpenseOpt func(*ExpenseService)

// WithCommitHook defers cache invalidation and event publishing through hook.
func WithCommitHook(hook CommitHook) ExpenseOpt {
	return func(s *ExpenseService) {
		s.afterCommit = hook
	}
}

// NewExpenseService creates a new ExpenseService. cache and kafkaWriter may be nil.
func NewExpenseService(
	reader ExpenseReader,
	writer ExpenseWriter,
	cache ExpenseCache,
	kafkaWriter KafkaWriter,
	opts ...ExpenseOpt,
) *ExpenseService {
	s := &ExpenseService{
		reader:      reader,
		writer:      writer,
		cache:       cache,
		kafkaWriter: kafkaWriter,
		afterCommit: runNow,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns every transaction owned by userID, most recent first.
func (s *ExpenseService) List(ctx context.Context, userID uuid.UUID) ([]models.ExpenseDB, error) {
	if s.cache != nil {
		expenses, err := s.cache.Get(ctx, userID)
		if err == nil {
			return expenses, nil
		}
		logger.Log.Debugw("expense cache miss", "userID", userID, "error", err)
	}

	expenses, err := s.reader.ListByUserID(ctx, userID)
	if err != nil {
		logger.Log.Errorw("failed to list expenses", "userID", userID, "error", err)
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, expenses); err != nil {
			logger.Log.Warnw("failed to cache expenses", "userID", userID, "error", err)
		}
	}
	return expenses, nil
}

// normalizeExpense trims the input, lowercases its type and validates it.
func normalizeExpense(input models.ExpenseInput) (models.ExpenseInput, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Type = strings.ToLower(strings.TrimSpace(input.Type))
	input.Category = strings.TrimSpace(input.Category)

	switch {
	case input.Title == "":
		return input, fmt.Errorf("%w: title is required", ErrValidation)
	case input.Amount == nil:
		return input, fmt.Errorf("%w: amount is required", ErrValidation)
	case *input.Amount < 0:
		return input, fmt.Errorf("%w: amount must not be negative", ErrValidation)
	case !models.IsValidType(input.Type):
		return input, fmt.Errorf("%w: type must be one of %s", ErrValidation, strings.Join(models.Types, ", "))
	}
	return input, nil
}

// Create stores a new transaction owned by userID.
// The timestamp is now unless the input carries a date.
func (s *ExpenseService) Create(ctx context.Context, userID uuid.UUID, input models.ExpenseInput) (*models.ExpenseDB, error) {
	input, err := normalizeExpense(input)
	if err != nil {
		return nil, err
	}

	createdAt := s.now()
	if input.Date != nil && !input.Date.IsZero() {
		createdAt = *input.Date
	}

	expense := &models.ExpenseDB{
		ExpenseID: uuid.New(),
		UserID:    userID,
		Title:     input.Title,
		Amount:    *input.Amount,
		Type:      input.Type,
		Category:  input.Category,
		CreatedAt: createdAt.UTC(),
	}

	if err := s.writer.Save(ctx, expense); err != nil {
		logger.Log.Errorw("failed to save expense", "userID", userID, "error", err)
		return nil, err
	}

	evt := models.ExpenseEvent{
		EventID:   uuid.NewString(),
		Event:     models.EventExpenseCreated,
		ExpenseID: expense.ExpenseID.String(),
		UserID:    userID.String(),
		Amount:    expense.Amount,
		Type:      expense.Type,
		Timestamp: s.now().Unix(),
	}
	s.afterCommit(ctx, func(ctx context.Context) {
		s.invalidate(ctx, userID)
		s.publish(ctx, evt)
	})

	return expense, nil
}

// Delete removes the transaction if userID owns it.
// Unknown ids and ids owned by someone else are not an error.
func (s *ExpenseService) Delete(ctx context.Context, userID, expenseID uuid.UUID) error {
	deleted, err := s.writer.Delete(ctx, userID, expenseID)
	if err != nil {
		logger.Log.Errorw("failed to delete expense", "userID", userID, "expenseID", expenseID, "error", err)
		return err
	}
	if !deleted {
		logger.Log.Infow("nothing to delete", "userID", userID, "expenseID", expenseID)
		return nil
	}

	evt := models.ExpenseEvent{
		EventID:   uuid.NewString(),
		Event:     models.EventExpenseDeleted,
		ExpenseID: expenseID.String(),
		UserID:    userID.String(),
		Timestamp: s.now().Unix(),
	}
	s.afterCommit(ctx, func(ctx context.Context) {
		s.invalidate(ctx, userID)
		s.publish(ctx, evt)
	})
	return nil
}

func (s *ExpenseService) invalidate(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		logger.Log.Warnw("failed to invalidate expense cache", "userID", userID, "error", err)
	}
}

// publish sends evt to Kafka. Failures are logged, never returned.
func (s *ExpenseService) publish(ctx context.Context, evt models.ExpenseEvent) {
	if s.kafkaWriter == nil {
		logger.Log.Debugw("Kafka writer not configured, skipping publishing", "event_id", evt.EventID)
		return
	}

	data, err := json.Marshal(evt)
	if err != nil {
		logger.Log.Errorw("Failed to marshal event for Kafka", "event_id", evt.EventID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(evt.UserID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(evt.Event)},
		},
	}

	if err := s.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("Failed to publish event to Kafka", "event_id", evt.EventID, "error", err)
		return
	}
	logger.Log.Infow("Event published to Kafka", "event_id", evt.EventID, "event", evt.Event)
}

// Close releases the Kafka writer.
func (s *ExpenseService) Close() error {
	if s.kafkaWriter == nil {
		return nil
	}
	return s.kafkaWriter.Close()
}
