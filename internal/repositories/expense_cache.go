package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/gw-expense-tracker/internal/logger"
	"github.com/sbilibin2017/gw-expense-tracker/internal/models"
)

// ErrCacheMiss is returned when a user's list is not cached.
var ErrCacheMiss = errors.New("expense list not found in cache")

// ExpenseCacheRepository caches a user's full transaction list in Redis.
type ExpenseCacheRepository struct {
	client *redis.Client
	exp    time.Duration
}

// NewExpenseCacheRepository creates a cache whose entries live for expiration.
func NewExpenseCacheRepository(client *redis.Client, expiration time.Duration) *ExpenseCacheRepository {
	return &ExpenseCacheRepository{
		client: client,
		exp:    expiration,
	}
}

func expenseCacheKey(userID uuid.UUID) string {
	return fmt.Sprintf("expenses:%s", userID)
}

// Get returns the cached list for userID or ErrCacheMiss.
func (r *ExpenseCacheRepository) Get(ctx context.Context, userID uuid.UUID) ([]models.ExpenseDB, error) {
	key := expenseCacheKey(userID)

	val, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		logger.Log.Infow("cache get", "key", key, "result", "miss", "error", err)
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	var expenses []models.ExpenseDB
	if err := json.Unmarshal(val, &expenses); err != nil {
		logger.Log.Infow("cache get", "key", key, "result", "corrupt", "error", err)
		return nil, err
	}

	logger.Log.Infow("cache get", "key", key, "result", len(expenses))
	return expenses, nil
}

// Set stores the list for userID.
func (r *ExpenseCacheRepository) Set(ctx context.Context, userID uuid.UUID, expenses []models.ExpenseDB) error {
	key := expenseCacheKey(userID)

	data, err := json.Marshal(expenses)
	if err != nil {
		return err
	}
	err = r.client.Set(ctx, key, data, r.exp).Err()

	logger.Log.Infow("cache set", "key", key, "result", len(expenses), "error", err)
	return err
}

// Invalidate drops the cached list for userID.
func (r *ExpenseCacheRepository) Invalidate(ctx context.Context, userID uuid.UUID) error {
	key := expenseCacheKey(userID)
	err := r.client.Del(ctx, key).Err()

	logger.Log.Infow("cache invalidate", "key", key, "error", err)
	return err
}
