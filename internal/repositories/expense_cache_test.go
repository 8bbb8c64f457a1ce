package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/gw-expense-tracker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestExpenseCacheRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7.0-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp"),
	}
	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer redisC.Terminate(ctx)

	host, err := redisC.Host(ctx)
	require.NoError(t, err)
	port, err := redisC.MappedPort(ctx, "6379")
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", host, port.Port()),
	})
	defer rdb.Close()
	require.NoError(t, rdb.Ping(ctx).Err())

	repo := NewExpenseCacheRepository(rdb, 2*time.Second)
	userID := uuid.New()
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	list := []models.ExpenseDB{*newTestExpense(userID, "Coffee", 4.5, models.TypeExpense, at)}

	t.Run("Miss", func(t *testing.T) {
		_, err := repo.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("SetAndGet", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, userID, list))

		got, err := repo.Get(ctx, userID)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, list[0].ExpenseID, got[0].ExpenseID)
		assert.Equal(t, 4.5, got[0].Amount)
		assert.True(t, at.Equal(got[0].CreatedAt))
	})

	t.Run("EmptyListIsCached", func(t *testing.T) {
		empty := uuid.New()
		require.NoError(t, repo.Set(ctx, empty, []models.ExpenseDB{}))

		got, err := repo.Get(ctx, empty)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("Invalidate", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, userID, list))
		require.NoError(t, repo.Invalidate(ctx, userID))

		_, err := repo.Get(ctx, userID)
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("Expires", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, userID, list))
		time.Sleep(3 * time.Second)

		_, err := repo.Get(ctx, userID)
		assert.ErrorIs(t, err, ErrCacheMiss)
	})
}
