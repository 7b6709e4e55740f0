package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/damon-houk/transaction-manager/internal/domain/entity"
	"github.com/damon-houk/transaction-manager/internal/domain/repository"
	"github.com/damon-houk/transaction-manager/internal/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTransaction(t *testing.T, id int) entity.Transaction {
	t.Helper()

	tx, err := entity.NewTransaction(id, time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC), decimal.RequireFromString("42.00"))
	require.NoError(t, err)
	return tx
}

func TestTransactionCache(t *testing.T) {
	cache := NewTransactionCache(time.Hour)
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return clock }

	assert.Empty(t, cache.cache)

	tx := testTransaction(t, 1)
	cache.Put(tx)
	assert.Len(t, cache.cache, 1)

	retrieved, ok := cache.Get(1)
	assert.True(t, ok)
	assert.Equal(t, tx, retrieved)

	_, ok = cache.Get(2)
	assert.False(t, ok)

	// Exactly at the TTL the entry is still fresh
	clock = clock.Add(time.Hour)
	_, ok = cache.Get(1)
	assert.True(t, ok)
}

func TestTransactionCacheEvictsOnGet(t *testing.T) {
	cache := NewTransactionCache(10 * time.Millisecond)
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return clock }

	cache.Put(testTransaction(t, 1))
	clock = clock.Add(20 * time.Millisecond)

	_, ok := cache.Get(1)
	assert.False(t, ok)
	assert.Empty(t, cache.cache)
}

func TestTransactionCacheSweepsOnPut(t *testing.T) {
	cache := NewTransactionCache(time.Minute)
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return clock }

	cache.Put(testTransaction(t, 1))
	cache.Put(testTransaction(t, 2))

	clock = clock.Add(30 * time.Second)
	cache.Put(testTransaction(t, 3))
	assert.Len(t, cache.cache, 3)

	// 1 and 2 are now past the TTL, 3 is not
	clock = clock.Add(45 * time.Second)
	cache.Put(testTransaction(t, 4))

	assert.Len(t, cache.cache, 2)
	assert.Contains(t, cache.cache, 3)
	assert.Contains(t, cache.cache, 4)
}

func TestCachedTransactionRepository(t *testing.T) {
	ctx := context.Background()
	tx := testTransaction(t, 7)

	t.Run("Store primes the cache", func(t *testing.T) {
		inner := new(mocks.MockTransactionRepository)
		repo := NewCachedTransactionRepository(inner, time.Hour)

		inner.On("Store", ctx, tx).Return(nil).Once()

		require.NoError(t, repo.Store(ctx, tx))

		// Served from the cache: no FindByID or Exists expectation on the mock
		found, err := repo.FindByID(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, tx, found)

		exists, err := repo.Exists(ctx, 7)
		require.NoError(t, err)
		assert.True(t, exists)

		inner.AssertExpectations(t)
	})

	t.Run("Miss loads from the wrapped repository once", func(t *testing.T) {
		inner := new(mocks.MockTransactionRepository)
		repo := NewCachedTransactionRepository(inner, time.Hour)

		inner.On("FindByID", ctx, 7).Return(tx, nil).Once()

		for i := 0; i < 3; i++ {
			found, err := repo.FindByID(ctx, 7)
			require.NoError(t, err)
			assert.Equal(t, tx, found)
		}

		assert.Len(t, repo.cache.cache, 1)
		inner.AssertExpectations(t)
	})

	t.Run("Errors are not cached", func(t *testing.T) {
		inner := new(mocks.MockTransactionRepository)
		repo := NewCachedTransactionRepository(inner, time.Hour)

		inner.On("FindByID", ctx, 9).Return(nil, repository.ErrTransactionNotFound).Twice()
		inner.On("Store", ctx, tx).Return(errors.New("disk full")).Once()
		inner.On("Exists", ctx, 9).Return(false, nil).Once()
		inner.On("Count", ctx).Return(0, nil).Once()

		_, err := repo.FindByID(ctx, 9)
		assert.ErrorIs(t, err, repository.ErrTransactionNotFound)
		_, err = repo.FindByID(ctx, 9)
		assert.ErrorIs(t, err, repository.ErrTransactionNotFound)

		assert.Error(t, repo.Store(ctx, tx))
		assert.Empty(t, repo.cache.cache)

		exists, err := repo.Exists(ctx, 9)
		require.NoError(t, err)
		assert.False(t, exists)

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, count)

		inner.AssertExpectations(t)
	})

	t.Run("Expired entries fall through to the wrapped repository", func(t *testing.T) {
		inner := new(mocks.MockTransactionRepository)
		repo := NewCachedTransactionRepository(inner, time.Minute)
		clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		repo.cache.now = func() time.Time { return clock }

		inner.On("Store", ctx, tx).Return(nil).Once()
		inner.On("Exists", ctx, 7).Return(true, nil).Once()

		require.NoError(t, repo.Store(ctx, tx))
		clock = clock.Add(2 * time.Minute)

		exists, err := repo.Exists(ctx, 7)
		require.NoError(t, err)
		assert.True(t, exists)
		assert.Empty(t, repo.cache.cache)

		inner.AssertExpectations(t)
	})
}
